package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ivlev/depth2video/internal/config"
	"github.com/ivlev/depth2video/internal/depth"
	"github.com/ivlev/depth2video/internal/parallax"
	"github.com/ivlev/depth2video/internal/raster"
	"github.com/ivlev/depth2video/internal/source"
	"github.com/ivlev/depth2video/internal/system"
	"github.com/ivlev/depth2video/internal/video"
)

const DefaultBenchmarkLog = "benchmark.log"

// VideoProject проводит один вход через весь конвейер: декодирование,
// глубина, рендер, кодирование.
type VideoProject struct {
	Config    *config.Config
	Estimator depth.Estimator
	Encoder   *video.FFmpegEncoder

	// BenchmarkLog получает строку на каждый запуск при Config.ShowStats.
	BenchmarkLog string
}

func NewVideoProject(cfg *config.Config, est depth.Estimator, enc *video.FFmpegEncoder) *VideoProject {
	if enc == nil {
		enc = &video.FFmpegEncoder{}
	}
	return &VideoProject{
		Config:       cfg,
		Estimator:    est,
		Encoder:      enc,
		BenchmarkLog: DefaultBenchmarkLog,
	}
}

type runStats struct {
	start      time.Time
	depthTime  time.Duration
	renderTime time.Duration
	encodeTime time.Duration
	frames     int
	workers    int
}

func (p *VideoProject) Run(ctx context.Context) error {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return setupError(StageValidate, fmt.Errorf("%w: %v", parallax.ErrInvalidInput, err))
	}
	if p.Estimator == nil {
		return setupError(StageValidate, fmt.Errorf("%w: no depth estimator configured", parallax.ErrInvalidInput))
	}
	if cfg.OutputVideo == "" && cfg.FramesDir == "" {
		return setupError(StageValidate, fmt.Errorf("%w: nothing to write, set an output video or a frames directory", parallax.ErrInvalidInput))
	}
	stats := runStats{start: time.Now()}

	img, err := source.Load(cfg.InputPath, cfg.PageIndex, cfg.DPI)
	if err != nil {
		return setupError(StageValidate, fmt.Errorf("%w: %w", parallax.ErrInvalidInput, err))
	}
	b := img.Bounds()

	fmt.Println("--- [PROJECT: PARALLAX ENGINE] ---")
	fmt.Printf("[*] Источник: %s | Размер: %dx%d\n", cfg.InputPath, b.Dx(), b.Dy())
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Длительность: %.2fs\n", cfg.Width, cfg.Height, cfg.FPS, cfg.Duration)
	fmt.Println("-----------------------------")

	depthStart := time.Now()
	dmap, err := p.Estimator.EstimateDepth(ctx, img, cfg.DepthSize)
	if err != nil {
		return setupError(StageDepth, fmt.Errorf("%w: карта глубины: %w", parallax.ErrInvalidInput, err))
	}
	stats.depthTime = time.Since(depthStart)
	log.WithField("elapsed", stats.depthTime).Debug("depth map ready")

	renderer, err := NewRenderer(raster.FromImage(img), raster.FromGray(dmap), cfg.Animation, WithWorkers(cfg.Workers))
	if err != nil {
		return err
	}
	stats.frames = renderer.TotalFrames()
	stats.workers = renderer.Workers()

	if cfg.FramesDir != "" {
		err = p.renderFrames(ctx, renderer, &stats)
	} else {
		err = p.renderStream(ctx, renderer, &stats)
	}
	if err != nil {
		return err
	}

	if cfg.OutputVideo != "" {
		fmt.Printf("[+++] Успех! Видео сохранено: %s\n", cfg.OutputVideo)
	} else {
		fmt.Printf("[+++] Успех! Кадры сохранены: %s\n", cfg.FramesDir)
	}
	if cfg.ShowStats {
		p.report(stats)
	}
	return nil
}

// renderStream отдает кадры прямо в ffmpeg.
func (p *VideoProject) renderStream(ctx context.Context, r *Renderer, stats *runStats) error {
	cfg := p.Config
	if err := ensureDir(cfg.OutputVideo); err != nil {
		return err
	}
	stream, err := p.Encoder.Start(ctx, cfg.OutputVideo, video.SettingsFrom(cfg))
	if err != nil {
		return err
	}

	renderStart := time.Now()
	if err := r.Run(ctx, stream); err != nil {
		stream.Abort()
		return err
	}
	stats.renderTime = time.Since(renderStart)

	encodeStart := time.Now()
	if err := stream.Close(); err != nil {
		return err
	}
	stats.encodeTime = time.Since(encodeStart)
	return nil
}

// renderFrames пишет пронумерованные PNG и, если задано видео,
// затем собирает его из папки.
func (p *VideoProject) renderFrames(ctx context.Context, r *Renderer, stats *runStats) error {
	cfg := p.Config
	dir, err := video.NewFrameDir(cfg.FramesDir)
	if err != nil {
		return err
	}

	renderStart := time.Now()
	if err := r.Run(ctx, dir); err != nil {
		return err
	}
	stats.renderTime = time.Since(renderStart)

	if cfg.OutputVideo == "" {
		return nil
	}
	if err := ensureDir(cfg.OutputVideo); err != nil {
		return err
	}
	encodeStart := time.Now()
	if err := p.Encoder.EncodeDir(ctx, cfg.FramesDir, cfg.OutputVideo, video.SettingsFrom(cfg)); err != nil {
		return err
	}
	stats.encodeTime = time.Since(encodeStart)
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func (p *VideoProject) report(s runStats) {
	cfg := p.Config
	totalTime := time.Since(s.start)
	fps := float64(s.frames) / totalTime.Seconds()

	memLine := "n/a"
	if m, err := system.ReadMemoryStats(); err == nil {
		memLine = fmt.Sprintf("%d/%d MB free (%.1f%% used)", m.AvailableMB, m.TotalMB, m.UsedPercent)
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Depth: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Frames: %d | Workers: %d\n"+
			"Effective FPS: %.2f\n"+
			"Memory: %s\n"+
			"----------------------------\n",
		cfg.BuildVersion, totalTime.Seconds(), s.depthTime.Seconds(), s.renderTime.Seconds(),
		s.encodeTime.Seconds(), s.frames, s.workers, fps, memLine,
	)
	fmt.Print(report)

	if p.BenchmarkLog == "" {
		return
	}
	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Total: %.2fs | Depth: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(cfg.InputPath),
		s.frames,
		totalTime.Seconds(),
		s.depthTime.Seconds(),
		s.renderTime.Seconds(),
		s.encodeTime.Seconds(),
		fps,
	)

	f, err := os.OpenFile(p.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warnf("[!] Не удалось записать %s: %v", p.BenchmarkLog, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		log.Warnf("[!] Не удалось записать %s: %v", p.BenchmarkLog, err)
	}
}
