package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/depth2video/internal/config"
	"github.com/ivlev/depth2video/internal/depth"
	"github.com/ivlev/depth2video/internal/parallax"
	"github.com/ivlev/depth2video/internal/video"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func projectFixture(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	img, dep := diskScene()
	writePNG(t, filepath.Join(dir, "photo.png"), img)
	writePNG(t, filepath.Join(dir, "photo_depth.png"), dep)

	cfg := config.Default()
	cfg.InputPath = filepath.Join(dir, "photo.png")
	cfg.DepthPath = filepath.Join(dir, "photo_depth.png")
	cfg.Width, cfg.Height, cfg.FPS, cfg.Duration = 64, 36, 10, 0.5
	cfg.Workers = 2
	return cfg
}

func TestVideoProjectWritesFrames(t *testing.T) {
	cfg := projectFixture(t)
	cfg.FramesDir = filepath.Join(t.TempDir(), "frames")
	cfg.ShowStats = true

	p := NewVideoProject(cfg, &depth.FileEstimator{Path: cfg.DepthPath}, nil)
	p.BenchmarkLog = filepath.Join(t.TempDir(), "benchmark.log")
	require.NoError(t, p.Run(context.Background()))

	for i := range 5 {
		_, err := os.Stat(filepath.Join(cfg.FramesDir, fmt.Sprintf("frame_%06d.png", i)))
		assert.NoError(t, err, "frame %d", i)
	}
	_, err := os.Stat(filepath.Join(cfg.FramesDir, "frame_000005.png"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(p.BenchmarkLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Input: photo.png | Frames: 5")
}

func requireSetupError(t *testing.T, err error, stage string) {
	t.Helper()
	assert.ErrorIs(t, err, parallax.ErrInvalidInput)
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, stage, re.Stage)
	assert.Equal(t, -1, re.Frame)
}

func TestVideoProjectRequiresOutput(t *testing.T) {
	cfg := projectFixture(t)
	p := NewVideoProject(cfg, &depth.FileEstimator{Path: cfg.DepthPath}, nil)
	requireSetupError(t, p.Run(context.Background()), StageValidate)
}

func TestVideoProjectRequiresEstimator(t *testing.T) {
	cfg := projectFixture(t)
	cfg.FramesDir = t.TempDir()
	p := NewVideoProject(cfg, nil, nil)
	requireSetupError(t, p.Run(context.Background()), StageValidate)
}

func TestVideoProjectMissingInput(t *testing.T) {
	cfg := projectFixture(t)
	cfg.InputPath = filepath.Join(t.TempDir(), "nope.png")
	cfg.FramesDir = t.TempDir()
	p := NewVideoProject(cfg, &depth.FileEstimator{Path: cfg.DepthPath}, nil)
	err := p.Run(context.Background())
	requireSetupError(t, err, StageValidate)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVideoProjectMissingDepth(t *testing.T) {
	cfg := projectFixture(t)
	cfg.FramesDir = t.TempDir()
	p := NewVideoProject(cfg, &depth.FileEstimator{Path: filepath.Join(t.TempDir(), "none.png")}, nil)
	err := p.Run(context.Background())
	requireSetupError(t, err, StageDepth)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVideoProjectStreamsToFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not in PATH")
	}
	cfg := projectFixture(t)
	cfg.OutputVideo = filepath.Join(t.TempDir(), "out", "clip.mp4")

	p := NewVideoProject(cfg, &depth.FileEstimator{Path: cfg.DepthPath}, &video.FFmpegEncoder{})
	require.NoError(t, p.Run(context.Background()))
	fi, err := os.Stat(cfg.OutputVideo)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}

func TestVideoProjectMissingEncoderLeavesNoFile(t *testing.T) {
	cfg := projectFixture(t)
	cfg.OutputVideo = filepath.Join(t.TempDir(), "clip.mp4")

	p := NewVideoProject(cfg, &depth.FileEstimator{Path: cfg.DepthPath}, &video.FFmpegEncoder{Binary: "ffmpeg-not-installed"})
	err := p.Run(context.Background())
	assert.ErrorIs(t, err, video.ErrEncoding)
	_, statErr := os.Stat(cfg.OutputVideo)
	assert.True(t, os.IsNotExist(statErr))
}

func TestVideoProjectInvalidConfig(t *testing.T) {
	cfg := projectFixture(t)
	cfg.FramesDir = t.TempDir()
	cfg.FPS = 0
	p := NewVideoProject(cfg, &depth.FileEstimator{Path: cfg.DepthPath}, nil)
	requireSetupError(t, p.Run(context.Background()), StageValidate)
}

func TestReportWarnsOnBenchmarkWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	hook := test.NewGlobal()
	defer hook.Reset()

	p := NewVideoProject(config.Default(), nil, nil)
	p.BenchmarkLog = "/dev/full"
	p.report(runStats{start: time.Now(), frames: 1})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "/dev/full")
}
