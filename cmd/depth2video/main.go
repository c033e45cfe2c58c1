package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/ivlev/depth2video/internal/config"
	"github.com/ivlev/depth2video/internal/depth"
	"github.com/ivlev/depth2video/internal/engine"
	"github.com/ivlev/depth2video/internal/system"
	"github.com/ivlev/depth2video/internal/video"
)

// version задается при сборке: -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}
}

func run() error {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	for _, d := range []string{"input/images", "input/depth", "output"} {
		os.MkdirAll(d, 0755)
	}

	cfg := config.Default()
	// 0 / "" означают автоподбор по доступному энкодеру
	cfg.VideoEncoder = ""
	cfg.Quality = 0

	flag.StringVar(&cfg.InputPath, "input", "", "Путь к изображению, PDF или папке с изображениями (по умолчанию: самый свежий файл в input/images/)")
	flag.StringVar(&cfg.DepthPath, "depth", "", "Путь к карте глубины (по умолчанию: самый свежий файл в input/depth/)")
	flag.StringVar(&cfg.DepthCommand, "depth-cmd", "", "Команда оценки глубины, поддерживает {input}, {output}, {max_size}")
	flag.IntVar(&cfg.DepthSize, "depth-size", cfg.DepthSize, "Максимальная сторона изображения для оценки глубины")
	flag.StringVar(&cfg.OutputVideo, "output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	flag.StringVar(&cfg.FramesDir, "frames-dir", "", "Сохранять кадры PNG в папку и собирать видео из нее")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "Ширина")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Высота")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "FPS")
	flag.Float64Var(&cfg.Duration, "duration", cfg.Duration, "Длительность видео (сек)")
	flag.Float64Var(&cfg.CameraMovement, "camera-movement", cfg.CameraMovement, "Сила смещения камеры")
	flag.Float64Var(&cfg.MovementRange, "movement-range", cfg.MovementRange, "Радиус траектории камеры")
	flag.IntVar(&cfg.Workers, "workers", 0, "Потоки (0 - авто по CPU и памяти)")
	flag.IntVar(&cfg.PageIndex, "page", 0, "Номер страницы PDF или изображения в папке (с нуля)")
	flag.IntVar(&cfg.DPI, "dpi", cfg.DPI, "DPI для PDF")
	flag.StringVar(&cfg.Preset, "preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	flag.StringVar(&cfg.VideoEncoder, "encoder", "", "Видеоэнкодер (пусто - автоопределение: h264_videotoolbox, h264_nvenc, libx264)")
	flag.IntVar(&cfg.Quality, "quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	flag.StringVar(&cfg.EncodePreset, "encode-preset", cfg.EncodePreset, "Пресет скорости x264")
	flag.BoolVar(&cfg.ShowStats, "stats", false, "Показать отчет о производительности и дописать benchmark.log")
	configPtr := flag.String("config", "", "YAML-файл с настройками (флаги командной строки имеют приоритет)")
	saveConfigPtr := flag.String("save-config", "", "Сохранить итоговые настройки в YAML и выйти")
	profilePtr := flag.String("profile", "", "Профилирование: cpu или mem (файл в текущей папке)")
	verbosePtr := flag.Bool("v", false, "Подробный лог")

	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *verbosePtr {
		log.SetLevel(log.DebugLevel)
	}

	if *configPtr != "" {
		if err := overlayConfig(*configPtr, cfg); err != nil {
			return err
		}
		fmt.Printf("[*] Настройки загружены: %s\n", *configPtr)
	}
	if err := cfg.ApplyPreset(); err != nil {
		return err
	}
	cfg.BuildVersion = version

	switch *profilePtr {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		return fmt.Errorf("неизвестный профиль %q (cpu, mem)", *profilePtr)
	}

	if cfg.InputPath == "" {
		latest, err := system.FindLatestImage("input/images")
		if err != nil {
			return fmt.Errorf("%w. Положите изображение в input/images/", err)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.InputPath)
	}

	est, err := selectEstimator(cfg)
	if err != nil {
		return err
	}

	if cfg.OutputVideo == "" {
		cfg.OutputVideo = defaultOutput(cfg.InputPath, time.Now())
	}

	if cfg.VideoEncoder == "" {
		cfg.VideoEncoder = system.GetBestH264Encoder()
		if cfg.VideoEncoder != config.DefaultVideoEncoder {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
		}
	}
	if cfg.Quality == 0 {
		cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if *saveConfigPtr != "" {
		if err := config.Save(*saveConfigPtr, cfg); err != nil {
			return err
		}
		fmt.Printf("[+++] Настройки сохранены: %s\n", *saveConfigPtr)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	project := engine.NewVideoProject(cfg, est, &video.FFmpegEncoder{})
	if err := project.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("[!] Прервано пользователем")
			return nil
		}
		return err
	}
	return nil
}

// overlayConfig загружает path поверх cfg и заново применяет флаги,
// явно заданные в командной строке.
func overlayConfig(path string, cfg *config.Config) error {
	explicit := map[string]string{}
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})
	if err := config.Load(path, cfg); err != nil {
		return fmt.Errorf("ошибка чтения настроек: %w", err)
	}
	for name, value := range explicit {
		if err := flag.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func selectEstimator(cfg *config.Config) (depth.Estimator, error) {
	if cfg.DepthCommand != "" {
		est := depth.ParseCommand(cfg.DepthCommand)
		if est == nil {
			return nil, fmt.Errorf("пустая команда оценки глубины")
		}
		fmt.Printf("[*] Оценка глубины: %s\n", est.Command)
		return est, nil
	}
	if cfg.DepthPath == "" {
		latest, err := system.FindLatestImage("input/depth")
		if err != nil {
			return nil, fmt.Errorf("карта глубины не найдена (%v). Укажите -depth или -depth-cmd", err)
		}
		cfg.DepthPath = latest
		fmt.Printf("[*] Выбрана карта глубины: %s\n", cfg.DepthPath)
	}
	return &depth.FileEstimator{Path: cfg.DepthPath}, nil
}

func defaultOutput(inputPath string, now time.Time) string {
	baseName := filepath.Base(inputPath)
	ext := filepath.Ext(baseName)
	nameOnly := strings.TrimSuffix(baseName, ext)
	cleanName := strings.ReplaceAll(nameOnly, " ", "_")
	timestamp := now.Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
}
