package config

import (
	"fmt"
	"math"
)

// Значения по умолчанию совпадают с исходным рендерером и не должны меняться.
const (
	DefaultWidth          = 1920
	DefaultHeight         = 1080
	DefaultFPS            = 30
	DefaultDuration       = 3.0
	DefaultCameraMovement = 0.1
	DefaultMovementRange  = 0.17
	DefaultDepthSize      = 1024
	DefaultQuality        = 18
	DefaultPreset         = "medium"
	DefaultVideoEncoder   = "libx264"
	DefaultDPI            = 300
)

// Animation описывает один рендер параллакса.
type Animation struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	FPS            int     `yaml:"fps"`
	Duration       float64 `yaml:"duration"`
	CameraMovement float64 `yaml:"camera_movement"`
	MovementRange  float64 `yaml:"movement_range"`
}

func DefaultAnimation() Animation {
	return Animation{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		FPS:            DefaultFPS,
		Duration:       DefaultDuration,
		CameraMovement: DefaultCameraMovement,
		MovementRange:  DefaultMovementRange,
	}
}

// TotalFrames = round(Duration*FPS), но не меньше одного кадра.
func (a Animation) TotalFrames() int {
	n := int(math.Round(a.Duration * float64(a.FPS)))
	if n < 1 {
		return 1
	}
	return n
}

func (a Animation) Validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("invalid output size %dx%d", a.Width, a.Height)
	}
	if a.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", a.FPS)
	}
	if !finite(a.Duration) || a.Duration <= 0 {
		return fmt.Errorf("invalid duration %v", a.Duration)
	}
	if !finite(a.CameraMovement) {
		return fmt.Errorf("invalid camera movement %v", a.CameraMovement)
	}
	if !finite(a.MovementRange) {
		return fmt.Errorf("invalid movement range %v", a.MovementRange)
	}
	return nil
}

type Config struct {
	Animation `yaml:",inline"`

	InputPath    string `yaml:"input"`
	DepthPath    string `yaml:"depth"`
	DepthCommand string `yaml:"depth_command"`
	DepthSize    int    `yaml:"depth_size"`
	OutputVideo  string `yaml:"output"`
	FramesDir    string `yaml:"frames_dir"`
	PageIndex    int    `yaml:"page"`
	DPI          int    `yaml:"dpi"`
	Workers      int    `yaml:"workers"`
	Preset       string `yaml:"preset"`
	VideoEncoder string `yaml:"encoder"`
	Quality      int    `yaml:"quality"`
	EncodePreset string `yaml:"encode_preset"`
	ShowStats    bool   `yaml:"stats"`
	BuildVersion string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Animation:    DefaultAnimation(),
		DepthSize:    DefaultDepthSize,
		DPI:          DefaultDPI,
		VideoEncoder: DefaultVideoEncoder,
		Quality:      DefaultQuality,
		EncodePreset: DefaultPreset,
	}
}

// ApplyPreset задает размер кадра по имени пресета формата.
func (c *Config) ApplyPreset() error {
	switch c.Preset {
	case "":
	case "16:9":
		c.Width, c.Height = 1920, 1080
	case "9:16":
		c.Width, c.Height = 1080, 1920
	case "4:5":
		c.Width, c.Height = 1080, 1350
	default:
		return fmt.Errorf("unknown preset %q", c.Preset)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Animation.Validate(); err != nil {
		return err
	}
	if c.DepthSize <= 0 {
		return fmt.Errorf("invalid depth size %d", c.DepthSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d", c.Workers)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
