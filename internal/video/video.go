package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ivlev/depth2video/internal/config"
	"github.com/ivlev/depth2video/internal/raster"
)

var ErrEncoding = errors.New("encoding failed")

// EncodeError несет вывод ffmpeg для диагностики.
type EncodeError struct {
	Op     string
	Output string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("ffmpeg %s error: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ffmpeg %s error: %v, output: %s", e.Op, e.Err, e.Output)
}

func (e *EncodeError) Unwrap() []error {
	return []error{ErrEncoding, e.Err}
}

// Settings - параметры энкодера для рендера.
type Settings struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
	Preset        string
}

func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Encoder: cfg.VideoEncoder,
		Quality: cfg.Quality,
		Preset:  cfg.EncodePreset,
	}
}

type FFmpegEncoder struct {
	// Binary по умолчанию "ffmpeg" из PATH.
	Binary string
}

func (e *FFmpegEncoder) binary() (string, error) {
	name := e.Binary
	if name == "" {
		name = "ffmpeg"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &EncodeError{Op: "lookup", Err: fmt.Errorf("ffmpeg not found, please install ffmpeg: %w", err)}
	}
	return path, nil
}

// Start запускает ffmpeg, читающий сырые кадры rgb24 из stdin.
func (e *FFmpegEncoder) Start(ctx context.Context, videoPath string, s Settings) (*Stream, error) {
	bin, err := e.binary()
	if err != nil {
		return nil, err
	}
	args := buildStreamArgs(s, videoPath)
	log.WithField("output", videoPath).Debugf("ffmpeg %v", args)

	cmd := exec.CommandContext(ctx, bin, args...)
	st := &Stream{cmd: cmd, path: videoPath, settings: s}
	cmd.Stdout = &st.out
	cmd.Stderr = &st.out

	st.stdin, err = cmd.StdinPipe()
	if err != nil {
		return nil, &EncodeError{Op: "stdin pipe", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &EncodeError{Op: "start", Err: err}
	}
	return st, nil
}

// EncodeDir собирает видео из папки с файлами frame_%06d.png.
func (e *FFmpegEncoder) EncodeDir(ctx context.Context, dir, videoPath string, s Settings) error {
	bin, err := e.binary()
	if err != nil {
		return err
	}
	args := buildDirArgs(s, filepath.Join(dir, FramePattern), videoPath)
	log.WithField("output", videoPath).Debugf("ffmpeg %v", args)

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(videoPath)
		return &EncodeError{Op: "encode", Output: string(out), Err: err}
	}
	return nil
}

func buildStreamArgs(s Settings, videoPath string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", fmt.Sprintf("%d", s.FPS),
		"-i", "-",
	}
	return appendOutputArgs(args, s, videoPath)
}

func buildDirArgs(s Settings, pattern, videoPath string) []string {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", s.FPS),
		"-i", pattern,
	}
	return appendOutputArgs(args, s, videoPath)
}

func appendOutputArgs(args []string, s Settings, videoPath string) []string {
	encoder := s.Encoder
	if encoder == "" {
		encoder = config.DefaultVideoEncoder
	}
	args = append(args, "-c:v", encoder, "-pix_fmt", "yuv420p")

	// Качество в зависимости от энкодера
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox не везде понимает -q:v, используем битрейт
		args = append(args, "-b:v", fmt.Sprintf("%dk", s.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", s.Quality))
	default: // libx264
		preset := s.Preset
		if preset == "" {
			preset = config.DefaultPreset
		}
		args = append(args, "-crf", fmt.Sprintf("%d", s.Quality), "-preset", preset)
	}
	return append(args, videoPath)
}

// Stream передает кадры запущенному ffmpeg. Кадры должны идти по порядку
// начиная с нуля.
type Stream struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	out      bytes.Buffer
	path     string
	settings Settings
	next     int
	done     bool
}

func (s *Stream) Frames() int {
	return s.next
}

func (s *Stream) WriteFrame(ctx context.Context, index int, img *raster.Image) error {
	if s.done {
		return &EncodeError{Op: "write", Err: errors.New("stream already closed")}
	}
	if index != s.next {
		return &EncodeError{Op: "write", Err: fmt.Errorf("frame %d out of order, expected %d", index, s.next)}
	}
	if img.Width != s.settings.Width || img.Height != s.settings.Height || img.Channels != 3 {
		return &EncodeError{Op: "write", Err: fmt.Errorf("frame %d is %dx%dx%d, stream expects %dx%dx3",
			index, img.Width, img.Height, img.Channels, s.settings.Width, s.settings.Height)}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.stdin.Write(img.Pix); err != nil {
		// скорее всего ffmpeg упал, забираем его вывод
		s.stdin.Close()
		s.cmd.Wait()
		s.done = true
		os.Remove(s.path)
		return &EncodeError{Op: "write", Output: s.out.String(), Err: err}
	}
	s.next++
	return nil
}

// Close закрывает поток и ждет, пока ffmpeg допишет файл.
func (s *Stream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		os.Remove(s.path)
		return &EncodeError{Op: "wait", Output: s.out.String(), Err: err}
	}
	return nil
}

// Abort убивает ffmpeg и удаляет недописанный файл.
func (s *Stream) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.stdin.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	os.Remove(s.path)
}
