package depth

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ivlev/depth2video/internal/source"
)

// CommandEstimator запускает внешнюю модель глубины отдельным процессом.
// Изображение уменьшается до maxSize и пишется в PNG, команда пишет PNG глубины.
// В Args можно использовать {input}, {output} и {max_size}; без них пути
// входа и выхода добавляются в конец.
type CommandEstimator struct {
	Command string
	Args    []string
	TempDir string
}

// ParseCommand делит строку команды по пробелам.
func ParseCommand(line string) *CommandEstimator {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return &CommandEstimator{Command: fields[0], Args: fields[1:]}
}

func (e *CommandEstimator) EstimateDepth(ctx context.Context, img image.Image, maxSize int) (*image.Gray, error) {
	dir, err := os.MkdirTemp(e.TempDir, "depth2video_depth_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.png")
	out := filepath.Join(dir, "depth.png")
	if err := writePNG(in, Downscale(img, maxSize)); err != nil {
		return nil, err
	}

	args := e.expandArgs(in, out, maxSize)
	log.WithField("cmd", e.Command).Debugf("depth estimator args: %v", args)

	cmd := exec.CommandContext(ctx, e.Command, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("depth command %s: %v, output: %s", e.Command, err, string(output))
	}

	d, err := source.Load(out, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("depth command %s produced no usable map: %w", e.Command, err)
	}
	b := img.Bounds()
	return Restore(d, b.Dx(), b.Dy()), nil
}

func (e *CommandEstimator) expandArgs(in, out string, maxSize int) []string {
	r := strings.NewReplacer("{input}", in, "{output}", out, "{max_size}", strconv.Itoa(maxSize))
	args := make([]string, 0, len(e.Args)+2)
	placeholders := false
	for _, a := range e.Args {
		if strings.Contains(a, "{input}") || strings.Contains(a, "{output}") {
			placeholders = true
		}
		args = append(args, r.Replace(a))
	}
	if !placeholders {
		args = append(args, in, out)
	}
	return args
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
