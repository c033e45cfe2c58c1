package video

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ivlev/depth2video/internal/raster"
)

// FramePattern - имена файлов, которые понимает демуксер image2 в ffmpeg.
const FramePattern = "frame_%06d.png"

// FrameDir пишет кадры в пронумерованные PNG.
type FrameDir struct {
	Dir     string
	encoder png.Encoder
	count   int
}

func NewFrameDir(dir string) (*FrameDir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FrameDir{Dir: dir, encoder: png.Encoder{CompressionLevel: png.BestSpeed}}, nil
}

func (d *FrameDir) Path(index int) string {
	return filepath.Join(d.Dir, fmt.Sprintf(FramePattern, index))
}

func (d *FrameDir) Count() int {
	return d.count
}

func (d *FrameDir) WriteFrame(ctx context.Context, index int, img *raster.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if index != d.count {
		return fmt.Errorf("frame %d out of order, expected %d", index, d.count)
	}
	f, err := os.Create(d.Path(index))
	if err != nil {
		return err
	}
	if err := d.encoder.Encode(f, img.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	d.count++
	return nil
}
