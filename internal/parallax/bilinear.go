package parallax

import (
	"fmt"
	"math"

	"github.com/ivlev/depth2video/internal/raster"
)

// Sample выбирает пиксели src в точках coords с билинейной интерполяцией.
func Sample(src *raster.Image, c *Coords) (*raster.Image, error) {
	dst := raster.New(c.Width, c.Height, src.Channels)
	if err := SampleInto(dst, src, c); err != nil {
		return nil, err
	}
	return dst, nil
}

// SampleInto пишет в dst: размер как у coords, каналов как у src. Индексы
// углов ограничиваются по отдельности, координаты за краем читают ближайший
// край.
func SampleInto(dst, src *raster.Image, c *Coords) error {
	if err := src.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if dst.Width != c.Width || dst.Height != c.Height || dst.Channels != src.Channels {
		return fmt.Errorf("%w: dst %dx%dx%d, coords %dx%d, src channels %d",
			ErrDimensionMismatch, dst.Width, dst.Height, dst.Channels, c.Width, c.Height, src.Channels)
	}
	if len(c.X) != c.Width*c.Height || len(c.Y) != len(c.X) {
		return fmt.Errorf("%w: coords length %d/%d for %dx%d", ErrDimensionMismatch, len(c.X), len(c.Y), c.Width, c.Height)
	}

	ch := src.Channels
	maxX, maxY := src.Width-1, src.Height-1
	for i := range c.X {
		sx, sy := c.X[i], c.Y[i]
		fx := float32(math.Floor(float64(sx)))
		fy := float32(math.Floor(float64(sy)))
		wx, wy := sx-fx, sy-fy

		x0 := clamp(int(fx), 0, maxX)
		x1 := clamp(int(fx)+1, 0, maxX)
		y0 := clamp(int(fy), 0, maxY)
		y1 := clamp(int(fy)+1, 0, maxY)

		w00 := (1 - wx) * (1 - wy)
		w10 := wx * (1 - wy)
		w01 := (1 - wx) * wy
		w11 := wx * wy

		p00 := src.Pix[src.Offset(x0, y0):]
		p10 := src.Pix[src.Offset(x1, y0):]
		p01 := src.Pix[src.Offset(x0, y1):]
		p11 := src.Pix[src.Offset(x1, y1):]
		out := dst.Pix[i*ch:]
		for k := 0; k < ch; k++ {
			v := float32(p00[k])*w00 + float32(p10[k])*w10 + float32(p01[k])*w01 + float32(p11[k])*w11
			out[k] = toByte(v)
		}
	}
	return nil
}
