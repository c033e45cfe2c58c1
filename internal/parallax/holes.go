package parallax

import (
	"fmt"

	"github.com/ivlev/depth2video/internal/raster"
)

// IsHole: все каналы px равны нулю. Такой пиксель считается дырой, под это
// попадают и чисто черные пиксели исходника.
func IsHole(px []uint8) bool {
	for _, v := range px {
		if v != 0 {
			return false
		}
	}
	return true
}

// HoleFiller закрывает дыры сильно размытой копией несмещенного исходника.
// Фон считается один раз и дальше только читается.
type HoleFiller struct {
	background *raster.Image
}

func NewHoleFiller(original *raster.Image) (*HoleFiller, error) {
	if err := original.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &HoleFiller{background: gaussianBlur(original, backgroundKernel, backgroundSigma)}, nil
}

// Fill заменяет дыры в frame на месте и возвращает их количество.
func (f *HoleFiller) Fill(frame *raster.Image) (int, error) {
	bg := f.background
	if !frame.SameSize(bg) || frame.Channels != bg.Channels {
		return 0, fmt.Errorf("%w: frame %dx%dx%d, background %dx%dx%d", ErrDimensionMismatch,
			frame.Width, frame.Height, frame.Channels, bg.Width, bg.Height, bg.Channels)
	}
	ch := frame.Channels
	filled := 0
	for i := 0; i < len(frame.Pix); i += ch {
		px := frame.Pix[i : i+ch]
		if IsHole(px) {
			copy(px, bg.Pix[i:i+ch])
			filled++
		}
	}
	return filled, nil
}

// Fill возвращает копию sampled с дырами, закрытыми по original.
func Fill(sampled, original *raster.Image) (*raster.Image, error) {
	f, err := NewHoleFiller(original)
	if err != nil {
		return nil, err
	}
	out := sampled.Clone()
	if _, err := f.Fill(out); err != nil {
		return nil, err
	}
	return out, nil
}
