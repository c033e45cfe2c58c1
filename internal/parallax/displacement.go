package parallax

import (
	"fmt"
	"math"

	"github.com/ivlev/depth2video/internal/raster"
)

// displacementGain переводит доли смещения камеры в заметные пиксели.
const displacementGain = 100

// DepthPlane хранит часть смещения, не зависящую от камеры:
// глубину в [0, 1] с центром в 0.5.
type DepthPlane struct {
	Width    int
	Height   int
	centered []float32
}

func NewDepthPlane(depth *raster.Image) (*DepthPlane, error) {
	if err := depth.Validate(); err != nil {
		return nil, fmt.Errorf("%w: depth: %v", ErrInvalidInput, err)
	}
	if depth.Channels != 1 {
		return nil, fmt.Errorf("%w: depth has %d channels", ErrInvalidInput, depth.Channels)
	}
	p := &DepthPlane{
		Width:    depth.Width,
		Height:   depth.Height,
		centered: make([]float32, len(depth.Pix)),
	}
	for i, v := range depth.Pix {
		p.centered[i] = float32(v)/255 - 0.5
	}
	return p, nil
}

// Field - попиксельное смещение выборки для одного кадра.
type Field struct {
	Width  int
	Height int
	DX     []float32
	DY     []float32
}

// Field строит смещение для одного положения камеры. Средняя глубина не
// двигается, ближние и дальние пиксели уходят в разные стороны.
func (p *DepthPlane) Field(off Offset, cameraMovement float64) (*Field, error) {
	if !finite(off.X) || !finite(off.Y) || !finite(cameraMovement) {
		return nil, fmt.Errorf("%w: offset (%v, %v) movement %v", ErrNumericDegeneracy, off.X, off.Y, cameraMovement)
	}
	scale := cameraMovement * displacementGain
	kx := float32(off.X * scale)
	ky := float32(off.Y * scale)

	f := &Field{
		Width:  p.Width,
		Height: p.Height,
		DX:     make([]float32, len(p.centered)),
		DY:     make([]float32, len(p.centered)),
	}
	for i, d := range p.centered {
		f.DX[i] = d * kx
		f.DY[i] = d * ky
	}
	return f, nil
}

// BuildField = NewDepthPlane + Field за один вызов.
func BuildField(depth *raster.Image, off Offset, cameraMovement float64) (*Field, error) {
	p, err := NewDepthPlane(depth)
	if err != nil {
		return nil, err
	}
	return p.Field(off, cameraMovement)
}

// Coords - абсолютные точки выборки, уже ограниченные размером кадра.
type Coords struct {
	Width  int
	Height int
	X      []float32
	Y      []float32
}

// Coords прибавляет смещение к сетке и ограничивает [0, W-1] x [0, H-1].
// При NaN/Inf пиксель берется со своего места.
func (f *Field) Coords() *Coords {
	c := &Coords{
		Width:  f.Width,
		Height: f.Height,
		X:      make([]float32, len(f.DX)),
		Y:      make([]float32, len(f.DY)),
	}
	maxX := float32(f.Width - 1)
	maxY := float32(f.Height - 1)
	for y := 0; y < f.Height; y++ {
		row := y * f.Width
		for x := 0; x < f.Width; x++ {
			i := row + x
			c.X[i] = clamp(sanitize(float32(x)+f.DX[i], float32(x)), 0, maxX)
			c.Y[i] = clamp(sanitize(float32(y)+f.DY[i], float32(y)), 0, maxY)
		}
	}
	return c
}

func sanitize(v, fallback float32) float32 {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return fallback
	}
	return v
}
