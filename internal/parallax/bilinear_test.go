package parallax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/depth2video/internal/raster"
)

func identityCoords(w, h int) *Coords {
	f := &Field{Width: w, Height: h, DX: make([]float32, w*h), DY: make([]float32, w*h)}
	return f.Coords()
}

func gradient(w, h, ch int) *raster.Image {
	m := raster.New(w, h, ch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				m.Pix[m.Offset(x, y)+c] = uint8((x*7 + y*13 + c*50) % 256)
			}
		}
	}
	return m
}

func TestSampleIdentity(t *testing.T) {
	for _, ch := range []int{1, 3} {
		src := gradient(17, 9, ch)
		out, err := Sample(src, identityCoords(17, 9))
		require.NoError(t, err)
		assert.Equal(t, src.Pix, out.Pix)
		assert.Equal(t, ch, out.Channels)
	}
}

func TestSampleHalfPixelRoundsToNearest(t *testing.T) {
	src := raster.New(2, 1, 1)
	copy(src.Pix, []uint8{10, 21})
	c := &Coords{Width: 1, Height: 1, X: []float32{0.5}, Y: []float32{0}}
	out, err := Sample(src, c)
	require.NoError(t, err)
	// 15.5 округляется вверх, отбрасывание дало бы 15
	assert.Equal(t, []uint8{16}, out.Pix)
}

func TestSampleFourCornerBlend(t *testing.T) {
	src := raster.New(2, 2, 3)
	copy(src.Pix, []uint8{
		0, 0, 0, 100, 100, 100,
		200, 200, 200, 40, 40, 40,
	})
	c := &Coords{Width: 1, Height: 1, X: []float32{0.25}, Y: []float32{0.75}}
	out, err := Sample(src, c)
	require.NoError(t, err)
	// веса углов: 0*.75*.25 + 100*.25*.25 + 200*.75*.75 + 40*.25*.75 = 6.25+112.5+7.5
	assert.Equal(t, []uint8{126, 126, 126}, out.Pix)
}

func TestSampleLastColumnClampsCorner(t *testing.T) {
	src := raster.New(3, 1, 1)
	copy(src.Pix, []uint8{1, 2, 250})
	c := &Coords{Width: 1, Height: 1, X: []float32{2}, Y: []float32{0}}
	out, err := Sample(src, c)
	require.NoError(t, err)
	assert.Equal(t, []uint8{250}, out.Pix)
}

func TestSampleIntoMismatch(t *testing.T) {
	src := raster.New(4, 4, 3)
	err := SampleInto(raster.New(4, 4, 1), src, identityCoords(4, 4))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	err = SampleInto(raster.New(3, 4, 3), src, identityCoords(4, 4))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	bad := identityCoords(4, 4)
	bad.Y = bad.Y[:3]
	err = SampleInto(raster.New(4, 4, 3), src, bad)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
