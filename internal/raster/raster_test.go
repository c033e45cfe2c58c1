package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImageRGB(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 23))
	src.SetNRGBA(10, 20, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(13, 22, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	m := FromImage(src)
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.Width)
	assert.Equal(t, 3, m.Height)
	assert.Equal(t, 3, m.Channels)
	assert.Equal(t, []uint8{10, 20, 30}, m.Pix[m.Offset(0, 0):m.Offset(0, 0)+3])
	assert.Equal(t, []uint8{200, 100, 50}, m.Pix[m.Offset(3, 2):m.Offset(3, 2)+3])
}

func TestFromGrayKeepsValues(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range g.Pix {
		g.Pix[i] = uint8(i * 40)
	}
	m := FromGray(g)
	assert.Equal(t, 1, m.Channels)
	assert.Equal(t, g.Pix, m.Pix)

	back, ok := m.ToImage().(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, g.Pix, back.Pix)
}

func TestFromGrayConvertsColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	m := FromGray(src)
	assert.Equal(t, []uint8{255}, m.Pix)
}

func TestToImageRGBAOpaque(t *testing.T) {
	m := New(2, 1, 3)
	copy(m.Pix, []uint8{1, 2, 3, 4, 5, 6})
	rgba, ok := m.ToImage().(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, []uint8{1, 2, 3, 255, 4, 5, 6, 255}, rgba.Pix)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (*Image)(nil).Validate())
	assert.Error(t, New(0, 5, 3).Validate())
	assert.Error(t, New(2, 2, 4).Validate())
	bad := New(2, 2, 3)
	bad.Pix = bad.Pix[:5]
	assert.Error(t, bad.Validate())
	assert.NoError(t, New(2, 2, 1).Validate())
}

func TestFillAndClone(t *testing.T) {
	m := New(3, 3, 3)
	m.Fill(color.RGBA{R: 9, G: 8, B: 7, A: 255})
	c := m.Clone()
	c.Pix[0] = 0
	assert.Equal(t, uint8(9), m.Pix[0])
	assert.Equal(t, []uint8{9, 8, 7}, m.Pix[m.Offset(2, 2):m.Offset(2, 2)+3])

	g := New(2, 2, 1)
	g.Fill(color.Gray{Y: 77})
	assert.Equal(t, []uint8{77, 77, 77, 77}, g.Pix)
}
