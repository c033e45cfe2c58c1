// Package raster - 8-битный буфер пикселей с чередованием каналов, общий
// для параллакса, энкодера и пула буферов.
package raster

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Image - построчный буфер с 1 (глубина) или 3 (RGB) каналами.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

func New(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Offset возвращает индекс первого канала пикселя (x, y).
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * m.Channels
}

func (m *Image) Stride() int {
	return m.Width * m.Channels
}

func (m *Image) SameSize(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height
}

func (m *Image) Clone() *Image {
	c := *m
	c.Pix = append([]uint8(nil), m.Pix...)
	return &c
}

// Validate сообщает о битом или пустом буфере.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("nil image")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("empty image %dx%d", m.Width, m.Height)
	}
	if m.Channels != 1 && m.Channels != 3 {
		return fmt.Errorf("unsupported channel count %d", m.Channels)
	}
	if len(m.Pix) != m.Width*m.Height*m.Channels {
		return fmt.Errorf("buffer length %d does not match %dx%dx%d", len(m.Pix), m.Width, m.Height, m.Channels)
	}
	return nil
}

// FromImage переводит любое изображение в трехканальный RGB.
// Альфа отбрасывается после наложения на черный.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Rect, img, b.Min, xdraw.Src)
	}

	out := New(b.Dx(), b.Dy(), 3)
	for y := 0; y < out.Height; y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := out.Pix[y*out.Stride():]
		for x := 0; x < out.Width; x++ {
			dst[x*3+0] = src[x*4+0]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return out
}

// FromGray переводит любое изображение в один канал по стандартным весам
// яркости. Серые изображения копируются как есть.
func FromGray(img image.Image) *Image {
	b := img.Bounds()
	gray, ok := img.(*image.Gray)
	if !ok || gray.Rect.Min != (image.Point{}) {
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(gray, gray.Rect, img, b.Min, xdraw.Src)
	}

	out := New(b.Dx(), b.Dy(), 1)
	for y := 0; y < out.Height; y++ {
		copy(out.Pix[y*out.Width:(y+1)*out.Width], gray.Pix[y*gray.Stride:])
	}
	return out
}

// ToImage возвращает *image.Gray для одного канала и непрозрачный *image.RGBA для трех.
func (m *Image) ToImage() image.Image {
	r := image.Rect(0, 0, m.Width, m.Height)
	if m.Channels == 1 {
		g := image.NewGray(r)
		copy(g.Pix, m.Pix)
		return g
	}
	rgba := image.NewRGBA(r)
	for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
		rgba.Pix[j+0] = m.Pix[i+0]
		rgba.Pix[j+1] = m.Pix[i+1]
		rgba.Pix[j+2] = m.Pix[i+2]
		rgba.Pix[j+3] = 0xff
	}
	return rgba
}

// Fill заливает m цветом c.
func (m *Image) Fill(c color.Color) {
	r, g, b, _ := c.RGBA()
	px := []uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
	if m.Channels == 1 {
		px = []uint8{color.GrayModel.Convert(c).(color.Gray).Y}
	}
	for i := 0; i < len(m.Pix); i += m.Channels {
		copy(m.Pix[i:i+m.Channels], px)
	}
}
