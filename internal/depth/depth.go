// Package depth подключает внешние оценщики глубины. Сам пакет глубину не
// считает: карта читается с диска или ее строит внешняя команда.
package depth

import (
	"context"
	"image"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Estimator возвращает одноканальную карту глубины (255 - ближе всего)
// того же размера, что img. maxSize - подсказка для длинной стороны,
// которую увидит модель.
type Estimator interface {
	EstimateDepth(ctx context.Context, img image.Image, maxSize int) (*image.Gray, error)
}

// Downscale уменьшает img до длинной стороны maxSize с сохранением
// пропорций. Меньшие изображения возвращаются как есть.
func Downscale(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || max(w, h) <= maxSize {
		return img
	}
	var nw, nh int
	if w > h {
		nw, nh = maxSize, max(1, h*maxSize/w)
	} else {
		nw, nh = max(1, w*maxSize/h), maxSize
	}
	return resize.Resize(uint(nw), uint(nh), img, resize.Lanczos3)
}

// Restore возвращает карте размер width x height и переводит ее в серый.
func Restore(depth image.Image, width, height int) *image.Gray {
	b := depth.Bounds()
	if b.Dx() != width || b.Dy() != height {
		depth = resize.Resize(uint(width), uint(height), depth, resize.Lanczos3)
		b = depth.Bounds()
	}
	if g, ok := depth.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	g := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.Draw(g, g.Rect, depth, b.Min, xdraw.Src)
	return g
}
