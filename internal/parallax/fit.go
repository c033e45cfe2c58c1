package parallax

import (
	"fmt"
	"math"

	"github.com/nfnt/resize"

	"github.com/ivlev/depth2video/internal/raster"
)

// Fit равномерно масштабирует src так, чтобы он покрыл width x height, и
// обрезает по центру ровно до этого размера. Если из-за округления по какой-то
// оси не хватает пикселей, остаток добивается нулями вокруг центра.
// Карта глубины остается одноканальной, цветное изображение трехканальным.
func Fit(src *raster.Image, width, height int) (*raster.Image, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", ErrInvalidInput, width, height)
	}

	scale := math.Max(float64(width)/float64(src.Width), float64(height)/float64(src.Height))
	newW := max(1, int(math.Round(float64(src.Width)*scale)))
	newH := max(1, int(math.Round(float64(src.Height)*scale)))

	scaled := src
	if newW != src.Width || newH != src.Height {
		scaled = lanczos(src, newW, newH)
	}
	return cropCenter(scaled, width, height), nil
}

func lanczos(src *raster.Image, w, h int) *raster.Image {
	out := resize.Resize(uint(w), uint(h), src.ToImage(), resize.Lanczos3)
	if src.Channels == 1 {
		return raster.FromGray(out)
	}
	return raster.FromImage(out)
}

// cropCenter копирует центральное окно width x height из src в новый буфер.
// По осям, где src меньше, содержимое центрируется с нулевыми полями.
func cropCenter(src *raster.Image, width, height int) *raster.Image {
	if src.Width == width && src.Height == height {
		return src.Clone()
	}
	dst := raster.New(width, height, src.Channels)

	startX := max(0, (src.Width-width)/2)
	startY := max(0, (src.Height-height)/2)
	cropW := min(src.Width, startX+width) - startX
	cropH := min(src.Height, startY+height) - startY
	dstX := (width - cropW) / 2
	dstY := (height - cropH) / 2

	n := cropW * src.Channels
	for y := 0; y < cropH; y++ {
		s := src.Offset(startX, startY+y)
		d := dst.Offset(dstX, dstY+y)
		copy(dst.Pix[d:d+n], src.Pix[s:s+n])
	}
	return dst
}
