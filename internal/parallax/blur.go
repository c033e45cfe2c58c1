package parallax

import (
	"math"

	"github.com/ivlev/depth2video/internal/raster"
)

const (
	backgroundKernel = 51
	backgroundSigma  = 20.0
)

func gaussianKernel(size int, sigma float64) []float32 {
	half := size / 2
	k := make([]float32, size)
	var sum float64
	w := make([]float64, size)
	for i := range w {
		d := float64(i - half)
		w[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += w[i]
	}
	for i := range w {
		k[i] = float32(w[i] / sum)
	}
	return k
}

// reflect101 отражает i в [0, n) без повтора крайнего отсчета
// (dcb|abcd|cba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// gaussianBlur - сепарабельная свертка с границами reflect-101.
func gaussianBlur(src *raster.Image, size int, sigma float64) *raster.Image {
	kernel := gaussianKernel(size, sigma)
	half := size / 2
	w, h, ch := src.Width, src.Height, src.Channels

	xIdx := make([][]int, w)
	for x := range xIdx {
		xIdx[x] = make([]int, size)
		for k := range size {
			xIdx[x][k] = reflect101(x+k-half, w)
		}
	}

	tmp := make([]float32, len(src.Pix))
	for y := 0; y < h; y++ {
		row := src.Pix[y*w*ch:]
		out := tmp[y*w*ch:]
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				var acc float32
				for k, sx := range xIdx[x] {
					acc += float32(row[sx*ch+c]) * kernel[k]
				}
				out[x*ch+c] = acc
			}
		}
	}

	dst := raster.New(w, h, ch)
	stride := w * ch
	rows := make([]int, size)
	for y := 0; y < h; y++ {
		for k := range rows {
			rows[k] = reflect101(y+k-half, h) * stride
		}
		for i := 0; i < stride; i++ {
			var acc float32
			for k, off := range rows {
				acc += tmp[off+i] * kernel[k]
			}
			dst.Pix[y*stride+i] = toByte(acc)
		}
	}
	return dst
}
