package parallax

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/depth2video/internal/raster"
)

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 5, 1}, {-2, 5, 2}, {5, 5, 3}, {6, 5, 2}, {0, 5, 0}, {4, 5, 4},
		{-30, 5, 2}, {0, 1, 0}, {7, 1, 0}, {-1, 2, 1}, {2, 2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reflect101(tt.i, tt.n), "reflect101(%d, %d)", tt.i, tt.n)
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	k := gaussianKernel(backgroundKernel, backgroundSigma)
	require.Len(t, k, 51)
	var sum float32
	for _, v := range k {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-5)
	assert.Equal(t, k[0], k[50])
	assert.Greater(t, k[25], k[24])
}

func TestBlurUniformUnchanged(t *testing.T) {
	src := raster.New(30, 12, 3)
	src.Fill(color.RGBA{R: 200, G: 1, B: 77, A: 255})
	out := gaussianBlur(src, backgroundKernel, backgroundSigma)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestFillOnlyHoles(t *testing.T) {
	original := raster.New(8, 8, 3)
	original.Fill(color.RGBA{R: 90, G: 90, B: 90, A: 255})

	frame := raster.New(8, 8, 3)
	frame.Fill(color.RGBA{R: 5, G: 0, B: 0, A: 255})
	hole := frame.Offset(3, 4)
	copy(frame.Pix[hole:hole+3], []uint8{0, 0, 0})

	f, err := NewHoleFiller(original)
	require.NoError(t, err)
	n, err := f.Fill(frame)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uint8{90, 90, 90}, frame.Pix[hole:hole+3])
	// частично нулевые пиксели не дыры
	assert.Equal(t, []uint8{5, 0, 0}, frame.Pix[0:3])
}

func TestFillLeavesNoHoles(t *testing.T) {
	original := gradient(40, 30, 3)
	sampled := raster.New(40, 30, 3) // сплошные дыры
	out, err := Fill(sampled, original)
	require.NoError(t, err)

	f, err := NewHoleFiller(original)
	require.NoError(t, err)
	bg := f.background
	for i := 0; i < len(out.Pix); i += 3 {
		if IsHole(out.Pix[i : i+3]) {
			assert.True(t, IsHole(bg.Pix[i:i+3]), "pixel %d left as hole", i/3)
		}
	}
	// вход не изменился
	assert.True(t, IsHole(sampled.Pix[:3]))
}

func TestFillDepthMismatch(t *testing.T) {
	f, err := NewHoleFiller(raster.New(4, 4, 3))
	require.NoError(t, err)
	_, err = f.Fill(raster.New(4, 4, 1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
