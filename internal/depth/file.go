package depth

import (
	"context"
	"image"

	"github.com/ivlev/depth2video/internal/source"
)

// FileEstimator отдает заранее посчитанную карту глубины. Разрешение карты
// любое, она растягивается до размера изображения.
type FileEstimator struct {
	Path string
}

func (e *FileEstimator) EstimateDepth(ctx context.Context, img image.Image, maxSize int) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := source.Load(e.Path, 0, 0)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return Restore(d, b.Dx(), b.Dy()), nil
}
