// Package parallax - ядро синтеза кадров: подгонка под формат, траектория
// камеры, смещение по глубине, билинейная выборка и заполнение дыр.
package parallax

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// toByte округляет половину вверх и насыщает до 8 бит.
func toByte(v float32) uint8 {
	return uint8(clamp(v+0.5, 0, 255))
}
