package parallax

import "math"

// verticalRatio: вертикальный размах камеры вдвое меньше горизонтального.
const verticalRatio = 0.5

// Offset - относительное смещение камеры в одной точке траектории.
type Offset struct {
	X float64
	Y float64
}

// OffsetAt возвращает смещение камеры для progress в [0, 1]. Точки 0 и 1
// совпадают, поэтому анимация проходит ровно один замкнутый эллипс.
func OffsetAt(progress, movementRange, cameraMovement float64) Offset {
	angle := progress * 2 * math.Pi
	amp := movementRange * cameraMovement
	return Offset{
		X: math.Sin(angle) * amp,
		Y: math.Cos(angle) * amp * verticalRatio,
	}
}

// Progress переводит номер кадра в [0, 1]. Единственный кадр стоит в 0.
func Progress(index, total int) float64 {
	if total <= 1 {
		return 0
	}
	return float64(index) / float64(total-1)
}
