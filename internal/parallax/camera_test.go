package parallax

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetAtClosesLoop(t *testing.T) {
	r, m := 0.17, 0.1
	start := OffsetAt(0, r, m)
	end := OffsetAt(1, r, m)
	assert.InDelta(t, start.X, end.X, 1e-12)
	assert.InDelta(t, start.Y, end.Y, 1e-12)

	assert.InDelta(t, 0, start.X, 1e-12)
	assert.InDelta(t, r*m*0.5, start.Y, 1e-12)
}

func TestOffsetAtQuarterIsMaxX(t *testing.T) {
	r, m := 0.17, 0.1
	q := OffsetAt(0.25, r, m)
	assert.InDelta(t, r*m, q.X, 1e-12)
	assert.InDelta(t, 0, q.Y, 1e-12)

	for p := 0.0; p <= 1.0; p += 0.01 {
		o := OffsetAt(p, r, m)
		assert.LessOrEqual(t, o.X, q.X+1e-12)
		assert.LessOrEqual(t, math.Abs(o.Y), r*m*0.5+1e-12)
	}
}

func TestOffsetAtEllipse(t *testing.T) {
	r, m := 0.3, 0.2
	a := r * m
	b := a * 0.5
	for p := 0.0; p <= 1.0; p += 0.05 {
		o := OffsetAt(p, r, m)
		assert.InDelta(t, 1.0, o.X*o.X/(a*a)+o.Y*o.Y/(b*b), 1e-9, "progress %v", p)
	}
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(0, 1))
	assert.Equal(t, 0.0, Progress(0, 0))
	assert.Equal(t, 0.0, Progress(0, 10))
	assert.Equal(t, 1.0, Progress(9, 10))
	assert.InDelta(t, 2.0/9.0, Progress(2, 10), 1e-12)
}
