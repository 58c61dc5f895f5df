package viz

import (
	"math"

	"github.com/san-kum/pongsim/internal/dynamo"
)

// Viewport maps arena coordinates onto canvas sub-pixels with one uniform scale.
type Viewport struct {
	Arena dynamo.Rect
	Scale float64
}

func NewViewport(arena dynamo.Rect, c *Canvas) Viewport {
	pw, ph := c.PixelSize()
	scale := math.Min(float64(pw-1)/arena.Width(), float64(ph-1)/arena.Height())
	if !(scale > 0) {
		scale = 1
	}
	return Viewport{Arena: arena, Scale: scale}
}

func (v Viewport) ToPixel(x, y float64) (int, int) {
	return int(math.Round((x - v.Arena.Left) * v.Scale)), int(math.Round((y - v.Arena.Top) * v.Scale))
}

func (v Viewport) Length(d float64) int {
	return int(math.Round(d * v.Scale))
}

// ToArena maps a terminal cell, relative to the canvas origin, to the arena
// point under the center of that cell.
func (v Viewport) ToArena(col, row int) (float64, float64) {
	px := float64(col)*2 + 1
	py := float64(row)*4 + 2
	return v.Arena.Left + px/v.Scale, v.Arena.Top + py/v.Scale
}
