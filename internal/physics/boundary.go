package physics

import (
	"math"

	"github.com/san-kum/pongsim/internal/dynamo"
)

// maxBoundaryPasses bounds the per-axis resolution loop. Two passes contain
// every case except a corner hit whose back-shift lands outside the other axis.
const maxBoundaryPasses = 4

// fixBoundaryCollision pushes a penetrating body back onto the wall of its
// inset rectangle, moving it back along its path of travel, and reflects the
// wall-normal velocity. It returns the number of wall contacts resolved.
func (b *Body) fixBoundaryCollision() int {
	hits := 0
	for pass := 0; pass < maxBoundaryPasses; pass++ {
		vx, vy := b.state.DX, b.state.DY
		hitX := b.resolveAxis(&b.state.X, &b.state.DX, &b.state.Y, vy, b.inset.Left, b.inset.Right)
		hitY := b.resolveAxis(&b.state.Y, &b.state.DY, &b.state.X, vx, b.inset.Top, b.inset.Bottom)
		if !hitX && !hitY {
			break
		}
		if hitX {
			hits++
		}
		if hitY {
			hits++
		}
	}
	b.state.X, b.state.Y = b.inset.Clamp(b.state.X, b.state.Y)
	b.stats.WallHits += hits
	return hits
}

// resolveAxis handles one axis: pos/vel are the wall-normal components,
// other/otherVel the tangential ones.
func (b *Body) resolveAxis(pos, vel, other *float64, otherVel, lo, hi float64) bool {
	var wall, outward float64
	switch {
	case *pos < lo:
		wall, outward = lo, -1
	case *pos > hi:
		wall, outward = hi, 1
	default:
		return false
	}

	depth := math.Abs(*pos - wall)
	if *vel != 0 {
		*other -= otherVel * depth / math.Abs(*vel)
	}
	*pos = wall
	if *vel*outward > 0 {
		*vel = -*vel
	}
	return true
}

// Contained reports whether the body's center lies in its inset rectangle
// within eps.
func (b *Body) Contained(eps float64) bool {
	grown := dynamo.Rect{
		Left:   b.inset.Left - eps,
		Top:    b.inset.Top - eps,
		Right:  b.inset.Right + eps,
		Bottom: b.inset.Bottom + eps,
	}
	return grown.Contains(b.state.X, b.state.Y)
}
