package physics

import (
	"math"

	"github.com/san-kum/pongsim/internal/dynamo"
)

// Accelerate is the force model. It is evaluated four times per Integrate at
// the RK4 trial states; offset is the trial state minus the committed state.
// An unknown mode yields zero acceleration.
func (b *Body) Accelerate(trial, offset dynamo.KinematicState) (float64, float64) {
	switch b.mode {
	case dynamo.Forced:
		return b.springToGoal(trial)
	case dynamo.Free:
		return b.drag(trial)
	case dynamo.Collision:
		return b.contactResponse(offset)
	}
	return 0, 0
}

func (b *Body) springToGoal(s dynamo.KinematicState) (float64, float64) {
	ax := -b.p.K*(s.X-b.goal.X) - b.p.B*(s.DX-b.goal.DX)
	ay := -b.p.K*(s.Y-b.goal.Y) - b.p.B*(s.DY-b.goal.DY)
	return ax, ay
}

func (b *Body) drag(s dynamo.KinematicState) (float64, float64) {
	ax := -b.p.K1*math.Sqrt(math.Abs(s.DX))*s.DX - b.p.K2*s.DX
	ay := -b.p.K1*math.Sqrt(math.Abs(s.DY))*s.DY - b.p.K2*s.DY
	return ax, ay
}

// contactResponse sums a penetration spring over every live contact. The
// stiffness grows with depth (K3·depth) and K4 damps the normal velocity.
// The partner is held fixed for the duration of the step, so the stage
// offset is folded into depth and normal velocity.
func (b *Body) contactResponse(offset dynamo.KinematicState) (float64, float64) {
	var ax, ay float64
	for _, c := range b.contacts {
		depth := c.Depth - (offset.X*c.NX + offset.Y*c.NY)
		if depth <= 0 {
			continue
		}
		vn := (c.Relative.DX+offset.DX)*c.NX + (c.Relative.DY+offset.DY)*c.NY
		k := b.p.K3 * depth
		f := k*depth - b.p.K4*vn
		ax += f * c.NX
		ay += f * c.NY
	}
	return ax, ay
}
