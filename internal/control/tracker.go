package control

import (
	"fmt"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/physics"
	"github.com/san-kum/pongsim/internal/sim"
)

// Tracker steers Body toward Target's x coordinate, Lead seconds ahead of
// Target's horizontal velocity. The goal's y stays at the body's region center.
type Tracker struct {
	Body   int
	Target int
	Lead   float64
}

func NewTracker(body, target int, lead float64) *Tracker {
	return &Tracker{Body: body, Target: target, Lead: lead}
}

// Goal computes the unclamped target point from a snapshot.
func (t *Tracker) Goal(s sim.Snapshot, home float64) (float64, float64, error) {
	if t.Target < 0 || t.Target >= len(s.Bodies) {
		return 0, 0, fmt.Errorf("%w: tracker target %d", dynamo.ErrBodyIndex, t.Target)
	}
	target := s.Bodies[t.Target]
	return target.X + t.Lead*target.DX, home, nil
}

// Apply sets the goal for this frame. The point is clamped into the body's
// inset first so the body keeps tracking when the target leaves its reach.
func (t *Tracker) Apply(s *sim.Simulation) error {
	snap := s.Snapshot()
	var goalErr error
	err := s.Update(t.Body, func(b *physics.Body) {
		in := b.Inset()
		x, y, err := t.Goal(snap, in.CenterY())
		if err != nil {
			goalErr = err
			return
		}
		x, y = in.Clamp(x, y)
		b.SetGoal(x, y)
	})
	if err != nil {
		return err
	}
	return goalErr
}

// GetParams and SetParam allow live tuning of the lead time.
func (t *Tracker) GetParams() map[string]float64 {
	return map[string]float64{"lead": t.Lead}
}

func (t *Tracker) SetParam(name string, value float64) error {
	if name != "lead" {
		return fmt.Errorf("unknown param: %s", name)
	}
	if value < 0 {
		return fmt.Errorf("%w: lead=%v", dynamo.ErrParameterBounds, value)
	}
	t.Lead = value
	return nil
}
