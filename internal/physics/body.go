package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/integrators"
)

// Stats are per-body diagnostic counters.
type Stats struct {
	ModeTransitions    int
	InvalidModes       int
	InvalidStates      int
	WallHits           int
	ContactTicks       int
	DegenerateContacts int
}

// Body is one simulated circle. It is not safe for concurrent use.
type Body struct {
	p          Params
	arena      dynamo.Rect
	inset      dynamo.Rect
	state      dynamo.KinematicState
	goal       dynamo.KinematicState
	mode       dynamo.Mode
	contacts   []dynamo.Contact
	integrator dynamo.Integrator
	stats      Stats
	err        error
}

func NewBody(p Params) (*Body, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("body %q: %w", p.Name, err)
	}
	return &Body{
		p:          p,
		mode:       dynamo.Free,
		contacts:   make([]dynamo.Contact, 0, 2),
		integrator: integrators.NewRK4(),
	}, nil
}

func (b *Body) Name() string                 { return b.p.Name }
func (b *Body) Color() string                { return b.p.Color }
func (b *Body) Radius() float64              { return b.p.Radius }
func (b *Body) X() float64                   { return b.state.X }
func (b *Body) Y() float64                   { return b.state.Y }
func (b *Body) Params() Params               { return b.p }
func (b *Body) Mode() dynamo.Mode            { return b.mode }
func (b *Body) Stats() Stats                 { return b.stats }
func (b *Body) Arena() dynamo.Rect           { return b.arena }
func (b *Body) Inset() dynamo.Rect           { return b.inset }
func (b *Body) MaxSpeed() float64            { return b.p.MaxSpeed }
func (b *Body) InverseMass() float64         { return b.p.InverseMass }
func (b *Body) Goal() dynamo.KinematicState  { return b.goal }
func (b *Body) State() dynamo.KinematicState { return b.state }

func (b *Body) Contacts() []dynamo.Contact {
	out := make([]dynamo.Contact, len(b.contacts))
	copy(out, b.contacts)
	return out
}

// KineticEnergy is 0.5*m*|v|^2.
func (b *Body) KineticEnergy() float64 {
	v := b.state.Speed()
	return 0.5 * v * v / b.p.InverseMass
}

// SetBoundary sets the arena rectangle. The body's center is confined to the
// arena inset by its radius. Kinematic state is left untouched.
func (b *Body) SetBoundary(arena dynamo.Rect) {
	b.arena = arena
	b.inset = arena.Inset(b.p.Radius)
}

// SetPosition puts the body at rest at (x, y) and makes that its goal.
func (b *Body) SetPosition(x, y float64) {
	b.state = dynamo.KinematicState{X: x, Y: y}
	b.goal = b.state
}

// SetState overwrites position and velocity. Used by scripted scenarios.
func (b *Body) SetState(s dynamo.KinematicState) {
	b.state = s
}

// SetGoal steers the body toward a stationary target in Forced mode. It
// reports false when the target lies outside the inset rectangle and the goal
// policy is RejectGoal; goal and mode are unchanged in that case.
func (b *Body) SetGoal(x, y float64) bool {
	return b.SetGoalVelocity(x, y, 0, 0)
}

// SetGoalVelocity is SetGoal with a moving target.
func (b *Body) SetGoalVelocity(x, y, dx, dy float64) bool {
	if !b.inset.Contains(x, y) {
		if b.p.GoalPolicy != ClampGoal {
			return false
		}
		x, y = b.inset.Clamp(x, y)
	}
	b.goal = dynamo.KinematicState{X: x, Y: y, DX: dx, DY: dy}
	b.switchMode(dynamo.Forced)
	return true
}

func (b *Body) SetMode(m dynamo.Mode) {
	b.switchMode(m)
}

// Fling releases the body with the given velocity, clamped to MaxSpeed.
func (b *Body) Fling(dx, dy float64) {
	b.state.DX, b.state.DY = dx, dy
	b.clampSpeed()
	b.goal = dynamo.KinematicState{X: b.state.X, Y: b.state.Y}
	b.switchMode(dynamo.Free)
}

func (b *Body) switchMode(m dynamo.Mode) {
	if b.mode != m {
		b.stats.ModeTransitions++
	}
	b.mode = m
}

// Integrate advances the body by dt seconds: one RK4 step under the current
// mode, then the speed clamp, then the boundary resolver.
func (b *Body) Integrate(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	b.err = nil
	if !b.mode.Valid() {
		b.stats.InvalidModes++
		b.err = fmt.Errorf("%w: %v", dynamo.ErrInvalidMode, b.mode)
	}

	next := b.integrator.Step(b, b.state, dt)
	if !next.IsValid() {
		b.stats.InvalidStates++
		b.err = dynamo.ErrInvalidState
		next = dynamo.KinematicState{X: b.goal.X, Y: b.goal.Y}
	}
	b.state = next

	b.clampSpeed()
	b.fixBoundaryCollision()
}

// Err reports the recoverable condition hit by the last Integrate, if any.
func (b *Body) Err() error {
	return b.err
}

func (b *Body) clampSpeed() {
	s := b.state.Speed()
	if s > b.p.MaxSpeed {
		b.state.DX *= b.p.MaxSpeed / s
		b.state.DY *= b.p.MaxSpeed / s
	}
}

func (b *Body) GetParams() map[string]float64 {
	return map[string]float64{
		"k":         b.p.K,
		"b":         b.p.B,
		"k1":        b.p.K1,
		"k2":        b.p.K2,
		"k3":        b.p.K3,
		"k4":        b.p.K4,
		"max_speed": b.p.MaxSpeed,
	}
}

func (b *Body) SetParam(name string, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, value)
	}
	switch name {
	case "k":
		b.p.K = value
	case "b":
		b.p.B = value
	case "k1":
		b.p.K1 = value
	case "k2":
		b.p.K2 = value
	case "k3":
		b.p.K3 = value
	case "k4":
		b.p.K4 = value
	case "max_speed":
		if value == 0 {
			return fmt.Errorf("%w: max_speed must be positive", dynamo.ErrParameterBounds)
		}
		b.p.MaxSpeed = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
