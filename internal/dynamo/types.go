package dynamo

import (
	"fmt"
	"math"
)

// KinematicState is the position and velocity of one body, in arena pixels and
// pixels per second.
type KinematicState struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (s KinematicState) IsValid() bool {
	for _, v := range [4]float64{s.X, s.Y, s.DX, s.DY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s KinematicState) Speed() float64 {
	return math.Hypot(s.DX, s.DY)
}

func (s KinematicState) Sub(other KinematicState) KinematicState {
	return KinematicState{
		X:  s.X - other.X,
		Y:  s.Y - other.Y,
		DX: s.DX - other.DX,
		DY: s.DY - other.DY,
	}
}

func (s KinematicState) Neg() KinematicState {
	return KinematicState{X: -s.X, Y: -s.Y, DX: -s.DX, DY: -s.DY}
}

// Advance returns the state moved along d for dt seconds.
func (s KinematicState) Advance(d Derivative, dt float64) KinematicState {
	return KinematicState{
		X:  s.X + d.DX*dt,
		Y:  s.Y + d.DY*dt,
		DX: s.DX + d.DDX*dt,
		DY: s.DY + d.DDY*dt,
	}
}

// Derivative is velocity and acceleration evaluated at one integration stage.
type Derivative struct {
	DX, DY   float64
	DDX, DDY float64
}

// Contact is the collision geometry seen from one body. The normal points from
// the partner toward the body being resolved; Relative is this body's state
// minus the partner's.
type Contact struct {
	NX, NY     float64
	Depth      float64
	Relative   KinematicState
	Degenerate bool
}

// Reverse returns the same contact seen from the partner.
func (c Contact) Reverse() Contact {
	return Contact{
		NX:         -c.NX,
		NY:         -c.NY,
		Depth:      c.Depth,
		Relative:   c.Relative.Neg(),
		Degenerate: c.Degenerate,
	}
}

// Rect is an axis-aligned rectangle in arena coordinates, y growing downward.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Inset shrinks r by d on every side. A rectangle narrower than 2d collapses
// onto its center line.
func (r Rect) Inset(d float64) Rect {
	out := Rect{Left: r.Left + d, Top: r.Top + d, Right: r.Right - d, Bottom: r.Bottom - d}
	if out.Left > out.Right {
		cx := r.CenterX()
		out.Left, out.Right = cx, cx
	}
	if out.Top > out.Bottom {
		cy := r.CenterY()
		out.Top, out.Bottom = cy, cy
	}
	return out
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

func (r Rect) Clamp(x, y float64) (float64, float64) {
	return math.Max(r.Left, math.Min(r.Right, x)), math.Max(r.Top, math.Min(r.Bottom, y))
}

// Mode selects the force law a body is under.
type Mode int

const (
	Free Mode = iota
	Forced
	Collision
)

func (m Mode) Valid() bool {
	return m >= Free && m <= Collision
}

func (m Mode) String() string {
	switch m {
	case Free:
		return "free"
	case Forced:
		return "forced"
	case Collision:
		return "collision"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a config name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "free":
		return Free, nil
	case "forced":
		return Forced, nil
	case "collision":
		return Collision, nil
	}
	return Free, fmt.Errorf("%w: %q", ErrInvalidMode, name)
}

// Accelerator computes the acceleration of a body at a trial state. offset is
// the trial state minus the body's committed state.
type Accelerator interface {
	Accelerate(trial, offset KinematicState) (ddx, ddy float64)
}

type Integrator interface {
	Step(acc Accelerator, s KinematicState, dt float64) KinematicState
}

// Configurable exposes named tuning constants for live adjustment.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
