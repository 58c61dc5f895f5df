package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/pongsim/internal/dynamo"
)

const (
	DefaultPlayerRadius   = 30.0
	DefaultBallRadius     = 15.0
	DefaultPlayerMaxSpeed = 1000.0
	DefaultBallMaxSpeed   = 2000.0
	DefaultPlayerMass     = 10.0
	DefaultBallMass       = 2.0

	DefaultStiffness        = 100.0
	DefaultDamping          = 20.0 // 2*sqrt(DefaultStiffness): critical
	DefaultQuadraticDrag    = 0.02
	DefaultLinearDrag       = 0.6
	DefaultContactStiffness = 4000.0
	DefaultContactDamping   = 20.0
)

// GoalPolicy decides what SetGoal does with a target outside the inset rectangle.
type GoalPolicy int

const (
	// RejectGoal ignores the request.
	RejectGoal GoalPolicy = iota
	// ClampGoal moves the target onto the nearest point of the inset rectangle.
	ClampGoal
)

func (p GoalPolicy) String() string {
	if p == ClampGoal {
		return "clamp"
	}
	return "reject"
}

func ParseGoalPolicy(name string) (GoalPolicy, error) {
	switch name {
	case "", "reject":
		return RejectGoal, nil
	case "clamp":
		return ClampGoal, nil
	}
	return RejectGoal, fmt.Errorf("%w: goal policy %q", dynamo.ErrParameterBounds, name)
}

// Params are the construction-time constants of a body.
type Params struct {
	Name        string
	Color       string
	Radius      float64
	InverseMass float64
	MaxSpeed    float64

	// Forced: spring stiffness and damping toward the goal.
	K, B float64
	// Free: quadratic-ish and linear drag.
	K1, K2 float64
	// Collision: contact stiffness and damping.
	K3, K4 float64

	GoalPolicy GoalPolicy
}

func DefaultPlayerParams() Params {
	return Params{
		Name:        "player",
		Color:       "#ff0000",
		Radius:      DefaultPlayerRadius,
		InverseMass: 1 / DefaultPlayerMass,
		MaxSpeed:    DefaultPlayerMaxSpeed,
		K:           DefaultStiffness,
		B:           DefaultDamping,
		K1:          DefaultQuadraticDrag,
		K2:          DefaultLinearDrag,
		K3:          DefaultContactStiffness,
		K4:          DefaultContactDamping,
	}
}

func DefaultBallParams() Params {
	return Params{
		Name:        "ball",
		Color:       "#ffffff",
		Radius:      DefaultBallRadius,
		InverseMass: 1 / DefaultBallMass,
		MaxSpeed:    DefaultBallMaxSpeed,
		K:           DefaultStiffness,
		B:           DefaultDamping,
		K1:          DefaultQuadraticDrag,
		K2:          DefaultLinearDrag,
		K3:          DefaultContactStiffness,
		K4:          DefaultContactDamping,
	}
}

func (p Params) Validate() error {
	positive := map[string]float64{
		"radius":       p.Radius,
		"inverse_mass": p.InverseMass,
		"max_speed":    p.MaxSpeed,
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", dynamo.ErrParameterBounds, name, v)
		}
	}
	gains := map[string]float64{"k": p.K, "b": p.B, "k1": p.K1, "k2": p.K2, "k3": p.K3, "k4": p.K4}
	for name, v := range gains {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be non-negative, got %v", dynamo.ErrParameterBounds, name, v)
		}
	}
	return nil
}
