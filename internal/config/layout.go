package config

import (
	"fmt"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/physics"
)

const (
	RegionFull  = "full"
	RegionLower = "lower"
	RegionUpper = "upper"
)

func (c *Config) ArenaRect() dynamo.Rect {
	return dynamo.Rect{Right: c.Arena.Width, Bottom: c.Arena.Height}
}

// RegionRect maps a region name to the part of the arena a body lives in.
// Players own one half each, the ball the whole field.
func (c *Config) RegionRect(region string) (dynamo.Rect, error) {
	w, h := c.Arena.Width, c.Arena.Height
	switch region {
	case "", RegionFull:
		return c.ArenaRect(), nil
	case RegionLower:
		return dynamo.Rect{Top: h / 2, Right: w, Bottom: h}, nil
	case RegionUpper:
		return dynamo.Rect{Right: w, Bottom: h / 2}, nil
	}
	return dynamo.Rect{}, fmt.Errorf("%w: unknown region %q", dynamo.ErrParameterBounds, region)
}

// Params resolves a body's physical constants from its kind defaults and overrides.
func (c *Config) Params(bc BodyConfig) (physics.Params, error) {
	var p physics.Params
	switch bc.Kind {
	case "", "ball":
		p = physics.DefaultBallParams()
	case "player":
		p = physics.DefaultPlayerParams()
	default:
		return p, fmt.Errorf("body %q: unknown kind %q", bc.Name, bc.Kind)
	}
	p.Name = bc.Name
	if bc.Color != "" {
		p.Color = bc.Color
	}
	if bc.Radius != 0 {
		p.Radius = bc.Radius
	}
	if bc.InverseMass != 0 {
		p.InverseMass = bc.InverseMass
	}
	if bc.MaxSpeed != 0 {
		p.MaxSpeed = bc.MaxSpeed
	}
	for _, o := range []struct {
		src *float64
		dst *float64
	}{{bc.K, &p.K}, {bc.B, &p.B}, {bc.K1, &p.K1}, {bc.K2, &p.K2}, {bc.K3, &p.K3}, {bc.K4, &p.K4}} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}

	policy := c.GoalPolicy
	if bc.GoalPolicy != "" {
		policy = bc.GoalPolicy
	}
	gp, err := physics.ParseGoalPolicy(policy)
	if err != nil {
		return p, fmt.Errorf("body %q: %w", bc.Name, err)
	}
	p.GoalPolicy = gp
	return p, p.Validate()
}

// BuildBodies constructs every configured body with its initial velocity and
// mode. A body is placed at its absolute position if one is given, otherwise
// at its start fraction of the region (the region center by default).
func BuildBodies(c *Config) ([]*physics.Body, error) {
	bodies := make([]*physics.Body, 0, len(c.Bodies))
	for _, bc := range c.Bodies {
		p, err := c.Params(bc)
		if err != nil {
			return nil, err
		}
		b, err := physics.NewBody(p)
		if err != nil {
			return nil, err
		}

		region, err := c.RegionRect(bc.Region)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		b.SetBoundary(region)

		fx, fy := 0.5, 0.5
		if len(bc.Start) == 2 {
			fx, fy = bc.Start[0], bc.Start[1]
		}
		x, y := region.Left+fx*region.Width(), region.Top+fy*region.Height()
		if len(bc.Position) == 2 {
			x, y = bc.Position[0], bc.Position[1]
		}
		x, y = b.Inset().Clamp(x, y)
		b.SetPosition(x, y)

		if len(bc.Velocity) == 2 {
			st := b.State()
			st.DX, st.DY = bc.Velocity[0], bc.Velocity[1]
			b.SetState(st)
		}

		mode, err := dynamo.ParseMode(bc.Mode)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		b.SetMode(mode)
		bodies = append(bodies, b)
	}
	return bodies, nil
}
