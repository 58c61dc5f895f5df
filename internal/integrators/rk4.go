package integrators

import "github.com/san-kum/pongsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta stepper. It performs exactly
// four force evaluations per step and never clamps inside the stages.
type RK4 struct {
	a, b, c, d dynamo.Derivative
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(acc dynamo.Accelerator, s dynamo.KinematicState, dt float64) dynamo.KinematicState {
	r.a = evaluate(acc, s, 0, dynamo.Derivative{})
	r.b = evaluate(acc, s, dt*0.5, r.a)
	r.c = evaluate(acc, s, dt*0.5, r.b)
	r.d = evaluate(acc, s, dt, r.c)

	dt6 := dt / 6.0
	return dynamo.KinematicState{
		X:  s.X + dt6*(r.a.DX+2*r.b.DX+2*r.c.DX+r.d.DX),
		Y:  s.Y + dt6*(r.a.DY+2*r.b.DY+2*r.c.DY+r.d.DY),
		DX: s.DX + dt6*(r.a.DDX+2*r.b.DDX+2*r.c.DDX+r.d.DDX),
		DY: s.DY + dt6*(r.a.DDY+2*r.b.DDY+2*r.c.DDY+r.d.DDY),
	}
}

// evaluate samples the derivative at state + seed*dt.
func evaluate(acc dynamo.Accelerator, s dynamo.KinematicState, dt float64, seed dynamo.Derivative) dynamo.Derivative {
	trial := s.Advance(seed, dt)
	ddx, ddy := acc.Accelerate(trial, trial.Sub(s))
	return dynamo.Derivative{DX: trial.DX, DY: trial.DY, DDX: ddx, DDY: ddy}
}
