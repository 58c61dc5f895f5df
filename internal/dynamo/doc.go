// Package dynamo provides the core value types shared by the arena simulation.
//
// The package defines the fundamental types the rest of the module passes around:
//
//   - [KinematicState]: position and velocity of one body at one instant
//   - [Derivative]: velocity and acceleration sampled at one RK4 stage
//   - [Contact]: collision geometry exchanged between two bodies
//   - [Rect]: axis-aligned arena rectangle
//   - [Mode]: the force law a body is currently under
//   - [Accelerator] and [Integrator]: the seam between force models and steppers
//
// # Example
//
//	ball, _ := physics.NewBody(physics.DefaultBallParams())
//	ball.SetBoundary(dynamo.Rect{Right: 480, Bottom: 800})
//	ball.SetPosition(240, 500)
//	ball.Fling(300, -900)
//	ball.Integrate(0.016)
//
// # Thread Safety
//
// Values in this package are plain data. Bodies are NOT thread-safe; the
// sim.Simulation type guards them with a single mutex.
package dynamo
