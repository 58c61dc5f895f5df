// Package physics implements the circular bodies of the arena simulation.
//
// A [Body] owns its kinematic state, its goal, its [dynamo.Mode] and the
// tuning constants of the three force laws:
//
//   - Forced: critically damped spring toward the goal
//   - Free: non-linear drag, no target
//   - Collision: penetration spring along each live contact normal
//
// Every mode is advanced with the same RK4 stepper; only the acceleration
// differs. After each step the speed is clamped and the body is pushed back
// inside its arena by the boundary resolver.
//
// Pairwise overlap is handled by [ResolveContacts], which fills each body's
// contact list and switches modes level-triggered on overlap.
//
//	a, _ := physics.NewBody(physics.DefaultBallParams())
//	b, _ := physics.NewBody(physics.DefaultBallParams())
//	report := physics.ResolvePair(a, b)
//	a.Integrate(dt)
//	b.Integrate(dt)
//
// Bodies implement [dynamo.Configurable] for runtime parameter adjustment.
package physics
