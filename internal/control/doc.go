// Package control turns outside intent into body goals.
//
// Two sources are provided:
//
//   - [Tracker]: a computer opponent whose goal follows another body's x
//     coordinate while staying in its own region
//   - [Pointer]: a press/drag/release gesture mapped to SetGoal while held and
//     to Fling on a fast release
//
// Both act on a [sim.Simulation] through its locked mutators and never hold
// a body across calls.
//
//	tr := control.NewTracker(sim.Find("player2"), sim.Find("ball"), 0.1)
//	for each frame {
//		tr.Apply(s)
//		loop.Tick()
//	}
package control
