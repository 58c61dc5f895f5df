// Package viz is the terminal host for the simulation, built on Bubble Tea.
//
//   - [Model]: the live view. A 60 Hz tick drives a [sim.Loop]; the mouse
//     steers one body through a [control.Pointer] and trackers steer the rest.
//   - [App]: preset picker with a small settings screen in front of [Model].
//   - [Canvas]: braille pixel grid with per-cell color.
//
// # Key Bindings
//
//	Space - Pause/Resume (a mouse press also resumes)
//	R     - Reset bodies
//	T     - Cycle color themes
//	Tab   - Select a parameter of the mouse-driven body
//	Up/Dn - Tune the selected parameter by 5%
//	?     - Show help overlay
package viz
