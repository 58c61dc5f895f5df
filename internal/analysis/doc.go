// Package analysis inspects recorded runs.
//
//   - [PhasePortrait]: one body's trajectory in a plane of two state fields
//   - [Crossings]: times and positions where a body crosses a horizontal line,
//     such as the net
//   - [PowerSpectrum]: amplitude spectrum of a sampled series, used to find
//     the bounce or oscillation frequency of a body
package analysis
