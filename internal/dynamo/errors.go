package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidMode indicates a force evaluation under a mode outside Free/Forced/Collision.
	ErrInvalidMode = errors.New("dynamo: invalid body mode")

	// ErrDegenerateCollision indicates two bodies at exactly zero separation.
	ErrDegenerateCollision = errors.New("dynamo: degenerate collision (coincident centers)")

	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidTimestep indicates a non-positive or non-finite step size.
	ErrInvalidTimestep = errors.New("dynamo: timestep must be positive and finite")

	// ErrBodyIndex indicates a body index outside the simulation's body list.
	ErrBodyIndex = errors.New("dynamo: body index out of range")

	// ErrUnknownPreset indicates a preset name with no registered configuration.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

// SimulationError wraps an error with tick context.
type SimulationError struct {
	Tick    int
	Time    float64
	Body    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f) body %d: %v", e.Tick, e.Time, e.Body, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
