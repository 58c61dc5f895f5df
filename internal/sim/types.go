package sim

import "github.com/san-kum/pongsim/internal/dynamo"

// BodyView is the read surface handed to renderers and metrics.
type BodyView struct {
	Name          string
	Color         string
	X, Y          float64
	DX, DY        float64
	Radius        float64
	Mode          dynamo.Mode
	KineticEnergy float64
	Contained     bool
}

// Snapshot is a consistent copy of every body taken under the simulation lock.
type Snapshot struct {
	Tick        int
	Time        float64
	Bodies      []BodyView
	Diagnostics Diagnostics
}

// Diagnostics are cumulative counters over the life of a simulation.
type Diagnostics struct {
	Ticks              int
	Contacts           int
	DegenerateContacts int
	ModeTransitions    int
	InvalidModes       int
	InvalidStates      int
	WallHits           int
	RejectedGoals      int
}

type Observer interface {
	OnStep(s Snapshot)
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Snapshot)

func (f ObserverFunc) OnStep(s Snapshot) { f(s) }

// Result is a recorded run: one row of body states per sample.
type Result struct {
	Bodies      []string
	Times       []float64
	States      [][]dynamo.KinematicState
	Modes       [][]dynamo.Mode
	Metrics     map[string]float64
	Diagnostics Diagnostics
	Errors      []error
	StepsTaken  int
}

func NewResult(bodies []string) *Result {
	return &Result{
		Bodies:  bodies,
		Times:   make([]float64, 0),
		States:  make([][]dynamo.KinematicState, 0),
		Modes:   make([][]dynamo.Mode, 0),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
}

func (r *Result) Record(s Snapshot) {
	states := make([]dynamo.KinematicState, len(s.Bodies))
	modes := make([]dynamo.Mode, len(s.Bodies))
	for i, b := range s.Bodies {
		states[i] = dynamo.KinematicState{X: b.X, Y: b.Y, DX: b.DX, DY: b.DY}
		modes[i] = b.Mode
	}
	r.Times = append(r.Times, s.Time)
	r.States = append(r.States, states)
	r.Modes = append(r.Modes, modes)
}

// Series extracts one coordinate of one body over time.
func (r *Result) Series(body int, pick func(dynamo.KinematicState) float64) []float64 {
	out := make([]float64, 0, len(r.States))
	for _, row := range r.States {
		if body < len(row) {
			out = append(out, pick(row[body]))
		}
	}
	return out
}
