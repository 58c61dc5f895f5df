package sim

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/physics"
)

// maxPendingErrors bounds the recoverable errors kept between drains.
const maxPendingErrors = 64

// Simulation owns a set of bodies and steps them together. Every exported
// method takes the same lock, so a render loop and an input handler can share
// one Simulation from different goroutines.
type Simulation struct {
	mu        sync.Mutex
	bodies    []*physics.Body
	observers []Observer
	metrics   []Metric

	tick       int
	t          float64
	contacts   int
	degenerate int
	rejected   int
	errs       []error
}

func New(bodies ...*physics.Body) *Simulation {
	return &Simulation{
		bodies:    append([]*physics.Body(nil), bodies...),
		observers: make([]Observer, 0),
		metrics:   make([]Metric, 0),
	}
}

func (s *Simulation) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Simulation) AddMetric(m Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
}

// AddBody appends b and returns its index.
func (s *Simulation) AddBody(b *physics.Body) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, b)
	return len(s.bodies) - 1
}

func (s *Simulation) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

// Step advances every body by dt: contacts are resolved against the
// pre-step states, then each body integrates, clamps its speed and resolves
// its walls. Recoverable per-body faults do not fail the step; they are
// counted and queued for DrainErrors.
func (s *Simulation) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidTimestep, dt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rep := physics.ResolveContacts(s.bodies)
	s.contacts += rep.Contacts
	s.degenerate += rep.Degenerate
	if rep.Degenerate > 0 {
		for i, b := range s.bodies {
			for _, c := range b.Contacts() {
				if c.Degenerate {
					s.pushError(&dynamo.SimulationError{Tick: s.tick, Time: s.t, Body: i, Wrapped: dynamo.ErrDegenerateCollision})
				}
			}
		}
	}

	for i, b := range s.bodies {
		b.Integrate(dt)
		if err := b.Err(); err != nil {
			s.pushError(&dynamo.SimulationError{Tick: s.tick, Time: s.t, Body: i, Wrapped: err})
		}
	}
	s.tick++
	s.t += dt

	if len(s.observers) == 0 && len(s.metrics) == 0 {
		return nil
	}
	snap := s.snapshotLocked()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, o := range s.observers {
		o.OnStep(snap)
	}
	return nil
}

func (s *Simulation) pushError(err error) {
	if len(s.errs) == maxPendingErrors {
		copy(s.errs, s.errs[1:])
		s.errs = s.errs[:maxPendingErrors-1]
	}
	s.errs = append(s.errs, err)
}

// DrainErrors returns and clears the queued recoverable errors.
func (s *Simulation) DrainErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.errs
	s.errs = nil
	return out
}

func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulation) snapshotLocked() Snapshot {
	snap := Snapshot{
		Tick:        s.tick,
		Time:        s.t,
		Bodies:      make([]BodyView, len(s.bodies)),
		Diagnostics: s.diagnosticsLocked(),
	}
	for i, b := range s.bodies {
		st := b.State()
		snap.Bodies[i] = BodyView{
			Name:          b.Name(),
			Color:         b.Color(),
			X:             st.X,
			Y:             st.Y,
			DX:            st.DX,
			DY:            st.DY,
			Radius:        b.Radius(),
			Mode:          b.Mode(),
			KineticEnergy: b.KineticEnergy(),
			Contained:     b.Contained(1e-9),
		}
	}
	return snap
}

func (s *Simulation) Diagnostics() Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diagnosticsLocked()
}

func (s *Simulation) diagnosticsLocked() Diagnostics {
	d := Diagnostics{
		Ticks:              s.tick,
		Contacts:           s.contacts,
		DegenerateContacts: s.degenerate,
		RejectedGoals:      s.rejected,
	}
	for _, b := range s.bodies {
		st := b.Stats()
		d.ModeTransitions += st.ModeTransitions
		d.InvalidModes += st.InvalidModes
		d.InvalidStates += st.InvalidStates
		d.WallHits += st.WallHits
	}
	return d
}

// MetricValues reports the current value of every attached metric.
func (s *Simulation) MetricValues() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Update runs fn on body i while holding the simulation lock.
func (s *Simulation) Update(i int, fn func(b *physics.Body)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.bodies) {
		return fmt.Errorf("%w: %d of %d", dynamo.ErrBodyIndex, i, len(s.bodies))
	}
	fn(s.bodies[i])
	return nil
}

// SetGoal reports whether the target was accepted. Rejected targets are
// counted in Diagnostics.RejectedGoals.
func (s *Simulation) SetGoal(i int, x, y float64) (bool, error) {
	return s.SetGoalVelocity(i, x, y, 0, 0)
}

func (s *Simulation) SetGoalVelocity(i int, x, y, dx, dy float64) (bool, error) {
	var ok bool
	err := s.Update(i, func(b *physics.Body) {
		if ok = b.SetGoalVelocity(x, y, dx, dy); !ok {
			s.rejected++
		}
	})
	return ok, err
}

func (s *Simulation) SetMode(i int, m dynamo.Mode) error {
	return s.Update(i, func(b *physics.Body) { b.SetMode(m) })
}

func (s *Simulation) Fling(i int, dx, dy float64) error {
	return s.Update(i, func(b *physics.Body) { b.Fling(dx, dy) })
}

func (s *Simulation) SetBoundary(i int, arena dynamo.Rect) error {
	return s.Update(i, func(b *physics.Body) { b.SetBoundary(arena) })
}

func (s *Simulation) SetPosition(i int, x, y float64) error {
	return s.Update(i, func(b *physics.Body) { b.SetPosition(x, y) })
}

// Find returns the index of the first body with the given name, or -1.
func (s *Simulation) Find(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bodies {
		if b.Name() == name {
			return i
		}
	}
	return -1
}
