package sim

import (
	"sync"
	"time"
)

const (
	DefaultResumeOffset = 100 * time.Millisecond
	DefaultMaxFrameDt   = 0.05
)

type LoopConfig struct {
	// ResumeOffset delays the first step after Start or Resume.
	ResumeOffset time.Duration
	// MaxFrameDt caps the step taken for one frame, in seconds. Zero disables the cap.
	MaxFrameDt float64
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{ResumeOffset: DefaultResumeOffset, MaxFrameDt: DefaultMaxFrameDt}
}

// Frame is what one host tick produced.
type Frame struct {
	Snapshot
	Dt      float64
	Stepped bool
}

// Loop drives a Simulation from a clock, one step per host frame, with the
// step size equal to the time elapsed since the previous frame.
type Loop struct {
	mu      sync.Mutex
	sim     *Simulation
	clock   Clock
	cfg     LoopConfig
	running bool
	last    time.Time
}

func NewLoop(s *Simulation, clock Clock, cfg LoopConfig) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{sim: s, clock: clock, cfg: cfg}
}

func (l *Loop) Simulation() *Simulation { return l.sim }

// Start is Resume; both arm the loop with the resume offset.
func (l *Loop) Start() { l.Resume() }

func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.last = l.clock.Now().Add(l.cfg.ResumeOffset)
}

func (l *Loop) Pause() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

// Toggle flips between paused and running and reports the new state.
func (l *Loop) Toggle() bool {
	l.mu.Lock()
	running := l.running
	l.mu.Unlock()
	if running {
		l.Pause()
	} else {
		l.Resume()
	}
	return !running
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Tick steps the simulation by the time since the previous tick. Ticks while
// paused, and ticks whose timestamp precedes the last-tick mark, do not step.
func (l *Loop) Tick() (Frame, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return Frame{Snapshot: l.sim.Snapshot()}, nil
	}
	now := l.clock.Now()
	if !now.After(l.last) {
		return Frame{Snapshot: l.sim.Snapshot()}, nil
	}

	dt := now.Sub(l.last).Seconds()
	l.last = now
	if l.cfg.MaxFrameDt > 0 && dt > l.cfg.MaxFrameDt {
		dt = l.cfg.MaxFrameDt
	}
	if err := l.sim.Step(dt); err != nil {
		return Frame{Snapshot: l.sim.Snapshot()}, err
	}
	return Frame{Snapshot: l.sim.Snapshot(), Dt: dt, Stepped: true}, nil
}
