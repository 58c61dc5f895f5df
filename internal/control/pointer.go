package control

import (
	"math"
	"time"

	"github.com/san-kum/pongsim/internal/sim"
)

// DefaultFlingThreshold is the release speed, in arena pixels per second,
// above which a release flings the body instead of leaving it on its goal.
const DefaultFlingThreshold = 300.0

type sample struct {
	x, y float64
	at   time.Time
}

// Pointer maps a press/drag/release gesture onto one body.
type Pointer struct {
	Body      int
	Threshold float64

	down       bool
	prev, last sample
}

func NewPointer(body int) *Pointer {
	return &Pointer{Body: body, Threshold: DefaultFlingThreshold}
}

func (p *Pointer) Down() bool { return p.down }

// Press moves the body's goal under the pointer.
func (p *Pointer) Press(s *sim.Simulation, x, y float64, at time.Time) error {
	p.down = true
	p.prev = sample{x, y, at}
	p.last = p.prev
	_, err := s.SetGoal(p.Body, x, y)
	return err
}

func (p *Pointer) Drag(s *sim.Simulation, x, y float64, at time.Time) error {
	if !p.down {
		return p.Press(s, x, y, at)
	}
	p.prev, p.last = p.last, sample{x, y, at}
	_, err := s.SetGoal(p.Body, x, y)
	return err
}

// Release ends the gesture. It reports whether the body was flung.
func (p *Pointer) Release(s *sim.Simulation, x, y float64, at time.Time) (bool, error) {
	if !p.down {
		return false, nil
	}
	p.down = false
	p.prev, p.last = p.last, sample{x, y, at}

	vx, vy := p.Velocity()
	if math.Hypot(vx, vy) < p.Threshold {
		return false, nil
	}
	return true, s.Fling(p.Body, vx, vy)
}

// Velocity estimates the pointer velocity from the last two samples.
func (p *Pointer) Velocity() (float64, float64) {
	dt := p.last.at.Sub(p.prev.at).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return (p.last.x - p.prev.x) / dt, (p.last.y - p.prev.y) / dt
}
