package metrics

import (
	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/sim"
)

// Containment is the fraction of observed ticks in which every body center
// stayed inside its inset rectangle.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(s sim.Snapshot) {
	c.samples++
	for _, b := range s.Bodies {
		if !b.Contained {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// ContactRatio is the fraction of observed ticks with at least one body in
// Collision mode.
type ContactRatio struct {
	name     string
	touching int
	samples  int
}

func NewContactRatio() *ContactRatio {
	return &ContactRatio{name: "contact_ratio"}
}

func (c *ContactRatio) Name() string { return c.name }

func (c *ContactRatio) Observe(s sim.Snapshot) {
	c.samples++
	for _, b := range s.Bodies {
		if b.Mode == dynamo.Collision {
			c.touching++
			return
		}
	}
}

func (c *ContactRatio) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.touching) / float64(c.samples)
}

func (c *ContactRatio) Reset() {
	c.touching = 0
	c.samples = 0
}
