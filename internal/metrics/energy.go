package metrics

import (
	"math"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/sim"
)

// Energy is the mean total kinetic energy over the observed ticks.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Snapshot) {
	e.totalEnergy += TotalKineticEnergy(s)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

func TotalKineticEnergy(s sim.Snapshot) float64 {
	total := 0.0
	for _, b := range s.Bodies {
		total += b.KineticEnergy
	}
	return total
}

// EnergyGain is the largest tick-to-tick rise in total kinetic energy over
// ticks where every body is Free. Drag only removes energy, so anything above
// zero points at an integration fault.
type EnergyGain struct {
	name    string
	prev    float64
	primed  bool
	maxGain float64
}

func NewEnergyGain() *EnergyGain {
	return &EnergyGain{name: "energy_gain"}
}

func (e *EnergyGain) Name() string { return e.name }

func (e *EnergyGain) Observe(s sim.Snapshot) {
	energy := TotalKineticEnergy(s)
	free := true
	for _, b := range s.Bodies {
		if b.Mode != dynamo.Free {
			free = false
			break
		}
	}
	if free && e.primed {
		e.maxGain = math.Max(e.maxGain, energy-e.prev)
	}
	e.prev = energy
	e.primed = free
}

func (e *EnergyGain) Value() float64 { return e.maxGain }

func (e *EnergyGain) Reset() {
	e.prev = 0
	e.primed = false
	e.maxGain = 0
}

// PeakSpeed is the highest body speed seen.
type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(s sim.Snapshot) {
	for _, b := range s.Bodies {
		p.peak = math.Max(p.peak, math.Hypot(b.DX, b.DY))
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }
