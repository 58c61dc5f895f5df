package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/pongsim/internal/sim"
)

var constructors = map[string]func() sim.Metric{
	"kinetic_energy": func() sim.Metric { return NewEnergy() },
	"energy_gain":    func() sim.Metric { return NewEnergyGain() },
	"peak_speed":     func() sim.Metric { return NewPeakSpeed() },
	"containment":    func() sim.Metric { return NewContainment() },
	"contact_ratio":  func() sim.Metric { return NewContactRatio() },
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build returns fresh metrics for the given names; an empty list means all.
func Build(names []string) ([]sim.Metric, error) {
	if len(names) == 0 {
		names = Names()
	}
	out := make([]sim.Metric, 0, len(names))
	for _, n := range names {
		ctor, ok := constructors[n]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", n)
		}
		out = append(out, ctor())
	}
	return out, nil
}
