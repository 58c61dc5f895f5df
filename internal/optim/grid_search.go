package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/pongsim/internal/config"
	"github.com/san-kum/pongsim/internal/experiment"
)

// Axis is one swept parameter: a body constant and the values to try.
type Axis struct {
	Body   string
	Param  string
	Values []float64
}

func (a Axis) Key() string { return a.Body + "." + a.Param }

// ParseAxis reads "body.param=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	lhs, rhs, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("axis %q: want body.param=v1,v2", s)
	}
	body, param, ok := strings.Cut(lhs, ".")
	if !ok || body == "" || param == "" {
		return Axis{}, fmt.Errorf("axis %q: want body.param=v1,v2", s)
	}
	a := Axis{Body: body, Param: param}
	for _, f := range strings.Split(rhs, ",") {
		var v float64
		if _, err := fmt.Sscanf(strings.TrimSpace(f), "%g", &v); err != nil {
			return Axis{}, fmt.Errorf("axis %q: bad value %q", s, f)
		}
		a.Values = append(a.Values, v)
	}
	return a, nil
}

// Trial is one grid point and the metric it scored.
type Trial struct {
	Params map[string]float64
	Value  float64
}

// GridSearch sweeps every combination of its axes over a base configuration,
// running the grid points concurrently.
type GridSearch struct {
	base     *config.Config
	axes     []Axis
	metric   string
	maximize bool
	workers  int
	opts     []experiment.Option
}

func NewGridSearch(base *config.Config, axes []Axis, metric string, opts ...experiment.Option) *GridSearch {
	return &GridSearch{base: base, axes: axes, metric: metric, opts: opts}
}

// Maximize flips the search to prefer the largest metric value.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

func (g *GridSearch) SetWorkers(n int) {
	g.workers = n
}

// Search returns the best trial and every trial in grid order.
func (g *GridSearch) Search(ctx context.Context) (Trial, []Trial, error) {
	points := g.grid()
	configs := make([]*config.Config, len(points))
	for i, p := range points {
		cfg := g.base.Clone()
		for _, a := range g.axes {
			if err := cfg.SetBodyParam(a.Body, a.Param, p[a.Key()]); err != nil {
				return Trial{}, nil, err
			}
		}
		configs[i] = cfg
	}

	ens := experiment.NewEnsemble(configs, []string{g.metric}, g.opts...)
	ens.SetWorkers(g.workers)
	results, err := ens.Run(ctx)
	if err != nil {
		return Trial{}, nil, err
	}

	best := Trial{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}
	trials := make([]Trial, len(points))
	for i, res := range results {
		v, ok := res.Metrics[g.metric]
		if !ok {
			return Trial{}, nil, fmt.Errorf("metric %s not recorded", g.metric)
		}
		trials[i] = Trial{Params: points[i], Value: v}
		if (g.maximize && v > best.Value) || (!g.maximize && v < best.Value) {
			best = trials[i]
		}
	}
	return best, trials, nil
}

func (g *GridSearch) grid() []map[string]float64 {
	points := []map[string]float64{{}}
	for _, a := range g.axes {
		next := make([]map[string]float64, 0, len(points)*len(a.Values))
		for _, p := range points {
			for _, v := range a.Values {
				q := make(map[string]float64, len(p)+1)
				for k, pv := range p {
					q[k] = pv
				}
				q[a.Key()] = v
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Keys lists a trial's parameters in stable order.
func (t Trial) Keys() []string {
	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
