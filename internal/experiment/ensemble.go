package experiment

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pongsim/internal/config"
	"github.com/san-kum/pongsim/internal/sim"
)

// Ensemble runs independent configurations concurrently. Each run owns its
// own Simulation, so no state is shared between workers.
type Ensemble struct {
	configs []*config.Config
	metrics []string
	workers int
	opts    []Option
}

func NewEnsemble(configs []*config.Config, metricNames []string, opts ...Option) *Ensemble {
	return &Ensemble{
		configs: configs,
		metrics: metricNames,
		workers: runtime.NumCPU(),
		opts:    opts,
	}
}

func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run returns one result per configuration, in order. The first failing run
// cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*sim.Result, error) {
	results := make([]*sim.Result, len(e.configs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, cfg := range e.configs {
		i, cfg := i, cfg
		g.Go(func() error {
			exp, err := New(cfg, e.metrics, e.opts...)
			if err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
