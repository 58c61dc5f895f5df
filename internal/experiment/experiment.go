package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/pongsim/internal/config"
	"github.com/san-kum/pongsim/internal/control"
	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/metrics"
	"github.com/san-kum/pongsim/internal/sim"
)

// scriptEpsilon absorbs float drift when matching event times to sim time.
const scriptEpsilon = 1e-9

// Experiment runs a configuration headless: a manual clock drives the same
// Loop a live host uses, advancing exactly cfg.Dt per frame.
type Experiment struct {
	cfg      *config.Config
	sim      *sim.Simulation
	loop     *sim.Loop
	clock    *sim.ManualClock
	trackers []*control.Tracker
	script   []config.ScriptEvent
	logger   *log.Logger
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func New(cfg *config.Config, metricNames []string, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bodies, err := config.BuildBodies(cfg)
	if err != nil {
		return nil, err
	}
	ms, err := metrics.Build(metricNames)
	if err != nil {
		return nil, err
	}

	s := sim.New(bodies...)
	for _, m := range ms {
		s.AddMetric(m)
	}

	clock := sim.NewManualClock(time.Unix(0, 0))
	e := &Experiment{
		cfg:    cfg,
		sim:    s,
		clock:  clock,
		loop:   sim.NewLoop(s, clock, sim.LoopConfig{ResumeOffset: cfg.ResumeOffset, MaxFrameDt: cfg.MaxFrameDt}),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, tc := range cfg.Trackers {
		e.trackers = append(e.trackers, control.NewTracker(s.Find(tc.Body), s.Find(tc.Target), tc.Lead))
	}
	e.script = append([]config.ScriptEvent(nil), cfg.Script...)
	sort.SliceStable(e.script, func(i, j int) bool { return e.script[i].At < e.script[j].At })

	if cfg.MaxFrameDt > 0 && cfg.Dt > cfg.MaxFrameDt {
		e.logger.Warn("dt exceeds max_frame_dt, steps will be capped", "dt", cfg.Dt, "max_frame_dt", cfg.MaxFrameDt)
	}
	return e, nil
}

func (e *Experiment) Simulation() *sim.Simulation { return e.sim }

// Steps is the number of frames a full run takes.
func (e *Experiment) Steps() int {
	return int(math.Round(e.cfg.Duration / e.cfg.Dt))
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	names := make([]string, len(e.cfg.Bodies))
	for i, b := range e.cfg.Bodies {
		names[i] = b.Name
	}
	result := sim.NewResult(names)

	err := e.RunWithCallback(ctx, func(f sim.Frame) bool {
		result.Record(f.Snapshot)
		if f.Stepped {
			result.StepsTaken++
		}
		return true
	}, func(err error) {
		result.Errors = append(result.Errors, err)
	})

	result.Diagnostics = e.sim.Diagnostics()
	result.Metrics = e.sim.MetricValues()
	return result, err
}

// RunWithCallback drives the loop frame by frame. onFrame sees the initial
// state and every frame after it; returning false stops the run early.
// onError receives the recoverable faults drained after each frame.
func (e *Experiment) RunWithCallback(ctx context.Context, onFrame func(sim.Frame) bool, onError func(error)) error {
	step := time.Duration(e.cfg.Dt * float64(time.Second))
	if step <= 0 {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidTimestep, e.cfg.Dt)
	}

	e.loop.Start()
	e.clock.Advance(e.cfg.ResumeOffset)
	if !onFrame(sim.Frame{Snapshot: e.sim.Snapshot()}) {
		return nil
	}

	next := 0
	for i, n := 0, e.Steps(); i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := e.sim.Snapshot().Time
		for next < len(e.script) && e.script[next].At <= now+scriptEpsilon {
			if err := e.apply(e.script[next]); err != nil {
				return err
			}
			next++
		}
		for _, tr := range e.trackers {
			if err := tr.Apply(e.sim); err != nil {
				return err
			}
		}

		e.clock.Advance(step)
		frame, err := e.loop.Tick()
		if err != nil {
			return err
		}
		for _, fault := range e.sim.DrainErrors() {
			e.logger.Debug("recovered", "err", fault)
			if onError != nil {
				onError(fault)
			}
		}
		if !onFrame(frame) {
			return nil
		}
	}
	return nil
}

func (e *Experiment) apply(ev config.ScriptEvent) error {
	i := e.sim.Find(ev.Body)
	e.logger.Debug("script", "t", ev.At, "body", ev.Body, "action", ev.Action)

	switch ev.Action {
	case config.ActionGoal, config.ActionGoalVelocity:
		var dx, dy float64
		if ev.Action == config.ActionGoalVelocity {
			dx, dy = ev.DX, ev.DY
		}
		ok, err := e.sim.SetGoalVelocity(i, ev.X, ev.Y, dx, dy)
		if err != nil {
			return err
		}
		if !ok {
			e.logger.Warn("goal outside region, ignored", "body", ev.Body, "x", ev.X, "y", ev.Y)
		}
		return nil
	case config.ActionFree:
		return e.sim.SetMode(i, dynamo.Free)
	case config.ActionFling:
		return e.sim.Fling(i, ev.DX, ev.DY)
	}
	return fmt.Errorf("unknown action %q", ev.Action)
}
