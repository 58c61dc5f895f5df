package automation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pongsim/internal/config"
	"github.com/san-kum/pongsim/internal/experiment"
	"github.com/san-kum/pongsim/internal/sim"
)

// Scenario is a scripted batch of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep names a base configuration, either a preset or a config file,
// and the overrides applied on top of it.
type ScenarioStep struct {
	Preset   string             `yaml:"preset"`
	Config   string             `yaml:"config"`
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	Params   map[string]float64 `yaml:"params"` // "body.param": value
	Metrics  []string           `yaml:"metrics"`
	SaveAs   string             `yaml:"save_as"`
}

// StepResult is one finished step.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	return &scenario, nil
}

// Resolve builds the step's configuration.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case s.Preset != "" && s.Config != "":
		return nil, fmt.Errorf("step sets both preset %q and config %q", s.Preset, s.Config)
	case s.Preset != "":
		cfg, err = config.GetPreset(s.Preset)
	case s.Config != "":
		cfg, err = config.Load(s.Config)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	for key, v := range s.Params {
		body, param, ok := strings.Cut(key, ".")
		if !ok {
			return nil, fmt.Errorf("param %q: want body.param", key)
		}
		if err := cfg.SetBodyParam(body, param, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func (s ScenarioStep) name(cfg *config.Config, i int) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case cfg.Name != "":
		return cfg.Name
	}
	return fmt.Sprintf("step%d", i+1)
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the steps that finished.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		name := step.name(cfg, i)
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", name)

		exp, err := experiment.New(cfg, step.Metrics, experiment.WithLogger(logger))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}
	return results, nil
}
