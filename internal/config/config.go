package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pongsim/internal/dynamo"
)

const (
	DefaultDt           = 0.01
	DefaultDuration     = 10.0
	DefaultArenaWidth   = 480.0
	DefaultArenaHeight  = 800.0
	DefaultResumeOffset = 100 * time.Millisecond
	DefaultMaxFrameDt   = 0.05
)

type Config struct {
	Name         string          `yaml:"name,omitempty"`
	Arena        ArenaConfig     `yaml:"arena"`
	Dt           float64         `yaml:"dt"`
	Duration     float64         `yaml:"duration"`
	ResumeOffset time.Duration   `yaml:"resume_offset"`
	MaxFrameDt   float64         `yaml:"max_frame_dt"`
	GoalPolicy   string          `yaml:"goal_policy"`
	Bodies       []BodyConfig    `yaml:"bodies"`
	Trackers     []TrackerConfig `yaml:"trackers,omitempty"`
	Script       []ScriptEvent   `yaml:"script,omitempty"`
}

type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// BodyConfig describes one body. Kind selects the player or ball defaults;
// any field set here overrides them.
type BodyConfig struct {
	Name        string    `yaml:"name"`
	Kind        string    `yaml:"kind"`
	Color       string    `yaml:"color,omitempty"`
	Radius      float64   `yaml:"radius,omitempty"`
	InverseMass float64   `yaml:"inverse_mass,omitempty"`
	MaxSpeed    float64   `yaml:"max_speed,omitempty"`
	K           *float64  `yaml:"k,omitempty"`
	B           *float64  `yaml:"b,omitempty"`
	K1          *float64  `yaml:"k1,omitempty"`
	K2          *float64  `yaml:"k2,omitempty"`
	K3          *float64  `yaml:"k3,omitempty"`
	K4          *float64  `yaml:"k4,omitempty"`
	GoalPolicy  string    `yaml:"goal_policy,omitempty"`
	Region      string    `yaml:"region,omitempty"`
	Start       []float64 `yaml:"start,flow,omitempty"`
	Position    []float64 `yaml:"position,flow,omitempty"`
	Velocity    []float64 `yaml:"velocity,flow,omitempty"`
	Mode        string    `yaml:"mode,omitempty"`
}

// TrackerConfig makes Body follow Target's x coordinate inside its own region.
type TrackerConfig struct {
	Body   string  `yaml:"body"`
	Target string  `yaml:"target"`
	Lead   float64 `yaml:"lead,omitempty"`
}

// ScriptEvent is one scripted input applied at time At (seconds).
type ScriptEvent struct {
	At     float64 `yaml:"at"`
	Body   string  `yaml:"body"`
	Action string  `yaml:"action"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	DX     float64 `yaml:"dx,omitempty"`
	DY     float64 `yaml:"dy,omitempty"`
}

const (
	ActionGoal         = "goal"
	ActionGoalVelocity = "goal_velocity"
	ActionFree         = "free"
	ActionFling        = "fling"
)

func DefaultConfig() *Config {
	return &Config{
		Name:         "pong",
		Arena:        ArenaConfig{Width: DefaultArenaWidth, Height: DefaultArenaHeight},
		Dt:           DefaultDt,
		Duration:     DefaultDuration,
		ResumeOffset: DefaultResumeOffset,
		MaxFrameDt:   DefaultMaxFrameDt,
		GoalPolicy:   "reject",
		Bodies:       pongBodies(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = pongBodies()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that can be checked without building bodies.
func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrInvalidTimestep, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if !(c.Arena.Width > 0) || !(c.Arena.Height > 0) {
		return fmt.Errorf("%w: arena must have positive size", dynamo.ErrParameterBounds)
	}

	names := make(map[string]bool, len(c.Bodies))
	for _, b := range c.Bodies {
		if b.Name == "" {
			return fmt.Errorf("body without a name")
		}
		if names[b.Name] {
			return fmt.Errorf("duplicate body name %q", b.Name)
		}
		names[b.Name] = true
		if _, err := dynamo.ParseMode(b.Mode); err != nil {
			return fmt.Errorf("body %q: %w", b.Name, err)
		}
		if _, err := c.RegionRect(b.Region); err != nil {
			return fmt.Errorf("body %q: %w", b.Name, err)
		}
	}

	for _, t := range c.Trackers {
		if !names[t.Body] || !names[t.Target] {
			return fmt.Errorf("tracker %s->%s names an unknown body", t.Body, t.Target)
		}
	}
	for _, ev := range c.Script {
		if !names[ev.Body] {
			return fmt.Errorf("script event at %.3fs names unknown body %q", ev.At, ev.Body)
		}
		switch ev.Action {
		case ActionGoal, ActionGoalVelocity, ActionFree, ActionFling:
		default:
			return fmt.Errorf("script event at %.3fs: unknown action %q", ev.At, ev.Action)
		}
	}
	return nil
}

func (c *Config) Body(name string) (BodyConfig, bool) {
	for _, b := range c.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyConfig{}, false
}

// Clone returns a copy whose body, tracker and script slices can be edited
// without touching c.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	out.Trackers = append([]TrackerConfig(nil), c.Trackers...)
	out.Script = append([]ScriptEvent(nil), c.Script...)
	return &out
}

// SetBodyParam overrides one physical constant of the named body. Keys are
// the live tuning names plus radius and inverse_mass.
func (c *Config) SetBodyParam(body, key string, v float64) error {
	for i := range c.Bodies {
		if c.Bodies[i].Name != body {
			continue
		}
		bc := &c.Bodies[i]
		switch key {
		case "k":
			bc.K = gain(v)
		case "b":
			bc.B = gain(v)
		case "k1":
			bc.K1 = gain(v)
		case "k2":
			bc.K2 = gain(v)
		case "k3":
			bc.K3 = gain(v)
		case "k4":
			bc.K4 = gain(v)
		case "max_speed":
			bc.MaxSpeed = v
		case "radius":
			bc.Radius = v
		case "inverse_mass":
			bc.InverseMass = v
		default:
			return fmt.Errorf("unknown param: %s", key)
		}
		return nil
	}
	return fmt.Errorf("%w: no body named %q", dynamo.ErrBodyIndex, body)
}
