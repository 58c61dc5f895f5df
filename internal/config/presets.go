package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/pongsim/internal/dynamo"
)

func gain(v float64) *float64 { return &v }

// pongBodies is the classic layout: one player per half and a ball at five
// eighths of the height.
func pongBodies() []BodyConfig {
	return []BodyConfig{
		{Name: "player1", Kind: "player", Color: "#ff0000", Region: RegionLower},
		{Name: "player2", Kind: "player", Color: "#0000ff", Region: RegionUpper},
		{Name: "ball", Kind: "ball", Color: "#ffffff", Start: []float64{0.5, 0.625}},
	}
}

var Presets = map[string]func() *Config{
	"pong": func() *Config {
		cfg := DefaultConfig()
		cfg.Trackers = []TrackerConfig{{Body: "player2", Target: "ball"}}
		cfg.Script = []ScriptEvent{
			{At: 0.5, Body: "player1", Action: ActionGoal, X: 300, Y: 700},
			{At: 1.0, Body: "ball", Action: ActionFling, DX: 250, DY: -900},
		}
		return cfg
	},
	"scenario-a": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "scenario-a"
		cfg.Arena = ArenaConfig{Width: 300, Height: 600}
		cfg.Dt = 0.1
		cfg.MaxFrameDt = 0.1
		cfg.Duration = 2
		cfg.Bodies = []BodyConfig{{
			Name: "ball", Kind: "ball", K1: gain(0), K2: gain(0),
			Position: []float64{150, 560}, Velocity: []float64{0, 100},
		}}
		return cfg
	},
	"pair": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "pair"
		cfg.Arena = ArenaConfig{Width: 1000, Height: 1000}
		cfg.Duration = 3
		cfg.Bodies = []BodyConfig{
			{Name: "left", Kind: "ball", Color: "#ffaa00", Position: []float64{100, 100}},
			{Name: "right", Kind: "ball", Color: "#00aaff", Position: []float64{120, 100}},
		}
		return cfg
	},
	"billiards": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "billiards"
		cfg.Arena = ArenaConfig{Width: 800, Height: 400}
		cfg.Duration = 8
		cfg.Bodies = []BodyConfig{
			{Name: "cue", Kind: "ball", Color: "#ffffff", Start: []float64{0.2, 0.5}, Velocity: []float64{1500, 30}},
			{Name: "b1", Kind: "ball", Color: "#ffcc00", Start: []float64{0.6, 0.5}},
			{Name: "b2", Kind: "ball", Color: "#ff3300", Start: []float64{0.64, 0.45}},
			{Name: "b3", Kind: "ball", Color: "#3366ff", Start: []float64{0.64, 0.55}},
			{Name: "b4", Kind: "ball", Color: "#33cc33", Start: []float64{0.68, 0.5}},
		}
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset.
func GetPreset(name string) (*Config, error) {
	build, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
	}
	return build(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
