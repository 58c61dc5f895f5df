package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if len(cfg.Bodies) != 3 {
		t.Errorf("expected 3 bodies, got %d", len(cfg.Bodies))
	}
}

func TestPongLayout(t *testing.T) {
	g := NewWithT(t)
	bodies, err := BuildBodies(DefaultConfig())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(bodies).To(HaveLen(3))

	p1, p2, ball := bodies[0], bodies[1], bodies[2]
	g.Expect([]float64{p1.X(), p1.Y()}).To(Equal([]float64{240, 600}))
	g.Expect([]float64{p2.X(), p2.Y()}).To(Equal([]float64{240, 200}))
	g.Expect([]float64{ball.X(), ball.Y()}).To(Equal([]float64{240, 500}))

	g.Expect(p1.Inset()).To(Equal(dynamo.Rect{Left: 30, Top: 430, Right: 450, Bottom: 770}))
	g.Expect(p2.Inset()).To(Equal(dynamo.Rect{Left: 30, Top: 30, Right: 450, Bottom: 370}))
	g.Expect(ball.Inset()).To(Equal(dynamo.Rect{Left: 15, Top: 15, Right: 465, Bottom: 785}))

	g.Expect(p1.Radius()).To(Equal(physics.DefaultPlayerRadius))
	g.Expect(ball.MaxSpeed()).To(Equal(physics.DefaultBallMaxSpeed))
	for _, b := range bodies {
		g.Expect(b.Mode()).To(Equal(dynamo.Free))
	}
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg, err := GetPreset(name)
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("invalid preset: %v", err)
			}
			bodies, err := BuildBodies(cfg)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			for _, b := range bodies {
				if !b.Contained(0) {
					t.Errorf("body %s starts outside its region", b.Name())
				}
			}
		})
	}

	if _, err := GetPreset("nonexistent"); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresetsAreFreshCopies(t *testing.T) {
	a, _ := GetPreset("pong")
	a.Bodies[0].Name = "changed"
	b, _ := GetPreset("pong")
	if b.Bodies[0].Name != "player1" {
		t.Error("presets should not share state")
	}
}

func TestScenarioAPreset(t *testing.T) {
	g := NewWithT(t)
	cfg, err := GetPreset("scenario-a")
	g.Expect(err).NotTo(HaveOccurred())

	bodies, err := BuildBodies(cfg)
	g.Expect(err).NotTo(HaveOccurred())
	ball := bodies[0]
	g.Expect(ball.State()).To(Equal(dynamo.KinematicState{X: 150, Y: 560, DX: 0, DY: 100}))
	g.Expect(ball.Params().K1).To(Equal(0.0))
	g.Expect(ball.Params().K2).To(Equal(0.0))
}

func TestLoadSave(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")

	src := `
arena: {width: 600, height: 400}
dt: 0.005
duration: 4
resume_offset: 250ms
goal_policy: clamp
bodies:
  - name: puck
    kind: ball
    k1: 0
    start: [0.25, 0.75]
    velocity: [100, 0]
  - name: paddle
    kind: player
    region: lower
    mode: forced
    goal_policy: reject
trackers:
  - {body: paddle, target: puck}
script:
  - {at: 1.5, body: puck, action: fling, dx: 0, dy: -500}
`
	g.Expect(os.WriteFile(path, []byte(src), 0644)).To(Succeed())

	cfg, err := Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.ResumeOffset).To(Equal(250 * time.Millisecond))
	g.Expect(cfg.MaxFrameDt).To(Equal(DefaultMaxFrameDt))
	g.Expect(cfg.Bodies).To(HaveLen(2))
	g.Expect(cfg.Script[0].DY).To(Equal(-500.0))

	puck, err := cfg.Params(cfg.Bodies[0])
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(puck.K1).To(Equal(0.0))
	g.Expect(puck.K2).To(Equal(physics.DefaultLinearDrag))
	g.Expect(puck.GoalPolicy).To(Equal(physics.ClampGoal))

	paddle, err := cfg.Params(cfg.Bodies[1])
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(paddle.GoalPolicy).To(Equal(physics.RejectGoal))

	bodies, err := BuildBodies(cfg)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(bodies[0].X()).To(Equal(150.0))
	g.Expect(bodies[0].Y()).To(Equal(300.0))
	g.Expect(bodies[1].Mode()).To(Equal(dynamo.Forced))

	out := filepath.Join(dir, "saved.yaml")
	g.Expect(Save(out, cfg)).To(Succeed())
	again, err := Load(out)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(again).To(Equal(cfg))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"empty arena", func(c *Config) { c.Arena.Width = 0 }},
		{"duplicate name", func(c *Config) { c.Bodies[1].Name = c.Bodies[0].Name }},
		{"bad mode", func(c *Config) { c.Bodies[0].Mode = "sticky" }},
		{"bad region", func(c *Config) { c.Bodies[0].Region = "left" }},
		{"tracker target", func(c *Config) { c.Trackers = []TrackerConfig{{Body: "player1", Target: "ghost"}} }},
		{"script body", func(c *Config) { c.Script = []ScriptEvent{{Body: "ghost", Action: ActionFree}} }},
		{"script action", func(c *Config) { c.Script = []ScriptEvent{{Body: "ball", Action: "teleport"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParamsRejectsBadKind(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := cfg.Params(BodyConfig{Name: "x", Kind: "wall"}); err == nil {
		t.Error("expected error for unknown kind")
	}
	neg := -1.0
	if _, err := cfg.Params(BodyConfig{Name: "x", K: &neg}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestCloneAndSetBodyParam(t *testing.T) {
	g := NewWithT(t)
	base, err := GetPreset("pair")
	g.Expect(err).NotTo(HaveOccurred())

	c := base.Clone()
	g.Expect(c.SetBodyParam("left", "k3", 9000)).To(Succeed())
	g.Expect(c.SetBodyParam("left", "radius", 20)).To(Succeed())
	g.Expect(*c.Bodies[0].K3).To(Equal(9000.0))
	g.Expect(c.Bodies[0].Radius).To(Equal(20.0))
	g.Expect(base.Bodies[0].K3).To(BeNil())
	g.Expect(base.Bodies[0].Radius).To(Equal(0.0))

	p, err := c.Params(c.Bodies[0])
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.K3).To(Equal(9000.0))

	g.Expect(errors.Is(c.SetBodyParam("ghost", "k", 1), dynamo.ErrBodyIndex)).To(BeTrue())
	g.Expect(c.SetBodyParam("left", "theta", 1)).To(MatchError(ContainSubstring("unknown param")))
}
