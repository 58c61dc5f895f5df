package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/sim"
)

func sampleResult() *sim.Result {
	r := sim.NewResult([]string{"player1", "ball"})
	r.Record(sim.Snapshot{Time: 0, Bodies: []sim.BodyView{
		{X: 240, Y: 600, Mode: dynamo.Forced},
		{X: 240, Y: 500, DX: 100, DY: -50},
	}})
	r.Record(sim.Snapshot{Time: 0.01, Bodies: []sim.BodyView{
		{X: 240.5, Y: 599.25, DX: 1.5, DY: -2, Mode: dynamo.Forced},
		{X: 241, Y: 499.5, DX: 99.5, DY: -49.75, Mode: dynamo.Collision},
	}})
	r.StepsTaken = 1
	r.Metrics["kinetic_energy"] = 1.5
	r.Diagnostics = sim.Diagnostics{Ticks: 1, Contacts: 1, WallHits: 2}
	return r
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("pong", 0.01, 1.0, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "pong" {
		t.Errorf("expected name 'pong', got '%s'", meta.Name)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}
	if meta.Diagnostics.WallHits != 2 || meta.Steps != 1 {
		t.Errorf("diagnostics not persisted: %+v", meta)
	}

	got, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(got.Bodies) != 2 || got.Bodies[1] != "ball" {
		t.Fatalf("bodies = %v", got.Bodies)
	}
	if len(got.Times) != 2 || got.Times[1] != 0.01 {
		t.Errorf("times = %v", got.Times)
	}
	want := dynamo.KinematicState{X: 241, Y: 499.5, DX: 99.5, DY: -49.75}
	if got.States[1][1] != want {
		t.Errorf("state = %+v, want %+v", got.States[1][1], want)
	}
	if got.Modes[1][1] != dynamo.Collision || got.Modes[0][0] != dynamo.Forced {
		t.Errorf("modes = %v", got.Modes)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on empty dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := st.Save("a", 0.01, 1, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save("b", 0.01, 1, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "a" || runs[1].Name != "b" {
		t.Errorf("runs out of order: %s, %s", runs[0].Name, runs[1].Name)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadStates("nope"); err == nil {
		t.Error("expected error for missing states")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewExportData("pong", 0.01, 1, sampleResult())); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 2 || len(data.States) != 2 {
		t.Errorf("expected 2 samples, got %d", data.Steps)
	}
	if data.Modes[1][1] != "collision" {
		t.Errorf("mode = %q", data.Modes[1][1])
	}
	if data.States[0][1].DX != 100 {
		t.Errorf("state = %+v", data.States[0][1])
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, "pong", 0.01, 1, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("export file missing or empty: %v", err)
	}
}
