package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Bodies      []string           `json:"bodies"`
	Steps       int                `json:"steps"`
	Diagnostics sim.Diagnostics    `json:"diagnostics"`
	Metrics     map[string]float64 `json:"metrics"`
}

// stateFields are the per-body CSV columns, in order.
var stateFields = []string{"x", "y", "dx", "dy", "mode"}

func (s *Store) Save(name string, dt, duration float64, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   now,
		Dt:          dt,
		Duration:    duration,
		Bodies:      result.Bodies,
		Steps:       result.StepsTaken,
		Diagnostics: result.Diagnostics,
		Metrics:     result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	header := []string{"time"}
	for _, b := range result.Bodies {
		for _, f := range stateFields {
			header = append(header, b+"."+f)
		}
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, row := range result.States {
		rec := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for j, st := range row {
			mode := dynamo.Free
			if i < len(result.Modes) && j < len(result.Modes[i]) {
				mode = result.Modes[i][j]
			}
			rec = append(rec,
				strconv.FormatFloat(st.X, 'f', 6, 64),
				strconv.FormatFloat(st.Y, 'f', 6, 64),
				strconv.FormatFloat(st.DX, 'f', 6, 64),
				strconv.FormatFloat(st.DY, 'f', 6, 64),
				mode.String(),
			)
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}

	w.Flush()
	return runID, w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads a run's trajectory back. Metrics and diagnostics come from
// Load; the returned result only carries bodies, times, states and modes.
func (s *Store) LoadStates(runID string) (*sim.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("states.csv: missing header")
	}

	header := records[0]
	if (len(header)-1)%len(stateFields) != 0 {
		return nil, fmt.Errorf("states.csv: malformed header with %d columns", len(header))
	}
	bodies := make([]string, 0, (len(header)-1)/len(stateFields))
	for c := 1; c < len(header); c += len(stateFields) {
		bodies = append(bodies, strings.TrimSuffix(header[c], ".x"))
	}

	result := sim.NewResult(bodies)
	for line, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
		}

		states := make([]dynamo.KinematicState, len(bodies))
		modes := make([]dynamo.Mode, len(bodies))
		for j := range bodies {
			col := 1 + j*len(stateFields)
			var v [4]float64
			for k := range v {
				if v[k], err = strconv.ParseFloat(rec[col+k], 64); err != nil {
					return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
				}
			}
			states[j] = dynamo.KinematicState{X: v[0], Y: v[1], DX: v[2], DY: v[3]}
			if modes[j], err = dynamo.ParseMode(rec[col+4]); err != nil {
				return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
			}
		}

		result.Times = append(result.Times, t)
		result.States = append(result.States, states)
		result.Modes = append(result.Modes, modes)
	}
	result.StepsTaken = len(result.Times) - 1
	return result, nil
}
