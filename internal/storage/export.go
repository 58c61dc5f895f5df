package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/sim"
)

type ExportData struct {
	Name        string                    `json:"name"`
	Dt          float64                   `json:"dt"`
	Duration    float64                   `json:"duration"`
	Steps       int                       `json:"steps"`
	Bodies      []string                  `json:"bodies"`
	Times       []float64                 `json:"times"`
	States      [][]dynamo.KinematicState `json:"states"`
	Modes       [][]string                `json:"modes"`
	Diagnostics sim.Diagnostics           `json:"diagnostics"`
	Metrics     map[string]float64        `json:"metrics"`
}

func NewExportData(name string, dt, duration float64, result *sim.Result) ExportData {
	data := ExportData{
		Name:        name,
		Dt:          dt,
		Duration:    duration,
		Steps:       len(result.Times),
		Bodies:      result.Bodies,
		Times:       result.Times,
		States:      result.States,
		Modes:       make([][]string, len(result.Modes)),
		Diagnostics: result.Diagnostics,
		Metrics:     result.Metrics,
	}
	for i, row := range result.Modes {
		data.Modes[i] = make([]string, len(row))
		for j, m := range row {
			data.Modes[i][j] = m.String()
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes the run to path, or to stdout when path is "-".
func ExportJSON(path, name string, dt, duration float64, result *sim.Result) error {
	data := NewExportData(name, dt, duration, result)
	if path == "-" {
		return WriteJSON(os.Stdout, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
