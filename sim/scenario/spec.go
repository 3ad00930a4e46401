// Package scenario loads YAML scenario files describing a lattice simulation:
// the model and its parameters, the initial lattice, the rate table, run
// budgets and tracing.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/lattice-sim/lattice-sim/sim/models"
	"github.com/lattice-sim/lattice-sim/sim/trace"
)

// ScenarioSpec is the top-level scenario configuration.
// Loaded from YAML via LoadScenarioSpec(path).
type ScenarioSpec struct {
	Version     string             `yaml:"version"`
	Seed        int64              `yaml:"seed"`
	Model       ModelSpec          `yaml:"model"`
	Lattice     LatticeSpec        `yaml:"lattice"`
	Rates       map[string]float64 `yaml:"rates,omitempty"`        // channel name or path.Match pattern → rate
	DefaultRate *float64           `yaml:"default_rate,omitempty"` // rate for channels no key matches
	RateTable   []float64          `yaml:"rate_table,omitempty"`   // rates by channel id; exclusive with rates
	Run         RunSpec            `yaml:"run"`
	Trace       TraceSpec          `yaml:"trace"`
}

// ModelSpec names the channel set.
type ModelSpec struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// LatticeSpec describes the initial lattice: either an explicit grid or a
// vacant rows×cols lattice, optionally painted by presets in order.
type LatticeSpec struct {
	Rows         int          `yaml:"rows,omitempty"`
	Cols         int          `yaml:"cols,omitempty"`
	PeriodicRows bool         `yaml:"periodic_rows"`
	PeriodicCols bool         `yaml:"periodic_cols"`
	Grid         [][]int      `yaml:"grid,omitempty"`
	Presets      []PresetSpec `yaml:"presets,omitempty"`
}

// PresetSpec applies one named preset.
type PresetSpec struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// RunSpec holds the run budgets. Zero means unlimited.
type RunSpec struct {
	MaxSteps         int64   `yaml:"max_steps"`
	MaxTime          float64 `yaml:"max_time"`
	CheckConsistency bool    `yaml:"check_consistency"`
}

// TraceSpec controls step tracing.
type TraceSpec struct {
	Level       string `yaml:"level"`
	MaxRecords  int    `yaml:"max_records,omitempty"`
	FluxChannel string `yaml:"flux_channel,omitempty"` // channel binned per row in the summary
}

// TraceConfig converts the spec to the trace package's configuration.
func (t TraceSpec) TraceConfig() trace.TraceConfig {
	return trace.TraceConfig{Level: trace.TraceLevel(t.Level), MaxRecords: t.MaxRecords}
}

// LoadScenarioSpec reads and parses a YAML scenario file. Unknown keys are
// rejected.
func LoadScenarioSpec(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenarioSpec(data)
}

// ParseScenarioSpec parses scenario YAML from memory.
func ParseScenarioSpec(data []byte) (*ScenarioSpec, error) {
	var spec ScenarioSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid. Checks that need the
// model's channel list (rate coverage) happen in Rates.
func (s *ScenarioSpec) Validate() error {
	if s.Version != "" && s.Version != "1" {
		return fmt.Errorf("unsupported scenario version %q; valid: 1", s.Version)
	}
	if !models.IsValidModel(s.Model.Name) {
		return fmt.Errorf("unknown model %q; valid: %v", s.Model.Name, models.Names())
	}
	if err := s.Lattice.validate(); err != nil {
		return err
	}
	if len(s.RateTable) > 0 && (len(s.Rates) > 0 || s.DefaultRate != nil) {
		return fmt.Errorf("rate_table cannot be combined with rates or default_rate")
	}
	if len(s.RateTable) == 0 && len(s.Rates) == 0 && s.DefaultRate == nil {
		return fmt.Errorf("no rates given; set rates, default_rate or rate_table")
	}
	for k, v := range s.Rates {
		if err := validateRate(fmt.Sprintf("rates[%q]", k), v); err != nil {
			return err
		}
	}
	if s.DefaultRate != nil {
		if err := validateRate("default_rate", *s.DefaultRate); err != nil {
			return err
		}
	}
	for i, v := range s.RateTable {
		if err := validateRate(fmt.Sprintf("rate_table[%d]", i), v); err != nil {
			return err
		}
	}
	if s.Run.MaxSteps < 0 {
		return fmt.Errorf("run.max_steps must be non-negative, got %d", s.Run.MaxSteps)
	}
	if s.Run.MaxTime < 0 || math.IsNaN(s.Run.MaxTime) || math.IsInf(s.Run.MaxTime, 0) {
		return fmt.Errorf("run.max_time must be a finite non-negative number, got %v", s.Run.MaxTime)
	}
	if !trace.IsValidTraceLevel(s.Trace.Level) {
		return fmt.Errorf("unknown trace level %q; valid: none, steps", s.Trace.Level)
	}
	if s.Trace.MaxRecords < 0 {
		return fmt.Errorf("trace.max_records must be non-negative, got %d", s.Trace.MaxRecords)
	}
	if s.Run.MaxSteps == 0 && s.Run.MaxTime == 0 {
		logrus.Warnf("scenario sets no step or time budget; the run ends only when stuck or interrupted")
	}
	return nil
}

func validateRate(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a finite non-negative number, got %v", field, v)
	}
	return nil
}

func (l *LatticeSpec) validate() error {
	if len(l.Grid) > 0 {
		if l.Rows != 0 && l.Rows != len(l.Grid) {
			return fmt.Errorf("lattice.rows=%d disagrees with grid height %d", l.Rows, len(l.Grid))
		}
		if l.Cols != 0 && l.Cols != len(l.Grid[0]) {
			return fmt.Errorf("lattice.cols=%d disagrees with grid width %d", l.Cols, len(l.Grid[0]))
		}
	} else if l.Rows <= 0 || l.Cols <= 0 {
		return fmt.Errorf("lattice needs positive rows and cols or a grid, got %dx%d", l.Rows, l.Cols)
	}
	for i, p := range l.Presets {
		if !models.IsValidPreset(p.Name) {
			return fmt.Errorf("lattice.presets[%d]: unknown preset %q; valid: %v", i, p.Name, models.PresetNames())
		}
	}
	return nil
}
