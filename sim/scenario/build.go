package scenario

import (
	"fmt"
	"path"
	"sort"

	"github.com/lattice-sim/lattice-sim/sim"
	"github.com/lattice-sim/lattice-sim/sim/models"
)

// Build constructs the model, rate table and initial lattice for one run with
// the given seed. Random presets draw from the seed's lattice stream, so the
// same seed always yields the same initial lattice. Build has the shape of
// replica.Factory.
func (s *ScenarioSpec) Build(seed int64) (sim.Config, *sim.Lattice, error) {
	model, err := models.New(s.Model.Name, s.Model.Params)
	if err != nil {
		return sim.Config{}, nil, err
	}
	rates, err := s.ResolveRates(model)
	if err != nil {
		return sim.Config{}, nil, err
	}
	lat, err := s.BuildLattice(seed)
	if err != nil {
		return sim.Config{}, nil, err
	}
	cfg := sim.NewConfig(model, rates, seed)
	cfg.MaxSteps = s.Run.MaxSteps
	cfg.MaxTime = s.Run.MaxTime
	cfg.CheckConsistency = s.Run.CheckConsistency
	return cfg, lat, nil
}

// BuildLattice creates the initial lattice and applies the presets in order.
func (s *ScenarioSpec) BuildLattice(seed int64) (*sim.Lattice, error) {
	l := s.Lattice
	b := sim.Boundary{PeriodicRows: l.PeriodicRows, PeriodicCols: l.PeriodicCols}

	var lat *sim.Lattice
	var err error
	if len(l.Grid) > 0 {
		grid := make([][]sim.State, len(l.Grid))
		for r, row := range l.Grid {
			grid[r] = make([]sim.State, len(row))
			for c, v := range row {
				grid[r][c] = sim.State(v)
			}
		}
		lat, err = sim.NewLatticeFromGrid(grid, b)
	} else {
		lat, err = sim.NewLattice(l.Rows, l.Cols, b)
	}
	if err != nil {
		return nil, fmt.Errorf("lattice: %w", err)
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemLattice)
	for i, p := range l.Presets {
		if err := models.ApplyPreset(p.Name, lat, p.Params, rng); err != nil {
			return nil, fmt.Errorf("lattice.presets[%d]: %w", i, err)
		}
	}
	return lat, nil
}

// ResolveRates maps the spec's rates onto model's channel ids. A channel takes
// the rate of its exact name if present, else of the longest matching
// path.Match pattern (ties broken lexically), else default_rate. Every rates
// key must match at least one channel.
func (s *ScenarioSpec) ResolveRates(model sim.Model) (sim.RateTable, error) {
	names := model.Channels()
	if len(s.RateTable) > 0 {
		if len(s.RateTable) != len(names) {
			return nil, fmt.Errorf("%w: rate_table has %d entries, model %q emits %d channels",
				sim.ErrConfig, len(s.RateTable), model.Name(), len(names))
		}
		return append(sim.RateTable(nil), s.RateTable...), nil
	}

	patterns := make([]string, 0, len(s.Rates))
	for k := range s.Rates {
		if _, err := path.Match(k, ""); err != nil {
			return nil, fmt.Errorf("%w: bad rate pattern %q: %v", sim.ErrConfig, k, err)
		}
		patterns = append(patterns, k)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})

	used := make(map[string]bool, len(patterns))
	rates := make(sim.RateTable, len(names))
	for c, name := range names {
		key := matchRate(name, s.Rates, patterns)
		switch {
		case key != "":
			rates[c] = s.Rates[key]
			used[key] = true
		case s.DefaultRate != nil:
			rates[c] = *s.DefaultRate
		default:
			return nil, fmt.Errorf("%w: no rate for channel %q of model %q", sim.ErrConfig, name, model.Name())
		}
	}
	for _, k := range patterns {
		if !used[k] {
			return nil, fmt.Errorf("%w: rates key %q applies to no channel of model %q", sim.ErrConfig, k, model.Name())
		}
	}
	return rates, nil
}

// matchRate returns the rates key that applies to channel name, or "".
// Patterns are known to be well formed.
func matchRate(name string, rates map[string]float64, patterns []string) string {
	if _, ok := rates[name]; ok {
		return name
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return p
		}
	}
	return ""
}
