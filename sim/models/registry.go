// Package models holds the concrete channel sets the engine ships with and the
// initial-lattice presets that go with them.
package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/lattice-sim/lattice-sim/sim"
)

// validModels is the set of recognized model names.
var validModels = map[string]bool{"pair": true, "motor": true, "tubulin": true, "motubule": true}

// IsValidModel returns true if name is a recognized model.
func IsValidModel(name string) bool { return validModels[name] }

// Names returns the recognized model names in sorted order.
func Names() []string {
	return sortedKeys(validModels)
}

// New constructs the named model. params carries model-specific settings;
// unknown keys are rejected so that typos in scenario files surface early.
func New(name string, params map[string]float64) (sim.Model, error) {
	if !IsValidModel(name) {
		return nil, fmt.Errorf("unknown model %q; valid options: %v", name, Names())
	}
	switch name {
	case "pair":
		if err := checkParams(name, params); err != nil {
			return nil, err
		}
		return Pair{}, nil
	case "motor":
		dir, err := directionParam(name, params)
		if err != nil {
			return nil, err
		}
		m, err := NewMotor(dir)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "tubulin":
		dir, err := directionParam(name, params)
		if err != nil {
			return nil, err
		}
		m, err := NewTubulin(dir)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "motubule":
		dir, err := directionParam(name, params)
		if err != nil {
			return nil, err
		}
		m, err := NewMotubule(dir)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		panic(fmt.Sprintf("unhandled model %q", name))
	}
}

// directionParam reads the optional "direction" parameter, the only one the
// directed models accept. It defaults to Kinesin.
func directionParam(name string, params map[string]float64) (Direction, error) {
	if err := checkParams(name, params, "direction"); err != nil {
		return 0, err
	}
	dir, ok := params["direction"]
	if !ok {
		return Kinesin, nil
	}
	if dir != math.Trunc(dir) {
		return 0, fmt.Errorf("model %q: direction must be +1 or -1, got %v", name, dir)
	}
	return Direction(dir), nil
}

func checkParams(name string, params map[string]float64, allowed ...string) error {
	for k := range params {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("model %q: unknown parameter %q (accepted: %v)", name, k, allowed)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
