package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lattice-sim/lattice-sim/sim"
)

// Preset paints an initial configuration onto lat. Presets compose: each one
// writes only the cells it describes, so a scenario can layer several.
type Preset func(lat *sim.Lattice, params map[string]float64, rng *rand.Rand) error

type presetEntry struct {
	apply  Preset
	params []string
}

var presets = map[string]presetEntry{
	"empty":        {presetEmpty, nil},
	"defect-block": {presetDefectBlock, []string{"rows", "cols"}},
	"microtubule":  {presetMicrotubule, []string{"height", "seed", "cap", "vacancy_row", "vacancy_col"}},
	"random":       {presetRandom, []string{"density", "direction"}},
	"bound-motors": {presetBoundMotors, []string{"density", "direction"}},
}

// IsValidPreset returns true if name is a recognized preset.
func IsValidPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

// PresetNames returns the recognized preset names in sorted order.
func PresetNames() []string { return sortedKeys(presets) }

// ApplyPreset runs the named preset on lat. rng is only consumed by presets
// that place cells at random.
func ApplyPreset(name string, lat *sim.Lattice, params map[string]float64, rng *rand.Rand) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q; valid options: %v", name, PresetNames())
	}
	if err := checkParams("preset "+name, params, p.params...); err != nil {
		return err
	}
	return p.apply(lat, params, rng)
}

// intParam reads an integral parameter with a default.
func intParam(params map[string]float64, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parameter %q must be an integer, got %v", key, v)
	}
	return int(v), nil
}

func presetEmpty(lat *sim.Lattice, _ map[string]float64, _ *rand.Rand) error {
	lat.Fill(Vacant)
	return nil
}

// presetDefectBlock places a rectangle of defect cells centered on the lattice.
func presetDefectBlock(lat *sim.Lattice, params map[string]float64, _ *rand.Rand) error {
	n, m := lat.Rows(), lat.Cols()
	ld, err := intParam(params, "rows", min(5, n))
	if err != nil {
		return err
	}
	wd, err := intParam(params, "cols", max(1, m/3))
	if err != nil {
		return err
	}
	if ld < 0 || ld > n || wd < 0 || wd > m {
		return fmt.Errorf("defect block %dx%d does not fit a %dx%d lattice", ld, wd, n, m)
	}
	for r := (n - ld) / 2; r < (n+ld)/2; r++ {
		for c := (m - wd) / 2; c < (m+wd)/2; c++ {
			lat.Set(sim.Site{Row: r, Col: c}, Defect)
		}
	}
	return nil
}

// presetMicrotubule grows a tube from row 0: seed rows, a GDP body and a GTP
// cap, optionally with one vacancy punched into it.
func presetMicrotubule(lat *sim.Lattice, params map[string]float64, _ *rand.Rand) error {
	height, err := intParam(params, "height", lat.Rows()/2)
	if err != nil {
		return err
	}
	seed, err := intParam(params, "seed", 3)
	if err != nil {
		return err
	}
	capRows, err := intParam(params, "cap", 3)
	if err != nil {
		return err
	}
	if height < 0 || height > lat.Rows() || seed < 0 || capRows < 0 || seed+capRows > height {
		return fmt.Errorf("microtubule height=%d seed=%d cap=%d does not fit %d rows",
			height, seed, capRows, lat.Rows())
	}
	for r := 0; r < height; r++ {
		st := GDP
		switch {
		case r < seed:
			st = Seed
		case r >= height-capRows:
			st = GTP
		}
		for c := 0; c < lat.Cols(); c++ {
			lat.Set(sim.Site{Row: r, Col: c}, st)
		}
	}

	_, hasRow := params["vacancy_row"]
	_, hasCol := params["vacancy_col"]
	if hasRow != hasCol {
		return fmt.Errorf("vacancy_row and vacancy_col must be given together")
	}
	if !hasRow {
		return nil
	}
	vr, err := intParam(params, "vacancy_row", 0)
	if err != nil {
		return err
	}
	vc, err := intParam(params, "vacancy_col", 0)
	if err != nil {
		return err
	}
	v, ok := lat.Resolve(sim.Site{Row: vr, Col: vc})
	if !ok || vr < 0 || vr >= lat.Rows() || vc < 0 || vc >= lat.Cols() {
		return fmt.Errorf("vacancy (%d,%d) is outside the lattice", vr, vc)
	}
	lat.Set(v, Vacant)
	return nil
}

// presetRandom binds two-head particles onto vacant cell pairs, visiting rows
// in order and accepting each candidate with probability density.
func presetRandom(lat *sim.Lattice, params map[string]float64, rng *rand.Rand) error {
	density, dir, err := placementParams(params, rng)
	if err != nil {
		return err
	}
	for i := 0; i < lat.Len(); i++ {
		s := lat.SiteAt(i)
		next := s.Add(dir, 0)
		if lat.At(s) != Vacant || lat.At(next) != Vacant {
			continue
		}
		if rng.Float64() < density {
			lat.Set(s, Rear)
			lat.Set(next, Front)
		}
	}
	return nil
}

// presetBoundMotors binds motor heads onto pairs of bare dimers of a
// motubule lattice, accepting each candidate pair with probability density.
func presetBoundMotors(lat *sim.Lattice, params map[string]float64, rng *rand.Rand) error {
	density, dir, err := placementParams(params, rng)
	if err != nil {
		return err
	}
	for i := 0; i < lat.Len(); i++ {
		s := lat.SiteAt(i)
		next := s.Add(dir, 0)
		if !bareDimer(lat.At(s)) || !bareDimer(lat.At(next)) {
			continue
		}
		if rng.Float64() < density {
			lat.Set(s, lat.At(s)|RearHead)
			lat.Set(next, lat.At(next)|FrontHead)
		}
	}
	return nil
}

// placementParams reads the density and direction shared by the presets that
// place motors at random.
func placementParams(params map[string]float64, rng *rand.Rand) (float64, int, error) {
	density := 0.1
	if v, ok := params["density"]; ok {
		density = v
	}
	if !(density >= 0 && density <= 1) {
		return 0, 0, fmt.Errorf("density must be in [0,1], got %v", density)
	}
	dir, err := intParam(params, "direction", int(Kinesin))
	if err != nil {
		return 0, 0, err
	}
	if Direction(dir) != Kinesin && Direction(dir) != Dynein {
		return 0, 0, fmt.Errorf("direction must be +1 or -1, got %d", dir)
	}
	if rng == nil {
		return 0, 0, fmt.Errorf("placing motors at random needs a random source")
	}
	return density, dir, nil
}
