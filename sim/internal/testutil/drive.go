// Package testutil provides shared test infrastructure for the lattice
// simulator: random transition drivers that cross-check the incremental event
// index against a full rebuild, and float comparison helpers.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lattice-sim/lattice-sim/sim"
)

// DriveResult summarizes a random transition run.
type DriveResult struct {
	Steps int             // transitions applied
	Fired []int           // firings per channel id
	Stuck bool            // the run ended early with no enabled channel
	Index *sim.EventIndex // final incremental index
}

// DriveRandomTransitions applies up to steps transitions to lat, each chosen
// uniformly among all enabled (channel, site) pairs, and after every one
// compares the incrementally maintained index with a full rebuild. It fails
// the test at the first divergence.
func DriveRandomTransitions(t *testing.T, model sim.Model, lat *sim.Lattice, steps int, rng *rand.Rand) DriveResult {
	t.Helper()
	x := sim.BuildIndex(model, lat)
	res := DriveResult{Fired: make([]int, x.NumChannels()), Index: x}
	for i := 0; i < steps; i++ {
		c, s, ok := RandomEvent(x, rng)
		if !ok {
			res.Stuck = true
			break
		}
		model.Apply(lat, c, s)
		x.RescanNeighborhood(s)
		res.Steps++
		res.Fired[c]++
		if err := x.Diff(sim.BuildIndex(model, lat)); err != nil {
			t.Fatalf("step %d (channel %d at %v): %v", i+1, c, s, err)
		}
		if err := x.CheckInvariants(); err != nil {
			t.Fatalf("step %d (channel %d at %v): %v", i+1, c, s, err)
		}
	}
	return res
}

// RandomEvent picks an enabled (channel, site) pair uniformly over all pairs.
func RandomEvent(x *sim.EventIndex, rng *rand.Rand) (sim.ChannelID, sim.Site, bool) {
	total := 0
	for c := 0; c < x.NumChannels(); c++ {
		total += x.Occurrence(sim.ChannelID(c))
	}
	if total == 0 {
		return 0, sim.Site{}, false
	}
	k := rng.Intn(total)
	for c := 0; c < x.NumChannels(); c++ {
		n := x.Occurrence(sim.ChannelID(c))
		if k < n {
			return sim.ChannelID(c), x.Pick(sim.ChannelID(c), k), true
		}
		k -= n
	}
	return 0, sim.Site{}, false
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
