package models

import (
	"testing"

	"github.com/lattice-sim/lattice-sim/sim"
	"github.com/stretchr/testify/assert"
)

func TestPair_Rules(t *testing.T) {
	lat := column(t, open, Vacant, Vacant, Rear, Front, Vacant)
	m := Pair{}

	assert.Equal(t, []sim.ChannelID{PairAttach}, enabled(m, lat, 0, 0))
	assert.Empty(t, enabled(m, lat, 1, 0), "front cell ahead is not vacant")
	assert.Equal(t, []sim.ChannelID{PairDetach}, enabled(m, lat, 2, 0))
	assert.Empty(t, enabled(m, lat, 3, 0))
	assert.Empty(t, enabled(m, lat, 4, 0), "ahead is off the open edge")

	m.Apply(lat, PairDetach, sim.Site{Row: 2})
	assert.Equal(t, 5, lat.Count(Vacant))
	m.Apply(lat, PairAttach, sim.Site{Row: 3})
	assert.Equal(t, Rear, lat.At(sim.Site{Row: 3}))
	assert.Equal(t, Front, lat.At(sim.Site{Row: 4}))
}

func TestPair_CheckLattice_RejectsDefects(t *testing.T) {
	assert.Error(t, Pair{}.CheckLattice(column(t, open, Vacant, Defect)))
	assert.NoError(t, Pair{}.CheckLattice(column(t, open, Rear, Front)))
}
