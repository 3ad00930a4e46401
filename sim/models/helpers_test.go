package models

import (
	"testing"

	"github.com/lattice-sim/lattice-sim/sim"
	"github.com/stretchr/testify/require"
)

// column builds an n x 1 lattice from a list of cell codes, row 0 first.
func column(t *testing.T, b sim.Boundary, cells ...sim.State) *sim.Lattice {
	t.Helper()
	grid := make([][]sim.State, len(cells))
	for i, c := range cells {
		grid[i] = []sim.State{c}
	}
	lat, err := sim.NewLatticeFromGrid(grid, b)
	require.NoError(t, err)
	return lat
}

func emptyLattice(t *testing.T, rows, cols int, b sim.Boundary) *sim.Lattice {
	t.Helper()
	lat, err := sim.NewLattice(rows, cols, b)
	require.NoError(t, err)
	return lat
}

func enabled(m sim.Model, lat *sim.Lattice, row, col int) []sim.ChannelID {
	return m.Enabled(lat, sim.Site{Row: row, Col: col}, nil)
}

var (
	open     = sim.Boundary{}
	ring     = sim.Boundary{PeriodicRows: true}
	tube     = sim.Boundary{PeriodicCols: true}
	periodic = sim.Boundary{PeriodicRows: true, PeriodicCols: true}
)
