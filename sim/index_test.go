package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_VacantOpenRow_CountsAdjacentPairs(t *testing.T) {
	// GIVEN a fully vacant 10x1 lattice with open edges
	lat := mustLattice(t, 10, 1, Boundary{})

	// WHEN the index is built
	x := BuildIndex(rowPair, lat)

	// THEN every site but the last starts an attachable pair
	assert.Equal(t, 9, x.Occurrence(0))
	assert.Equal(t, 0, x.Occurrence(1))
	assert.Len(t, x.SitesOf(0), 9)
	assert.Empty(t, x.EnabledAt(Site{Row: 9}))
	assert.Equal(t, []ChannelID{0}, x.EnabledAt(Site{Row: 0}))
	require.NoError(t, x.CheckInvariants())
}

func TestBuildIndex_VacantPeriodicRow_CountsEverySite(t *testing.T) {
	lat := mustLattice(t, 10, 1, Boundary{PeriodicRows: true})
	x := BuildIndex(rowPair, lat)
	assert.Equal(t, 10, x.Occurrence(0))
}

func TestRescan_SymmetricDifference_ReportsChanges(t *testing.T) {
	lat := mustLattice(t, 6, 1, Boundary{})
	x := BuildIndex(rowPair, lat)

	// GIVEN a pair attached at row 2 without rescanning
	rowPair.Apply(lat, 0, Site{Row: 2})

	// WHEN only row 2 is rescanned
	changes := x.Rescan(Site{Row: 2})

	// THEN attach is removed and detach added at that site only
	assert.Equal(t, 2, changes)
	assert.Equal(t, []ChannelID{1}, x.EnabledAt(Site{Row: 2}))
	assert.Equal(t, 1, x.Occurrence(1))

	// AND rescanning again is a no-op
	assert.Zero(t, x.Rescan(Site{Row: 2}))

	// AND the stale neighbors are what makes the index diverge
	err := x.Verify()
	assert.True(t, errors.Is(err, ErrIndexInconsistent))
	x.RescanNeighborhood(Site{Row: 2})
	assert.NoError(t, x.Verify())
}

func TestVerify_MutationWithoutRescan_Detected(t *testing.T) {
	lat := mustLattice(t, 5, 2, Boundary{PeriodicRows: true})
	x := BuildIndex(rowPair, lat)
	lat.Set(Site{Row: 3, Col: 1}, tRear)
	err := x.Verify()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexInconsistent))
}

func TestRescanNeighborhood_MatchesRebuild_RandomTransitions(t *testing.T) {
	// GIVEN several shapes, orientations and boundary policies
	tests := []struct {
		rows, cols int
		model      testPairModel
		boundary   Boundary
	}{
		{10, 1, rowPair, Boundary{}},
		{10, 1, rowPair, Boundary{PeriodicRows: true}},
		{2, 5, rowPair, Boundary{PeriodicRows: true}},
		{17, 4, rowPair, Boundary{PeriodicRows: true, PeriodicCols: true}},
		{6, 9, testPairModel{dc: 1}, Boundary{}},
		{6, 9, testPairModel{dc: -1}, Boundary{PeriodicCols: true}},
		{25, 25, testPairModel{dr: -1}, Boundary{PeriodicRows: true}},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%dx%d_d%d,%d_%v", tt.rows, tt.cols, tt.model.dr, tt.model.dc, tt.boundary)
		t.Run(name, func(t *testing.T) {
			rng := NewPartitionedRNG(NewSimulationKey(7)).ForSubsystem(SubsystemTransitions)
			lat := randomPairLattice(t, tt.model, tt.rows, tt.cols, tt.boundary, rng)
			x := BuildIndex(tt.model, lat)

			// WHEN 1500 random enabled transitions are applied with local rescans
			for step := 0; step < 1500; step++ {
				c, s, ok := randomEnabledEvent(x, rng)
				require.True(t, ok, "pair model cannot get stuck")
				tt.model.Apply(lat, c, s)
				x.RescanNeighborhood(s)

				// THEN the index equals a rebuild from scratch after every step
				if err := x.Diff(BuildIndex(tt.model, lat)); err != nil {
					t.Fatalf("step %d channel %d at %v: %v", step, c, s, err)
				}
			}
			require.NoError(t, x.CheckInvariants())
		})
	}
}

func TestRescanNeighborhood_TooSmallWindow_WouldDiverge(t *testing.T) {
	// A site-only rescan misses the site before the written pair; the full
	// window must not.
	rng := rand.New(rand.NewSource(3))
	lat := mustLattice(t, 12, 1, Boundary{})
	x := BuildIndex(rowPair, lat)
	diverged := false
	for step := 0; step < 50 && !diverged; step++ {
		c, s, _ := randomEnabledEvent(x, rng)
		rowPair.Apply(lat, c, s)
		x.Rescan(s)
		x.Rescan(s.Add(1, 0))
		diverged = x.Verify() != nil
	}
	assert.True(t, diverged)
}
