package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Cell codes of testPairModel.
const (
	tVacant State = 0
	tRear   State = 1
	tFront  State = 2
)

// testPairModel is a minimal two-channel model: "attach" occupies two adjacent
// vacant cells (rear at s, front at s+dir), "detach" clears a bound pair whose
// rear sits at s. It lives here because sim/models imports sim.
type testPairModel struct {
	dr, dc int
}

func (m testPairModel) Name() string       { return "test-pair" }
func (m testPairModel) Channels() []string { return []string{"attach", "detach"} }

func (m testPairModel) Stencil() Stencil {
	rows := Span{Min: min(0, m.dr), Max: max(0, m.dr)}
	cols := Span{Min: min(0, m.dc), Max: max(0, m.dc)}
	return Stencil{ReadRows: rows, ReadCols: cols, WriteRows: rows, WriteCols: cols}
}

func (m testPairModel) CheckLattice(lat *Lattice) error {
	return lat.CheckStates(func(s State) bool { return s >= tVacant && s <= tFront })
}

func (m testPairModel) Enabled(lat *Lattice, s Site, dst []ChannelID) []ChannelID {
	switch lat.At(s) {
	case tVacant:
		if lat.At(s.Add(m.dr, m.dc)) == tVacant {
			dst = append(dst, 0)
		}
	case tRear:
		dst = append(dst, 1)
	}
	return dst
}

func (m testPairModel) Apply(lat *Lattice, c ChannelID, s Site) {
	next := s.Add(m.dr, m.dc)
	switch c {
	case 0:
		lat.Set(s, tRear)
		lat.Set(next, tFront)
	case 1:
		lat.Set(s, tVacant)
		lat.Set(next, tVacant)
	}
}

var rowPair = testPairModel{dr: 1}

func mustLattice(t *testing.T, rows, cols int, b Boundary) *Lattice {
	t.Helper()
	lat, err := NewLattice(rows, cols, b)
	require.NoError(t, err)
	return lat
}

// randomPairLattice scatters bound pairs over a vacant lattice.
func randomPairLattice(t *testing.T, m testPairModel, rows, cols int, b Boundary, rng *rand.Rand) *Lattice {
	t.Helper()
	lat := mustLattice(t, rows, cols, b)
	for k := 0; k < lat.Len(); k++ {
		s := lat.SiteAt(rng.Intn(lat.Len()))
		if lat.At(s) == tVacant && lat.At(s.Add(m.dr, m.dc)) == tVacant && rng.Float64() < 0.3 {
			m.Apply(lat, 0, s)
		}
	}
	return lat
}

// randomEnabledEvent picks an enabled (channel, site) uniformly over all pairs.
func randomEnabledEvent(x *EventIndex, rng *rand.Rand) (ChannelID, Site, bool) {
	total := 0
	for c := 0; c < x.NumChannels(); c++ {
		total += x.Occurrence(ChannelID(c))
	}
	if total == 0 {
		return 0, Site{}, false
	}
	k := rng.Intn(total)
	for c := 0; c < x.NumChannels(); c++ {
		n := x.Occurrence(ChannelID(c))
		if k < n {
			return ChannelID(c), x.Pick(ChannelID(c), k), true
		}
		k -= n
	}
	return 0, Site{}, false
}

// fixedUniform replays a fixed sequence of draws.
type fixedUniform struct {
	vals []float64
	i    int
}

func (f *fixedUniform) Uniform() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}
