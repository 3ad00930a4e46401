package models

import "github.com/lattice-sim/lattice-sim/sim"

// Cell codes shared by the pair and motor models.
const (
	Defect sim.State = -1 // site unavailable to motors
	Vacant sim.State = 0
	Rear   sim.State = 1 // rear head of a bound two-head particle
	Front  sim.State = 2 // front head
)

// Pair channel ids.
const (
	PairAttach sim.ChannelID = iota
	PairDetach
)

// Pair is the smallest useful channel set: a two-cell particle binds to two
// vacant cells along the row axis (rear at s, front at s+1) and unbinds from
// its rear cell. It exercises the index without any motion.
type Pair struct{}

func (Pair) Name() string       { return "pair" }
func (Pair) Channels() []string { return []string{"attach", "detach"} }

func (Pair) Stencil() sim.Stencil {
	span := sim.Span{Min: 0, Max: 1}
	return sim.Stencil{ReadRows: span, WriteRows: span}
}

func (Pair) CheckLattice(lat *sim.Lattice) error {
	return lat.CheckStates(func(s sim.State) bool { return s >= Vacant && s <= Front })
}

func (Pair) Enabled(lat *sim.Lattice, s sim.Site, dst []sim.ChannelID) []sim.ChannelID {
	ahead := lat.At(s.Add(1, 0))
	switch lat.At(s) {
	case Vacant:
		if ahead == Vacant {
			dst = append(dst, PairAttach)
		}
	case Rear:
		if ahead == Front {
			dst = append(dst, PairDetach)
		}
	}
	return dst
}

func (Pair) Apply(lat *sim.Lattice, c sim.ChannelID, s sim.Site) {
	switch c {
	case PairAttach:
		lat.Set(s, Rear)
		lat.Set(s.Add(1, 0), Front)
	case PairDetach:
		lat.Set(s, Vacant)
		lat.Set(s.Add(1, 0), Vacant)
	}
}
