package models

import (
	"fmt"

	"github.com/lattice-sim/lattice-sim/sim"
)

// Motubule cell layout. The low two bits hold the tubulin kind (GDP, GTP or
// Seed; a zero cell is Vacant). The flags above it mark a dimer destabilized
// by a motor step and the motor head bound to the dimer.
const (
	Excited   sim.State = 1 << 2
	RearHead  sim.State = 1 << 3
	FrontHead sim.State = 2 << 3

	kindMask sim.State = 3
	headMask sim.State = 3 << 3
)

// tubulinKind strips motor and excitation flags from a cell. Vacant, Defect
// and Outside come back unchanged.
func tubulinKind(st sim.State) sim.State {
	if st <= Vacant {
		return st
	}
	return st & kindMask
}

// headOf returns the motor head bound at st, or 0.
func headOf(st sim.State) sim.State {
	if st <= Vacant {
		return 0
	}
	return st & headMask
}

// bareDimer reports whether st is a dimer without a motor head.
func bareDimer(st sim.State) bool { return st > Vacant && st&headMask == 0 }

// excite marks a dimer destabilized. Seed dimers stay stable.
func excite(st sim.State) sim.State {
	if tubulinKind(st) == Seed {
		return st
	}
	return st | Excited
}

// Motubule channel ids. Detachment channels start at MotubDetachBase and are
// indexed by MotubDetachChannel.
const (
	MotubMotorAttach sim.ChannelID = iota
	MotubMotorDetach
	MotubMotorDetachOneHead
	MotubWalk
	MotubHydrolysis
	MotubAttach
	MotubRelax
	MotubDetachBase
)

// MotubDetachChannel maps neighbor counts to a detachment channel. Excited
// dimers use the destabilized family that follows the stable one.
func MotubDetachChannel(excited bool, a, at, b2, bt2 int) sim.ChannelID {
	c := MotubDetachBase + (DetachChannel(a, at, b2, bt2) - TubulinDetachBase)
	if excited {
		c += NumTubulinDetach
	}
	return c
}

var motubChannels = func() []string {
	names := []string{
		"motor-attach", "motor-detach", "motor-detach-one-head", "walk",
		"hydrolysis", "attach", "relax",
	}
	names = append(names, detachNames("detach")...)
	return append(names, detachNames("detach-excited")...)
}()

// Motubule couples two-head motors with the tubulin lattice they walk on.
// Motors bind to two adjacent bare dimers along a protofilament and step in
// direction d. A step excites the dimer it leaves the rear head on; excited
// dimers relax or detach through their own family of channels. A motor
// stepping into a gap keeps only its rear head, which detaches on its own or
// falls off with the dimer under it. A GTP dimer cannot attach right in front
// of such a one-head motor.
type Motubule struct {
	dir Direction
}

// NewMotubule returns a coupled model whose motors walk in direction d.
func NewMotubule(d Direction) (*Motubule, error) {
	if d != Kinesin && d != Dynein {
		return nil, fmt.Errorf("motubule direction must be +1 or -1, got %d", d)
	}
	return &Motubule{dir: d}, nil
}

// Direction returns the walking sense.
func (m *Motubule) Direction() Direction { return m.dir }

func (m *Motubule) Name() string { return "motubule" }

// Channels returns the shared name table; callers must not modify it.
func (m *Motubule) Channels() []string { return motubChannels }

func (m *Motubule) Stencil() sim.Stencil {
	write := sim.Span{Min: 0, Max: 2}
	if m.dir == Dynein {
		write = sim.Span{Min: -2, Max: 0}
	}
	return sim.Stencil{
		ReadRows:  sim.Span{Min: -2, Max: 2},
		ReadCols:  sim.Span{Min: -1, Max: 1},
		WriteRows: write,
	}
}

func (m *Motubule) CheckLattice(lat *sim.Lattice) error {
	if !lat.Boundary().PeriodicCols {
		return fmt.Errorf("motubule lattice must be periodic along columns")
	}
	if lat.Cols() < 2 {
		return fmt.Errorf("motubule lattice needs at least 2 protofilaments, got %d", lat.Cols())
	}
	return lat.CheckStates(validMotubCell)
}

func validMotubCell(st sim.State) bool {
	if st == Vacant {
		return true
	}
	if st < Vacant || st&^(kindMask|Excited|headMask) != 0 {
		return false
	}
	kind := tubulinKind(st)
	if kind == Vacant || headOf(st) == headMask {
		return false
	}
	return kind != Seed || st&Excited == 0
}

func (m *Motubule) classify(lat *sim.Lattice, s sim.Site) motorSite {
	d := int(m.dir)
	here, next := lat.At(s), lat.At(s.Add(d, 0))
	switch {
	case bareDimer(here) && bareDimer(next):
		return motorPair
	case headOf(here) == RearHead && headOf(next) == FrontHead:
		ahead := lat.At(s.Add(2*d, 0))
		switch {
		case bareDimer(ahead):
			return motorFree
		case ahead == Vacant:
			return motorDefectAhead
		default:
			return motorBlocked
		}
	case headOf(here) == RearHead && next == Vacant:
		return motorOneHead
	}
	return motorInert
}

func (m *Motubule) Enabled(lat *sim.Lattice, s sim.Site, dst []sim.ChannelID) []sim.ChannelID {
	own := lat.At(s)
	if own == Vacant {
		n := countNeighbors(lat, s, Vacant)
		t := n.total2()
		behind := lat.At(s.Add(-int(m.dir), 0))
		if ((t > 0 && t < 8) || n.bt2 > 0) && headOf(behind) != RearHead {
			dst = append(dst, MotubAttach)
		}
		return dst
	}
	if own < Vacant {
		return dst
	}

	site := m.classify(lat, s)
	switch site {
	case motorPair:
		dst = append(dst, MotubMotorAttach)
	case motorFree, motorDefectAhead:
		dst = append(dst, MotubMotorDetach, MotubWalk)
	case motorBlocked:
		dst = append(dst, MotubMotorDetach)
	case motorOneHead:
		dst = append(dst, MotubMotorDetachOneHead)
	}

	kind := tubulinKind(own)
	if kind == GTP && tubulinKind(lat.At(s.Add(1, 0))) > Vacant {
		dst = append(dst, MotubHydrolysis)
	}
	excited := own&Excited != 0
	if excited {
		dst = append(dst, MotubRelax)
	}
	// a dimer under a motor is held in place unless the motor hangs by one head
	if kind != Seed && (headOf(own) == 0 || site == motorOneHead) {
		n := countNeighbors(lat, s, kind)
		dst = append(dst, MotubDetachChannel(excited, n.a, n.at, n.b2, n.bt2))
	}
	return dst
}

func (m *Motubule) Apply(lat *sim.Lattice, c sim.ChannelID, s sim.Site) {
	d := int(m.dir)
	next, ahead := s.Add(d, 0), s.Add(2*d, 0)
	own := lat.At(s)
	switch {
	case c == MotubMotorAttach:
		lat.Set(s, own|RearHead)
		lat.Set(next, lat.At(next)|FrontHead)
	case c == MotubMotorDetach:
		lat.Set(s, own&^headMask)
		lat.Set(next, lat.At(next)&^headMask)
	case c == MotubMotorDetachOneHead:
		lat.Set(s, own&^headMask)
	case c == MotubWalk:
		lat.Set(s, own&^headMask)
		lat.Set(next, excite((lat.At(next)&^headMask)|RearHead))
		if bareDimer(lat.At(ahead)) {
			lat.Set(ahead, lat.At(ahead)|FrontHead)
		}
	case c == MotubHydrolysis:
		lat.Set(s, (own&^kindMask)|GDP)
	case c == MotubAttach:
		lat.Set(s, GTP)
	case c == MotubRelax:
		lat.Set(s, own&^Excited)
	case c >= MotubDetachBase:
		lat.Set(s, Vacant)
	}
}
