package models

import (
	"fmt"

	"github.com/lattice-sim/lattice-sim/sim"
)

// Direction is the sense in which motors walk along the row axis.
type Direction int

const (
	Kinesin Direction = 1  // plus-end directed
	Dynein  Direction = -1 // minus-end directed
)

// Motor channel ids.
const (
	MotorAttach sim.ChannelID = iota
	MotorWalk
	MotorDetach
	MotorDetachOneHead
)

// Motor models processive two-head motors on a lattice that may carry defect
// cells. A bound motor occupies its rear cell s and front cell s+d. It walks
// one cell per step; a motor whose front head would land on a defect keeps
// only its rear head bound, and such a one-head motor can only detach.
type Motor struct {
	dir Direction
}

// NewMotor returns a motor model walking in direction d.
func NewMotor(d Direction) (*Motor, error) {
	if d != Kinesin && d != Dynein {
		return nil, fmt.Errorf("motor direction must be +1 or -1, got %d", d)
	}
	return &Motor{dir: d}, nil
}

// Direction returns the walking sense.
func (m *Motor) Direction() Direction { return m.dir }

func (m *Motor) Name() string { return "motor" }

func (m *Motor) Channels() []string {
	return []string{"attach", "walk", "detach", "detach-one-head"}
}

func (m *Motor) Stencil() sim.Stencil {
	span := sim.Span{Min: 0, Max: 2}
	if m.dir == Dynein {
		span = sim.Span{Min: -2, Max: 0}
	}
	return sim.Stencil{ReadRows: span, WriteRows: span}
}

func (m *Motor) CheckLattice(lat *sim.Lattice) error {
	return lat.CheckStates(func(s sim.State) bool { return s >= Defect && s <= Front })
}

// motorSite classifies the cells at s, s+d and s+2d as seen by a two-head
// motor. Both motor models share it.
type motorSite int

const (
	motorInert       motorSite = iota
	motorPair                  // s and s+d can bind a motor
	motorFree                  // bound, the cell at s+2d takes the front head
	motorDefectAhead           // bound, s+2d cannot hold a head; a step leaves one head
	motorBlocked               // bound, s+2d occupied or off the lattice
	motorOneHead               // rear head at s, nothing bound at s+d
)

func (m *Motor) classify(lat *sim.Lattice, s sim.Site) motorSite {
	d := int(m.dir)
	here, next := lat.At(s), lat.At(s.Add(d, 0))
	switch {
	case here == Vacant && next == Vacant:
		return motorPair
	case here == Rear && next == Front:
		switch lat.At(s.Add(2*d, 0)) {
		case Vacant:
			return motorFree
		case Defect:
			return motorDefectAhead
		default:
			return motorBlocked
		}
	case here == Rear && next == Defect:
		return motorOneHead
	}
	return motorInert
}

func (m *Motor) Enabled(lat *sim.Lattice, s sim.Site, dst []sim.ChannelID) []sim.ChannelID {
	switch m.classify(lat, s) {
	case motorPair:
		dst = append(dst, MotorAttach)
	case motorFree, motorDefectAhead:
		dst = append(dst, MotorWalk, MotorDetach)
	case motorBlocked:
		dst = append(dst, MotorDetach)
	case motorOneHead:
		dst = append(dst, MotorDetachOneHead)
	}
	return dst
}

func (m *Motor) Apply(lat *sim.Lattice, c sim.ChannelID, s sim.Site) {
	d := int(m.dir)
	next, ahead := s.Add(d, 0), s.Add(2*d, 0)
	switch c {
	case MotorAttach:
		lat.Set(s, Rear)
		lat.Set(next, Front)
	case MotorWalk:
		defectAhead := m.classify(lat, s) == motorDefectAhead
		lat.Set(s, Vacant)
		lat.Set(next, Rear)
		if !defectAhead {
			lat.Set(ahead, Front)
		}
	case MotorDetach:
		lat.Set(s, Vacant)
		lat.Set(next, Vacant)
	case MotorDetachOneHead:
		lat.Set(s, Vacant)
	}
}
