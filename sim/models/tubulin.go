package models

import (
	"fmt"

	"github.com/lattice-sim/lattice-sim/sim"
)

// Tubulin cell codes. Vacant is shared with the motor models.
const (
	GDP  sim.State = 1 // hydrolyzed dimer
	GTP  sim.State = 2 // freshly incorporated dimer
	Seed sim.State = 3 // stabilized dimer; never hydrolyzes or detaches
)

// Tubulin channel ids. Detachment channels start at TubulinDetachBase and are
// indexed by DetachChannel.
const (
	TubulinHydrolysis sim.ChannelID = iota
	TubulinAttach
	TubulinDetachBase
)

// Neighbor count ranges: longitudinal counts are 0..2, lateral counts are in
// half units 0..4 because a seam neighbor contributes half a bond.
const (
	maxLong    = 2
	maxLatHalf = 4

	detachPerAt = (maxLatHalf + 1) * (maxLatHalf + 1) // 25
	detachPerA  = (maxLong + 1) * detachPerAt         // 75

	// NumTubulinDetach is the number of detachment channels in the bulk family.
	NumTubulinDetach = (maxLong + 1) * detachPerA // 225

	// NumGapDetach is the size of each gap-edge family. Its dimers have exactly
	// one longitudinal neighbor, so only at (0 or 1) and the lateral counts vary.
	NumGapDetach = 2 * detachPerAt // 50
)

// Gap-edge detachment families follow the bulk family.
const (
	TubulinDetachUpBase   = TubulinDetachBase + NumTubulinDetach
	TubulinDetachDownBase = TubulinDetachUpBase + NumGapDetach
)

// GapSide tells on which side of a dimer its missing longitudinal neighbor lies.
type GapSide int

const (
	GapUp   GapSide = iota // gap at s+d
	GapDown                // gap at s-d
)

// DetachChannel maps neighbor counts to a bulk detachment channel id. a and at
// are the GDP-type and GTP-type longitudinal neighbor counts; b2 and bt2 are
// the GDP-type and GTP-type lateral counts in half units. Ids with a+at == 1
// exist so the arithmetic stays dense but are never enabled: those dimers
// detach through GapDetachChannel.
func DetachChannel(a, at, b2, bt2 int) sim.ChannelID {
	return TubulinDetachBase + sim.ChannelID(a*detachPerA+at*detachPerAt+b2*(maxLatHalf+1)+bt2)
}

// GapDetachChannel maps the neighbor counts of a dimer with one longitudinal
// neighbor to its detachment channel. at is 1 when that neighbor is GTP-type.
func GapDetachChannel(side GapSide, at, b2, bt2 int) sim.ChannelID {
	base := TubulinDetachUpBase
	if side == GapDown {
		base = TubulinDetachDownBase
	}
	return base + sim.ChannelID(at*detachPerAt+b2*(maxLatHalf+1)+bt2)
}

// detachNames lists the 225 neighbor configurations in DetachChannel order.
func detachNames(family string) []string {
	names := make([]string, 0, NumTubulinDetach)
	for a := 0; a <= maxLong; a++ {
		for at := 0; at <= maxLong; at++ {
			names = append(names, latNames(family, a, at)...)
		}
	}
	return names
}

func latNames(family string, a, at int) []string {
	names := make([]string, 0, detachPerAt)
	for b2 := 0; b2 <= maxLatHalf; b2++ {
		for bt2 := 0; bt2 <= maxLatHalf; bt2++ {
			names = append(names, fmt.Sprintf("%s/a%d-at%d-b%d-bt%d", family, a, at, b2, bt2))
		}
	}
	return names
}

var tubulinChannels = func() []string {
	names := []string{"hydrolysis", "attach"}
	names = append(names, detachNames("detach")...)
	for _, family := range []string{"detach-up", "detach-down"} {
		names = append(names, latNames(family, 1, 0)...)
		names = append(names, latNames(family, 0, 1)...)
	}
	return names
}()

// Tubulin models the effective microtubule lattice: protofilaments run along
// rows, columns wrap around the tube with a seam that shifts the neighbor
// across it by one and two rows. Vacant cells next to the polymer accept GTP
// dimers, a GTP dimer covered by another dimer hydrolyzes to GDP, and any
// non-seed dimer detaches at a rate chosen by its neighbor configuration.
// A dimer at the edge of a gap detaches through the detach-up family when the
// gap lies at s+d and through detach-down when it lies at s-d. The zero value
// points d toward higher rows.
type Tubulin struct {
	dir Direction
}

// NewTubulin returns a tubulin model whose up direction is d.
func NewTubulin(d Direction) (Tubulin, error) {
	if d != Kinesin && d != Dynein {
		return Tubulin{}, fmt.Errorf("tubulin direction must be +1 or -1, got %d", d)
	}
	return Tubulin{dir: d}, nil
}

// Direction returns the up direction along rows.
func (m Tubulin) Direction() Direction {
	if m.dir == Dynein {
		return Dynein
	}
	return Kinesin
}

func (Tubulin) Name() string { return "tubulin" }

// Channels returns the shared name table; callers must not modify it.
func (Tubulin) Channels() []string { return tubulinChannels }

func (Tubulin) Stencil() sim.Stencil {
	return sim.Stencil{
		ReadRows: sim.Span{Min: -2, Max: 2},
		ReadCols: sim.Span{Min: -1, Max: 1},
	}
}

func (Tubulin) CheckLattice(lat *sim.Lattice) error {
	if !lat.Boundary().PeriodicCols {
		return fmt.Errorf("tubulin lattice must be periodic along columns")
	}
	if lat.Cols() < 2 {
		return fmt.Errorf("tubulin lattice needs at least 2 protofilaments, got %d", lat.Cols())
	}
	return lat.CheckStates(func(s sim.State) bool { return s >= Vacant && s <= Seed })
}

// bond is one neighbor position relative to a site and the weight of its bond
// in half units.
type bond struct {
	dr, dc int
	half   int
}

var (
	longitudinalBonds = []bond{{1, 0, 2}, {-1, 0, 2}}
	interiorBonds     = []bond{{0, -1, 2}, {0, 1, 2}}
	// first protofilament: its left neighbor lies across the seam
	seamLeftBonds = []bond{{1, -1, 1}, {2, -1, 1}, {0, 1, 2}}
	// last protofilament: its right neighbor lies across the seam
	seamRightBonds = []bond{{-1, 1, 1}, {-2, 1, 1}, {0, -1, 2}}
)

func lateralBonds(lat *sim.Lattice, s sim.Site) []bond {
	switch s.Col {
	case 0:
		return seamLeftBonds
	case lat.Cols() - 1:
		return seamRightBonds
	default:
		return interiorBonds
	}
}

// neighborhood holds the bond counts around one site.
type neighborhood struct {
	a, at   int // longitudinal GDP-type, GTP-type
	b2, bt2 int // lateral GDP-type, GTP-type, half units
}

func (n neighborhood) total2() int { return 2*(n.a+n.at) + n.b2 + n.bt2 }

// countNeighbors tallies occupied neighbors of s, own being the tubulin kind
// at s. A GDP dimer sees every occupied neighbor as GDP-type; other sites tell
// GDP apart from GTP and seed. Motor and excitation flags are ignored.
func countNeighbors(lat *sim.Lattice, s sim.Site, own sim.State) neighborhood {
	var n neighborhood
	kind := func(st sim.State) (occupied, gtpLike bool) {
		k := tubulinKind(st)
		if k <= Vacant {
			return false, false
		}
		return true, own != GDP && k != GDP
	}
	for _, b := range longitudinalBonds {
		if ok, gtp := kind(lat.At(s.Add(b.dr, b.dc))); ok {
			if gtp {
				n.at++
			} else {
				n.a++
			}
		}
	}
	for _, b := range lateralBonds(lat, s) {
		if ok, gtp := kind(lat.At(s.Add(b.dr, b.dc))); ok {
			if gtp {
				n.bt2 += b.half
			} else {
				n.b2 += b.half
			}
		}
	}
	return n
}

// tubulinSite is the closed set of site classes the rules distinguish.
type tubulinSite int

const (
	tubulinInert tubulinSite = iota // seed or unrecognized
	tubulinHole                     // vacant
	tubulinGDP                      // hydrolyzed dimer
	tubulinGTP                      // GTP dimer
)

func classifyTubulin(st sim.State) tubulinSite {
	switch st {
	case Vacant:
		return tubulinHole
	case GDP:
		return tubulinGDP
	case GTP:
		return tubulinGTP
	default:
		return tubulinInert
	}
}

func (m Tubulin) Enabled(lat *sim.Lattice, s sim.Site, dst []sim.ChannelID) []sim.ChannelID {
	own := lat.At(s)
	switch classifyTubulin(own) {
	case tubulinHole:
		n := countNeighbors(lat, s, own)
		if t := n.total2(); (t > 0 && t < 8) || n.bt2 > 0 {
			dst = append(dst, TubulinAttach)
		}
	case tubulinGTP:
		if tubulinKind(lat.At(s.Add(1, 0))) > Vacant {
			dst = append(dst, TubulinHydrolysis)
		}
		fallthrough
	case tubulinGDP:
		dst = append(dst, m.detachChannel(lat, s, countNeighbors(lat, s, own)))
	}
	return dst
}

// detachChannel picks the bulk or gap-edge family for a dimer at s.
func (m Tubulin) detachChannel(lat *sim.Lattice, s sim.Site, n neighborhood) sim.ChannelID {
	if n.a+n.at != 1 {
		return DetachChannel(n.a, n.at, n.b2, n.bt2)
	}
	side := GapUp
	if tubulinKind(lat.At(s.Add(int(m.Direction()), 0))) > Vacant {
		side = GapDown
	}
	return GapDetachChannel(side, n.at, n.b2, n.bt2)
}

func (Tubulin) Apply(lat *sim.Lattice, c sim.ChannelID, s sim.Site) {
	switch {
	case c == TubulinHydrolysis:
		lat.Set(s, GDP)
	case c == TubulinAttach:
		lat.Set(s, GTP)
	case c >= TubulinDetachBase:
		lat.Set(s, Vacant)
	}
}
