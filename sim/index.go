package sim

import (
	"fmt"
	"slices"
)

// EventIndex holds the three mutually consistent views of which channels are
// enabled where:
//   - occurrence[c]: number of sites enabling channel c
//   - sites[c]:      the set of those sites
//   - enabled[i]:    sorted channels enabled at flat site i
//
// The index reads the lattice it was built on; after a model mutates that
// lattice, RescanNeighborhood brings the index back in line with it.
type EventIndex struct {
	model      Model
	lat        *Lattice
	occurrence []int
	sites      []SiteSet
	enabled    [][]ChannelID

	windowRows, windowCols Span
	scratch                []ChannelID
}

// BuildIndex scans every site of lat with model and returns a fresh index.
func BuildIndex(model Model, lat *Lattice) *EventIndex {
	n := len(model.Channels())
	x := &EventIndex{
		model:      model,
		lat:        lat,
		occurrence: make([]int, n),
		sites:      make([]SiteSet, n),
		enabled:    make([][]ChannelID, lat.Len()),
	}
	x.windowRows, x.windowCols = model.Stencil().RescanWindow()
	for c := range x.sites {
		x.sites[c] = newSiteSet()
	}
	for i := 0; i < lat.Len(); i++ {
		chans := x.evaluate(lat.SiteAt(i))
		if len(chans) == 0 {
			continue
		}
		x.enabled[i] = slices.Clone(chans)
		for _, c := range chans {
			x.occurrence[c]++
			x.sites[c].Add(i)
		}
	}
	return x
}

// evaluate runs the model at s into the scratch buffer, normalized to ascending order.
func (x *EventIndex) evaluate(s Site) []ChannelID {
	x.scratch = x.model.Enabled(x.lat, s, x.scratch[:0])
	if !slices.IsSorted(x.scratch) {
		slices.Sort(x.scratch)
	}
	x.scratch = slices.Compact(x.scratch)
	return x.scratch
}

// Rescan recomputes the channels enabled at s under the current lattice and
// reconciles the index by symmetric difference with the cached set. It returns
// the number of (site, channel) pairs added or removed.
func (x *EventIndex) Rescan(s Site) int {
	i := x.lat.Index(s)
	next := x.evaluate(s)
	prev := x.enabled[i]
	if slices.Equal(prev, next) {
		return 0
	}

	changes := 0
	a, b := 0, 0
	for a < len(prev) || b < len(next) {
		switch {
		case b == len(next) || (a < len(prev) && prev[a] < next[b]):
			x.occurrence[prev[a]]--
			x.sites[prev[a]].Remove(i)
			a++
			changes++
		case a == len(prev) || next[b] < prev[a]:
			x.occurrence[next[b]]++
			x.sites[next[b]].Add(i)
			b++
			changes++
		default:
			a++
			b++
		}
	}

	if len(next) == 0 {
		x.enabled[i] = nil
	} else {
		x.enabled[i] = append(prev[:0], next...)
	}
	return changes
}

// RescanNeighborhood rescans every site whose enabled set can depend on a cell
// written by a transition at origin. Window sites off an open edge are skipped;
// periodic axes wrap, so on small lattices a site may be visited twice, which
// is harmless because Rescan is idempotent.
func (x *EventIndex) RescanNeighborhood(origin Site) int {
	changes := 0
	for dr := x.windowRows.Min; dr <= x.windowRows.Max; dr++ {
		for dc := x.windowCols.Min; dc <= x.windowCols.Max; dc++ {
			s, ok := x.lat.Resolve(origin.Add(dr, dc))
			if !ok {
				continue
			}
			changes += x.Rescan(s)
		}
	}
	return changes
}

// NumChannels returns the number of channel ids.
func (x *EventIndex) NumChannels() int { return len(x.occurrence) }

// Occurrence returns how many sites currently enable c.
func (x *EventIndex) Occurrence(c ChannelID) int { return x.occurrence[c] }

// Occurrences returns a copy of the occurrence vector.
func (x *EventIndex) Occurrences() []int { return slices.Clone(x.occurrence) }

// occurrences exposes the live vector to the sampler without copying.
func (x *EventIndex) occurrences() []int { return x.occurrence }

// Pick returns the k-th site of channel c's site set, 0 <= k < Occurrence(c).
func (x *EventIndex) Pick(c ChannelID, k int) Site {
	return x.lat.SiteAt(x.sites[c].At(k))
}

// SitesOf returns the sites enabling c in row-major order.
func (x *EventIndex) SitesOf(c ChannelID) []Site {
	flat := x.sites[c].Sorted()
	out := make([]Site, len(flat))
	for k, i := range flat {
		out[k] = x.lat.SiteAt(i)
	}
	return out
}

// EnabledAt returns a copy of the cached channel set of s.
func (x *EventIndex) EnabledAt(s Site) []ChannelID {
	return slices.Clone(x.enabled[x.lat.Index(s)])
}

// Lattice returns the lattice the index reads.
func (x *EventIndex) Lattice() *Lattice { return x.lat }

// Diff compares two indexes over the same model and lattice shape and
// describes the first divergence, or returns nil when they are equivalent.
// Channel→Sites sets are compared as sets; slot order is history-dependent.
func (x *EventIndex) Diff(o *EventIndex) error {
	if len(x.occurrence) != len(o.occurrence) {
		return fmt.Errorf("channel count %d != %d", len(x.occurrence), len(o.occurrence))
	}
	if len(x.enabled) != len(o.enabled) {
		return fmt.Errorf("site count %d != %d", len(x.enabled), len(o.enabled))
	}
	for c := range x.occurrence {
		if x.occurrence[c] != o.occurrence[c] {
			return fmt.Errorf("occurrence[%d] = %d, want %d", c, x.occurrence[c], o.occurrence[c])
		}
		if !slices.Equal(x.sites[c].Sorted(), o.sites[c].Sorted()) {
			return fmt.Errorf("site set of channel %d differs", c)
		}
	}
	for i := range x.enabled {
		if !slices.Equal(x.enabled[i], o.enabled[i]) {
			return fmt.Errorf("enabled%v = %v, want %v", x.lat.SiteAt(i), x.enabled[i], o.enabled[i])
		}
	}
	return nil
}

// Equal reports whether Diff finds no divergence.
func (x *EventIndex) Equal(o *EventIndex) bool {
	return x.Diff(o) == nil
}

// Verify rebuilds the index from the current lattice and compares. It is the
// debug-mode consistency check run by Config.CheckConsistency.
func (x *EventIndex) Verify() error {
	if err := x.Diff(BuildIndex(x.model, x.lat)); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexInconsistent, err)
	}
	return nil
}

// CheckInvariants checks bidirectional consistency between the three views.
func (x *EventIndex) CheckInvariants() error {
	counts := make([]int, len(x.occurrence))
	for i, chans := range x.enabled {
		if !slices.IsSorted(chans) {
			return fmt.Errorf("%w: enabled%v not sorted", ErrIndexInconsistent, x.lat.SiteAt(i))
		}
		for _, c := range chans {
			if !x.sites[c].Contains(i) {
				return fmt.Errorf("%w: channel %d enabled at %v but site missing from its set",
					ErrIndexInconsistent, c, x.lat.SiteAt(i))
			}
			counts[c]++
		}
	}
	for c := range x.occurrence {
		if x.sites[c].Len() != x.occurrence[c] || counts[c] != x.occurrence[c] {
			return fmt.Errorf("%w: channel %d occurrence %d, set size %d, site refs %d",
				ErrIndexInconsistent, c, x.occurrence[c], x.sites[c].Len(), counts[c])
		}
	}
	return nil
}
