package sim

import "slices"

// SiteSet is an unordered set of flat site indices supporting O(1) insertion,
// O(1) swap-removal and uniform selection by position.
type SiteSet struct {
	items []int
	slot  map[int]int // site -> position in items
}

func newSiteSet() SiteSet {
	return SiteSet{slot: make(map[int]int)}
}

// Len returns the number of sites in the set.
func (ss *SiteSet) Len() int { return len(ss.items) }

// Contains reports whether site is in the set.
func (ss *SiteSet) Contains(site int) bool {
	_, ok := ss.slot[site]
	return ok
}

// Add inserts site; it returns false if it was already present.
func (ss *SiteSet) Add(site int) bool {
	if _, ok := ss.slot[site]; ok {
		return false
	}
	ss.slot[site] = len(ss.items)
	ss.items = append(ss.items, site)
	return true
}

// Remove deletes site by moving the last element into its slot.
// It returns false if site was not present.
func (ss *SiteSet) Remove(site int) bool {
	pos, ok := ss.slot[site]
	if !ok {
		return false
	}
	last := len(ss.items) - 1
	if pos != last {
		moved := ss.items[last]
		ss.items[pos] = moved
		ss.slot[moved] = pos
	}
	ss.items = ss.items[:last]
	delete(ss.slot, site)
	return true
}

// At returns the site stored at position k, 0 <= k < Len().
func (ss *SiteSet) At(k int) int { return ss.items[k] }

// Sorted returns a sorted copy of the members.
func (ss *SiteSet) Sorted() []int {
	out := slices.Clone(ss.items)
	slices.Sort(out)
	return out
}
