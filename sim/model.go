package sim

import "fmt"

// ChannelID identifies a reaction channel. Ids are dense: 0..len(Channels())-1,
// and index the rate table.
type ChannelID int

// Model bundles the local rule evaluator and the transition function for one
// channel set. Implementations must be deterministic and side-effect free apart
// from Apply writing the lattice.
type Model interface {
	// Name is the registry key of the model.
	Name() string

	// Channels returns the channel names in id order.
	Channels() []string

	// Stencil bounds the cells Enabled reads and Apply writes, relative to the site.
	Stencil() Stencil

	// CheckLattice rejects lattices the model cannot run on: wrong dimensions,
	// unsupported boundary policy, or unknown state codes.
	CheckLattice(lat *Lattice) error

	// Enabled appends to dst the channels enabled at s, in ascending order
	// without duplicates, and returns the extended slice.
	Enabled(lat *Lattice, s Site, dst []ChannelID) []ChannelID

	// Apply performs channel c at site s. It is only called when c is enabled at s.
	Apply(lat *Lattice, c ChannelID, s Site)
}

// Span is an inclusive range of offsets along one axis.
type Span struct {
	Min, Max int
}

// Width returns the number of offsets in the span.
func (sp Span) Width() int { return sp.Max - sp.Min + 1 }

// Stencil describes a model's dependency and mutation footprint.
type Stencil struct {
	ReadRows, ReadCols   Span // offsets Enabled may read
	WriteRows, WriteCols Span // offsets Apply may write
}

// Validate rejects inverted spans.
func (st Stencil) Validate() error {
	for name, sp := range map[string]Span{
		"read rows": st.ReadRows, "read cols": st.ReadCols,
		"write rows": st.WriteRows, "write cols": st.WriteCols,
	} {
		if sp.Min > sp.Max {
			return fmt.Errorf("%w: stencil %s span [%d,%d] is inverted", ErrConfig, name, sp.Min, sp.Max)
		}
	}
	return nil
}

// RescanWindow returns the offsets, relative to a mutated site, of every site
// whose enabled set can change. A site t is affected only when one of its read
// cells t+r coincides with a written cell s+w, i.e. t-s = w-r.
func (st Stencil) RescanWindow() (rows, cols Span) {
	rows = Span{Min: st.WriteRows.Min - st.ReadRows.Max, Max: st.WriteRows.Max - st.ReadRows.Min}
	cols = Span{Min: st.WriteCols.Min - st.ReadCols.Max, Max: st.WriteCols.Max - st.ReadCols.Min}
	return rows, cols
}

// ChannelByName returns the id of the named channel.
func ChannelByName(m Model, name string) (ChannelID, bool) {
	for i, n := range m.Channels() {
		if n == name {
			return ChannelID(i), true
		}
	}
	return 0, false
}
