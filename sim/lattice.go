package sim

import (
	"fmt"
	"math"
)

// State is the integer code stored in a lattice cell. Its meaning is defined by
// the Model operating on the lattice.
type State int

// Outside is returned by Lattice.At for reads that fall off an open edge.
// It is never stored in a cell.
const Outside State = math.MinInt32

// Site addresses one lattice cell. Row is axis 0, Col is axis 1.
type Site struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the site displaced by (dr, dc) without any boundary handling.
func (s Site) Add(dr, dc int) Site {
	return Site{Row: s.Row + dr, Col: s.Col + dc}
}

func (s Site) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// Boundary selects, per axis, whether the lattice wraps around.
type Boundary struct {
	PeriodicRows bool `json:"periodic_rows"`
	PeriodicCols bool `json:"periodic_cols"`
}

// Lattice is a rows×cols grid of site states stored row-major.
// It is mutated only by a Model's Apply during a simulation step.
type Lattice struct {
	rows, cols int
	boundary   Boundary
	cells      []State
}

// NewLattice creates a lattice with every cell set to zero.
func NewLattice(rows, cols int, boundary Boundary) (*Lattice, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrEmptyLattice, rows, cols)
	}
	return &Lattice{
		rows:     rows,
		cols:     cols,
		boundary: boundary,
		cells:    make([]State, rows*cols),
	}, nil
}

// NewLatticeFromGrid builds a lattice from grid[row][col].
func NewLatticeFromGrid(grid [][]State, boundary Boundary) (*Lattice, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, ErrEmptyLattice
	}
	lat, err := NewLattice(len(grid), len(grid[0]), boundary)
	if err != nil {
		return nil, err
	}
	for r, row := range grid {
		if len(row) != lat.cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNonRectangular, r, len(row), lat.cols)
		}
		copy(lat.cells[r*lat.cols:(r+1)*lat.cols], row)
	}
	return lat, nil
}

// Rows returns the length of axis 0.
func (l *Lattice) Rows() int { return l.rows }

// Cols returns the length of axis 1.
func (l *Lattice) Cols() int { return l.cols }

// Len returns the number of sites.
func (l *Lattice) Len() int { return len(l.cells) }

// Boundary returns the boundary policy.
func (l *Lattice) Boundary() Boundary { return l.boundary }

// Resolve maps a possibly out-of-range site onto the lattice. Periodic axes wrap;
// on an open axis an out-of-range coordinate yields ok == false.
func (l *Lattice) Resolve(s Site) (Site, bool) {
	r, ok := resolveAxis(s.Row, l.rows, l.boundary.PeriodicRows)
	if !ok {
		return Site{}, false
	}
	c, ok := resolveAxis(s.Col, l.cols, l.boundary.PeriodicCols)
	if !ok {
		return Site{}, false
	}
	return Site{Row: r, Col: c}, true
}

func resolveAxis(x, n int, periodic bool) (int, bool) {
	if x >= 0 && x < n {
		return x, true
	}
	if !periodic {
		return 0, false
	}
	x %= n
	if x < 0 {
		x += n
	}
	return x, true
}

// At returns the state at s after boundary resolution, or Outside.
func (l *Lattice) At(s Site) State {
	rs, ok := l.Resolve(s)
	if !ok {
		return Outside
	}
	return l.cells[rs.Row*l.cols+rs.Col]
}

// Set writes st at s after boundary resolution. Writing off an open edge is a
// bug in the calling model and panics.
func (l *Lattice) Set(s Site, st State) {
	rs, ok := l.Resolve(s)
	if !ok {
		panic(fmt.Sprintf("sim: write outside lattice at %v", s))
	}
	if st == Outside {
		panic(fmt.Sprintf("sim: cannot store Outside sentinel at %v", s))
	}
	l.cells[rs.Row*l.cols+rs.Col] = st
}

// Index returns the flat row-major index of an in-range site.
func (l *Lattice) Index(s Site) int {
	return s.Row*l.cols + s.Col
}

// SiteAt is the inverse of Index.
func (l *Lattice) SiteAt(i int) Site {
	return Site{Row: i / l.cols, Col: i % l.cols}
}

// Clone returns a deep copy.
func (l *Lattice) Clone() *Lattice {
	cp := *l
	cp.cells = append([]State(nil), l.cells...)
	return &cp
}

// Equal reports whether two lattices have the same shape, boundary and cells.
func (l *Lattice) Equal(o *Lattice) bool {
	if l.rows != o.rows || l.cols != o.cols || l.boundary != o.boundary {
		return false
	}
	for i := range l.cells {
		if l.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Grid returns a copy of the cells as grid[row][col].
func (l *Lattice) Grid() [][]State {
	grid := make([][]State, l.rows)
	for r := range grid {
		grid[r] = append([]State(nil), l.cells[r*l.cols:(r+1)*l.cols]...)
	}
	return grid
}

// Count returns the number of cells holding st.
func (l *Lattice) Count(st State) int {
	n := 0
	for _, c := range l.cells {
		if c == st {
			n++
		}
	}
	return n
}

// Fill sets every cell to st.
func (l *Lattice) Fill(st State) {
	for i := range l.cells {
		l.cells[i] = st
	}
}

// CheckStates returns ErrInvalidState for the first cell that valid rejects.
func (l *Lattice) CheckStates(valid func(State) bool) error {
	for i, c := range l.cells {
		if !valid(c) {
			return fmt.Errorf("%w: state %d at %v", ErrInvalidState, c, l.SiteAt(i))
		}
	}
	return nil
}
