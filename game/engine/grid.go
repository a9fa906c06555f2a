package engine

// Grid is a fixed rows x cols arena of optional tiles addressed by (row, col).
// Out-of-bounds reads return nothing and out-of-bounds writes are ignored.
type Grid struct {
	rows     int
	cols     int
	cells    []Tile
	occupied []bool
}

// NewGrid creates an empty grid
func NewGrid(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid{
		rows:     rows,
		cols:     cols,
		cells:    make([]Tile, rows*cols),
		occupied: make([]bool, rows*cols),
	}
}

// Rows returns the number of rows
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (i, j) addresses a cell of the grid
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.rows && j >= 0 && j < g.cols
}

func (g *Grid) index(i, j int) int {
	return i*g.cols + j
}

// Get returns the tile at (i, j) and whether the cell is occupied
func (g *Grid) Get(i, j int) (Tile, bool) {
	if !g.InBounds(i, j) {
		return Tile{}, false
	}
	idx := g.index(i, j)
	if !g.occupied[idx] {
		return Tile{}, false
	}
	return g.cells[idx], true
}

// GetAt is Get addressed by Location
func (g *Grid) GetAt(l Location) (Tile, bool) {
	return g.Get(l.I, l.J)
}

// Occupied reports whether (i, j) is in bounds and holds a tile
func (g *Grid) Occupied(i, j int) bool {
	_, ok := g.Get(i, j)
	return ok
}

// Set places a tile at (i, j), replacing any occupant
func (g *Grid) Set(i, j int, t Tile) {
	if !g.InBounds(i, j) {
		return
	}
	idx := g.index(i, j)
	g.cells[idx] = t
	g.occupied[idx] = true
}

// SetAt is Set addressed by Location
func (g *Grid) SetAt(l Location, t Tile) {
	g.Set(l.I, l.J, t)
}

// Clear empties the cell at (i, j)
func (g *Grid) Clear(i, j int) {
	if !g.InBounds(i, j) {
		return
	}
	idx := g.index(i, j)
	g.cells[idx] = Tile{}
	g.occupied[idx] = false
}

// ClearAt is Clear addressed by Location
func (g *Grid) ClearAt(l Location) {
	g.Clear(l.I, l.J)
}

// Reset empties every cell
func (g *Grid) Reset() {
	for idx := range g.cells {
		g.cells[idx] = Tile{}
		g.occupied[idx] = false
	}
}

// RowFull reports whether every cell of row i is occupied
func (g *Grid) RowFull(i int) bool {
	if i < 0 || i >= g.rows {
		return false
	}
	for j := 0; j < g.cols; j++ {
		if !g.occupied[g.index(i, j)] {
			return false
		}
	}
	return true
}

// CopyRow overwrites row dst with the contents of row src
func (g *Grid) CopyRow(dst, src int) {
	if dst < 0 || dst >= g.rows || src < 0 || src >= g.rows {
		return
	}
	copy(g.cells[g.index(dst, 0):g.index(dst, g.cols)], g.cells[g.index(src, 0):g.index(src, g.cols)])
	copy(g.occupied[g.index(dst, 0):g.index(dst, g.cols)], g.occupied[g.index(src, 0):g.index(src, g.cols)])
}

// ClearRow empties every cell of row i
func (g *Grid) ClearRow(i int) {
	for j := 0; j < g.cols; j++ {
		g.Clear(i, j)
	}
}

// Count returns the number of occupied cells
func (g *Grid) Count() int {
	n := 0
	for _, ok := range g.occupied {
		if ok {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	c := &Grid{
		rows:     g.rows,
		cols:     g.cols,
		cells:    make([]Tile, len(g.cells)),
		occupied: make([]bool, len(g.occupied)),
	}
	copy(c.cells, g.cells)
	copy(c.occupied, g.occupied)
	return c
}

// Equal reports whether both grids have the same shape and contents
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for idx := range g.cells {
		if g.occupied[idx] != other.occupied[idx] {
			return false
		}
		if g.occupied[idx] && g.cells[idx] != other.cells[idx] {
			return false
		}
	}
	return true
}

// Snapshot returns a row-major deep copy where empty cells are nil
func (g *Grid) Snapshot() [][]*Tile {
	out := make([][]*Tile, g.rows)
	for i := 0; i < g.rows; i++ {
		out[i] = make([]*Tile, g.cols)
		for j := 0; j < g.cols; j++ {
			if t, ok := g.Get(i, j); ok {
				tile := t
				out[i][j] = &tile
			}
		}
	}
	return out
}
