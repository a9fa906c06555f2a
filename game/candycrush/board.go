package candycrush

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/kamstrup/intmap"
	"github.com/wricardo/tmge/game/engine"
)

// MinRun is the shortest line of equal kinds that counts as a match
const MinRun = 3

// Board owns the candy grid, the pending selection and the last scan result
type Board struct {
	grid     *engine.Grid
	kinds    []string
	rng      *rand.Rand
	refill   func(i, j int) string
	selected *engine.Location
	matches  []engine.Location
	seen     *intmap.Map[int, struct{}]
}

// NewBoard creates a fully populated board that contains no matches
func NewBoard(rows, cols int, kinds []string, rng *rand.Rand) *Board {
	b := newEmptyBoard(rows, cols, kinds, rng)
	b.populate()
	return b
}

// NewBoardFromLayout builds a board from rows of kind initials; '.' is an empty cell
func NewBoardFromLayout(layout []string, kinds []string, rng *rand.Rand) (*Board, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("layout must have at least one row")
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("at least one kind is required")
	}
	byInitial := make(map[byte]string, len(kinds))
	for _, k := range kinds {
		byInitial[strings.ToUpper(k)[0]] = k
	}

	cols := len(layout[0])
	b := newEmptyBoard(len(layout), cols, kinds, rng)
	for i, row := range layout {
		if len(row) != cols {
			return nil, fmt.Errorf("layout row %d must have %d characters, got %d", i+1, cols, len(row))
		}
		for j := 0; j < len(row); j++ {
			if row[j] == '.' {
				continue
			}
			kind, ok := byInitial[row[j]]
			if !ok {
				return nil, fmt.Errorf("invalid character '%c' at row %d, col %d", row[j], i+1, j+1)
			}
			b.grid.Set(i, j, candy(kind))
		}
	}
	return b, nil
}

func newEmptyBoard(rows, cols int, kinds []string, rng *rand.Rand) *Board {
	b := &Board{
		grid:  engine.NewGrid(rows, cols),
		kinds: append([]string(nil), kinds...),
		rng:   rng,
		seen:  intmap.New[int, struct{}](rows * cols),
	}
	b.refill = func(int, int) string { return b.randomKind() }
	return b
}

func candy(kind string) engine.Tile {
	return engine.Tile{Kind: kind, Points: engine.CandyTilePoints}
}

func (b *Board) randomKind() string {
	return b.kinds[b.rng.IntN(len(b.kinds))]
}

// SetRefill replaces the generator used to fill cells emptied by a cascade
func (b *Board) SetRefill(fn func(i, j int) string) {
	if fn == nil {
		fn = func(int, int) string { return b.randomKind() }
	}
	b.refill = fn
}

// Grid returns the board's grid
func (b *Board) Grid() *engine.Grid { return b.grid }

// Kinds returns the candy kinds the board draws from
func (b *Board) Kinds() []string { return append([]string(nil), b.kinds...) }

// Selected returns the pending selection, if any
func (b *Board) Selected() (engine.Location, bool) {
	if b.selected == nil {
		return engine.Location{}, false
	}
	return *b.selected, true
}

// Matches returns the deduplicated cells found by the last scan in scan order
func (b *Board) Matches() []engine.Location {
	return append([]engine.Location(nil), b.matches...)
}

// HasMatches reports whether the last scan found anything
func (b *Board) HasMatches() bool { return len(b.matches) > 0 }

// populate fills every cell randomly, then reassigns cells until no match remains
func (b *Board) populate() {
	for i := 0; i < b.grid.Rows(); i++ {
		for j := 0; j < b.grid.Cols(); j++ {
			b.grid.Set(i, j, candy(b.randomKind()))
		}
	}
	b.resolveInitialMatches()
}

// resolveInitialMatches reassigns matched cells, avoiding the kind of an
// equal pair directly above or to the left, until a scan finds nothing.
func (b *Board) resolveInitialMatches() {
	for b.ScanMatches() {
		for _, loc := range b.matches {
			i, j := loc.I, loc.J
			excluded := map[string]bool{}
			if kind, ok := b.pairKind(i-1, j, i-2, j); ok {
				excluded[kind] = true
			}
			if kind, ok := b.pairKind(i, j-1, i, j-2); ok {
				excluded[kind] = true
			}
			available := make([]string, 0, len(b.kinds))
			for _, k := range b.kinds {
				if !excluded[k] {
					available = append(available, k)
				}
			}
			if len(available) == 0 {
				available = b.kinds
			}
			b.grid.Set(i, j, candy(available[b.rng.IntN(len(available))]))
		}
	}
	b.matches = nil
}

func (b *Board) pairKind(i1, j1, i2, j2 int) (string, bool) {
	t1, ok1 := b.grid.Get(i1, j1)
	t2, ok2 := b.grid.Get(i2, j2)
	if !ok1 || !ok2 || t1.Kind != t2.Kind {
		return "", false
	}
	return t1.Kind, true
}

// Select handles a cell click. With no pending selection the cell becomes
// selected. Clicking a neighbour of the selection attempts a swap and
// returns its result; any other cell replaces the selection. Empty or
// out-of-bounds cells are rejected.
func (b *Board) Select(i, j int) bool {
	if !b.grid.Occupied(i, j) {
		return false
	}
	loc := engine.Location{I: i, J: j}
	if b.selected != nil && b.selected.Adjacent(loc) {
		from := *b.selected
		return b.Swap(from.I, from.J, i, j)
	}
	b.selected = &loc
	return true
}

// Swap exchanges the kinds at two cells and keeps the exchange only if it
// creates a match. The selection is cleared either way; a rejected swap
// leaves the grid exactly as it was.
func (b *Board) Swap(i1, j1, i2, j2 int) bool {
	t1, ok1 := b.grid.Get(i1, j1)
	t2, ok2 := b.grid.Get(i2, j2)
	if !ok1 || !ok2 {
		return false
	}
	b.selected = nil

	b.grid.Set(i1, j1, t2)
	b.grid.Set(i2, j2, t1)
	if b.ScanMatches() {
		return true
	}
	b.grid.Set(i1, j1, t1)
	b.grid.Set(i2, j2, t2)
	return false
}

// ScanMatches records every cell that belongs to a horizontal or vertical
// run of at least MinRun equal kinds and reports whether any were found.
func (b *Board) ScanMatches() bool {
	b.matches = b.matches[:0]
	b.seen.Clear()

	rows, cols := b.grid.Rows(), b.grid.Cols()
	for i := 0; i < rows; i++ {
		b.scanLine(cols, func(k int) (int, int) { return i, k })
	}
	for j := 0; j < cols; j++ {
		b.scanLine(rows, func(k int) (int, int) { return k, j })
	}
	return len(b.matches) > 0
}

// scanLine run-length scans one row or column of length n; at maps a
// position along the line to grid coordinates.
func (b *Board) scanLine(n int, at func(k int) (int, int)) {
	k := 0
	for k < n {
		i, j := at(k)
		first, ok := b.grid.Get(i, j)
		if !ok {
			k++
			continue
		}
		run := 1
		for k+run < n {
			ni, nj := at(k + run)
			next, ok := b.grid.Get(ni, nj)
			if !ok || next.Kind != first.Kind {
				break
			}
			run++
		}
		if run >= MinRun {
			for r := k; r < k+run; r++ {
				b.mark(at(r))
			}
		}
		k += run
	}
}

func (b *Board) mark(i, j int) {
	key := i*b.grid.Cols() + j
	if b.seen.Has(key) {
		return
	}
	b.seen.Put(key, struct{}{})
	b.matches = append(b.matches, engine.Location{I: i, J: j})
}

// RemoveAndSettle clears the matched cells, lets the survivors fall,
// refills the empty cells and rescans. It returns how many cells were
// cleared; the rescan result is available from HasMatches.
func (b *Board) RemoveAndSettle() int {
	if len(b.matches) == 0 {
		return 0
	}
	removed := len(b.matches)
	for _, loc := range b.matches {
		b.grid.ClearAt(loc)
	}
	b.matches = b.matches[:0]

	b.applyGravity()
	b.fill()
	b.ScanMatches()
	return removed
}

// applyGravity compacts every column downward, preserving tile order
func (b *Board) applyGravity() {
	rows := b.grid.Rows()
	for j := 0; j < b.grid.Cols(); j++ {
		write := rows - 1
		for i := rows - 1; i >= 0; i-- {
			t, ok := b.grid.Get(i, j)
			if !ok {
				continue
			}
			if i != write {
				b.grid.Set(write, j, t)
				b.grid.Clear(i, j)
			}
			write--
		}
	}
}

// fill puts a fresh candy in every empty cell, column by column from the top
func (b *Board) fill() {
	for j := 0; j < b.grid.Cols(); j++ {
		for i := 0; i < b.grid.Rows(); i++ {
			if !b.grid.Occupied(i, j) {
				b.grid.Set(i, j, candy(b.refill(i, j)))
			}
		}
	}
}

// ClearSelection drops any pending selection
func (b *Board) ClearSelection() { b.selected = nil }
