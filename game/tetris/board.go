package tetris

import (
	"math/rand/v2"

	"github.com/wricardo/tmge/game/engine"
)

// Board owns the grid and the falling piece. While a current piece exists
// its four cells are painted in the grid.
type Board struct {
	grid    *engine.Grid
	current *Piece
	next    *Piece
	spawn   engine.Location
	rng     *rand.Rand
}

// NewBoard creates an empty board with the next piece already chosen
func NewBoard(rows, cols, spawnColumn int, rng *rand.Rand) *Board {
	b := &Board{
		grid:  engine.NewGrid(rows, cols),
		spawn: engine.Location{I: 0, J: spawnColumn},
		rng:   rng,
	}
	b.next = b.generate()
	return b
}

func (b *Board) generate() *Piece {
	p := NewPiece(RandomShape(b.rng), b.spawn)
	return &p
}

// Grid returns the board's grid
func (b *Board) Grid() *engine.Grid { return b.grid }

// Current returns the falling piece, if any
func (b *Board) Current() (Piece, bool) {
	if b.current == nil {
		return Piece{}, false
	}
	return *b.current, true
}

// Next returns the piece that will spawn next
func (b *Board) Next() Piece { return *b.next }

// SetNext replaces the upcoming piece with shape
func (b *Board) SetNext(shape Shape) {
	p := NewPiece(shape, b.spawn)
	b.next = &p
}

// Spawn promotes the next piece to current and places it at the spawn
// anchor. It returns false, leaving no current piece, when the spawn
// cells are already occupied.
func (b *Board) Spawn() bool {
	b.current = nil
	p := b.next
	if p == nil {
		p = b.generate()
	}
	b.next = b.generate()

	if !b.fits(*p) {
		return false
	}
	b.current = p
	b.place(*p)
	return true
}

// Move translates the current piece by (di, dj). A rejected move leaves
// the piece exactly where it was.
func (b *Board) Move(di, dj int) bool {
	if b.current == nil {
		return false
	}
	return b.transform(b.current.Moved(di, dj))
}

// Rotate advances the current piece one rotation. There is no wall kick:
// a rotation that does not fit is reverted.
func (b *Board) Rotate() bool {
	if b.current == nil {
		return false
	}
	return b.transform(b.current.Rotated())
}

func (b *Board) transform(candidate Piece) bool {
	original := *b.current
	b.remove(original)
	if !b.fits(candidate) {
		b.place(original)
		return false
	}
	*b.current = candidate
	b.place(candidate)
	return true
}

// fits reports whether p lies in bounds on empty cells.
// The current piece must be lifted off the grid before calling.
func (b *Board) fits(p Piece) bool {
	for _, c := range p.Cells() {
		if !b.grid.InBounds(c.I, c.J) || b.grid.Occupied(c.I, c.J) {
			return false
		}
	}
	return true
}

func (b *Board) place(p Piece) {
	tile := p.Tile()
	for _, c := range p.Cells() {
		b.grid.SetAt(c, tile)
	}
}

func (b *Board) remove(p Piece) {
	for _, c := range p.Cells() {
		b.grid.ClearAt(c)
	}
}

// ClearFullLines removes every full row, shifting the rows above it down
// by one, and returns how many rows were removed.
func (b *Board) ClearFullLines() int {
	cleared := 0
	for i := 0; i < b.grid.Rows(); i++ {
		if !b.grid.RowFull(i) {
			continue
		}
		cleared++
		for row := i; row > 0; row-- {
			b.grid.CopyRow(row, row-1)
		}
		b.grid.ClearRow(0)
	}
	return cleared
}

// Lock freezes the current piece into the grid and clears full lines.
// It returns the number of cleared lines, or 0 with no current piece.
func (b *Board) Lock() int {
	if b.current == nil {
		return 0
	}
	lines := b.ClearFullLines()
	b.current = nil
	return lines
}

// Reset empties the grid and drops the current piece
func (b *Board) Reset() {
	b.grid.Reset()
	b.current = nil
}
