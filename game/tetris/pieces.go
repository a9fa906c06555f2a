package tetris

import (
	"math/rand/v2"

	"github.com/wricardo/tmge/game/engine"
)

// Shape names one of the seven tetrominoes
type Shape string

const (
	ShapeI Shape = "I"
	ShapeJ Shape = "J"
	ShapeL Shape = "L"
	ShapeO Shape = "O"
	ShapeS Shape = "S"
	ShapeT Shape = "T"
	ShapeZ Shape = "Z"
)

// Shapes lists every tetromino in catalog order
var Shapes = []Shape{ShapeI, ShapeJ, ShapeL, ShapeO, ShapeS, ShapeT, ShapeZ}

// offset is an (x, y) cell of a rotation: x is the column delta, y the row delta
type offset struct{ x, y int }

// rotations holds every rotation of every shape as (x, y) offsets from the anchor
var rotations = map[Shape][][4]offset{
	ShapeI: {
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	},
	ShapeJ: {
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
		{{0, 0}, {0, 1}, {1, 0}, {2, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 0}, {2, 1}},
	},
	ShapeL: {
		{{0, 2}, {1, 0}, {1, 1}, {1, 2}},
		{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 0}},
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
	},
	ShapeO: {
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	},
	ShapeS: {
		{{0, 1}, {0, 2}, {1, 0}, {1, 1}},
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
	},
	ShapeT: {
		{{0, 1}, {1, 0}, {1, 1}, {1, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {2, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 1}},
		{{0, 1}, {1, 0}, {1, 1}, {2, 1}},
	},
	ShapeZ: {
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 0}, {1, 1}, {2, 0}},
	},
}

var colors = map[Shape]string{
	ShapeI: "cyan",
	ShapeJ: "blue",
	ShapeL: "orange",
	ShapeO: "yellow",
	ShapeS: "green",
	ShapeT: "purple",
	ShapeZ: "red",
}

// Color returns the tile color of the shape
func (s Shape) Color() string { return colors[s] }

// RotationCount returns how many distinct rotations the shape has
func (s Shape) RotationCount() int { return len(rotations[s]) }

// RandomShape picks a shape uniformly
func RandomShape(rng *rand.Rand) Shape {
	return Shapes[rng.IntN(len(Shapes))]
}

// Piece is a tetromino transform. Its cells are derived from the shape
// table, so a piece value never holds stale coordinates.
type Piece struct {
	Shape    Shape
	Rotation int
	Anchor   engine.Location
}

// NewPiece creates a piece in its first rotation at anchor
func NewPiece(shape Shape, anchor engine.Location) Piece {
	return Piece{Shape: shape, Anchor: anchor}
}

// Cells returns the four grid locations the piece covers
func (p Piece) Cells() [4]engine.Location {
	var out [4]engine.Location
	for idx, o := range rotations[p.Shape][p.Rotation] {
		out[idx] = engine.Location{I: o.y + p.Anchor.I, J: o.x + p.Anchor.J}
	}
	return out
}

// Moved returns the piece translated by (di, dj)
func (p Piece) Moved(di, dj int) Piece {
	p.Anchor = p.Anchor.Add(di, dj)
	return p
}

// Rotated returns the piece advanced to its next rotation
func (p Piece) Rotated() Piece {
	p.Rotation = (p.Rotation + 1) % p.Shape.RotationCount()
	return p
}

// Tile returns the grid tile the piece paints
func (p Piece) Tile() engine.Tile {
	return engine.Tile{Kind: p.Shape.Color(), Points: engine.TetrisTilePoints}
}

// View renders the piece for a display snapshot
func (p Piece) View() *engine.PieceView {
	cells := p.Cells()
	return &engine.PieceView{
		Shape:    string(p.Shape),
		Kind:     p.Shape.Color(),
		Rotation: p.Rotation,
		Cells:    cells[:],
	}
}
