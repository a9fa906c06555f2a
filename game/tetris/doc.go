// Package tetris implements the falling-block variant.
//
// Board owns the grid and the falling piece and provides the collision-safe
// transforms: Spawn, Move, Rotate, Lock and ClearFullLines. Every transform
// lifts the piece, validates the candidate cells and either re-places the
// candidate or restores the original, so a rejected move never changes the grid.
//
// Game is the controller. It maps LEFT, RIGHT, DOWN, UP, SPACE and TAB to
// board operations, drops the piece on a level-dependent interval measured
// by its timer, and scores soft drops, hard drops and line clears.
package tetris
