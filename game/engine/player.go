package engine

import (
	"errors"

	"github.com/google/uuid"
)

// ErrTooManyPlayers is returned when a roster is already at its limit
var ErrTooManyPlayers = errors.New("too many players")

// Player is a named participant with a running score
type Player struct {
	ID    uuid.UUID
	name  string
	score int
}

// NewPlayer creates a player with a fresh ID and a zero score
func NewPlayer(name string) *Player {
	return &Player{ID: uuid.New(), name: name}
}

// Name returns the player's display name
func (p *Player) Name() string { return p.name }

// SetName changes the player's display name
func (p *Player) SetName(name string) { p.name = name }

// Score returns the player's score
func (p *Player) Score() int { return p.score }

// UpdateScore adds delta to the player's score
func (p *Player) UpdateScore(delta int) {
	p.score += delta
}

// Roster holds the ordered players of a game and whose turn it is.
// The zero value is an empty roster with no limit.
type Roster struct {
	players []*Player
	active  int
	limit   int
}

// SetLimit caps the number of players; zero or less means no cap
func (r *Roster) SetLimit(n int) { r.limit = n }

// AddPlayer appends p to the turn order
func (r *Roster) AddPlayer(p *Player) error {
	if p == nil {
		return errors.New("player cannot be nil")
	}
	if r.limit > 0 && len(r.players) >= r.limit {
		return ErrTooManyPlayers
	}
	r.players = append(r.players, p)
	return nil
}

// Players returns the players in turn order
func (r *Roster) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// PlayerCount returns the number of players
func (r *Roster) PlayerCount() int { return len(r.players) }

// ActiveIndex returns the index of the player whose turn it is
func (r *Roster) ActiveIndex() int { return r.active }

// ActivePlayer returns the player whose turn it is, or nil when empty
func (r *Roster) ActivePlayer() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[r.active]
}

// OpponentPlayer returns the next player in turn order, or nil with fewer than two players
func (r *Roster) OpponentPlayer() *Player {
	if len(r.players) < 2 {
		return nil
	}
	return r.players[(r.active+1)%len(r.players)]
}

// SwitchPlayer advances the turn round-robin. It is a no-op with fewer than two players.
func (r *Roster) SwitchPlayer() bool {
	if len(r.players) < 2 {
		return false
	}
	r.active = (r.active + 1) % len(r.players)
	return true
}

// Credit adds points to the active player, if any
func (r *Roster) Credit(points int) {
	if p := r.ActivePlayer(); p != nil {
		p.UpdateScore(points)
	}
}
