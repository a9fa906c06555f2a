package service

import (
	"time"

	"github.com/wricardo/tmge/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigID       string             `json:"config_id"`
	Variant        engine.Variant     `json:"variant"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Display        *engine.Display    `json:"display"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CreateSessionRequest describes a new session
type CreateSessionRequest struct {
	ConfigID  string   `json:"config_id"`
	Players   []string `json:"players,omitempty"`
	AutoStart bool     `json:"auto_start,omitempty"`
}

// InputRequest is the wire form of an engine input command.
// Exactly one of Key, Row/Col or Action must be set.
type InputRequest struct {
	Key    string `json:"key,omitempty"`
	Row    *int   `json:"row,omitempty"`
	Col    *int   `json:"col,omitempty"`
	Action string `json:"action,omitempty"`
}

// ActionSwitchPlayer is the InputRequest action that passes the turn
const ActionSwitchPlayer = "switch_player"

// InputResult contains the result of a single input
type InputResult struct {
	Accepted bool            `json:"accepted"`
	Input    string          `json:"input"`
	Display  *engine.Display `json:"display"`
	Events   []GameEvent     `json:"events,omitempty"`
}

// ControlAction is a lifecycle command for a session
type ControlAction string

const (
	ControlStart ControlAction = "start"
	ControlPause ControlAction = "pause"
	ControlStop  ControlAction = "stop"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "score", "level_up", "lines", "turn", "game_over"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Player    string    `json:"player,omitempty"`
	Value     int       `json:"value,omitempty"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Variant     string `json:"variant"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	MaxPlayers  int    `json:"max_players"`
}

// LeaderboardEntry is one final score
type LeaderboardEntry struct {
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	SessionID string    `json:"session_id"`
	Variant   string    `json:"variant"`
	At        time.Time `json:"at"`
}
