package engine

import "time"

// Variant names a registered game family
type Variant string

const (
	VariantTetris     Variant = "tetris"
	VariantCandyCrush Variant = "candycrush"

	// Validation constants
	MinBoardSize      = 4
	MaxBoardSize      = 40
	MaxPlayersLimit   = 2
	MinCandyKinds     = 3
	DefaultMaxPlayers = 2

	// Tile point values
	TetrisTilePoints = 100
	CandyTilePoints  = 10
)

// Location is a (row, column) pair. I is the row, J the column.
type Location struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Add returns the location shifted by (di, dj)
func (l Location) Add(di, dj int) Location {
	return Location{I: l.I + di, J: l.J + dj}
}

// Adjacent reports whether other is exactly one orthogonal step away
func (l Location) Adjacent(other Location) bool {
	return abs(l.I-other.I)+abs(l.J-other.J) == 1
}

// Tile is a single occupant of a grid cell. Tiles are stored by value.
type Tile struct {
	Kind   string `json:"kind"`
	Points int    `json:"points"`
}

// TetrisSettings tunes the falling-block rules
type TetrisSettings struct {
	BaseMoveDelayMs int `json:"base_move_delay_ms"`
	MinMoveDelayMs  int `json:"min_move_delay_ms"`
	MoveDelayStepMs int `json:"move_delay_step_ms"`
	SpawnColumn     int `json:"spawn_column"`
	LinesPerLevel   int `json:"lines_per_level"`
	HardDropPerCell int `json:"hard_drop_per_cell"`
	SoftDropPerCell int `json:"soft_drop_per_cell"`
}

// CandyCrushSettings tunes the match-three rules
type CandyCrushSettings struct {
	Kinds             []string `json:"kinds"`
	PlayerTimeSeconds int      `json:"player_time_seconds"`
	MoveBonusSeconds  int      `json:"move_bonus_seconds"`
	TimeoutBonus      int      `json:"timeout_bonus"`
}

// GameConfig represents a game configuration loaded from JSON
type GameConfig struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Variant     Variant             `json:"variant"`
	Rows        int                 `json:"rows"`
	Cols        int                 `json:"cols"`
	MaxPlayers  int                 `json:"max_players"`
	Tetris      *TetrisSettings     `json:"tetris,omitempty"`
	CandyCrush  *CandyCrushSettings `json:"candycrush,omitempty"`
}

// DefaultCandyKinds are the six candy types used when a config names none
var DefaultCandyKinds = []string{"Red", "Orange", "Yellow", "Green", "Blue", "Purple"}

// DefaultTetrisSettings returns the classic falling-block tuning
func DefaultTetrisSettings() TetrisSettings {
	return TetrisSettings{
		BaseMoveDelayMs: 1000,
		MinMoveDelayMs:  100,
		MoveDelayStepMs: 50,
		SpawnColumn:     3,
		LinesPerLevel:   10,
		HardDropPerCell: 2,
		SoftDropPerCell: 1,
	}
}

// DefaultCandyCrushSettings returns the classic match-three tuning
func DefaultCandyCrushSettings() CandyCrushSettings {
	kinds := make([]string, len(DefaultCandyKinds))
	copy(kinds, DefaultCandyKinds)
	return CandyCrushSettings{
		Kinds:             kinds,
		PlayerTimeSeconds: 60,
		MoveBonusSeconds:  1,
		TimeoutBonus:      500,
	}
}

// TetrisRules returns the config's falling-block settings with zero fields
// defaulted. The default spawn column moves left on wells narrower than
// seven columns so the widest piece still fits.
func (c *GameConfig) TetrisRules() TetrisSettings {
	s := DefaultTetrisSettings()
	if c == nil {
		return s
	}
	if c.Cols > 0 {
		s.SpawnColumn = max(0, min(s.SpawnColumn, c.Cols-4))
	}
	if c.Tetris == nil {
		return s
	}
	t := c.Tetris
	if t.BaseMoveDelayMs > 0 {
		s.BaseMoveDelayMs = t.BaseMoveDelayMs
	}
	if t.MinMoveDelayMs > 0 {
		s.MinMoveDelayMs = t.MinMoveDelayMs
	}
	if t.MoveDelayStepMs > 0 {
		s.MoveDelayStepMs = t.MoveDelayStepMs
	}
	if t.SpawnColumn > 0 {
		s.SpawnColumn = t.SpawnColumn
	}
	if t.LinesPerLevel > 0 {
		s.LinesPerLevel = t.LinesPerLevel
	}
	if t.HardDropPerCell > 0 {
		s.HardDropPerCell = t.HardDropPerCell
	}
	if t.SoftDropPerCell > 0 {
		s.SoftDropPerCell = t.SoftDropPerCell
	}
	return s
}

// CandyCrushRules returns the config's match-three settings with zero fields defaulted
func (c *GameConfig) CandyCrushRules() CandyCrushSettings {
	s := DefaultCandyCrushSettings()
	if c == nil || c.CandyCrush == nil {
		return s
	}
	cc := c.CandyCrush
	if len(cc.Kinds) > 0 {
		s.Kinds = append([]string(nil), cc.Kinds...)
	}
	if cc.PlayerTimeSeconds > 0 {
		s.PlayerTimeSeconds = cc.PlayerTimeSeconds
	}
	if cc.MoveBonusSeconds > 0 {
		s.MoveBonusSeconds = cc.MoveBonusSeconds
	}
	if cc.TimeoutBonus > 0 {
		s.TimeoutBonus = cc.TimeoutBonus
	}
	return s
}

// PlayerLimit returns the maximum roster size for the config
func (c *GameConfig) PlayerLimit() int {
	if c == nil || c.MaxPlayers <= 0 {
		return DefaultMaxPlayers
	}
	return c.MaxPlayers
}

// PlayerTime returns the starting clock for each match-three player
func (s CandyCrushSettings) PlayerTime() time.Duration {
	return time.Duration(s.PlayerTimeSeconds) * time.Second
}

// MoveBonus returns the time granted to the mover after a scoring swap
func (s CandyCrushSettings) MoveBonus() time.Duration {
	return time.Duration(s.MoveBonusSeconds) * time.Second
}
