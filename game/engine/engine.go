package engine

import (
	"math/rand/v2"
	"strings"
	"time"
)

// Game provides the capability set shared by every game controller
type Game interface {
	// Lifecycle
	Start()
	Pause()
	Stop()
	Update()
	IsRunning() bool
	IsGameOver() bool

	// Input handling. Returns whether the input was accepted.
	HandleInput(in Input) bool

	// Players and turns
	AddPlayer(p *Player) error
	Players() []*Player
	ActivePlayer() *Player
	OpponentPlayer() *Player
	SwitchPlayer() bool

	// Scoring
	Score() int
	Level() int

	// Observers and rendering
	RegisterObserver(o Observer)
	RemoveObserver(o Observer)
	DisplayData() *Display

	Variant() Variant
}

// InputKind discriminates Input commands
type InputKind int

const (
	InputKey InputKind = iota + 1
	InputSelect
	InputSwitchPlayer
)

// String returns the wire name of the input kind
func (k InputKind) String() string {
	switch k {
	case InputKey:
		return "key"
	case InputSelect:
		return "select"
	case InputSwitchPlayer:
		return "switch_player"
	default:
		return "unknown"
	}
}

// Key is an abstract key name delivered by the input layer
type Key string

const (
	KeyLeft  Key = "LEFT"
	KeyRight Key = "RIGHT"
	KeyDown  Key = "DOWN"
	KeyUp    Key = "UP"
	KeySpace Key = "SPACE"
	KeyTab   Key = "TAB"
)

// Input is a single command delivered to a game
type Input struct {
	Kind InputKind
	Key  Key
	Row  int
	Col  int
}

// KeyInput creates a key press command
func KeyInput(k Key) Input {
	return Input{Kind: InputKey, Key: k}
}

// SelectInput creates a cell selection command
func SelectInput(row, col int) Input {
	return Input{Kind: InputSelect, Row: row, Col: col}
}

// SwitchPlayerInput creates an explicit turn switch command
func SwitchPlayerInput() Input {
	return Input{Kind: InputSwitchPlayer}
}

// ParseKey normalizes a key name, reporting whether it is known
func ParseKey(s string) (Key, bool) {
	switch k := Key(strings.ToUpper(strings.TrimSpace(s))); k {
	case KeyLeft, KeyRight, KeyDown, KeyUp, KeySpace, KeyTab:
		return k, true
	}
	return "", false
}

// BoardView is the rendered grid
type BoardView struct {
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Cells [][]*Tile `json:"cells"`
}

// PieceView describes a falling piece
type PieceView struct {
	Shape    string     `json:"shape"`
	Kind     string     `json:"kind"`
	Rotation int        `json:"rotation"`
	Cells    []Location `json:"cells"`
}

// PlayerView is the rendered state of one player
type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	IsActive bool   `json:"is_active"`
	TimeLeft *int   `json:"time_left,omitempty"`
}

// Display is a self-contained snapshot for renderers. It shares no memory with the game.
type Display struct {
	Variant      Variant      `json:"variant"`
	Board        BoardView    `json:"board"`
	Score        int          `json:"score"`
	Level        int          `json:"level"`
	Lines        *int         `json:"lines,omitempty"`
	TimeLeft     *int         `json:"time_left,omitempty"`
	NextPiece    *PieceView   `json:"next_piece,omitempty"`
	CurrentPiece *PieceView   `json:"current_piece,omitempty"`
	Selected     *Location    `json:"selected,omitempty"`
	Running      bool         `json:"running"`
	GameOver     bool         `json:"game_over"`
	Players      []PlayerView `json:"players"`
}

// NewDisplay fills the fields common to every variant
func NewDisplay(v Variant, grid *Grid, roster *Roster, score, level int, running, gameOver bool) *Display {
	d := &Display{
		Variant:  v,
		Board:    BoardView{Rows: grid.Rows(), Cols: grid.Cols(), Cells: grid.Snapshot()},
		Score:    score,
		Level:    level,
		Running:  running,
		GameOver: gameOver,
		Players:  []PlayerView{},
	}
	active := roster.ActivePlayer()
	for _, p := range roster.players {
		d.Players = append(d.Players, PlayerView{
			ID:       p.ID.String(),
			Name:     p.Name(),
			Score:    p.Score(),
			IsActive: p == active,
		})
	}
	return d
}

// IntPtr returns a pointer to a copy of v
func IntPtr(v int) *int { return &v }

// Options carries the injectable collaborators of a game
type Options struct {
	Clock Clock
	Rand  *rand.Rand
}

// Option configures Options
type Option func(*Options)

// WithClock sets the clock the game timer reads
func WithClock(c Clock) Option {
	return func(o *Options) { o.Clock = c }
}

// WithRand sets the random source for piece and tile generation
func WithRand(r *rand.Rand) Option {
	return func(o *Options) { o.Rand = r }
}

// WithSeed seeds a deterministic random source
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// ApplyOptions resolves opts over the defaults (system clock, time-seeded source)
func ApplyOptions(opts ...Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		o.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return o
}

// Factory builds a game from a validated configuration
type Factory func(config *GameConfig, opts ...Option) (Game, error)
