package tetris

import (
	"time"

	"github.com/wricardo/tmge/game/engine"
)

// lineScores is indexed by lines cleared in one lock, capped at four
var lineScores = [...]int{0, 100, 300, 500, 800}

// Game is the falling-block controller
type Game struct {
	engine.Subject
	engine.Roster

	config   *engine.GameConfig
	rules    engine.TetrisSettings
	board    *Board
	timer    *engine.Timer
	running  bool
	gameOver bool

	score     int
	level     int
	lines     int
	moveDelay time.Duration
	lastDrop  time.Duration
}

// New builds a falling-block game from config. It satisfies engine.Factory.
func New(config *engine.GameConfig, opts ...engine.Option) (engine.Game, error) {
	return NewGame(config, opts...)
}

// NewGame builds a falling-block game from config
func NewGame(config *engine.GameConfig, opts ...engine.Option) (*Game, error) {
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, err
	}
	o := engine.ApplyOptions(opts...)
	rules := config.TetrisRules()

	g := &Game{
		config: config,
		rules:  rules,
		board:  NewBoard(config.Rows, config.Cols, rules.SpawnColumn, o.Rand),
		timer:  engine.NewTimer(o.Clock),
		level:  1,
	}
	g.SetLimit(config.PlayerLimit())
	g.moveDelay = g.delayFor(g.level)
	return g, nil
}

// Variant returns engine.VariantTetris
func (g *Game) Variant() engine.Variant { return engine.VariantTetris }

// Board returns the game's board
func (g *Game) Board() *Board { return g.board }

// Score returns the game score
func (g *Game) Score() int { return g.score }

// Level returns the current level
func (g *Game) Level() int { return g.level }

// Lines returns the total lines cleared
func (g *Game) Lines() int { return g.lines }

// MoveDelay returns the current auto-drop interval
func (g *Game) MoveDelay() time.Duration { return g.moveDelay }

// IsRunning reports whether the game accepts input
func (g *Game) IsRunning() bool { return g.running }

// IsGameOver reports whether a spawn has failed
func (g *Game) IsGameOver() bool { return g.gameOver }

// Start begins or resumes play, spawning the first piece if needed
func (g *Game) Start() {
	if g.gameOver {
		return
	}
	g.running = true
	g.timer.Start()
	g.lastDrop = g.timer.Elapsed()

	if _, ok := g.board.Current(); !ok {
		if !g.board.Spawn() {
			// A fresh match must always be able to place its first piece
			g.board.Reset()
			g.board.Spawn()
		}
	}
	g.NotifyObservers(g)
}

// Pause suspends play and the timer
func (g *Game) Pause() {
	if !g.running {
		return
	}
	g.running = false
	g.timer.Stop()
	g.NotifyObservers(g)
}

// Stop halts play and the timer
func (g *Game) Stop() {
	g.running = false
	g.timer.Stop()
}

// HandleInput dispatches a key or switch command. Select commands are rejected.
func (g *Game) HandleInput(in engine.Input) bool {
	if !g.running || g.gameOver {
		return false
	}

	accepted := false
	switch in.Kind {
	case engine.InputKey:
		accepted = g.handleKey(in.Key)
	case engine.InputSwitchPlayer:
		accepted = g.SwitchPlayer()
	default:
		return false
	}
	g.NotifyObservers(g)
	return accepted
}

func (g *Game) handleKey(key engine.Key) bool {
	switch key {
	case engine.KeyLeft:
		return g.board.Move(0, -1)
	case engine.KeyRight:
		return g.board.Move(0, 1)
	case engine.KeyDown:
		if g.board.Move(1, 0) {
			g.award(g.rules.SoftDropPerCell)
			return true
		}
		return false
	case engine.KeyUp:
		return g.board.Rotate()
	case engine.KeySpace:
		if _, ok := g.board.Current(); !ok {
			return false
		}
		for g.board.Move(1, 0) {
			g.award(g.rules.HardDropPerCell)
		}
		g.processLock()
		return true
	case engine.KeyTab:
		return g.SwitchPlayer()
	default:
		return false
	}
}

// Update applies gravity once move_delay has elapsed since the last drop
func (g *Game) Update() {
	if !g.running || g.gameOver {
		return
	}

	if _, ok := g.board.Current(); !ok {
		if !g.board.Spawn() {
			g.endGame()
			g.NotifyObservers(g)
			return
		}
	}

	now := g.timer.Elapsed()
	if now-g.lastDrop >= g.moveDelay {
		if !g.board.Move(1, 0) {
			g.processLock()
		}
		g.lastDrop = now
	}
	g.NotifyObservers(g)
}

// processLock locks the current piece, scores cleared lines and spawns the next piece
func (g *Game) processLock() {
	lines := g.board.Lock()
	if lines > 0 {
		// Scored at the level in effect before this clear
		g.award(lineScores[min(lines, 4)] * g.level)
		g.lines += lines
		g.level = g.lines/g.rules.LinesPerLevel + 1
		g.moveDelay = g.delayFor(g.level)
	}

	if !g.board.Spawn() {
		g.endGame()
	}
}

func (g *Game) award(points int) {
	g.score += points
	g.Credit(points)
}

func (g *Game) delayFor(level int) time.Duration {
	base := time.Duration(g.rules.BaseMoveDelayMs) * time.Millisecond
	step := time.Duration(g.rules.MoveDelayStepMs) * time.Millisecond
	floor := time.Duration(g.rules.MinMoveDelayMs) * time.Millisecond
	return max(floor, base-time.Duration(level-1)*step)
}

func (g *Game) endGame() {
	g.gameOver = true
	g.Stop()
}

// DisplayData returns a detached snapshot of the game
func (g *Game) DisplayData() *engine.Display {
	d := engine.NewDisplay(g.Variant(), g.board.Grid(), &g.Roster, g.score, g.level, g.running, g.gameOver)
	d.Lines = engine.IntPtr(g.lines)
	d.NextPiece = g.board.Next().View()
	if p, ok := g.board.Current(); ok {
		d.CurrentPiece = p.View()
	}
	return d
}
