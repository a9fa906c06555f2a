package candycrush

import (
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/tmge/game/engine"
)

// PointsPerLevel is the score needed to advance one level
const PointsPerLevel = 1000

// Game is the match-three controller. Each player has a countdown clock
// that runs only during their turn.
type Game struct {
	engine.Subject
	engine.Roster

	config   *engine.GameConfig
	rules    engine.CandyCrushSettings
	board    *Board
	timer    *engine.Timer
	running  bool
	gameOver bool
	started  bool

	score      int
	level      int
	timeLeft   map[uuid.UUID]time.Duration
	lastUpdate time.Duration
	lastPasses []int
}

// New builds a match-three game from config. It satisfies engine.Factory.
func New(config *engine.GameConfig, opts ...engine.Option) (engine.Game, error) {
	return NewGame(config, opts...)
}

// NewGame builds a match-three game from config
func NewGame(config *engine.GameConfig, opts ...engine.Option) (*Game, error) {
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, err
	}
	o := engine.ApplyOptions(opts...)
	rules := config.CandyCrushRules()

	g := &Game{
		config:   config,
		rules:    rules,
		board:    NewBoard(config.Rows, config.Cols, rules.Kinds, o.Rand),
		timer:    engine.NewTimer(o.Clock),
		level:    1,
		timeLeft: make(map[uuid.UUID]time.Duration),
	}
	g.SetLimit(config.PlayerLimit())
	return g, nil
}

// Variant returns engine.VariantCandyCrush
func (g *Game) Variant() engine.Variant { return engine.VariantCandyCrush }

// Board returns the game's board
func (g *Game) Board() *Board { return g.board }

// Score returns the game score
func (g *Game) Score() int { return g.score }

// Level returns the current level
func (g *Game) Level() int { return g.level }

// IsRunning reports whether the game accepts input
func (g *Game) IsRunning() bool { return g.running }

// IsGameOver reports whether a player's clock has run out
func (g *Game) IsGameOver() bool { return g.gameOver }

// LastCascade returns the cells cleared by each pass of the most recent scoring move
func (g *Game) LastCascade() []int { return append([]int(nil), g.lastPasses...) }

// AddPlayer appends p to the turn order with a full clock
func (g *Game) AddPlayer(p *engine.Player) error {
	if err := g.Roster.AddPlayer(p); err != nil {
		return err
	}
	g.timeLeft[p.ID] = g.rules.PlayerTime()
	return nil
}

// TimeLeft returns the remaining clock of p
func (g *Game) TimeLeft(p *engine.Player) time.Duration {
	if p == nil {
		return 0
	}
	return g.timeLeft[p.ID]
}

// Start begins or resumes play. Clocks are filled on the first start only.
func (g *Game) Start() {
	if g.gameOver {
		return
	}
	if !g.started {
		for _, p := range g.Players() {
			g.timeLeft[p.ID] = g.rules.PlayerTime()
		}
		g.started = true
	}
	g.running = true
	g.timer.Start()
	g.lastUpdate = g.timer.Elapsed()
	g.NotifyObservers(g)
}

// Pause suspends play and every clock
func (g *Game) Pause() {
	if !g.running {
		return
	}
	g.running = false
	g.timer.Stop()
	g.NotifyObservers(g)
}

// Stop halts play and every clock
func (g *Game) Stop() {
	g.running = false
	g.timer.Stop()
}

// HandleInput dispatches a cell selection or an explicit turn switch. Key commands are rejected.
func (g *Game) HandleInput(in engine.Input) bool {
	if !g.running || g.gameOver {
		return false
	}

	accepted := false
	switch in.Kind {
	case engine.InputSelect:
		accepted = g.board.Select(in.Row, in.Col)
		if accepted && g.board.HasMatches() {
			g.processMatches()
		}
	case engine.InputSwitchPlayer:
		accepted = g.SwitchPlayer()
	default:
		return false
	}
	g.NotifyObservers(g)
	return accepted
}

// processMatches resolves the cascade started by a successful swap. Pass k
// (from 1) scores 10 x k per cleared cell.
func (g *Game) processMatches() {
	g.lastPasses = g.lastPasses[:0]
	points := 0
	for pass := 1; g.board.HasMatches(); pass++ {
		removed := g.board.RemoveAndSettle()
		g.lastPasses = append(g.lastPasses, removed)
		points += removed * engine.CandyTilePoints * pass
	}
	if len(g.lastPasses) == 0 {
		return
	}

	g.score += points
	g.level = 1 + g.score/PointsPerLevel
	g.Credit(points)

	if active := g.ActivePlayer(); active != nil {
		g.timeLeft[active.ID] += g.rules.MoveBonus()
	}
	if opponent := g.OpponentPlayer(); opponent != nil {
		g.timeLeft[opponent.ID] = max(time.Second, g.timeLeft[opponent.ID]-g.rules.MoveBonus())
	}

	g.SwitchPlayer()
}

// Update charges elapsed time to the active player's clock and ends the
// game when it reaches zero, awarding the opponent the timeout bonus.
func (g *Game) Update() {
	if !g.running || g.gameOver {
		return
	}

	now := g.timer.Elapsed()
	elapsed := now - g.lastUpdate
	g.lastUpdate = now

	if active := g.ActivePlayer(); active != nil {
		left := g.timeLeft[active.ID] - elapsed
		if left <= 0 {
			g.timeLeft[active.ID] = 0
			if opponent := g.OpponentPlayer(); opponent != nil {
				opponent.UpdateScore(g.rules.TimeoutBonus)
			}
			g.endGame()
		} else {
			g.timeLeft[active.ID] = left
		}
	}
	g.NotifyObservers(g)
}

func (g *Game) endGame() {
	g.gameOver = true
	g.Stop()
}

// DisplayData returns a detached snapshot of the game
func (g *Game) DisplayData() *engine.Display {
	d := engine.NewDisplay(g.Variant(), g.board.Grid(), &g.Roster, g.score, g.level, g.running, g.gameOver)
	for idx, p := range g.Players() {
		d.Players[idx].TimeLeft = engine.IntPtr(engine.Seconds(g.timeLeft[p.ID]))
	}
	if active := g.ActivePlayer(); active != nil {
		d.TimeLeft = engine.IntPtr(engine.Seconds(g.timeLeft[active.ID]))
	} else {
		d.TimeLeft = engine.IntPtr(g.rules.PlayerTimeSeconds)
	}
	if sel, ok := g.board.Selected(); ok {
		d.Selected = &sel
	}
	return d
}
