package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/tmge/game/engine"
)

type countingObserver struct {
	calls int
	last  *engine.Display
}

func (o *countingObserver) OnUpdate(g engine.Game) {
	o.calls++
	o.last = g.DisplayData()
}

func createTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Tetris Test",
		Description: "Falling blocks for tests",
		Variant:     engine.VariantTetris,
		Rows:        20,
		Cols:        10,
	}
}

func newTestGame(t *testing.T) (*Game, *engine.ManualClock) {
	t.Helper()
	clock := engine.NewManualClock(time.Unix(0, 0))
	g, err := NewGame(createTestConfig(), engine.WithClock(clock), engine.WithSeed(42))
	require.NoError(t, err)
	return g, clock
}

// dropToFloor moves the current piece down without scoring
func dropToFloor(g *Game) {
	for g.board.Move(1, 0) {
	}
}

func TestNewGame(t *testing.T) {
	g, _ := newTestGame(t)
	assert.Equal(t, engine.VariantTetris, g.Variant())
	assert.Equal(t, 0, g.Score())
	assert.Equal(t, 1, g.Level())
	assert.Equal(t, 0, g.Lines())
	assert.Equal(t, time.Second, g.MoveDelay())
	assert.False(t, g.IsRunning())
	assert.False(t, g.IsGameOver())

	_, err := NewGame(&engine.GameConfig{Name: "bad"})
	assert.Error(t, err)
}

func TestStartSpawnsPiece(t *testing.T) {
	g, _ := newTestGame(t)
	obs := &countingObserver{}
	g.RegisterObserver(obs)

	g.Start()
	assert.True(t, g.IsRunning())
	_, ok := g.board.Current()
	assert.True(t, ok)
	assert.Equal(t, 1, obs.calls)
	require.NotNil(t, obs.last.CurrentPiece)
	require.NotNil(t, obs.last.NextPiece)
}

func TestNarrowWellSpawnsInside(t *testing.T) {
	config := createTestConfig()
	config.Rows, config.Cols = 8, 4

	g, err := NewGame(config, engine.WithClock(engine.NewManualClock(time.Unix(0, 0))), engine.WithSeed(3))
	require.NoError(t, err)
	g.Start()

	require.True(t, g.IsRunning())
	piece := g.DisplayData().CurrentPiece
	require.NotNil(t, piece)
	for _, c := range piece.Cells {
		assert.GreaterOrEqual(t, c.J, 0)
		assert.Less(t, c.J, 4)
	}
}

func TestInputIgnoredWhenNotRunning(t *testing.T) {
	g, _ := newTestGame(t)
	obs := &countingObserver{}
	g.RegisterObserver(obs)

	assert.False(t, g.HandleInput(engine.KeyInput(engine.KeyLeft)))
	assert.Equal(t, 0, obs.calls)

	g.Start()
	g.Pause()
	calls := obs.calls
	assert.False(t, g.HandleInput(engine.KeyInput(engine.KeyDown)))
	assert.Equal(t, calls, obs.calls)
	assert.Equal(t, 0, g.Score())
}

func TestSelectInputRejected(t *testing.T) {
	g, _ := newTestGame(t)
	g.Start()
	assert.False(t, g.HandleInput(engine.SelectInput(0, 0)))
}

func TestSoftDropScoring(t *testing.T) {
	g, _ := newTestGame(t)
	require.NoError(t, g.AddPlayer(engine.NewPlayer("alice")))
	g.Start()

	obs := &countingObserver{}
	g.RegisterObserver(obs)

	assert.True(t, g.HandleInput(engine.KeyInput(engine.KeyDown)))
	assert.Equal(t, 1, g.Score())
	assert.Equal(t, 1, g.ActivePlayer().Score())
	assert.Equal(t, 1, obs.calls, "one notification per input")

	dropToFloor(g)
	assert.False(t, g.HandleInput(engine.KeyInput(engine.KeyDown)), "blocked soft drop scores nothing")
	assert.Equal(t, 1, g.Score())
	assert.Equal(t, 2, obs.calls)
}

func TestHardDropScoring(t *testing.T) {
	g, _ := newTestGame(t)
	g.board.SetNext(ShapeO)
	g.Start()
	g.board.SetNext(ShapeT)

	// O spawns on rows 0-1 and falls 18 rows on a 20-row board
	assert.True(t, g.HandleInput(engine.KeyInput(engine.KeySpace)))
	assert.Equal(t, 36, g.Score())

	p, ok := g.board.Current()
	require.True(t, ok, "next piece spawns after the lock")
	assert.Equal(t, ShapeT, p.Shape)
	assert.True(t, g.board.Grid().Occupied(19, 3))
	assert.True(t, g.board.Grid().Occupied(18, 4))
}

func TestLineClearScoring(t *testing.T) {
	t.Run("two lines at level one", func(t *testing.T) {
		g, _ := newTestGame(t)
		require.NoError(t, g.AddPlayer(engine.NewPlayer("alice")))
		g.board.SetNext(ShapeO)
		g.Start()
		fillRow(g.board.Grid(), 18, 3, 4)
		fillRow(g.board.Grid(), 19, 3, 4)
		dropToFloor(g)

		g.processLock()
		assert.Equal(t, 300, g.Score())
		assert.Equal(t, 300, g.ActivePlayer().Score())
		assert.Equal(t, 2, g.Lines())
		assert.Equal(t, 1, g.Level())
	})

	t.Run("four lines at level two", func(t *testing.T) {
		g, _ := newTestGame(t)
		g.board.SetNext(ShapeI)
		g.Start()
		g.level = 2
		g.lines = 10
		for row := 16; row < 20; row++ {
			fillRow(g.board.Grid(), row, 3)
		}
		dropToFloor(g)

		g.processLock()
		assert.Equal(t, 1600, g.Score(), "scored at the level before the clear")
		assert.Equal(t, 14, g.Lines())
		assert.Equal(t, 2, g.Level())
	})

	t.Run("level advances every ten lines", func(t *testing.T) {
		g, _ := newTestGame(t)
		g.board.SetNext(ShapeI)
		g.Start()
		g.lines = 8
		for row := 16; row < 20; row++ {
			fillRow(g.board.Grid(), row, 3)
		}
		dropToFloor(g)

		g.processLock()
		assert.Equal(t, 800, g.Score())
		assert.Equal(t, 12, g.Lines())
		assert.Equal(t, 2, g.Level())
		assert.Equal(t, 950*time.Millisecond, g.MoveDelay())
	})
}

func TestMoveDelayFloor(t *testing.T) {
	g, _ := newTestGame(t)
	assert.Equal(t, time.Second, g.delayFor(1))
	assert.Equal(t, 550*time.Millisecond, g.delayFor(10))
	assert.Equal(t, 100*time.Millisecond, g.delayFor(19))
	assert.Equal(t, 100*time.Millisecond, g.delayFor(50))
}

func TestUpdateAutoDrop(t *testing.T) {
	g, clock := newTestGame(t)
	g.Start()
	obs := &countingObserver{}
	g.RegisterObserver(obs)
	start, _ := g.board.Current()

	clock.Advance(500 * time.Millisecond)
	g.Update()
	p, _ := g.board.Current()
	assert.Equal(t, start.Anchor, p.Anchor, "no drop before move delay")
	assert.Equal(t, 1, obs.calls)

	clock.Advance(500 * time.Millisecond)
	g.Update()
	p, _ = g.board.Current()
	assert.Equal(t, start.Anchor.I+1, p.Anchor.I)
	assert.Equal(t, 2, obs.calls)
	assert.Equal(t, 0, g.Score(), "gravity does not score")
}

func TestUpdateLocksAtFloor(t *testing.T) {
	g, clock := newTestGame(t)
	g.board.SetNext(ShapeO)
	g.Start()
	g.board.SetNext(ShapeS)
	dropToFloor(g)

	clock.Advance(time.Second)
	g.Update()
	p, ok := g.board.Current()
	require.True(t, ok)
	assert.Equal(t, ShapeS, p.Shape)
	assert.True(t, g.board.Grid().Occupied(19, 3))
}

func TestPausedTimerDoesNotDrop(t *testing.T) {
	g, clock := newTestGame(t)
	g.Start()
	start, _ := g.board.Current()

	g.Pause()
	clock.Advance(10 * time.Second)
	g.Update()
	g.Start()
	g.Update()

	p, _ := g.board.Current()
	assert.Equal(t, start.Anchor, p.Anchor)
}

func TestGameOverOnBlockedSpawn(t *testing.T) {
	g, _ := newTestGame(t)
	g.board.SetNext(ShapeO)
	g.Start()
	obs := &countingObserver{}
	g.RegisterObserver(obs)

	// Stack blocks under the spawn area so the next piece cannot appear
	for row := 2; row < 20; row++ {
		g.board.Grid().Set(row, 3, engine.Tile{Kind: "gray"})
	}
	g.board.SetNext(ShapeO)

	assert.True(t, g.HandleInput(engine.KeyInput(engine.KeySpace)))
	assert.True(t, g.IsGameOver())
	assert.False(t, g.IsRunning())
	assert.Equal(t, 1, obs.calls)
	assert.True(t, obs.last.GameOver)

	assert.False(t, g.HandleInput(engine.KeyInput(engine.KeyLeft)), "input ignored after game over")
	g.Update()
	assert.Equal(t, 1, obs.calls, "update does nothing after game over")

	g.Start()
	assert.False(t, g.IsRunning(), "a finished game cannot be restarted")
}

func TestTabSwitchesPlayer(t *testing.T) {
	g, _ := newTestGame(t)
	alice := engine.NewPlayer("alice")
	bob := engine.NewPlayer("bob")
	require.NoError(t, g.AddPlayer(alice))
	require.NoError(t, g.AddPlayer(bob))
	assert.ErrorIs(t, g.AddPlayer(engine.NewPlayer("carol")), engine.ErrTooManyPlayers)
	g.Start()

	assert.True(t, g.HandleInput(engine.KeyInput(engine.KeyTab)))
	assert.Same(t, bob, g.ActivePlayer())
	assert.True(t, g.HandleInput(engine.SwitchPlayerInput()))
	assert.Same(t, alice, g.ActivePlayer())

	g.HandleInput(engine.KeyInput(engine.KeyDown))
	g.HandleInput(engine.KeyInput(engine.KeyTab))
	g.HandleInput(engine.KeyInput(engine.KeyDown))
	g.HandleInput(engine.KeyInput(engine.KeyDown))
	assert.Equal(t, 1, alice.Score())
	assert.Equal(t, 2, bob.Score())
	assert.Equal(t, 3, g.Score())
}

func TestDisplayData(t *testing.T) {
	g, _ := newTestGame(t)
	require.NoError(t, g.AddPlayer(engine.NewPlayer("alice")))
	g.Start()

	d := g.DisplayData()
	assert.Equal(t, engine.VariantTetris, d.Variant)
	assert.Equal(t, 20, d.Board.Rows)
	assert.Equal(t, 10, d.Board.Cols)
	require.NotNil(t, d.Lines)
	assert.Equal(t, 0, *d.Lines)
	assert.Nil(t, d.TimeLeft)
	require.NotNil(t, d.CurrentPiece)
	assert.Len(t, d.CurrentPiece.Cells, 4)
	require.Len(t, d.Players, 1)
	assert.True(t, d.Players[0].IsActive)

	before := g.board.Grid().Clone()
	d.Board.Cells[0][3] = nil
	assert.True(t, before.Equal(g.board.Grid()), "display must not alias the grid")
}

func TestFactory(t *testing.T) {
	registry := engine.NewRegistry()
	require.NoError(t, registry.Register(engine.VariantTetris, New))

	game, err := registry.New(createTestConfig(), engine.WithSeed(1))
	require.NoError(t, err)
	_, ok := game.(*Game)
	assert.True(t, ok)
}
