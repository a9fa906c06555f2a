package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGame is a minimal Game used to exercise the shared pieces
type stubGame struct {
	Subject
	Roster
	grid    *Grid
	running bool
	config  *GameConfig
}

func newStubGame(config *GameConfig, opts ...Option) (Game, error) {
	return &stubGame{grid: NewGrid(config.Rows, config.Cols), config: config}, nil
}

func (g *stubGame) Start()                 { g.running = true }
func (g *stubGame) Pause()                 { g.running = false }
func (g *stubGame) Stop()                  { g.running = false }
func (g *stubGame) Update()                { g.NotifyObservers(g) }
func (g *stubGame) IsRunning() bool        { return g.running }
func (g *stubGame) IsGameOver() bool       { return false }
func (g *stubGame) HandleInput(Input) bool { return false }
func (g *stubGame) Score() int             { return 0 }
func (g *stubGame) Level() int             { return 1 }
func (g *stubGame) Variant() Variant       { return g.config.Variant }
func (g *stubGame) DisplayData() *Display {
	return NewDisplay(g.Variant(), g.grid, &g.Roster, 0, 1, g.running, false)
}

type recordingObserver struct {
	name  string
	calls *[]string
}

func (o *recordingObserver) OnUpdate(g Game) {
	*o.calls = append(*o.calls, o.name)
}

func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:        "Engine Test Config",
		Description: "Configuration for engine tests",
		Variant:     VariantTetris,
		Rows:        20,
		Cols:        10,
	}
}

func TestPlayerScore(t *testing.T) {
	p := NewPlayer("alice")
	assert.Equal(t, "alice", p.Name())
	assert.Equal(t, 0, p.Score())
	assert.NotEqual(t, NewPlayer("alice").ID, p.ID, "players get distinct ids")

	p.UpdateScore(30)
	p.UpdateScore(-5)
	assert.Equal(t, 25, p.Score())

	p.SetName("bob")
	assert.Equal(t, "bob", p.Name())
}

func TestRosterTurns(t *testing.T) {
	var r Roster
	assert.Nil(t, r.ActivePlayer())
	assert.Nil(t, r.OpponentPlayer())
	assert.False(t, r.SwitchPlayer())

	alice := NewPlayer("alice")
	require.NoError(t, r.AddPlayer(alice))
	assert.Same(t, alice, r.ActivePlayer())
	assert.Nil(t, r.OpponentPlayer(), "single player has no opponent")
	assert.False(t, r.SwitchPlayer(), "switching with one player is a no-op")
	assert.Same(t, alice, r.ActivePlayer())

	bob := NewPlayer("bob")
	require.NoError(t, r.AddPlayer(bob))
	assert.Same(t, bob, r.OpponentPlayer())

	assert.True(t, r.SwitchPlayer())
	assert.Same(t, bob, r.ActivePlayer())
	assert.Same(t, alice, r.OpponentPlayer())

	assert.True(t, r.SwitchPlayer())
	assert.Same(t, alice, r.ActivePlayer(), "two switches return to the first player")

	r.Credit(40)
	assert.Equal(t, 40, alice.Score())
	assert.Equal(t, 0, bob.Score())
}

func TestRosterLimit(t *testing.T) {
	var r Roster
	r.SetLimit(2)
	require.NoError(t, r.AddPlayer(NewPlayer("a")))
	require.NoError(t, r.AddPlayer(NewPlayer("b")))
	assert.ErrorIs(t, r.AddPlayer(NewPlayer("c")), ErrTooManyPlayers)
	assert.Error(t, r.AddPlayer(nil))
	assert.Equal(t, 2, r.PlayerCount())
}

func TestSubjectNotifiesInOrder(t *testing.T) {
	g, err := newStubGame(createTestConfig())
	require.NoError(t, err)

	var calls []string
	first := &recordingObserver{name: "first", calls: &calls}
	second := &recordingObserver{name: "second", calls: &calls}

	g.RegisterObserver(first)
	g.RegisterObserver(second)
	g.RegisterObserver(first)

	g.Update()
	assert.Equal(t, []string{"first", "second"}, calls, "duplicate registration is ignored")

	calls = nil
	g.RemoveObserver(first)
	g.RemoveObserver(first)
	g.Update()
	assert.Equal(t, []string{"second"}, calls)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(VariantTetris, newStubGame))
	require.NoError(t, r.Register(VariantCandyCrush, newStubGame))
	assert.Error(t, r.Register("", newStubGame))
	assert.Error(t, r.Register("other", nil))

	assert.Equal(t, []Variant{VariantCandyCrush, VariantTetris}, r.Variants())
	assert.True(t, r.Has(VariantTetris))

	t.Run("builds registered variant", func(t *testing.T) {
		g, err := r.New(createTestConfig())
		require.NoError(t, err)
		assert.Equal(t, VariantTetris, g.Variant())
	})

	t.Run("rejects unknown variant", func(t *testing.T) {
		config := createTestConfig()
		config.Variant = "pong"
		_, err := r.New(config)
		assert.ErrorIs(t, err, ErrUnknownVariant)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		config := createTestConfig()
		config.Rows = 1
		_, err := r.New(config)
		assert.ErrorContains(t, err, "rows must be between")
	})
}

func TestInputConstructors(t *testing.T) {
	assert.Equal(t, Input{Kind: InputKey, Key: KeySpace}, KeyInput(KeySpace))
	assert.Equal(t, Input{Kind: InputSelect, Row: 99, Col: 99}, SelectInput(99, 99), "selection carries no sentinel meaning")
	assert.Equal(t, InputSwitchPlayer, SwitchPlayerInput().Kind)
	assert.Equal(t, "switch_player", InputSwitchPlayer.String())

	k, ok := ParseKey(" left ")
	assert.True(t, ok)
	assert.Equal(t, KeyLeft, k)
	_, ok = ParseKey("ESCAPE")
	assert.False(t, ok)
}

func TestDisplayIsDetached(t *testing.T) {
	g, err := newStubGame(createTestConfig())
	require.NoError(t, err)
	require.NoError(t, g.AddPlayer(NewPlayer("alice")))
	require.NoError(t, g.AddPlayer(NewPlayer("bob")))

	d := g.DisplayData()
	assert.Equal(t, 20, d.Board.Rows)
	assert.Equal(t, 10, d.Board.Cols)
	require.Len(t, d.Players, 2)
	assert.True(t, d.Players[0].IsActive)
	assert.False(t, d.Players[1].IsActive)

	g.SwitchPlayer()
	assert.True(t, d.Players[0].IsActive, "earlier snapshot is unaffected")
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions()
	assert.NotNil(t, o.Clock)
	assert.NotNil(t, o.Rand)

	a := ApplyOptions(WithSeed(7))
	b := ApplyOptions(WithSeed(7))
	assert.Equal(t, a.Rand.IntN(1000), b.Rand.IntN(1000), "same seed gives the same sequence")

	clock := NewManualClock(a.Clock.Now())
	assert.Same(t, clock, ApplyOptions(WithClock(clock)).Clock)
}
