package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tmge/game/engine"
	"github.com/wricardo/tmge/game/variants"
)

const tetrisConfig = `{
	"name": "Sim Tetris",
	"description": "Small well",
	"variant": "tetris",
	"rows": 10,
	"cols": 6,
	"max_players": 1,
	"tetris": {"spawn_column": 1, "base_move_delay_ms": 200, "min_move_delay_ms": 100}
}`

const candyConfig = `{
	"name": "Sim Candy",
	"description": "Small board with short clocks",
	"variant": "candycrush",
	"rows": 6,
	"cols": 6,
	"max_players": 2,
	"candycrush": {"kinds": ["Red", "Green", "Blue", "Yellow"], "player_time_seconds": 10}
}`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadConfig(t *testing.T, content string) *engine.GameConfig {
	t.Helper()
	config, err := engine.LoadGameConfig(writeConfig(t, t.TempDir(), "config.json", content))
	require.NoError(t, err)
	return config
}

func testRegistry(t *testing.T) *engine.Registry {
	t.Helper()
	registry, err := variants.NewRegistry()
	require.NoError(t, err)
	return registry
}

func TestPlayGame_Tetris(t *testing.T) {
	config := loadConfig(t, tetrisConfig)

	result, err := playGame(testRegistry(t), config, 11, 2000)
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Steps, 2000)
	if !result.Finished {
		assert.Equal(t, 2000, result.Steps, "an unfinished game must have used every step")
	}
	assert.GreaterOrEqual(t, result.Level, 1)
	assert.GreaterOrEqual(t, result.Score, 0)
}

func TestPlayGame_CandyCrushRunsOutOfTime(t *testing.T) {
	config := loadConfig(t, candyConfig)

	result, err := playGame(testRegistry(t), config, 5, 5000)
	require.NoError(t, err)

	assert.True(t, result.Finished, "short clocks must end the game")
	assert.Zero(t, result.Lines)
	assert.GreaterOrEqual(t, result.Score, 0)
	assert.Equal(t, 1+result.Score/1000, result.Level)
}

func TestPlayGame_Deterministic(t *testing.T) {
	for _, content := range []string{tetrisConfig, candyConfig} {
		config := loadConfig(t, content)

		first, err := playGame(testRegistry(t), config, 42, 1000)
		require.NoError(t, err)
		second, err := playGame(testRegistry(t), config, 42, 1000)
		require.NoError(t, err)

		assert.Equal(t, first, second, "%s should replay identically from the same seed", config.Name)
	}
}

func TestPlayGame_UnknownVariant(t *testing.T) {
	config := loadConfig(t, `{"name": "n", "description": "d", "variant": "bejeweled", "rows": 8, "cols": 8}`)

	_, err := playGame(testRegistry(t), config, 1, 10)
	assert.Error(t, err)
}

func TestSimulateConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "candy.json", candyConfig)

	summary, err := simulateConfig(testRegistry(t), path, 4, 1, 5000)
	require.NoError(t, err)

	assert.Equal(t, "candy.json", summary.Config)
	assert.Equal(t, engine.VariantCandyCrush, summary.Variant)
	assert.Equal(t, 4, summary.Games)
	assert.Equal(t, 4, summary.Finished)
	assert.GreaterOrEqual(t, float64(summary.BestScore), summary.MeanScore)
	assert.Positive(t, summary.MeanSteps)

	_, err = simulateConfig(testRegistry(t), filepath.Join(t.TempDir(), "missing.json"), 1, 1, 10)
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, Summary{
		Config:    "tetris.json",
		Variant:   engine.VariantTetris,
		Games:     3,
		Finished:  2,
		BestScore: 900,
		MeanScore: 450,
		MeanLevel: 1.5,
		MeanLines: 4,
		MeanSteps: 120,
	})

	out := buf.String()
	assert.Contains(t, out, "=== tetris.json (tetris) ===")
	assert.Contains(t, out, "Best Score: 900")
	assert.Contains(t, out, "Mean Lines: 4.00")
	assert.Contains(t, out, "1 games hit the step limit")

	buf.Reset()
	printSummary(&buf, Summary{Config: "candy.json", Variant: engine.VariantCandyCrush, Games: 1, Finished: 1})
	assert.NotContains(t, buf.String(), "Mean Lines")
	assert.NotContains(t, buf.String(), "step limit")
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tetris.json", tetrisConfig)
	writeConfig(t, dir, "candy.json", candyConfig)

	var buf bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &buf
	err := cmd.Run(context.Background(), []string{"simulate", "--dir", dir, "--games", "2", "--max-steps", "300"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "=== candy.json (candycrush) ===")
	assert.Contains(t, buf.String(), "=== tetris.json (tetris) ===")
	assert.Contains(t, buf.String(), "Games: 2")
}

func TestCommand_NoConfigs(t *testing.T) {
	var exitErr error
	cmd := newCommand()
	cmd.Writer = &bytes.Buffer{}
	cmd.ExitErrHandler = func(_ context.Context, _ *cli.Command, err error) { exitErr = err }

	err := cmd.Run(context.Background(), []string{"simulate", "--dir", t.TempDir()})
	require.Error(t, err)
	require.Error(t, exitErr)
	assert.Contains(t, exitErr.Error(), "no config files")
}
