// Command simulate plays seeded random games for each configuration and
// prints score statistics. Games run on a manual clock, so a run is fully
// reproducible from its seed and finishes as fast as the engine can step.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/tmge/game/engine"
	"github.com/wricardo/tmge/game/variants"
)

// GameResult is the outcome of one simulated game
type GameResult struct {
	Score    int
	Level    int
	Lines    int
	Steps    int
	Finished bool
}

// Summary aggregates the results of every game played with one config
type Summary struct {
	Config    string
	Variant   engine.Variant
	Games     int
	Finished  int
	BestScore int
	MeanScore float64
	MeanLevel float64
	MeanLines float64
	MeanSteps float64
}

var tetrisKeys = []engine.Key{engine.KeyLeft, engine.KeyRight, engine.KeyUp, engine.KeyDown, engine.KeySpace}

// playGame runs one game to completion or until maxSteps inputs were sent
func playGame(registry *engine.Registry, config *engine.GameConfig, seed uint64, maxSteps int) (GameResult, error) {
	clock := engine.NewManualClock(time.Unix(0, 0))
	game, err := registry.New(config, engine.WithClock(clock), engine.WithSeed(seed))
	if err != nil {
		return GameResult{}, err
	}
	for i := 1; i <= config.PlayerLimit(); i++ {
		if err := game.AddPlayer(engine.NewPlayer(fmt.Sprintf("Bot %d", i))); err != nil {
			return GameResult{}, err
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	game.Start()

	steps := 0
	for ; steps < maxSteps && !game.IsGameOver(); steps++ {
		switch config.Variant {
		case engine.VariantTetris:
			stepTetris(game, clock, rng)
		case engine.VariantCandyCrush:
			stepCandyCrush(game, clock, rng, config.Rows, config.Cols)
		}
	}

	display := game.DisplayData()
	result := GameResult{
		Score:    game.Score(),
		Level:    game.Level(),
		Steps:    steps,
		Finished: game.IsGameOver(),
	}
	if display.Lines != nil {
		result.Lines = *display.Lines
	}
	return result, nil
}

// stepTetris presses a random key, then lets gravity run for a quarter second
func stepTetris(game engine.Game, clock *engine.ManualClock, rng *rand.Rand) {
	game.HandleInput(engine.KeyInput(tetrisKeys[rng.IntN(len(tetrisKeys))]))
	clock.Advance(250 * time.Millisecond)
	game.Update()
}

// stepCandyCrush swaps a random cell with its right or lower neighbour, spending one to three seconds thinking
func stepCandyCrush(game engine.Game, clock *engine.ManualClock, rng *rand.Rand, rows, cols int) {
	clock.Advance(time.Duration(1000+rng.IntN(2000)) * time.Millisecond)
	game.Update()
	if game.IsGameOver() {
		return
	}

	i, j := rng.IntN(rows), rng.IntN(cols)
	ni, nj := i, j+1
	if rng.IntN(2) == 0 {
		ni, nj = i+1, j
	}
	if ni >= rows || nj >= cols {
		ni, nj = i-(ni-i), j-(nj-j)
	}
	game.HandleInput(engine.SelectInput(i, j))
	game.HandleInput(engine.SelectInput(ni, nj))
}

// simulateConfig plays a run of seeded games with one config and summarizes them
func simulateConfig(registry *engine.Registry, path string, games int, seed uint64, maxSteps int) (Summary, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return Summary{}, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}

	summary := Summary{Config: filepath.Base(path), Variant: config.Variant, Games: games}
	for g := range games {
		result, err := playGame(registry, config, seed+uint64(g), maxSteps)
		if err != nil {
			return Summary{}, fmt.Errorf("playing %s: %w", summary.Config, err)
		}
		if result.Finished {
			summary.Finished++
		}
		summary.BestScore = max(summary.BestScore, result.Score)
		summary.MeanScore += float64(result.Score)
		summary.MeanLevel += float64(result.Level)
		summary.MeanLines += float64(result.Lines)
		summary.MeanSteps += float64(result.Steps)
	}

	if games > 0 {
		n := float64(games)
		summary.MeanScore /= n
		summary.MeanLevel /= n
		summary.MeanLines /= n
		summary.MeanSteps /= n
	}
	return summary, nil
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n=== %s (%s) ===\n", s.Config, s.Variant)
	fmt.Fprintf(w, "Games: %d (%d finished)\n", s.Games, s.Finished)
	fmt.Fprintf(w, "Best Score: %d\n", s.BestScore)
	fmt.Fprintf(w, "Mean Score: %.1f\n", s.MeanScore)
	fmt.Fprintf(w, "Mean Level: %.2f\n", s.MeanLevel)
	if s.Variant == engine.VariantTetris {
		fmt.Fprintf(w, "Mean Lines: %.2f\n", s.MeanLines)
	}
	fmt.Fprintf(w, "Mean Steps: %.1f\n", s.MeanSteps)
	if s.Finished < s.Games {
		fmt.Fprintf(w, "⚠️  %d games hit the step limit\n", s.Games-s.Finished)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	files := cmd.Args().Slice()
	if len(files) == 0 {
		matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return err
		}
		files = matches
	}
	if len(files) == 0 {
		return cli.Exit(fmt.Sprintf("no config files in %s", dir), 1)
	}

	registry, err := variants.NewRegistry()
	if err != nil {
		return cli.Exit(err, 1)
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary, err := simulateConfig(registry, file, cmd.Int("games"), cmd.Uint64("seed"), cmd.Int("max-steps"))
		if err != nil {
			return cli.Exit(err, 1)
		}
		printSummary(cmd.Root().Writer, summary)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "Play seeded random games for each configuration",
		ArgsUsage: "[config.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.IntFlag{Name: "games", Value: 20, Usage: "Games to play per configuration"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "Seed of the first game"},
			&cli.IntFlag{Name: "max-steps", Value: 5000, Usage: "Input limit per game"},
		},
		Action: run,
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
