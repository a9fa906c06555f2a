// Command validate checks every game configuration JSON file in a directory.
// For each file it:
//   - loads and validates the JSON against the engine rules
//   - builds the game through the variant registry with a seeded random source
//   - starts it on a manual clock with a full roster
//   - runs a short smoke game: tetris hard drops until the well fills,
//     candycrush drains the active clock until time runs out
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/tmge/game/engine"
	"github.com/wricardo/tmge/game/variants"
)

// maxDrops bounds the tetris smoke game
const maxDrops = 1000

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file, then
// plays a deterministic smoke game with it.
func validateConfig(filePath string, seed uint64) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	if _, err := os.Stat(filePath); err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.LoadGameConfig(filePath)
	if err != nil {
		result.fail("Invalid config: %v", err)
		return result
	}
	result.info("%s (%s, %dx%d)", config.Name, config.Variant, config.Rows, config.Cols)

	registry, err := variants.NewRegistry()
	if err != nil {
		result.fail("Failed to build registry: %v", err)
		return result
	}

	clock := engine.NewManualClock(time.Unix(0, 0))
	game, err := registry.New(config, engine.WithClock(clock), engine.WithSeed(seed))
	if err != nil {
		result.fail("Failed to build game: %v", err)
		return result
	}

	for i := 1; i <= config.PlayerLimit(); i++ {
		if err := game.AddPlayer(engine.NewPlayer(fmt.Sprintf("Player %d", i))); err != nil {
			result.fail("Failed to add player %d: %v", i, err)
			return result
		}
	}

	game.Start()
	if !game.IsRunning() {
		result.fail("Game did not start")
		return result
	}

	display := game.DisplayData()
	if display.Board.Rows != config.Rows || display.Board.Cols != config.Cols {
		result.fail("Board is %dx%d, expected %dx%d", display.Board.Rows, display.Board.Cols, config.Rows, config.Cols)
	}
	if len(display.Players) != config.PlayerLimit() {
		result.fail("Display lists %d players, expected %d", len(display.Players), config.PlayerLimit())
	}

	switch config.Variant {
	case engine.VariantTetris:
		smokeTetris(&result, game, display)
	case engine.VariantCandyCrush:
		smokeCandyCrush(&result, game, display, config, clock)
	}

	return result
}

// smokeTetris hard drops at the spawn column until the well overflows
func smokeTetris(result *ValidationResult, game engine.Game, display *engine.Display) {
	if display.CurrentPiece == nil || display.NextPiece == nil {
		result.fail("No piece spawned on start")
		return
	}

	drops := 0
	for !game.IsGameOver() && drops < maxDrops {
		game.HandleInput(engine.KeyInput(engine.KeySpace))
		drops++
	}
	if !game.IsGameOver() {
		result.fail("Game still running after %d hard drops", maxDrops)
		return
	}
	result.info("Game over after %d hard drops, score %d", drops, game.Score())
}

// smokeCandyCrush checks the opening board, then lets the active clock run out
func smokeCandyCrush(result *ValidationResult, game engine.Game, display *engine.Display, config *engine.GameConfig, clock *engine.ManualClock) {
	empty := 0
	for _, row := range display.Board.Cells {
		for _, cell := range row {
			if cell == nil {
				empty++
			}
		}
	}
	if empty > 0 {
		result.fail("Opening board has %d empty cells", empty)
	}
	if runs := countMatchedCells(display.Board.Cells); runs > 0 {
		result.fail("Opening board already has %d matched cells", runs)
	}
	if display.Players[0].TimeLeft == nil || *display.Players[0].TimeLeft <= 0 {
		result.fail("Active player has no time on the clock")
	}

	clock.Advance(config.CandyCrushRules().PlayerTime() + time.Second)
	game.Update()
	if !game.IsGameOver() {
		result.fail("Game did not end when the active clock ran out")
		return
	}
	result.info("Clock of %s ends the game", config.CandyCrushRules().PlayerTime())
}

// countMatchedCells counts cells that belong to a horizontal or vertical run of three or more equal kinds
func countMatchedCells(cells [][]*engine.Tile) int {
	matched := make(map[[2]int]bool)
	kind := func(i, j int) string {
		if i < 0 || i >= len(cells) || j < 0 || j >= len(cells[i]) || cells[i][j] == nil {
			return ""
		}
		return cells[i][j].Kind
	}

	for i := range cells {
		for j := range cells[i] {
			k := kind(i, j)
			if k == "" {
				continue
			}
			if kind(i, j+1) == k && kind(i, j+2) == k {
				matched[[2]int{i, j}], matched[[2]int{i, j + 1}], matched[[2]int{i, j + 2}] = true, true, true
			}
			if kind(i+1, j) == k && kind(i+2, j) == k {
				matched[[2]int{i, j}], matched[[2]int{i + 1, j}], matched[[2]int{i + 2, j}] = true, true, true
			}
		}
	}
	return len(matched)
}

// validateDir validates every *.json file in dir and prints a concise report.
// It reports whether all files are valid.
func validateDir(dir string, seed uint64) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file, seed)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "Validate game configurations by loading and smoke-playing them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "../configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "Random seed for the smoke games"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(cmd.String("dir"), cmd.Uint64("seed"))
			if err != nil {
				return cli.Exit(err, 1)
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
