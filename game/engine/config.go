package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate board size
	if config.Rows < MinBoardSize || config.Rows > MaxBoardSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Rows)
	}
	if config.Cols < MinBoardSize || config.Cols > MaxBoardSize {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Cols)
	}

	if config.MaxPlayers < 0 || config.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("config validation: max_players must be between 0 and %d, got %d", MaxPlayersLimit, config.MaxPlayers)
	}

	switch config.Variant {
	case VariantTetris:
		return validateTetris(config)
	case VariantCandyCrush:
		return validateCandyCrush(config)
	case "":
		return fmt.Errorf("config validation: variant is required")
	default:
		// Unknown variants are accepted here; the registry decides whether they can be built.
		return nil
	}
}

func validateTetris(config *GameConfig) error {
	if config.CandyCrush != nil {
		return fmt.Errorf("config validation: candycrush settings are not allowed for variant %s", config.Variant)
	}
	rules := config.TetrisRules()
	if rules.MinMoveDelayMs > rules.BaseMoveDelayMs {
		return fmt.Errorf("config validation: tetris.min_move_delay_ms (%d) must not exceed base_move_delay_ms (%d)",
			rules.MinMoveDelayMs, rules.BaseMoveDelayMs)
	}
	// Widest piece spans four columns from the spawn anchor
	if rules.SpawnColumn+4 > config.Cols {
		return fmt.Errorf("config validation: tetris.spawn_column %d leaves no room for a piece on %d columns",
			rules.SpawnColumn, config.Cols)
	}
	return nil
}

func validateCandyCrush(config *GameConfig) error {
	if config.Tetris != nil {
		return fmt.Errorf("config validation: tetris settings are not allowed for variant %s", config.Variant)
	}
	rules := config.CandyCrushRules()
	if len(rules.Kinds) < MinCandyKinds {
		return fmt.Errorf("config validation: candycrush.kinds must list at least %d kinds, got %d", MinCandyKinds, len(rules.Kinds))
	}
	seen := make(map[string]bool, len(rules.Kinds))
	initials := make(map[byte]string, len(rules.Kinds))
	for _, k := range rules.Kinds {
		if k == "" {
			return fmt.Errorf("config validation: candycrush.kinds must not contain empty names")
		}
		if seen[k] {
			return fmt.Errorf("config validation: candycrush.kinds contains duplicate kind %q", k)
		}
		seen[k] = true
		// Layouts address kinds by initial
		initial := strings.ToUpper(k)[0]
		if other, ok := initials[initial]; ok {
			return fmt.Errorf("config validation: candycrush.kinds %q and %q share the initial %q", other, k, initial)
		}
		initials[initial] = k
	}
	return nil
}

// LoadGameConfig loads and validates a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from dir
func LoadConfigByName(dir, configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join(dir, configName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	config, err := LoadGameConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}
