// Package config provides configuration management for the tile-matching games.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation through the engine
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - The variant to build (tetris or candycrush)
//   - Board rows and columns
//   - The maximum number of hot-seat players
//   - Variant rules: drop timing and spawn column for tetris,
//     candy kinds and per-player clock for candycrush
//
// Available Configurations:
//   - tetris: classic 20x10 falling blocks
//   - tetris_sprint: narrow, fast falling blocks
//   - candycrush: classic 9x9 board with six candies
//   - candycrush_duel: two-player 8x8 board with shorter clocks
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("candycrush")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
