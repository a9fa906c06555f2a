// Package engine provides the shared model for the tile-matching games.
//
// The engine package implements the pieces every variant builds on:
//   - Grid: a fixed arena of tiles addressed by (row, col)
//   - Player and Roster: scores and turn order
//   - Timer and Clock: elapsed running time with an injectable clock
//   - Subject and Observer: synchronous change notification
//   - Registry: the variant menu used to build games from configuration
//
// Core Types:
//
// The Game interface is the capability set of a game controller, implemented
// by the tetris and candycrush packages. Input is the command a renderer or
// transport delivers to a game, and Display is the snapshot it gets back.
// GameConfig holds the rules and board size loaded from JSON files.
//
// Usage:
//
//	registry := engine.NewRegistry()
//	if err := registry.Register(engine.VariantTetris, tetris.New); err != nil {
//		log.Fatal(err)
//	}
//
//	config, err := engine.LoadConfigByName("configs", "tetris")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := registry.New(config, engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game.AddPlayer(engine.NewPlayer("alice"))
//	game.Start()
//	game.HandleInput(engine.KeyInput(engine.KeyLeft))
//	display := game.DisplayData()
//
// Concurrency:
//
// Games are not safe for concurrent use. A single caller drives Update and
// HandleInput, and observers run synchronously on that caller's goroutine.
package engine
