// Package service provides the business logic layer for the game server.
//
// The service package implements:
//   - Multi-session game management
//   - Translation of wire inputs into engine commands
//   - Session lifecycle control and the tick loop
//   - Event extraction, snapshot broadcasting and metrics
//   - Final score recording into a leaderboard
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Broadcaster and LeaderboardStore are optional collaborators.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every session owns one engine.Game; the service attaches an
// observer to it so each handled input or tick yields events and a pushed
// snapshot. A single mutex serialises all game access, and Run drives Update
// on every running session at a fixed interval.
//
// Usage:
//
//	sessionMgr := session.NewManager(registry)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, registry,
//		service.WithBroadcaster(hub))
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{
//		ConfigID:  "tetris",
//		Players:   []string{"alice"},
//		AutoStart: true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.HandleInput(ctx, info.ID, service.InputRequest{Key: "LEFT"})
package service
