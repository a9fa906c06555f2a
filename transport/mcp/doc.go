// Package mcp provides a Model Context Protocol front end for the game server.
//
// The client is thin: every tool call is proxied to the REST API, so the
// MCP process holds no game state and can run next to a remote server.
//
// MCP Tools:
//   - create_session: Create a session from a config, with optional players
//   - list_sessions: List active sessions, optionally by variant
//   - get_session: Get specific session details
//   - get_display: Render the board as text
//   - send_input: Send one key, cell selection or switch_player action
//   - send_inputs: Send a sequence of keys
//   - control_session: Start, pause or stop a game
//   - tick: Advance the game clock once
//   - list_configs: List available game configurations
//   - leaderboard: Top final scores for a variant
//   - game_instructions: Rules and scoring
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.Serve(); err != nil {
//		log.Fatal(err)
//	}
package mcp
