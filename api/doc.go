// Package api provides HTTP REST API handlers for the tile-matching game server.
//
// The api package implements:
//   - Session management endpoints
//   - Input, lifecycle control and tick endpoints
//   - Configuration listing and creation
//   - Per-variant leaderboards
//   - WebSocket upgrade handling
//   - Health and Prometheus metrics endpoints
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, variant, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/display - Current display snapshot
//   - POST /api/sessions/{id}/input - Apply one input command
//   - POST /api/sessions/{id}/control - Start, pause or stop the game
//   - POST /api/sessions/{id}/tick - Advance the game clock once
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - POST /api/configs - Save a configuration (optional ?id=)
//   - GET /api/configs/{name} - Get one configuration
//   - GET /api/variants - List registered game variants
//
// Scores:
//   - GET /api/leaderboard/{variant} - Top final scores (optional ?limit=)
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Inputs carry exactly one of a key,
// a cell selection or an action:
//
//	{"key": "LEFT"}
//	{"row": 3, "col": 4}
//	{"action": "switch_player"}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON. Unknown sessions and configs map to 404,
// rejected inputs and invalid configs to 400:
//
//	{
//	  "error": "error message"
//	}
package api
