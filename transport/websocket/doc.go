// Package websocket provides WebSocket transport for the game server.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Display snapshots pushed after every handled input or tick
//   - Game events (score, lines, level_up, turn, game_over)
//   - Optional input messages from clients
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection has a read and a write
// goroutine. The Hub implements service.Broadcaster: snapshots are queued on
// a buffered channel and dropped when it is full, so game code never blocks
// on a slow network.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Outgoing: {"session_id": "ab12", "event": "display", "display": {...}}
//     or {"session_id": "ab12", "event": "score", "data": {...}}
//   - Incoming: {"key": "LEFT"}, {"row": 2, "col": 3} or {"action": "switch_player"}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.SetInputHandler(func(ctx context.Context, id string, req service.InputRequest) error {
//		_, err := gameService.HandleInput(ctx, id, req)
//		return err
//	})
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
