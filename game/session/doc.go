// Package session provides in-memory session management for the game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Game construction through the engine registry
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations. Each
// service.Session owns exactly one engine.Game built from its configuration,
// plus metadata like creation time and last access time.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive and generated IDs are retried on collision.
//
// Usage:
//
//	registry, err := variants.NewRegistry()
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManager(registry)
//
//	sess, err := manager.Create("", "tetris", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Sessions live only in memory. Idle sessions are removed with
// CleanupExpiredSessions.
package session
