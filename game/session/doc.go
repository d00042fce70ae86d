// Package session provides session management for Void Grid.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//   - Persistence of replay logs to files or PostgreSQL
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive.
//
// Persistence:
//
// A persisted session is its level ID plus the choices played since the
// last reset. Loading rebuilds the level and replays the choices; the
// engine is deterministic so the restored session matches the saved one
// exactly. FilePersistence writes one JSON file per session,
// PostgresPersistence one row per session.
//
// Usage:
//
//	levels, _ := config.NewManager("levels")
//	store, _ := session.NewFilePersistence("sessions", levels)
//	manager := session.NewManagerWithPersistence(store)
//
//	sess, err := manager.Create("", "switch_room", lvl)
//	if err != nil {
//		log.Fatal(err)
//	}
package session
