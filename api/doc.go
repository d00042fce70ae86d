// Package api serves the Void Grid REST API and the WebSocket endpoint.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions {"level_id"} - Create a session (default level when empty)
//   - GET /api/sessions?sort=created|accessed&order=asc|desc&limit=N - List sessions
//   - GET /api/sessions/{id} - Session info with the current state
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/play {"choice", "reset"} - Play one turn
//   - POST /api/sessions/{id}/bulk-play {"choices", "reset"} - Play up to 100 turns
//   - POST /api/sessions/{id}/reset - Restart the level
//   - GET /api/sessions/{id}/history?page&limit&order - Paginated turn history
//   - GET /api/sessions/{id}/cells/{row}/{col} - Describe one cell
//
// Levels:
//   - GET /api/levels - List level files
//   - GET /api/levels/{name} - Level document
//   - POST /api/levels {"name", "level"} - Validate and save a level
//   - GET /api/schema/level - JSON schema of the level document
//
// Misc:
//   - GET /api/health
//   - GET /ws?session=<id> - WebSocket state updates
//
// Choices are "Up", "Down", "Left", "Right" and "Action" (case-insensitive).
// Errors are returned as {"error": "..."} with 404 for unknown sessions or
// levels, 400 for bad input, 409 when a session exists or the level has
// already ended, and 500 otherwise.
//
// Every successful play, bulk play and reset is broadcast to the session's
// WebSocket clients.
package api
