// Package websocket pushes Void Grid session state to browsers and other
// watchers over WebSocket.
//
// The Hub keeps clients grouped by session ID. Every successful play or
// reset made through the REST API is broadcast to the clients of that
// session as a state_update message carrying the engine snapshot:
//
//	{"session_id": "ab12", "event": "state_update", "state": {...}}
//
// Clients subscribe with GET /ws?session=<id>. Incoming frames are read only
// to keep the connection alive. A client whose send buffer fills up is
// dropped rather than slowing down the broadcaster.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, snapshot)
//	hub.BroadcastToSession(sessionID, snapshot)
package websocket
