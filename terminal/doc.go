// Package terminal plays a level in a text terminal.
//
// A Renderer draws engine snapshots onto a tcell.Screen and Run turns key
// presses into choices. The game being played is either a LocalGame, which
// runs the engine in process, or a RemoteGame, which drives a session on a
// running server over REST and follows its WebSocket updates.
//
// Keys:
//
//	arrows   move
//	space, w action
//	r        restart the level
//	q, Esc   quit
package terminal
