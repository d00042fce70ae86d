// Package mcp exposes Void Grid to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool calls the REST API and renders the
// JSON answer as text an agent can read. Tools:
//   - create_session, get_session, list_sessions
//   - game_state, play, bulk_play, reset_game, turn_history
//   - list_levels, game_instructions, describe_cell
//
// Boards are rendered as level code rows, with entities marked by a leading
// '*', so an agent can copy positions straight into describe_cell.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: client.HTTPHandler() answers one JSON-RPC message per POST
package mcp
