// Package mcp exposes the turtle race REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one HTTP request
// against the REST server and the JSON response is rendered as text for
// the agent.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: the path (Goal at the top), hand, pending choice and winner
//   - play_card: play a card from the hand by id
//   - choose_color: resolve a pending wildcard or last-place card
//   - cancel_choice: return a pending card to the hand
//   - reset_game: restart with the same seed, keeping history
//   - play_history: paginated list of resolved plays
//   - list_configs: available presets
//   - game_instructions: the rules
//
// A play that empties the deck comes back from the API as a conflict that
// still carries the final result; the tools render that state instead of
// reporting a bare error.
//
// Transport Modes:
//
// The server binary serves the MCP endpoint over HTTP at /mcp and can also
// run it over stdio (the stdio-mcp command), starting an internal REST
// server when none is reachable.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
