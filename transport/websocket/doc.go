// Package websocket provides WebSocket transport for the turtle race game.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection has a read goroutine and a
// write goroutine; the Hub's Run loop owns registration and fan-out.
//
// Message Protocol:
//
// The server only pushes. Every frame is one JSON Message:
//   - {"event": "state_update", "session_id": "...", "game_state": {...}} after every change
//   - {"event": "turtle_moved", "session_id": "...", "data": {...}} for each game event
//
// Clients select a session with the ?session= query parameter and receive
// only that session's messages.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
//
// Cancelling the context passed to Run closes every connection. Clients
// that fall behind by more than the send buffer are dropped.
package websocket
