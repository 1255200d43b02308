// Package api provides HTTP REST API handlers for the turtle race game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/play - Play a card ({"card_id": "..."})
//   - POST /api/sessions/{id}/color - Resolve a pending choice ({"color": "red"})
//   - POST /api/sessions/{id}/cancel - Dismiss a pending choice
//   - POST /api/sessions/{id}/reset - Restart the race with a fresh deck
//   - GET /api/sessions/{id}/history - Play history (?page=&limit=&order=)
//
// Configuration:
//   - GET /api/configs - List available presets
//   - GET /api/configs/{name} - Get a preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket updates for a session
//
// Error Handling:
//
// Errors are returned as JSON, {"error": "message"}. Unknown sessions and
// presets are 404, invalid cards and colors are 400, and plays refused by
// the current phase are 409. A play that empties the draw pile is a 409
// whose body also carries the play result under "result".
package api
