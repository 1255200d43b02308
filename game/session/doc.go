// Package session provides in-memory session management for the turtle race game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Manager is the main session manager. Each session it creates is a
// service.Session holding its own engine, hand and event recorder, so games
// in different sessions never share state.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID. IDs are
// matched case-insensitively.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(logger))
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	// Drop sessions idle for a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
//
// Sessions live only as long as the process.
package session
