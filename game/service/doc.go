// Package service provides the business logic layer for the turtle race game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - The card-play protocol: play, choose color, cancel
//   - Play history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an engine, the player's hand and an
// EventRecorder subscribed to the engine's event bus; the events recorded
// during a call are returned with its result.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	card := info.GameState.Hand[0]
//	result, err := gameService.PlayCard(ctx, info.ID, card.ID)
//	if err == nil && result.Phase == engine.PhaseAwaitingColor {
//		result, err = gameService.ChooseColor(ctx, info.ID, "green")
//	}
//
// A play that empties the draw pile returns its result together with an
// error wrapping engine.ErrEmptyDeck.
package service
