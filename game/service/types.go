package service

import (
	"time"

	"github.com/wricardo/turtle-race-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlayResult contains the outcome of a card play, color choice or cancel.
// Play is nil while a color choice is pending.
type PlayResult struct {
	Success    bool               `json:"success"`
	Phase      engine.Phase       `json:"phase"`
	Message    string             `json:"message"`
	Play       *engine.PlayResult `json:"play,omitempty"`
	Candidates []engine.Color     `json:"candidates,omitempty"`
	Events     []GameEvent        `json:"events"`
	GameState  *engine.GameState  `json:"game_state"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type       string         `json:"type"` // an engine event type
	Message    string         `json:"message"`
	Timestamp  time.Time      `json:"timestamp"`
	Turtle     engine.Color   `json:"turtle,omitempty"`
	From       int            `json:"from"`
	To         int            `json:"to"`
	Carried    []engine.Color `json:"carried,omitempty"`
	Card       *engine.Card   `json:"card,omitempty"`
	Candidates []engine.Color `json:"candidates,omitempty"`
}

// HistoryOptions configures play history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated play history
type HistoryResponse struct {
	Plays       []engine.PlayRecord `json:"plays"`
	TotalPlays  int                 `json:"total_plays"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	PathLength  int    `json:"path_length"`
	HandSize    int    `json:"hand_size"`
	Seeded      bool   `json:"seeded"`
}
