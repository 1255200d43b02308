package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/turtle-race-game/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	PlayCard(ctx context.Context, sessionID, cardID string) (*PlayResult, error)
	ChooseColor(ctx context.Context, sessionID, color string) (*PlayResult, error)
	CancelChoice(ctx context.Context, sessionID string) (*PlayResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetPlayHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game: one engine, the player's hand and a
// recorder of the engine's events. Lock the session around every engine call.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Hand           *engine.Hand
	Config         *engine.GameConfig
	Events         *EventRecorder
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

func (s *Session) Lock() {
	s.mu.Lock()
}

func (s *Session) Unlock() {
	s.mu.Unlock()
}

// NewSession builds a session around a fresh engine and deals the opening
// hand. Options are passed to engine.NewEngine after the session's own
// event bus.
func NewSession(id string, config *engine.GameConfig, opts ...engine.Option) (*Session, error) {
	bus := engine.NewEventBus()
	recorder := NewEventRecorder(bus)

	eng, err := engine.NewEngine(config, append([]engine.Option{engine.WithEventBus(bus)}, opts...)...)
	if err != nil {
		return nil, err
	}

	hand, err := eng.DealHand(eng.GetConfig().HandSize)
	if err != nil {
		return nil, err
	}
	recorder.Drain()

	now := time.Now()
	return &Session{
		ID:             id,
		Engine:         eng,
		Hand:           hand,
		Config:         eng.GetConfig(),
		Events:         recorder,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, nil
}
