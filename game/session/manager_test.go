package session

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wricardo/turtle-race-game/game/engine"
)

func createTestConfig() *engine.GameConfig {
	seed := int64(7)
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	config.Seed = &seed
	return config
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "create with explicit ID", id: "abc1"},
		{name: "create with generated ID", id: ""},
		{name: "duplicate ID", id: "abc1", wantErr: ErrSessionAlreadyExists},
		{name: "duplicate ID with different case", id: "ABC1", wantErr: ErrSessionAlreadyExists},
		{name: "ID with path separator", id: "a/b", wantErr: ErrInvalidSessionID},
		{name: "ID with surrounding space", id: " abc2", wantErr: ErrInvalidSessionID},
		{name: "ID with inner space", id: "a b", wantErr: ErrInvalidSessionID},
		{name: "ID with tab", id: "abc\t3", wantErr: ErrInvalidSessionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := manager.Create(tt.id, config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}
			if session.Engine == nil || session.Hand == nil || session.Events == nil {
				t.Fatal("Expected engine, hand and event recorder to be set")
			}
			if session.Hand.Len() != config.HandSize {
				t.Errorf("Expected %d cards dealt, got %d", config.HandSize, session.Hand.Len())
			}
			if tt.id != "" && session.ID != tt.id {
				t.Errorf("Expected ID %s, got %s", tt.id, session.ID)
			}
			if events := session.Events.Drain(); len(events) != 0 {
				t.Errorf("Expected setup events to be drained, got %d", len(events))
			}
		})
	}
}

func TestManager_CreateInvalidConfig(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	config.PathLength = engine.MaxPathLength + 1

	if _, err := manager.Create("bad", config); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
	if manager.Count() != 0 {
		t.Errorf("Expected no sessions stored, got %d", manager.Count())
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("Get-Me", createTestConfig())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, id := range []string{"Get-Me", "get-me", "GET-ME"} {
		got, err := manager.Get(id)
		if err != nil {
			t.Errorf("Get(%q) error = %v", id, err)
			continue
		}
		if got != created {
			t.Errorf("Get(%q) returned a different session", id)
		}
	}

	if _, err := manager.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("shared", config)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := manager.GetOrCreate("shared", config)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if first != second {
		t.Error("Expected the existing session to be returned")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("to-delete", createTestConfig())

	if err := manager.Delete("TO-DELETE"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := manager.Get("to-delete"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected session to be gone")
	}
	if err := manager.Delete("to-delete"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	for i := 0; i < 3; i++ {
		if _, err := manager.Create(fmt.Sprintf("list-%d", i), config); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if got := len(manager.List()); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	manager := NewManager(WithLogger(zap.New(core)))
	config := createTestConfig()

	old, _ := manager.Create("old", config)
	manager.Create("fresh", config)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be removed")
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("Expected fresh session to remain: %v", err)
	}

	entries := logs.FilterMessage("expired sessions removed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one cleanup log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["removed"]; got != int64(1) {
		t.Errorf("Expected removed=1 in log, got %v", got)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("touch", createTestConfig())
	before := session.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("UpdateLastAccessed() error = %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected last access time to advance")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			session, err := manager.Create("", config)
			if err != nil && !errors.Is(err, ErrSessionAlreadyExists) {
				errs <- err
				return
			}
			if session != nil {
				if err := manager.UpdateLastAccessed(session.ID); err != nil {
					errs <- err
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() == 0 {
		t.Error("Expected sessions to be created")
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config)
	session2, _ := manager.Create("iso-2", config)

	var card engine.Card
	for _, c := range session1.Hand.Cards() {
		if c.Kind == engine.ColorBound && c.Effect != engine.Back {
			card = c
			break
		}
	}
	if card.ID == "" {
		t.Skip("opening hand has no forward color card")
	}

	if _, err := session1.Engine.PlayCard(session1.Hand, card.ID); err != nil {
		t.Fatalf("PlayCard() error = %v", err)
	}

	pos1, _ := session1.Engine.Path().PositionOf(card.Color)
	pos2, _ := session2.Engine.Path().PositionOf(card.Color)
	if pos1 == engine.StartPosition {
		t.Error("Expected the turtle to move in session 1")
	}
	if pos2 != engine.StartPosition {
		t.Error("Session 2 should not be affected by session 1 plays")
	}
	if session2.Hand.Len() != config.HandSize || session2.Engine.Deck().Remaining() != session1.Engine.Deck().Remaining()+1 {
		t.Error("Sessions should have independent decks")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	format := regexp.MustCompile(`^[0-9a-f]{8}$`)

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if !format.MatchString(session.ID) {
			t.Errorf("Expected 8 hex characters, got %q", session.ID)
		}
	}
}
