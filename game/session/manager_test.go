package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/tmge/game/candycrush"
	"github.com/wricardo/tmge/game/engine"
	"github.com/wricardo/tmge/game/tetris"
)

func createTestRegistry(t *testing.T) *engine.Registry {
	t.Helper()
	registry := engine.NewRegistry()
	if err := registry.Register(engine.VariantTetris, tetris.New); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(engine.VariantCandyCrush, candycrush.New); err != nil {
		t.Fatal(err)
	}
	return registry
}

func createTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Variant:     engine.VariantTetris,
		Rows:        20,
		Cols:        10,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(createTestRegistry(t), engine.WithSeed(7))
}

func TestManager_Create(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "tetris", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.ConfigID != "tetris" {
			t.Errorf("Expected config ID 'tetris', got '%s'", session.ConfigID)
		}
		if session.Game == nil {
			t.Fatal("Expected game to be initialized")
		}
		if session.Game.Variant() != engine.VariantTetris {
			t.Errorf("Expected tetris game, got %s", session.Game.Variant())
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "tetris", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", "tetris", config)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "tetris", config)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid session ID", func(t *testing.T) {
		_, err := manager.Create("a/b", "tetris", config)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Name = ""
		if _, err := manager.Create("invalid-test", "tetris", invalidConfig); err == nil {
			t.Error("Expected error for invalid config")
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		unknown := createTestConfig()
		unknown.Variant = "bejeweled"
		_, err := manager.Create("unknown", "bejeweled", unknown)
		if !errors.Is(err, engine.ErrUnknownVariant) {
			t.Errorf("Expected ErrUnknownVariant, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := newTestManager(t)
	created, err := manager.Create("get-test", "tetris", createTestConfig())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the same session instance")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		if _, err := manager.Get("GET-TEST"); err != nil {
			t.Errorf("Expected case-insensitive lookup to succeed: %v", err)
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := newTestManager(t)
	manager.Create("delete-test", "tetris", createTestConfig())

	if err := manager.Delete("DELETE-TEST"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("delete-test"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("delete-test"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	session1, _ := manager.Create("list-1", "tetris", config)
	session2, _ := manager.Create("list-2", "tetris", config)

	sessions := manager.List()
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}

	found := map[string]bool{}
	for _, s := range sessions {
		found[s.ID] = true
	}
	if !found[session1.ID] || !found[session2.ID] {
		t.Errorf("Expected both sessions in list, got %v", found)
	}
	if manager.Count() != 2 {
		t.Errorf("Expected count 2, got %d", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	active, _ := manager.Create("active", "tetris", config)
	expired, _ := manager.Create("expired", "tetris", config)
	expired.Game.Start()

	// Simulate expired session
	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	removed := manager.CleanupExpiredSessions(time.Hour)
	if len(removed) != 1 || removed[0] != "expired" {
		t.Fatalf("Expected only 'expired' to be removed, got %v", removed)
	}
	if expired.Game.IsRunning() {
		t.Error("Expected expired game to be stopped")
	}
	if _, err := manager.Get("expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := newTestManager(t)
	current := time.Unix(1000, 0)
	manager.now = func() time.Time { return current }

	session, _ := manager.Create("access-test", "tetris", createTestConfig())
	originalTime := session.LastAccessedAt

	current = current.Add(time.Minute)
	if err := manager.UpdateLastAccessed("access-test"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.Create(fmt.Sprintf("conc-%d", id), "tetris", config); err != nil {
				errs <- err
			}
			manager.List()
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", "tetris", config)
	session2, _ := manager.Create("iso-2", "tetris", config)
	session1.Game.AddPlayer(engine.NewPlayer("alice"))
	session2.Game.AddPlayer(engine.NewPlayer("bob"))

	session1.Game.Start()
	session1.Game.HandleInput(engine.KeyInput(engine.KeySpace))

	if session1.Game.Score() == 0 {
		t.Error("Expected hard drop to score in session 1")
	}
	if session2.Game.Score() != 0 || session2.Game.IsRunning() {
		t.Error("Session 2 should not be affected by session 1 input")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := newTestManager(t)
	candy := &engine.GameConfig{
		Name:        "Candy",
		Description: "Candy test",
		Variant:     engine.VariantCandyCrush,
		Rows:        6,
		Cols:        6,
	}

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", "candy", candy)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %d", len(session.ID))
		}
	}
}
