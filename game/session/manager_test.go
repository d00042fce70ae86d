package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestManager_Create(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "generated id", id: ""},
		{name: "explicit id", id: "abcd"},
		{name: "invalid id", id: "../x", wantErr: ErrInvalidSessionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewManager()
			sess, err := manager.Create(tt.id, "corridor", corridorLevel())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if tt.id == "" && len(sess.ID) != 4 {
				t.Errorf("Expected a 4-character ID, got %q", sess.ID)
			}
			if tt.id != "" && sess.ID != tt.id {
				t.Errorf("Expected ID %s, got %s", tt.id, sess.ID)
			}
			if !sess.Engine.Started() {
				t.Error("Expected a started engine")
			}
			if sess.LevelID != "corridor" {
				t.Errorf("Expected level corridor, got %s", sess.LevelID)
			}
		})
	}

	t.Run("duplicate id is case-insensitive", func(t *testing.T) {
		manager := NewManager()
		if _, err := manager.Create("AbCd", "corridor", corridorLevel()); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := manager.Create("abcd", "corridor", corridorLevel()); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		manager := NewManager()
		bad := corridorLevel()
		bad.Entities[0] = ".,.,.,.,."
		if _, err := manager.Create("", "corridor", bad); err == nil {
			t.Error("Expected error for a level without player")
		}
		if manager.Count() != 0 {
			t.Error("Expected no session registered")
		}
	})
}

func TestManager_GetAndDelete(t *testing.T) {
	manager := NewManager()
	sess, _ := manager.Create("beef", "corridor", corridorLevel())

	got, err := manager.Get("BEEF")
	if err != nil || got != sess {
		t.Fatalf("Expected case-insensitive lookup, got %v", err)
	}

	if _, err := manager.Get("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if err := manager.Delete("beef"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := manager.Delete("beef"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if manager.Exists("beef") {
		t.Error("Expected session gone")
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 3; i++ {
		if _, err := manager.Create(fmt.Sprintf("s%03d", i), "corridor", corridorLevel()); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if got := len(manager.List()); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}
	if manager.Count() != 3 {
		t.Errorf("Expected count 3, got %d", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	old, _ := manager.Create("old1", "corridor", corridorLevel())
	manager.Create("new1", "corridor", corridorLevel())

	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if _, err := manager.Get("old1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected expired session removed, got %v", err)
	}
	if _, err := manager.Get("new1"); err != nil {
		t.Errorf("Expected fresh session kept, got %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	sess, _ := manager.Create("tick", "corridor", corridorLevel())
	before := sess.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("TICK"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !sess.LastAccessedAt.After(before) {
		t.Error("Expected last access to move forward")
	}
	if err := manager.UpdateLastAccessed("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()

	var wg sync.WaitGroup
	ids := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := manager.Create("", "corridor", corridorLevel())
			if err != nil {
				t.Errorf("Create failed: %v", err)
				return
			}
			ids <- sess.ID
			manager.Get(sess.ID)
			manager.UpdateLastAccessed(sess.ID)
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate session ID %s", id)
		}
		seen[id] = true
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	a, _ := manager.Create("aaaa", "corridor", corridorLevel())
	b, _ := manager.Create("bbbb", "corridor", corridorLevel())

	if _, err := a.Play("Right"); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if len(a.Choices) != 1 || len(b.Choices) != 0 {
		t.Errorf("Expected independent logs, got %d and %d choices", len(a.Choices), len(b.Choices))
	}
	if a.Engine.Fingerprint() == b.Engine.Fingerprint() {
		t.Error("Expected different states after playing one session")
	}
}
