package session

import (
	"fmt"
	"time"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/service"
	"github.com/wricardo/voidgrid/logger"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session: the level it runs
// and the choices played since the last reset
type PersistedSessionData struct {
	ID             string          `json:"id"`
	LevelID        string          `json:"level_id"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	Choices        []engine.Choice `json:"choices"`
}

func newPersistedData(session *service.Session) PersistedSessionData {
	choices := session.Choices
	if choices == nil {
		choices = []engine.Choice{}
	}
	return PersistedSessionData{
		ID:             session.ID,
		LevelID:        session.LevelID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Choices:        choices,
	}
}

// restore rebuilds a session by loading its level and replaying the log
func restore(data PersistedSessionData, levels service.LevelManager) (*service.Session, error) {
	lvl, err := levels.LoadLevel(data.LevelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level '%s': %w", data.LevelID, err)
	}

	session, err := service.RestoreSession(data.ID, data.LevelID, lvl, data.Choices, engineOptions(data.ID)...)
	if err != nil {
		return nil, err
	}
	session.CreatedAt = data.CreatedAt
	session.LastAccessedAt = data.LastAccessedAt
	return session, nil
}

func engineOptions(sessionID string) []engine.Option {
	return []engine.Option{
		engine.WithLogger(logger.WithComponent("engine").WithField("session_id", sessionID)),
	}
}
