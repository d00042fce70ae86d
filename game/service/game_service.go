package service

import (
	"context"
	"time"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Play(ctx context.Context, sessionID, choice string, reset bool) (*PlayResult, error)
	BulkPlay(ctx context.Context, sessionID string, choices []string, reset bool) (*BulkPlayResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	DescribeCell(ctx context.Context, sessionID string, row, col int) (*CellInfo, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelID string) (*level.Level, error)
	SaveLevel(ctx context.Context, levelID string, lvl *level.Level) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, levelID string, lvl *level.Level) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level loading
type LevelManager interface {
	LoadLevel(id string) (*level.Level, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() (string, *level.Level)
	SaveLevel(id string, lvl *level.Level) error
}

// Session represents an active game session.
// Choices is the replay log since the last reset; replaying it on a fresh
// engine built from Level reproduces Engine exactly.
type Session struct {
	ID             string
	LevelID        string
	Level          *level.Level
	Engine         *engine.Engine
	Choices        []engine.Choice
	History        []HistoryEntry
	CreatedAt      time.Time
	LastAccessedAt time.Time

	opts []engine.Option
}
