package service

import (
	"time"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
)

// MaxBulkChoices caps the number of choices a single bulk call may play
const MaxBulkChoices = 100

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	LevelID        string           `json:"level_id"`
	LevelName      string           `json:"level_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	State          *engine.Snapshot `json:"state"`
	Level          *level.Level     `json:"level,omitempty"`
}

// PlayResult contains the result of a single turn
type PlayResult struct {
	Success   bool             `json:"success"`
	Cancelled bool             `json:"cancelled"`
	Choice    engine.Choice    `json:"choice"`
	State     *engine.Snapshot `json:"state"`
	Message   string           `json:"message"`
	Events    []GameEvent      `json:"events,omitempty"`
	Step      *StepInfo        `json:"step,omitempty"`
}

// BulkPlayResult contains the result of several turns played in order
type BulkPlayResult struct {
	ChoicesExecuted  int              `json:"choices_executed"`
	RequestedChoices int              `json:"requested_choices"`
	Success          bool             `json:"success"`
	State            *engine.Snapshot `json:"state"`
	Events           []GameEvent      `json:"events"`
	StoppedReason    string           `json:"stopped_reason,omitempty"`
	StopReasonCode   string           `json:"stop_reason_code,omitempty"` // cancelled|invalid_choice|won|lost
	StoppedOnChoice  int              `json:"stopped_on_choice,omitempty"`
	Truncated        bool             `json:"truncated,omitempty"`
	Limit            int              `json:"limit,omitempty"`

	StartPosition engine.Position `json:"start_position"`
	EndPosition   engine.Position `json:"end_position"`
	Steps         []StepInfo      `json:"steps,omitempty"`

	Ended   bool           `json:"ended"`
	Outcome engine.Outcome `json:"outcome"`
	Message string         `json:"message,omitempty"`
}

// StepInfo is a compact record of one played turn
type StepInfo struct {
	Idx       int             `json:"idx"`
	Choice    engine.Choice   `json:"choice"`
	From      engine.Position `json:"from"`
	To        engine.Position `json:"to"`
	Tile      string          `json:"tile"`
	Cancelled bool            `json:"cancelled,omitempty"`
	Moved     bool            `json:"moved,omitempty"`
	Voided    bool            `json:"voided,omitempty"`
	Outcome   engine.Outcome  `json:"outcome"`
}

// GameEvent represents something that happened during play
type GameEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"` // "turn", "cancelled", "void", "won", "lost", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position"`
}

// HistoryEntry records one played turn of a session
type HistoryEntry struct {
	Turn      int             `json:"turn"`
	Choice    engine.Choice   `json:"choice"`
	Cancelled bool            `json:"cancelled"`
	From      engine.Position `json:"from"`
	To        engine.Position `json:"to"`
	Outcome   engine.Outcome  `json:"outcome"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []HistoryEntry `json:"turns"`
	TotalTurns  int            `json:"total_turns"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// LevelInfo describes a level file available to new sessions
type LevelInfo struct {
	Filename    string `json:"filename"`
	LevelID     string `json:"level_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// CellInfo describes one board cell for clients that cannot render the grid
type CellInfo struct {
	Row      int                 `json:"row"`
	Col      int                 `json:"col"`
	Tile     string              `json:"tile"`
	Obstacle bool                `json:"obstacle"`
	Entities []engine.EntityView `json:"entities"`
	Summary  string              `json:"summary"`
}
