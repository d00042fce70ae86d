package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	log      *logrus.Entry
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(l *logrus.Entry) Option {
	return func(s *gameServiceImpl) { s.log = l }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts a new session on the given level, or on the default
// level when levelID is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lvl *level.Level
	if levelID != "" {
		var err error
		lvl, err = s.levels.LoadLevel(levelID)
		if err != nil {
			if errors.Is(err, ErrLevelNotFound) {
				return nil, s.levelNotFound(levelID)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
		}
	} else {
		levelID, lvl = s.levels.GetDefault()
	}

	// Let the session manager generate a 4-character ID
	sess, err := s.sessions.Create("", levelID, lvl)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.WithFields(logrus.Fields{"session_id": sess.ID, "level_id": levelID}).Info("session created")
	return sessionInfo(sess, true), nil
}

func (s *gameServiceImpl) levelNotFound(levelID string) error {
	available, err := s.levels.ListLevels()
	if err == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, l := range available {
			ids = append(ids, l.LevelID)
		}
		return fmt.Errorf("%w: '%s'. Available levels: %v", ErrLevelNotFound, levelID, ids)
	}
	return fmt.Errorf("%w: '%s'. Use /api/levels to list available levels", ErrLevelNotFound, levelID)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess, true), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess, false))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.WithField("session_id", sessionID).Info("session deleted")
	return nil
}

// Play runs one turn for a session
func (s *gameServiceImpl) Play(ctx context.Context, sessionID, choice string, reset bool) (*PlayResult, error) {
	c, err := engine.ParseChoice(choice)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		if err := sess.Reset(); err != nil {
			return nil, err
		}
		events = append(events, newEvent("reset", "Level reset to its initial state", engine.Position{}))
	}

	voidsBefore := sess.Engine.Voids()
	entry, err := sess.Play(c)
	if err != nil {
		return nil, err
	}

	state := sess.Snapshot()
	step := stepInfo(1, entry, state, sess.Engine.Voids() > voidsBefore)
	result := &PlayResult{
		Success:   !entry.Cancelled,
		Cancelled: entry.Cancelled,
		Choice:    c,
		State:     state,
		Message:   turnMessage(entry, state),
		Events:    append(events, turnEvents(step, state)...),
		Step:      &step,
	}

	s.persist(sessionID, "play")
	return result, nil
}

// BulkPlay runs several turns in order, stopping at the first cancelled
// turn or when the level ends
func (s *gameServiceImpl) BulkPlay(ctx context.Context, sessionID string, choices []string, reset bool) (*BulkPlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkPlayResult{
		RequestedChoices: len(choices),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	if reset {
		if err := sess.Reset(); err != nil {
			return nil, err
		}
		result.Events = append(result.Events, newEvent("reset", "Level reset to its initial state", engine.Position{}))
	}
	result.StartPosition = sess.Snapshot().PlayerPosition

	if len(choices) > MaxBulkChoices {
		result.Truncated = true
		result.Limit = MaxBulkChoices
		choices = choices[:MaxBulkChoices]
	}

	for i, raw := range choices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sess.Engine.Ended() {
			result.StoppedReason = "level already ended"
			result.StopReasonCode = outcomeCode(sess.Engine.Outcome())
			result.StoppedOnChoice = i + 1
			break
		}

		c, err := engine.ParseChoice(raw)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("choice %d invalid: %q", i+1, raw)
			result.StopReasonCode = "invalid_choice"
			result.StoppedOnChoice = i + 1
			break
		}

		voidsBefore := sess.Engine.Voids()
		entry, err := sess.Play(c)
		if err != nil {
			return nil, err
		}

		state := sess.Snapshot()
		step := stepInfo(i+1, entry, state, sess.Engine.Voids() > voidsBefore)
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, turnEvents(step, state)...)

		if entry.Cancelled {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("choice %d cancelled: %s", i+1, c)
			result.StopReasonCode = "cancelled"
			result.StoppedOnChoice = i + 1
			break
		}
		result.ChoicesExecuted++
	}

	state := sess.Snapshot()
	result.State = state
	result.EndPosition = state.PlayerPosition
	result.Ended = state.Ended
	result.Outcome = state.Outcome
	if state.Ended && result.StopReasonCode == "" {
		result.StopReasonCode = outcomeCode(state.Outcome)
	}
	result.Message = stateMessage(state)

	s.persist(sessionID, "bulk play")
	return result, nil
}

// Reset restarts the session's level
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(); err != nil {
		return nil, err
	}

	s.persist(sessionID, "reset")
	return sess.Snapshot(), nil
}

// GetGameState returns the current snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}

// GetTurnHistory returns paginated turn history
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.History
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	turns := []HistoryEntry{}
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = append(turns, history[start:end]...)
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeCell reports the tile and entities of one cell
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, row, col int) (*CellInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	grid := sess.Engine.Grid()
	pos := engine.Position{Row: row, Col: col}
	if !grid.Contains(pos) {
		return nil, fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrCellOutOfBounds, row, col, grid.Width, grid.Height)
	}

	cell := grid.ToIndex(pos)
	view := sess.Snapshot().Cells[cell]
	info := &CellInfo{
		Row:      row,
		Col:      col,
		Tile:     view.Tile,
		Obstacle: sess.Engine.TileAt(cell).IsObstacle(),
		Entities: view.Entities,
	}
	if info.Entities == nil {
		info.Entities = []engine.EntityView{}
	}

	names := make([]string, 0, len(view.Entities))
	for _, e := range view.Entities {
		names = append(names, e.Name)
	}
	info.Summary = view.Tile
	if len(names) > 0 {
		info.Summary += " with " + strings.Join(names, ", ")
	}
	return info, nil
}

// ListLevels returns the available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel loads a level by ID
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelID string) (*level.Level, error) {
	return s.levels.LoadLevel(levelID)
}

// SaveLevel validates and stores a level
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, lvl *level.Level) error {
	return s.levels.SaveLevel(levelID, lvl)
}

// getSession fetches a session and stamps its access time. Callers hold
// s.mu for writing: the stamp races with readers of LastAccessedAt otherwise.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to update last access")
	}
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"session_id": sessionID, "op": op}).Warn("failed to persist session")
	}
}

func sessionInfo(sess *Session, withLevel bool) *SessionInfo {
	info := &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		LevelName:      sess.Level.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Snapshot(),
	}
	if withLevel {
		info.Level = sess.Level
	}
	return info
}

func stepInfo(idx int, entry HistoryEntry, state *engine.Snapshot, voided bool) StepInfo {
	step := StepInfo{
		Idx:       idx,
		Choice:    entry.Choice,
		From:      entry.From,
		To:        entry.To,
		Cancelled: entry.Cancelled,
		Moved:     entry.From != entry.To,
		Voided:    voided,
		Outcome:   entry.Outcome,
	}
	if state.PlayerAlive {
		step.Tile = state.Cell(entry.To.Row, entry.To.Col).Tile
	}
	return step
}

func turnEvents(step StepInfo, state *engine.Snapshot) []GameEvent {
	if step.Cancelled {
		return []GameEvent{newEvent("cancelled", fmt.Sprintf("%s had no effect", step.Choice), step.From)}
	}

	events := []GameEvent{newEvent("turn", fmt.Sprintf("Played %s, now at (%d,%d)", step.Choice, step.To.Row, step.To.Col), step.To)}
	if step.Voided {
		events = append(events, newEvent("void", fmt.Sprintf("Void rod used, %d voids so far", state.Voids), step.To))
	}
	switch step.Outcome {
	case engine.Won:
		events = append(events, newEvent("won", "Reached the open stairs", step.To))
	case engine.Lost:
		events = append(events, newEvent("lost", "The player died", step.From))
	}
	return events
}

func newEvent(typ, msg string, pos engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   msg,
		Timestamp: time.Now(),
		Position:  pos,
	}
}

func turnMessage(entry HistoryEntry, state *engine.Snapshot) string {
	if entry.Cancelled {
		return fmt.Sprintf("%s had no effect, turn not counted", entry.Choice)
	}
	return stateMessage(state)
}

func stateMessage(state *engine.Snapshot) string {
	switch state.Outcome {
	case engine.Won:
		return fmt.Sprintf("Level complete in %d turns", state.Turns)
	case engine.Lost:
		return fmt.Sprintf("Game over after %d turns", state.Turns)
	}
	if state.StairsClosed {
		return fmt.Sprintf("Turn %d. The stairs are closed", state.Turns)
	}
	return fmt.Sprintf("Turn %d. The stairs are open", state.Turns)
}

func outcomeCode(o engine.Outcome) string {
	switch o {
	case engine.Won:
		return "won"
	case engine.Lost:
		return "lost"
	}
	return ""
}
