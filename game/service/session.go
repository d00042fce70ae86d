package service

import (
	"fmt"
	"time"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
)

// NewSession builds and starts the level for a new session
func NewSession(id, levelID string, lvl *level.Level, opts ...engine.Option) (*Session, error) {
	eng, err := level.Start(lvl, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start level: %w", err)
	}

	now := time.Now()
	return &Session{
		ID:             id,
		LevelID:        levelID,
		Level:          lvl,
		Engine:         eng,
		CreatedAt:      now,
		LastAccessedAt: now,
		opts:           opts,
	}, nil
}

// RestoreSession rebuilds a session by replaying a choice log
func RestoreSession(id, levelID string, lvl *level.Level, choices []engine.Choice, opts ...engine.Option) (*Session, error) {
	sess, err := NewSession(id, levelID, lvl, opts...)
	if err != nil {
		return nil, err
	}
	for i, c := range choices {
		if _, err := sess.Play(c); err != nil {
			return nil, fmt.Errorf("failed to replay choice %d (%s): %w", i+1, c, err)
		}
	}
	return sess, nil
}

// Play runs one turn and records it in the replay log and history
func (s *Session) Play(choice engine.Choice) (HistoryEntry, error) {
	if s.Engine.Ended() {
		return HistoryEntry{}, ErrLevelEnded
	}
	from := s.playerPosition()

	if _, err := s.Engine.Play(choice); err != nil {
		return HistoryEntry{}, err
	}

	entry := HistoryEntry{
		Turn:      len(s.History) + 1,
		Choice:    choice,
		Cancelled: s.Engine.LastCancelled(),
		From:      from,
		To:        s.playerPosition(),
		Outcome:   s.Engine.Outcome(),
		Timestamp: time.Now(),
	}
	s.Choices = append(s.Choices, choice)
	s.History = append(s.History, entry)
	return entry, nil
}

// Reset rebuilds the level from scratch and clears the log
func (s *Session) Reset() error {
	eng, err := level.Start(s.Level, s.opts...)
	if err != nil {
		return fmt.Errorf("failed to restart level: %w", err)
	}
	s.Engine = eng
	s.Choices = nil
	s.History = nil
	return nil
}

// Snapshot returns the current engine state
func (s *Session) Snapshot() *engine.Snapshot {
	snap := s.Engine.Snapshot()
	return &snap
}

func (s *Session) playerPosition() engine.Position {
	if cell, ok := s.Engine.IndexOf(s.Engine.PlayerID()); ok {
		return s.Engine.Grid().ToPosition(cell)
	}
	// the player is gone after a fall or a kill
	return engine.Position{Row: -1, Col: -1}
}
