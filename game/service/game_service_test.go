package service_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
	"github.com/wricardo/voidgrid/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id, levelID string, lvl *level.Level) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, service.ErrSessionAlreadyExists
	}

	sess, err := service.NewSession(id, levelID, lvl)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	sess, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error { return nil }

func (m *MockSessionManager) Save(id string) error {
	m.saves++
	return nil
}

// MockLevelManager implements service.LevelManager for testing
type MockLevelManager struct {
	levels map[string]*level.Level
}

func NewMockLevelManager() *MockLevelManager {
	return &MockLevelManager{
		levels: map[string]*level.Level{
			"corridor": {
				Name:     "Corridor",
				Width:    4,
				Tiles:    []string{".,.,.,E", "W,W,W,W"},
				Entities: []string{"P,.,.,.", ".,.,.,."},
			},
			"pit": {
				Name:     "Pit",
				Width:    3,
				Tiles:    []string{".,_,E"},
				Entities: []string{"P,.,."},
			},
		},
	}
}

func (m *MockLevelManager) LoadLevel(id string) (*level.Level, error) {
	l, ok := m.levels[id]
	if !ok {
		return nil, service.ErrLevelNotFound
	}
	return l, nil
}

func (m *MockLevelManager) ListLevels() ([]*service.LevelInfo, error) {
	var infos []*service.LevelInfo
	for _, id := range []string{"corridor", "pit"} {
		l := m.levels[id]
		infos = append(infos, &service.LevelInfo{LevelID: id, Name: l.Name, Width: l.Width, Height: l.Height()})
	}
	return infos, nil
}

func (m *MockLevelManager) GetDefault() (string, *level.Level) {
	return "corridor", m.levels["corridor"]
}

func (m *MockLevelManager) SaveLevel(id string, l *level.Level) error {
	if err := level.Validate(l); err != nil {
		return err
	}
	m.levels[id] = l
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockLevelManager()), sessions
}

func TestGameService_CreateSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("default level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.LevelID != "corridor" || info.LevelName != "Corridor" {
			t.Errorf("Expected default corridor level, got %s (%s)", info.LevelID, info.LevelName)
		}
		if info.State == nil || info.State.Width != 4 {
			t.Errorf("Expected a 4-wide snapshot, got %+v", info.State)
		}
	})

	t.Run("named level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "pit")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.LevelID != "pit" {
			t.Errorf("Expected pit, got %s", info.LevelID)
		}
	})

	t.Run("unknown level lists alternatives", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "nope")
		if !errors.Is(err, service.ErrLevelNotFound) {
			t.Fatalf("Expected ErrLevelNotFound, got %v", err)
		}
		if want := "[corridor pit]"; !containsString(err.Error(), want) {
			t.Errorf("Expected %q in %q", want, err.Error())
		}
	})
}

func TestGameService_CreateSessionLogsLevelID(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	svc := service.NewGameService(NewMockSessionManager(), NewMockLevelManager(), service.WithLogger(logrus.NewEntry(log)))

	if _, err := svc.CreateSession(context.Background(), "pit"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected a log entry for the new session")
	}
	if got := entry.Data["level_id"]; got != "pit" {
		t.Errorf("Expected level_id pit, got %v", got)
	}
	if _, clash := entry.Data["level"]; clash {
		t.Error("Expected no field named level, logrus reserves it")
	}
}

func TestGameService_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("walking", func(t *testing.T) {
		svc, sessions := newTestService(t)
		info, _ := svc.CreateSession(ctx, "corridor")

		result, err := svc.Play(ctx, info.ID, "right", false)
		if err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		if !result.Success || result.Cancelled {
			t.Errorf("Expected a counted turn, got %+v", result)
		}
		if result.State.PlayerPosition != (engine.Position{Row: 0, Col: 1}) {
			t.Errorf("Expected player at (0,1), got %+v", result.State.PlayerPosition)
		}
		if result.Step == nil || !result.Step.Moved || result.Step.Tile != engine.TileNormal {
			t.Errorf("Unexpected step %+v", result.Step)
		}
		if len(result.Events) == 0 || result.Events[0].ID == "" {
			t.Errorf("Expected events with IDs, got %+v", result.Events)
		}
		if sessions.saves != 1 {
			t.Errorf("Expected the session to be persisted once, got %d", sessions.saves)
		}
	})

	t.Run("cancelled action", func(t *testing.T) {
		svc, _ := newTestService(t)
		info, _ := svc.CreateSession(ctx, "corridor")

		result, err := svc.Play(ctx, info.ID, "action", false)
		if err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		if result.Success || !result.Cancelled {
			t.Errorf("Expected a cancelled turn, got %+v", result)
		}
		if result.State.Turns != 0 {
			t.Errorf("Expected no turn counted, got %d", result.State.Turns)
		}
		if result.Events[0].Type != "cancelled" {
			t.Errorf("Expected cancelled event, got %s", result.Events[0].Type)
		}
	})

	t.Run("winning and playing after the end", func(t *testing.T) {
		svc, _ := newTestService(t)
		info, _ := svc.CreateSession(ctx, "corridor")

		var result *service.PlayResult
		for i := 0; i < 3; i++ {
			var err error
			result, err = svc.Play(ctx, info.ID, "Right", false)
			if err != nil {
				t.Fatalf("Play %d failed: %v", i+1, err)
			}
		}
		if result.State.Outcome != engine.Won {
			t.Fatalf("Expected win, got %s", result.State.Outcome)
		}
		if last := result.Events[len(result.Events)-1]; last.Type != "won" {
			t.Errorf("Expected won event, got %s", last.Type)
		}

		if _, err := svc.Play(ctx, info.ID, "right", false); !errors.Is(err, service.ErrLevelEnded) {
			t.Errorf("Expected ErrLevelEnded, got %v", err)
		}

		result, err := svc.Play(ctx, info.ID, "right", true)
		if err != nil {
			t.Fatalf("Play with reset failed: %v", err)
		}
		if result.Events[0].Type != "reset" || result.State.Turns != 1 {
			t.Errorf("Expected reset then one turn, got %+v", result.Events)
		}
	})

	t.Run("invalid choice", func(t *testing.T) {
		svc, _ := newTestService(t)
		info, _ := svc.CreateSession(ctx, "corridor")

		if _, err := svc.Play(ctx, info.ID, "jump", false); !errors.Is(err, engine.ErrUnknownChoice) {
			t.Errorf("Expected ErrUnknownChoice, got %v", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.Play(ctx, "zzzz", "up", false); !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestGameService_BulkPlay(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		level        string
		choices      []string
		wantExecuted int
		wantCode     string
		wantStopped  int
		wantSuccess  bool
		wantOutcome  engine.Outcome
	}{
		{
			name:         "all choices played",
			level:        "corridor",
			choices:      []string{"right", "up", "right"},
			wantExecuted: 3,
			wantSuccess:  true,
			wantOutcome:  engine.Playing,
		},
		{
			name:         "stops on a cancelled turn",
			level:        "corridor",
			choices:      []string{"right", "action", "right"},
			wantExecuted: 1,
			wantCode:     "cancelled",
			wantStopped:  2,
			wantOutcome:  engine.Playing,
		},
		{
			name:         "stops on an invalid choice",
			level:        "corridor",
			choices:      []string{"right", "fly"},
			wantExecuted: 1,
			wantCode:     "invalid_choice",
			wantStopped:  2,
			wantOutcome:  engine.Playing,
		},
		{
			name:         "stops after a win",
			level:        "corridor",
			choices:      []string{"right", "right", "right", "left"},
			wantExecuted: 3,
			wantCode:     "won",
			wantStopped:  4,
			wantSuccess:  true,
			wantOutcome:  engine.Won,
		},
		{
			name:         "falling loses",
			level:        "pit",
			choices:      []string{"right", "right"},
			wantExecuted: 1,
			wantCode:     "lost",
			wantStopped:  2,
			wantSuccess:  true,
			wantOutcome:  engine.Lost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			info, _ := svc.CreateSession(ctx, tt.level)

			result, err := svc.BulkPlay(ctx, info.ID, tt.choices, false)
			if err != nil {
				t.Fatalf("BulkPlay failed: %v", err)
			}
			if result.ChoicesExecuted != tt.wantExecuted {
				t.Errorf("Expected %d executed, got %d", tt.wantExecuted, result.ChoicesExecuted)
			}
			if result.StopReasonCode != tt.wantCode {
				t.Errorf("Expected stop code %q, got %q", tt.wantCode, result.StopReasonCode)
			}
			if result.StoppedOnChoice != tt.wantStopped {
				t.Errorf("Expected stop on %d, got %d", tt.wantStopped, result.StoppedOnChoice)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Expected success=%v, got %v", tt.wantSuccess, result.Success)
			}
			if result.Outcome != tt.wantOutcome {
				t.Errorf("Expected outcome %s, got %s", tt.wantOutcome, result.Outcome)
			}
		})
	}
}

func TestGameService_BulkPlayTruncates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "corridor")

	choices := make([]string, service.MaxBulkChoices+10)
	for i := range choices {
		choices[i] = "up"
	}

	result, err := svc.BulkPlay(ctx, info.ID, choices, false)
	if err != nil {
		t.Fatalf("BulkPlay failed: %v", err)
	}
	if !result.Truncated || result.Limit != service.MaxBulkChoices {
		t.Errorf("Expected truncation to %d, got %+v", service.MaxBulkChoices, result.Limit)
	}
	if result.ChoicesExecuted != service.MaxBulkChoices {
		t.Errorf("Expected %d executed, got %d", service.MaxBulkChoices, result.ChoicesExecuted)
	}
}

func TestGameService_GetTurnHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "corridor")

	if _, err := svc.BulkPlay(ctx, info.ID, []string{"up", "right", "up", "right", "up"}, false); err != nil {
		t.Fatalf("BulkPlay failed: %v", err)
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantTurns []int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"defaults are newest first", service.HistoryOptions{}, []int{5, 4, 3, 2, 1}, 1, false, false},
		{"ascending page 1", service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"}, []int{1, 2}, 3, true, false},
		{"ascending page 3", service.HistoryOptions{Page: 3, Limit: 2, Order: "asc"}, []int{5}, 3, false, true},
		{"descending page 2", service.HistoryOptions{Page: 2, Limit: 2, Order: "desc"}, []int{3, 2}, 3, true, true},
		{"past the end", service.HistoryOptions{Page: 9, Limit: 2, Order: "asc"}, []int{}, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := svc.GetTurnHistory(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("GetTurnHistory failed: %v", err)
			}
			got := []int{}
			for _, h := range history.Turns {
				got = append(got, h.Turn)
			}
			if !reflect.DeepEqual(got, tt.wantTurns) {
				t.Errorf("Expected turns %v, got %v", tt.wantTurns, got)
			}
			if history.TotalTurns != 5 || history.TotalPages != tt.wantPages {
				t.Errorf("Expected 5 turns over %d pages, got %d over %d", tt.wantPages, history.TotalTurns, history.TotalPages)
			}
			if history.HasNext != tt.wantNext || history.HasPrevious != tt.wantPrev {
				t.Errorf("Expected next=%v prev=%v, got %v %v", tt.wantNext, tt.wantPrev, history.HasNext, history.HasPrevious)
			}
		})
	}
}

func TestGameService_Reset(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "corridor")

	svc.Play(ctx, info.ID, "right", false)
	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Turns != 0 || state.PlayerPosition != (engine.Position{}) {
		t.Errorf("Expected fresh state, got turns=%d pos=%+v", state.Turns, state.PlayerPosition)
	}
	if sess := sessions.sessions[info.ID]; len(sess.Choices) != 0 || len(sess.History) != 0 {
		t.Errorf("Expected cleared log, got %v", sess.Choices)
	}
}

func TestGameService_ListAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, _ := svc.CreateSession(ctx, "corridor")
	svc.CreateSession(ctx, "pit")

	list, err := svc.ListSessions(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("Expected 2 sessions, got %d (%v)", len(list), err)
	}
	for _, info := range list {
		if info.Level != nil {
			t.Error("Expected list entries without the level document")
		}
	}

	if err := svc.DeleteSession(ctx, a.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, a.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_DescribeCell(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "corridor")

	cell, err := svc.DescribeCell(ctx, info.ID, 0, 0)
	if err != nil {
		t.Fatalf("DescribeCell failed: %v", err)
	}
	if cell.Tile != engine.TileNormal || len(cell.Entities) != 1 || cell.Entities[0].Name != engine.EntityPlayer {
		t.Errorf("Unexpected cell %+v", cell)
	}
	if cell.Summary != "normal with player" {
		t.Errorf("Unexpected summary %q", cell.Summary)
	}

	wall, _ := svc.DescribeCell(ctx, info.ID, 1, 2)
	if !wall.Obstacle {
		t.Error("Expected wall to be an obstacle")
	}

	if _, err := svc.DescribeCell(ctx, info.ID, 5, 0); !errors.Is(err, service.ErrCellOutOfBounds) {
		t.Errorf("Expected ErrCellOutOfBounds, got %v", err)
	}
}

func TestRestoreSessionReplaysChoices(t *testing.T) {
	levels := NewMockLevelManager()
	lvl, _ := levels.LoadLevel("corridor")

	live, err := service.NewSession("abcd", "corridor", lvl)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	for _, c := range []engine.Choice{engine.ChoiceRight, engine.ChoiceAction, engine.ChoiceRight} {
		if _, err := live.Play(c); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
	}

	restored, err := service.RestoreSession("abcd", "corridor", lvl, live.Choices)
	if err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	if restored.Engine.Fingerprint() != live.Engine.Fingerprint() {
		t.Error("Expected replay to reproduce the engine state")
	}
	if !reflect.DeepEqual(*restored.Snapshot(), *live.Snapshot()) {
		t.Error("Expected identical snapshots after replay")
	}
	if len(restored.History) != 3 || !restored.History[1].Cancelled {
		t.Errorf("Expected rebuilt history with the cancelled action, got %+v", restored.History)
	}
}

func containsString(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
