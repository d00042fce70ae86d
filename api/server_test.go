package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/voidgrid/game/config"
	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
	"github.com/wricardo/voidgrid/game/service"
	"github.com/wricardo/voidgrid/game/session"
	"github.com/wricardo/voidgrid/transport/websocket"
)

func corridorLevel() *level.Level {
	return &level.Level{
		Name:        "Corridor",
		Description: "walk right",
		Width:       4,
		Tiles:       []string{".,.,.,E", "W,W,W,W"},
		Entities:    []string{"P,.,.,.", ".,.,.,."},
	}
}

// newTestServer wires the real service stack over a temporary level directory
func newTestServer(t *testing.T) (*Server, *websocket.Hub) {
	t.Helper()
	dir := t.TempDir()
	if err := level.Save(filepath.Join(dir, "intro.json"), corridorLevel()); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	levels, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create level manager: %v", err)
	}

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	svc := service.NewGameService(session.NewManager(), levels)
	return NewServer(svc, hub), hub
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doRequest(t, h, "POST", "/api/sessions", map[string]string{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var info service.SessionInfo
	decode(t, rec, &info)
	return info.ID
}

func TestCreateSession(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantLevel  string
	}{
		{name: "default level", body: map[string]string{}, wantStatus: http.StatusCreated, wantLevel: "intro"},
		{name: "named level", body: map[string]string{"level_id": "intro"}, wantStatus: http.StatusCreated, wantLevel: "intro"},
		{name: "empty body", body: nil, wantStatus: http.StatusCreated, wantLevel: "intro"},
		{name: "unknown level", body: map[string]string{"level_id": "nope"}, wantStatus: http.StatusNotFound},
		{name: "malformed body", body: "{", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, "POST", "/api/sessions", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantLevel == "" {
				return
			}
			var info service.SessionInfo
			decode(t, rec, &info)
			if info.LevelID != tt.wantLevel || info.State == nil {
				t.Errorf("Unexpected session %+v", info)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server)

	if rec := doRequest(t, server, "GET", "/api/sessions/"+id, nil); rec.Code != http.StatusOK {
		t.Fatalf("Get: expected 200, got %d", rec.Code)
	}

	rec := doRequest(t, server, "GET", "/api/sessions/"+id+"/state", nil)
	var state engine.Snapshot
	decode(t, rec, &state)
	if state.Width != 4 || state.Outcome != engine.Playing {
		t.Errorf("Unexpected state %+v", state)
	}

	if rec := doRequest(t, server, "DELETE", "/api/sessions/"+id, nil); rec.Code != http.StatusOK {
		t.Fatalf("Delete: expected 200, got %d", rec.Code)
	}
	rec = doRequest(t, server, "GET", "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 after delete, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] == "" {
		t.Error("Expected error message in body")
	}
}

func TestListSessions(t *testing.T) {
	server, _ := newTestServer(t)
	for i := 0; i < 3; i++ {
		createSession(t, server)
		time.Sleep(2 * time.Millisecond)
	}

	tests := []struct {
		query     string
		wantCount int
		wantSort  string
		wantOrder string
	}{
		{query: "", wantCount: 3, wantSort: "accessed", wantOrder: "desc"},
		{query: "?sort=created&order=asc", wantCount: 3, wantSort: "created", wantOrder: "asc"},
		{query: "?limit=2", wantCount: 2, wantSort: "accessed", wantOrder: "desc"},
		{query: "?limit=bad", wantCount: 3, wantSort: "accessed", wantOrder: "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := doRequest(t, server, "GET", "/api/sessions"+tt.query, nil)
			var body struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sort     string                 `json:"sort"`
				Order    string                 `json:"order"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			decode(t, rec, &body)
			if body.Count != tt.wantCount || len(body.Sessions) != tt.wantCount {
				t.Errorf("Expected %d sessions, got %d", tt.wantCount, body.Count)
			}
			if body.Total != 3 {
				t.Errorf("Expected total 3, got %d", body.Total)
			}
			if body.Sort != tt.wantSort || body.Order != tt.wantOrder {
				t.Errorf("Expected %s/%s, got %s/%s", tt.wantSort, tt.wantOrder, body.Sort, body.Order)
			}
		})
	}

	rec := doRequest(t, server, "GET", "/api/sessions?sort=created&order=asc", nil)
	var body struct {
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	decode(t, rec, &body)
	for i := 1; i < len(body.Sessions); i++ {
		if body.Sessions[i].CreatedAt.Before(body.Sessions[i-1].CreatedAt) {
			t.Error("Expected ascending creation order")
		}
	}
}

func TestPlay(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{name: "valid choice", body: map[string]string{"choice": "right"}, wantStatus: http.StatusOK},
		{name: "unknown choice", body: map[string]string{"choice": "jump"}, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: "not json", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, "POST", "/api/sessions/"+id+"/play", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	rec := doRequest(t, server, "POST", "/api/sessions/nope/play", map[string]string{"choice": "up"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", rec.Code)
	}
}

func TestPlayToTheEnd(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server)

	rec := doRequest(t, server, "POST", "/api/sessions/"+id+"/bulk-play",
		map[string][]string{"choices": {"Right", "Right", "Right", "Right"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result service.BulkPlayResult
	decode(t, rec, &result)
	if result.ChoicesExecuted != 3 || result.StopReasonCode != "won" {
		t.Errorf("Expected win after 3 choices, got %d (%s)", result.ChoicesExecuted, result.StopReasonCode)
	}

	rec = doRequest(t, server, "POST", "/api/sessions/"+id+"/play", map[string]string{"choice": "Left"})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 after the end, got %d", rec.Code)
	}

	rec = doRequest(t, server, "POST", "/api/sessions/"+id+"/play", map[string]interface{}{"choice": "Left", "reset": true})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected reset play to succeed, got %d", rec.Code)
	}

	rec = doRequest(t, server, "GET", "/api/sessions/"+id+"/history?order=asc", nil)
	var history service.HistoryResponse
	decode(t, rec, &history)
	if history.TotalTurns != 1 {
		t.Errorf("Expected history cleared by reset, got %d turns", history.TotalTurns)
	}
}

func TestResetAndHistory(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server)

	for _, c := range []string{"Right", "Right"} {
		doRequest(t, server, "POST", "/api/sessions/"+id+"/play", map[string]string{"choice": c})
	}

	rec := doRequest(t, server, "GET", "/api/sessions/"+id+"/history?page=1&limit=1&order=asc", nil)
	var history service.HistoryResponse
	decode(t, rec, &history)
	if history.TotalTurns != 2 || len(history.Turns) != 1 || !history.HasNext {
		t.Errorf("Unexpected history page %+v", history)
	}

	rec = doRequest(t, server, "POST", "/api/sessions/"+id+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Reset: expected 200, got %d", rec.Code)
	}
	var body struct {
		State *engine.Snapshot `json:"state"`
	}
	decode(t, rec, &body)
	if body.State == nil || body.State.Turns != 0 {
		t.Errorf("Expected fresh state after reset, got %+v", body.State)
	}
}

func TestDescribeCell(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/cells/0/0", wantStatus: http.StatusOK},
		{path: "/cells/9/9", wantStatus: http.StatusBadRequest},
		{path: "/cells/a/0", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doRequest(t, server, "GET", "/api/sessions/"+id+tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}

	rec := doRequest(t, server, "GET", "/api/sessions/"+id+"/cells/0/0", nil)
	var cell service.CellInfo
	decode(t, rec, &cell)
	if !strings.Contains(cell.Summary, "player") {
		t.Errorf("Expected player in summary, got %q", cell.Summary)
	}
}

func TestLevels(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, "GET", "/api/levels", nil)
	var levels []*service.LevelInfo
	decode(t, rec, &levels)
	if len(levels) != 1 || levels[0].LevelID != "intro" {
		t.Fatalf("Unexpected levels %+v", levels)
	}

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{name: "valid level", body: map[string]interface{}{"name": "second", "level": corridorLevel()}, wantStatus: http.StatusCreated},
		{name: "name from level", body: map[string]interface{}{"level": corridorLevel()}, wantStatus: http.StatusCreated},
		{name: "missing level", body: map[string]string{"name": "x"}, wantStatus: http.StatusBadRequest},
		{name: "invalid level", body: map[string]interface{}{"name": "bad", "level": level.Level{Name: "bad", Width: 1, Tiles: []string{"?"}, Entities: []string{"P"}}}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, "POST", "/api/levels", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	rec = doRequest(t, server, "GET", "/api/levels/second.json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected saved level, got %d", rec.Code)
	}
	var lvl level.Level
	decode(t, rec, &lvl)
	if lvl.Width != 4 {
		t.Errorf("Expected width 4, got %d", lvl.Width)
	}

	if rec := doRequest(t, server, "GET", "/api/levels/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing level, got %d", rec.Code)
	}

	rec = doRequest(t, server, "GET", "/api/schema/level", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "entities") {
		t.Errorf("Expected level schema, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, "GET", "/api/health", nil)
	var body map[string]string
	decode(t, rec, &body)
	if rec.Code != http.StatusOK || body["status"] != "healthy" {
		t.Errorf("Unexpected health response %d %v", rec.Code, body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session x: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrLevelNotFound, http.StatusNotFound},
		{service.ErrLevelEnded, http.StatusConflict},
		{service.ErrSessionAlreadyExists, http.StatusConflict},
		{fmt.Errorf("%w: \"jump\"", engine.ErrUnknownChoice), http.StatusBadRequest},
		{level.ErrInvalidLevel, http.StatusBadRequest},
		{service.ErrCellOutOfBounds, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWebSocketBroadcastOnPlay(t *testing.T) {
	server, hub := newTestServer(t)
	id := createSession(t, server)

	ts := httptest.NewServer(server)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + id
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	read := func() websocket.Message {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var msg websocket.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		return msg
	}

	if initial := read(); initial.State == nil || initial.State.Turns != 0 {
		t.Fatalf("Expected initial snapshot, got %+v", initial)
	}
	if hub.ClientCount(id) != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", hub.ClientCount(id))
	}

	doRequest(t, server, "POST", "/api/sessions/"+id+"/play", map[string]string{"choice": "Right"})

	update := read()
	if update.Event != websocket.EventStateUpdate || update.State == nil || update.State.Turns != 1 {
		t.Errorf("Expected state update after play, got %+v", update)
	}
}

func TestWebSocketRequiresSession(t *testing.T) {
	server, _ := newTestServer(t)

	if rec := doRequest(t, server, "GET", "/ws", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without session, got %d", rec.Code)
	}
	if rec := doRequest(t, server, "GET", "/ws?session=nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", rec.Code)
	}
}
