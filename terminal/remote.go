package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/service"
	ws "github.com/wricardo/voidgrid/transport/websocket"
)

// RemoteGame plays a session hosted by a running server
type RemoteGame struct {
	baseURL    string
	sessionID  string
	levelName  string
	httpClient *http.Client
	dialer     *websocket.Dialer
	log        *logrus.Entry
}

// CreateRemoteGame starts a new session for levelID on the server at
// baseURL. An empty levelID uses the server default.
func CreateRemoteGame(ctx context.Context, baseURL, levelID string, log *logrus.Entry) (*RemoteGame, error) {
	g := newRemoteGame(baseURL, "", log)

	var info service.SessionInfo
	if err := g.call(ctx, http.MethodPost, "/api/sessions", map[string]string{"level_id": levelID}, &info); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	g.sessionID = info.ID
	g.levelName = info.LevelName
	return g, nil
}

// JoinRemoteGame attaches to an existing session
func JoinRemoteGame(ctx context.Context, baseURL, sessionID string, log *logrus.Entry) (*RemoteGame, error) {
	g := newRemoteGame(baseURL, sessionID, log)

	var info service.SessionInfo
	if err := g.call(ctx, http.MethodGet, g.sessionPath(""), nil, &info); err != nil {
		return nil, fmt.Errorf("failed to join session %s: %w", sessionID, err)
	}
	g.levelName = info.LevelName
	return g, nil
}

func newRemoteGame(baseURL, sessionID string, log *logrus.Entry) *RemoteGame {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RemoteGame{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
		log:        log.WithField("component", "remote-game"),
	}
}

// SessionID returns the id of the session being played
func (g *RemoteGame) SessionID() string { return g.sessionID }

// Title is the level name followed by the session ID
func (g *RemoteGame) Title() string {
	return fmt.Sprintf("%s [%s]", g.levelName, g.sessionID)
}

func (g *RemoteGame) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := g.call(ctx, http.MethodGet, g.sessionPath("/state"), nil, &snap)
	return snap, err
}

// Play posts one choice and returns the resulting state
func (g *RemoteGame) Play(ctx context.Context, choice engine.Choice) (engine.Snapshot, error) {
	var result service.PlayResult
	if err := g.call(ctx, http.MethodPost, g.sessionPath("/play"), map[string]string{"choice": choice.String()}, &result); err != nil {
		return engine.Snapshot{}, err
	}
	if result.State == nil {
		return engine.Snapshot{}, fmt.Errorf("play response has no state")
	}
	return *result.State, nil
}

func (g *RemoteGame) Reset(ctx context.Context) (engine.Snapshot, error) {
	var result struct {
		State *engine.Snapshot `json:"state"`
	}
	if err := g.call(ctx, http.MethodPost, g.sessionPath("/reset"), nil, &result); err != nil {
		return engine.Snapshot{}, err
	}
	if result.State == nil {
		return engine.Snapshot{}, fmt.Errorf("reset response has no state")
	}
	return *result.State, nil
}

// Watch follows the session over the server's WebSocket hub
func (g *RemoteGame) Watch(ctx context.Context, update func(engine.Snapshot)) error {
	wsURL, err := g.wsURL()
	if err != nil {
		return err
	}

	conn, _, err := g.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	g.log.WithField("session_id", g.sessionID).Debug("websocket connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("websocket read: %w", err)
		}

		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			g.log.WithError(err).Warn("invalid websocket message")
			continue
		}
		if msg.State == nil {
			continue
		}
		update(*msg.State)
	}
}

func (g *RemoteGame) wsURL() (string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", g.baseURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session", g.sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (g *RemoteGame) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(g.sessionID) + suffix
}

func (g *RemoteGame) call(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	return json.Unmarshal(data, result)
}
