package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/service"
)

// Client drives one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// NewClient returns a client for the API at baseURL with no session yet
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateSession starts a session on levelID; empty means the server default
func (c *Client) CreateSession(ctx context.Context, levelID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"level_id": levelID}, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// GetSession fetches the session with its level document
func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.path(""), nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

// Reset restarts the session's level
func (c *Client) Reset(ctx context.Context) (*engine.Snapshot, error) {
	var resp struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, c.path("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// Play plays one choice
func (c *Client) Play(ctx context.Context, choice engine.Choice) (*service.PlayResult, error) {
	var result service.PlayResult
	if err := c.do(ctx, http.MethodPost, c.path("/play"), map[string]string{"choice": choice.String()}, &result); err != nil {
		return nil, fmt.Errorf("play %s: %w", choice, err)
	}
	return &result, nil
}

// BulkPlay sends choices in chunks the server accepts and stops at the
// first chunk that does not run to completion
func (c *Client) BulkPlay(ctx context.Context, choices []engine.Choice) (*service.BulkPlayResult, error) {
	var last *service.BulkPlayResult

	for start := 0; start < len(choices); start += service.MaxBulkChoices {
		end := min(start+service.MaxBulkChoices, len(choices))

		names := make([]string, 0, end-start)
		for _, ch := range choices[start:end] {
			names = append(names, ch.String())
		}

		var result service.BulkPlayResult
		if err := c.do(ctx, http.MethodPost, c.path("/bulk-play"), map[string]interface{}{"choices": names}, &result); err != nil {
			return nil, fmt.Errorf("bulk play: %w", err)
		}
		last = &result
		if result.ChoicesExecuted < len(names) || result.Ended {
			break
		}
	}

	return last, nil
}

func (c *Client) path(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s - %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
