package mcp

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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/service"
	"github.com/wricardo/voidgrid/logger"
)

// Client is a thin MCP server that proxies every tool to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	log        *logrus.Entry
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.WithComponent("mcp"),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Void Grid",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Void Grid - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Reach the open stairs (E) without dying. Every turn you pick one choice
(Up, Down, Left, Right or Action) and every enemy, object and rule agent on
the board reacts deterministically.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage sessions
- game_state: current board, counters and outcome
- play: one turn - requires intent explanation
- bulk_play: up to 100 turns at once - requires intent explanation
- reset_game: restart the level
- turn_history: past turns with pagination
- list_levels: available levels
- game_instructions: full rules and the code legend
- describe_cell: everything on one cell

NOTE: The 'intent' parameter on play/bulk_play serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

var choiceEnum = []string{"Up", "Down", "Left", "Right", "Action"}

func withSessionID() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func withIntent(what string) mcp.ToolOption {
	return mcp.WithString("intent",
		mcp.Description("Brief explanation of the intent behind this "+what+" (serves as a rubber duck to help explain your reasoning)"),
	)
}

func withReset() mcp.ToolOption {
	return mcp.WithBoolean("reset", mcp.Description("Reset the level before playing"))
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// sessions
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session, optionally on a named level"),
		mcp.WithString("level_id", mcp.Description("Level to play (optional, see list_levels)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List active game sessions, most recently used first"),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to list")),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get a session's level, progress and outcome"),
		withSessionID(),
	), c.handleGetSession)

	// turns
	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Get the current board and counters"),
		withSessionID(),
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("play",
		mcp.WithDescription("Play one turn"),
		withSessionID(),
		mcp.WithString("choice",
			mcp.Required(),
			mcp.Enum(choiceEnum...),
			mcp.Description("Direction to move, or Action to use the void rod"),
		),
		withIntent("turn"),
		withReset(),
	), c.handlePlay)

	c.mcpServer.AddTool(mcp.NewTool("bulk_play",
		mcp.WithDescription(fmt.Sprintf("Play several turns in order (at most %d). Stops at a cancelled turn or when the level ends.", service.MaxBulkChoices)),
		withSessionID(),
		mcp.WithArray("choices",
			mcp.Required(),
			mcp.Items(map[string]interface{}{"type": "string", "enum": choiceEnum}),
			mcp.Description("Choices to play in order"),
		),
		withIntent("sequence"),
		withReset(),
	), c.handleBulkPlay)

	c.mcpServer.AddTool(mcp.NewTool("reset_game",
		mcp.WithDescription("Restart the session's level from its initial state"),
		withSessionID(),
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("turn_history",
		mcp.WithDescription("Get the turn history of a session since the last reset"),
		withSessionID(),
		mcp.WithNumber("page", mcp.Description("Page number, from 1")),
		mcp.WithNumber("limit", mcp.Description("Turns per page")),
		mcp.WithString("order", mcp.Enum("asc", "desc"), mcp.Description("Oldest (asc) or newest (desc) first")),
	), c.handleTurnHistory)

	// levels and help
	c.mcpServer.AddTool(mcp.NewTool("list_levels",
		mcp.WithDescription("List available levels"),
	), c.handleListLevels)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get the rules and the tile and entity code legend"),
	), c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.NewTool("describe_cell",
		mcp.WithDescription("Get the tile and every entity on one cell. Useful to tell stacked entities apart."),
		withSessionID(),
		mcp.WithNumber("row", mcp.Required(), mcp.Description("Row of the cell (0-based, top is 0)")),
		mcp.WithNumber("col", mcp.Required(), mcp.Description("Column of the cell (0-based, left is 0)")),
	), c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func (c *Client) toolError(tool string, err error) *mcp.CallToolResult {
	c.log.WithError(err).WithField("tool", tool).Debug("tool call failed")
	return mcp.NewToolResultError(err.Error())
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if levelID := request.GetString("level_id", ""); levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return c.toolError("create_session", err), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s (%s)\n", session.ID, session.LevelName, session.LevelID)
	if session.State != nil {
		result += "\n" + formatSnapshot(session.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Total    int                   `json:"total"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	path := "/api/sessions"
	if limit := request.GetInt("limit", 0); limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return c.toolError("list_sessions", err), nil
	}

	result := fmt.Sprintf("Active Sessions (%d of %d):\n\n", response.Count, response.Total)
	for _, s := range response.Sessions {
		status := engine.Playing
		if s.State != nil {
			status = s.State.Outcome
		}
		result += fmt.Sprintf("- %s (Level: %s, %s, Created: %s)\n",
			s.ID, s.LevelID, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return c.toolError("get_session", err), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return c.toolError("game_state", err), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&state)), nil
}

func (c *Client) handlePlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	// intent is only there to make the caller explain itself
	body := map[string]interface{}{
		"choice": request.GetString("choice", ""),
		"reset":  request.GetBool("reset", false),
	}

	var result service.PlayResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/play"), body, &result); err != nil {
		return c.toolError("play", err), nil
	}

	return mcp.NewToolResultText(formatPlayResult(&result)), nil
}

func (c *Client) handleBulkPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	raw, _ := request.GetArguments()["choices"].([]interface{})
	choices := make([]string, 0, len(raw))
	for _, v := range raw {
		if choice, ok := v.(string); ok {
			choices = append(choices, choice)
		}
	}

	body := map[string]interface{}{
		"choices": choices,
		"reset":   request.GetBool("reset", false),
	}

	var result service.BulkPlayResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-play"), body, &result); err != nil {
		return c.toolError("bulk_play", err), nil
	}

	return mcp.NewToolResultText(formatBulkPlayResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return c.toolError("reset_game", err), nil
	}

	result := response.Message
	if response.State != nil {
		result += "\n\n" + formatSnapshot(response.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return c.toolError("turn_history", err), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return c.toolError("list_levels", err), nil
	}

	result := "Available Levels:\n\n"
	for _, l := range levels {
		result += fmt.Sprintf("- %s: %s (%dx%d)\n", l.LevelID, l.Name, l.Width, l.Height)
		if l.Description != "" {
			result += fmt.Sprintf("  %s\n", l.Description)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	row := request.GetInt("row", -1)
	col := request.GetInt("col", -1)
	if row < 0 || col < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("row and col must be non-negative, got (%d,%d)", row, col)), nil
	}

	var cell service.CellInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", row, col)), nil, &cell); err != nil {
		return c.toolError("describe_cell", err), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}
