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
	"unicode"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/tmge/game/engine"
	"github.com/wricardo/tmge/game/service"
)

// maxBatchInputs caps send_inputs so one tool call cannot flood a session
const maxBatchInputs = 50

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Matching Game Engine",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Matching Game Engine - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAMES:
- tetris: falling blocks, clear full rows. Keys LEFT RIGHT DOWN UP(rotate) SPACE(hard drop)
- candycrush: swap adjacent candies to make lines of three by selecting two neighbouring cells

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- get_display: Render the current board
- send_input: Send one key, cell selection or switch_player action
- send_inputs: Send several keys in order
- control_session: start, pause or stop a game
- tick: Advance the game clock once
- list_configs: List available configurations
- leaderboard: Top final scores for a variant
- game_instructions: Get rules and scoring for both games

Games must be started with control_session before they accept input.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session with optional config selection"),
		mcp.WithString("config_id", mcp.Description("Config to use, e.g. tetris or candycrush_duel (optional)")),
		mcp.WithArray("players", mcp.Description("Player names (optional)"), mcp.WithStringItems()),
		mcp.WithBoolean("auto_start", mcp.Description("Start the game immediately")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
		mcp.WithString("variant", mcp.Description("Only list sessions of this variant"), mcp.Enum("tetris", "candycrush")),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID to retrieve")),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.NewTool("get_display",
		mcp.WithDescription("Render the current board, score and players"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleGetDisplay)

	c.mcpServer.AddTool(mcp.NewTool("send_input",
		mcp.WithDescription("Send one input: a key, a cell selection (row and col) or the switch_player action"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("key", mcp.Description("Key to press"), mcp.Enum("LEFT", "RIGHT", "DOWN", "UP", "SPACE", "TAB")),
		mcp.WithNumber("row", mcp.Description("Row of the cell to select (candycrush)"), mcp.Min(0)),
		mcp.WithNumber("col", mcp.Description("Column of the cell to select (candycrush)"), mcp.Min(0)),
		mcp.WithString("action", mcp.Description("Non-key action"), mcp.Enum(service.ActionSwitchPlayer)),
	), c.handleSendInput)

	c.mcpServer.AddTool(mcp.NewTool("send_inputs",
		mcp.WithDescription("Send several keys in order, stopping at the first rejected request"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithArray("keys", mcp.Required(), mcp.Description("Keys to press"),
			mcp.WithStringEnumItems([]string{"LEFT", "RIGHT", "DOWN", "UP", "SPACE", "TAB"}),
			mcp.MaxItems(maxBatchInputs)),
	), c.handleSendInputs)

	c.mcpServer.AddTool(mcp.NewTool("control_session",
		mcp.WithDescription("Start, pause or stop a game"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("action", mcp.Required(), mcp.Enum("start", "pause", "stop")),
	), c.handleControl)

	c.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Advance the game clock once (gravity, timers)"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), c.handleTick)

	// Configuration
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available game configurations"),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("leaderboard",
		mcp.WithDescription("Top final scores for a game variant"),
		mcp.WithString("variant", mcp.Required(), mcp.Enum("tetris", "candycrush")),
		mcp.WithNumber("limit", mcp.Description("Number of entries (default 10)"), mcp.Min(1), mcp.Max(100)),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get rules, controls and scoring for both games"),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Serve runs the MCP server over stdio until stdin closes
func (c *Client) Serve() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
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

func sessionPath(sessionID string, parts ...string) string {
	p := "/api/sessions/" + url.PathEscape(sessionID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := service.CreateSessionRequest{
		ConfigID:  request.GetString("config_id", ""),
		Players:   request.GetStringSlice("players", nil),
		AutoStart: request.GetBool("auto_start", false),
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s (%s)\n\n%s",
		session.ID, session.ConfigID, session.Variant, formatDisplay(session.Display))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	path := "/api/sessions"
	if variant := request.GetString("variant", ""); variant != "" {
		path += "?variant=" + url.QueryEscape(variant)
	}

	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "idle"
		if s.Display != nil {
			status = displayStatus(s.Display)
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Variant: %s, %s, Created: %s)\n",
			s.ID, s.ConfigID, s.Variant, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGetDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var display engine.Display
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "display"), nil, &display); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDisplay(&display)), nil
}

func (c *Client) handleSendInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := service.InputRequest{
		Key:    request.GetString("key", ""),
		Action: request.GetString("action", ""),
	}
	args := request.GetArguments()
	if _, ok := args["row"]; ok {
		row := request.GetInt("row", 0)
		body.Row = &row
	}
	if _, ok := args["col"]; ok {
		col := request.GetInt("col", 0)
		body.Col = &col
	}

	var result service.InputResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "input"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInputResult(&result)), nil
}

func (c *Client) handleSendInputs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	keys, err := request.RequireStringSlice("keys")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(keys) == 0 {
		return mcp.NewToolResultError("keys must not be empty"), nil
	}
	truncated := len(keys) > maxBatchInputs
	if truncated {
		keys = keys[:maxBatchInputs]
	}

	var out strings.Builder
	var last service.InputResult
	accepted := 0
	for i, key := range keys {
		var result service.InputResult
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "input"), service.InputRequest{Key: key}, &result); err != nil {
			fmt.Fprintf(&out, "Stopped at input %d (%s): %v\n", i+1, key, err)
			break
		}
		if result.Accepted {
			accepted++
		}
		for _, ev := range result.Events {
			fmt.Fprintf(&out, "  [%s] %s\n", ev.Type, ev.Message)
		}
		last = result
	}

	header := fmt.Sprintf("Inputs accepted: %d/%d", accepted, len(keys))
	if truncated {
		header += fmt.Sprintf(" (truncated to %d)", maxBatchInputs)
	}
	text := header + "\n" + out.String()
	if last.Display != nil {
		text += "\n" + formatDisplay(last.Display)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleControl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var display engine.Display
	body := map[string]string{"action": action}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "control"), body, &display); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Action %s applied\n\n%s", action, formatDisplay(&display))), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var display engine.Display
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "tick"), nil, &display); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDisplay(&display)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                   `json:"count"`
		Configs []*service.ConfigInfo `json:"configs"`
	}

	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Available Configurations (%d):\n\n", response.Count)
	for _, cfg := range response.Configs {
		fmt.Fprintf(&result, "- %s: %s [%s %dx%d, up to %d players]\n",
			cfg.ConfigID, cfg.Name, cfg.Variant, cfg.Rows, cfg.Cols, cfg.MaxPlayers)
		if cfg.Description != "" {
			fmt.Fprintf(&result, "  %s\n", cfg.Description)
		}
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	variant, err := request.RequireString("variant")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path := "/api/leaderboard/" + url.PathEscape(variant)
	if limit := request.GetInt("limit", 0); limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var response struct {
		Entries []service.LeaderboardEntry `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(variant, response.Entries)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Tile Matching Game Engine - Complete Instructions

SESSIONS:
1. list_configs to see the available boards
2. create_session with a config_id (and player names for duels)
3. control_session action=start
4. Play with send_input / send_inputs, check get_display

TETRIS:
Pieces fall one row per drop interval. Full rows are cleared.
  LEFT / RIGHT   shift the piece one column
  DOWN           soft drop one row (+1 point)
  UP             rotate clockwise (no wall kicks)
  SPACE          hard drop to the floor (+2 points per row)
  TAB            pass the turn in multiplayer configs
Scoring: 100 / 300 / 500 / 800 points times the level for 1 / 2 / 3 / 4 lines.
Every 10 cleared lines raise the level and shorten the drop interval.
The game ends when a new piece cannot spawn.

CANDYCRUSH:
Select a cell (row, col), then select an orthogonal neighbour to swap them.
A swap is kept only if it forms a line of 3 or more equal candies.
Matched candies score 10 points each, times the cascade pass number.
Gravity pulls candies down and new ones fill the top.
Each player has a clock that only runs during their turn. A successful
match earns a time bonus and passes the turn.
Use action=switch_player to pass the turn. Keys are ignored.
The game ends when the active player's clock reaches zero.

BOARD LEGEND:
  .              empty cell
  Letter         first letter of the tile kind (e.g. C = Cyan, R = Red)
  lowercase      the falling tetris piece
  [X]            the selected candycrush cell

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nVariant: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigID, session.Variant,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatDisplay(session.Display))
}

func displayStatus(d *engine.Display) string {
	switch {
	case d.GameOver:
		return "game over"
	case d.Running:
		return "running"
	default:
		return "not running"
	}
}

func formatDisplay(d *engine.Display) string {
	if d == nil {
		return "No display available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "%s | Score: %d | Level: %d", d.Variant, d.Score, d.Level)
	if d.Lines != nil {
		fmt.Fprintf(&result, " | Lines: %d", *d.Lines)
	}
	if d.TimeLeft != nil {
		fmt.Fprintf(&result, " | Time left: %ds", *d.TimeLeft)
	}
	fmt.Fprintf(&result, " | %s\n", displayStatus(d))

	if d.NextPiece != nil {
		fmt.Fprintf(&result, "Next: %s\n", d.NextPiece.Shape)
	}
	result.WriteString("\n")

	falling := make(map[engine.Location]bool)
	if d.CurrentPiece != nil {
		for _, loc := range d.CurrentPiece.Cells {
			falling[loc] = true
		}
	}

	for i := 0; i < d.Board.Rows && i < len(d.Board.Cells); i++ {
		for j := 0; j < d.Board.Cols && j < len(d.Board.Cells[i]); j++ {
			ch := tileChar(d.Board.Cells[i][j])
			if falling[engine.Location{I: i, J: j}] {
				ch = unicode.ToLower(ch)
			}
			if d.Selected != nil && d.Selected.I == i && d.Selected.J == j {
				fmt.Fprintf(&result, "[%c]", ch)
				continue
			}
			result.WriteRune(ch)
		}
		result.WriteString("\n")
	}

	if len(d.Players) > 0 {
		result.WriteString("\nPlayers:\n")
		for _, p := range d.Players {
			marker := " "
			if p.IsActive {
				marker = "*"
			}
			fmt.Fprintf(&result, "%s %s: %d", marker, p.Name, p.Score)
			if p.TimeLeft != nil {
				fmt.Fprintf(&result, " (%ds left)", *p.TimeLeft)
			}
			result.WriteString("\n")
		}
	}

	if d.GameOver {
		result.WriteString("\nGAME OVER")
	}

	return result.String()
}

func tileChar(t *engine.Tile) rune {
	if t == nil || t.Kind == "" {
		return '.'
	}
	for _, r := range t.Kind {
		return unicode.ToUpper(r)
	}
	return '?'
}

func formatInputResult(result *service.InputResult) string {
	var out strings.Builder
	if result.Accepted {
		fmt.Fprintf(&out, "✓ Input %s accepted\n", result.Input)
	} else {
		fmt.Fprintf(&out, "✗ Input %s had no effect\n", result.Input)
	}
	for _, ev := range result.Events {
		fmt.Fprintf(&out, "  [%s] %s\n", ev.Type, ev.Message)
	}
	out.WriteString("\n")
	out.WriteString(formatDisplay(result.Display))
	return out.String()
}

func formatLeaderboard(variant string, entries []service.LeaderboardEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No scores recorded for %s yet", variant)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Leaderboard: %s\n\n", variant)
	for i, e := range entries {
		fmt.Fprintf(&out, "%2d. %-16s %8d  (level %d, session %s)\n", i+1, e.Player, e.Score, e.Level, e.SessionID)
	}
	return out.String()
}
