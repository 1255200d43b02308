package mcp

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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/turtle-race-game/game/engine"
	"github.com/wricardo/turtle-race-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// APIError is a non-2xx response from the REST API. Body keeps the raw
// response so callers can decode extra fields such as a final play result.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
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
		"Turtle Race Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Turtle Race Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Five turtles (red, blue, purple, green, pink) race from Start to Goal.
Play cards from your hand to move them. The first turtle to reach the Goal wins.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the path, your hand and any pending color choice
- play_card: Play a card from your hand by its id
- choose_color: Pick the turtle for a wildcard or last-place card
- cancel_choice: Put a pending wildcard or last-place card back in your hand
- reset_game: Restart the race with the same seed
- play_history: View past plays
- list_configs: List available configurations
- game_instructions: Get the full rules

NOTE: Turtles stacked on top of a moving turtle ride along with it.`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config ID to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: turtle stacks on the path, your hand and any pending color choice",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_card",
		Description: "Play a card from the hand. Wildcard and last-place cards then wait for choose_color",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"card_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of a card in the hand (see game_state)",
				},
			},
			Required: []string{"session_id", "card_id"},
		},
	}, c.handlePlayCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "choose_color",
		Description: "Choose which turtle a pending wildcard or last-place card moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"color": map[string]interface{}{
					"type":        "string",
					"description": "Turtle color; must be one of the pending candidates",
					"enum":        []string{"red", "blue", "purple", "green", "pink"},
				},
			},
			Required: []string{"session_id", "color"},
		},
	}, c.handleChooseColor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_choice",
		Description: "Cancel a pending color choice and return the card to the hand",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleCancelChoice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the race to its initial state. History is kept",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_history",
		Description: "Get the paginated history of resolved card plays",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Plays per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "Sort order (default desc)",
					"enum":        []string{"asc", "desc"},
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlayHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules of the turtle race",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
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
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("API error: %d", resp.StatusCode),
			Body:    raw,
		}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := engine.Phase("unknown")
		if s.GameState != nil {
			phase = s.GameState.Phase
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Phase: %s, Created: %s)\n",
			s.ID, s.ConfigName, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cardID, _ := args["card_id"].(string)
	if sessionID == "" || cardID == "" {
		return mcp.NewToolResultError("session_id and card_id are required"), nil
	}

	body := map[string]string{"card_id": cardID}
	return c.playCall(ctx, sessionPath(sessionID, "/play"), body)
}

func (c *Client) handleChooseColor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	color, _ := args["color"].(string)
	if sessionID == "" || color == "" {
		return mcp.NewToolResultError("session_id and color are required"), nil
	}

	body := map[string]string{"color": color}
	return c.playCall(ctx, sessionPath(sessionID, "/color"), body)
}

func (c *Client) handleCancelChoice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	return c.playCall(ctx, sessionPath(sessionID, "/cancel"), nil)
}

// playCall posts a play-like request. A conflict that still carries a
// result (the deck ran out) is shown as the final state plus the error.
func (c *Client) playCall(ctx context.Context, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.PlayResult
	err := c.apiCall(ctx, http.MethodPost, path, body, &result)
	if err == nil {
		return mcp.NewToolResultText(formatPlayResult(&result)), nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		var conflict struct {
			Error  string              `json:"error"`
			Result *service.PlayResult `json:"result"`
		}
		if json.Unmarshal(apiErr.Body, &conflict) == nil && conflict.Result != nil {
			text := formatPlayResult(conflict.Result) + "\n\n⚠️ " + conflict.Error
			return mcp.NewToolResultText(text), nil
		}
	}

	return mcp.NewToolResultError(err.Error()), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message + "\n\n" + formatGameState(response.State)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlayHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		seeded := ""
		if config.Seeded {
			seeded = ", seeded"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Path: %d tiles, Hand: %d cards%s\n\n",
			config.Name, config.ConfigID, config.Description, config.PathLength, config.HandSize, seeded)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `🐢 Turtle Race Game - Complete Instructions

GAME OBJECTIVE:
Five turtles (red, blue, purple, green, pink) start stacked on the Start tile.
Play cards to move them along the path. The first turtle to reach the Goal wins.

THE PATH:
• Position 0 is Start, the last position is Goal
• Several turtles can share a tile; they form a stack (bottom to top)
• At Start every turtle begins in the order red, blue, purple, green, pink (pink on top)

THE DECK (52 cards):
• Each color: 5x "+1", 1x "+2", 2x "-1"
• Wildcard: 5x "+1", 2x "-1" (you choose the color)
• Last place: 3x "+1", 2x "+2" (you choose among the turtles furthest behind)

MOVEMENT:
• A turtle carries every turtle stacked on top of it
• The moving group lands on top of whatever is already on the destination tile
• Movement is clamped: nothing goes below Start or beyond Goal
• A move that would leave the turtle where it is does nothing

PLAYING A TURN:
1. Pick a card from your hand with play_card
2. Color cards move that color immediately
3. Wildcard and last-place cards wait for choose_color (or cancel_choice to take it back)
4. The played card is discarded and a new one is drawn
5. Discarded cards never return to the draw pile

GAME END:
• The first turtle to reach the Goal wins; the race is then over
• If a card must be drawn from an empty draw pile the race ends with no winner
• reset_game restarts the race with the same shuffle; play history is kept

AVAILABLE TOOLS:
create_session, list_sessions, get_session, game_state, play_card, choose_color,
cancel_choice, reset_game, play_history, list_configs, game_instructions`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func colorList(colors []engine.Color) string {
	names := make([]string, len(colors))
	for i, c := range colors {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s | Draw pile: %d | Discarded: %d | Plays: %d\n\n",
		state.Phase, state.DrawRemaining, len(state.DiscardPile), state.CurrentPlaysCount)

	// Goal first so the path reads top-down like a track
	b.WriteString("Path (stacks listed bottom to top):\n")
	for i := len(state.Tiles) - 1; i >= 0; i-- {
		tile := state.Tiles[i]
		label := fmt.Sprintf("%2d", tile.Position)
		switch tile.Position {
		case engine.StartPosition:
			label += " Start"
		case state.Goal:
			label += " Goal "
		default:
			label += "      "
		}
		fmt.Fprintf(&b, "  %s | %s\n", label, colorList(tile.Turtles))
	}

	if len(state.Standings) > 0 {
		fmt.Fprintf(&b, "\nStandings: %s\n", colorList(state.Standings))
	}

	if len(state.Hand) > 0 {
		b.WriteString("\nHand:\n")
		for _, card := range state.Hand {
			fmt.Fprintf(&b, "  [%s] %s\n", card.ID, card.Label())
		}
	}

	if state.Pending != nil {
		fmt.Fprintf(&b, "\nPending choice: %s -> choose one of: %s\n",
			state.Pending.Card.Label(), colorList(state.Pending.Candidates))
	}

	switch state.Phase {
	case engine.PhaseWon:
		fmt.Fprintf(&b, "\n🏁 WINNER: %s", state.Winner)
	case engine.PhaseExhausted:
		b.WriteString("\n🃏 DECK EXHAUSTED, no winner")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatPlayResult(result *service.PlayResult) string {
	var b strings.Builder

	if result.Play != nil {
		play := result.Play
		fmt.Fprintf(&b, "Played %s on %s: ", play.Card.Label(), play.Target)
		if play.Move.Moved {
			fmt.Fprintf(&b, "%d -> %d", play.Move.From, play.Move.To)
			if len(play.Move.Carried) > 0 {
				fmt.Fprintf(&b, " carrying %s", colorList(play.Move.Carried))
			}
		} else {
			b.WriteString("no movement")
		}
		b.WriteString("\n")
		if play.Drawn != nil {
			fmt.Fprintf(&b, "Drew [%s] %s\n", play.Drawn.ID, play.Drawn.Label())
		}
	} else if len(result.Candidates) > 0 {
		fmt.Fprintf(&b, "Choose a color with choose_color: %s\n", colorList(result.Candidates))
	}

	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}

	if result.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(result.GameState))
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Play History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalPlays)

	if len(history.Plays) == 0 {
		b.WriteString("(no plays yet)")
		return b.String()
	}

	for _, play := range history.Plays {
		status := "✓"
		if !play.Moved {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s -> %s %d->%d %s",
			play.PlayNumber, play.Card.Label(), play.Target, play.From, play.To, status)
		if len(play.Carried) > 0 {
			fmt.Fprintf(&b, " (carried %s)", colorList(play.Carried))
		}
		b.WriteString("\n")
	}

	return b.String()
}
