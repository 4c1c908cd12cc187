// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server  *server.MCPServer
	history ports.HistoryProvider

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new MCP server instance.
func NewServer(history ports.HistoryProvider, version string) *Server {
	s := &Server{
		history: history,
	}

	s.server = server.NewMCPServer(
		"fuzzle",
		version,
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	// Tool: list_sessions
	listTool := mcp.NewTool(
		"list_sessions",
		mcp.WithDescription("List study sessions, newest first, one page at a time"),
		mcp.WithNumber(
			"page",
			mcp.Description("Zero-based page number (default: 0)"),
		),
		mcp.WithString(
			"user_id",
			mcp.Description("Only list sessions owned by this user"),
		),
	)
	s.server.AddTool(listTool, s.handleListSessions)

	// Tool: get_session
	getSessionTool := mcp.NewTool(
		"get_session",
		mcp.WithDescription("Get one study session by ID"),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("The ID of the session"),
		),
	)
	s.server.AddTool(getSessionTool, s.handleGetSession)

	// Tool: get_points
	getPointsTool := mcp.NewTool(
		"get_points",
		mcp.WithDescription("Get a user's accumulated points total"),
		mcp.WithString(
			"user_id",
			mcp.Description("User to look up (default: the configured user)"),
		),
	)
	s.server.AddTool(getPointsTool, s.handleGetPoints)

	// Tool: get_current_user
	s.server.AddTool(
		mcp.NewTool(
			"get_current_user",
			mcp.WithDescription("Get the user ID Fuzzle is configured for"),
		),
		s.handleGetCurrentUser,
	)
}

// Start serves MCP requests on stdin/stdout until ctx is cancelled, Stop is
// called or stdin closes.
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve runs the stdio transport over in and out.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()
	defer func() { _ = s.Stop() }()

	err := server.NewStdioServer(s.server).Listen(runCtx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop cancels a running Serve.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true while Serve is active.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx != nil && s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// handleListSessions handles the list_sessions tool.
func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := int(request.GetFloat("page", 0))
	if page < 0 {
		return mcp.NewToolResultError("page must be zero or greater"), nil
	}

	var userID *string
	if id := request.GetString("user_id", ""); id != "" {
		userID = &id
	}

	sessions, hasMore, err := s.history.ListSessions(ctx, userID, page)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	items := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, sessionToMap(session))
	}

	result := map[string]interface{}{
		"page":     page,
		"has_more": hasMore,
		"sessions": items,
	}

	return jsonResult(result)
}

// handleGetSession handles the get_session tool.
func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required: " + err.Error()), nil
	}

	session, err := s.history.GetSession(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found", sessionID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get session: %v", err)), nil
	}

	return jsonResult(sessionToMap(session))
}

// handleGetPoints handles the get_points tool.
func (s *Server) handleGetPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", "")
	if userID == "" {
		id, err := s.history.CurrentUserID(ctx)
		if err != nil {
			return mcp.NewToolResultError("no user_id given and no user configured"), nil
		}
		userID = id
	}

	total, err := s.history.GetPoints(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get points: %v", err)), nil
	}

	result := map[string]interface{}{
		"user_id":      total.UserID,
		"total_points": total.TotalPoints,
		"last_updated": nil,
	}
	if !total.LastUpdated.IsZero() {
		result["last_updated"] = total.LastUpdated.Format(time.RFC3339)
	}

	return jsonResult(result)
}

// handleGetCurrentUser handles the get_current_user tool.
func (s *Server) handleGetCurrentUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := map[string]interface{}{
		"user_id": nil,
	}
	if id, err := s.history.CurrentUserID(ctx); err == nil {
		result["user_id"] = id
	}
	return jsonResult(result)
}

func sessionToMap(session *domain.StudySession) map[string]interface{} {
	data := map[string]interface{}{
		"id":               session.ID,
		"user_id":          nil,
		"duration_minutes": session.DurationMinutes,
		"breaks_taken":     session.BreaksTaken,
		"hints_given":      session.HintsGiven,
		"distractions":     session.Distractions,
		"points_earned":    session.PointsEarned,
		"ended_early":      session.EndedEarly,
		"created_at":       session.CreatedAt.Format(time.RFC3339),
	}
	if session.UserID != nil {
		data["user_id"] = *session.UserID
	}
	return data
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
