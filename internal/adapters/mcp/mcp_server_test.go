package mcp

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xvierd/fuzzle/internal/domain"
)

// mockHistory is a mock implementation of ports.HistoryProvider for testing.
type mockHistory struct {
	userID   string
	sessions []*domain.StudySession
	points   map[string]int
	lastPage int
	lastUser *string
}

func (m *mockHistory) CurrentUserID(ctx context.Context) (string, error) {
	if m.userID == "" {
		return "", domain.ErrNoIdentity
	}
	return m.userID, nil
}

func (m *mockHistory) ListSessions(ctx context.Context, userID *string, page int) ([]*domain.StudySession, bool, error) {
	m.lastPage = page
	m.lastUser = userID
	return m.sessions, len(m.sessions) == 5, nil
}

func (m *mockHistory) GetSession(ctx context.Context, id string) (*domain.StudySession, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (m *mockHistory) GetPoints(ctx context.Context, userID string) (*domain.PointsTotal, error) {
	return &domain.PointsTotal{UserID: userID, TotalPoints: m.points[userID]}, nil
}

func newSession(id string, minutes int) *domain.StudySession {
	user := "kid-1"
	return &domain.StudySession{
		ID:              id,
		UserID:          &user,
		DurationMinutes: minutes,
		CreatedAt:       time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC),
	}
}

func callArgs(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", text.Text, err)
	}
	return out
}

func TestNewServer(t *testing.T) {
	mock := &mockHistory{}
	server := NewServer(mock, "test")

	if server == nil {
		t.Fatal("NewServer() returned nil")
	}

	if server.history != mock {
		t.Error("NewServer() did not set history provider correctly")
	}

	if server.server == nil {
		t.Error("NewServer() did not create MCP server")
	}
}

func TestServer_IsRunning(t *testing.T) {
	server := NewServer(&mockHistory{}, "test")

	if server.IsRunning() {
		t.Error("IsRunning() should return false before Start()")
	}
}

func TestServer_handleListSessions(t *testing.T) {
	mock := &mockHistory{sessions: []*domain.StudySession{newSession("s1", 25), newSession("s2", 60)}}
	server := NewServer(mock, "test")

	result, err := server.handleListSessions(context.Background(), callArgs(map[string]interface{}{
		"page":    float64(2),
		"user_id": "kid-1",
	}))
	if err != nil {
		t.Fatalf("handleListSessions() error = %v", err)
	}

	out := decodeResult(t, result)
	if out["page"] != float64(2) {
		t.Errorf("page = %v, want 2", out["page"])
	}
	if out["has_more"] != false {
		t.Errorf("has_more = %v, want false", out["has_more"])
	}
	sessions, _ := out["sessions"].([]interface{})
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	first := sessions[0].(map[string]interface{})
	if first["duration_minutes"] != float64(25) {
		t.Errorf("duration_minutes = %v", first["duration_minutes"])
	}
	if mock.lastPage != 2 || mock.lastUser == nil || *mock.lastUser != "kid-1" {
		t.Errorf("provider called with page=%d user=%v", mock.lastPage, mock.lastUser)
	}
}

func TestServer_handleListSessions_Defaults(t *testing.T) {
	mock := &mockHistory{}
	server := NewServer(mock, "test")

	result, err := server.handleListSessions(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleListSessions() error = %v", err)
	}
	if result.IsError {
		t.Error("handleListSessions() returned error result")
	}
	if mock.lastPage != 0 || mock.lastUser != nil {
		t.Errorf("defaults not applied: page=%d user=%v", mock.lastPage, mock.lastUser)
	}

	result, _ = server.handleListSessions(context.Background(), callArgs(map[string]interface{}{"page": float64(-1)}))
	if !result.IsError {
		t.Error("negative page should be rejected")
	}
}

func TestServer_handleGetSession(t *testing.T) {
	mock := &mockHistory{sessions: []*domain.StudySession{newSession("s1", 45)}}
	server := NewServer(mock, "test")

	result, err := server.handleGetSession(context.Background(), callArgs(map[string]interface{}{"session_id": "s1"}))
	if err != nil {
		t.Fatalf("handleGetSession() error = %v", err)
	}
	out := decodeResult(t, result)
	if out["id"] != "s1" || out["user_id"] != "kid-1" {
		t.Errorf("unexpected session %v", out)
	}

	result, _ = server.handleGetSession(context.Background(), callArgs(map[string]interface{}{"session_id": "nope"}))
	if !result.IsError {
		t.Error("missing session should be an error result")
	}
}

func TestServer_handleGetSession_MissingID(t *testing.T) {
	server := NewServer(&mockHistory{}, "test")

	result, err := server.handleGetSession(context.Background(), callArgs(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGetSession() error = %v", err)
	}

	if !result.IsError {
		t.Error("handleGetSession() should return error for missing session_id")
	}
}

func TestServer_handleGetPoints(t *testing.T) {
	mock := &mockHistory{userID: "kid-1", points: map[string]int{"kid-1": 115, "kid-2": 7}}
	server := NewServer(mock, "test")

	result, _ := server.handleGetPoints(context.Background(), mcp.CallToolRequest{})
	out := decodeResult(t, result)
	if out["total_points"] != float64(115) {
		t.Errorf("total_points = %v, want 115", out["total_points"])
	}

	result, _ = server.handleGetPoints(context.Background(), callArgs(map[string]interface{}{"user_id": "kid-2"}))
	out = decodeResult(t, result)
	if out["user_id"] != "kid-2" || out["total_points"] != float64(7) {
		t.Errorf("unexpected points %v", out)
	}

	anonymous := NewServer(&mockHistory{}, "test")
	result, _ = anonymous.handleGetPoints(context.Background(), mcp.CallToolRequest{})
	if !result.IsError {
		t.Error("get_points without any user should be an error result")
	}
}

func TestServer_handleGetCurrentUser(t *testing.T) {
	server := NewServer(&mockHistory{userID: "kid-1"}, "test")
	out := decodeResult(t, mustResult(server.handleGetCurrentUser(context.Background(), mcp.CallToolRequest{})))
	if out["user_id"] != "kid-1" {
		t.Errorf("user_id = %v, want kid-1", out["user_id"])
	}

	server = NewServer(&mockHistory{}, "test")
	out = decodeResult(t, mustResult(server.handleGetCurrentUser(context.Background(), mcp.CallToolRequest{})))
	if out["user_id"] != nil {
		t.Errorf("user_id = %v, want null", out["user_id"])
	}
}

func mustResult(result *mcp.CallToolResult, err error) *mcp.CallToolResult {
	if err != nil {
		panic(err)
	}
	return result
}

func TestServer_Stop(t *testing.T) {
	server := NewServer(&mockHistory{}, "test")

	// Stop before Start should not panic
	if err := server.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestServer_StopEndsServe(t *testing.T) {
	server := NewServer(&mockHistory{}, "test")

	in, w := io.Pipe()
	defer w.Close()

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(context.Background(), in, io.Discard)
	}()

	deadline := time.Now().Add(time.Second)
	for !server.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server never reported running")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after Stop", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after Stop")
	}
	if server.IsRunning() {
		t.Error("IsRunning() should be false after Stop")
	}
}

func TestServer_ContextCancelEndsServe(t *testing.T) {
	server := NewServer(&mockHistory{}, "test")

	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, in, io.Discard)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after the context was cancelled")
	}
}
