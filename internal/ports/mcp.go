package ports

import (
	"context"

	"github.com/xvierd/fuzzle/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// HistoryProvider provides read access to study history.
// This is a driven port (implemented by the services layer).
type HistoryProvider interface {
	// CurrentUserID returns the configured user, or domain.ErrNoIdentity.
	CurrentUserID(ctx context.Context) (string, error)

	// ListSessions returns one page of sessions, newest first, and whether
	// another page may follow.
	ListSessions(ctx context.Context, userID *string, page int) ([]*domain.StudySession, bool, error)

	// GetSession returns one session record.
	GetSession(ctx context.Context, id string) (*domain.StudySession, error)

	// GetPoints returns the user's points total. A user with no awards has
	// a zero total.
	GetPoints(ctx context.Context, userID string) (*domain.PointsTotal, error)
}
