// Package ports defines the interfaces (driven and driving ports)
// for the Fuzzle application following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/fuzzle/internal/domain"
)

// SessionFilter narrows a session listing. Results are newest first.
type SessionFilter struct {
	// UserID restricts the listing to one owner when set.
	UserID *string
	Offset int
	// Limit of zero or less means no limit.
	Limit int
}

// SessionRepository defines the interface for study session persistence.
// This is a driven port (implemented by adapters).
type SessionRepository interface {
	// Create persists a new session and assigns its ID and CreatedAt.
	Create(ctx context.Context, session *domain.StudySession) error

	// FindByID retrieves a session by its unique identifier.
	// Returns domain.ErrSessionNotFound if there is no such record.
	FindByID(ctx context.Context, id string) (*domain.StudySession, error)

	// List retrieves sessions matching the filter, newest first.
	List(ctx context.Context, filter SessionFilter) ([]*domain.StudySession, error)

	// Update applies the outcome fields of a session. A session that
	// already ended early cannot be updated again (domain.ErrSessionFinalized).
	Update(ctx context.Context, id string, update domain.SessionUpdate) (*domain.StudySession, error)

	// Delete removes a session record. Points already awarded for it stay
	// in the user's total. Returns domain.ErrSessionNotFound if there is no
	// such record.
	Delete(ctx context.Context, id string) error
}

// PointsRepository defines the interface for the per-user points total.
// This is a driven port (implemented by adapters).
type PointsRepository interface {
	// Get returns the user's total or domain.ErrPointsNotFound.
	Get(ctx context.Context, userID string) (*domain.PointsTotal, error)

	// Upsert overwrites the user's total.
	Upsert(ctx context.Context, userID string, total int) (*domain.PointsTotal, error)

	// Add increments the user's total atomically, creating it if needed.
	Add(ctx context.Context, userID string, delta int) (*domain.PointsTotal, error)
}

// AwardRequest is the end-of-session write for an early stop with points.
type AwardRequest struct {
	SessionID string
	UserID    string
	Points    int
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Sessions provides access to session operations.
	Sessions() SessionRepository

	// Points provides access to points totals.
	Points() PointsRepository

	// AwardPoints increments the user's total and finalizes the session in a
	// single transaction. Either both writes happen or neither does.
	AwardPoints(ctx context.Context, req AwardRequest) (*domain.Award, error)

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
