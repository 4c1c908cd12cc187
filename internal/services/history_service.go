package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/ports"
)

// DefaultPageSize is the number of sessions per study log page.
const DefaultPageSize = 5

// HistoryService answers read-only questions about past sessions and points.
type HistoryService struct {
	storage  ports.Storage
	identity ports.IdentityProvider
	pageSize int
}

// NewHistoryService creates a new history service. A non-positive pageSize
// falls back to DefaultPageSize.
func NewHistoryService(storage ports.Storage, identity ports.IdentityProvider, pageSize int) *HistoryService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &HistoryService{storage: storage, identity: identity, pageSize: pageSize}
}

// PageSize returns the number of sessions per page.
func (s *HistoryService) PageSize() int {
	return s.pageSize
}

// CurrentUserID implements ports.HistoryProvider.
func (s *HistoryService) CurrentUserID(ctx context.Context) (string, error) {
	if s.identity == nil {
		return "", domain.ErrNoIdentity
	}
	return s.identity.CurrentUserID(ctx)
}

// ListSessions returns page (zero-based) of sessions, newest first. hasMore
// is true when the page came back full.
func (s *HistoryService) ListSessions(ctx context.Context, userID *string, page int) ([]*domain.StudySession, bool, error) {
	if page < 0 {
		return nil, false, fmt.Errorf("invalid page %d", page)
	}

	sessions, err := s.storage.Sessions().List(ctx, ports.SessionFilter{
		UserID: userID,
		Offset: page * s.pageSize,
		Limit:  s.pageSize,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, len(sessions) == s.pageSize, nil
}

// GetSession implements ports.HistoryProvider.
func (s *HistoryService) GetSession(ctx context.Context, id string) (*domain.StudySession, error) {
	return s.storage.Sessions().FindByID(ctx, id)
}

// DeleteSession removes one session record. The points total is unchanged.
func (s *HistoryService) DeleteSession(ctx context.Context, id string) error {
	if err := s.storage.Sessions().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetPoints returns the user's total. A user who has never been awarded
// points has a zero total.
func (s *HistoryService) GetPoints(ctx context.Context, userID string) (*domain.PointsTotal, error) {
	if userID == "" {
		return nil, domain.ErrNoIdentity
	}
	total, err := s.storage.Points().Get(ctx, userID)
	if errors.Is(err, domain.ErrPointsNotFound) {
		return &domain.PointsTotal{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get points: %w", err)
	}
	return total, nil
}

// CurrentPoints returns the configured user's total.
func (s *HistoryService) CurrentPoints(ctx context.Context) (*domain.PointsTotal, error) {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetPoints(ctx, userID)
}

// Ensure HistoryService implements HistoryProvider.
var _ ports.HistoryProvider = (*HistoryService)(nil)
