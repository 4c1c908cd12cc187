package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/ports"
)

// pointsRepository implements ports.PointsRepository using SQLite.
type pointsRepository struct {
	db dbtx
}

func newPointsRepository(db dbtx) ports.PointsRepository {
	return &pointsRepository{db: db}
}

// Get returns the user's total.
func (r *pointsRepository) Get(ctx context.Context, userID string) (*domain.PointsTotal, error) {
	query := `SELECT user_id, total_points, last_updated FROM points WHERE user_id = ?`

	var total domain.PointsTotal
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&total.UserID, &total.TotalPoints, &total.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPointsNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get points: %w", err)
	}
	return &total, nil
}

// Upsert overwrites the user's total.
func (r *pointsRepository) Upsert(ctx context.Context, userID string, total int) (*domain.PointsTotal, error) {
	query := `
		INSERT INTO points (user_id, total_points, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_points = excluded.total_points,
			last_updated = excluded.last_updated
	`
	if _, err := r.db.ExecContext(ctx, query, userID, total, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to upsert points: %w", err)
	}
	return r.Get(ctx, userID)
}

// Add increments the user's total in a single statement.
func (r *pointsRepository) Add(ctx context.Context, userID string, delta int) (*domain.PointsTotal, error) {
	query := `
		INSERT INTO points (user_id, total_points, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_points = points.total_points + excluded.total_points,
			last_updated = excluded.last_updated
	`
	if _, err := r.db.ExecContext(ctx, query, userID, delta, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to add points: %w", err)
	}
	return r.Get(ctx, userID)
}
