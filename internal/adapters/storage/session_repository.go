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

const sessionColumns = `
	id, user_id, duration_minutes, breaks_taken, hints_given,
	distractions, points_earned, ended_early, created_at
`

// sessionRepository implements ports.SessionRepository using SQLite.
type sessionRepository struct {
	db dbtx
}

// newSessionRepository creates a new session repository.
func newSessionRepository(db dbtx) ports.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session and assigns its ID and creation time.
func (r *sessionRepository) Create(ctx context.Context, session *domain.StudySession) error {
	if err := domain.ValidateDuration(session.DurationMinutes); err != nil {
		return err
	}

	session.ID = domain.GenerateID()
	session.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.DurationMinutes,
		session.BreaksTaken,
		session.HintsGiven,
		session.Distractions,
		session.PointsEarned,
		session.EndedEarly,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// FindByID retrieves a session by its unique identifier.
func (r *sessionRepository) FindByID(ctx context.Context, id string) (*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = ?`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// List retrieves sessions matching the filter, newest first.
func (r *sessionRepository) List(ctx context.Context, filter ports.SessionFilter) ([]*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions`
	var args []any

	if filter.UserID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *filter.UserID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.StudySession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Update applies the outcome fields. A session that already ended early is
// left untouched.
func (r *sessionRepository) Update(ctx context.Context, id string, update domain.SessionUpdate) (*domain.StudySession, error) {
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	query := `
		UPDATE study_sessions
		SET points_earned = COALESCE(?, points_earned),
		    ended_early = COALESCE(?, ended_early)
		WHERE id = ? AND ended_early = 0
	`

	result, err := r.db.ExecContext(ctx, query, update.PointsEarned, update.EndedEarly, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionFinalized, id)
	}

	return r.FindByID(ctx, id)
}

// Delete removes a session by its unique identifier.
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.StudySession, error) {
	var session domain.StudySession
	var userID sql.NullString

	err := row.Scan(
		&session.ID,
		&userID,
		&session.DurationMinutes,
		&session.BreaksTaken,
		&session.HintsGiven,
		&session.Distractions,
		&session.PointsEarned,
		&session.EndedEarly,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		session.UserID = &userID.String
	}

	return &session, nil
}
