package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/logging"
	"github.com/xvierd/fuzzle/internal/ports"
)

// pgQuerier is the query surface shared by *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStorage implements ports.Storage on a PostgreSQL pool.
type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ ports.Storage = (*PostgresStorage)(nil)

// NewPostgres connects to dsn and migrates the schema.
func NewPostgres(ctx context.Context, dsn string, logger logging.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("postgres ping failed: %v", err)
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	p := &PostgresStorage{pool: pool, logger: logger}
	if err := p.Migrate(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return p, nil
}

// Sessions returns the session repository.
func (p *PostgresStorage) Sessions() ports.SessionRepository {
	return &pgSessionRepository{q: p.pool, logger: p.logger}
}

// Points returns the points repository.
func (p *PostgresStorage) Points() ports.PointsRepository {
	return &pgPointsRepository{q: p.pool, logger: p.logger}
}

// AwardPoints increments the total and finalizes the session in one transaction.
func (p *PostgresStorage) AwardPoints(ctx context.Context, req ports.AwardRequest) (*domain.Award, error) {
	if err := validateAward(req); err != nil {
		return nil, err
	}

	var award domain.Award
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		total, err := (&pgPointsRepository{q: tx, logger: p.logger}).Add(ctx, req.UserID, req.Points)
		if err != nil {
			return err
		}
		session, err := (&pgSessionRepository{q: tx, logger: p.logger}).Update(ctx, req.SessionID, domain.EndedEarlyWithPoints(req.Points))
		if err != nil {
			return err
		}
		award = domain.Award{Session: session, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &award, nil
}

// Close releases the pool.
func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// Migrate creates the database schema.
func (p *PostgresStorage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS study_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		duration_minutes INTEGER NOT NULL,
		breaks_taken INTEGER NOT NULL DEFAULT 0,
		hints_given INTEGER NOT NULL DEFAULT 0,
		distractions INTEGER NOT NULL DEFAULT 0,
		points_earned INTEGER NOT NULL DEFAULT 0,
		ended_early BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_study_sessions_user ON study_sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_study_sessions_created ON study_sessions(created_at);

	CREATE TABLE IF NOT EXISTS points (
		user_id TEXT PRIMARY KEY,
		total_points INTEGER NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL
	);
	`
	if _, err := p.pool.Exec(context.Background(), schema); err != nil {
		p.logger.Errorf("failed to migrate postgres schema: %v", err)
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// --- SessionRepository ---

type pgSessionRepository struct {
	q      pgQuerier
	logger logging.Logger
}

func (r *pgSessionRepository) Create(ctx context.Context, session *domain.StudySession) error {
	if err := domain.ValidateDuration(session.DurationMinutes); err != nil {
		return err
	}
	session.ID = domain.GenerateID()
	session.CreatedAt = time.Now().UTC()

	_, err := r.q.Exec(ctx, `INSERT INTO study_sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.UserID, session.DurationMinutes, session.BreaksTaken, session.HintsGiven,
		session.Distractions, session.PointsEarned, session.EndedEarly, session.CreatedAt)
	if err != nil {
		r.logger.Errorf("failed to insert session: %v", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) FindByID(ctx context.Context, id string) (*domain.StudySession, error) {
	session, err := scanPgSession(r.q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		r.logger.Errorf("failed to query session %s: %v", id, err)
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

func (r *pgSessionRepository) List(ctx context.Context, filter ports.SessionFilter) ([]*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions`
	var args []any

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(` WHERE user_id = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Errorf("failed to query sessions: %v", err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.StudySession
	for rows.Next() {
		session, err := scanPgSession(rows)
		if err != nil {
			r.logger.Errorf("failed to scan session: %v", err)
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *pgSessionRepository) Update(ctx context.Context, id string, update domain.SessionUpdate) (*domain.StudySession, error) {
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE study_sessions
		SET points_earned = COALESCE($1, points_earned),
		    ended_early = COALESCE($2, ended_early)
		WHERE id = $3 AND NOT ended_early`,
		update.PointsEarned, update.EndedEarly, id)
	if err != nil {
		r.logger.Errorf("failed to update session %s: %v", id, err)
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionFinalized, id)
	}
	return r.FindByID(ctx, id)
}

func (r *pgSessionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM study_sessions WHERE id = $1`, id)
	if err != nil {
		r.logger.Errorf("failed to delete session %s: %v", id, err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return nil
}

func scanPgSession(row pgx.Row) (*domain.StudySession, error) {
	var s domain.StudySession
	err := row.Scan(&s.ID, &s.UserID, &s.DurationMinutes, &s.BreaksTaken, &s.HintsGiven,
		&s.Distractions, &s.PointsEarned, &s.EndedEarly, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// --- PointsRepository ---

type pgPointsRepository struct {
	q      pgQuerier
	logger logging.Logger
}

func (r *pgPointsRepository) Get(ctx context.Context, userID string) (*domain.PointsTotal, error) {
	var t domain.PointsTotal
	err := r.q.QueryRow(ctx, `SELECT user_id, total_points, last_updated FROM points WHERE user_id = $1`, userID).
		Scan(&t.UserID, &t.TotalPoints, &t.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPointsNotFound, userID)
	}
	if err != nil {
		r.logger.Errorf("failed to query points for %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get points: %w", err)
	}
	return &t, nil
}

func (r *pgPointsRepository) Upsert(ctx context.Context, userID string, total int) (*domain.PointsTotal, error) {
	return r.write(ctx, `
		INSERT INTO points (user_id, total_points, last_updated) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			total_points = excluded.total_points,
			last_updated = excluded.last_updated
		RETURNING user_id, total_points, last_updated`, userID, total)
}

func (r *pgPointsRepository) Add(ctx context.Context, userID string, delta int) (*domain.PointsTotal, error) {
	return r.write(ctx, `
		INSERT INTO points (user_id, total_points, last_updated) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			total_points = points.total_points + excluded.total_points,
			last_updated = excluded.last_updated
		RETURNING user_id, total_points, last_updated`, userID, delta)
}

func (r *pgPointsRepository) write(ctx context.Context, query, userID string, value int) (*domain.PointsTotal, error) {
	var t domain.PointsTotal
	err := r.q.QueryRow(ctx, query, userID, value, time.Now().UTC()).Scan(&t.UserID, &t.TotalPoints, &t.LastUpdated)
	if err != nil {
		r.logger.Errorf("failed to write points for %s: %v", userID, err)
		return nil, fmt.Errorf("failed to write points: %w", err)
	}
	return &t, nil
}
