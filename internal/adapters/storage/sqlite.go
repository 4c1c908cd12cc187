// Package storage provides SQLite and PostgreSQL implementations of the
// storage ports.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/ports"
	_ "modernc.org/sqlite"
)

// dbtx is the query surface shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteStorage implements the ports.Storage interface using SQLite.
type sqliteStorage struct {
	db          *sql.DB
	sessionRepo ports.SessionRepository
	pointsRepo  ports.PointsRepository
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// New creates a new SQLite storage instance.
func New(dbPath string) (ports.Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases
	// shared across queries.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	storage := &sqliteStorage{
		db:          db,
		sessionRepo: newSessionRepository(db),
		pointsRepo:  newPointsRepository(db),
	}

	if err := storage.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// NewMemory creates a new in-memory SQLite storage instance for testing.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// Sessions returns the session repository.
func (s *sqliteStorage) Sessions() ports.SessionRepository {
	return s.sessionRepo
}

// Points returns the points repository.
func (s *sqliteStorage) Points() ports.PointsRepository {
	return s.pointsRepo
}

// AwardPoints increments the points total and finalizes the session in one
// transaction.
func (s *sqliteStorage) AwardPoints(ctx context.Context, req ports.AwardRequest) (*domain.Award, error) {
	if err := validateAward(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	total, err := newPointsRepository(tx).Add(ctx, req.UserID, req.Points)
	if err != nil {
		return nil, err
	}

	session, err := newSessionRepository(tx).Update(ctx, req.SessionID, domain.EndedEarlyWithPoints(req.Points))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit award: %w", err)
	}

	return &domain.Award{Session: session, Total: total}, nil
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the database schema.
func (s *sqliteStorage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS study_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		duration_minutes INTEGER NOT NULL,
		breaks_taken INTEGER NOT NULL DEFAULT 0,
		hints_given INTEGER NOT NULL DEFAULT 0,
		distractions INTEGER NOT NULL DEFAULT 0,
		points_earned INTEGER NOT NULL DEFAULT 0,
		ended_early INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_study_sessions_user ON study_sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_study_sessions_created ON study_sessions(created_at);

	CREATE TABLE IF NOT EXISTS points (
		user_id TEXT PRIMARY KEY,
		total_points INTEGER NOT NULL DEFAULT 0,
		last_updated DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func validateAward(req ports.AwardRequest) error {
	if req.Points < 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidPoints, req.Points)
	}
	if req.SessionID == "" {
		return domain.ErrSessionNotFound
	}
	if req.UserID == "" {
		return domain.ErrNoIdentity
	}
	return nil
}
