package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/logging"
	"github.com/xvierd/fuzzle/internal/ports"
)

// Set FUZZLE_TEST_POSTGRES_DSN to run against a real server.
func newPostgresTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	dsn := os.Getenv("FUZZLE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FUZZLE_TEST_POSTGRES_DSN not set")
	}

	storage, err := NewPostgres(context.Background(), dsn, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = storage.pool.Exec(context.Background(), `TRUNCATE study_sessions, points`)
		_ = storage.Close()
	})
	_, err = storage.pool.Exec(context.Background(), `TRUNCATE study_sessions, points`)
	require.NoError(t, err)
	return storage
}

func TestPostgres_SessionLifecycle(t *testing.T) {
	storage := newPostgresTestStorage(t)
	ctx := context.Background()
	user := "pg-user"

	session, err := domain.NewStudySession(&user, 60)
	require.NoError(t, err)
	require.NoError(t, storage.Sessions().Create(ctx, session))

	_, err = storage.Points().Upsert(ctx, user, 100)
	require.NoError(t, err)

	award, err := storage.AwardPoints(ctx, ports.AwardRequest{SessionID: session.ID, UserID: user, Points: 15})
	require.NoError(t, err)
	assert.Equal(t, 115, award.Total.TotalPoints)
	assert.True(t, award.Session.EndedEarly)

	_, err = storage.AwardPoints(ctx, ports.AwardRequest{SessionID: session.ID, UserID: user, Points: 15})
	assert.ErrorIs(t, err, domain.ErrSessionFinalized)

	total, err := storage.Points().Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 115, total.TotalPoints)
}

func TestPostgres_Delete(t *testing.T) {
	storage := newPostgresTestStorage(t)
	ctx := context.Background()

	session, err := domain.NewStudySession(nil, 25)
	require.NoError(t, err)
	require.NoError(t, storage.Sessions().Create(ctx, session))

	require.NoError(t, storage.Sessions().Delete(ctx, session.ID))

	_, err = storage.Sessions().FindByID(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, storage.Sessions().Delete(ctx, session.ID), domain.ErrSessionNotFound)
}

func TestPostgres_ListNewestFirst(t *testing.T) {
	storage := newPostgresTestStorage(t)
	ctx := context.Background()
	user := "pg-user"

	for _, minutes := range []int{10, 20, 30} {
		session, err := domain.NewStudySession(&user, minutes)
		require.NoError(t, err)
		require.NoError(t, storage.Sessions().Create(ctx, session))
	}

	sessions, err := storage.Sessions().List(ctx, ports.SessionFilter{UserID: &user, Limit: 2})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 30, sessions[0].DurationMinutes)

	_, err = storage.Sessions().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
