package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/logging"
	"github.com/xvierd/fuzzle/internal/ports"
)

func newTestStorage(t *testing.T) ports.Storage {
	t.Helper()
	storage, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func createSession(t *testing.T, storage ports.Storage, userID *string, minutes int) *domain.StudySession {
	t.Helper()
	session, err := domain.NewStudySession(userID, minutes)
	require.NoError(t, err)
	require.NoError(t, storage.Sessions().Create(context.Background(), session))
	return session
}

func TestNewMemory(t *testing.T) {
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	defer func() { _ = storage.Close() }()

	if storage == nil {
		t.Error("NewMemory() returned nil storage")
	}
}

func TestNew_FileMigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fuzzle.db")

	first, err := New(path)
	require.NoError(t, err)
	user := "user-1"
	createSession(t, first, &user, 30)
	require.NoError(t, first.Close())

	second, err := New(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	sessions, err := second.Sessions().List(context.Background(), ports.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	user := "user-1"

	session := createSession(t, storage, &user, 25)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())

	found, err := storage.Sessions().FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, found.DurationMinutes)
	assert.Equal(t, "user-1", found.OwnerID())
	assert.Zero(t, found.BreaksTaken)
	assert.Zero(t, found.HintsGiven)
	assert.Zero(t, found.Distractions)
	assert.Zero(t, found.PointsEarned)
	assert.False(t, found.EndedEarly)

	_, err = storage.Sessions().FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionRepository_CreateWithoutUser(t *testing.T) {
	storage := newTestStorage(t)

	session := createSession(t, storage, nil, 45)
	found, err := storage.Sessions().FindByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Nil(t, found.UserID)
}

func TestSessionRepository_CreateRejectsInvalidDuration(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.Sessions().Create(context.Background(), &domain.StudySession{DurationMinutes: 7})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestSessionRepository_ListPagination(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	alice, bob := "alice", "bob"

	for i := 1; i <= 7; i++ {
		createSession(t, storage, &alice, i*5)
	}
	createSession(t, storage, &bob, 120)

	page1, err := storage.Sessions().List(ctx, ports.SessionFilter{UserID: &alice, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page1, 5)
	assert.Equal(t, 35, page1[0].DurationMinutes, "newest first")
	assert.Equal(t, 15, page1[4].DurationMinutes)

	page2, err := storage.Sessions().List(ctx, ports.SessionFilter{UserID: &alice, Offset: 5, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, 10, page2[0].DurationMinutes)
	assert.Equal(t, 5, page2[1].DurationMinutes)

	all, err := storage.Sessions().List(ctx, ports.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, 120, all[0].DurationMinutes)

	empty, err := storage.Sessions().List(ctx, ports.SessionFilter{UserID: &alice, Offset: 50, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSessionRepository_UpdateOnce(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	user := "user-1"
	session := createSession(t, storage, &user, 60)

	updated, err := storage.Sessions().Update(ctx, session.ID, domain.EndedEarlyWithPoints(15))
	require.NoError(t, err)
	assert.Equal(t, 15, updated.PointsEarned)
	assert.True(t, updated.EndedEarly)
	assert.Equal(t, 60, updated.DurationMinutes)

	_, err = storage.Sessions().Update(ctx, session.ID, domain.EndedEarlyWithPoints(30))
	assert.ErrorIs(t, err, domain.ErrSessionFinalized)

	_, err = storage.Sessions().Update(ctx, "missing", domain.EndedEarlyWithPoints(1))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	found, err := storage.Sessions().FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, found.PointsEarned)
}

func TestSessionRepository_Delete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	user := "user-1"
	session := createSession(t, storage, &user, 30)
	_, err := storage.Points().Upsert(ctx, user, 40)
	require.NoError(t, err)

	require.NoError(t, storage.Sessions().Delete(ctx, session.ID))

	_, err = storage.Sessions().FindByID(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = storage.Sessions().Delete(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	total, err := storage.Points().Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 40, total.TotalPoints)
}

func TestPointsRepository(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	points := storage.Points()

	_, err := points.Get(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrPointsNotFound)

	total, err := points.Add(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, total.TotalPoints)

	total, err = points.Add(ctx, "user-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 15, total.TotalPoints)

	total, err = points.Upsert(ctx, "user-1", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, total.TotalPoints)

	got, err := points.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, 100, got.TotalPoints)
	assert.False(t, got.LastUpdated.IsZero())
}

func TestPointsRepository_ConcurrentAdds(t *testing.T) {
	storage, err := New(filepath.Join(t.TempDir(), "points.db"))
	require.NoError(t, err)
	defer func() { _ = storage.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = storage.Points().Add(ctx, "user-1", 5)
		}()
	}
	wg.Wait()

	total, err := storage.Points().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100, total.TotalPoints)
}

func TestAwardPoints(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	user := "user-1"
	session := createSession(t, storage, &user, 60)

	_, err := storage.Points().Upsert(ctx, user, 100)
	require.NoError(t, err)

	award, err := storage.AwardPoints(ctx, ports.AwardRequest{SessionID: session.ID, UserID: user, Points: 15})
	require.NoError(t, err)
	assert.Equal(t, 115, award.Total.TotalPoints)
	assert.Equal(t, 15, award.Session.PointsEarned)
	assert.True(t, award.Session.EndedEarly)
}

func TestAwardPoints_RollsBackOnSessionFailure(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	user := "user-1"
	session := createSession(t, storage, &user, 60)

	_, err := storage.Points().Upsert(ctx, user, 100)
	require.NoError(t, err)

	_, err = storage.AwardPoints(ctx, ports.AwardRequest{SessionID: "missing", UserID: user, Points: 15})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	total, err := storage.Points().Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 100, total.TotalPoints, "increment must roll back")

	_, err = storage.AwardPoints(ctx, ports.AwardRequest{SessionID: session.ID, UserID: user, Points: 5})
	require.NoError(t, err)
	_, err = storage.AwardPoints(ctx, ports.AwardRequest{SessionID: session.ID, UserID: user, Points: 5})
	assert.ErrorIs(t, err, domain.ErrSessionFinalized)

	total, err = storage.Points().Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 105, total.TotalPoints, "a second award on the same session must not count")
}

func TestAwardPoints_Validation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  ports.AwardRequest
		want error
	}{
		{"negative points", ports.AwardRequest{SessionID: "s", UserID: "u", Points: -1}, domain.ErrInvalidPoints},
		{"no session", ports.AwardRequest{UserID: "u", Points: 1}, domain.ErrSessionNotFound},
		{"no user", ports.AwardRequest{SessionID: "s", Points: 1}, domain.ErrNoIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.AwardPoints(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	storage, err := Open(ctx, Options{Backend: BackendSQLite, SQLitePath: ":memory:"}, logger)
	require.NoError(t, err)
	_ = storage.Close()

	_, err = Open(ctx, Options{Backend: "mongo"}, logger)
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendPostgres}, logger)
	assert.Error(t, err)
}
