package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/fuzzle/internal/domain"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()

	id, err := NewStatic(" kid-1 ").CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kid-1", id)

	_, err = NewStatic("").CurrentUserID(ctx)
	assert.ErrorIs(t, err, domain.ErrNoIdentity)
}

func TestStatic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic("kid-1").CurrentUserID(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
