// Package identity provides IdentityProvider implementations.
package identity

import (
	"context"
	"strings"

	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/ports"
)

// Static resolves to a fixed user id taken from configuration.
type Static struct {
	userID string
}

var _ ports.IdentityProvider = (*Static)(nil)

// NewStatic returns a provider for userID. A blank id yields
// domain.ErrNoIdentity on every call.
func NewStatic(userID string) *Static {
	return &Static{userID: strings.TrimSpace(userID)}
}

// CurrentUserID returns the configured id.
func (s *Static) CurrentUserID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.userID == "" {
		return "", domain.ErrNoIdentity
	}
	return s.userID, nil
}
