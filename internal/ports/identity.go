package ports

import "context"

// IdentityProvider resolves the user the app is acting for.
// This is a driven port (implemented by adapters).
type IdentityProvider interface {
	// CurrentUserID returns the opaque user id, or domain.ErrNoIdentity.
	CurrentUserID(ctx context.Context) (string, error)
}
