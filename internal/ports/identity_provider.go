package ports

import (
	"context"
	"geo-registration-service/internal/domain"
)

// Contract for an external identity provider using the authorization-code flow.
type IdentityProvider interface {
	// Return the provider URL the browser is redirected to.
	AuthCodeURL(state string) string
	// Trade the callback code for the authenticated identity.
	Exchange(ctx context.Context, code string) (domain.Identity, error)
}
