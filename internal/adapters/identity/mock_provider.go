package identity

import (
	"context"
	"fmt"
	"geo-registration-service/internal/domain"
	"net/url"
)

// MockProvider hands out fixed identities keyed by authorization code.
type MockProvider struct {
	LoginURL   string
	Identities map[string]domain.Identity
}

func (m *MockProvider) AuthCodeURL(state string) string {
	return m.LoginURL + "?state=" + url.QueryEscape(state)
}

func (m *MockProvider) Exchange(_ context.Context, code string) (domain.Identity, error) {
	id, ok := m.Identities[code]
	if !ok {
		return domain.Identity{}, fmt.Errorf("mock exchange code=%q: %w", code, domain.ErrUnauthenticated)
	}
	return id, nil
}
