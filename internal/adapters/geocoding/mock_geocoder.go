package geocoding

import (
	"context"
	"fmt"
	"geo-registration-service/internal/domain"
	"sync"
)

// MockGeocoder resolves addresses from a fixed table. Unknown addresses
// fail with domain.ErrAddressNotFound; addresses listed in Errs fail with that error.
type MockGeocoder struct {
	mu     sync.Mutex
	coords map[string]domain.Coordinates
	Errs   map[string]error
	calls  int
}

func NewMockGeocoder(coords map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(coords))
	for k, v := range coords {
		m[normalize(k)] = v
	}
	return &MockGeocoder{coords: m, Errs: map[string]error{}}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	norm := normalize(address)

	if err, ok := g.Errs[norm]; ok {
		return domain.Coordinates{}, err
	}

	c, ok := g.coords[norm]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q: %w", norm, domain.ErrAddressNotFound)
	}

	return c, nil
}

// Calls returns how many lookups were made.
func (g *MockGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
