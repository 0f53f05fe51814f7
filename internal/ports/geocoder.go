package ports

import (
	"context"
	"geo-registration-service/internal/domain"
)

// Contract for resolving a free-text address into coordinates.
type Geocoder interface {
	// Return the coordinates of the best candidate for address.
	// Fails with domain.ErrAddressNotFound when there is no candidate and
	// domain.ErrUpstreamUnavailable when the service cannot be reached.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
