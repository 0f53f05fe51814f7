package ports

import (
	"context"
	"geo-registration-service/internal/domain"
)

// Optional persistent cache for geocoding results.
// Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	// Return the cached coordinates for address; ok is false on a miss.
	Get(ctx context.Context, address string) (c domain.Coordinates, ok bool, err error)
	Put(ctx context.Context, address string, c domain.Coordinates) error
}
