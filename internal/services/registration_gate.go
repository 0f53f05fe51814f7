package services

import (
	"context"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"geo-registration-service/internal/ports"
)

// Paris city centre.
var DefaultReference = domain.Coordinates{Lat: 48.8566, Lon: 2.3522}

const DefaultMaxDistanceKm = 50.0

// AddressCheck is the outcome of an accepted address.
type AddressCheck struct {
	Coordinates domain.Coordinates
	DistanceKm  float64
}

// RegistrationGate accepts an address iff it resolves within MaxDistanceKm
// (inclusive) of Reference.
type RegistrationGate struct {
	Geocoder      ports.Geocoder
	Reference     domain.Coordinates
	MaxDistanceKm float64
	Distance      func(a, b domain.Coordinates) float64
}

func NewRegistrationGate(geocoder ports.Geocoder) *RegistrationGate {
	return &RegistrationGate{
		Geocoder:      geocoder,
		Reference:     DefaultReference,
		MaxDistanceKm: DefaultMaxDistanceKm,
		Distance:      domain.HaversineKm,
	}
}

// Check geocodes address and measures it against the reference point.
// Fails with *domain.OutOfRangeError when too far, and passes geocoder
// errors (domain.ErrAddressNotFound, domain.ErrUpstreamUnavailable) through.
func (g *RegistrationGate) Check(ctx context.Context, address string) (_ AddressCheck, err error) {
	defer obs.Time(ctx, "gate.Check")(&err)

	if g.Geocoder == nil {
		return AddressCheck{}, errors.New("registration gate: geocoder is nil")
	}

	coords, err := g.Geocoder.Geocode(ctx, address)
	if err != nil {
		return AddressCheck{}, fmt.Errorf("registration gate: %w", err)
	}

	distance := g.Distance
	if distance == nil {
		distance = domain.HaversineKm
	}

	// NaN on either side compares false and is rejected.
	km := distance(g.Reference, coords)
	if !(km <= g.MaxDistanceKm) {
		return AddressCheck{}, &domain.OutOfRangeError{DistanceKm: km, MaxKm: g.MaxDistanceKm}
	}

	return AddressCheck{Coordinates: coords, DistanceKm: km}, nil
}
