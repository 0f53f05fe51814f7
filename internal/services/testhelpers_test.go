package services

import (
	"context"
	"geo-registration-service/internal/adapters/geocoding"
	"geo-registration-service/internal/adapters/repositories"
	"geo-registration-service/internal/domain"
	"math"
	"sync/atomic"
)

// north of the reference point by km along its meridian.
func northOfParis(km float64) domain.Coordinates {
	return domain.Coordinates{
		Lat: DefaultReference.Lat + km/domain.EarthRadiusKm*180/math.Pi,
		Lon: DefaultReference.Lon,
	}
}

func newTestService() (*UserService, *geocoding.MockGeocoder, *countingRepo) {
	geo := geocoding.NewMockGeocoder(map[string]domain.Coordinates{
		"10 km north":  northOfParis(10),
		"200 km north": northOfParis(200),
	})
	repo := &countingRepo{MemoryUserRepository: repositories.NewMemoryUserRepository()}
	return NewUserService(repo, NewRegistrationGate(geo)), geo, repo
}

func profile(address string) domain.Profile {
	return domain.Profile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		DOB:       "1990-01-15",
		Address:   address,
		Phone:     "0601020304",
	}
}

// countingRepo records store writes.
type countingRepo struct {
	*repositories.MemoryUserRepository
	inserts int32
	updates int32
}

func (r *countingRepo) Insert(ctx context.Context, u *domain.User) error {
	atomic.AddInt32(&r.inserts, 1)
	return r.MemoryUserRepository.Insert(ctx, u)
}

func (r *countingRepo) UpdateByID(ctx context.Context, id int, u *domain.User) (*domain.User, error) {
	atomic.AddInt32(&r.updates, 1)
	return r.MemoryUserRepository.UpdateByID(ctx, id, u)
}

func (r *countingRepo) writes() int {
	return int(atomic.LoadInt32(&r.inserts) + atomic.LoadInt32(&r.updates))
}
