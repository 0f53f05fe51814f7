package ports

import (
	"context"
	"geo-registration-service/internal/domain"
)

// Port: a boundary for persisting User entities.
type UserRepository interface {
	// Fails with domain.ErrUserNotFound when no user has this email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Fails with domain.ErrUserNotFound when no user has this id.
	FindByID(ctx context.Context, id int) (*domain.User, error)
	// Store a new user and set its ID and timestamps.
	// Fails with domain.ErrDuplicateEmail if the email is already taken,
	// including when a concurrent insert won the race.
	Insert(ctx context.Context, u *domain.User) error
	// Overwrite every mutable field of the user with the given id.
	UpdateByID(ctx context.Context, id int, u *domain.User) (*domain.User, error)
}
