package services

import (
	"context"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"geo-registration-service/internal/ports"
	"log"
	"strings"
)

type UserService struct {
	Repo ports.UserRepository
	Gate *RegistrationGate
}

func NewUserService(repo ports.UserRepository, gate *RegistrationGate) *UserService {
	return &UserService{Repo: repo, Gate: gate}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register gates the address, then finds or creates the user for email.
// created is false when a user with this email already existed; in that case
// the stored record is returned unchanged and p is ignored.
func (s *UserService) Register(ctx context.Context, email string, p domain.Profile) (_ *domain.User, created bool, err error) {
	defer obs.Time(ctx, "users.Register")(&err)

	email = NormalizeEmail(email)
	if email == "" {
		return nil, false, fmt.Errorf("register: %w", domain.ErrUnauthenticated)
	}

	// Rejected addresses never reach the store.
	if _, err := s.Gate.Check(ctx, p.Address); err != nil {
		return nil, false, fmt.Errorf("register email=%q: %w", email, err)
	}

	return s.findOrCreate(ctx, email, p)
}

func (s *UserService) findOrCreate(ctx context.Context, email string, p domain.Profile) (*domain.User, bool, error) {
	existing, err := s.Repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("register email=%q: lookup: %w", email, err)
	}

	if err := domain.ValidateRequired(p); err != nil {
		return nil, false, fmt.Errorf("register email=%q: %w", email, err)
	}

	dob, err := domain.ParseDOB(p.DOB)
	if err != nil {
		return nil, false, fmt.Errorf("register email=%q: %w", email, err)
	}

	u := &domain.User{Email: email}
	u.Apply(p, dob)

	err = s.Repo.Insert(ctx, u)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// A concurrent registration created the user first.
		log.Printf("req_id=%s register email=%q lost insert race, returning existing user", obs.RequestID(ctx), email)
		winner, ferr := s.Repo.FindByEmail(ctx, email)
		if ferr != nil {
			return nil, false, fmt.Errorf("register email=%q: refetch after conflict: %w", email, ferr)
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("register email=%q: insert: %w", email, err)
	}

	return u, true, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.GetUser")(&err)

	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.FindByEmail")(&err)

	u, err := s.Repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// UpdateUser overwrites every profile field of user id. Nothing is written
// unless all fields are present and the date of birth parses.
func (s *UserService) UpdateUser(ctx context.Context, id int, upd domain.ProfileUpdate) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.UpdateUser")(&err)

	current, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := domain.ValidateRequired(upd); err != nil {
		return nil, fmt.Errorf("update user id=%d: %w", id, err)
	}

	dob, err := domain.ParseDOB(upd.DOB)
	if err != nil {
		return nil, fmt.Errorf("update user id=%d: %w", id, err)
	}

	next := *current
	next.Email = NormalizeEmail(upd.Email)
	next.Apply(upd.Profile, dob)

	updated, err := s.Repo.UpdateByID(ctx, id, &next)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}
