package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/ports"
	"os"
	"strings"
)

type UserSeed struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DOB       string `json:"dob"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

// Populate the user store from a JSON file. Users whose email already
// exists are skipped, so seeding is idempotent. Returns the number inserted.
func SeedUsersFromJSON(ctx context.Context, repo ports.UserRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed users: read %q: %w", jsonPath, err)
	}

	var data []UserSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed users: parse json: %w", err)
	}

	users := make([]*domain.User, 0, len(data))
	for i, item := range data {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		if email == "" {
			return 0, fmt.Errorf("seed users: item at index %d: email cannot be empty", i+1)
		}

		dob, err := domain.ParseDOB(item.DOB)
		if err != nil {
			return 0, fmt.Errorf("seed users: item at index %d: %w", i+1, err)
		}

		users = append(users, &domain.User{
			Email:     email,
			FirstName: item.FirstName,
			LastName:  item.LastName,
			DOB:       dob,
			Address:   item.Address,
			Phone:     item.Phone,
		})
	}

	inserted := 0
	for _, u := range users {
		err := repo.Insert(ctx, u)
		if errors.Is(err, domain.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("seed users: insert email=%q: %w", u.Email, err)
		}
		inserted++
	}

	return inserted, nil
}
