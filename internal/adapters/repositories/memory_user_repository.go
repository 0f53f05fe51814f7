package repositories

import (
	"context"
	"fmt"
	"geo-registration-service/internal/domain"
	"sync"
	"time"
)

// In-memory implementation of the UserRepository port, used by tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[int]domain.User
	byEmail map[string]int
	nextID  int
	Now     func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[int]domain.User),
		byEmail: make(map[string]int),
		nextID:  1,
		Now:     time.Now,
	}
}

func (m *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("find user email=%q: %w", email, domain.ErrUserNotFound)
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryUserRepository) FindByID(_ context.Context, id int) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("find user id=%d: %w", id, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (m *MemoryUserRepository) Insert(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[u.Email]; taken {
		return fmt.Errorf("insert user email=%q: %w", u.Email, domain.ErrDuplicateEmail)
	}

	now := m.Now().UTC()
	u.ID = m.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	m.nextID++

	m.users[u.ID] = *u
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryUserRepository) UpdateByID(_ context.Context, id int, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("update user id=%d: %w", id, domain.ErrUserNotFound)
	}
	if owner, taken := m.byEmail[u.Email]; taken && owner != id {
		return nil, fmt.Errorf("update user id=%d: %w", id, domain.ErrDuplicateEmail)
	}

	updated := *u
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = m.Now().UTC()

	delete(m.byEmail, existing.Email)
	m.byEmail[updated.Email] = id
	m.users[id] = updated

	out := updated
	return &out, nil
}

// Len reports the number of stored users.
func (m *MemoryUserRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
