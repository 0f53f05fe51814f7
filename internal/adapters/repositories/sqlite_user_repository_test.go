package repositories

import (
	"context"
	"errors"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/db"
	"testing"
	"time"
)

func newSqliteRepo(t *testing.T) *SqliteUserRepository {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSqliteSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSqliteUserRepository(conn)
}

func sampleUser(email string) *domain.User {
	return &domain.User{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		DOB:       time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		Address:   "1 Rue de Rivoli, Paris",
		Phone:     "0601020304",
	}
}

func TestSqliteInsertAndFind(t *testing.T) {
	repo := newSqliteRepo(t)
	ctx := context.Background()

	u := sampleUser("ada@example.com")
	if err := repo.Insert(ctx, u); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected id to be set")
	}

	byEmail, err := repo.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	byID, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byEmail.ID != u.ID || byID.Email != u.Email {
		t.Fatalf("lookups disagree: %+v vs %+v", byEmail, byID)
	}
	if !byID.DOB.Equal(u.DOB) {
		t.Fatalf("dob = %v, want %v", byID.DOB, u.DOB)
	}
}

func TestSqliteInsertDuplicateEmail(t *testing.T) {
	repo := newSqliteRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, sampleUser("ada@example.com")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := repo.Insert(ctx, sampleUser("ada@example.com"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSqliteFindMissing(t *testing.T) {
	repo := newSqliteRepo(t)

	if _, err := repo.FindByID(context.Background(), 404); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSqliteUpdateByID(t *testing.T) {
	repo := newSqliteRepo(t)
	ctx := context.Background()

	u := sampleUser("ada@example.com")
	if err := repo.Insert(ctx, u); err != nil {
		t.Fatalf("insert: %v", err)
	}

	changed := *u
	changed.Email = "countess@example.com"
	changed.Phone = "0700000000"
	updated, err := repo.UpdateByID(ctx, u.ID, &changed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "countess@example.com" || updated.Phone != "0700000000" || updated.ID != u.ID {
		t.Fatalf("unexpected updated user %+v", updated)
	}

	if _, err := repo.FindByEmail(ctx, "ada@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("old email should be gone, got %v", err)
	}
}

func TestSqliteUpdateEmailTaken(t *testing.T) {
	repo := newSqliteRepo(t)
	ctx := context.Background()

	first := sampleUser("ada@example.com")
	second := sampleUser("grace@example.com")
	for _, u := range []*domain.User{first, second} {
		if err := repo.Insert(ctx, u); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	changed := *second
	changed.Email = "ada@example.com"
	if _, err := repo.UpdateByID(ctx, second.ID, &changed); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSqliteUpdateMissing(t *testing.T) {
	repo := newSqliteRepo(t)

	_, err := repo.UpdateByID(context.Background(), 12, sampleUser("x@example.com"))
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
