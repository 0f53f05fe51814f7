package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteUserColumns = `id, email, first_name, last_name, dob, address, phone, created_at, updated_at`

// SQLite-backed implementation of the UserRepository port.
type SqliteUserRepository struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSqliteUserRepository(db *sql.DB) *SqliteUserRepository {
	return &SqliteUserRepository{DB: db, Now: time.Now}
}

func (s *SqliteUserRepository) FindByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.sqlite.FindByEmail")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite user repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE email = ?;`, email)
	u, err := scanSqliteUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user email=%q: %w", email, err)
	}
	return u, nil
}

func (s *SqliteUserRepository) FindByID(ctx context.Context, id int) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.sqlite.FindByID")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite user repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?;`, id)
	u, err := scanSqliteUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user id=%d: %w", id, err)
	}
	return u, nil
}

func (s *SqliteUserRepository) Insert(ctx context.Context, u *domain.User) (err error) {
	defer obs.Time(ctx, "users.sqlite.Insert")(&err)

	if s.DB == nil {
		return errors.New("sqlite user repository: DB is nil")
	}

	now := s.now()
	query := `
	INSERT INTO users (email, first_name, last_name, dob, address, phone, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (email) DO NOTHING
	RETURNING id;
	`
	err = s.DB.QueryRowContext(ctx, query,
		u.Email, u.FirstName, u.LastName, domain.FormatDOB(u.DOB), u.Address, u.Phone,
		formatTimestamp(now), formatTimestamp(now),
	).Scan(&u.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("insert user email=%q: %w", u.Email, domain.ErrDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("insert user email=%q: %w", u.Email, mapSqliteError(err))
	}

	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (s *SqliteUserRepository) UpdateByID(ctx context.Context, id int, u *domain.User) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.sqlite.UpdateByID")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite user repository: DB is nil")
	}

	query := `
	UPDATE users
	SET email = ?,
		first_name = ?,
		last_name = ?,
		dob = ?,
		address = ?,
		phone = ?,
		updated_at = ?
	WHERE id = ?
	RETURNING ` + sqliteUserColumns + `;
	`
	row := s.DB.QueryRowContext(ctx, query,
		u.Email, u.FirstName, u.LastName, domain.FormatDOB(u.DOB), u.Address, u.Phone,
		formatTimestamp(s.now()), id,
	)
	updated, err := scanSqliteUser(row)
	if err != nil {
		return nil, fmt.Errorf("update user id=%d: %w", id, err)
	}
	return updated, nil
}

func (s *SqliteUserRepository) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC().Truncate(time.Second)
	}
	return s.Now().UTC().Truncate(time.Second)
}

func scanSqliteUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var dob, createdAt, updatedAt string
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &dob, &u.Address, &u.Phone, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, mapSqliteError(err)
	}

	if u.DOB, err = domain.ParseDOB(dob); err != nil {
		return nil, fmt.Errorf("scan user id=%d: %w", u.ID, err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("scan user id=%d: parse created_at: %w", u.ID, err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("scan user id=%d: parse updated_at: %w", u.ID, err)
	}
	return &u, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapSqliteError(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return fmt.Errorf("%w: %v", domain.ErrDuplicateEmail, err)
		}
	}
	return err
}
