package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const pgUserColumns = `id, email, first_name, last_name, dob, address, phone, created_at, updated_at`

// Postgres-backed implementation of the UserRepository port.
type PostgresUserRepository struct{ DB *sql.DB }

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func (p *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.pg.FindByEmail")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres user repository: DB is nil")
	}

	row := p.DB.QueryRowContext(ctx, `SELECT `+pgUserColumns+` FROM users WHERE email = $1;`, email)
	u, err := scanPgUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user email=%q: %w", email, err)
	}
	return u, nil
}

func (p *PostgresUserRepository) FindByID(ctx context.Context, id int) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.pg.FindByID")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres user repository: DB is nil")
	}

	row := p.DB.QueryRowContext(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1;`, id)
	u, err := scanPgUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user id=%d: %w", id, err)
	}
	return u, nil
}

// Insert relies on the unique email constraint; a lost race surfaces as
// ErrDuplicateEmail instead of a constraint error.
func (p *PostgresUserRepository) Insert(ctx context.Context, u *domain.User) (err error) {
	defer obs.Time(ctx, "users.pg.Insert")(&err)

	if p.DB == nil {
		return errors.New("postgres user repository: DB is nil")
	}

	query := `
	INSERT INTO users (email, first_name, last_name, dob, address, phone)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (email) DO NOTHING
	RETURNING id, created_at, updated_at;
	`
	err = p.DB.QueryRowContext(ctx, query,
		u.Email, u.FirstName, u.LastName, u.DOB, u.Address, u.Phone,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("insert user email=%q: %w", u.Email, domain.ErrDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("insert user email=%q: %w", u.Email, mapPgError(err))
	}

	return nil
}

func (p *PostgresUserRepository) UpdateByID(ctx context.Context, id int, u *domain.User) (_ *domain.User, err error) {
	defer obs.Time(ctx, "users.pg.UpdateByID")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres user repository: DB is nil")
	}

	query := `
	UPDATE users
	SET email = $1,
		first_name = $2,
		last_name = $3,
		dob = $4,
		address = $5,
		phone = $6,
		updated_at = now()
	WHERE id = $7
	RETURNING ` + pgUserColumns + `;
	`
	row := p.DB.QueryRowContext(ctx, query,
		u.Email, u.FirstName, u.LastName, u.DOB, u.Address, u.Phone, id,
	)
	updated, err := scanPgUser(row)
	if err != nil {
		return nil, fmt.Errorf("update user id=%d: %w", id, err)
	}
	return updated, nil
}

func scanPgUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.DOB, &u.Address, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, mapPgError(err)
	}
	u.DOB = u.DOB.UTC()
	return &u, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, pgErr.ConstraintName)
	}
	return err
}
