package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lukian/user-api/internal/domain/entity"
	"github.com/lukian/user-api/internal/domain/repository"
)

const uniqueViolation = "23505"

// UserRepository persists users in Postgres. Every read filters out
// soft-deleted rows; callers never see the is_deleted column.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, birth_date, address, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.FirstName, u.LastName, u.BirthDate, u.Address, u.PhoneNumber)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, birth_date, address, phone_number, created_at, updated_at
		FROM users
		WHERE id = $1 AND is_deleted = FALSE
	`, id)

	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.BirthDate,
		&u.Address, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, birth_date = $4,
		    address = $5, phone_number = $6, updated_at = $7
		WHERE id = $8 AND is_deleted = FALSE
	`, u.Email, u.FirstName, u.LastName, u.BirthDate, u.Address, u.PhoneNumber, u.UpdatedAt, u.ID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete flips is_deleted; the row stays in place. Rows already
// deleted match nothing, so the caller sees the same not-found as for an
// unknown id.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) FindByBirthDateBetween(ctx context.Context, from, to time.Time) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, first_name, last_name, birth_date, address, phone_number, created_at, updated_at
		FROM users
		WHERE is_deleted = FALSE AND birth_date BETWEEN $1 AND $2
		ORDER BY id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u := &entity.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.BirthDate,
			&u.Address, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrEmailTaken
	}
	return err
}
