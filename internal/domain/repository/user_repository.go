package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lukian/user-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when an id does not resolve to an active
	// (non-deleted) user.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the email is already used by an
	// active user.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
// Implementations never return soft-deleted rows; the "active only" filter
// belongs to this boundary, not to callers.
type UserRepository interface {
	// Create persists a new user and fills in the storage-assigned fields
	// (ID, CreatedAt, UpdatedAt).
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// SoftDelete flips the deletion flag in place of removing the row.
	// Deleting an unknown or already-deleted id returns ErrNotFound.
	SoftDelete(ctx context.Context, id int64) error
	// FindByBirthDateBetween returns active users with from <= birthDate <= to.
	// An inverted range simply matches nothing.
	FindByBirthDateBetween(ctx context.Context, from, to time.Time) ([]*entity.User, error)
}
