package repository

import (
	"context"
	"errors"

	"tkd-backend/internal/domain"
)

var (
	// ErrUserNotFound is returned when a lookup matches no row.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an insert violates email uniqueness. The
	// store-level unique index is the actual enforcer; callers may pre-check
	// but must treat that as an optimization only.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
