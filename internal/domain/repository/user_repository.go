package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// CreateIfAbsent inserts u unless its email is taken. It reports false,
	// without error, when the unique email constraint rejected the row.
	CreateIfAbsent(ctx context.Context, u *entity.User) (bool, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
