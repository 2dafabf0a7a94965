package repository

import (
	"context"

	"github.com/yudapratama/go-auth-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// GetByEmail and GetByID return (nil, nil) when no record exists; Create
// returns a DuplicateError when the normalized email is already taken.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
