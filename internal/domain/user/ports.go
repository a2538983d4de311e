package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines user persistence operations.
// Implementations return *shared.RepositoryUnavailableError when the backing
// store cannot be reached and NewUserNotFoundError for missing users.
type Repository interface {
	Add(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
}
