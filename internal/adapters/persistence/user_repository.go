package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

const repositoryName = "user"

// GormUserRepository implements user.Repository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Add inserts a user. A second user with the same email fails with
// *user.EmailTakenError.
func (r *GormUserRepository) Add(ctx context.Context, u *user.User) error {
	model := userToModel(u)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.NewEmailTakenError(u.Email())
		}
		return r.storeError(ctx, "add user", err)
	}

	return nil
}

// FindByID retrieves a user by id
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id.String(), id.String())
}

// FindByEmail retrieves a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	return r.findOne(ctx, "email = ?", email, email)
}

func (r *GormUserRepository) findOne(ctx context.Context, where string, arg any, key string) (*user.User, error) {
	var model UserModel
	result := r.db.WithContext(ctx).Where(where, arg).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, user.NewUserNotFoundError(key)
		}
		return nil, r.storeError(ctx, "find user", result.Error)
	}

	return modelToUser(&model)
}

// List retrieves one page of users ordered by creation time
func (r *GormUserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	var models []UserModel
	result := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&models)
	if result.Error != nil {
		return nil, r.storeError(ctx, "list users", result.Error)
	}

	users := make([]*user.User, 0, len(models))
	for i := range models {
		u, err := modelToUser(&models[i])
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}

// storeError reports context cancellation as *shared.CancelledError and
// everything else as an unavailable store.
func (r *GormUserRepository) storeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return shared.NewCancelledError(fmt.Errorf("%s: %w", op, ctxErr))
	}
	return shared.NewRepositoryUnavailableError(repositoryName, fmt.Errorf("%s: %w", op, err))
}

func modelToUser(model *UserModel) (*user.User, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in database: %w", err)
	}

	u, err := user.Rehydrate(id, model.FirstName, model.LastName, model.Email, model.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid user %s in database: %w", model.ID, err)
	}
	return u, nil
}

func userToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:        u.ID().String(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Email:     u.Email(),
		CreatedAt: u.CreatedAt(),
	}
}
