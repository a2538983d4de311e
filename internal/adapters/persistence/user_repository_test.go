package persistence_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/mediator-go/internal/adapters/persistence"
	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/database"
	"github.com/andrescamacho/mediator-go/test/helpers"
)

func newUser(t *testing.T, first, email string, clock shared.Clock) *user.User {
	t.Helper()
	u, err := user.NewUser(first, "Doe", email, clock)
	require.NoError(t, err)
	return u
}

func TestUserRepository_AddAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)
	ana := newUser(t, "Ana", "ana@x.com", nil)

	// Act
	err := repo.Add(context.Background(), ana)

	// Assert
	require.NoError(t, err)

	byID, err := repo.FindByID(context.Background(), ana.ID())
	require.NoError(t, err)
	assert.Equal(t, ana.ID(), byID.ID())
	assert.Equal(t, "Ana", byID.FirstName())
	assert.Equal(t, "Doe", byID.LastName())
	assert.WithinDuration(t, ana.CreatedAt(), byID.CreatedAt(), time.Millisecond)

	byEmail, err := repo.FindByEmail(context.Background(), " ANA@x.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID(), byEmail.ID())
}

func TestUserRepository_NotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())

	assert.True(t, user.IsNotFound(err))
	assert.Equal(t, mediator.TaxonomyDomainRuleViolation, mediator.TaxonomyOf(err))
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)
	require.NoError(t, repo.Add(context.Background(), newUser(t, "Ana", "ana@x.com", nil)))

	err := repo.Add(context.Background(), newUser(t, "Other", "ana@x.com", nil))

	var taken *user.EmailTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, "ana@x.com", taken.Email)
}

func TestUserRepository_ListPagesInCreationOrder(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	var created []*user.User
	for i := 0; i < 4; i++ {
		u := newUser(t, fmt.Sprintf("User%d", i), fmt.Sprintf("u%d@x.com", i), clock)
		require.NoError(t, repo.Add(context.Background(), u))
		created = append(created, u)
		clock.Advance(time.Second)
	}

	// Act
	page, err := repo.List(context.Background(), 2, 1)

	// Assert
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[1].ID(), page[0].ID())
	assert.Equal(t, created[2].ID(), page[1].ID())

	rest, err := repo.List(context.Background(), 10, 4)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestUserRepository_ClosedDatabaseIsUnavailable(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)
	require.NoError(t, database.Close(db))

	_, err := repo.FindByEmail(context.Background(), "ana@x.com")

	var unavailable *shared.RepositoryUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "user", unavailable.Repository)
	assert.Equal(t, mediator.TaxonomyRepositoryUnavailable, mediator.TaxonomyOf(err))
}

func TestUserRepository_CancelledContext(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx, 10, 0)

	var cancelled *shared.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, mediator.TaxonomyCancelled, mediator.TaxonomyOf(err))
}
