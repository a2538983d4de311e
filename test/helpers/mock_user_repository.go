package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

// MockUserRepository is an in-memory test double for user.Repository
type MockUserRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*user.User
	byEmail map[string]*user.User
	failure error
	calls   map[string]int
	onCall  func(method string)
}

// NewMockUserRepository creates a new mock user repository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:   make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
		calls:   make(map[string]int),
	}
}

// Seed stores users directly, bypassing failure injection
func (m *MockUserRepository) Seed(users ...*user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		m.users[u.ID()] = u
		m.byEmail[u.Email()] = u
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MockUserRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// OnCall runs hook at the start of every repository call, e.g. to cancel
// the caller's context mid-dispatch.
func (m *MockUserRepository) OnCall(hook func(method string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCall = hook
}

// enter records a call and reports cancellation or the injected failure.
// Callers hold m.mu.
func (m *MockUserRepository) enter(ctx context.Context, method string) error {
	m.calls[method]++
	if m.onCall != nil {
		m.onCall(method)
	}
	if err := ctx.Err(); err != nil {
		return shared.NewCancelledError(err)
	}
	return m.failure
}

// GoDown simulates an unreachable store
func (m *MockUserRepository) GoDown(cause error) {
	m.FailWith(shared.NewRepositoryUnavailableError("user", cause))
}

// Calls returns how often method was invoked
func (m *MockUserRepository) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// Count returns the number of stored users
func (m *MockUserRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *MockUserRepository) Add(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "Add"); err != nil {
		return err
	}
	if _, taken := m.byEmail[u.Email()]; taken {
		return user.NewEmailTakenError(u.Email())
	}
	m.users[u.ID()] = u
	m.byEmail[u.Email()] = u
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "FindByID"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, user.NewUserNotFoundError(id.String())
	}
	return u, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "FindByEmail"); err != nil {
		return nil, err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.NewUserNotFoundError(email)
	}
	return u, nil
}

// List returns users ordered by creation time, then id
func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "List"); err != nil {
		return nil, err
	}

	all := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt().Equal(all[j].CreatedAt()) {
			return all[i].CreatedAt().Before(all[j].CreatedAt())
		}
		return all[i].ID().String() < all[j].ID().String()
	})

	if offset >= len(all) {
		return []*user.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
