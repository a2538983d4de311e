package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/mediator-go/internal/domain/shared"
)

// MaxNameLength is the longest first or last name, in characters
const MaxNameLength = 100

// User is a registered user. Fields are unexported: the only ways to obtain a
// User are NewUser and Rehydrate, both of which enforce the invariants below.
//
// Invariants:
//   - id is a non-nil UUID
//   - first and last names are non-empty, trimmed, at most 100 characters
//   - email is lower-cased with a non-empty local part and domain
type User struct {
	id        uuid.UUID
	firstName string
	lastName  string
	email     string
	createdAt time.Time
}

// NewUser creates a user with a fresh identity
func NewUser(firstName, lastName, email string, clock shared.Clock) (*User, error) {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return build(uuid.New(), firstName, lastName, email, clock.Now())
}

// Rehydrate rebuilds a user from persisted state
func Rehydrate(id uuid.UUID, firstName, lastName, email string, createdAt time.Time) (*User, error) {
	return build(id, firstName, lastName, email, createdAt)
}

func build(id uuid.UUID, firstName, lastName, email string, createdAt time.Time) (*User, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("id", "must not be nil")
	}

	firstName = strings.TrimSpace(firstName)
	if err := checkName("first_name", firstName); err != nil {
		return nil, err
	}

	lastName = strings.TrimSpace(lastName)
	if err := checkName("last_name", lastName); err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return nil, shared.NewValidationError("email", "must have the form local@domain")
	}

	return &User{
		id:        id,
		firstName: firstName,
		lastName:  lastName,
		email:     email,
		createdAt: createdAt.UTC(),
	}, nil
}

func checkName(field, value string) error {
	if value == "" {
		return shared.NewValidationError(field, "is required")
	}
	if len([]rune(value)) > MaxNameLength {
		return shared.NewValidationError(field, fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) FirstName() string    { return u.firstName }
func (u *User) LastName() string     { return u.lastName }
func (u *User) Email() string        { return u.email }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.firstName + " " + u.lastName
}
