package auth

import (
	"context"
	"errors"
)

// Store errors returned by IdentityStore implementations.
var (
	// ErrUserNotFound indicates no account exists for the given key.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates an insert hit the unique constraint on email.
	// Callers provisioning accounts handle this with a fetch-retry so that
	// concurrent first logins converge on a single account.
	ErrEmailTaken = errors.New("email already registered")
)

// IdentityStore loads and persists user accounts. Implementations live in
// pkg/users; they must be safe for concurrent use and must enforce a unique
// constraint on email.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new account. Returns ErrEmailTaken when the email is
	// already registered.
	Create(ctx context.Context, user *User) (*User, error)

	Update(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*User, error)
}
