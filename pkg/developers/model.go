package developers

import (
	"errors"
	"time"
)

// ErrDeveloperNotFound is returned when no developer exists for an id.
var ErrDeveloperNotFound = errors.New("developer not found")

// ErrEmailTaken is returned when a developer's email is already registered.
var ErrEmailTaken = errors.New("developer email already registered")

// Developer is a directory entry for an engineer who can be staffed on
// tasks. It is profile data only; credentials and roles live on the
// account in pkg/users.
type Developer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
