package auth

import "time"

// Role is an organization-wide role held by exactly one user account.
// The set is closed; there is no hierarchy or inheritance between roles.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleDeveloper  Role = "DEVELOPER"
	RoleContractor Role = "CONTRACTOR"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleDeveloper, RoleContractor}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDeveloper, RoleContractor:
		return true
	}
	return false
}

// Capability returns the capability label for the role. The mapping is a
// fixed bijection of the role name.
func (r Role) Capability() string {
	return "ROLE_" + string(r)
}

// RoleFromCapability inverts Capability.
func RoleFromCapability(capability string) (Role, bool) {
	for _, r := range Roles() {
		if r.Capability() == capability {
			return r, true
		}
	}
	return "", false
}

// Principal is the authenticated identity attached to a request.
// An authenticated principal always carries a valid role; unauthenticated
// requests carry no Principal at all.
type Principal struct {
	Subject    string `json:"subject"`
	Role       Role   `json:"role"`
	Capability string `json:"capability"`
}

// NewPrincipal builds a Principal for a subject and role.
func NewPrincipal(subject string, role Role) *Principal {
	return &Principal{
		Subject:    subject,
		Role:       role,
		Capability: role.Capability(),
	}
}

// User is a stored user account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Skills       []string  `json:"skills,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FederatedPasswordMarker is stored as the password hash of accounts
// provisioned through federated login. It is not a valid bcrypt hash, so
// password login can never succeed against it.
const FederatedPasswordMarker = "not-available"
