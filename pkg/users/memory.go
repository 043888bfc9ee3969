package users

import (
	"context"
	"sync"
	"time"

	"github.com/trackforge/tracker/pkg/auth"
)

// MemoryStore is an in-memory auth.IdentityStore. It backs tests and
// local development without a database.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*auth.User
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]*auth.User)}
}

// FindByEmail implements auth.IdentityStore.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return copyUser(u), nil
}

// FindByID implements auth.IdentityStore.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// ExistsByEmail implements auth.IdentityStore.
func (s *MemoryStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

// Create implements auth.IdentityStore. The write lock makes the
// exists-then-insert atomic, matching the database unique index.
func (s *MemoryStore) Create(_ context.Context, u *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, auth.ErrEmailTaken
	}
	s.nextID++
	cp := *u
	cp.ID = s.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.byEmail[cp.Email] = &cp
	return copyUser(&cp), nil
}

// Update implements auth.IdentityStore.
func (s *MemoryStore) Update(_ context.Context, u *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, existing := range s.byEmail {
		if existing.ID == u.ID {
			cp := *existing
			cp.Name = u.Name
			cp.Skills = u.Skills
			cp.Role = u.Role
			cp.UpdatedAt = time.Now()
			s.byEmail[email] = &cp
			return copyUser(&cp), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// Delete implements auth.IdentityStore.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, existing := range s.byEmail {
		if existing.ID == id {
			delete(s.byEmail, email)
			return nil
		}
	}
	return auth.ErrUserNotFound
}

// List implements auth.IdentityStore.
func (s *MemoryStore) List(_ context.Context) ([]*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*auth.User, 0, len(s.byEmail))
	for _, u := range s.byEmail {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func copyUser(u *auth.User) *auth.User {
	cp := *u
	cp.Skills = append([]string(nil), u.Skills...)
	return &cp
}
