package auth

import (
	"context"
	"sync"
	"time"
)

// fakeStore is an in-memory IdentityStore used by the package tests.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*User

	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*User)}
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[email]
	return ok, nil
}

func (s *fakeStore) Create(_ context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return nil, ErrEmailTaken
	}
	s.nextID++
	cp := *u
	cp.ID = s.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.users[cp.Email] = &cp
	out := cp
	return &out, nil
}

func (s *fakeStore) Update(_ context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, existing := range s.users {
		if existing.ID == u.ID {
			delete(s.users, email)
			cp := *u
			cp.UpdatedAt = time.Now()
			s.users[cp.Email] = &cp
			out := cp
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, existing := range s.users {
		if existing.ID == id {
			delete(s.users, email)
			return nil
		}
	}
	return ErrUserNotFound
}

func (s *fakeStore) List(_ context.Context) ([]*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}
