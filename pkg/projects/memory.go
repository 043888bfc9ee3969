package projects

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory project Store for tests and local
// development.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Project

	// HasTasks reports whether a project has tasks; it backs WithoutTasks.
	// When nil every project is treated as task-less.
	HasTasks func(ctx context.Context, projectID int64) (bool, error)
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]*Project)}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, p *Project) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cp := *p
	cp.ID = s.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

// Exists implements Store.
func (s *MemoryStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	return ok, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Project, 0, len(s.byID))
	for id := int64(1); id <= s.nextID; id++ {
		if p, ok := s.byID[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// WithoutTasks implements Store.
func (s *MemoryStore) WithoutTasks(ctx context.Context) ([]*Project, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.HasTasks == nil {
		return all, nil
	}
	var out []*Project
	for _, p := range all {
		has, err := s.HasTasks(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if !has {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, p *Project) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[p.ID]
	if !ok {
		return nil, ErrProjectNotFound
	}
	cp := *p
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now()
	s.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrProjectNotFound
	}
	delete(s.byID, id)
	return nil
}
