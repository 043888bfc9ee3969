package developers

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory developer Store for tests and local
// development.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Developer
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]*Developer)}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, d *Developer) (*Developer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == d.Email {
			return nil, ErrEmailTaken
		}
	}
	s.nextID++
	cp := copyDeveloper(d)
	cp.ID = s.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.byID[cp.ID] = cp
	return copyDeveloper(cp), nil
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Developer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, ErrDeveloperNotFound
	}
	return copyDeveloper(d), nil
}

// Page implements Store.
func (s *MemoryStore) Page(_ context.Context, offset, limit int) ([]*Developer, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*Developer
	for id := int64(1); id <= s.nextID; id++ {
		if d, ok := s.byID[id]; ok {
			all = append(all, d)
		}
	}
	total := int64(len(all))

	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*Developer, 0, end-offset)
	for _, d := range all[offset:end] {
		out = append(out, copyDeveloper(d))
	}
	return out, total, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, d *Developer) (*Developer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[d.ID]
	if !ok {
		return nil, ErrDeveloperNotFound
	}
	for id, other := range s.byID {
		if id != d.ID && other.Email == d.Email {
			return nil, ErrEmailTaken
		}
	}
	cp := copyDeveloper(d)
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now()
	s.byID[cp.ID] = cp
	return copyDeveloper(cp), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrDeveloperNotFound
	}
	delete(s.byID, id)
	return nil
}

func copyDeveloper(d *Developer) *Developer {
	cp := *d
	cp.Skills = append([]string(nil), d.Skills...)
	return &cp
}
