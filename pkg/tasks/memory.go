package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory task Store for tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Task
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]*Task)}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, t *Task) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cp := copyTask(t)
	cp.ID = s.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.byID[cp.ID] = cp
	return copyTask(cp), nil
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return copyTask(t), nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, sortBy SortField) ([]*Task, error) {
	if !sortBy.Valid() {
		return nil, ErrInvalidSortField
	}
	out := s.filter(func(*Task) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch sortBy {
		case SortByTitle:
			return a.Title < b.Title
		case SortByStatus:
			return a.Status < b.Status
		case SortByDueDate:
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		default:
			return a.ID < b.ID
		}
	})
	return out, nil
}

// ByProject implements Store.
func (s *MemoryStore) ByProject(_ context.Context, projectID int64) ([]*Task, error) {
	return s.filter(func(t *Task) bool { return t.ProjectID == projectID }), nil
}

// ByAssignee implements Store.
func (s *MemoryStore) ByAssignee(_ context.Context, userID int64) ([]*Task, error) {
	return s.filter(func(t *Task) bool {
		return t.AssigneeID != nil && *t.AssigneeID == userID
	}), nil
}

// Overdue implements Store.
func (s *MemoryStore) Overdue(_ context.Context, now time.Time) ([]*Task, error) {
	return s.filter(func(t *Task) bool {
		return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
	}), nil
}

// CountsByStatus implements Store.
func (s *MemoryStore) CountsByStatus(_ context.Context) ([]StatusCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[Status]int64)
	for _, t := range s.byID {
		counts[t.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, StatusCount{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, t *Task) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[t.ID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cp := copyTask(t)
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now()
	s.byID[cp.ID] = cp
	return copyTask(cp), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrTaskNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) filter(keep func(*Task) bool) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Task
	for id := int64(1); id <= s.nextID; id++ {
		if t, ok := s.byID[id]; ok && keep(t) {
			out = append(out, copyTask(t))
		}
	}
	return out
}

func copyTask(t *Task) *Task {
	cp := *t
	if t.DueDate != nil {
		due := *t.DueDate
		cp.DueDate = &due
	}
	if t.AssigneeID != nil {
		assignee := *t.AssigneeID
		cp.AssigneeID = &assignee
	}
	return &cp
}
