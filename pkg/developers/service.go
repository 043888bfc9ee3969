package developers

import (
	"context"
	"errors"
	"strings"

	"github.com/trackforge/tracker/pkg/audit"
)

// AuditRecorder receives entity mutation events.
type AuditRecorder interface {
	Record(ctx context.Context, action audit.ActionType, entityType string, args ...any)
}

const entityType = "Developer"

// DefaultPageSize is used when a listing request names no page size.
const DefaultPageSize = 2

// Input carries the writable fields of a developer profile.
type Input struct {
	Name   string
	Email  string
	Skills []string
}

func (in Input) validate() error {
	if in.Name == "" {
		return errors.New("developer name is required")
	}
	if in.Email == "" {
		return errors.New("developer email is required")
	}
	if len(in.Skills) == 0 {
		return errors.New("at least one skill is required")
	}
	return nil
}

// PageResult is one page of the developer directory.
type PageResult struct {
	Developers  []*Developer `json:"developers"`
	CurrentPage int          `json:"currentPage"`
	TotalItems  int64        `json:"totalItems"`
	TotalPages  int          `json:"totalPages"`
}

// Service manages the developer directory and records mutations in the
// audit trail after they succeed.
type Service struct {
	store    Store
	recorder AuditRecorder
}

// NewService creates the developer service.
func NewService(store Store, recorder AuditRecorder) *Service {
	return &Service{store: store, recorder: recorder}
}

// Create adds a developer profile.
func (s *Service) Create(ctx context.Context, in Input) (*Developer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, &Developer{
		Name:   in.Name,
		Email:  strings.ToLower(in.Email),
		Skills: in.Skills,
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionCreate, entityType, created.ID, created)
	return created, nil
}

// Get returns one developer by id.
func (s *Service) Get(ctx context.Context, id int64) (*Developer, error) {
	return s.store.FindByID(ctx, id)
}

// Page returns page number page (zero-based) with size entries, plus
// paging totals. A non-positive size selects DefaultPageSize.
func (s *Service) Page(ctx context.Context, page, size int) (*PageResult, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	list, total, err := s.store.Page(ctx, page*size, size)
	if err != nil {
		return nil, err
	}
	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	if list == nil {
		list = []*Developer{}
	}
	return &PageResult{
		Developers:  list,
		CurrentPage: page,
		TotalItems:  total,
		TotalPages:  totalPages,
	}, nil
}

// Update replaces a developer profile's fields.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Developer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = in.Name
	existing.Email = strings.ToLower(in.Email)
	existing.Skills = in.Skills

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, entityType, id, updated)
	return updated, nil
}

// Delete removes a developer profile.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionDelete, entityType, id, existing)
	return nil
}
