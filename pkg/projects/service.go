package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trackforge/tracker/pkg/audit"
)

// AuditRecorder receives entity mutation events.
type AuditRecorder interface {
	Record(ctx context.Context, action audit.ActionType, entityType string, args ...any)
}

const entityType = "Project"

// Input carries the writable fields of a project.
type Input struct {
	Name        string
	Description string
	Deadline    *time.Time
	Status      Status
}

func (in Input) validate() error {
	if in.Name == "" {
		return errors.New("project name is required")
	}
	if !in.Status.Valid() {
		return fmt.Errorf("invalid project status %q", in.Status)
	}
	return nil
}

// Service manages projects and records mutations in the audit trail after
// they succeed.
type Service struct {
	store    Store
	recorder AuditRecorder
}

// NewService creates the project service.
func NewService(store Store, recorder AuditRecorder) *Service {
	return &Service{store: store, recorder: recorder}
}

// Create adds a new project.
func (s *Service) Create(ctx context.Context, in Input) (*Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, &Project{
		Name:        in.Name,
		Description: in.Description,
		Deadline:    in.Deadline,
		Status:      in.Status,
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionCreate, entityType, created.ID, created)
	return created, nil
}

// Get returns one project by id.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionGet, entityType, id, p)
	return p, nil
}

// List returns all projects.
func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.store.List(ctx)
}

// WithoutTasks returns projects that have no tasks yet.
func (s *Service) WithoutTasks(ctx context.Context) ([]*Project, error) {
	return s.store.WithoutTasks(ctx)
}

// Update replaces a project's writable fields.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = in.Name
	existing.Description = in.Description
	existing.Deadline = in.Deadline
	existing.Status = in.Status

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, entityType, id, updated)
	return updated, nil
}

// Delete removes a project and, through the schema, its tasks.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionDelete, entityType, id)
	return nil
}
