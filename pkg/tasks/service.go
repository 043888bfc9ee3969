package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trackforge/tracker/pkg/audit"
	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/projects"
)

// AuditRecorder receives entity mutation events.
type AuditRecorder interface {
	Record(ctx context.Context, action audit.ActionType, entityType string, args ...any)
}

// ProjectDirectory answers whether a project exists.
type ProjectDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// UserDirectory resolves users for assignee validation and ownership
// checks. auth.IdentityStore satisfies it.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
}

const entityType = "Task"

// Input carries the writable fields of a task.
type Input struct {
	Title       string
	Description string
	Status      Status
	DueDate     *time.Time
	ProjectID   int64
	AssigneeID  *int64
}

func (in Input) validate() error {
	if in.Title == "" {
		return errors.New("task title is required")
	}
	if !in.Status.Valid() {
		return fmt.Errorf("invalid task status %q", in.Status)
	}
	if in.ProjectID == 0 {
		return errors.New("project id is required")
	}
	return nil
}

// Service manages tasks. Creating or moving a task verifies the target
// project and assignee exist; mutations are audited after they succeed.
type Service struct {
	store    Store
	projects ProjectDirectory
	users    UserDirectory
	recorder AuditRecorder
	now      func() time.Time
}

// NewService creates the task service.
func NewService(store Store, projectDir ProjectDirectory, userDir UserDirectory, recorder AuditRecorder) *Service {
	return &Service{
		store:    store,
		projects: projectDir,
		users:    userDir,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *Service) checkReferences(ctx context.Context, in Input) error {
	exists, err := s.projects.Exists(ctx, in.ProjectID)
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if !exists {
		return projects.ErrProjectNotFound
	}
	if in.AssigneeID != nil {
		if _, err := s.users.FindByID(ctx, *in.AssigneeID); err != nil {
			return fmt.Errorf("check assignee: %w", err)
		}
	}
	return nil
}

// Create adds a task to a project.
func (s *Service) Create(ctx context.Context, in Input) (*Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, &Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionCreate, entityType, created.ID, created)
	return created, nil
}

// Get returns one task by id.
func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionGet, entityType, id, t)
	return t, nil
}

// List returns all tasks ordered by sortBy. An empty sortBy orders by id.
func (s *Service) List(ctx context.Context, sortBy SortField) ([]*Task, error) {
	if sortBy == "" {
		sortBy = SortByID
	}
	if !sortBy.Valid() {
		return nil, ErrInvalidSortField
	}
	return s.store.List(ctx, sortBy)
}

// ByProject returns a project's tasks.
func (s *Service) ByProject(ctx context.Context, projectID int64) ([]*Task, error) {
	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("check project: %w", err)
	}
	if !exists {
		return nil, projects.ErrProjectNotFound
	}
	return s.store.ByProject(ctx, projectID)
}

// ByAssignee returns the tasks assigned to a user.
func (s *Service) ByAssignee(ctx context.Context, userID int64) ([]*Task, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ByAssignee(ctx, userID)
}

// Overdue returns tasks past their due date that are not completed.
func (s *Service) Overdue(ctx context.Context) ([]*Task, error) {
	return s.store.Overdue(ctx, s.now())
}

// CountsByStatus returns how many tasks are in each status.
func (s *Service) CountsByStatus(ctx context.Context) ([]StatusCount, error) {
	return s.store.CountsByStatus(ctx)
}

// Update replaces a task's writable fields.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	existing.Title = in.Title
	existing.Description = in.Description
	existing.Status = in.Status
	existing.DueDate = in.DueDate
	existing.ProjectID = in.ProjectID
	existing.AssigneeID = in.AssigneeID

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, entityType, id, updated)
	return updated, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionDelete, entityType, id)
	return nil
}

// IsAssignee reports whether the task is assigned to the user whose email
// is subject. Unknown tasks and unassigned tasks are simply not owned;
// the authorization layer turns that into a denial.
func (s *Service) IsAssignee(ctx context.Context, taskID int64, subject string) (bool, error) {
	task, err := s.store.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return false, nil
		}
		return false, err
	}
	if task.AssigneeID == nil {
		return false, nil
	}
	user, err := s.users.FindByID(ctx, *task.AssigneeID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Email == subject, nil
}
