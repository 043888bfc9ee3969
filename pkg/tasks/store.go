package tasks

import (
	"context"
	"time"
)

// Store persists tasks.
type Store interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	FindByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, sortBy SortField) ([]*Task, error)
	ByProject(ctx context.Context, projectID int64) ([]*Task, error)
	ByAssignee(ctx context.Context, userID int64) ([]*Task, error)
	// Overdue returns tasks due before now that are not completed.
	Overdue(ctx context.Context, now time.Time) ([]*Task, error)
	CountsByStatus(ctx context.Context) ([]StatusCount, error)
	Update(ctx context.Context, t *Task) (*Task, error)
	Delete(ctx context.Context, id int64) error
}
