package projects

import "context"

// Store persists projects.
type Store interface {
	Create(ctx context.Context, p *Project) (*Project, error)
	FindByID(ctx context.Context, id int64) (*Project, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*Project, error)
	// WithoutTasks returns projects that have no tasks at all.
	WithoutTasks(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, p *Project) (*Project, error)
	Delete(ctx context.Context, id int64) error
}
