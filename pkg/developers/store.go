package developers

import "context"

// Store persists developer profiles.
type Store interface {
	Create(ctx context.Context, d *Developer) (*Developer, error)
	FindByID(ctx context.Context, id int64) (*Developer, error)
	// Page returns one page of developers ordered by id, plus the total
	// number of developers across all pages.
	Page(ctx context.Context, offset, limit int) ([]*Developer, int64, error)
	Update(ctx context.Context, d *Developer) (*Developer, error)
	Delete(ctx context.Context, id int64) error
}
