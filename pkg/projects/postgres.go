package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore is the database-backed project Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const projectColumns = `id, name, description, deadline, status, created_at, updated_at`

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, p *Project) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO projects (name, description, deadline, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 RETURNING `+projectColumns,
		p.Name, p.Description, p.Deadline, string(p.Status))
	return scanProject(row)
}

// FindByID implements Store.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

// Exists implements Store.
func (s *PostgresStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return exists, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

// WithoutTasks implements Store.
func (s *PostgresStore) WithoutTasks(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.deadline, p.status, p.created_at, p.updated_at
		 FROM projects p
		 LEFT JOIN tasks t ON t.project_id = p.id
		 WHERE t.id IS NULL
		 ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list projects without tasks: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, p *Project) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE projects SET name = $1, description = $2, deadline = $3, status = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING `+projectColumns,
		p.Name, p.Description, p.Deadline, string(p.Status), p.ID)
	return scanProject(row)
}

// Delete implements Store. Tasks belonging to the project are removed by
// the ON DELETE CASCADE constraint.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		p      Project
		status string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Deadline, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Status = Status(status)
	return &p, nil
}

func collectProjects(rows *sql.Rows) ([]*Project, error) {
	var out []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
