package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore is the database-backed task Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const taskColumns = `id, title, description, status, due_date, project_id, assignee_id, created_at, updated_at`

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, t *Task) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, status, due_date, project_id, assignee_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+taskColumns,
		t.Title, t.Description, string(t.Status), t.DueDate, t.ProjectID, t.AssigneeID)
	return scanTask(row)
}

// FindByID implements Store.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// sortClauses maps every valid SortField to its ORDER BY clause so no
// caller-supplied text ever reaches the query.
var sortClauses = map[SortField]string{
	SortByID:      "id",
	SortByTitle:   "title",
	SortByStatus:  "status",
	SortByDueDate: "due_date NULLS LAST, id",
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, sortBy SortField) ([]*Task, error) {
	clause, ok := sortClauses[sortBy]
	if !ok {
		return nil, ErrInvalidSortField
	}
	return s.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY `+clause)
}

// ByProject implements Store.
func (s *PostgresStore) ByProject(ctx context.Context, projectID int64) ([]*Task, error) {
	return s.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY id`, projectID)
}

// ByAssignee implements Store.
func (s *PostgresStore) ByAssignee(ctx context.Context, userID int64) ([]*Task, error) {
	return s.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE assignee_id = $1 ORDER BY id`, userID)
}

// Overdue implements Store.
func (s *PostgresStore) Overdue(ctx context.Context, now time.Time) ([]*Task, error) {
	return s.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE due_date < $1 AND status <> $2 ORDER BY due_date`,
		now, string(StatusCompleted))
}

// CountsByStatus implements Store.
func (s *PostgresStore) CountsByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out = append(out, StatusCount{Status: Status(status), Count: count})
	}
	return out, rows.Err()
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, t *Task) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, status = $3, due_date = $4, project_id = $5, assignee_id = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING `+taskColumns,
		t.Title, t.Description, string(t.Status), t.DueDate, t.ProjectID, t.AssigneeID, t.ID)
	return scanTask(row)
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var (
		t      Task
		status string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.DueDate,
		&t.ProjectID, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Status = Status(status)
	return &t, nil
}
