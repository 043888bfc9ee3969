package developers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresStore is the database-backed developer Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const developerColumns = `id, name, email, skills, created_at, updated_at`

// Create implements Store. Duplicate emails return ErrEmailTaken.
func (s *PostgresStore) Create(ctx context.Context, d *Developer) (*Developer, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO developers (name, email, skills, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 RETURNING `+developerColumns,
		d.Name, d.Email, pq.Array(d.Skills))
	created, err := scanDeveloper(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// FindByID implements Store.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Developer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+developerColumns+` FROM developers WHERE id = $1`, id)
	return scanDeveloper(row)
}

// Page implements Store.
func (s *PostgresStore) Page(ctx context.Context, offset, limit int) ([]*Developer, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM developers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count developers: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+developerColumns+` FROM developers ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("page developers: %w", err)
	}
	defer rows.Close()

	var out []*Developer
	for rows.Next() {
		d, err := scanDeveloper(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, d *Developer) (*Developer, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE developers SET name = $1, email = $2, skills = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING `+developerColumns,
		d.Name, d.Email, pq.Array(d.Skills), d.ID)
	updated, err := scanDeveloper(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return updated, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM developers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete developer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete developer: %w", err)
	}
	if affected == 0 {
		return ErrDeveloperNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeveloper(row rowScanner) (*Developer, error) {
	var (
		d      Developer
		skills pq.StringArray
	)
	err := row.Scan(&d.ID, &d.Name, &d.Email, &skills, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("scan developer: %w", err)
	}
	d.Skills = []string(skills)
	return &d, nil
}
