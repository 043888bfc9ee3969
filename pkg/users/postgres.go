package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/trackforge/tracker/pkg/auth"
)

// uniqueViolation is the PostgreSQL error code raised on unique index
// conflicts, used to map duplicate emails to auth.ErrEmailTaken.
const uniqueViolation = "23505"

// PostgresStore is the database-backed auth.IdentityStore.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle. The users
// table is expected to exist (see pkg/storage).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, name, email, password_hash, skills, role, created_at, updated_at`

// FindByEmail implements auth.IdentityStore.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID implements auth.IdentityStore.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// ExistsByEmail implements auth.IdentityStore.
func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// Create implements auth.IdentityStore. Duplicate emails return
// auth.ErrEmailTaken; the unique index makes concurrent inserts of the
// same email safe.
func (s *PostgresStore) Create(ctx context.Context, u *auth.User) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, skills, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, pq.Array(u.Skills), string(u.Role))
	created, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, auth.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// Update implements auth.IdentityStore.
func (s *PostgresStore) Update(ctx context.Context, u *auth.User) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE users SET name = $1, skills = $2, role = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING `+userColumns,
		u.Name, pq.Array(u.Skills), string(u.Role), u.ID)
	return scanUser(row)
}

// Delete implements auth.IdentityStore.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// List implements auth.IdentityStore.
func (s *PostgresStore) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u     auth.User
		role  string
		skill pq.StringArray
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &skill, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Skills = []string(skill)
	u.Role = auth.Role(role)
	return &u, nil
}
