package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackforge/tracker/pkg/auth"
)

var userCols = []string{"id", "name", "email", "password_hash", "skills", "role", "created_at", "updated_at"}

func userRow(id int64, name, email, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).
		AddRow(id, name, email, "hash", pq.StringArray{"go"}, role, now, now)
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM users WHERE email =").
		WithArgs("alice@example.com").
		WillReturnRows(userRow(1, "Alice", "alice@example.com", "MANAGER"))

	u, err := store.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, auth.RoleManager, u.Role)
	assert.Equal(t, []string{"go"}, u.Skills)
}

func TestPostgresFindByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM users WHERE email =").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := store.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestPostgresCreate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Alice", "alice@example.com", "hash", sqlmock.AnyArg(), "DEVELOPER").
		WillReturnRows(userRow(5, "Alice", "alice@example.com", "DEVELOPER"))

	created, err := store.Create(context.Background(), &auth.User{
		Name: "Alice", Email: "alice@example.com", PasswordHash: "hash",
		Skills: []string{"go"}, Role: auth.RoleDeveloper,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := store.Create(context.Background(), &auth.User{
		Name: "Alice", Email: "alice@example.com", PasswordHash: "hash", Role: auth.RoleDeveloper,
	})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestPostgresDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM users WHERE id =").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.Delete(context.Background(), 3))
}

func TestPostgresDeleteMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM users WHERE id =").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.Delete(context.Background(), 99), auth.ErrUserNotFound)
}

func TestPostgresList(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("FROM users ORDER BY id").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "Alice", "alice@example.com", "h", pq.StringArray{}, "ADMIN", now, now).
			AddRow(int64(2), "Bob", "bob@example.com", "h", pq.StringArray{"go", "sql"}, "DEVELOPER", now, now))

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, auth.RoleAdmin, list[0].Role)
	assert.Equal(t, []string{"go", "sql"}, list[1].Skills)
}
