package developers

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var developerCols = []string{"id", "name", "email", "skills", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresCreateDeveloper(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO developers").
		WithArgs("Dana", "dana@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(developerCols).
			AddRow(int64(1), "Dana", "dana@example.com", "{go}", now, now))

	created, err := store.Create(context.Background(), &Developer{
		Name: "Dana", Email: "dana@example.com", Skills: []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, []string{"go"}, created.Skills)
}

func TestPostgresCreateDeveloperDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO developers").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.Create(context.Background(), &Developer{
		Name: "Dana", Email: "dana@example.com", Skills: []string{"go"},
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestPostgresFindDeveloperNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM developers WHERE id =").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(developerCols))

	_, err := store.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrDeveloperNotFound)
}

func TestPostgresPageDevelopers(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery("FROM developers ORDER BY id LIMIT").
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows(developerCols).
			AddRow(int64(3), "Dev 3", "dev3@example.com", "{go}", now, now).
			AddRow(int64(4), "Dev 4", "dev4@example.com", "{go}", now, now))

	list, total, err := store.Page(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Dev 3", list[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteDeveloperNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM developers").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, ErrDeveloperNotFound)
}
