package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDBLogger(t *testing.T) (*DBLogger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	logger, err := NewDBLogger(context.Background(), db)
	require.NoError(t, err)
	return logger, mock
}

func TestDBLoggerLog(t *testing.T) {
	logger, mock := newTestDBLogger(t)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs("CREATE", "Project", "42", "alice@example.com", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := logger.Log(context.Background(), Record{
		ActionType: ActionCreate,
		EntityType: "Project",
		EntityID:   "42",
		Actor:      "alice@example.com",
		Timestamp:  time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBLoggerLogWithPayload(t *testing.T) {
	logger, mock := newTestDBLogger(t)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs("ACCESS_DENIED", "Route", sqlmock.AnyArg(), "SYSTEM", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := logger.Log(context.Background(), Record{
		ActionType: ActionAccessDenied,
		EntityType: "Route",
		EntityID:   "abc",
		Actor:      "SYSTEM",
		Timestamp:  time.Now().UTC(),
		Payload:    map[string]any{"method": "DELETE", "path": "/api/projects/1"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBLoggerQueries(t *testing.T) {
	logger, mock := newTestDBLogger(t)

	cols := []string{"id", "action_type", "entity_type", "entity_id", "actor", "created_at", "payload"}
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, action_type, entity_type, entity_id, actor, created_at, payload FROM audit_logs ORDER BY created_at DESC").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(2), "UPDATE", "Task", "7", "bob@example.com", now, nil).
			AddRow(int64(1), "CREATE", "Task", "7", "bob@example.com", now.Add(-time.Minute), []byte(`{"k":"v"}`)))

	records, err := logger.All(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ActionUpdate, records[0].ActionType)
	assert.Equal(t, "v", records[1].Payload["k"])

	mock.ExpectQuery("WHERE entity_type =").
		WithArgs("Task", 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "CREATE", "Task", "7", "bob@example.com", now, nil))

	records, err = logger.ByEntityType(context.Background(), "Task", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Task", records[0].EntityType)

	mock.ExpectQuery("WHERE actor =").
		WithArgs("bob@example.com", 10).
		WillReturnRows(sqlmock.NewRows(cols))

	records, err = logger.ByActor(context.Background(), "bob@example.com", 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBLoggerPurge(t *testing.T) {
	logger, mock := newTestDBLogger(t)

	mock.ExpectExec("DELETE FROM audit_logs WHERE created_at <").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 17))

	removed, err := logger.Purge(context.Background(), time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(17), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
