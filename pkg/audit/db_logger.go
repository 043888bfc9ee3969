package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// DBLogger persists audit records to a PostgreSQL table and serves the
// audit read API.
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates a database-backed audit logger and ensures the
// audit_logs table exists.
func NewDBLogger(ctx context.Context, db *sql.DB) (*DBLogger, error) {
	l := &DBLogger{db: db}
	if err := l.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure audit table: %w", err)
	}
	return l, nil
}

func (l *DBLogger) ensureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,
	action_type TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	actor TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload JSONB
);
CREATE INDEX IF NOT EXISTS idx_audit_logs_entity_type ON audit_logs (entity_type);
CREATE INDEX IF NOT EXISTS idx_audit_logs_actor ON audit_logs (actor);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at);
`
	_, err := l.db.ExecContext(ctx, ddl)
	return err
}

// Log implements Logger.
func (l *DBLogger) Log(ctx context.Context, record Record) error {
	var payload []byte
	if record.Payload != nil {
		var err error
		payload, err = json.Marshal(record.Payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_logs (action_type, entity_type, entity_id, actor, created_at, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(record.ActionType), record.EntityType, record.EntityID,
		record.Actor, record.Timestamp, nullableJSON(payload))
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

const selectColumns = `SELECT id, action_type, entity_type, entity_id, actor, created_at, payload FROM audit_logs`

// All returns the most recent records, newest first, capped at limit.
func (l *DBLogger) All(ctx context.Context, limit int) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		selectColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByEntityType returns records for one entity type, newest first.
func (l *DBLogger) ByEntityType(ctx context.Context, entityType string, limit int) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		selectColumns+` WHERE entity_type = $1 ORDER BY created_at DESC LIMIT $2`,
		entityType, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records by entity type: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByActor returns records attributed to one actor, newest first.
func (l *DBLogger) ByActor(ctx context.Context, actor string, limit int) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		selectColumns+` WHERE actor = $1 ORDER BY created_at DESC LIMIT $2`,
		actor, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records by actor: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Purge deletes records older than the cutoff and reports how many rows
// were removed.
func (l *DBLogger) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge audit records: %w", err)
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var (
			r       Record
			action  string
			payload []byte
		)
		if err := rows.Scan(&r.ID, &action, &r.EntityType, &r.EntityID, &r.Actor, &r.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		r.ActionType = ActionType(action)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &r.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal audit payload: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
