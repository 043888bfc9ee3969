package audit

import "context"

// Logger persists audit records.
type Logger interface {
	Log(ctx context.Context, record Record) error
}

// NopLogger discards all records. Used when auditing is disabled.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(context.Context, Record) error { return nil }
