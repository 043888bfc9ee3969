package audit

import (
	"context"
	"errors"
)

// MultiLogger fans a record out to several sinks. Every sink sees the
// record even when an earlier one fails; the errors are joined.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines the given sinks into one Logger.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log implements Logger.
func (m *MultiLogger) Log(ctx context.Context, record Record) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Log(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
