package audit

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trackforge/tracker/pkg/observability"
)

type fakePurger struct {
	cutoff  time.Time
	removed int64
	err     error
}

func (f *fakePurger) Purge(_ context.Context, olderThan time.Time) (int64, error) {
	f.cutoff = olderThan
	return f.removed, f.err
}

func TestRetentionSweep(t *testing.T) {
	purger := &fakePurger{removed: 3}
	log := observability.NewLogger(observability.ErrorLevel, io.Discard)
	policy := NewRetentionPolicy(purger, 90*24*time.Hour, "0 3 * * *", log)

	policy.Sweep(context.Background())

	wantCutoff := time.Now().Add(-90 * 24 * time.Hour)
	assert.WithinDuration(t, wantCutoff, purger.cutoff, time.Minute)
}

func TestRetentionSweepErrorDoesNotPanic(t *testing.T) {
	purger := &fakePurger{err: errors.New("db down")}
	log := observability.NewLogger(observability.ErrorLevel, io.Discard)
	policy := NewRetentionPolicy(purger, time.Hour, "@hourly", log)

	policy.Sweep(context.Background())
}
