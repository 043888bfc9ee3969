package audit

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trackforge/tracker/pkg/observability"
)

// Purger removes audit records older than a cutoff.
type Purger interface {
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// RetentionPolicy deletes audit records past their retention window on a
// cron schedule.
type RetentionPolicy struct {
	purger    Purger
	retention time.Duration
	schedule  string
	log       *observability.Logger
	cron      *cron.Cron
}

// NewRetentionPolicy creates a policy that keeps records for the given
// duration, sweeping on the cron schedule (e.g. "0 3 * * *").
func NewRetentionPolicy(purger Purger, retention time.Duration, schedule string, log *observability.Logger) *RetentionPolicy {
	return &RetentionPolicy{
		purger:    purger,
		retention: retention,
		schedule:  schedule,
		log:       log,
		cron:      cron.New(),
	}
}

// Start schedules the sweep and begins running it.
func (p *RetentionPolicy) Start() error {
	_, err := p.cron.AddFunc(p.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		p.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// Sweep runs one retention pass immediately.
func (p *RetentionPolicy) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention)
	removed, err := p.purger.Purge(ctx, cutoff)
	if err != nil {
		p.log.WithError(err).Error("audit retention sweep failed")
		return
	}
	if removed > 0 {
		p.log.WithField("removed", removed).Info("audit retention sweep completed")
	}
}

// Stop halts the schedule and waits for a running sweep to finish.
func (p *RetentionPolicy) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}
