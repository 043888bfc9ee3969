package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/trackforge/tracker/pkg/contextkeys"
	"github.com/trackforge/tracker/pkg/observability"
)

// SystemActor is attributed to records produced outside an authenticated
// request, such as login failures and background jobs.
const SystemActor = "SYSTEM"

// Recorder writes audit records after successful operations. Sink failures
// are logged and counted but never propagated, so auditing can never fail
// the operation it describes.
type Recorder struct {
	sink    Logger
	log     *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewRecorder creates a recorder over the given sink. metrics may be nil.
func NewRecorder(sink Logger, log *observability.Logger, metrics *observability.Metrics) *Recorder {
	return &Recorder{sink: sink, log: log, metrics: metrics, now: time.Now}
}

// Record writes one audit entry. The entity id is taken from the first
// int64 argument; when none is present a random UUID stands in. The first
// non-int64 argument is snapshotted as the payload, so services pass the
// operation's result alongside the id. The actor is the authenticated
// subject from ctx, or SYSTEM when there is none.
func (r *Recorder) Record(ctx context.Context, action ActionType, entityType string, args ...any) {
	r.write(ctx, Record{
		ActionType: action,
		EntityType: entityType,
		EntityID:   entityID(args),
		Actor:      actorFrom(ctx),
		Timestamp:  r.now().UTC(),
		Payload:    payloadFrom(args),
	})
}

// LoginSucceeded records a successful credential login. The email is the
// actor: there is no authenticated context yet at login time.
func (r *Recorder) LoginSucceeded(ctx context.Context, email string) {
	r.write(ctx, Record{
		ActionType: ActionLoginSuccess,
		EntityType: "Authentication",
		EntityID:   uuid.NewString(),
		Actor:      email,
		Timestamp:  r.now().UTC(),
	})
}

// LoginFailed records a failed credential login attempt.
func (r *Recorder) LoginFailed(ctx context.Context, email string) {
	r.write(ctx, Record{
		ActionType: ActionLoginFailed,
		EntityType: "Authentication",
		EntityID:   uuid.NewString(),
		Actor:      email,
		Timestamp:  r.now().UTC(),
		Payload:    map[string]any{"attempted_email": email},
	})
}

// AccessDenied records an authorization rejection for a request path.
func (r *Recorder) AccessDenied(ctx context.Context, method, path string) {
	r.write(ctx, Record{
		ActionType: ActionAccessDenied,
		EntityType: "Security",
		EntityID:   uuid.NewString(),
		Actor:      actorFrom(ctx),
		Timestamp:  r.now().UTC(),
		Payload:    map[string]any{"method": method, "path": path},
	})
}

func (r *Recorder) write(ctx context.Context, record Record) {
	if err := r.sink.Log(ctx, record); err != nil {
		r.log.WithError(err).
			WithField("action", string(record.ActionType)).
			WithField("entity_type", record.EntityType).
			Error("failed to write audit record")
		if r.metrics != nil {
			r.metrics.AuditWriteFailures.Inc()
		}
		return
	}
	if r.metrics != nil {
		r.metrics.AuditWritesTotal.WithLabelValues(string(record.ActionType)).Inc()
	}
}

func actorFrom(ctx context.Context) string {
	if subject := contextkeys.Subject(ctx); subject != "" {
		return subject
	}
	return SystemActor
}

func entityID(args []any) string {
	for _, a := range args {
		if id, ok := a.(int64); ok {
			return strconv.FormatInt(id, 10)
		}
	}
	return uuid.NewString()
}

func payloadFrom(args []any) map[string]any {
	for _, a := range args {
		if a == nil {
			continue
		}
		if _, ok := a.(int64); ok {
			continue
		}
		return snapshot(a)
	}
	return nil
}

// snapshot renders a result value as a payload map. Values that do not
// marshal to a JSON object are wrapped under a "value" key.
func snapshot(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"value": fmt.Sprint(v)}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"value": string(raw)}
	}
	return m
}
