// Package contextkeys provides centralized context key definitions.
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// PrincipalKey contains the authenticated *auth.Principal
	// Set by: middleware.Authenticator (pkg/middleware/auth.go)
	// Required by: policy evaluation, ownership checks, handlers
	PrincipalKey Key = "principal"

	// SubjectKey contains the authenticated subject (email) as a string.
	// Set alongside PrincipalKey so packages that must not import pkg/auth
	// (notably pkg/audit) can still resolve the current actor.
	SubjectKey Key = "subject"

	// RequestIDKey contains the per-request ID string (UUID)
	// Set by: httputil.RequestID
	// Used by: log correlation (e.g. panic recovery)
	RequestIDKey Key = "request_id"
)

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, principal interface{}) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// Principal retrieves the raw principal value from the context; callers
// type-assert to *auth.Principal
func Principal(ctx context.Context) interface{} {
	return ctx.Value(PrincipalKey)
}

// WithSubject adds the authenticated subject to the context
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}

// Subject retrieves the authenticated subject, or "" when the request is
// unauthenticated
func Subject(ctx context.Context) string {
	if s, ok := ctx.Value(SubjectKey).(string); ok {
		return s
	}
	return ""
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID retrieves the request ID from the context
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
