package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/contextkeys"
	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/observability"
)

// PrincipalResolver maps a token subject to its Principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, subject string) (*auth.Principal, error)
}

// TokenValidator checks a raw token and returns its subject.
type TokenValidator interface {
	Validate(raw string) (string, error)
}

// RequestAuthenticator validates bearer tokens and attaches the resolved
// principal to the request context. Requests without a bearer header pass
// through unauthenticated; the authorization layer decides whether that
// is acceptable for the route.
type RequestAuthenticator struct {
	validator TokenValidator
	resolver  PrincipalResolver
	log       *observability.Logger
	metrics   *observability.Metrics
}

// NewRequestAuthenticator creates the authentication middleware. metrics
// may be nil.
func NewRequestAuthenticator(validator TokenValidator, resolver PrincipalResolver, log *observability.Logger, metrics *observability.Metrics) *RequestAuthenticator {
	return &RequestAuthenticator{validator: validator, resolver: resolver, log: log, metrics: metrics}
}

// Middleware returns the http middleware function.
func (a *RequestAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := a.validator.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.reject(w, r, err)
			return
		}

		principal, err := a.resolver.Resolve(r.Context(), subject)
		if err != nil {
			if errors.Is(err, auth.ErrPrincipalNotFound) {
				a.countFailure("unknown_principal")
				httputil.WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			a.log.WithError(err).Error("principal resolution failed")
			httputil.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}

		ctx := contextkeys.WithSubject(r.Context(), subject)
		ctx = contextkeys.WithPrincipal(ctx, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *RequestAuthenticator) reject(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrTokenExpired) {
		a.countFailure("token_expired")
		a.log.WithField("path", r.URL.Path).Debug("rejected expired token")
		httputil.WriteError(w, http.StatusUnauthorized, "Token expired")
		return
	}
	a.countFailure("token_invalid")
	a.log.WithField("path", r.URL.Path).Debug("rejected invalid token")
	httputil.WriteError(w, http.StatusUnauthorized, "Invalid token")
}

func (a *RequestAuthenticator) countFailure(reason string) {
	if a.metrics != nil {
		a.metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	}
}
