package observability

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/trackforge/tracker/pkg/contextkeys"
)

// RecoverPanic recovers from a panic and logs it with structured logging.
//
// The function should be called in a defer statement. If a panic occurs,
// it is recovered and logged at Error level with the panic value and the
// full stack trace. The panic is NOT re-raised.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}

// MustRecover converts a recovered panic value to an error.
// Returns nil if r is nil.
func MustRecover(r interface{}) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}

// PanicMiddleware wraps an HTTP handler, recovering panics and returning a
// generic 500 response so internal detail never reaches the client.
func PanicMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithField("panic", rec).
						WithField("stack", string(debug.Stack())).
						WithField("path", r.URL.Path).
						WithField("request_id", contextkeys.RequestID(r.Context())).
						Error("PANIC recovered in HTTP handler")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprint(w, `{"message":"An unexpected error occurred","status":500}`)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
