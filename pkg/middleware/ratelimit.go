package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/observability"
)

// LoginRateLimitConfig bounds credential login attempts per client IP.
type LoginRateLimitConfig struct {
	AttemptsPerWindow int
	WindowDuration    time.Duration
}

// DefaultLoginRateLimitConfig allows 10 attempts per minute per IP.
func DefaultLoginRateLimitConfig() LoginRateLimitConfig {
	return LoginRateLimitConfig{AttemptsPerWindow: 10, WindowDuration: time.Minute}
}

// LoginRateLimiter throttles the login endpoint using a Redis fixed
// window shared across instances. Redis failures fail open so an outage
// of the limiter never locks users out.
type LoginRateLimiter struct {
	redis  *redis.Client
	config LoginRateLimitConfig
	log    *observability.Logger
}

// NewLoginRateLimiter creates the limiter.
func NewLoginRateLimiter(redisClient *redis.Client, config LoginRateLimitConfig, log *observability.Logger) *LoginRateLimiter {
	return &LoginRateLimiter{redis: redisClient, config: config, log: log}
}

// Middleware limits POST /auth/login; everything else passes through.
func (rl *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:login:%s", clientIP(r))

		pipe := rl.redis.Pipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, rl.config.WindowDuration)
		if _, err := pipe.Exec(r.Context()); err != nil {
			rl.log.WithError(err).Warn("login rate limiter unavailable, failing open")
			next.ServeHTTP(w, r)
			return
		}

		if incr.Val() > int64(rl.config.AttemptsPerWindow) {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.config.WindowDuration.Seconds()))
			httputil.WriteError(w, http.StatusTooManyRequests, "Too many login attempts")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
