package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiterHandler(t *testing.T, config LoginRateLimitConfig) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	limiter := NewLoginRateLimiter(client, config, testLogger())
	return limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})), mr
}

func loginRequest(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":51234"
	return req
}

func TestLoginRateLimiterBlocksAfterLimit(t *testing.T) {
	handler, _ := newLimiterHandler(t, LoginRateLimitConfig{AttemptsPerWindow: 3, WindowDuration: time.Minute})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestLoginRateLimiterPerIP(t *testing.T) {
	handler, _ := newLimiterHandler(t, LoginRateLimitConfig{AttemptsPerWindow: 1, WindowDuration: time.Minute})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)

	// A different client is unaffected by the first one's quota.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.2"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginRateLimiterWindowExpires(t *testing.T) {
	handler, mr := newLimiterHandler(t, LoginRateLimitConfig{AttemptsPerWindow: 1, WindowDuration: time.Minute})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	mr.FastForward(2 * time.Minute)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimiterIgnoresOtherRoutes(t *testing.T) {
	handler, _ := newLimiterHandler(t, LoginRateLimitConfig{AttemptsPerWindow: 1, WindowDuration: time.Minute})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLoginRateLimiterFailsOpen(t *testing.T) {
	handler, mr := newLimiterHandler(t, LoginRateLimitConfig{AttemptsPerWindow: 1, WindowDuration: time.Minute})
	mr.Close()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
