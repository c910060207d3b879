package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/natours/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisRateLimitStore_FixedWindow(t *testing.T) {
	mr, client := newRedis(t)
	logger := zerolog.Nop()
	store := NewRedisRateLimitStore(client, 2, time.Hour, &logger)

	for i := 0; i < 2; i++ {
		allowed, err := store.Allow("192.0.2.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, err := store.Allow("192.0.2.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = store.Allow("192.0.2.2")
	require.NoError(t, err)
	assert.True(t, allowed, "budgets are per identifier")

	assert.Equal(t, time.Hour, mr.TTL(rateLimitKeyPrefix+"192.0.2.1"))

	mr.FastForward(time.Hour)
	allowed, err = store.Allow("192.0.2.1")
	require.NoError(t, err)
	assert.True(t, allowed, "window resets after expiry")
}

func TestRedisRateLimitStore_FailsOpen(t *testing.T) {
	mr, client := newRedis(t)
	logger := zerolog.Nop()
	store := NewRedisRateLimitStore(client, 1, time.Hour, &logger)
	mr.Close()

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow("192.0.2.1")
		assert.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestRateLimitMiddleware_Limit(t *testing.T) {
	_, client := newRedis(t)

	s := newTestServer(t, config.EnvProduction)
	s.Redis = client
	s.Config.RateLimit = config.RateLimitConfig{Enabled: true, Max: 1, Window: time.Hour}

	e := newTestEcho(s)
	e.GET("/api/v1/tours", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewRateLimitMiddleware(s).Limit())

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/v1/tours", nil).Code)

	rec := serve(e, http.MethodGet, "/api/v1/tours", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Too many requests from this IP, please try again in an hour!"}`, rec.Body.String())
}

func TestRateLimitMiddleware_DisabledPassesThrough(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)
	s.Config.RateLimit = config.RateLimitConfig{Enabled: false, Max: 1, Window: time.Hour}

	e := newTestEcho(s)
	e.GET("/api/v1/tours", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewRateLimitMiddleware(s).Limit())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/v1/tours", nil).Code)
	}
}
