package middleware

import (
	"context"
	"time"

	"github.com/deppfellow/natours/internal/errs"
	"github.com/deppfellow/natours/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	RateLimitMessage = "Too many requests from this IP, please try again in an hour!"

	rateLimitKeyPrefix = "ratelimit:"
	rateLimitTimeout   = 500 * time.Millisecond
)

// RedisRateLimitStore is a fixed window counter per client kept in Redis,
// so every API instance shares the same budget.
//
// Redis failures never block traffic: the request is allowed and the
// failure logged.
type RedisRateLimitStore struct {
	client *redis.Client
	max    int64
	window time.Duration
	logger *zerolog.Logger
}

var _ middleware.RateLimiterStore = (*RedisRateLimitStore)(nil)

func NewRedisRateLimitStore(client *redis.Client, max int, window time.Duration, logger *zerolog.Logger) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		client: client,
		max:    int64(max),
		window: window,
		logger: logger,
	}
}

// Allow counts one request for identifier and reports whether it is still
// inside the window's budget.
func (s *RedisRateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rateLimitTimeout)
	defer cancel()

	key := rateLimitKeyPrefix + identifier

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("identifier", identifier).Msg("rate limit store unavailable")
		return true, nil
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			s.logger.Warn().Err(err).Str("identifier", identifier).Msg("failed to set rate limit window")
		}
	}

	return count <= s.max, nil
}

// RateLimitMiddleware limits how many /api requests one client IP may send
// per configured window.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit returns the rate limiting middleware. It is a pass-through when
// rate limiting is disabled or Redis is not configured.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.RateLimit
	if !cfg.Enabled || r.server.Redis == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: NewRedisRateLimitStore(r.server.Redis, cfg.Max, cfg.Window, r.server.Logger),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			return errs.NewTooManyRequestsError(RateLimitMessage)
		},
	})
}

// RecordRateLimitHit records a RateLimitHit custom event in New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
