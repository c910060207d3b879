package middleware

import (
	"strings"
	"time"

	"github.com/deppfellow/natours/internal/lib/token"
	"github.com/deppfellow/natours/internal/server"
	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// TokenVerifier checks a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// AuthMiddleware identifies callers from bearer tokens.
type AuthMiddleware struct {
	server *server.Server
	tokens TokenVerifier
}

func NewAuthMiddleware(s *server.Server, tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		tokens: tokens,
	}
}

// OptionalAuth attaches the caller identity when a bearer token is present.
//
// Requests without an Authorization header pass through anonymously. A
// token that fails verification is handed to GlobalErrorHandler as a
// *token.Error, which answers 401.
func (auth *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if auth.tokens == nil || !strings.HasPrefix(header, bearerPrefix) {
			return next(c)
		}

		start := time.Now()
		claims, err := auth.tokens.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			GetLogger(c).Warn().
				Err(err).
				Str("function", "OptionalAuth").
				Dur("duration", time.Since(start)).
				Msg("bearer token rejected")
			return err
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, claims.Role)

		GetLogger(c).Debug().
			Str("function", "OptionalAuth").
			Str("user_id", claims.Subject).
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}
