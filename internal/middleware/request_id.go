package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the request correlation ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the echo context key the ID is stored under.
	RequestIDKey = "request_id"
)

// RequestID returns an Echo middleware that gives every request an ID.
//
// Behavior:
//   - An incoming X-Request-ID header is reused as is.
//   - Otherwise a new UUID is generated.
//   - The ID is stored in the echo context (RequestIDKey) so the request
//     logger, the tracing middleware and the error pipeline can read it.
//   - The ID is set on the response header, so a client reporting a failed
//     tour or user request can quote it.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Reuse the upstream ID (load balancer, gateway) when present.
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			// Internal access for later middleware and handlers.
			c.Set(RequestIDKey, requestID)

			// Set before next runs so error responses carry it too.
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the request ID stored by RequestID.
//
// It returns an empty string when the middleware did not run.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
