package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/natours/internal/server"
)

// TracingMiddleware owns the New Relic related Echo middleware.
//
// It needs:
//   - server: shared deps (config, logger)
//   - nrApp: the New Relic application, nil when no license key is configured
//
// It provides two layers, installed in this order by the router:
//  1. NewRelicMiddleware() -> one transaction per request
//  2. EnhanceTracing()     -> Natours request attributes and error noticing
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

// NewTracingMiddleware constructs TracingMiddleware.
func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the New Relic Echo middleware.
//
// What it does:
//   - With a nil nrApp it is a no-op and requests pass through unchanged.
//   - Otherwise it installs nrecho.Middleware, which starts a transaction
//     for each request, stores it in the request context and records
//     timing and status codes.
//
// newrelic.FromContext only finds a transaction downstream of this middleware.
// The handler adapter, the database command monitor and the health checks
// all depend on that.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds custom attributes to the current transaction.
//
// It must run after NewRelicMiddleware so that a transaction exists.
//
// What it adds:
//   - client IP and user agent
//   - request id, when RequestID ran
//   - user id, when OptionalAuth verified a bearer token
//   - response status code, once the chain has returned
//
// Returned errors are noticed through nrpkgerrors.Wrap so the stack is kept.
// The error is still returned, and GlobalErrorHandler writes the response.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// nil when New Relic is disabled or the middleware order is wrong.
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			// User agent is high-cardinality; keep it as an attribute, never a metric name.
			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())

			// Correlates traces with log lines.
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// OptionalAuth sits inside the /api group, so the user id is only
			// known after the chain has run.
			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}

			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			// Known only after the handler wrote the response.
			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}
