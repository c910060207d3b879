package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/natours/internal/config"
	"github.com/deppfellow/natours/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, env string) *server.Server {
	t.Helper()
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: env},
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
				BodyLimit:          "10K",
				PublicDir:          t.TempDir(),
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}
}

// newTestEcho returns an echo instance whose error handler is the global one.
func newTestEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func serve(e *echo.Echo, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
