// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/deppfellow/natours/internal/handler"
	"github.com/deppfellow/natours/internal/middleware"
	"github.com/deppfellow/natours/internal/server"
	"github.com/deppfellow/natours/internal/service"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance serving the whole HTTP surface.
//
// renderer may be nil, in which case error pages fall back to plain text.
func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services, renderer echo.Renderer) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.Renderer = renderer
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.Global.BodyLimit(),
		middlewares.Global.ParameterPollution(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Static(),
	)

	registerSystemRoutes(router, h)

	api := router.Group(middleware.APIPrefix, middlewares.RateLimit.Limit(), middlewares.Auth.OptionalAuth)
	registerV1Routes(api.Group("/v1"), h)

	return router
}
