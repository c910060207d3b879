package middleware

import (
	"net/http"
	"testing"

	"github.com/deppfellow/natours/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterPollution_LastValueWins(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)
	e := newTestEcho(s)
	e.Use(NewGlobalMiddlewares(s).ParameterPollution())

	var role, raw []string
	var sort string
	e.GET("/api/v1/users", func(c echo.Context) error {
		role = c.QueryParams()["role"]
		raw = c.Request().URL.Query()["role"]
		sort = c.QueryParam("sort")
		return c.NoContent(http.StatusOK)
	})

	rec := serve(e, http.MethodGet, "/api/v1/users?role=admin&role=user&sort=price", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"user"}, role)
	assert.Equal(t, []string{"user"}, raw)
	assert.Equal(t, "price", sort)
}

func TestParameterPollution_LeavesCleanQueryAlone(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)
	e := newTestEcho(s)
	e.Use(NewGlobalMiddlewares(s).ParameterPollution())

	var raw string
	e.GET("/api/v1/tours", func(c echo.Context) error {
		raw = c.Request().URL.RawQuery
		return c.NoContent(http.StatusOK)
	})

	serve(e, http.MethodGet, "/api/v1/tours?b=2&a=1", nil)

	assert.Equal(t, "b=2&a=1", raw)
}
