package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/natours/internal/config"
	"github.com/deppfellow/natours/internal/dberr"
	"github.com/deppfellow/natours/internal/errs"
	"github.com/deppfellow/natours/internal/lib/render"
	"github.com/deppfellow/natours/internal/lib/token"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const saharaDup = `E11000 duplicate key error collection: natours.tours index: name_1 dup key: { name: "Sahara Trek" }`

// failWith serves err from GET path through the global error handler.
func failWith(t *testing.T, env, path string, err error) (int, string) {
	t.Helper()
	e := newTestEcho(newTestServer(t, env))
	e.GET(path, func(c echo.Context) error { return err })

	rec := serve(e, http.MethodGet, path, nil)
	return rec.Code, rec.Body.String()
}

func malformedTokenErr(t *testing.T) error {
	t.Helper()
	_, err := token.NewManager("test-secret", time.Hour).Verify("not-a-token")
	require.Error(t, err)
	return err
}

func expiredTokenErr(t *testing.T) error {
	t.Helper()
	m := token.NewManager("test-secret", -time.Minute)
	signed, err := m.Sign("5c88fa8cf4afda39709c2955", "user")
	require.NoError(t, err)
	_, err = m.Verify(signed)
	require.Error(t, err)
	return err
}

func TestGlobalErrorHandler_ProductionClassification(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "cast",
			err:     dberr.NewCastError("_id", "wrong-id", nil),
			status:  http.StatusBadRequest,
			message: "Invalid _id: wrong-id.",
		},
		{
			name:    "duplicate key",
			err:     fmt.Errorf("insert tour: %w", dberr.NewDuplicateKeyError(dberr.DuplicateKeyCode, saharaDup, nil, nil)),
			status:  http.StatusBadRequest,
			message: `Duplicate field value: "Sahara Trek". Please use another value!`,
		},
		{
			name:    "duplicate key with quoted field name",
			err:     dberr.NewDuplicateKeyError(dberr.DuplicateKeyCode, `E11000 duplicate key error dup key: { "name": "Sahara Trek" }`, nil, nil),
			status:  http.StatusBadRequest,
			message: `Duplicate field value: "Sahara Trek". Please use another value!`,
		},
		{
			name: "validation",
			err: dberr.NewValidationError("Tour", []dberr.FieldError{
				{Path: "name", Kind: "required", Message: "A tour must have a name!"},
				{Path: "price", Kind: "required", Message: "A tour must have a price!"},
			}),
			status:  http.StatusBadRequest,
			message: "Invalid input data. A tour must have a name!. A tour must have a price!.",
		},
		{
			name:    "malformed token",
			err:     malformedTokenErr(t),
			status:  http.StatusUnauthorized,
			message: "Invalid token. Please log in again!",
		},
		{
			name:    "expired token",
			err:     expiredTokenErr(t),
			status:  http.StatusUnauthorized,
			message: "Your token has expired! Please log in again.",
		},
		{
			name:    "operational",
			err:     errs.NewNotFoundError("tour"),
			status:  http.StatusNotFound,
			message: "No tour found with that ID",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := failWith(t, config.EnvProduction, "/api/v1/tours", tc.err)

			assert.Equal(t, tc.status, status)
			assert.JSONEq(t, fmt.Sprintf(`{"status":"fail","message":%q}`, tc.message), body)
		})
	}
}

func TestGlobalErrorHandler_ProductionFaultIsSanitized(t *testing.T) {
	status, body := failWith(t, config.EnvProduction, "/api/v1/tours",
		errors.New("connection refused: mongodb://admin:hunter2@db"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"status":"error","message":"Something went wrong! Please try again later."}`, body)
	assert.NotContains(t, body, "hunter2")
}

func TestGlobalErrorHandler_AnyNonDevelopmentEnvIsProduction(t *testing.T) {
	status, body := failWith(t, "staging", "/api/v1/tours", errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body, "boom")
}

func TestGlobalErrorHandler_UnknownRoute(t *testing.T) {
	for _, env := range []string{config.EnvProduction, config.EnvDevelopment} {
		e := newTestEcho(newTestServer(t, env))

		rec := serve(e, http.MethodGet, "/api/v1/reviews?sort=price", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code, env)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "fail", body["status"], env)
		assert.Equal(t, "Can't find /api/v1/reviews?sort=price on this server!", body["message"], env)
	}
}

func TestGlobalErrorHandler_MethodNotAllowed(t *testing.T) {
	e := newTestEcho(newTestServer(t, config.EnvProduction))
	e.GET("/api/v1/tours", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := serve(e, http.MethodPut, "/api/v1/tours", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Method Not Allowed"}`, rec.Body.String())
}

func TestGlobalErrorHandler_DevelopmentShape(t *testing.T) {
	status, body := failWith(t, config.EnvDevelopment, "/api/v1/tours/1", errs.NewNotFoundError("tour"))
	require.Equal(t, http.StatusNotFound, status)

	var res struct {
		Status  string         `json:"status"`
		Error   map[string]any `json:"error"`
		Message string         `json:"message"`
		Stack   string         `json:"stack"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &res))

	assert.Equal(t, "fail", res.Status)
	assert.Equal(t, "No tour found with that ID", res.Message)
	assert.Equal(t, float64(http.StatusNotFound), res.Error["statusCode"])
	assert.Equal(t, true, res.Error["isOperational"])
	assert.Contains(t, res.Stack, "No tour found with that ID")
	assert.Contains(t, res.Stack, "errs.New")
}

func TestGlobalErrorHandler_DevelopmentLeavesErrorsUnclassified(t *testing.T) {
	status, body := failWith(t, config.EnvDevelopment, "/api/v1/tours/1", dberr.NewCastError("_id", "1", nil))
	assert.Equal(t, http.StatusInternalServerError, status)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.Equal(t, "error", res["status"])
	assert.Equal(t, `Cast to ObjectId failed for value "1" at path "_id"`, res["message"])
	assert.Equal(t, "CastError", res["error"].(map[string]any)["name"])
}

func TestGlobalErrorHandler_DevelopmentFaultKeepsMessage(t *testing.T) {
	status, body := failWith(t, config.EnvDevelopment, "/api/v1/tours", errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, `"message":"boom"`)
}

func TestGlobalErrorHandler_ErrorPage(t *testing.T) {
	renderer, err := render.New()
	require.NoError(t, err)

	t.Run("operational", func(t *testing.T) {
		e := newTestEcho(newTestServer(t, config.EnvProduction))
		e.Renderer = renderer

		rec := serve(e, http.MethodGet, "/tour/the-forest-hiker", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
		assert.Contains(t, rec.Body.String(), "Something went wrong!")
		assert.Contains(t, rec.Body.String(), "Can&#39;t find /tour/the-forest-hiker on this server!")
	})

	t.Run("fault", func(t *testing.T) {
		e := newTestEcho(newTestServer(t, config.EnvProduction))
		e.Renderer = renderer
		e.GET("/overview", func(c echo.Context) error { return errors.New("template data missing") })

		rec := serve(e, http.MethodGet, "/overview", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), GenericErrorMessage)
		assert.NotContains(t, rec.Body.String(), "template data missing")
	})

	t.Run("development shows message", func(t *testing.T) {
		e := newTestEcho(newTestServer(t, config.EnvDevelopment))
		e.Renderer = renderer
		e.GET("/overview", func(c echo.Context) error { return errors.New("template data missing") })

		rec := serve(e, http.MethodGet, "/overview", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "template data missing")
	})

	t.Run("no renderer", func(t *testing.T) {
		e := newTestEcho(newTestServer(t, config.EnvProduction))

		rec := serve(e, http.MethodGet, "/overview", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Can't find /overview on this server!", rec.Body.String())
	})
}

func TestClassify_PassesUnknownErrorsThrough(t *testing.T) {
	plain := errors.New("disk full")
	assert.Same(t, plain, classify(plain))

	other := dberr.NewDuplicateKeyError(0, "", nil, nil)
	assert.Same(t, error(other), classify(other))
}
