package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/deppfellow/natours/internal/dberr"
	"github.com/deppfellow/natours/internal/errs"
	"github.com/deppfellow/natours/internal/lib/token"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// APIPrefix selects JSON error responses. Other paths get an error page.
	APIPrefix = "/api"

	// ErrorTemplate is the page rendered for failed non-API requests.
	ErrorTemplate = "error"

	GenericErrorMessage = "Something went wrong! Please try again later."

	errorPageTitle = "Something went wrong!"

	invalidTokenMessage = "Invalid token. Please log in again!"
	expiredTokenMessage = "Your token has expired! Please log in again."
)

// errorView is the resolved form of a failure: what status to answer with
// and what may be said about it.
type errorView struct {
	StatusCode  int
	Status      string
	Message     string
	Operational bool
	Err         error
}

// devResponse is the development API error body.
type devResponse struct {
	Status  string `json:"status"`
	Error   any    `json:"error"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// prodResponse is the production API error body.
type prodResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GlobalErrorHandler is the single place where failures become responses.
//
// echo framework errors are first turned into operational errors. In
// development every error is answered with full detail. In production
// known storage and token failures are classified into operational errors
// and everything else is answered as a generic 500.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	view := global.resolve(err, c)

	logger := GetLogger(c)
	if view.StatusCode >= http.StatusInternalServerError {
		logger.Error().Stack().
			Err(err).
			Int("status", view.StatusCode).
			Bool("operational", view.Operational).
			Msg(view.Message)
	} else {
		logger.Warn().
			Err(err).
			Int("status", view.StatusCode).
			Msg(view.Message)
	}

	if c.Response().Committed {
		return
	}

	var writeErr error
	if global.server.Config.Primary.IsDevelopment() {
		writeErr = sendDevelopment(c, view)
	} else {
		writeErr = sendProduction(c, view)
	}

	if writeErr != nil {
		logger.Error().Err(writeErr).Msg("failed to write error response")
	}
}

// resolve runs err through normalization (and classification outside
// development) and applies the defaults.
func (global *GlobalMiddlewares) resolve(err error, c echo.Context) errorView {
	err = normalize(err, c)

	if !global.server.Config.Primary.IsDevelopment() {
		err = classify(err)
	}

	view := errorView{
		StatusCode: http.StatusInternalServerError,
		Status:     errs.StatusError,
		Message:    err.Error(),
		Err:        err,
	}

	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		view.StatusCode = appErr.StatusCode
		view.Status = appErr.Status
		view.Message = appErr.Message
		view.Operational = appErr.IsOperational
	}

	if view.StatusCode == 0 {
		view.StatusCode = http.StatusInternalServerError
	}
	if view.Status == "" {
		view.Status = errs.StatusError
	}
	if view.Message == "" {
		view.Message = GenericErrorMessage
	}

	return view
}

// normalize converts echo framework errors (unknown route, method not
// allowed, body too large, bind failures) into operational errors.
func normalize(err error, c echo.Context) error {
	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) {
		return err
	}

	if echoErr.Code == http.StatusNotFound {
		return errs.NewRouteNotFoundError(c.Request().RequestURI)
	}

	message, ok := echoErr.Message.(string)
	if !ok || message == "" {
		message = http.StatusText(echoErr.Code)
	}
	return errs.New(message, echoErr.Code)
}

// classify turns the storage and token failures callers can act on into
// operational errors. The first matching rule wins. Anything else is
// returned unchanged and answered as a fault.
func classify(err error) error {
	err = dberr.HandleError(err)

	var dbErr *dberr.Error
	if errors.As(err, &dbErr) {
		switch {
		case dbErr.Kind == dberr.KindCast:
			return errs.NewBadRequestError(fmt.Sprintf("Invalid %s: %v.", dbErr.Path, dbErr.Value))
		case dbErr.Code == dberr.DuplicateKeyCode:
			return errs.NewBadRequestError(fmt.Sprintf(
				"Duplicate field value: %s. Please use another value!", dberr.DuplicateValue(dbErr.ErrMsg)))
		case dbErr.Kind == dberr.KindValidation:
			return errs.NewBadRequestError(fmt.Sprintf(
				"Invalid input data. %s.", strings.Join(dbErr.Messages(), ". ")))
		}
	}

	var tokenErr *token.Error
	if errors.As(err, &tokenErr) {
		switch tokenErr.Kind {
		case token.KindMalformed:
			return errs.NewUnauthorizedError(invalidTokenMessage)
		case token.KindExpired:
			return errs.NewUnauthorizedError(expiredTokenMessage)
		}
	}

	return err
}

func sendDevelopment(c echo.Context, view errorView) error {
	if !isAPIRequest(c) {
		return renderErrorPage(c, view.StatusCode, view.Message)
	}

	return c.JSON(view.StatusCode, devResponse{
		Status:  view.Status,
		Error:   errorDetails(view.Err),
		Message: view.Message,
		Stack:   stackOf(view.Err),
	})
}

func sendProduction(c echo.Context, view errorView) error {
	message := view.Message
	if !view.Operational {
		message = GenericErrorMessage
	}

	if !isAPIRequest(c) {
		return renderErrorPage(c, view.StatusCode, message)
	}

	return c.JSON(view.StatusCode, prodResponse{
		Status:  view.Status,
		Message: message,
	})
}

// renderErrorPage renders ErrorTemplate, falling back to plain text when
// no renderer is registered.
func renderErrorPage(c echo.Context, status int, message string) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}

	err := c.Render(status, ErrorTemplate, map[string]string{
		"title": errorPageTitle,
		"msg":   message,
	})
	if errors.Is(err, echo.ErrRendererNotRegistered) {
		return c.String(status, message)
	}
	return err
}

// errorDetails picks the value shown under "error" in development.
func errorDetails(err error) any {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var dbErr *dberr.Error
	if errors.As(err, &dbErr) {
		return dbErr
	}
	var tokenErr *token.Error
	if errors.As(err, &tokenErr) {
		return tokenErr
	}
	return map[string]string{"message": err.Error()}
}

func stackOf(err error) string {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		return appErr.Stack()
	}
	return fmt.Sprintf("%+v", err)
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, APIPrefix)
}
