package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/deppfellow/natours/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required"`)
// - Implement Validate() error that calls validation.Struct(req)
type Validatable interface {
	Validate() error
}

var requestValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	return v
}()

// Struct validates request-level tags (path params, query params).
func Struct(v any) error {
	return requestValidator.Struct(v)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
// 1) c.Bind(payload) populates the struct from path params, query and body.
// 2) payload.Validate() applies request rules.
// 3) Either failure is returned as a 400 *errs.AppError.
//
// Document rules (required fields, ranges, enums) are not checked here; they
// belong to the record's Schema and run before the write.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindMessage(err))
	}

	if err := payload.Validate(); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return errs.NewBadRequestError(err.Error())
		}

		fields := make([]errs.FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, errs.FieldError{
				Field: fieldPath(fe.Namespace()),
				Error: fmt.Sprintf("%s failed the %s rule", Humanize(fe.Field()), fe.Tag()),
			})
		}
		return errs.NewBadRequestError("Invalid request parameters.").WithFields(fields)
	}

	return nil
}

// bindMessage turns an echo bind failure into a client message.
func bindMessage(err error) string {
	cause := err
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Internal != nil {
		cause = httpErr.Internal
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(cause, &typeErr) {
		if typeErr.Field == "" {
			return "Invalid JSON body."
		}
		return fmt.Sprintf("Invalid %s: expected %s but got %s.", typeErr.Field, typeErr.Type, typeErr.Value)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(cause, &syntaxErr) {
		return "Invalid JSON body."
	}

	if httpErr != nil {
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}
		if httpErr.Code == http.StatusRequestEntityTooLarge {
			return "Request body too large."
		}
	}

	return "Invalid request body."
}
