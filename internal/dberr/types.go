package dberr

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the category of a storage failure.
type Kind int

const (
	// KindOther is any failure that has no dedicated handling.
	KindOther Kind = iota

	// KindCast means a value could not be converted to the type of its path,
	// most often a malformed ObjectID.
	KindCast

	// KindDuplicateKey means a unique index rejected the write.
	KindDuplicateKey

	// KindValidation means one or more schema rules rejected the document.
	KindValidation
)

// DuplicateKeyCode is the server error code of a unique index violation.
const DuplicateKeyCode = 11000

// String returns the error name the store uses for the kind.
func (k Kind) String() string {
	switch k {
	case KindCast:
		return "CastError"
	case KindDuplicateKey:
		return "MongoServerError"
	case KindValidation:
		return "ValidationError"
	default:
		return "Error"
	}
}

// FieldError is one violated schema rule.
type FieldError struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error is the tagged storage failure.
//
// Which fields are populated depends on Kind:
//   - KindCast:         Path, Value
//   - KindDuplicateKey: Code, ErrMsg, KeyValue
//   - KindValidation:   Model, Errors
type Error struct {
	Kind     Kind           `json:"-"`
	Name     string         `json:"name"`
	Model    string         `json:"model,omitempty"`
	Path     string         `json:"path,omitempty"`
	Value    any            `json:"value,omitempty"`
	Code     int            `json:"code,omitempty"`
	ErrMsg   string         `json:"errmsg,omitempty"`
	KeyValue map[string]any `json:"keyValue,omitempty"`
	Errors   []FieldError   `json:"errors,omitempty"`

	// driverErr keeps the original error for Unwrap() and debugging.
	driverErr error
}

// NewCastError reports that value could not be cast for path.
func NewCastError(path string, value any, cause error) *Error {
	return &Error{
		Kind:      KindCast,
		Name:      KindCast.String(),
		Path:      path,
		Value:     value,
		driverErr: cause,
	}
}

// NewDuplicateKeyError reports a unique index violation.
// errmsg is the raw server message, e.g.
//
//	E11000 duplicate key error collection: natours.tours index: name_1 dup key: { name: "Sahara Trek" }
func NewDuplicateKeyError(code int, errmsg string, keyValue map[string]any, cause error) *Error {
	return &Error{
		Kind:      KindDuplicateKey,
		Name:      KindDuplicateKey.String(),
		Code:      code,
		ErrMsg:    errmsg,
		KeyValue:  keyValue,
		driverErr: cause,
	}
}

// NewValidationError aggregates the violated rules of one document.
// fields must already be in field-declaration order.
func NewValidationError(model string, fields []FieldError) *Error {
	return &Error{
		Kind:   KindValidation,
		Name:   KindValidation.String(),
		Model:  model,
		Errors: fields,
	}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindCast:
		return fmt.Sprintf("Cast to ObjectId failed for value %q at path %q", fmt.Sprint(e.Value), e.Path)
	case KindDuplicateKey:
		return e.ErrMsg
	case KindValidation:
		parts := make([]string, 0, len(e.Errors))
		for _, f := range e.Errors {
			parts = append(parts, f.Path+": "+f.Message)
		}
		return fmt.Sprintf("%s validation failed: %s", e.Model, strings.Join(parts, ", "))
	default:
		if e.driverErr != nil {
			return e.driverErr.Error()
		}
		return "database error"
	}
}

// Unwrap returns the driver error, if any.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// Messages returns every field message of a validation error, in order.
func (e *Error) Messages() []string {
	msgs := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

// quotedRe matches a single- or double-quoted substring, escapes included.
var quotedRe = regexp.MustCompile(`"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`)

// DuplicateValue extracts the first quoted value (quotes kept) from a
// duplicate key message. Quoted keys, those followed by a colon, are
// skipped. It returns "" when the message quotes no value.
func DuplicateValue(errmsg string) string {
	for _, loc := range quotedRe.FindAllStringIndex(errmsg, -1) {
		rest := strings.TrimLeft(errmsg[loc[1]:], " \t")
		if strings.HasPrefix(rest, ":") {
			continue
		}
		return errmsg[loc[0]:loc[1]]
	}
	return ""
}
