package validation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/deppfellow/natours/internal/dberr"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Op is the write a document is being validated for.
type Op int

const (
	// OpCreate validates a complete new document: defaults are applied and
	// cross-field rules run.
	OpCreate Op = iota

	// OpUpdate validates a partial patch: only present fields are checked and
	// cross-field rules are skipped.
	OpUpdate
)

type opKey struct{}

// OpFromContext returns the Op a struct-level rule is running for.
func OpFromContext(ctx context.Context) Op {
	if op, ok := ctx.Value(opKey{}).(Op); ok {
		return op
	}
	return OpCreate
}

// CrossFieldRule is a struct-level rule that sees the whole document.
// Report failures with sl.ReportError(value, "<jsonPath>", "<StructField>", "<tag>", "").
type CrossFieldRule func(ctx context.Context, sl validator.StructLevel)

// Schema is the declarative rule set of one record kind.
//
// T is the struct type being validated. Field rules live in its `validate`
// tags; Messages maps "<path>|<tag>" to the message template reported when
// that rule fails. Templates may use {PATH} and {VALUE}.
type Schema[T any] struct {
	Model    string
	Messages map[string]string

	// Defaults run on OpCreate before anything else.
	Defaults []func(*T)

	// Setters normalize values before validation, for every Op.
	Setters []func(*T)

	// Derived computes values after a document has been accepted.
	Derived []func(*T)

	validate *validator.Validate
	order    map[string]int
}

// NewSchema builds a Schema for T and registers its cross-field rules.
func NewSchema[T any](model string, messages map[string]string, rules ...CrossFieldRule) *Schema[T] {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	mustRegister(v, "notempty", notEmpty)

	var zero T
	typ := reflect.TypeOf(zero)

	for _, rule := range rules {
		v.RegisterStructValidationCtx(validator.StructLevelFuncCtx(rule), zero)
	}

	return &Schema[T]{
		Model:    model,
		Messages: messages,
		validate: v,
		order:    fieldOrder(typ),
	}
}

// Prepare normalizes doc in place and validates it for op.
//
// Evaluation order: defaults (create only) -> setters -> field rules ->
// cross-field rules (create only) -> derived values. Every violated rule is
// collected; the result is a single dberr KindValidation error listing them
// in field declaration order.
func (s *Schema[T]) Prepare(doc *T, op Op) error {
	if op == OpCreate {
		for _, def := range s.Defaults {
			def(doc)
		}
	}

	for _, set := range s.Setters {
		set(doc)
	}

	ctx := context.WithValue(context.Background(), opKey{}, op)
	if err := s.validate.StructCtx(ctx, doc); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("validating %s: %w", s.Model, err)
		}
		return dberr.NewValidationError(s.Model, s.fieldErrors(validationErrs))
	}

	for _, derive := range s.Derived {
		derive(doc)
	}

	return nil
}

func (s *Schema[T]) fieldErrors(validationErrs validator.ValidationErrors) []dberr.FieldError {
	fields := make([]dberr.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		path := fieldPath(fe.Namespace())
		value := indirect(fe.Value())
		kind := fe.Tag()
		if alias, ok := tagAliases[kind]; ok {
			kind = alias
		}
		fields = append(fields, dberr.FieldError{
			Path:    path,
			Kind:    kind,
			Message: s.message(path, kind, fe.Param(), value),
			Value:   value,
		})
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return s.rank(fields[i].Path) < s.rank(fields[j].Path)
	})

	return fields
}

func (s *Schema[T]) rank(path string) int {
	top := path
	if i := strings.IndexAny(path, ".["); i >= 0 {
		top = path[:i]
	}
	if idx, ok := s.order[top]; ok {
		return idx
	}
	return len(s.order)
}

var indexRe = regexp.MustCompile(`\.\d+`)

// mustRegister registers a custom tag and panics when validator rejects it.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// tagAliases reports custom tags under the rule kind they stand in for.
var tagAliases = map[string]string{
	"notempty": "required",
}

// notEmpty is "required" for values reached through a pointer: validator's
// own required tag accepts any non-nil pointer, even one to "".
func notEmpty(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) != ""
	}
	return true
}

func (s *Schema[T]) message(path, tag, param string, value any) string {
	key := indexRe.ReplaceAllString(path, "") + "|" + tag

	tmpl, ok := s.Messages[key]
	if !ok {
		tmpl = defaultMessage(tag, param)
	}

	valueStr := ""
	if value != nil {
		valueStr = fmt.Sprint(value)
	}

	return strings.NewReplacer("{PATH}", path, "{VALUE}", valueStr).Replace(tmpl)
}

// defaultMessage is used for rules that have no message in the schema.
func defaultMessage(tag, param string) string {
	switch tag {
	case "required":
		return "Path `{PATH}` is required."
	case "oneof":
		return "`{VALUE}` is not a valid enum value for path `{PATH}`."
	case "email":
		return "{PATH} must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("Path `{PATH}` ({VALUE}) is less than minimum allowed value (%s).", param)
	case "max", "lte":
		return fmt.Sprintf("Path `{PATH}` ({VALUE}) is more than maximum allowed value (%s).", param)
	default:
		return "{PATH} is invalid"
	}
}

var sliceIndexRe = regexp.MustCompile(`\[(\d+)\]`)

// fieldPath strips the root struct name from a validator namespace and
// writes slice indexes as path segments.
//
//	"Tour.startLocation.type" -> "startLocation.type"
//	"Tour.locations[1].type"  -> "locations.1.type"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return sliceIndexRe.ReplaceAllString(namespace, ".$1")
}

// indirect dereferences pointers so messages show the value, not an address.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// jsonName makes validator report fields by their JSON name.
func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func fieldOrder(typ reflect.Type) map[string]int {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	order := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if name := jsonName(typ.Field(i)); name != "" {
			order[name] = i
		}
	}
	return order
}

// RoundOneDecimal rounds to one decimal place: round(x*10)/10.
//
//	4.666666 -> 4.7, 46.6666 -> 46.7, 47 -> 47
func RoundOneDecimal(x float64) float64 {
	return math.Round(x*10) / 10
}

// RoundPtr applies RoundOneDecimal to a present value.
func RoundPtr(x *float64) {
	if x != nil {
		*x = RoundOneDecimal(*x)
	}
}

// Humanize converts a camelCase or snake_case path into Title Case words.
//
//	"maxGroupSize" -> "Max Group Size"
func Humanize(path string) string {
	var b strings.Builder
	for i, r := range path {
		if r == '_' || r == '.' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English, cases.NoLower).String(b.String())
}
