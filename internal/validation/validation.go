// Package validation decodes request payloads and turns decoding and
// validator failures into field level errors for the client.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by request payloads that check themselves after
// decoding.
type Validatable interface {
	Validate() error
}

// FieldError locates one problem. Loc starts with where the value came from
// ("body" or "path") followed by the field name.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// CustomValidationError is a field problem found by a payload's own checks
// rather than by validator tags.
type CustomValidationError struct {
	Field   string
	Message string
	Type    string
}

// CustomValidationErrors lets Validate report CustomValidationError values.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "validation failed"
}

// Error is returned for any input that fails decoding or validation and is
// rendered as-is in the 422 response.
type Error struct {
	Detail []FieldError `json:"detail"`
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Detail))
	for _, d := range e.Detail {
		msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(d.Loc, "."), d.Msg))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *Error) has(loc []string) bool {
	for _, d := range e.Detail {
		if slices.Equal(d.Loc, loc) {
			return true
		}
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct runs the shared validator over s.
func Struct(s any) error {
	return validate.Struct(s)
}

// DecodeAndValidate reads the JSON body into payload and validates it.
// Unknown fields are ignored. A non-nil result is always *Error.
func DecodeAndValidate(r *http.Request, payload Validatable) error {
	verr := &Error{}

	if r.Body == nil {
		return missingBody()
	}

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(payload)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return missingBody()
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return &Error{Detail: []FieldError{{
				Loc:  []string{"body"},
				Msg:  "value is not a valid dict",
				Type: "type_error.dict",
			}}}
		}
		name := typeName(typeErr.Type)
		verr.Detail = append(verr.Detail, FieldError{
			Loc:  []string{"body", typeErr.Field},
			Msg:  "value is not a valid " + name,
			Type: "type_error." + name,
		})
	default:
		return invalidJSON(err.Error())
	}

	// The body must hold exactly one JSON value.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return invalidJSON("unexpected data after the JSON object")
	}

	if err := payload.Validate(); err != nil {
		var (
			ves    validator.ValidationErrors
			custom CustomValidationErrors
		)
		tagged, own := errors.As(err, &ves), errors.As(err, &custom)
		if !tagged && !own {
			return fmt.Errorf("validation: %w", err)
		}
		for _, fe := range ves {
			loc := []string{"body", fe.Field()}
			if verr.has(loc) {
				continue
			}
			verr.Detail = append(verr.Detail, fieldError(loc, fe))
		}
		for _, ce := range custom {
			loc := []string{"body", ce.Field}
			if verr.has(loc) {
				continue
			}
			verr.Detail = append(verr.Detail, FieldError{Loc: loc, Msg: ce.Message, Type: ce.Type})
		}
	}

	if len(verr.Detail) > 0 {
		return verr
	}
	return nil
}

// PathInt64Error reports a path parameter that is not an integer.
func PathInt64Error(name string) *Error {
	return &Error{Detail: []FieldError{{
		Loc:  []string{"path", name},
		Msg:  "value is not a valid integer",
		Type: "type_error.integer",
	}}}
}

func missingBody() *Error {
	return &Error{Detail: []FieldError{{
		Loc:  []string{"body"},
		Msg:  "field required",
		Type: "value_error.missing",
	}}}
}

func invalidJSON(msg string) *Error {
	return &Error{Detail: []FieldError{{
		Loc:  []string{"body"},
		Msg:  "invalid JSON: " + msg,
		Type: "value_error.jsondecode",
	}}}
}

func fieldError(loc []string, fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required":
		return FieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"}
	default:
		return FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("failed on the %q rule", fe.Tag()),
			Type: "value_error." + fe.Tag(),
		}
	}
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "dict"
	default:
		return t.Kind().String()
	}
}
