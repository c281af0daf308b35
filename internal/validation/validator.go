package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"storefront-api/internal/apperr"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrBodyEmpty   = errors.New("request body is empty")
	ErrBodyInvalid = errors.New("request body must be valid JSON")
)

// Validator checks bodies against a compiled Shape and decodes them into T.
type Validator[T any] struct {
	schema *gojsonschema.Schema
	doc    []byte
}

func New[T any](shape Shape) (*Validator[T], error) {
	doc, err := json.Marshal(shape.Schema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("gojsonschema.NewSchema: %w", err)
	}

	return &Validator[T]{schema: sch, doc: doc}, nil
}

// MustNew is New for package-level shapes known to compile.
func MustNew[T any](shape Shape) *Validator[T] {
	v, err := New[T](shape)
	if err != nil {
		panic(err)
	}
	return v
}

// Document returns the compiled JSON Schema.
func (v *Validator[T]) Document() []byte {
	return v.doc
}

// Validate returns the decoded value or an InvalidArgument error.
// Violations are reported as a ValidationError in the error chain.
func (v *Validator[T]) Validate(body []byte) (T, error) {
	var out T

	if len(bytes.TrimSpace(body)) == 0 {
		return out, apperr.Wrap(apperr.InvalidArgument, ErrBodyEmpty, ErrBodyEmpty.Error())
	}
	if !json.Valid(body) {
		return out, apperr.Wrap(apperr.InvalidArgument, ErrBodyInvalid, ErrBodyInvalid.Error())
	}

	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return out, apperr.Wrap(apperr.InvalidArgument, err, ErrBodyInvalid.Error())
	}
	if !res.Valid() {
		ve := toValidationError(res)
		return out, apperr.Wrap(apperr.InvalidArgument, ve, ve.First())
	}

	if err := json.Unmarshal(body, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			ve := decodeError(typeErr)
			return out, apperr.Wrap(apperr.InvalidArgument, ve, ve.First())
		}
		return out, apperr.Wrap(apperr.InvalidArgument, err, ErrBodyInvalid.Error())
	}
	return out, nil
}

// decodeError reports values the schema admits but T cannot hold,
// such as 28.0 or 1e30 for an int field.
func decodeError(err *json.UnmarshalTypeError) ValidationError {
	field := err.Field
	if field == "" {
		field = rootField
	}
	return ValidationError{Errors: []FieldError{{
		Field:   field,
		Message: fmt.Sprintf("%s must be %s", field, goTypeName(err.Type)),
	}}}
}

func goTypeName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Pointer:
		return goTypeName(t.Elem())
	default:
		return "an object"
	}
}

// Bind adapts Validate to an untyped binder.
func (v *Validator[T]) Bind(body []byte) (any, error) {
	return v.Validate(body)
}
