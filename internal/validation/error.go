package validation

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const rootField = "(root)"

// FieldError is a single violation reported against a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found in one body.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (ve ValidationError) Error() string {
	d, err := json.Marshal(ve)
	if err != nil {
		return err.Error()
	}
	return string(d)
}

// First returns the message of the first violation after sorting.
func (ve ValidationError) First() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return ve.Errors[0].Message
}

// Messages lists the violation messages in order.
func (ve ValidationError) Messages() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fe.Message)
	}
	return out
}

func toValidationError(result *gojsonschema.Result) ValidationError {
	errs := make([]FieldError, 0, len(result.Errors()))
	for _, res := range result.Errors() {
		errs = append(errs, FieldError{
			Field:   fieldName(res),
			Message: newErrorMessage(res),
		})
	}

	ve := ValidationError{Errors: errs}
	sortErrors(&ve)
	return ve
}

func sortErrors(ve *ValidationError) {
	slices.SortFunc(ve.Errors, func(a, b FieldError) int {
		if c := cmp.Compare(a.Field, b.Field); c != 0 {
			return c
		}
		return cmp.Compare(a.Message, b.Message)
	})
}

// fieldName points required-property errors at the missing property rather than its parent.
func fieldName(res gojsonschema.ResultError) string {
	if _, ok := res.(*gojsonschema.RequiredError); ok {
		return joinField(res.Field(), res.Details()["property"])
	}
	if _, ok := res.(*gojsonschema.AdditionalPropertyNotAllowedError); ok {
		return joinField(res.Field(), res.Details()["property"])
	}
	return res.Field()
}

func joinField(parent string, prop any) string {
	name := fmt.Sprint(prop)
	if parent == "" || parent == rootField {
		return name
	}
	return parent + "." + name
}

func newErrorMessage(res gojsonschema.ResultError) string {
	switch res.(type) {
	case *gojsonschema.RequiredError:
		return fmt.Sprintf("%s is required", fieldName(res))
	case *gojsonschema.AdditionalPropertyNotAllowedError:
		return fmt.Sprintf("property %s should not exist", fieldName(res))
	case *gojsonschema.InvalidTypeError:
		return fmt.Sprintf("%s must be of type %s", res.Field(), expectedType(res.Details()["expected"]))
	case *gojsonschema.NumberGTEError:
		return fmt.Sprintf("%s must not be less than %s", res.Field(), formatNumber(res.Details()["min"]))
	case *gojsonschema.StringLengthGTEError:
		return fmt.Sprintf("%s should not be empty", res.Field())
	case *gojsonschema.ArrayMinItemsError:
		return fmt.Sprintf("%s must contain at least %v elements", res.Field(), res.Details()["min"])
	default:
		return fmt.Sprintf("%s: %s", res.Field(), res.Description())
	}
}

// expectedType strips the quoting gojsonschema puts around type names.
func expectedType(v any) string {
	return strings.ReplaceAll(fmt.Sprint(v), `"`, "")
}

// formatNumber prints schema bounds, which gojsonschema keeps as big numbers.
func formatNumber(v any) string {
	switch n := v.(type) {
	case interface{ RatString() string }:
		return n.RatString()
	case interface{ Text(byte, int) string }:
		return n.Text('f', -1)
	default:
		return fmt.Sprint(v)
	}
}
