// Package validation checks JSON request bodies against declarative shapes.
//
// A Shape lists fields and their rules. It is compiled once into a JSON
// Schema document and evaluated with gojsonschema on every request.
package validation

import (
	"github.com/swaggest/jsonschema-go"
)

// Rule describes the constraints on a single value.
type Rule struct {
	kind      jsonschema.SimpleType
	minimum   *float64
	minLength int64
	minItems  int64
	items     *Rule
	fields    []Field
}

type Field struct {
	Name string
	Rule Rule
}

func String() Rule {
	return Rule{kind: jsonschema.String}
}

// NonEmptyString rejects "".
func NonEmptyString() Rule {
	return Rule{kind: jsonschema.String, minLength: 1}
}

func Number() Rule {
	return Rule{kind: jsonschema.Number}
}

func Integer() Rule {
	return Rule{kind: jsonschema.Integer}
}

func Array(items Rule) Rule {
	return Rule{kind: jsonschema.Array, items: &items}
}

// Object is a nested object whose fields are all required.
func Object(fields ...Field) Rule {
	return Rule{kind: jsonschema.Object, fields: fields}
}

func (r Rule) Min(v float64) Rule {
	r.minimum = &v
	return r
}

func (r Rule) MinItems(n int64) Rule {
	r.minItems = n
	return r
}

func F(name string, rule Rule) Field {
	return Field{Name: name, Rule: rule}
}

// Shape is the top-level object accepted by a route.
type Shape struct {
	fields  []Field
	partial bool
}

func NewShape(fields ...Field) Shape {
	return Shape{fields: fields}
}

// Partial returns a copy of s whose top-level fields are optional.
// Nested objects keep their own required fields.
func (s Shape) Partial() Shape {
	s.partial = true
	return s
}

// Schema compiles s to a JSON Schema that rejects unknown properties.
func (s Shape) Schema() jsonschema.Schema {
	root := objectSchema(s.fields)
	if s.partial {
		root.Required = nil
	}
	return root
}

func objectSchema(fields []Field) jsonschema.Schema {
	var sch jsonschema.Schema
	sch.WithType(simpleType(jsonschema.Object))

	props := make(map[string]jsonschema.SchemaOrBool, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		fs := f.Rule.schema()
		props[f.Name] = fs.ToSchemaOrBool()
		required = append(required, f.Name)
	}
	sch.WithProperties(props)
	sch.WithRequired(required...)
	sch.WithAdditionalProperties(closed())
	return sch
}

func (r Rule) schema() jsonschema.Schema {
	if r.kind == jsonschema.Object {
		return objectSchema(r.fields)
	}

	var sch jsonschema.Schema
	sch.WithType(simpleType(r.kind))
	if r.minimum != nil {
		sch.WithMinimum(*r.minimum)
	}
	if r.minLength > 0 {
		sch.WithMinLength(r.minLength)
	}
	if r.kind == jsonschema.Array {
		if r.minItems > 0 {
			sch.WithMinItems(r.minItems)
		}
		if r.items != nil {
			is := r.items.schema()
			var items jsonschema.Items
			items.WithSchemaOrBool(is.ToSchemaOrBool())
			sch.WithItems(items)
		}
	}
	return sch
}

func simpleType(t jsonschema.SimpleType) jsonschema.Type {
	var jt jsonschema.Type
	jt.WithSimpleTypes(t)
	return jt
}

func closed() jsonschema.SchemaOrBool {
	var sb jsonschema.SchemaOrBool
	sb.WithTypeBoolean(false)
	return sb
}
