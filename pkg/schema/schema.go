// Package schema describes the argument shape a tool accepts.
//
// A Schema is an ordered set of typed fields with independent constraints.
// It renders itself as a JSON Schema (draft-07) descriptor for discovery and
// validates raw JSON argument payloads, collecting every violation rather
// than stopping at the first.
//
//	s := schema.MustObject(
//		schema.Number("leftHand").Min(0).Max(1).Whole().Describe("Left operand"),
//		schema.Number("rightHand").Min(0).Max(1).Whole().Describe("Right operand"),
//	)
//	values, err := s.Validate(raw)
package schema

import (
	"encoding/json"
	"fmt"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
)

// Kind is the JSON type of a field
type Kind string

const (
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
)

// Field is a single named property of an object schema. Fields are values;
// each builder method returns a modified copy.
type Field struct {
	name        string
	kind        Kind
	description string
	minimum     *float64
	maximum     *float64
	whole       bool
	optional    bool
	enum        []string
}

// Number declares a numeric field
func Number(name string) Field { return Field{name: name, kind: KindNumber} }

// Integer declares a field that must hold a whole number and is advertised
// with JSON type "integer"
func Integer(name string) Field { return Field{name: name, kind: KindInteger, whole: true} }

// String declares a string field
func String(name string) Field { return Field{name: name, kind: KindString} }

// Boolean declares a boolean field
func Boolean(name string) Field { return Field{name: name, kind: KindBoolean} }

// Min sets an inclusive lower bound on a numeric field
func (f Field) Min(v float64) Field {
	f.minimum = &v
	return f
}

// Max sets an inclusive upper bound on a numeric field
func (f Field) Max(v float64) Field {
	f.maximum = &v
	return f
}

// Whole requires a numeric field to carry no fractional part. Unlike
// Integer, the descriptor keeps advertising JSON type "number".
func (f Field) Whole() Field {
	f.whole = true
	return f
}

// Describe attaches a human-readable description to the field
func (f Field) Describe(description string) Field {
	f.description = description
	return f
}

// Optional marks the field as not required
func (f Field) Optional() Field {
	f.optional = true
	return f
}

// OneOf restricts a string field to the given values
func (f Field) OneOf(values ...string) Field {
	f.enum = append([]string(nil), values...)
	return f
}

// Name returns the property name
func (f Field) Name() string { return f.name }

// Kind returns the JSON type of the field
func (f Field) Kind() Kind { return f.kind }

// Required reports whether the field must be present
func (f Field) Required() bool { return !f.optional }

func (f Field) numeric() bool {
	return f.kind == KindNumber || f.kind == KindInteger
}

func (f Field) check() error {
	if f.name == "" {
		return fmt.Errorf("field name is empty")
	}
	switch f.kind {
	case KindNumber, KindInteger, KindString, KindBoolean:
	default:
		return fmt.Errorf("field %q has unknown kind %q", f.name, f.kind)
	}
	if !f.numeric() && (f.minimum != nil || f.maximum != nil || f.whole) {
		return fmt.Errorf("field %q: numeric constraints on a %s field", f.name, f.kind)
	}
	if f.minimum != nil && f.maximum != nil && *f.minimum > *f.maximum {
		return fmt.Errorf("field %q: minimum %v exceeds maximum %v", f.name, *f.minimum, *f.maximum)
	}
	if len(f.enum) > 0 && f.kind != KindString {
		return fmt.Errorf("field %q: enum on a %s field", f.name, f.kind)
	}
	return nil
}

// Schema is an immutable object schema with declaration-ordered fields
type Schema struct {
	fields     []Field
	descriptor json.RawMessage
}

// Object builds an object schema from fields. Field names must be unique.
func Object(fields ...Field) (*Schema, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := f.check(); err != nil {
			return nil, mcperrors.ValidationError(fmt.Sprintf("invalid schema: %v", err))
		}
		if seen[f.name] {
			return nil, mcperrors.ValidationError(fmt.Sprintf("invalid schema: duplicate field %q", f.name))
		}
		seen[f.name] = true
	}

	s := &Schema{fields: append([]Field(nil), fields...)}
	descriptor, err := json.Marshal(s.describe())
	if err != nil {
		return nil, fmt.Errorf("failed to render schema descriptor: %w", err)
	}
	s.descriptor = descriptor
	return s, nil
}

// MustObject is like Object but panics on an invalid definition. It is
// intended for package-level schema tables.
func MustObject(fields ...Field) *Schema {
	s, err := Object(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the schema's fields in declaration order
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Descriptor returns the JSON Schema rendering. The same bytes are
// returned on every call; callers must not modify them.
func (s *Schema) Descriptor() json.RawMessage {
	return s.descriptor
}
