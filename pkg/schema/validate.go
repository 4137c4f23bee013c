package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
)

// Values holds the arguments of a payload that passed validation, keyed
// by field name. Numeric fields hold float64, string fields string and
// boolean fields bool. Absent optional fields have no entry.
type Values map[string]interface{}

// Has reports whether the field is present
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Number returns a numeric field, or 0 when absent
func (v Values) Number(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// String returns a string field, or "" when absent
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns a boolean field, or false when absent
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Validate checks raw against the schema. It never panics. On success it
// returns the typed values; on failure it returns an MCPError listing every
// violation, in field declaration order, as "<field>: <message>" joined by
// "; ". Properties not declared by the schema are ignored.
//
// An empty payload is reported as a missing object, and the JSON literal
// null as an object of the wrong kind.
func (s *Schema) Validate(raw json.RawMessage) (Values, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, mcperrors.CombineValidationErrors([]mcperrors.MCPError{
			mcperrors.RequiredFieldMissing("", "object"),
		})
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, mcperrors.CombineValidationErrors([]mcperrors.MCPError{
			mcperrors.MalformedPayload(err),
		})
	}
	if dec.More() {
		return nil, mcperrors.CombineValidationErrors([]mcperrors.MCPError{
			mcperrors.MalformedPayload(errTrailingData),
		})
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil, mcperrors.CombineValidationErrors([]mcperrors.MCPError{
			mcperrors.InvalidFieldType("", payload, "object", typeName(payload)),
		})
	}

	values := make(Values, len(s.fields))
	var issues []mcperrors.MCPError
	for _, f := range s.fields {
		raw, present := obj[f.name]
		if !present {
			if !f.optional {
				issues = append(issues, mcperrors.RequiredFieldMissing(f.name, string(f.kind)))
			}
			continue
		}

		value, fieldIssues := f.validate(raw)
		if len(fieldIssues) > 0 {
			issues = append(issues, fieldIssues...)
			continue
		}
		values[f.name] = value
	}

	if len(issues) > 0 {
		return nil, mcperrors.CombineValidationErrors(issues)
	}
	return values, nil
}

var errTrailingData = errors.New("unexpected data after top-level value")

func (f Field) validate(raw interface{}) (interface{}, []mcperrors.MCPError) {
	switch f.kind {
	case KindNumber, KindInteger:
		return f.validateNumber(raw)
	case KindString:
		str, ok := raw.(string)
		if !ok {
			return nil, []mcperrors.MCPError{mcperrors.InvalidFieldType(f.name, raw, "string", typeName(raw))}
		}
		if len(f.enum) > 0 && !contains(f.enum, str) {
			return nil, []mcperrors.MCPError{mcperrors.InvalidEnum(f.name, str, f.enum)}
		}
		return str, nil
	case KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, []mcperrors.MCPError{mcperrors.InvalidFieldType(f.name, raw, "boolean", typeName(raw))}
		}
		return b, nil
	}
	return nil, []mcperrors.MCPError{mcperrors.InvalidFieldType(f.name, raw, string(f.kind), typeName(raw))}
}

func (f Field) validateNumber(raw interface{}) (interface{}, []mcperrors.MCPError) {
	n, ok := raw.(json.Number)
	if !ok {
		return nil, []mcperrors.MCPError{mcperrors.InvalidFieldType(f.name, raw, string(f.kind), typeName(raw))}
	}

	// Out-of-range literals such as 1e400 parse to ±Inf and fall
	// through to the bound checks.
	v, err := n.Float64()
	if err != nil && !math.IsInf(v, 0) {
		return nil, []mcperrors.MCPError{mcperrors.InvalidFieldType(f.name, raw, string(f.kind), "number")}
	}

	var issues []mcperrors.MCPError
	if f.whole && !math.IsInf(v, 0) && v != math.Trunc(v) {
		issues = append(issues, mcperrors.NotAnInteger(f.name, v))
	}
	if f.minimum != nil && v < *f.minimum {
		issues = append(issues, mcperrors.ValueTooSmall(f.name, v, *f.minimum))
	}
	if f.maximum != nil && v > *f.maximum {
		issues = append(issues, mcperrors.ValueTooLarge(f.name, v, *f.maximum))
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return v, nil
}

// typeName names the JSON kind of a decoded value
func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return "unknown"
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
