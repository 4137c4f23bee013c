package schema

import (
	"bytes"
	"encoding/json"
)

// DraftVersion is the JSON Schema dialect of rendered descriptors
const DraftVersion = "http://json-schema.org/draft-07/schema#"

type propertyDescriptor struct {
	Type        Kind     `json:"type"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
}

type namedProperty struct {
	name       string
	descriptor propertyDescriptor
}

// orderedProperties marshals as a JSON object keeping declaration order
type orderedProperties []namedProperty

func (p orderedProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(prop.descriptor)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type objectDescriptor struct {
	Type                 string            `json:"type"`
	Properties           orderedProperties `json:"properties"`
	Required             []string          `json:"required,omitempty"`
	AdditionalProperties bool              `json:"additionalProperties"`
	Schema               string            `json:"$schema"`
}

func (s *Schema) describe() objectDescriptor {
	d := objectDescriptor{
		Type:       "object",
		Properties: make(orderedProperties, 0, len(s.fields)),
		Schema:     DraftVersion,
	}

	for _, f := range s.fields {
		d.Properties = append(d.Properties, namedProperty{
			name: f.name,
			descriptor: propertyDescriptor{
				Type:        f.kind,
				Minimum:     f.minimum,
				Maximum:     f.maximum,
				Enum:        f.enum,
				Description: f.description,
			},
		})
		if !f.optional {
			d.Required = append(d.Required, f.name)
		}
	}

	return d
}
