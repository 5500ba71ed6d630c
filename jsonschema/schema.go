// Package jsonschema holds the small JSON Schema model a table schema is
// projected into when rows are exchanged as JSON objects.
package jsonschema

// Draft07 is the dialect URI written into exported root schemas.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Type        any    `json:"type,omitempty" yaml:"type,omitempty"` // string or []string (nullable)
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
	Enum        []any  `json:"enum,omitempty" yaml:"enum,omitempty"`

	// String
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`

	// Number
	Minimum any `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum any `json:"maximum,omitempty" yaml:"maximum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string           `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
}

// Nullable widens a single type to also accept null.
func (s *Schema) Nullable() *Schema {
	if t, ok := s.Type.(string); ok && t != "" {
		s.Type = []string{t, "null"}
	}
	return s
}
