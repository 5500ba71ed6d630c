package tableschema

import (
	js "github.com/reoring/tableschema/jsonschema"
)

// RowJSONSchema projects the schema onto a JSON Schema describing one cast
// row encoded as a JSON object keyed by field name. Fields that are not
// required are nullable, since missing values cast to nil.
func (s *Schema) RowJSONSchema() *js.Schema {
	root := &js.Schema{
		Schema:               js.Draft07,
		Type:                 "object",
		Properties:           make(map[string]*js.Schema, len(s.fields)),
		AdditionalProperties: false,
	}
	for _, f := range s.fields {
		p := f.jsonSchema()
		if f.Constraints.Required {
			root.Required = append(root.Required, f.name)
		} else {
			p.Nullable()
		}
		root.Properties[f.name] = p
	}
	return root
}

func (f *Field) jsonSchema() *js.Schema {
	p := &js.Schema{Title: f.Title, Description: f.Description}
	c := f.Constraints
	switch f.Type {
	case TypeInteger, TypeNumber:
		p.Type = string(f.Type)
		if c.Minimum != nil {
			if v, err := f.constraintValue(c.Minimum); err == nil {
				p.Minimum = v
			}
		}
		if c.Maximum != nil {
			if v, err := f.constraintValue(c.Maximum); err == nil {
				p.Maximum = v
			}
		}
	case TypeBoolean:
		p.Type = "boolean"
	case TypeYear:
		p.Type = "integer"
	case TypeString:
		p.Type = "string"
		switch f.Format {
		case FormatEmail, FormatURI, FormatUUID:
			p.Format = f.Format
		}
	case TypeDate:
		p.Type, p.Format = "string", "date"
	case TypeTime:
		p.Type, p.Format = "string", "time"
	case TypeDatetime:
		p.Type, p.Format = "string", "date-time"
	case TypeDuration:
		p.Type, p.Format = "string", "duration"
	case TypeYearMonth:
		p.Type, p.Pattern = "string", `^\d{4}-\d{2}$`
	case TypeGeopoint:
		switch f.Format {
		case FormatArray:
			two := 2
			p.Type, p.Items, p.MinItems, p.MaxItems = "array", &js.Schema{Type: "number"}, &two, &two
		case FormatObject:
			p.Type = "object"
			p.Properties = map[string]*js.Schema{"lon": {Type: "number"}, "lat": {Type: "number"}}
			p.Required = []string{"lon", "lat"}
		default:
			p.Type = "string"
		}
	case TypeObject, TypeGeojson:
		p.Type = "object"
	case TypeArray:
		p.Type = "array"
	}
	if f.Type == TypeString {
		if c.Pattern != "" {
			// JSON Schema patterns are unanchored; constraints match the whole value
			p.Pattern = "^(?:" + c.Pattern + ")$"
		}
		p.MinLength, p.MaxLength = c.MinLength, c.MaxLength
		p.Enum = c.Enum
	}
	return p
}
