package tableschema

import (
	"fmt"
	"io"
	"slices"

	gojson "github.com/goccy/go-json"
)

// schemaDoc fixes the canonical property order: fields, primaryKey,
// foreignKeys, missingValues.
type schemaDoc struct {
	Fields        []fieldDoc      `json:"fields" yaml:"fields"`
	PrimaryKey    []string        `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	ForeignKeys   []foreignKeyDoc `json:"foreignKeys,omitempty" yaml:"foreignKeys,omitempty"`
	MissingValues *[]string       `json:"missingValues,omitempty" yaml:"missingValues,omitempty"`
}

func (s *Schema) document() schemaDoc {
	d := schemaDoc{Fields: make([]fieldDoc, 0, len(s.fields)), PrimaryKey: s.primaryKey}
	for _, f := range s.fields {
		d.Fields = append(d.Fields, f.document())
	}
	for _, fk := range s.foreignKeys {
		d.ForeignKeys = append(d.ForeignKeys, fk.document())
	}
	if !slices.Equal(s.missingValues, DefaultMissingValues) {
		// a pointer so that an explicitly empty token set is still written
		mv := s.missingValues
		if mv == nil {
			mv = []string{}
		}
		d.MissingValues = &mv
	}
	return d
}

// Document renders the schema with its codec.
func (s *Schema) Document() ([]byte, error) {
	b, err := s.codec.Marshal(s.document())
	if err != nil {
		return nil, Issues{{Kind: KindSerialization, Code: CodeSerializationError, Message: err.Error(), Cause: err}}
	}
	return b, nil
}

// WriteDocument writes Document to w.
func (s *Schema) WriteDocument(w io.Writer) error {
	b, err := s.Document()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return Issues{{Kind: KindSerialization, Code: CodeSerializationError, Message: err.Error(), Cause: err}}
	}
	return nil
}

// MarshalJSON renders the canonical JSON document regardless of the codec.
func (s *Schema) MarshalJSON() ([]byte, error) { return gojson.Marshal(s.document()) }

// MarshalYAML implements yaml.Marshaler.
func (s *Schema) MarshalYAML() (any, error) { return s.document(), nil }

// ParseSchema decodes a schema document with the configured codec and
// validates it. In strict mode the first violation is returned; in lenient
// mode the schema is returned with its violations in Errors. Documents that
// cannot be decoded always fail with a parse error.
func ParseSchema(data []byte, opts ...SchemaOpt) (*Schema, error) {
	s := NewSchema(opts...)
	tree, err := decodeTree(data, s.codec)
	if err != nil {
		return nil, err
	}
	if err := s.fromTree(tree); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadSchema reads r to the end and parses it with ParseSchema.
func ReadSchema(r io.Reader, opts ...SchemaOpt) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Issues{{Kind: KindParse, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return ParseSchema(data, opts...)
}

func (s *Schema) fromTree(tree any) error {
	m, ok := tree.(map[string]any)
	if !ok {
		return parseIssue("/", "A schema must be an object.")
	}
	if fv, ok := m["fields"]; ok && fv != nil {
		arr, ok := fv.([]any)
		if !ok {
			return parseIssue("/fields", "The fields property must be an array.")
		}
		for i, e := range arr {
			f, err := fieldFromTree(e, fmt.Sprintf("/fields/%d", i))
			if err != nil {
				return err
			}
			s.fields = append(s.fields, f)
		}
	}
	pk, err := decodeFieldNames(m["primaryKey"], "/primaryKey", msgPrimaryKeyShape)
	if err != nil {
		return err
	}
	s.primaryKey = pk
	if fv, ok := m["foreignKeys"]; ok && fv != nil {
		arr, ok := fv.([]any)
		if !ok {
			return parseIssue("/foreignKeys", "The foreignKeys property must be an array.")
		}
		for i, e := range arr {
			fk, err := foreignKeyFromTree(e, fmt.Sprintf("/foreignKeys/%d", i))
			if err != nil {
				return err
			}
			fk.mode = s.mode
			s.foreignKeys = append(s.foreignKeys, fk)
		}
	}
	if _, ok := m["missingValues"]; ok {
		mv, err := treeStrings(m, "missingValues", "")
		if err != nil {
			return err
		}
		if mv == nil {
			mv = []string{}
		}
		s.missingValues = mv
	}
	return nil
}
