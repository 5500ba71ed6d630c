package tableschema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reoring/tableschema/codec"
	"github.com/reoring/tableschema/metaschema"
)

// MetaValidator checks a serialized JSON schema document and returns the
// structural violations it finds. An error means the check itself failed.
type MetaValidator interface {
	Validate(doc []byte) ([]string, error)
}

// SchemaOpt configures a Schema. Zero values select the defaults.
type SchemaOpt struct {
	Mode Mode
	// Codec reads and writes schema documents. Defaults to codec.JSON().
	Codec codec.Codec
	// MetaSchema defaults to metaschema.Default().
	MetaSchema MetaValidator
	// MissingValues defaults to DefaultMissingValues.
	MissingValues []string
}

func pickSchemaOpt(opts []SchemaOpt) SchemaOpt {
	var o SchemaOpt
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.Codec == nil {
		o.Codec = codec.JSON()
	}
	if o.MetaSchema == nil {
		o.MetaSchema = metaschema.Default()
	}
	if o.MissingValues == nil {
		o.MissingValues = DefaultMissingValues
	}
	return o
}

// Schema is an ordered set of fields with keys and missing-value tokens.
//
// A Schema is not safe for concurrent mutation. Once validated it may be
// read (cast rows, look up fields) from several goroutines.
type Schema struct {
	fields        []*Field
	primaryKey    []string
	foreignKeys   []*ForeignKey
	missingValues []string

	mode   Mode
	codec  codec.Codec
	meta   MetaValidator
	errors Issues
}

// NewSchema returns an empty schema.
func NewSchema(opts ...SchemaOpt) *Schema {
	o := pickSchemaOpt(opts)
	return &Schema{
		mode:          o.Mode,
		codec:         o.Codec,
		meta:          o.MetaSchema,
		missingValues: slices.Clone(o.MissingValues),
	}
}

// NewSchemaFromFields builds a schema from fields and validates it.
func NewSchemaFromFields(fields []*Field, opts ...SchemaOpt) (*Schema, error) {
	s := NewSchema(opts...)
	for i, f := range fields {
		if f == nil {
			return nil, Issues{{Kind: KindValidation, Code: CodeUnknownField, Path: fmt.Sprintf("/fields/%d", i), Message: "field must not be nil"}}
		}
	}
	s.fields = slices.Clone(fields)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Mode returns the validation mode.
func (s *Schema) Mode() Mode { return s.mode }

// Fields returns the fields in column order.
func (s *Schema) Fields() []*Field { return slices.Clone(s.fields) }

// FieldNames returns the field names in column order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

func (s *Schema) fieldIndex(name string) int {
	return slices.IndexFunc(s.fields, func(f *Field) bool { return strings.EqualFold(f.name, name) })
}

// GetField looks a field up by name, ignoring case. It returns nil when no
// field matches.
func (s *Schema) GetField(name string) *Field {
	if i := s.fieldIndex(name); i >= 0 {
		return s.fields[i]
	}
	return nil
}

// HasField reports whether GetField would find name.
func (s *Schema) HasField(name string) bool { return s.fieldIndex(name) >= 0 }

// PrimaryKey returns the primary key field names.
func (s *Schema) PrimaryKey() []string { return slices.Clone(s.primaryKey) }

// ForeignKeys returns the declared foreign keys.
func (s *Schema) ForeignKeys() []*ForeignKey { return slices.Clone(s.foreignKeys) }

// MissingValues returns the tokens cast to nil.
func (s *Schema) MissingValues() []string { return slices.Clone(s.missingValues) }

// SetMissingValues replaces the missing-value tokens.
func (s *Schema) SetMissingValues(values ...string) { s.missingValues = slices.Clone(values) }

// AddField appends f and revalidates the schema. In strict mode the field
// stays appended even when validation fails.
func (s *Schema) AddField(f *Field) error {
	if f == nil {
		return singleIssue(KindValidation, CodeUnknownField, "field must not be nil")
	}
	s.fields = append(s.fields, f)
	return s.Validate()
}

// AddFieldDocument decodes a field document with the schema codec and adds it.
func (s *Schema) AddFieldDocument(doc []byte) error {
	f, err := ParseField(doc, s.codec)
	if err != nil {
		return err
	}
	return s.AddField(f)
}

// SetPrimaryKey records names as the primary key. Names that do not resolve
// are reported according to the mode but are recorded in both modes.
func (s *Schema) SetPrimaryKey(names ...string) error {
	s.primaryKey = slices.Clone(names)
	return s.mode.report(&s.errors, s.checkPrimaryKey())
}

func (s *Schema) checkPrimaryKey() Issues {
	var iss Issues
	for i, name := range s.primaryKey {
		if !s.HasField(name) {
			iss = append(iss, Issue{
				Kind:    KindPrimaryKey,
				Code:    CodeUnknownField,
				Path:    fmt.Sprintf("/primaryKey/%d", i),
				Message: fmt.Sprintf("No such field as: %s.", name),
				Params:  map[string]any{"field": name},
			})
		}
	}
	return iss
}

// AddForeignKey appends fk. It is checked with the rest of the schema by
// Validate.
func (s *Schema) AddForeignKey(fk *ForeignKey) {
	if fk == nil {
		return
	}
	s.foreignKeys = append(s.foreignKeys, fk)
}

// Validate checks meta-schema conformance, foreign keys, the primary key
// and each field. Strict mode returns the first violation; lenient mode
// appends every violation to Errors and returns nil. Failures to render the
// document or to run the meta-schema check are returned in both modes.
func (s *Schema) Validate() error {
	found, err := s.violations()
	if err != nil {
		return err
	}
	return s.mode.report(&s.errors, found)
}

func (s *Schema) violations() (Issues, error) {
	var iss Issues

	doc, err := codec.JSON().Marshal(s.document())
	if err != nil {
		return nil, Issues{{Kind: KindSerialization, Code: CodeSerializationError, Message: err.Error(), Cause: err}}
	}
	msgs, err := s.meta.Validate(doc)
	if err != nil {
		return nil, Issues{{Kind: KindValidation, Code: CodeMetaSchema, Message: err.Error(), Cause: err}}
	}
	for _, m := range msgs {
		path, _, _ := strings.Cut(m, ": ")
		iss = append(iss, Issue{Kind: KindValidation, Code: CodeMetaSchema, Path: path, Message: m})
	}

	for i, fk := range s.foreignKeys {
		path := fmt.Sprintf("/foreignKeys/%d", i)
		iss = append(iss, fk.check(path)...)
		for _, name := range fk.Fields {
			if !s.HasField(name) {
				iss = append(iss, Issue{
					Kind:    KindValidation,
					Code:    CodeUnknownField,
					Path:    path + "/fields",
					Message: fmt.Sprintf("Primary key field %s not found", name),
					Params:  map[string]any{"field": name},
				})
			}
		}
	}

	iss = append(iss, s.checkPrimaryKey()...)

	seen := make(map[string]bool, len(s.fields))
	for i, f := range s.fields {
		path := fmt.Sprintf("/fields/%d", i)
		iss = append(iss, f.check(path)...)
		key := strings.ToLower(f.name)
		if seen[key] {
			iss = append(iss, newIssue(KindValidation, CodeDuplicateField, path, "", map[string]any{"name": f.name}))
		}
		seen[key] = true
	}
	return iss, nil
}

// IsValid runs Validate and reports whether no violation was found and the
// accumulated error list is empty. It never returns an error.
func (s *Schema) IsValid() bool {
	if err := s.Validate(); err != nil {
		return false
	}
	return len(s.errors) == 0
}

// Errors returns the violations accumulated by lenient operations.
func (s *Schema) Errors() Issues { return s.errors }

// ResetErrors clears the accumulated error list.
func (s *Schema) ResetErrors() { s.errors = nil }

// Similar reports whether other describes the same table: similar fields in
// the same order, the same keys and missing-value tokens.
func (s *Schema) Similar(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if !s.fields[i].Similar(other.fields[i]) {
			return false
		}
	}
	if !slices.Equal(s.primaryKey, other.primaryKey) || !slices.Equal(s.missingValues, other.missingValues) {
		return false
	}
	if len(s.foreignKeys) != len(other.foreignKeys) {
		return false
	}
	for i := range s.foreignKeys {
		a, b := s.foreignKeys[i].document(), other.foreignKeys[i].document()
		if !slices.Equal(a.Fields, b.Fields) || (a.Reference == nil) != (b.Reference == nil) {
			return false
		}
		if a.Reference != nil && (a.Reference.Resource != b.Reference.Resource ||
			a.Reference.Datapackage != b.Reference.Datapackage ||
			!slices.Equal(a.Reference.Fields, b.Reference.Fields)) {
			return false
		}
	}
	return true
}
