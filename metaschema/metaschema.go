// Package metaschema checks schema documents against the Table Schema
// published JSON Schema. The JSON Schema engine is treated as an opaque
// conformance oracle: callers receive a flat list of violation messages.
package metaschema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed table-schema.json
var tableSchemaDoc []byte

// ResourceURL identifies the embedded Table Schema document.
const ResourceURL = "https://specs.frictionlessdata.io/schemas/table-schema.json"

// Validator validates serialized schema documents. It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles a JSON Schema document. Pass nil to use the embedded
// Table Schema document.
func New(doc []byte) (*Validator, error) {
	if doc == nil {
		doc = tableSchemaDoc
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(ResourceURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("metaschema: add resource: %w", err)
	}
	s, err := c.Compile(ResourceURL)
	if err != nil {
		return nil, fmt.Errorf("metaschema: compile: %w", err)
	}
	return &Validator{schema: s}, nil
}

var (
	defaultOnce sync.Once
	defaultVal  *Validator
)

// Default returns the shared validator for the embedded document.
func Default() *Validator {
	defaultOnce.Do(func() {
		v, err := New(nil)
		if err != nil {
			panic(err)
		}
		defaultVal = v
	})
	return defaultVal
}

// Validate checks a JSON document. A nil slice with a nil error means the
// document conforms. The error is reserved for documents that cannot be read
// at all.
func (v *Validator) Validate(doc []byte) ([]string, error) {
	var inst any
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&inst); err != nil {
		return nil, fmt.Errorf("metaschema: invalid document: %w", err)
	}
	return v.ValidateValue(inst)
}

// ValidateValue checks an already decoded document tree.
func (v *Validator) ValidateValue(inst any) ([]string, error) {
	err := v.schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("metaschema: %w", err)
	}
	var out []string
	collect(ve, &out)
	sort.Strings(out)
	return out, nil
}

func collect(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collect(c, out)
	}
}
