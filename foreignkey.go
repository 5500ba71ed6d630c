package tableschema

import (
	"fmt"
	"net/url"

	"github.com/reoring/tableschema/codec"
)

// Foreign key messages.
const (
	msgForeignKeyIncomplete = "A foreign key must have the fields and reference properties."
	msgRefFieldsNotArray    = "The reference's fields property must be an array if the outer fields is an array."
	msgRefFieldsNotString   = "The reference's fields property must be a string if the outer fields is a string."
	msgRefFieldsLength      = "The reference's fields property must be an array of the same length as that of the outer fields' array."
	msgReferenceIncomplete  = "A foreign key's reference must have the fields and resource properties."

	msgFKFieldsShape    = "The foreign key's fields property must be a string or an array."
	msgRefFieldsShape   = "The foreign key's reference fields property must be a string or an array."
	msgPrimaryKeyShape  = "The primaryKey property must be a string or an array."
	msgForeignKeyObject = "A foreign key must be an object."
	msgReferenceObject  = "A foreign key's reference must be an object."
)

// Reference names the target of a foreign key.
type Reference struct {
	// Datapackage locates another dataset bundle; empty means the same one.
	Datapackage string
	Resource    string
	Fields      []string
}

// NewReference builds a reference without validating it.
func NewReference(resource string, fields ...string) *Reference {
	return &Reference{Resource: resource, Fields: fields}
}

// ParseReference decodes and validates a reference document. A nil codec
// means JSON.
func ParseReference(data []byte, c codec.Codec) (*Reference, error) {
	tree, err := decodeTree(data, c)
	if err != nil {
		return nil, err
	}
	ref, err := referenceFromTree(tree, "")
	if err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return ref, nil
}

// Validate requires both resource and fields. It is not subject to modes.
func (r *Reference) Validate() error {
	if r == nil || r.Resource == "" || len(r.Fields) == 0 {
		return singleIssue(KindForeignKey, CodeReferenceShape, msgReferenceIncomplete)
	}
	return nil
}

// ForeignKey maps local fields onto the fields of a Reference.
type ForeignKey struct {
	Fields    []string
	Reference *Reference

	mode   Mode
	errors Issues
}

// NewForeignKey builds a foreign key and validates it under mode.
func NewForeignKey(fields []string, ref *Reference, mode Mode) (*ForeignKey, error) {
	fk := &ForeignKey{Fields: fields, Reference: ref, mode: mode}
	if err := fk.Validate(); err != nil {
		return nil, err
	}
	return fk, nil
}

// ParseForeignKey decodes a foreign key document and validates it under
// mode. A nil codec means JSON.
func ParseForeignKey(data []byte, mode Mode, c codec.Codec) (*ForeignKey, error) {
	tree, err := decodeTree(data, c)
	if err != nil {
		return nil, err
	}
	fk, err := foreignKeyFromTree(tree, "")
	if err != nil {
		return nil, err
	}
	fk.mode = mode
	if err := fk.Validate(); err != nil {
		return nil, err
	}
	return fk, nil
}

// Mode returns the mode the key was built with.
func (fk *ForeignKey) Mode() Mode { return fk.mode }

// Validate checks the key under its own mode.
func (fk *ForeignKey) Validate() error { return fk.ValidateMode(fk.mode) }

// ValidateMode checks the key's shape. Strict returns the violation; lenient
// records it in Errors and returns nil.
func (fk *ForeignKey) ValidateMode(mode Mode) error {
	return mode.report(&fk.errors, fk.check(""))
}

// Errors returns the violations recorded by lenient validation.
func (fk *ForeignKey) Errors() Issues { return fk.errors }

func (fk *ForeignKey) check(path string) Issues {
	var msg string
	switch {
	case len(fk.Fields) == 0 || fk.Reference == nil:
		msg = msgForeignKeyIncomplete
	case len(fk.Fields) > 1 && len(fk.Reference.Fields) <= 1:
		msg = msgRefFieldsNotArray
	case len(fk.Fields) == 1 && len(fk.Reference.Fields) > 1:
		msg = msgRefFieldsNotString
	case len(fk.Fields) != len(fk.Reference.Fields):
		msg = msgRefFieldsLength
	default:
		return nil
	}
	return Issues{{Kind: KindForeignKey, Code: CodeForeignKeyShape, Path: path, Message: msg}}
}

type referenceDoc struct {
	Datapackage string   `json:"datapackage,omitempty" yaml:"datapackage,omitempty"`
	Resource    string   `json:"resource" yaml:"resource"`
	Fields      []string `json:"fields" yaml:"fields"`
}

type foreignKeyDoc struct {
	Fields    []string      `json:"fields" yaml:"fields"`
	Reference *referenceDoc `json:"reference" yaml:"reference"`
}

func (fk *ForeignKey) document() foreignKeyDoc {
	d := foreignKeyDoc{Fields: fk.Fields}
	if r := fk.Reference; r != nil {
		d.Reference = &referenceDoc{Datapackage: r.Datapackage, Resource: r.Resource, Fields: r.Fields}
	}
	return d
}

func foreignKeyFromTree(v any, path string) (*ForeignKey, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, parseIssue(path, msgForeignKeyObject)
	}
	fields, err := decodeFieldNames(m["fields"], path+"/fields", msgFKFieldsShape)
	if err != nil {
		return nil, err
	}
	fk := &ForeignKey{Fields: fields}
	if rv, ok := m["reference"]; ok && rv != nil {
		if fk.Reference, err = referenceFromTree(rv, path+"/reference"); err != nil {
			return nil, err
		}
	}
	return fk, nil
}

func referenceFromTree(v any, path string) (*Reference, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, parseIssue(path, msgReferenceObject)
	}
	fields, err := decodeFieldNames(m["fields"], path+"/fields", msgRefFieldsShape)
	if err != nil {
		return nil, err
	}
	ref := &Reference{Fields: fields}
	if ref.Resource, err = treeString(m, "resource", path); err != nil {
		return nil, err
	}
	if ref.Datapackage, err = treeString(m, "datapackage", path); err != nil {
		return nil, err
	}
	if ref.Datapackage != "" {
		if _, err := url.Parse(ref.Datapackage); err != nil {
			return nil, Issues{{Kind: KindParse, Code: CodeParseError, Path: path + "/datapackage", Message: fmt.Sprintf("invalid datapackage URL %q", ref.Datapackage), Cause: err}}
		}
	}
	return ref, nil
}
