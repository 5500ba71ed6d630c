package tableschema

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/reoring/tableschema/codec"
)

// Documents are decoded generically into map[string]any / []any trees and
// then walked by hand, so that the shape errors can carry exact messages and
// JSON Pointer paths regardless of the codec in use.

func decodeTree(data []byte, c codec.Codec) (any, error) {
	if c == nil {
		c = codec.JSON()
	}
	var tree any
	if err := c.Unmarshal(data, &tree); err != nil {
		return nil, Issues{{Kind: KindParse, Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err}}
	}
	return tree, nil
}

func parseIssue(path, msg string) Issues {
	if path == "" {
		path = "/"
	}
	return Issues{{Kind: KindParse, Code: CodeParseError, Path: path, Message: msg}}
}

// decodeFieldNames accepts a single name or an array of names.
func decodeFieldNames(v any, path, msg string) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{x}, nil
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, parseIssue(path, msg)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, parseIssue(path, msg)
}

func treeString(m map[string]any, key, path string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", parseIssue(path+"/"+key, fmt.Sprintf("The %s property must be a string.", key))
	}
	return s, nil
}

func treeStrings(m map[string]any, key, path string) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, parseIssue(path+"/"+key, fmt.Sprintf("The %s property must be an array of strings.", key))
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, parseIssue(path+"/"+key, fmt.Sprintf("The %s property must be an array of strings.", key))
		}
		out = append(out, s)
	}
	return out, nil
}

func treeBool(m map[string]any, key, path string) (*bool, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	b, err := codec.DecodeBool(v)
	if err != nil {
		return nil, Issues{{Kind: KindParse, Code: CodeParseError, Path: path + "/" + key, Message: err.Error(), Cause: err}}
	}
	return &b, nil
}

func treeInt(m map[string]any, key, path string) (*int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case uint64:
		n = int(x)
	case float64:
		if x != math.Trunc(x) {
			return nil, parseIssue(path+"/"+key, fmt.Sprintf("The %s property must be an integer.", key))
		}
		n = int(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil, parseIssue(path+"/"+key, fmt.Sprintf("The %s property must be an integer.", key))
		}
		n = int(i)
	default:
		return nil, parseIssue(path+"/"+key, fmt.Sprintf("The %s property must be an integer.", key))
	}
	return &n, nil
}

// fieldDoc is the canonical serialized form of a Field.
type fieldDoc struct {
	Name        string          `json:"name" yaml:"name"`
	Title       string          `json:"title,omitempty" yaml:"title,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string          `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string          `json:"format,omitempty" yaml:"format,omitempty"`
	Constraints *constraintsDoc `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	DecimalChar string          `json:"decimalChar,omitempty" yaml:"decimalChar,omitempty"`
	GroupChar   string          `json:"groupChar,omitempty" yaml:"groupChar,omitempty"`
	BareNumber  *bool           `json:"bareNumber,omitempty" yaml:"bareNumber,omitempty"`
	TrueValues  []string        `json:"trueValues,omitempty" yaml:"trueValues,omitempty"`
	FalseValues []string        `json:"falseValues,omitempty" yaml:"falseValues,omitempty"`
}

type constraintsDoc struct {
	Required  bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Unique    bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum   any    `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum   any    `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum      []any  `json:"enum,omitempty" yaml:"enum,omitempty"`
}

func (f *Field) document() fieldDoc {
	d := fieldDoc{
		Name:        f.name,
		Title:       f.Title,
		Description: f.Description,
		Type:        string(f.Type),
		DecimalChar: f.DecimalChar,
		GroupChar:   f.GroupChar,
		BareNumber:  f.BareNumber,
		TrueValues:  f.TrueValues,
		FalseValues: f.FalseValues,
	}
	if f.Format != FormatDefault {
		d.Format = f.Format
	}
	if c := f.Constraints; !c.IsZero() {
		d.Constraints = &constraintsDoc{
			Required: c.Required, Unique: c.Unique,
			MinLength: c.MinLength, MaxLength: c.MaxLength,
			Minimum: c.Minimum, Maximum: c.Maximum,
			Pattern: c.Pattern, Enum: c.Enum,
		}
	}
	return d
}

// ParseField decodes a single field document. A nil codec means JSON. The
// field is not checked; see Field.Check.
func ParseField(data []byte, c codec.Codec) (*Field, error) {
	tree, err := decodeTree(data, c)
	if err != nil {
		return nil, err
	}
	return fieldFromTree(tree, "")
}

func fieldFromTree(v any, path string) (*Field, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, parseIssue(path, "A field must be an object.")
	}
	name, err := treeString(m, "name", path)
	if err != nil {
		return nil, err
	}
	typ, err := treeString(m, "type", path)
	if err != nil {
		return nil, err
	}
	f := newField(name, Type(typ))
	if f.Format, err = treeString(m, "format", path); err != nil {
		return nil, err
	}
	if f.Title, err = treeString(m, "title", path); err != nil {
		return nil, err
	}
	if f.Description, err = treeString(m, "description", path); err != nil {
		return nil, err
	}
	if f.DecimalChar, err = treeString(m, "decimalChar", path); err != nil {
		return nil, err
	}
	if f.GroupChar, err = treeString(m, "groupChar", path); err != nil {
		return nil, err
	}
	if f.BareNumber, err = treeBool(m, "bareNumber", path); err != nil {
		return nil, err
	}
	if f.TrueValues, err = treeStrings(m, "trueValues", path); err != nil {
		return nil, err
	}
	if f.FalseValues, err = treeStrings(m, "falseValues", path); err != nil {
		return nil, err
	}
	if cv, ok := m["constraints"]; ok && cv != nil {
		cm, ok := cv.(map[string]any)
		if !ok {
			return nil, parseIssue(path+"/constraints", "The constraints property must be an object.")
		}
		if f.Constraints, err = constraintsFromTree(cm, path+"/constraints"); err != nil {
			return nil, err
		}
	}
	f.normalize()
	return f, nil
}

func constraintsFromTree(m map[string]any, path string) (Constraints, error) {
	var c Constraints
	req, err := treeBool(m, "required", path)
	if err != nil {
		return c, err
	}
	uniq, err := treeBool(m, "unique", path)
	if err != nil {
		return c, err
	}
	c.Required = req != nil && *req
	c.Unique = uniq != nil && *uniq
	if c.MinLength, err = treeInt(m, "minLength", path); err != nil {
		return c, err
	}
	if c.MaxLength, err = treeInt(m, "maxLength", path); err != nil {
		return c, err
	}
	if c.Pattern, err = treeString(m, "pattern", path); err != nil {
		return c, err
	}
	c.Minimum = m["minimum"]
	c.Maximum = m["maximum"]
	if ev, ok := m["enum"]; ok && ev != nil {
		arr, ok := ev.([]any)
		if !ok {
			return c, parseIssue(path+"/enum", "The enum property must be an array.")
		}
		c.Enum = arr
	}
	return c, nil
}
