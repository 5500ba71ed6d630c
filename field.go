package tableschema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Type is the semantic type tag of a Field.
type Type string

const (
	TypeString    Type = "string"
	TypeNumber    Type = "number"
	TypeInteger   Type = "integer"
	TypeBoolean   Type = "boolean"
	TypeObject    Type = "object"
	TypeArray     Type = "array"
	TypeDate      Type = "date"
	TypeTime      Type = "time"
	TypeDatetime  Type = "datetime"
	TypeYear      Type = "year"
	TypeYearMonth Type = "yearmonth"
	TypeDuration  Type = "duration"
	TypeGeopoint  Type = "geopoint"
	TypeGeojson   Type = "geojson"
	TypeAny       Type = "any"
)

// Types lists every supported type tag.
var Types = []Type{
	TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray,
	TypeDate, TypeTime, TypeDatetime, TypeYear, TypeYearMonth, TypeDuration,
	TypeGeopoint, TypeGeojson, TypeAny,
}

// Format names shared by several types.
const (
	FormatDefault  = "default"
	FormatAny      = "any"
	FormatEmail    = "email"
	FormatURI      = "uri"
	FormatBinary   = "binary"
	FormatUUID     = "uuid"
	FormatArray    = "array"
	FormatObject   = "object"
	FormatTopoJSON = "topojson"
)

// typeOps is one row of the dispatch table.
type typeOps struct {
	parse  func(f *Field, raw string) (any, error)
	format func(f *Field, v any) (string, error)
	// formats lists the named formats accepted besides "default".
	formats []string
	// patterns marks types that also accept strftime-style patterns.
	patterns bool
	// ordered types support minimum/maximum constraints.
	ordered bool
	// sized types support minLength/maxLength constraints.
	sized bool
}

var typeTable map[Type]typeOps

func init() {
	typeTable = map[Type]typeOps{
		TypeString:    {parse: parseString, format: formatString, formats: []string{FormatEmail, FormatURI, FormatBinary, FormatUUID}, sized: true},
		TypeAny:       {parse: parseAny, format: formatAny, sized: true},
		TypeInteger:   {parse: parseInteger, format: formatInteger, ordered: true},
		TypeNumber:    {parse: parseNumber, format: formatNumber, ordered: true},
		TypeBoolean:   {parse: parseBoolean, format: formatBoolean},
		TypeDate:      {parse: parseDate, format: formatDate, formats: []string{FormatAny}, patterns: true, ordered: true},
		TypeTime:      {parse: parseTime, format: formatTime, formats: []string{FormatAny}, patterns: true, ordered: true},
		TypeDatetime:  {parse: parseDatetime, format: formatDatetime, formats: []string{FormatAny}, patterns: true, ordered: true},
		TypeYear:      {parse: parseYear, format: formatYear, ordered: true},
		TypeYearMonth: {parse: parseYearMonth, format: formatYearMonth, ordered: true},
		TypeDuration:  {parse: parseDuration, format: formatDuration},
		TypeGeopoint:  {parse: parseGeopoint, format: formatGeopoint, formats: []string{FormatArray, FormatObject}},
		TypeGeojson:   {parse: parseGeojson, format: formatStructured, formats: []string{FormatTopoJSON}},
		TypeObject:    {parse: parseObject, format: formatStructured, sized: true},
		TypeArray:     {parse: parseArray, format: formatStructured, sized: true},
	}
	for _, t := range Types {
		if _, ok := typeTable[t]; !ok {
			panic("tableschema: no dispatch entry for type " + string(t))
		}
	}
}

// Field is a named, typed column descriptor. The name is fixed at
// construction; the remaining attributes may be adjusted before the field is
// added to a Schema.
type Field struct {
	name        string
	Type        Type
	Format      string
	Title       string
	Description string
	Constraints Constraints
	// DecimalChar and GroupChar are numeric locale hints ("." and none by default).
	DecimalChar string
	GroupChar   string
	// BareNumber=false lets numeric casts strip leading/trailing non-numeric
	// characters such as currency or percent signs. Nil means true.
	BareNumber  *bool
	TrueValues  []string
	FalseValues []string
}

// FieldOpt customizes a Field built by NewField.
type FieldOpt func(*Field)

// WithFormat sets the format specifier.
func WithFormat(format string) FieldOpt { return func(f *Field) { f.Format = format } }

// WithConstraints sets the constraint set.
func WithConstraints(c Constraints) FieldOpt { return func(f *Field) { f.Constraints = c } }

// WithTitle sets title and description.
func WithTitle(title, description string) FieldOpt {
	return func(f *Field) { f.Title, f.Description = title, description }
}

// WithNumberChars sets the decimal and group separators.
func WithNumberChars(decimal, group string) FieldOpt {
	return func(f *Field) { f.DecimalChar, f.GroupChar = decimal, group }
}

// WithBareNumber toggles strict numeric literals.
func WithBareNumber(bare bool) FieldOpt { return func(f *Field) { f.BareNumber = &bare } }

// WithBooleanValues overrides the literals accepted for boolean fields.
func WithBooleanValues(trueValues, falseValues []string) FieldOpt {
	return func(f *Field) { f.TrueValues, f.FalseValues = trueValues, falseValues }
}

// NewField builds and self-checks a field.
func NewField(name string, typ Type, opts ...FieldOpt) (*Field, error) {
	f := newField(name, typ)
	for _, o := range opts {
		o(f)
	}
	f.normalize()
	if iss := f.check(""); len(iss) > 0 {
		return nil, iss
	}
	return f, nil
}

func newField(name string, typ Type) *Field {
	f := &Field{name: name, Type: typ}
	f.normalize()
	return f
}

func (f *Field) normalize() {
	if f.Type == "" {
		f.Type = TypeString
	}
	if f.Format == "" {
		f.Format = FormatDefault
	}
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

func (f *Field) ops() (typeOps, bool) {
	ops, ok := typeTable[f.Type]
	return ops, ok
}

// Check reports the field's own violations (name, type, format and
// constraint declarations) as validation issues.
func (f *Field) Check() error {
	if iss := f.check(""); len(iss) > 0 {
		return iss
	}
	return nil
}

func (f *Field) check(path string) Issues {
	var iss Issues
	add := func(msg string) {
		iss = append(iss, Issue{Kind: KindValidation, Code: CodeInvalidFormat, Path: path, Message: msg, Params: map[string]any{"field": f.name}})
	}
	if f.name == "" {
		add("field name must not be empty")
	}
	ops, ok := f.ops()
	if !ok {
		add(fmt.Sprintf("field %q has unknown type %q", f.name, f.Type))
		return iss
	}
	if err := f.checkFormat(ops); err != nil {
		add(fmt.Sprintf("field %q: %v", f.name, err))
	}
	c := f.Constraints
	if c.Pattern != "" {
		if _, err := compilePattern(c.Pattern); err != nil {
			add(fmt.Sprintf("field %q: invalid pattern: %v", f.name, err))
		}
	}
	if (c.MinLength != nil || c.MaxLength != nil) && !ops.sized {
		add(fmt.Sprintf("field %q: length constraints do not apply to type %s", f.name, f.Type))
	}
	for _, b := range []struct {
		name string
		v    any
	}{{"minimum", c.Minimum}, {"maximum", c.Maximum}} {
		if b.v == nil {
			continue
		}
		if !ops.ordered {
			add(fmt.Sprintf("field %q: %s does not apply to type %s", f.name, b.name, f.Type))
			continue
		}
		if _, err := f.constraintValue(b.v); err != nil {
			add(fmt.Sprintf("field %q: %s %v is not a valid %s", f.name, b.name, b.v, f.Type))
		}
	}
	for _, e := range c.Enum {
		if _, err := f.constraintValue(e); err != nil {
			add(fmt.Sprintf("field %q: enum value %v is not a valid %s", f.name, e, f.Type))
		}
	}
	return iss
}

func (f *Field) checkFormat(ops typeOps) error {
	switch {
	case f.Format == FormatDefault:
		return nil
	case slices.Contains(ops.formats, f.Format):
		return nil
	case ops.patterns && strings.Contains(f.Format, "%"):
		_, err := strftimeLayout(f.Format)
		return err
	}
	return fmt.Errorf("format %q is not valid for type %s", f.Format, f.Type)
}

// DefaultMissingValues is the missing-value token set used when none is given.
var DefaultMissingValues = []string{""}

// Cast parses raw using the default missing-value tokens.
func (f *Field) Cast(raw string) (any, error) {
	return f.CastValue(raw, DefaultMissingValues)
}

// CastValue parses raw into the field's typed value. A raw value equal to
// one of missingValues yields nil unless the field is required.
func (f *Field) CastValue(raw string, missingValues []string) (any, error) {
	if slices.Contains(missingValues, raw) {
		if f.Constraints.Required {
			return nil, Issues{newIssue(KindCast, CodeRequired, "", "", map[string]any{"field": f.name})}
		}
		return nil, nil
	}
	v, err := f.parse(raw)
	if err != nil {
		return nil, f.castIssue(raw, err)
	}
	if iss := f.checkConstraints(raw, v); len(iss) > 0 {
		return nil, iss
	}
	return v, nil
}

func (f *Field) parse(raw string) (any, error) {
	ops, ok := f.ops()
	if !ok {
		return nil, fmt.Errorf("unknown type %q", f.Type)
	}
	return ops.parse(f, raw)
}

// formatError marks a value that has the right shape but violates the
// declared format.
type formatError struct {
	format string
	err    error
}

func (e *formatError) Error() string { return e.err.Error() }
func (e *formatError) Unwrap() error { return e.err }

func (f *Field) castIssue(raw string, err error) Issues {
	params := map[string]any{"field": f.name, "type": string(f.Type), "value": raw}
	code := CodeInvalidType
	var fe *formatError
	if errors.As(err, &fe) {
		code = CodeInvalidFormat
		params["format"] = fe.format
	}
	it := newIssue(KindCast, code, "", "", params)
	it.Message = fmt.Sprintf("%s: %v", it.Message, err)
	it.Cause = err
	return Issues{it}
}

// FormatValue renders a typed value back to its textual form. Nil renders as
// the empty string.
func (f *Field) FormatValue(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	ops, ok := f.ops()
	if !ok {
		return "", fmt.Errorf("tableschema: unknown type %q", f.Type)
	}
	s, err := ops.format(f, v)
	if err != nil {
		return "", Issues{{Kind: KindSerialization, Code: CodeInvalidType, Message: fmt.Sprintf("field %q: %v", f.name, err), Cause: err}}
	}
	return s, nil
}

// Similar reports structural equality ignoring the format. Empty and
// defaulted name/type values compare equal.
func (f *Field) Similar(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	a, b := *f, *other
	a.normalize()
	b.normalize()
	return a.name == b.name &&
		a.Type == b.Type &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		reflect.DeepEqual(a.Constraints.normalized(), b.Constraints.normalized()) &&
		a.decimalChar() == b.decimalChar() &&
		a.GroupChar == b.GroupChar &&
		a.bareNumber() == b.bareNumber() &&
		slices.Equal(a.trueValues(), b.trueValues()) &&
		slices.Equal(a.falseValues(), b.falseValues())
}

func (f *Field) decimalChar() string {
	if f.DecimalChar == "" {
		return "."
	}
	return f.DecimalChar
}

func (f *Field) bareNumber() bool { return f.BareNumber == nil || *f.BareNumber }

var (
	defaultTrueValues  = []string{"true", "True", "TRUE", "1"}
	defaultFalseValues = []string{"false", "False", "FALSE", "0"}
)

func (f *Field) trueValues() []string {
	if len(f.TrueValues) == 0 {
		return defaultTrueValues
	}
	return f.TrueValues
}

func (f *Field) falseValues() []string {
	if len(f.FalseValues) == 0 {
		return defaultFalseValues
	}
	return f.FalseValues
}
