package tableschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/tableschema/i18n"
)

// Kind classifies an Issue into one of the error families callers branch on.
type Kind int

const (
	KindParse         Kind = iota + 1 // Malformed input document.
	KindValidation                    // Meta-schema or referential failure.
	KindPrimaryKey                    // Primary key names a missing field.
	KindForeignKey                    // Foreign key/reference shape inconsistency.
	KindCast                          // Row length mismatch or cell cast failure.
	KindInference                     // No schema could be inferred.
	KindSerialization                 // Schema could not be rendered.
)

// Sentinels matched by errors.Is against any Issue of the corresponding Kind.
var (
	ErrParse         = errors.New("tableschema: parse error")
	ErrValidation    = errors.New("tableschema: validation error")
	ErrPrimaryKey    = errors.New("tableschema: primary key error")
	ErrForeignKey    = errors.New("tableschema: foreign key error")
	ErrCast          = errors.New("tableschema: cast error")
	ErrInference     = errors.New("tableschema: inference error")
	ErrSerialization = errors.New("tableschema: serialization error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindParse:
		return ErrParse
	case KindValidation:
		return ErrValidation
	case KindPrimaryKey:
		return ErrPrimaryKey
	case KindForeignKey:
		return ErrForeignKey
	case KindCast:
		return ErrCast
	case KindInference:
		return ErrInference
	case KindSerialization:
		return ErrSerialization
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return strings.TrimPrefix(s.Error(), "tableschema: ")
	}
	return "unknown"
}

// Issue codes
const (
	CodeParseError         = "parse_error"
	CodeInvalidType        = "invalid_type"
	CodeInvalidFormat      = "invalid_format"
	CodeRequired           = "required"
	CodeTooSmall           = "too_small"
	CodeTooBig             = "too_big"
	CodeTooShort           = "too_short"
	CodeTooLong            = "too_long"
	CodePattern            = "pattern"
	CodeInvalidEnum        = "invalid_enum"
	CodeRowLength          = "row_length"
	CodeUniqueness         = "uniqueness"
	CodeMetaSchema         = "meta_schema"
	CodeUnknownField       = "unknown_field"
	CodeDuplicateField     = "duplicate_field"
	CodeForeignKeyShape    = "foreign_key_shape"
	CodeReferenceShape     = "reference_shape"
	CodeInferenceFailed    = "inference_failed"
	CodeSerializationError = "serialization_error"
)

// Issue represents a single violation.
type Issue struct {
	Kind    Kind
	Path    string // JSON Pointer into the document or row (for example: /fields/2).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "got":0}) for
	// i18n and observability.
	Params map[string]any
}

func (it Issue) String() string {
	b := &strings.Builder{}
	b.WriteString(it.Code)
	if it.Message != "" {
		b.WriteString(": ")
		b.WriteString(it.Message)
	}
	if it.Path != "" {
		fmt.Fprintf(b, " at %s", it.Path)
	}
	return b.String()
}

// Issues is a collection of violations that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue belongs to the family named by target.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if s := it.Kind.sentinel(); s != nil && s == target {
			return true
		}
	}
	return false
}

// Unwrap exposes the underlying causes so errors.Is/As can reach them.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// HasKind reports whether at least one issue has kind k.
func (iss Issues) HasKind(k Kind) bool {
	for _, it := range iss {
		if it.Kind == k {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func singleIssue(kind Kind, code, msg string) Issues {
	return Issues{{Kind: kind, Code: code, Message: msg}}
}

// newIssue builds an issue whose message falls back to the translated code.
func newIssue(kind Kind, code, path, msg string, params map[string]any) Issue {
	if msg == "" {
		msg = i18n.T(code, stringParams(params))
	}
	return Issue{Kind: kind, Code: code, Path: path, Message: msg, Params: params}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}
