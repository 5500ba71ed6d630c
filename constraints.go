package tableschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	gojson "github.com/goccy/go-json"
)

// Constraints restrict the values a field accepts. The zero value imposes
// nothing. Minimum, Maximum and Enum entries are given in document form
// (strings or JSON scalars) and are interpreted through the field's type.
type Constraints struct {
	Required  bool
	Unique    bool
	MinLength *int
	MaxLength *int
	Minimum   any
	Maximum   any
	Pattern   string
	Enum      []any
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return !c.Required && !c.Unique && c.MinLength == nil && c.MaxLength == nil &&
		c.Minimum == nil && c.Maximum == nil && c.Pattern == "" && len(c.Enum) == 0
}

type normalizedConstraints struct {
	Required, Unique     bool
	MinLength, MaxLength int
	Minimum, Maximum     string
	Pattern              string
	Enum                 []string
}

func (c Constraints) normalized() normalizedConstraints {
	n := normalizedConstraints{Required: c.Required, Unique: c.Unique, Pattern: c.Pattern, MinLength: -1, MaxLength: -1}
	if c.MinLength != nil {
		n.MinLength = *c.MinLength
	}
	if c.MaxLength != nil {
		n.MaxLength = *c.MaxLength
	}
	if c.Minimum != nil {
		n.Minimum = fmt.Sprint(c.Minimum)
	}
	if c.Maximum != nil {
		n.Maximum = fmt.Sprint(c.Maximum)
	}
	for _, e := range c.Enum {
		n.Enum = append(n.Enum, fmt.Sprint(e))
	}
	return n
}

var patternCache sync.Map // string -> *regexp.Regexp

// compilePattern compiles a constraint pattern anchored at both ends.
func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + p + `)$`)
	if err != nil {
		return nil, err
	}
	patternCache.Store(p, re)
	return re, nil
}

// constraintValue interprets a bound or enum entry through the field type.
func (f *Field) constraintValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return f.parse(x)
	case json.Number:
		return f.parse(x.String())
	case float64:
		return f.parse(strconv.FormatFloat(x, 'f', -1, 64))
	case int:
		return f.parse(strconv.Itoa(x))
	case int64:
		return f.parse(strconv.FormatInt(x, 10))
	case bool:
		if x {
			return f.parse(f.trueValues()[0])
		}
		return f.parse(f.falseValues()[0])
	case map[string]any, []any:
		b, err := gojson.Marshal(x)
		if err != nil {
			return nil, err
		}
		return f.parse(string(b))
	}
	return f.parse(fmt.Sprint(v))
}

func (f *Field) checkConstraints(raw string, v any) Issues {
	c := f.Constraints
	if c.IsZero() {
		return nil
	}
	fail := func(code string, params map[string]any) Issues {
		params["field"] = f.name
		params["value"] = raw
		return Issues{newIssue(KindCast, code, "", "", params)}
	}
	if c.Pattern != "" {
		re, err := compilePattern(c.Pattern)
		if err != nil || !re.MatchString(raw) {
			return fail(CodePattern, map[string]any{"pattern": c.Pattern})
		}
	}
	if c.MinLength != nil || c.MaxLength != nil {
		n := valueLen(v)
		if c.MinLength != nil && n < *c.MinLength {
			return fail(CodeTooShort, map[string]any{"min": *c.MinLength})
		}
		if c.MaxLength != nil && n > *c.MaxLength {
			return fail(CodeTooLong, map[string]any{"max": *c.MaxLength})
		}
	}
	if c.Minimum != nil {
		if b, err := f.constraintValue(c.Minimum); err == nil {
			if cmp, ok := compareValues(v, b); ok && cmp < 0 {
				return fail(CodeTooSmall, map[string]any{"min": c.Minimum})
			}
		}
	}
	if c.Maximum != nil {
		if b, err := f.constraintValue(c.Maximum); err == nil {
			if cmp, ok := compareValues(v, b); ok && cmp > 0 {
				return fail(CodeTooBig, map[string]any{"max": c.Maximum})
			}
		}
	}
	if len(c.Enum) > 0 {
		for _, e := range c.Enum {
			if ev, err := f.constraintValue(e); err == nil && valuesEqual(v, ev) {
				return nil
			}
		}
		return fail(CodeInvalidEnum, map[string]any{})
	}
	return nil
}

func valueLen(v any) int {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x)
	case []any:
		return len(x)
	case map[string]any:
		return len(x)
	}
	return 0
}

// valuesEqual compares two typed values. Instants compare by Equal so that
// equal times in different locations match.
func valuesEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values of the same ordered type.
func compareValues(a, b any) (int, bool) {
	sign := func(less, greater bool) int {
		switch {
		case less:
			return -1
		case greater:
			return 1
		}
		return 0
	}
	switch x := a.(type) {
	case int64:
		y, ok := b.(int64)
		return sign(x < y, x > y), ok
	case float64:
		y, ok := b.(float64)
		return sign(x < y, x > y), ok
	case int:
		y, ok := b.(int)
		return sign(x < y, x > y), ok
	case civil.Date:
		y, ok := b.(civil.Date)
		tx, ty := x.In(time.UTC), y.In(time.UTC)
		return sign(tx.Before(ty), tx.After(ty)), ok
	case civil.Time:
		y, ok := b.(civil.Time)
		nx, ny := clockNanos(x), clockNanos(y)
		return sign(nx < ny, nx > ny), ok
	case time.Time:
		y, ok := b.(time.Time)
		return sign(x.Before(y), x.After(y)), ok
	case YearMonth:
		y, ok := b.(YearMonth)
		mx, my := x.Year*12+int(x.Month), y.Year*12+int(y.Month)
		return sign(mx < my, mx > my), ok
	}
	return 0, false
}

func clockNanos(t civil.Time) int64 {
	return int64(t.Hour)*int64(time.Hour) + int64(t.Minute)*int64(time.Minute) +
		int64(t.Second)*int64(time.Second) + int64(t.Nanosecond)
}
