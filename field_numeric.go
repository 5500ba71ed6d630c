package tableschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	integerRe = regexp.MustCompile(`^[+-]?\d+$`)
	numberRe  = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	// leading and trailing decoration removed when BareNumber is false
	numPrefixRe = regexp.MustCompile(`^[^0-9+\-.]+`)
	numSuffixRe = regexp.MustCompile(`[^0-9.]+$`)
)

// normalizeNumber strips group separators, rewrites the decimal separator
// to '.' and, for non-bare numbers, removes surrounding decoration.
func (f *Field) normalizeNumber(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !f.bareNumber() {
		s = numPrefixRe.ReplaceAllString(s, "")
		s = numSuffixRe.ReplaceAllString(s, "")
	}
	if f.GroupChar != "" {
		s = strings.ReplaceAll(s, f.GroupChar, "")
	}
	if dc := f.decimalChar(); dc != "." {
		if strings.Contains(s, ".") {
			return "", fmt.Errorf("unexpected '.' with decimal separator %q", dc)
		}
		s = strings.ReplaceAll(s, dc, ".")
	}
	if s == "" {
		return "", errors.New("empty numeric literal")
	}
	return s, nil
}

func parseInteger(f *Field, raw string) (any, error) {
	s, err := f.normalizeNumber(raw)
	if err != nil {
		return nil, err
	}
	if !integerRe.MatchString(s) {
		return nil, fmt.Errorf("%q is not an integer literal", raw)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func formatInteger(f *Field, v any) (string, error) {
	n, ok := asInt64(v)
	if !ok {
		return "", fmt.Errorf("expected integer value, got %T", v)
	}
	s := strconv.FormatInt(n, 10)
	if f.GroupChar != "" {
		s = groupDigits(s, f.GroupChar)
	}
	return s, nil
}

func parseNumber(f *Field, raw string) (any, error) {
	switch strings.TrimSpace(raw) {
	case "NaN":
		return math.NaN(), nil
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	s, err := f.normalizeNumber(raw)
	if err != nil {
		return nil, err
	}
	if !numberRe.MatchString(s) {
		return nil, fmt.Errorf("%q is not a number literal", raw)
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return x, nil
}

func formatNumber(f *Field, v any) (string, error) {
	x, ok := asFloat64(v)
	if !ok {
		return "", fmt.Errorf("expected number value, got %T", v)
	}
	switch {
	case math.IsNaN(x):
		return "NaN", nil
	case math.IsInf(x, 1):
		return "INF", nil
	case math.IsInf(x, -1):
		return "-INF", nil
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if f.GroupChar != "" {
		intPart = groupDigits(intPart, f.GroupChar)
	}
	if hasFrac {
		return intPart + f.decimalChar() + frac, nil
	}
	return intPart, nil
}

// groupDigits inserts sep every three digits of an optionally signed integer.
func groupDigits(s, sep string) string {
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		x, err := n.Float64()
		return x, err == nil
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
