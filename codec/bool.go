package codec

import (
	"encoding/json"
	"fmt"
	"strings"
)

var (
	truthy = []string{"true", "yes", "y", "t", "1"}
	falsey = []string{"false", "no", "n", "f", "0"}
)

// ErrInvalidBool reports a string that is neither truthy nor falsey.
var ErrInvalidBool = fmt.Errorf("codec: only truthy values %v and falsey values %v are supported", truthy, falsey)

// ParseBool decodes a lenient boolean: surrounding whitespace and case are
// ignored.
func ParseBool(s string) (bool, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	for _, t := range truthy {
		if text == t {
			return true, nil
		}
	}
	for _, f := range falsey {
		if text == f {
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: got %q", ErrInvalidBool, s)
}

// DecodeBool decodes a boolean-typed document member. Absent (nil) values are
// false; strings go through ParseBool.
func DecodeBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		return ParseBool(t)
	case json.Number:
		return ParseBool(t.String())
	case int:
		return ParseBool(fmt.Sprint(t))
	}
	return false, fmt.Errorf("%w: unexpected %T", ErrInvalidBool, v)
}
