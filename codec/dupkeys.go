package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

type dupFrame struct {
	object    bool
	keys      map[string]bool
	expectKey bool
	key       string
	index     int
}

func (f *dupFrame) segment() string {
	if f.object {
		return escapePointer(f.key)
	}
	return strconv.Itoa(f.index)
}

// DuplicateKeys scans a JSON document and returns the JSON pointer of every
// object member whose key already appeared in the same object.
func DuplicateKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(trimBOM(data)))
	dec.UseNumber()

	var (
		stack []*dupFrame
		dups  []string
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dups, fmt.Errorf("codec: invalid JSON: %w", err)
		}
		var top *dupFrame
		if n := len(stack); n > 0 {
			top = stack[n-1]
		}

		if top != nil && top.object && top.expectKey {
			if d, ok := tok.(json.Delim); ok && d == '}' {
				stack = stack[:len(stack)-1]
				continue
			}
			key, _ := tok.(string)
			if top.keys[key] {
				dups = append(dups, pointer(stack[:len(stack)-1])+"/"+escapePointer(key))
			}
			top.keys[key] = true
			top.key = key
			top.expectKey = false
			continue
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			stack = stack[:len(stack)-1]
			continue
		}

		// a value starts inside top
		if top != nil {
			if top.object {
				top.expectKey = true
			} else {
				top.index++
			}
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{':
				stack = append(stack, &dupFrame{object: true, keys: map[string]bool{}, expectKey: true})
			case '[':
				stack = append(stack, &dupFrame{index: -1})
			}
		}
	}
	return dups, nil
}

func pointer(frames []*dupFrame) string {
	var b strings.Builder
	for _, f := range frames {
		b.WriteByte('/')
		b.WriteString(f.segment())
	}
	return b.String()
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
