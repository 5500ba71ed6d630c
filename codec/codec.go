package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Codec converts between schema documents and Go values. Implementations are
// stateless and safe for concurrent use.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into v. Generic targets (*any) receive
	// map[string]any / []any trees; JSON numbers are kept as json.Number.
	Unmarshal(data []byte, v any) error
}

// JSONOptions configures the JSON codec.
type JSONOptions struct {
	// Indent, when non-empty, pretty-prints Marshal output with this unit.
	Indent string
	// SanitizeQuotes replaces typographic double quotes with ASCII quotes in
	// documents that open with them, as produced by some spreadsheet exports.
	SanitizeQuotes bool
	// RejectDuplicateKeys fails Unmarshal when an object repeats a key.
	RejectDuplicateKeys bool
}

// JSON returns a Codec backed by goccy/go-json.
func JSON(opts ...JSONOptions) Codec {
	var opt JSONOptions
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return jsonCodec{opt: opt}
}

type jsonCodec struct{ opt JSONOptions }

func (jsonCodec) Name() string { return "json" }

func (c jsonCodec) Marshal(v any) ([]byte, error) {
	if c.opt.Indent != "" {
		return json.MarshalIndent(v, "", c.opt.Indent)
	}
	return json.Marshal(v)
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	data = trimBOM(data)
	if c.opt.SanitizeQuotes {
		data = sanitizeQuotes(data)
	}
	if c.opt.RejectDuplicateKeys {
		dups, err := DuplicateKeys(data)
		if err != nil {
			return err
		}
		if len(dups) > 0 {
			return fmt.Errorf("codec: invalid JSON: duplicate key at %s", strings.Join(dups, ", "))
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("codec: invalid JSON: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("codec: invalid JSON: trailing data after document")
	}
	return nil
}

// YAML returns a Codec backed by gopkg.in/yaml.v3.
func YAML() Codec { return yamlCodec{} }

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

func (yamlCodec) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(trimBOM(data), v); err != nil {
		return fmt.Errorf("codec: invalid YAML: %w", err)
	}
	return nil
}

// ForName picks a codec by a file extension or format name ("json", ".yml").
func ForName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json", "":
		return JSON(), nil
	case "yaml", "yml":
		return YAML(), nil
	}
	return nil, fmt.Errorf("codec: unsupported format %q", name)
}

var bom = []byte{0xEF, 0xBB, 0xBF}

func trimBOM(b []byte) []byte { return bytes.TrimPrefix(b, bom) }

func sanitizeQuotes(b []byte) []byte {
	s := string(b)
	if !strings.HasPrefix(s, "[“") && !strings.HasPrefix(s, "{“") {
		return b
	}
	return []byte(strings.NewReplacer("“", `"`, "”", `"`).Replace(s))
}
