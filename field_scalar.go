package tableschema

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"net/url"
	"slices"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
)

func parseString(f *Field, raw string) (any, error) {
	var err error
	switch f.Format {
	case FormatEmail:
		var a *mail.Address
		if a, err = mail.ParseAddress(raw); err == nil && a.Address != raw {
			err = fmt.Errorf("%q is not a bare address", raw)
		}
	case FormatURI:
		var u *url.URL
		if u, err = url.Parse(raw); err == nil && u.Scheme == "" {
			err = fmt.Errorf("%q has no scheme", raw)
		}
	case FormatBinary:
		_, err = base64.StdEncoding.DecodeString(raw)
	case FormatUUID:
		_, err = uuid.Parse(raw)
	}
	if err != nil {
		return nil, &formatError{format: f.Format, err: err}
	}
	return raw, nil
}

func formatString(_ *Field, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// any never fails; the raw text is kept.
func parseAny(_ *Field, raw string) (any, error) { return raw, nil }

func formatAny(_ *Field, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	}
	b, err := gojson.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseBoolean(f *Field, raw string) (any, error) {
	switch {
	case slices.Contains(f.trueValues(), raw):
		return true, nil
	case slices.Contains(f.falseValues(), raw):
		return false, nil
	}
	return nil, fmt.Errorf("%q is not one of the boolean literals", raw)
}

func formatBoolean(f *Field, v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("expected bool, got %T", v)
	}
	if b {
		return f.trueValues()[0], nil
	}
	return f.falseValues()[0], nil
}
