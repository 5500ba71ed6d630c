package tableschema_test

import (
	"errors"
	"strings"
	"testing"

	ts "github.com/reoring/tableschema"
)

func TestForeignKey_ValidShapes(t *testing.T) {
	if _, err := ts.NewForeignKey([]string{"fk"}, ts.NewReference("res", "ref"), ts.Strict); err != nil {
		t.Fatalf("scalar pairing: %v", err)
	}
	fk, err := ts.ParseForeignKey([]byte(`{"fields":["a","b"],"reference":{"resource":"res","fields":["x","y"]}}`), ts.Strict, nil)
	if err != nil {
		t.Fatalf("array pairing: %v", err)
	}
	if len(fk.Fields) != 2 || fk.Reference.Resource != "res" || len(fk.Reference.Fields) != 2 {
		t.Fatalf("unexpected foreign key: %+v", fk)
	}
}

func TestForeignKey_ShapeErrors(t *testing.T) {
	cases := []struct {
		name   string
		fields []string
		ref    *ts.Reference
		want   string
	}{
		{"array vs scalar", []string{"a", "b"}, ts.NewReference("res", "x"), "must be an array"},
		{"scalar vs array", []string{"a"}, ts.NewReference("res", "x", "y"), "must be a string"},
		{"length mismatch", []string{"a", "b", "c"}, ts.NewReference("res", "x", "y"), "same length"},
		{"no fields", nil, ts.NewReference("res", "x"), "must have the fields and reference"},
		{"no reference", []string{"a"}, nil, "must have the fields and reference"},
	}
	for _, c := range cases {
		_, err := ts.NewForeignKey(c.fields, c.ref, ts.Strict)
		if !errors.Is(err, ts.ErrForeignKey) {
			t.Fatalf("%s: expected ErrForeignKey, got %v", c.name, err)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: expected message containing %q, got %v", c.name, c.want, err)
		}
	}
}

func TestForeignKey_LenientAccumulates(t *testing.T) {
	fk, err := ts.NewForeignKey([]string{"a", "b"}, ts.NewReference("res", "x"), ts.Lenient)
	if err != nil {
		t.Fatalf("lenient construction should not fail: %v", err)
	}
	if len(fk.Errors()) != 1 {
		t.Fatalf("expected one recorded error, got %v", fk.Errors())
	}
	if err := fk.Validate(); err != nil {
		t.Fatalf("lenient validate should not fail: %v", err)
	}
	if len(fk.Errors()) != 2 {
		t.Fatalf("expected errors to accumulate, got %v", fk.Errors())
	}
	if err := fk.ValidateMode(ts.Strict); !errors.Is(err, ts.ErrForeignKey) {
		t.Fatalf("expected strict override to fail, got %v", err)
	}
}

func TestParseForeignKey_FieldShapes(t *testing.T) {
	_, err := ts.ParseForeignKey([]byte(`{"fields": 25}`), ts.Strict, nil)
	if !errors.Is(err, ts.ErrParse) || !strings.Contains(err.Error(), "The foreign key's fields property must be a string or an array.") {
		t.Fatalf("expected parse error for numeric fields, got %v", err)
	}
	_, err = ts.ParseForeignKey([]byte(`{"fields":"a","reference":{"resource":"r","fields":{"x":1}}}`), ts.Strict, nil)
	if !errors.Is(err, ts.ErrParse) || !strings.Contains(err.Error(), "reference fields property must be a string or an array") {
		t.Fatalf("expected parse error for object reference fields, got %v", err)
	}
	_, err = ts.ParseForeignKey([]byte(`{"fields":"a","reference":{"resource":"r","fields":["x","y","z"]}}`), ts.Strict, nil)
	if !strings.Contains(err.Error(), "The reference's fields property must be a string if the outer fields is a string.") {
		t.Fatalf("expected scalar/array mismatch, got %v", err)
	}
}

func TestReference_Validate(t *testing.T) {
	for _, r := range []*ts.Reference{ts.NewReference("", "x"), ts.NewReference("res"), nil} {
		err := r.Validate()
		if !errors.Is(err, ts.ErrForeignKey) || !strings.Contains(err.Error(), "must have the fields and resource properties") {
			t.Fatalf("expected reference error for %+v, got %v", r, err)
		}
	}
	ref, err := ts.ParseReference([]byte(`{"resource":"people","fields":"id","datapackage":"https://example.com/datapackage.json"}`), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ref.Resource != "people" || len(ref.Fields) != 1 || ref.Fields[0] != "id" || ref.Datapackage == "" {
		t.Fatalf("unexpected reference: %+v", ref)
	}
	if _, err := ts.ParseReference([]byte(`{"fields":"id"}`), nil); !errors.Is(err, ts.ErrForeignKey) {
		t.Fatalf("expected missing resource to fail, got %v", err)
	}
}
