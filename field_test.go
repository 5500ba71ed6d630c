package tableschema_test

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	ts "github.com/reoring/tableschema"
)

func mustField(t *testing.T, name string, typ ts.Type, opts ...ts.FieldOpt) *ts.Field {
	t.Helper()
	f, err := ts.NewField(name, typ, opts...)
	if err != nil {
		t.Fatalf("NewField(%s, %s): %v", name, typ, err)
	}
	return f
}

func sameValue(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

func TestField_CastTypedValues(t *testing.T) {
	cases := []struct {
		field *ts.Field
		raw   string
		want  any
	}{
		{mustField(t, "i", ts.TypeInteger), "-42", int64(-42)},
		{mustField(t, "n", ts.TypeNumber), "3.14", 3.14},
		{mustField(t, "s", ts.TypeString), "foo", "foo"},
		{mustField(t, "a", ts.TypeAny), "anything at all", "anything at all"},
		{mustField(t, "b", ts.TypeBoolean), "TRUE", true},
		{mustField(t, "b0", ts.TypeBoolean), "0", false},
		{mustField(t, "d", ts.TypeDate), "2017-01-05", civil.Date{Year: 2017, Month: 1, Day: 5}},
		{mustField(t, "t", ts.TypeTime), "10:30:00", civil.Time{Hour: 10, Minute: 30}},
		{mustField(t, "dt", ts.TypeDatetime), "2017-01-05T10:30:00Z", time.Date(2017, 1, 5, 10, 30, 0, 0, time.UTC)},
		{mustField(t, "y", ts.TypeYear), "2017", 2017},
		{mustField(t, "ym", ts.TypeYearMonth), "2017-03", ts.YearMonth{Year: 2017, Month: time.March}},
		{mustField(t, "du", ts.TypeDuration), "P1DT2H", ts.Duration{Days: 1, Clock: 2 * time.Hour}},
		{mustField(t, "g", ts.TypeGeopoint), "90, 45", ts.Point{Lon: 90, Lat: 45}},
		{mustField(t, "arr", ts.TypeArray), `[1, "x"]`, []any{json.Number("1"), "x"}},
		{mustField(t, "obj", ts.TypeObject), `{"a": null}`, map[string]any{"a": nil}},
	}
	for _, c := range cases {
		got, err := c.field.Cast(c.raw)
		if err != nil {
			t.Fatalf("%s: cast %q: %v", c.field.Name(), c.raw, err)
		}
		if !sameValue(got, c.want) {
			t.Fatalf("%s: cast %q = %#v, want %#v", c.field.Name(), c.raw, got, c.want)
		}
	}
}

func TestField_RoundTrip(t *testing.T) {
	cases := []struct {
		field *ts.Field
		raws  []string
	}{
		{mustField(t, "i", ts.TypeInteger), []string{"0", "-42", "9223372036854775807"}},
		{mustField(t, "ig", ts.TypeInteger, ts.WithNumberChars("", ",")), []string{"1,234", "12"}},
		{mustField(t, "n", ts.TypeNumber), []string{"3.14", "-0.5", "1e3", "INF", "-INF"}},
		{mustField(t, "nl", ts.TypeNumber, ts.WithNumberChars(",", ".")), []string{"1.234,5", "3,14"}},
		{mustField(t, "b", ts.TypeBoolean, ts.WithBooleanValues([]string{"yes"}, []string{"no"})), []string{"yes", "no"}},
		{mustField(t, "s", ts.TypeString, ts.WithFormat(ts.FormatUUID)), []string{"0f8fad5b-d9cb-469f-a165-70867728950e"}},
		{mustField(t, "e", ts.TypeString, ts.WithFormat(ts.FormatEmail)), []string{"jane@example.com"}},
		{mustField(t, "d", ts.TypeDate), []string{"2017-01-05"}},
		{mustField(t, "dp", ts.TypeDate, ts.WithFormat("%d/%m/%Y")), []string{"05/01/2017"}},
		{mustField(t, "da", ts.TypeDate, ts.WithFormat(ts.FormatAny)), []string{"Jan 5, 2017", "2017/01/05"}},
		{mustField(t, "t", ts.TypeTime), []string{"10:30:00", "23:59:59.5"}},
		{mustField(t, "tp", ts.TypeTime, ts.WithFormat("%H%M")), []string{"1030"}},
		{mustField(t, "dt", ts.TypeDatetime), []string{"2017-01-05T10:30:00Z", "2017-01-05T10:30:00.25+02:00"}},
		{mustField(t, "dtp", ts.TypeDatetime, ts.WithFormat("%Y-%m-%d %H:%M")), []string{"2017-01-05 10:30"}},
		{mustField(t, "y", ts.TypeYear), []string{"2017", "0999"}},
		{mustField(t, "ym", ts.TypeYearMonth), []string{"2017-12"}},
		{mustField(t, "du", ts.TypeDuration), []string{"P1Y2M3DT4H5M6.5S", "P2W", "PT0S", "PT36H"}},
		{mustField(t, "g", ts.TypeGeopoint), []string{"90,45", "-122.4194, 37.7749"}},
		{mustField(t, "ga", ts.TypeGeopoint, ts.WithFormat(ts.FormatArray)), []string{"[90, 45.5]"}},
		{mustField(t, "go", ts.TypeGeopoint, ts.WithFormat(ts.FormatObject)), []string{`{"lon": 90, "lat": 45}`}},
		{mustField(t, "gj", ts.TypeGeojson), []string{`{"type":"Point","coordinates":[125.6, 10.1]}`}},
		{mustField(t, "tj", ts.TypeGeojson, ts.WithFormat(ts.FormatTopoJSON)), []string{`{"type":"Topology","objects":{}}`}},
		{mustField(t, "o", ts.TypeObject), []string{`{"a":{"b":[1,"x",true,null]}}`}},
		{mustField(t, "a", ts.TypeArray), []string{`[1, 2.5, "three"]`, `[]`}},
	}
	for _, c := range cases {
		for _, raw := range c.raws {
			v, err := c.field.Cast(raw)
			if err != nil {
				t.Fatalf("%s: cast %q: %v", c.field.Name(), raw, err)
			}
			s, err := c.field.FormatValue(v)
			if err != nil {
				t.Fatalf("%s: format %#v: %v", c.field.Name(), v, err)
			}
			v2, err := c.field.Cast(s)
			if err != nil {
				t.Fatalf("%s: recast %q (from %q): %v", c.field.Name(), s, raw, err)
			}
			if !sameValue(v, v2) {
				t.Fatalf("%s: round trip of %q via %q: %#v != %#v", c.field.Name(), raw, s, v, v2)
			}
		}
	}
}

func TestField_NumberSpecials(t *testing.T) {
	f := mustField(t, "n", ts.TypeNumber)
	v, err := f.Cast("NaN")
	if err != nil || !math.IsNaN(v.(float64)) {
		t.Fatalf("expected NaN, got %v err=%v", v, err)
	}
	if s, _ := f.FormatValue(v); s != "NaN" {
		t.Fatalf("expected NaN text, got %q", s)
	}
	for _, bad := range []string{"0x10", "1_000", "Infinity", "12abc", "1.2.3"} {
		if _, err := f.Cast(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestField_BareNumber(t *testing.T) {
	f := mustField(t, "price", ts.TypeNumber, ts.WithBareNumber(false))
	for raw, want := range map[string]float64{"95%": 95, "€1000.5": 1000.5, "$ 12": 12} {
		v, err := f.Cast(raw)
		if err != nil || v.(float64) != want {
			t.Fatalf("cast %q: got %v err=%v", raw, v, err)
		}
	}
	strict := mustField(t, "price", ts.TypeNumber)
	if _, err := strict.Cast("95%"); err == nil {
		t.Fatalf("expected bare number field to reject 95%%")
	}
}

func TestField_CastErrors(t *testing.T) {
	f := mustField(t, "id", ts.TypeInteger)
	_, err := f.Cast("abc")
	if !errors.Is(err, ts.ErrCast) {
		t.Fatalf("expected ErrCast, got %v", err)
	}
	iss, ok := ts.AsIssues(err)
	if !ok || iss[0].Code != ts.CodeInvalidType {
		t.Fatalf("expected invalid_type issue, got %v", err)
	}

	u := mustField(t, "u", ts.TypeString, ts.WithFormat(ts.FormatUUID))
	_, err = u.Cast("not-a-uuid")
	if iss, _ := ts.AsIssues(err); len(iss) == 0 || iss[0].Code != ts.CodeInvalidFormat {
		t.Fatalf("expected invalid_format issue, got %v", err)
	}

	g := mustField(t, "g", ts.TypeGeopoint)
	if _, err := g.Cast("200,10"); err == nil {
		t.Fatalf("expected out of range longitude to fail")
	}
	gj := mustField(t, "gj", ts.TypeGeojson)
	if _, err := gj.Cast(`{"type":"Blob"}`); err == nil {
		t.Fatalf("expected unknown geojson type to fail")
	}
	du := mustField(t, "du", ts.TypeDuration)
	for _, bad := range []string{"P", "PT", "1D", "P1H"} {
		if _, err := du.Cast(bad); err == nil {
			t.Fatalf("expected duration %q to fail", bad)
		}
	}
}

func TestField_GeopointRejectsNaN(t *testing.T) {
	for _, format := range []string{ts.FormatDefault, ts.FormatArray, ts.FormatObject} {
		g := mustField(t, "g", ts.TypeGeopoint, ts.WithFormat(format))
		raw := map[string]string{
			ts.FormatDefault: "NaN,NaN",
			ts.FormatArray:   "[10, NaN]",
			ts.FormatObject:  `{"lon": "NaN", "lat": 10}`,
		}[format]
		if _, err := g.Cast(raw); !errors.Is(err, ts.ErrCast) {
			t.Fatalf("%s: expected %q to fail, got %v", format, raw, err)
		}
	}
}

func TestField_DurationOutOfRange(t *testing.T) {
	du := mustField(t, "du", ts.TypeDuration)
	for _, bad := range []string{
		"P99999999999999999999D",
		"P9223372036854775807W",
		"PT3000000H",
		"PT2562047H100000000M",
		"PT9300000000000000000S",
	} {
		if v, err := du.Cast(bad); !errors.Is(err, ts.ErrCast) {
			t.Fatalf("expected duration %q to fail, got %v", bad, v)
		}
	}
	v, err := du.Cast("PT2562047H")
	if err != nil {
		t.Fatalf("expected the largest whole-hour clock to cast: %v", err)
	}
	if _, err := du.FormatValue(v); err != nil {
		t.Fatalf("format %v: %v", v, err)
	}
}

func TestField_MissingValues(t *testing.T) {
	f := mustField(t, "n", ts.TypeInteger)
	v, err := f.CastValue("NA", []string{"", "NA"})
	if err != nil || v != nil {
		t.Fatalf("expected nil for missing token, got %v err=%v", v, err)
	}

	req := mustField(t, "n", ts.TypeInteger, ts.WithConstraints(ts.Constraints{Required: true}))
	_, err = req.Cast("")
	iss, ok := ts.AsIssues(err)
	if !ok || iss[0].Code != ts.CodeRequired || !errors.Is(err, ts.ErrCast) {
		t.Fatalf("expected required cast error, got %v", err)
	}
}

func TestField_Constraints(t *testing.T) {
	minLen, maxLen := 2, 4
	cases := []struct {
		name string
		f    *ts.Field
		raw  string
		code string
	}{
		{"min", mustField(t, "n", ts.TypeInteger, ts.WithConstraints(ts.Constraints{Minimum: 10})), "5", ts.CodeTooSmall},
		{"max", mustField(t, "n", ts.TypeInteger, ts.WithConstraints(ts.Constraints{Maximum: "20"})), "25", ts.CodeTooBig},
		{"date-min", mustField(t, "d", ts.TypeDate, ts.WithConstraints(ts.Constraints{Minimum: "2000-01-01"})), "1999-12-31", ts.CodeTooSmall},
		{"pattern", mustField(t, "s", ts.TypeString, ts.WithConstraints(ts.Constraints{Pattern: "[a-z]+"})), "abc1", ts.CodePattern},
		{"enum", mustField(t, "s", ts.TypeString, ts.WithConstraints(ts.Constraints{Enum: []any{"a", "b"}})), "c", ts.CodeInvalidEnum},
		{"short", mustField(t, "s", ts.TypeString, ts.WithConstraints(ts.Constraints{MinLength: &minLen})), "x", ts.CodeTooShort},
		{"long", mustField(t, "s", ts.TypeString, ts.WithConstraints(ts.Constraints{MaxLength: &maxLen})), "xxxxx", ts.CodeTooLong},
	}
	for _, c := range cases {
		_, err := c.f.Cast(c.raw)
		iss, ok := ts.AsIssues(err)
		if !ok || iss[0].Code != c.code {
			t.Fatalf("%s: expected %s, got %v", c.name, c.code, err)
		}
	}

	enum := mustField(t, "n", ts.TypeInteger, ts.WithConstraints(ts.Constraints{Enum: []any{json.Number("1"), 2, "3"}}))
	for _, ok := range []string{"1", "2", "3"} {
		if _, err := enum.Cast(ok); err != nil {
			t.Fatalf("enum value %s rejected: %v", ok, err)
		}
	}
	between := mustField(t, "n", ts.TypeInteger, ts.WithConstraints(ts.Constraints{Minimum: 10, Maximum: 20}))
	if v, err := between.Cast("15"); err != nil || v != int64(15) {
		t.Fatalf("expected 15 to pass, got %v err=%v", v, err)
	}
}

func TestNewField_RejectsIllegalDeclarations(t *testing.T) {
	cases := []struct {
		name string
		typ  ts.Type
		opts []ts.FieldOpt
	}{
		{"", ts.TypeString, nil},
		{"x", ts.Type("decimal"), nil},
		{"x", ts.TypeInteger, []ts.FieldOpt{ts.WithFormat("%Y")}},
		{"x", ts.TypeDate, []ts.FieldOpt{ts.WithFormat("%Q")}},
		{"x", ts.TypeString, []ts.FieldOpt{ts.WithFormat(ts.FormatArray)}},
		{"x", ts.TypeString, []ts.FieldOpt{ts.WithConstraints(ts.Constraints{Pattern: "("})}},
		{"x", ts.TypeBoolean, []ts.FieldOpt{ts.WithConstraints(ts.Constraints{Minimum: 1})}},
		{"x", ts.TypeInteger, []ts.FieldOpt{ts.WithConstraints(ts.Constraints{Enum: []any{"one"}})}},
	}
	for _, c := range cases {
		_, err := ts.NewField(c.name, c.typ, c.opts...)
		if !errors.Is(err, ts.ErrValidation) {
			t.Fatalf("NewField(%q, %q): expected validation error, got %v", c.name, c.typ, err)
		}
	}
}

func TestField_DateTimePatterns(t *testing.T) {
	f := mustField(t, "d", ts.TypeDatetime, ts.WithFormat("%d %B %Y %I:%M %p"))
	v, err := f.Cast("05 January 2017 02:30 PM")
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if want := time.Date(2017, 1, 5, 14, 30, 0, 0, time.UTC); !v.(time.Time).Equal(want) {
		t.Fatalf("got %v want %v", v, want)
	}
	if _, err := f.Cast("2017-01-05"); err == nil {
		t.Fatalf("expected pattern mismatch")
	}
}

func TestField_PatternLiterals(t *testing.T) {
	for _, pattern := range []string{"Q1 %Y", "%Y1", "Mon %d/%m/%Y", "%d %b PM", "_%e"} {
		if _, err := ts.NewField("d", ts.TypeDate, ts.WithFormat(pattern)); !errors.Is(err, ts.ErrValidation) {
			t.Fatalf("expected literal in %q to be rejected, got %v", pattern, err)
		}
	}
	for _, pattern := range []string{"%d/%m/%Y", "Day %d of %m, %Y", "%Y-%m-%dT%H", "%Y %%"} {
		if _, err := ts.NewField("d", ts.TypeDate, ts.WithFormat(pattern)); err != nil {
			t.Fatalf("expected %q to be accepted: %v", pattern, err)
		}
	}

	f := mustField(t, "t", ts.TypeTime, ts.WithFormat("%H:%M:%S.%f"))
	v, err := f.Cast("10:20:30.250000")
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if want := (civil.Time{Hour: 10, Minute: 20, Second: 30, Nanosecond: 250000000}); v != want {
		t.Fatalf("got %v want %v", v, want)
	}
}

func TestField_Similar(t *testing.T) {
	a := mustField(t, "d", ts.TypeDate)
	b := mustField(t, "d", ts.TypeDate, ts.WithFormat("%Y/%m/%d"))
	if !a.Similar(b) {
		t.Fatalf("fields differing only in format should be similar")
	}
	c := mustField(t, "d", ts.TypeString)
	if a.Similar(c) {
		t.Fatalf("fields with different types should not be similar")
	}
	parsed, err := ts.ParseField([]byte(`{"name":"d"}`), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Similar(c) {
		t.Fatalf("absent type should be similar to string")
	}
}

func TestParseField_Document(t *testing.T) {
	f, err := ts.ParseField([]byte(`{"name":"amount","type":"number","decimalChar":",","bareNumber":"no","constraints":{"required":"yes","minimum":0}}`), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Name() != "amount" || f.Type != ts.TypeNumber || f.DecimalChar != "," {
		t.Fatalf("unexpected field: %+v", f)
	}
	if f.BareNumber == nil || *f.BareNumber || !f.Constraints.Required {
		t.Fatalf("expected lenient booleans to decode, got %+v", f)
	}
	if v, err := f.Cast("EUR 12,5"); err != nil || v != 12.5 {
		t.Fatalf("cast: %v err=%v", v, err)
	}
	if _, err := f.Cast("-1"); err == nil {
		t.Fatalf("expected minimum violation")
	}

	_, err = ts.ParseField([]byte(`{"name":"x","constraints":{"required":"never"}}`), nil)
	if !errors.Is(err, ts.ErrParse) {
		t.Fatalf("expected parse error for weird boolean, got %v", err)
	}
	_, err = ts.ParseField([]byte(`{"name":5}`), nil)
	if !errors.Is(err, ts.ErrParse) || !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected parse error for numeric name, got %v", err)
	}
}
