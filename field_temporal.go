package tableschema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// YearMonth is the typed value of a yearmonth field.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

var (
	dateAnyLayouts = []string{
		"2006-01-02", "2006/01/02", "20060102", "01/02/2006",
		"2 Jan 2006", "02 Jan 2006", "Jan 2, 2006", "January 2, 2006", "2 January 2006",
	}
	timeAnyLayouts = []string{
		"15:04:05.999999999", "15:04:05", "15:04", "150405", "3:04PM", "3:04 PM", "3:04:05 PM",
	}
	datetimeAnyLayouts = []string{
		time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"2006-01-02 15:04:05Z07:00", time.RFC1123Z, time.RFC1123, time.RFC850,
		time.RFC822Z, time.RFC822, time.ANSIC, time.UnixDate,
	}
)

// temporalLayout resolves a pattern format to a Go layout.
func (f *Field) temporalLayout() (string, bool, error) {
	if f.Format == FormatDefault || f.Format == FormatAny || f.Format == "" {
		return "", false, nil
	}
	layout, err := strftimeLayout(f.Format)
	if err != nil {
		return "", false, &formatError{format: f.Format, err: err}
	}
	return layout, true, nil
}

func parseWithLayouts(raw string, layouts []string) (time.Time, error) {
	for _, l := range layouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q matches none of the known layouts", raw)
}

func parseDate(f *Field, raw string) (any, error) {
	layout, pattern, err := f.temporalLayout()
	if err != nil {
		return nil, err
	}
	switch {
	case pattern:
		t, err := time.Parse(layout, raw)
		if err != nil {
			return nil, &formatError{format: f.Format, err: err}
		}
		return civil.DateOf(t), nil
	case f.Format == FormatAny:
		t, err := parseWithLayouts(raw, dateAnyLayouts)
		if err != nil {
			return nil, err
		}
		return civil.DateOf(t), nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func formatDate(f *Field, v any) (string, error) {
	d, ok := v.(civil.Date)
	if !ok {
		return "", fmt.Errorf("expected civil.Date, got %T", v)
	}
	layout, pattern, err := f.temporalLayout()
	if err != nil {
		return "", err
	}
	if pattern {
		return d.In(time.UTC).Format(layout), nil
	}
	return d.String(), nil
}

func parseTime(f *Field, raw string) (any, error) {
	layout, pattern, err := f.temporalLayout()
	if err != nil {
		return nil, err
	}
	switch {
	case pattern:
		t, err := time.Parse(layout, raw)
		if err != nil {
			return nil, &formatError{format: f.Format, err: err}
		}
		return civil.TimeOf(t), nil
	case f.Format == FormatAny:
		t, err := parseWithLayouts(raw, timeAnyLayouts)
		if err != nil {
			return nil, err
		}
		return civil.TimeOf(t), nil
	}
	t, err := civil.ParseTime(raw)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func formatTime(f *Field, v any) (string, error) {
	ct, ok := v.(civil.Time)
	if !ok {
		return "", fmt.Errorf("expected civil.Time, got %T", v)
	}
	layout, pattern, err := f.temporalLayout()
	if err != nil {
		return "", err
	}
	if pattern {
		return time.Date(0, 1, 1, ct.Hour, ct.Minute, ct.Second, ct.Nanosecond, time.UTC).Format(layout), nil
	}
	return ct.String(), nil
}

func parseDatetime(f *Field, raw string) (any, error) {
	layout, pattern, err := f.temporalLayout()
	if err != nil {
		return nil, err
	}
	switch {
	case pattern:
		t, err := time.Parse(layout, raw)
		if err != nil {
			return nil, &formatError{format: f.Format, err: err}
		}
		return t, nil
	case f.Format == FormatAny:
		return parseWithLayouts(raw, datetimeAnyLayouts)
	}
	return parseRFC3339(raw)
}

func formatDatetime(f *Field, v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", fmt.Errorf("expected time.Time, got %T", v)
	}
	layout, pattern, err := f.temporalLayout()
	if err != nil {
		return "", err
	}
	if pattern {
		return t.Format(layout), nil
	}
	return t.Format(time.RFC3339Nano), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// RFC3339Nano accepts an optional fraction
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

var (
	yearRe      = regexp.MustCompile(`^\d{4}$`)
	yearMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

func parseYear(_ *Field, raw string) (any, error) {
	if !yearRe.MatchString(raw) {
		return nil, fmt.Errorf("%q is not a four digit year", raw)
	}
	y, _ := strconv.Atoi(raw)
	return y, nil
}

func formatYear(_ *Field, v any) (string, error) {
	y, ok := v.(int)
	if !ok || y < 0 || y > 9999 {
		return "", fmt.Errorf("expected year in [0,9999], got %v", v)
	}
	return fmt.Sprintf("%04d", y), nil
}

func parseYearMonth(_ *Field, raw string) (any, error) {
	m := yearMonthRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%q is not a YYYY-MM value", raw)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	if mo < 1 || mo > 12 {
		return nil, fmt.Errorf("month %d out of range", mo)
	}
	return YearMonth{Year: y, Month: time.Month(mo)}, nil
}

func formatYearMonth(_ *Field, v any) (string, error) {
	ym, ok := v.(YearMonth)
	if !ok {
		return "", fmt.Errorf("expected YearMonth, got %T", v)
	}
	return ym.String(), nil
}

var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'j': "002",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "000000",
	'p': "PM",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

var errEmptyPattern = errors.New("empty date pattern")

// layoutCheckTime renders differently from every Go reference token, so a
// literal that formats to itself contains none.
var layoutCheckTime = time.Date(2001, time.November, 23, 9, 44, 55, 500000000, time.FixedZone("XYZ", 5*3600+30*60))

// strftimeLayout converts a strftime-style pattern ("%Y-%m-%d") into a Go
// reference layout. Literal text that Go would read as a layout token, such
// as the "1" in "Q1 %Y" or "Mon" in "Mon %d", is rejected.
func strftimeLayout(pattern string) (string, error) {
	if pattern == "" {
		return "", errEmptyPattern
	}
	// segments alternate freely between directives and literal runs
	type segment struct {
		text    string
		literal bool
	}
	var segs []segment
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' {
			if n := len(segs); n > 0 && segs[n-1].literal {
				segs[n-1].text += string(c)
			} else {
				segs = append(segs, segment{text: string(c), literal: true})
			}
			continue
		}
		if i+1 >= len(pattern) {
			return "", fmt.Errorf("dangling %% in pattern %q", pattern)
		}
		i++
		l, ok := strftimeDirectives[pattern[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in pattern %q", pattern[i], pattern)
		}
		if l == "%" {
			segs = append(segs, segment{text: l, literal: true})
			continue
		}
		if n := len(segs); pattern[i] == 'f' && n > 0 && segs[n-1].literal {
			// Go only reads fractional seconds together with their separator
			if t := segs[n-1].text; strings.HasSuffix(t, ".") || strings.HasSuffix(t, ",") {
				l = t[len(t)-1:] + l
				if segs[n-1].text = t[:len(t)-1]; segs[n-1].text == "" {
					segs = segs[:n-1]
				}
			}
		}
		segs = append(segs, segment{text: l})
	}

	var b strings.Builder
	for i, sg := range segs {
		if sg.literal {
			var prev, next string
			if i > 0 && !segs[i-1].literal {
				prev = segs[i-1].text
			}
			if i+1 < len(segs) && !segs[i+1].literal {
				next = segs[i+1].text
			}
			want := layoutCheckTime.Format(prev) + sg.text + layoutCheckTime.Format(next)
			if layoutCheckTime.Format(prev+sg.text+next) != want {
				return "", fmt.Errorf("literal %q in pattern %q reads as a layout token", sg.text, pattern)
			}
		}
		b.WriteString(sg.text)
	}
	return b.String(), nil
}
