package tableschema

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is the typed value of a duration field. Calendar components are
// kept apart from the clock part because their length depends on the anchor
// date. Weeks are folded into Days.
type Duration struct {
	Years  int
	Months int
	Days   int
	Clock  time.Duration
}

var durationRe = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

var errDurationRange = errors.New("duration component out of range")

// ParseDuration parses an ISO 8601 duration such as "P1Y2M10DT2H30M".
// Components that do not fit an int, or a clock part longer than
// time.Duration can hold, are rejected.
func ParseDuration(s string) (Duration, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return Duration{}, fmt.Errorf("%q is not an ISO 8601 duration", s)
	}
	var n [7]int64
	for i := 1; i <= 6; i++ {
		if m[i] == "" {
			continue
		}
		v, err := strconv.ParseInt(m[i], 10, 64)
		if err != nil || v > math.MaxInt {
			return Duration{}, fmt.Errorf("%q: %w", s, errDurationRange)
		}
		n[i] = v
	}
	years, months, weeks, days, hours, mins := n[1], n[2], n[3], n[4], n[5], n[6]
	if weeks > (math.MaxInt-days)/7 {
		return Duration{}, fmt.Errorf("%q: %w", s, errDurationRange)
	}
	d := Duration{Years: int(years), Months: int(months), Days: int(weeks*7 + days)}

	if hours > int64(math.MaxInt64/time.Hour) || mins > int64(math.MaxInt64/time.Minute) {
		return Duration{}, fmt.Errorf("%q: %w", s, errDurationRange)
	}
	parts := []time.Duration{time.Duration(hours) * time.Hour, time.Duration(mins) * time.Minute}
	if m[7] != "" {
		sec, err := strconv.ParseFloat(m[7], 64)
		if err != nil {
			return Duration{}, err
		}
		ns := math.Round(sec * float64(time.Second))
		if ns >= math.MaxInt64 {
			return Duration{}, fmt.Errorf("%q: %w", s, errDurationRange)
		}
		parts = append(parts, time.Duration(ns))
	}
	for _, p := range parts {
		if d.Clock > math.MaxInt64-p {
			return Duration{}, fmt.Errorf("%q: %w", s, errDurationRange)
		}
		d.Clock += p
	}
	return d, nil
}

// String renders the canonical ISO 8601 form. The zero duration is "PT0S".
func (d Duration) String() string {
	var b strings.Builder
	b.WriteByte('P')
	if d.Years != 0 {
		fmt.Fprintf(&b, "%dY", d.Years)
	}
	if d.Months != 0 {
		fmt.Fprintf(&b, "%dM", d.Months)
	}
	if d.Days != 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}
	if d.Clock == 0 {
		if b.Len() == 1 {
			return "PT0S"
		}
		return b.String()
	}
	b.WriteByte('T')
	rem := d.Clock
	if h := rem / time.Hour; h != 0 {
		fmt.Fprintf(&b, "%dH", h)
		rem -= h * time.Hour
	}
	if m := rem / time.Minute; m != 0 {
		fmt.Fprintf(&b, "%dM", m)
		rem -= m * time.Minute
	}
	if rem != 0 {
		b.WriteString(strconv.FormatFloat(rem.Seconds(), 'f', -1, 64))
		b.WriteByte('S')
	}
	return b.String()
}

func parseDuration(_ *Field, raw string) (any, error) {
	return ParseDuration(raw)
}

func formatDuration(_ *Field, v any) (string, error) {
	d, ok := v.(Duration)
	if !ok {
		return "", fmt.Errorf("expected Duration, got %T", v)
	}
	if d.Years < 0 || d.Months < 0 || d.Days < 0 || d.Clock < 0 {
		return "", fmt.Errorf("negative duration %+v", d)
	}
	return d.String(), nil
}
