package tableschema

import (
	"fmt"
	"strings"
	"time"
)

const msgRowLength = "Row length is not equal to the number of defined fields."

// CastRow casts each cell through the field at the same position. The row
// must have exactly one cell per field. Casting is all or nothing: the first
// failing cell aborts with a cast error whose path is the cell index.
// Row casting does not depend on the schema mode.
func (s *Schema) CastRow(row []string) ([]any, error) {
	if len(row) != len(s.fields) {
		return nil, Issues{{
			Kind:    KindCast,
			Code:    CodeRowLength,
			Message: msgRowLength,
			Params:  map[string]any{"want": len(s.fields), "got": len(row)},
		}}
	}
	out := make([]any, len(row))
	for i, f := range s.fields {
		v, err := f.CastValue(row[i], s.missingValues)
		if err != nil {
			return nil, wrapCellError(fmt.Sprintf("/%d", i), f, err)
		}
		out[i] = v
	}
	return out, nil
}

func wrapCellError(path string, f *Field, err error) Issues {
	it := Issue{Kind: KindCast, Code: CodeInvalidType, Path: path, Cause: err}
	msg := err.Error()
	if iss, ok := AsIssues(err); ok && len(iss) > 0 {
		it.Code, it.Params, msg = iss[0].Code, iss[0].Params, iss[0].Message
	}
	it.Message = fmt.Sprintf("cannot cast field %q: %s", f.name, msg)
	return Issues{it}
}

// CastRowKeyed is CastRow with the result keyed by field name.
func (s *Schema) CastRowKeyed(row []string) (map[string]any, error) {
	vals, err := s.CastRow(row)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(vals))
	for i, f := range s.fields {
		out[f.name] = vals[i]
	}
	return out, nil
}

// CastRows casts a whole table and enforces the unique constraints and the
// primary key across rows. Paths are "/<row>/<cell>".
func (s *Schema) CastRows(rows [][]string) ([][]any, error) {
	type tracker struct {
		cols []int
		name string
		seen map[string]int
	}
	var trackers []*tracker
	for i, f := range s.fields {
		if f.Constraints.Unique {
			trackers = append(trackers, &tracker{cols: []int{i}, name: fmt.Sprintf("unique field %q", f.name), seen: map[string]int{}})
		}
	}
	if len(s.primaryKey) > 0 {
		pk := &tracker{name: fmt.Sprintf("primary key %v", s.primaryKey), seen: map[string]int{}}
		for _, name := range s.primaryKey {
			if i := s.fieldIndex(name); i >= 0 {
				pk.cols = append(pk.cols, i)
			}
		}
		if len(pk.cols) > 0 {
			trackers = append(trackers, pk)
		}
	}

	out := make([][]any, 0, len(rows))
	for r, row := range rows {
		vals, err := s.CastRow(row)
		if err != nil {
			iss, _ := AsIssues(err)
			iss = append(Issues(nil), iss...)
			for k := range iss {
				iss[k].Path = fmt.Sprintf("/%d%s", r, iss[k].Path)
			}
			return nil, iss
		}
		for _, t := range trackers {
			key, ok := s.uniqueKey(t.cols, vals)
			if !ok {
				continue
			}
			if first, dup := t.seen[key]; dup {
				return nil, Issues{newIssue(KindCast, CodeUniqueness, fmt.Sprintf("/%d/%d", r, t.cols[0]),
					fmt.Sprintf("duplicate value for %s: row %d repeats row %d", t.name, r, first),
					map[string]any{"row": r, "first": first})}
			}
			t.seen[key] = r
		}
		out = append(out, vals)
	}
	return out, nil
}

// uniqueKey renders the canonical text of the given cells, datetimes in UTC.
// Rows where every tracked cell is missing are not tracked.
func (s *Schema) uniqueKey(cols []int, vals []any) (string, bool) {
	parts := make([]string, len(cols))
	present := false
	for k, c := range cols {
		if vals[c] == nil {
			continue
		}
		present = true
		v := vals[c]
		if t, ok := v.(time.Time); ok {
			// the same instant written with different offsets collides
			v = t.UTC()
		}
		txt, err := s.fields[c].FormatValue(v)
		if err != nil {
			txt = fmt.Sprint(v)
		}
		parts[k] = txt
	}
	return strings.Join(parts, "\x1f"), present
}
