// Package infer derives a table schema from sample rows.
//
// Every column is tried against an ordered list of (type, format) candidates,
// most specific first. Each sampled cell votes for the candidates that cast
// it; the candidate with the most votes wins, earlier candidates winning
// ties. A column without a majority winner falls back to string.
package infer

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	ts "github.com/reoring/tableschema"
	"github.com/reoring/tableschema/codec"
)

// Options configures an Inferrer. Zero values select the defaults.
type Options struct {
	// RowLimit caps the number of rows sampled. Zero or less samples all rows.
	RowLimit int
	// MissingValues are cell values that abstain from the vote. They are
	// also written into the inferred schema. Defaults to [""].
	MissingValues []string
	// Codec renders the inferred document before it is parsed back.
	// Defaults to codec.JSON().
	Codec codec.Codec
	// Logger receives one debug entry per column. Defaults to a discarding logger.
	Logger logrus.FieldLogger
}

type candidate struct {
	typ    ts.Type
	format string
}

// candidates are ordered from most to least specific. String is last and is
// the fallback.
var candidates = []candidate{
	{ts.TypeInteger, ts.FormatDefault},
	{ts.TypeNumber, ts.FormatDefault},
	{ts.TypeDatetime, ts.FormatDefault},
	{ts.TypeDate, ts.FormatDefault},
	{ts.TypeTime, ts.FormatDefault},
	{ts.TypeYearMonth, ts.FormatDefault},
	{ts.TypeDuration, ts.FormatDefault},
	{ts.TypeBoolean, ts.FormatDefault},
	{ts.TypeGeopoint, ts.FormatDefault},
	{ts.TypeGeopoint, ts.FormatArray},
	{ts.TypeGeojson, ts.FormatDefault},
	{ts.TypeObject, ts.FormatDefault},
	{ts.TypeArray, ts.FormatDefault},
	{ts.TypeString, ts.FormatDefault},
}

// Inferrer derives schemas. It is safe for concurrent use.
type Inferrer struct {
	opt    Options
	log    logrus.FieldLogger
	casters []*ts.Field
}

// New returns an Inferrer.
func New(opts ...Options) *Inferrer {
	var o Options
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.MissingValues == nil {
		o.MissingValues = ts.DefaultMissingValues
	}
	if o.Codec == nil {
		o.Codec = codec.JSON()
	}
	log := o.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	in := &Inferrer{opt: o, log: log}
	for _, c := range candidates {
		f, err := ts.NewField("candidate", c.typ, ts.WithFormat(c.format))
		if err != nil {
			panic(fmt.Sprintf("infer: candidate %s/%s: %v", c.typ, c.format, err))
		}
		in.casters = append(in.casters, f)
	}
	return in
}

// Infer derives a schema with the given options.
func Infer(rows [][]any, headers []string, opts ...Options) (*ts.Schema, error) {
	return New(opts...).Infer(rows, headers)
}

// Column is the outcome of one column vote.
type Column struct {
	Name    string
	Type    ts.Type
	Format  string
	Hits    int // votes for the chosen candidate
	Sampled int // cells that took part in the vote
}

// Columns runs the vote for every header without building a schema.
func (in *Inferrer) Columns(rows [][]any, headers []string) []Column {
	if in.opt.RowLimit > 0 && len(rows) > in.opt.RowLimit {
		rows = rows[:in.opt.RowLimit]
	}
	out := make([]Column, len(headers))
	for j, h := range headers {
		out[j] = in.column(rows, j, h)
	}
	return out
}

func (in *Inferrer) column(rows [][]any, j int, header string) Column {
	hits := make([]int, len(candidates))
	sampled := 0
	for _, row := range rows {
		if j >= len(row) || row[j] == nil {
			continue
		}
		cell := cellText(row[j])
		if slices.Contains(in.opt.MissingValues, cell) {
			continue
		}
		sampled++
		for k, p := range in.casters {
			if _, err := p.CastValue(cell, nil); err == nil {
				hits[k]++
			}
		}
	}

	fallback := len(candidates) - 1
	best := fallback
	for k := 0; k < fallback; k++ {
		if best == fallback || hits[k] > hits[best] {
			best = k
		}
	}
	// a winner needs more than half of the sampled cells
	if hits[best]*2 <= sampled {
		best = fallback
	}
	col := Column{
		Name:    header,
		Type:    candidates[best].typ,
		Format:  candidates[best].format,
		Hits:    hits[best],
		Sampled: sampled,
	}
	in.log.WithFields(logrus.Fields{
		"column":  header,
		"type":    col.Type,
		"format":  col.Format,
		"hits":    col.Hits,
		"sampled": col.Sampled,
	}).Debug("inferred column type")
	return col
}

// Infer votes on every column, renders the schema document with the
// configured codec and parses it back in strict mode, so a returned schema
// is always valid. Any failure is an inference error.
func (in *Inferrer) Infer(rows [][]any, headers []string) (*ts.Schema, error) {
	if len(headers) == 0 {
		return nil, inferenceError("no column headers given", nil)
	}
	cols := in.Columns(rows, headers)

	fields := make([]map[string]any, len(cols))
	for i, c := range cols {
		fd := map[string]any{"name": c.Name, "type": string(c.Type)}
		if c.Format != ts.FormatDefault {
			fd["format"] = c.Format
		}
		fields[i] = fd
	}
	doc := map[string]any{"fields": fields}
	if !slices.Equal(in.opt.MissingValues, ts.DefaultMissingValues) {
		doc["missingValues"] = in.opt.MissingValues
	}
	data, err := in.opt.Codec.Marshal(doc)
	if err != nil {
		return nil, inferenceError("render inferred schema", err)
	}
	s, err := ts.ParseSchema(data, ts.SchemaOpt{Mode: ts.Strict, Codec: in.opt.Codec})
	if err != nil {
		return nil, inferenceError("inferred schema is invalid", err)
	}
	in.log.WithField("columns", len(cols)).Info("schema inferred")
	return s, nil
}

func inferenceError(msg string, cause error) ts.Issues {
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	return ts.Issues{{Kind: ts.KindInference, Code: ts.CodeInferenceFailed, Message: msg, Cause: cause}}
}

// cellText renders a sample cell as the text a row reader would produce.
func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case map[string]any, []any:
		b, err := gojson.Marshal(x)
		if err == nil {
			return string(b)
		}
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
