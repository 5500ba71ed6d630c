// Package csvsource reads delimited text or JSON rows into header and row
// slices.
package csvsource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Options controls how a table is read.
type Options struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
	// NoHeader treats the first record as data. Headers are then
	// generated as field1, field2, ...
	NoHeader bool
	// Limit stops after this many data rows. Zero or less reads everything.
	Limit int
}

// Table is a header row plus the data rows below it.
type Table struct {
	Headers []string
	Rows    [][]string
}

var ErrEmpty = errors.New("csvsource: no records")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Read consumes r until EOF or the row limit.
func Read(r io.Reader, opt Options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("csvsource: read: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, bom)))
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	// ragged rows are reported by the row caster, not here
	cr.FieldsPerRecord = -1

	t := &Table{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvsource: %w", err)
		}
		if t.Headers == nil {
			if opt.NoHeader {
				t.Headers = generatedHeaders(len(rec))
			} else {
				t.Headers = rec
				continue
			}
		}
		if opt.Limit > 0 && len(t.Rows) >= opt.Limit {
			break
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Headers == nil {
		return nil, ErrEmpty
	}
	return t, nil
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, opt)
}

// Values returns the rows as inference samples.
func (t *Table) Values() [][]any {
	out := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		vals := make([]any, len(row))
		for j, c := range row {
			vals[j] = c
		}
		out[i] = vals
	}
	return out
}

func generatedHeaders(n int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = fmt.Sprintf("field%d", i+1)
	}
	return h
}
