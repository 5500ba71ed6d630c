package csvsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/valyala/fastjson"
)

// ErrShape reports a JSON document that is not an array of rows.
var ErrShape = errors.New("csvsource: JSON rows must be an array of arrays or an array of objects")

// ReadJSON reads a JSON array of rows. Rows are either arrays, the first of
// which is the header unless opt.NoHeader is set, or objects keyed by
// header. Object headers follow first appearance across all rows and absent
// keys read as empty cells. Scalars are rendered as their text, null as the
// empty string and nested values as compact JSON. Comma is ignored.
func ReadJSON(r io.Reader, opt Options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("csvsource: read: %w", err)
	}
	var p fastjson.Parser
	doc, err := p.ParseBytes(bytes.TrimPrefix(data, bom))
	if err != nil {
		return nil, fmt.Errorf("csvsource: %w", err)
	}
	items, err := doc.Array()
	if err != nil {
		return nil, ErrShape
	}
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	if items[0].Type() == fastjson.TypeObject {
		return objectRows(items, opt)
	}
	return arrayRows(items, opt)
}

func arrayRows(items []*fastjson.Value, opt Options) (*Table, error) {
	t := &Table{}
	for i, it := range items {
		cells, err := it.Array()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d is a JSON %s", ErrShape, i, it.Type())
		}
		rec := make([]string, len(cells))
		for j, c := range cells {
			rec[j] = cellText(c)
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
	return t, nil
}

func objectRows(items []*fastjson.Value, opt Options) (*Table, error) {
	if opt.Limit > 0 && len(items) > opt.Limit {
		items = items[:opt.Limit]
	}
	objs := make([]*fastjson.Object, len(items))
	index := map[string]int{}
	t := &Table{Headers: []string{}}
	for i, it := range items {
		o, err := it.Object()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d is a JSON %s", ErrShape, i, it.Type())
		}
		objs[i] = o
		o.Visit(func(key []byte, _ *fastjson.Value) {
			if _, ok := index[string(key)]; !ok {
				index[string(key)] = len(t.Headers)
				t.Headers = append(t.Headers, string(key))
			}
		})
	}
	for _, o := range objs {
		rec := make([]string, len(t.Headers))
		o.Visit(func(key []byte, v *fastjson.Value) {
			rec[index[string(key)]] = cellText(v)
		})
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func cellText(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNull:
		return ""
	case fastjson.TypeTrue:
		return "true"
	case fastjson.TypeFalse:
		return "false"
	}
	return string(v.MarshalTo(nil))
}

// ReadJSONFile opens path and reads it with ReadJSON.
func ReadJSONFile(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f, opt)
}

// ReadPath picks the reader by extension: ".json" files are JSON rows and
// anything else is delimited text.
func ReadPath(path string, opt Options) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadJSONFile(path, opt)
	}
	return ReadFile(path, opt)
}
