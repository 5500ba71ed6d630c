package tableschema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

// parseJSONCell parses a cell holding a JSON document. Cells exported by
// spreadsheets sometimes carry typographic quotes; those are normalized first.
func parseJSONCell(raw string) (*fastjson.Value, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "{“") || strings.HasPrefix(s, "[“") {
		s = strings.NewReplacer("“", `"`, "”", `"`).Replace(s)
	}
	return fastjson.Parse(s)
}

// fromFastJSON converts a parsed value into plain Go containers. Numbers are
// kept as json.Number so that no precision is lost.
func fromFastJSON(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		m := make(map[string]any, o.Len())
		o.Visit(func(k []byte, vv *fastjson.Value) {
			m[string(k)] = fromFastJSON(vv)
		})
		return m
	case fastjson.TypeArray:
		arr, _ := v.Array()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = fromFastJSON(e)
		}
		return out
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return string(b)
	case fastjson.TypeNumber:
		return json.Number(v.String())
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	}
	return nil
}

func parseObject(_ *Field, raw string) (any, error) {
	v, err := parseJSONCell(raw)
	if err != nil {
		return nil, err
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("expected JSON object, got %s", v.Type())
	}
	return fromFastJSON(v), nil
}

func parseArray(_ *Field, raw string) (any, error) {
	v, err := parseJSONCell(raw)
	if err != nil {
		return nil, err
	}
	if v.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("expected JSON array, got %s", v.Type())
	}
	return fromFastJSON(v), nil
}

var geojsonTypes = []string{
	"Point", "MultiPoint", "LineString", "MultiLineString", "Polygon",
	"MultiPolygon", "GeometryCollection", "Feature", "FeatureCollection",
}

func parseGeojson(f *Field, raw string) (any, error) {
	v, err := parseJSONCell(raw)
	if err != nil {
		return nil, err
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("expected JSON object, got %s", v.Type())
	}
	typ := string(v.GetStringBytes("type"))
	if f.Format == FormatTopoJSON {
		if typ != "Topology" {
			return nil, &formatError{format: f.Format, err: fmt.Errorf("topojson type must be Topology, got %q", typ)}
		}
	} else if !slices.Contains(geojsonTypes, typ) {
		return nil, fmt.Errorf("unknown geojson type %q", typ)
	}
	return fromFastJSON(v), nil
}

func formatStructured(f *Field, v any) (string, error) {
	switch v.(type) {
	case map[string]any:
		if f.Type == TypeArray {
			return "", fmt.Errorf("expected array value, got %T", v)
		}
	case []any:
		if f.Type != TypeArray {
			return "", fmt.Errorf("expected object value, got %T", v)
		}
	default:
		return "", fmt.Errorf("unsupported %s value %T", f.Type, v)
	}
	b, err := gojson.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Point is the typed value of a geopoint field.
type Point struct {
	Lon float64
	Lat float64
}

func (p Point) valid() error {
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", p.Lon)
	}
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", p.Lat)
	}
	return nil
}

func parseGeopoint(f *Field, raw string) (any, error) {
	var p Point
	switch f.Format {
	case FormatArray:
		v, err := parseJSONCell(raw)
		if err != nil {
			return nil, err
		}
		arr, err := v.Array()
		if err != nil || len(arr) != 2 {
			return nil, &formatError{format: f.Format, err: fmt.Errorf("expected [lon, lat], got %s", raw)}
		}
		if p.Lon, err = arr[0].Float64(); err != nil {
			return nil, err
		}
		if p.Lat, err = arr[1].Float64(); err != nil {
			return nil, err
		}
	case FormatObject:
		v, err := parseJSONCell(raw)
		if err != nil {
			return nil, err
		}
		if v.Type() != fastjson.TypeObject || !v.Exists("lon") || !v.Exists("lat") {
			return nil, &formatError{format: f.Format, err: fmt.Errorf(`expected {"lon": .., "lat": ..}, got %s`, raw)}
		}
		if p.Lon, err = v.Get("lon").Float64(); err != nil {
			return nil, err
		}
		if p.Lat, err = v.Get("lat").Float64(); err != nil {
			return nil, err
		}
	default:
		lon, lat, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, fmt.Errorf(`expected "lon,lat", got %q`, raw)
		}
		var err error
		if p.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64); err != nil {
			return nil, err
		}
		if p.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
			return nil, err
		}
	}
	if err := p.valid(); err != nil {
		return nil, err
	}
	return p, nil
}

func formatGeopoint(f *Field, v any) (string, error) {
	p, ok := v.(Point)
	if !ok {
		return "", fmt.Errorf("expected Point, got %T", v)
	}
	lon := strconv.FormatFloat(p.Lon, 'f', -1, 64)
	lat := strconv.FormatFloat(p.Lat, 'f', -1, 64)
	switch f.Format {
	case FormatArray:
		return "[" + lon + "," + lat + "]", nil
	case FormatObject:
		return `{"lon":` + lon + `,"lat":` + lat + `}`, nil
	}
	return lon + "," + lat, nil
}
