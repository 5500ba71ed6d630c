// Package tableschema describes tabular data with a declarative schema and
// casts raw text rows into typed values.
//
// It provides:
//
// - A field type system (integer, number, date, duration, geopoint, object, ...) with cast/format round trips
// - A schema engine checking meta-schema conformance and primary/foreign key consistency
// - Strict and lenient validation modes over one Issues error model (JSON Pointer, code, message)
// - Row casting with per-cell errors and cross-row uniqueness checks
//
// Layout:
// - Keep the public core in the root package.
// - Document codecs live under codec/, the meta-schema check under metaschema/,
//   type inference under infer/ and the CLI under cmd/tableschema.
//
// Typical usage:
//
//	s, err := tableschema.ParseSchema(doc)
//	row, err := s.CastRow([]string{"1", "foo"})
//
//	lenient, _ := tableschema.ParseSchema(doc, tableschema.SchemaOpt{Mode: tableschema.Lenient})
//	if !lenient.IsValid() {
//		for _, it := range lenient.Errors() { ... }
//	}
package tableschema
