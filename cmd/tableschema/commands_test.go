package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ts "github.com/reoring/tableschema"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestInferCommand(t *testing.T) {
	data := writeFile(t, "cities.csv", "city,year,population\nlondon,2017,8780000\nparis,2017,2240000\nrome,2017,2860000\n")

	out, _, err := run(t, "infer", data)
	require.NoError(t, err)
	s, err := ts.ParseSchema([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "year", "population"}, s.FieldNames())
	assert.Equal(t, ts.TypeInteger, s.GetField("year").Type)

	out, _, err = run(t, "infer", "--yaml", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fields:"), out)
}

func TestValidateCommand(t *testing.T) {
	good := writeFile(t, "good.json", `{"fields":[{"name":"id","type":"integer","constraints":{"required":true}}],"primaryKey":"id"}`)
	out, _, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, _, err = run(t, "validate", "--jsonschema", good)
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema": "http://json-schema.org/draft-07/schema#"`)
	assert.Contains(t, out, `"required": [`)

	bad := writeFile(t, "bad.yaml", "fields:\n  - name: id\nprimaryKey: [nope, other]\n")
	out, _, err = run(t, "validate", "--lenient", bad)
	require.Error(t, err)
	assert.Contains(t, out, "No such field as: nope.")
	assert.Contains(t, out, "No such field as: other.")

	_, _, err = run(t, "validate", bad)
	assert.ErrorIs(t, err, ts.ErrPrimaryKey)
}

func TestCastCommand(t *testing.T) {
	schema := writeFile(t, "schema.json", `{"fields":[{"name":"id","type":"integer","constraints":{"unique":true}},{"name":"name"},{"name":"born","type":"date"}]}`)
	data := writeFile(t, "data.csv", "id,name,born\n1,ada,1815-12-10\n2,,\n")

	out, _, err := run(t, "cast", schema, data)
	require.NoError(t, err)
	assert.Equal(t, `{"born":"1815-12-10","id":1,"name":"ada"}`+"\n"+`{"born":null,"id":2,"name":null}`+"\n", out)

	dup := writeFile(t, "dup.csv", "id,name,born\n1,a,\n1,b,\n")
	_, _, err = run(t, "cast", schema, dup)
	assert.ErrorIs(t, err, ts.ErrCast)
}

func TestValidateCommand_DuplicateKeys(t *testing.T) {
	doc := writeFile(t, "dup.json", `{"fields":[{"name":"id","name":"other"}]}`)
	_, _, err := run(t, "validate", doc)
	assert.ErrorIs(t, err, ts.ErrParse)
	assert.Contains(t, err.Error(), "/fields/0/name")
}

func TestInferCommand_JSONRows(t *testing.T) {
	data := writeFile(t, "cities.json", `[["city","year","founded"],["london",2017,"1966-07-30"],["paris",2017,"1998-07-12"]]`)
	out, _, err := run(t, "infer", data)
	require.NoError(t, err)
	s, err := ts.ParseSchema([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "year", "founded"}, s.FieldNames())
	assert.Equal(t, ts.TypeInteger, s.GetField("year").Type)
	assert.Equal(t, ts.TypeDate, s.GetField("founded").Type)
}

func TestCastCommand_JSONRows(t *testing.T) {
	schema := writeFile(t, "schema.json", `{"fields":[{"name":"id","type":"integer"},{"name":"name"},{"name":"born","type":"date"}]}`)
	data := writeFile(t, "data.json", `[{"id":1,"name":"ada","born":"1815-12-10"},{"id":2,"name":null}]`)

	out, _, err := run(t, "cast", schema, data)
	require.NoError(t, err)
	assert.Equal(t, `{"born":"1815-12-10","id":1,"name":"ada"}`+"\n"+`{"born":null,"id":2,"name":null}`+"\n", out)

	bad := writeFile(t, "bad.json", `{"id":1}`)
	_, _, err = run(t, "cast", schema, bad)
	assert.Error(t, err)
}
