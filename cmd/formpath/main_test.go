package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEncodeCmd(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, encodeCmd([]string{"-ns", "signup", "todos", "2", "task"}, &out))
	assert.Equal(t, "name\tsignup.todos[2].task\nid\tsignup:todos[2].task\n", out.String())

	out.Reset()
	require.NoError(t, encodeCmd([]string{"-ns", "signup", "-format", "json", "grid", "1", "0"}, &out))
	var info pathInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "signup.grid[1][0]", info.Name)
	assert.Equal(t, "/grid/1/0", info.Pointer)

	assert.Error(t, encodeCmd([]string{"-ns", "signup", "a.b"}, &out))
	assert.ErrorIs(t, encodeCmd([]string{"todos"}, &out), errUsage)
}

func TestParseCmd(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, parseCmd([]string{"-ns", "f", "-format", "yaml", "f.todos[2].task", "f:[0].a"}, &out))
	var infos []pathInfo
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "todos[2].task", infos[0].Display)
	assert.Equal(t, "f[0].a", infos[1].Name)
	assert.Equal(t, "f:[0].a", infos[1].ID)

	assert.Error(t, parseCmd([]string{"-ns", "f", "g.todos"}, &out))
}

func TestDecodeCmd(t *testing.T) {
	var out bytes.Buffer
	body := "f.todos%5B1%5D.task=milk&f.tags=a&f.tags=b&other.x=1\n"
	require.NoError(t, decodeCmd([]string{"-ns", "f"}, strings.NewReader(body), &out))

	var tree map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &tree))
	assert.Equal(t, map[string]any{
		"todos": []any{nil, map[string]any{"task": "milk"}},
		"tags":  []any{"a", "b"},
	}, tree)

	assert.Error(t, decodeCmd([]string{"-ns", "f", "-strict", "-max-index", "5", "f.a%5B9%5D=x"}, nil, &out))
	assert.Error(t, decodeCmd([]string{"-ns", "f", "-strict", "f.a%5B=x"}, nil, &out))
}

const sample = `package shop

type Order struct {
	Email string   ` + "`form:\"email\"`" + `
	Notes string   ` + "`json:\"notes,omitempty\"`" + `
	Items []Item   ` + "`form:\"items\"`" + `
	Ship  *Address
	skip  string
	Debug string   ` + "`form:\"-\"`" + `
}

type Item struct {
	SKU string ` + "`form:\"sku\"`" + `
	Qty int    ` + "`form:\"qty\"`" + `
}

type Address struct {
	City string
}
`

func TestGenCmd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.go"), []byte(sample), 0o644))
	outFile := filepath.Join(dir, "gen", "order_fields.go")

	var logs bytes.Buffer
	log := zerolog.New(&logs)
	require.NoError(t, genCmd([]string{"-type", "Order", "-dir", dir, "-o", outFile}, nil, log))

	src, err := os.ReadFile(outFile)
	require.NoError(t, err)
	code := string(src)
	assert.Contains(t, code, "package shop")
	assert.Contains(t, code, "func (x OrderFields) Email() formpath.FieldChain")
	assert.Contains(t, code, "func (x OrderFields) Items(i0 int) ItemFields")
	assert.Contains(t, code, "func (x OrderFields) Ship() AddressFields")
	assert.Contains(t, code, `return x.c.Field("notes")`)
	assert.Contains(t, code, `return x.c.Field("City")`)
	assert.NotContains(t, code, "Debug()")
	assert.NotContains(t, code, "skip")
	assert.Contains(t, logs.String(), `"message":"wrote accessors"`)

	var stdout bytes.Buffer
	require.NoError(t, genCmd([]string{"-type", "Item", "-dir", dir, "-pkg", "forms"}, &stdout, log))
	assert.Contains(t, stdout.String(), "package forms")

	assert.Error(t, genCmd([]string{"-type", "Missing", "-dir", dir}, &stdout, log))
	assert.ErrorIs(t, genCmd(nil, &stdout, log), errUsage)
}

func TestStructIndex_Required(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.go"), []byte(sample), 0o644))
	idx, err := loadStructs(dir)
	require.NoError(t, err)
	file, err := idx.file("", []string{"Order"})
	require.NoError(t, err)
	obj := file.Types[0].Shape
	assert.Equal(t, "Order", obj.Name)
	assert.Contains(t, obj.Required, "email")
	assert.NotContains(t, obj.Required, "notes")
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitCSV(" A, ,B,"))
}
