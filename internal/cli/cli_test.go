package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	j "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/cifdict/i18n"
)

const testDict = `data_test.dic
save_cell
_category.id cell
_category.mandatory_code yes
save_
save__cell.length_a
_item.name '_cell.length_a'
_item.category_id cell
_item.mandatory_code yes
_item_type.code float
save_
save__cell.setting
_item.name '_cell.setting'
_item.category_id cell
_item.mandatory_code no
loop_
_item_enumeration.value
primitive
conventional
save_
loop_
_item_type_list.code
_item_type_list.construct
float '-?[0-9]+(\.[0-9]*)?'
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "test.dic", testDict)
	good := writeFile(t, dir, "good.cif", "data_x\n_cell.length_a 10.5\n_cell.setting primitive\n")
	bad := writeFile(t, dir, "bad.cif", "data_y\n_cell.length_a ten\n_cell.setting odd\n")

	code, out, _ := run(t, "validate", "--dict", dict, good)
	assert.Equal(t, 0, code)
	assert.Equal(t, good+": ok\n", out)

	code, out, _ = run(t, "validate", "-d", dict, good, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, good+": ok")
	assert.Contains(t, out, "[type_mismatch]")
	assert.NotContains(t, out, "[invalid_enum]", "fail-fast by default")

	code, out, _ = run(t, "validate", "-d", dict, "--all", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "[type_mismatch]")
	assert.Contains(t, out, "[invalid_enum]")
}

func TestValidateCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "test.dic", testDict)
	bad := writeFile(t, dir, "bad.cif", "data_y\n_cell.setting primitive\n")

	code, out, _ := run(t, "validate", "-d", dict, "-o", "json", bad)
	assert.Equal(t, 1, code)
	var res []fileResult
	require.NoError(t, j.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	assert.False(t, res[0].OK)
	require.Len(t, res[0].Issues, 1)
	assert.Equal(t, "missing_keyword", res[0].Issues[0].Code)
	assert.Equal(t, "length_a", res[0].Issues[0].Keyword)
	assert.Equal(t, []string{"y"}, res[0].Blocks)
}

func TestValidateCommand_MMJSON(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "test.dic", testDict)
	doc := writeFile(t, dir, "x.json", `{"data_x": {"cell": {"length_a": [10.5], "setting": ["primitive"]}}}`)

	code, out, stderr := run(t, "validate", "-d", dict, "--format", "mmjson", doc)
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, doc+": ok\n", out)
}

func TestValidateCommand_ConfigAndLanguage(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "test.dic", testDict)
	cfg := writeFile(t, dir, "cifdict.yaml", "dictionary: "+dict+"\nlanguage: ja\n")
	bad := writeFile(t, dir, "bad.cif", "_cell.setting primitive\n")
	t.Cleanup(func() { i18n.SetLanguage("en") })

	code, out, _ := run(t, "validate", "--config", cfg, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "必須キーワード")
}

func TestValidateCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "test.dic", testDict)
	data := writeFile(t, dir, "d.cif", "_cell.length_a 1\n")
	broken := writeFile(t, dir, "broken.cif", "_cell.length_a 'open\n")

	code, _, stderr := run(t, "validate", data)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no dictionary given")

	code, _, stderr = run(t, "validate", "-d", dict, "--format", "xml", data)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown input format")

	code, _, stderr = run(t, "validate", "-d", dict, broken)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "line 1")

	code, _, stderr = run(t, "validate", "-d", dict, "--log-level", "loud", data)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "log.level")

	code, _, _ = run(t, "validate", "-d", dict)
	assert.Equal(t, 1, code)
}

func TestDictShow(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "test.dic", testDict)

	code, out, _ := run(t, "dict", "show", "-d", dict)
	require.Equal(t, 0, code)
	assert.Equal(t, strings.Join([]string{
		"_cell (mandatory: yes)",
		"  * length_a <float>",
		"    setting [conventional primitive]",
		"",
	}, "\n"), out)

	code, out, _ = run(t, "dict", "show", "-d", dict, "-o", "json")
	require.Equal(t, 0, code)
	var v dictView
	require.NoError(t, j.Unmarshal([]byte(out), &v))
	require.Len(t, v.Categories, 1)
	assert.Equal(t, `-?[0-9]+(\.[0-9]*)?`, v.Categories[0].Keywords[0].Pattern)

	code, out, _ = run(t, "dict", "show", "-d", dict, "-o", "yaml")
	require.Equal(t, 0, code)
	v = dictView{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &v))
	assert.Equal(t, "yes", v.Categories[0].Mandatory)
	assert.Equal(t, []string{"conventional", "primitive"}, v.Categories[0].Keywords[1].Enumeration)

	code, _, stderr := run(t, "dict", "show", "-d", dict, "-o", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown output format")
}

func TestDictSchema(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "test.dic", testDict)

	code, out, _ := run(t, "dict", "schema", "-d", dict)
	require.Equal(t, 0, code)
	var s map[string]any
	require.NoError(t, j.Unmarshal([]byte(out), &s))
	assert.Contains(t, s, "patternProperties")

	code, out, _ = run(t, "dict", "schema", "-d", dict, "-o", "yaml")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "patternProperties:")
}
