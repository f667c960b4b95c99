package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_KeepsOrderAndLiterals(t *testing.T) {
	n, err := ParseJSON([]byte(`{"b": 1.50, "a": [true, null, "x"], "c": {"z": 1e3}}`))
	require.NoError(t, err)

	assert.Equal(t, KindObject, n.Kind())
	assert.Equal(t, []string{"b", "a", "c"}, n.Keys())

	b, ok := n.Get("b")
	require.True(t, ok)
	lit, ok := b.NumberLiteral()
	require.True(t, ok)
	assert.Equal(t, "1.50", lit)

	a, _ := n.Get("a")
	require.Equal(t, 3, a.Len())
	first, _ := a.Index(0)
	v, ok := first.AsBool()
	assert.True(t, ok)
	assert.True(t, v)
	second, _ := a.Index(1)
	assert.True(t, second.IsNull())

	assert.Equal(t, `{"b":1.50,"a":[true,null,"x"],"c":{"z":1e3}}`, n.String())
}

func TestParseJSON_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"trailing": `{"a":1} {"b":2}`,
		"broken":   `{"a":`,
		"badkey":   `{1:2}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(in))
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, FormatJSON, pe.Format)
		})
	}
}

func TestParseJSON_DuplicateKeyKeepsLastValue(t *testing.T) {
	n, err := ParseJSON([]byte(`{"a":1,"b":2,"a":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, n.Keys())
	a, _ := n.Get("a")
	assert.Equal(t, "3", a.String())
}

func TestParseXML_Mapping(t *testing.T) {
	doc := `<?xml version="1.0"?>
<order id="7">
  <item>a</item>
  <item>b</item>
  <total currency="EUR">12.5</total>
  <note/>
</order>`
	n, err := ParseXML([]byte(doc))
	require.NoError(t, err)

	order, ok := n.Get("order")
	require.True(t, ok)
	assert.Equal(t, []string{"@id", "item", "total", "note"}, order.Keys())

	items, _ := order.Get("item")
	require.Equal(t, KindArray, items.Kind())
	assert.Equal(t, `["a","b"]`, items.String())

	total, _ := order.Get("total")
	assert.Equal(t, `{"@currency":"EUR","#text":"12.5"}`, total.String())

	note, _ := order.Get("note")
	s, ok := note.AsString()
	assert.True(t, ok)
	assert.Empty(t, s)
}

func TestParseXML_Errors(t *testing.T) {
	for _, in := range []string{``, `plain text`, `<a></a><b></b>`, `<a><b></a>`} {
		_, err := ParseXML([]byte(in))
		require.Error(t, err, in)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), in)
		assert.Equal(t, FormatXML, pe.Format)
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatXML, DetectFormat("resp.xml.gz", []byte(`{}`)))
	assert.Equal(t, FormatJSON, DetectFormat("resp.json", []byte(`<a/>`)))
	assert.Equal(t, FormatXML, DetectFormat("", []byte("  \n<a/>")))
	assert.Equal(t, FormatJSON, DetectFormat("body.txt", []byte(`[1]`)))
}

func TestParse_LeadingBOM(t *testing.T) {
	js := []byte("\uFEFF{\"a\":1}")
	assert.Equal(t, FormatJSON, DetectFormat("", js))
	n, err := Parse(js, DetectFormat("x.json", js))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, n.String())

	xs := []byte("\uFEFF<a>1</a>")
	assert.Equal(t, FormatXML, DetectFormat("", xs))
	n, err = Parse(xs, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1"}`, n.String())

	p := filepath.Join(t.TempDir(), "bom.json")
	require.NoError(t, os.WriteFile(p, js, 0o600))
	n, err = LoadFile(p, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, n.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XML ")
	require.NoError(t, err)
	assert.Equal(t, FormatXML, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)
	_, err = ParseFormat("yaml")
	require.Error(t, err)
}

func TestEqual_IgnoresMemberOrderAndNumberSpelling(t *testing.T) {
	a, err := ParseJSON([]byte(`{"x":1,"y":[1.0,"s"]}`))
	require.NoError(t, err)
	b, err := ParseJSON([]byte(`{"y":[1e0,"s"],"x":1.00}`))
	require.NoError(t, err)
	assert.True(t, Equal(a, b))

	c, err := ParseJSON([]byte(`{"y":["s",1],"x":1}`))
	require.NoError(t, err)
	assert.False(t, Equal(a, c))
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber("-0.5e+2")
	require.NoError(t, err)
	f, ok := n.Float64()
	require.True(t, ok)
	assert.InDelta(t, -50.0, f, 1e-9)
	assert.True(t, n.IsInteger())

	for _, bad := range []string{"", "01", "1.", ".5", "1e", "+1", "abc"} {
		_, err := ParseNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestNumbers_ExtremeExponents(t *testing.T) {
	num := func(lit string) Node {
		n, err := ParseNumber(lit)
		require.NoError(t, err)
		return n
	}
	assert.True(t, NumbersEqual(num("1E999999999"), num("1e999999999")))
	assert.True(t, NumbersEqual(num("1e999999999"), num("10e999999998")))
	assert.True(t, NumbersEqual(num("0.1e-999999998"), num("1e-999999999")))
	assert.False(t, NumbersEqual(num("1e999999999"), num("2e999999999")))
	assert.False(t, NumbersEqual(num("1e999999999"), num("-1e999999999")))

	for lit, want := range map[string]int{"1e-999999999": 1, "-1e-999999999": -1, "-0e999999999": 0, "0.000": 0} {
		s, ok := num(lit).Sign()
		require.True(t, ok, lit)
		assert.Equal(t, want, s, lit)
	}

	assert.True(t, num("1e999999999").IsInteger())
	assert.False(t, num("1e-999999999").IsInteger())
	assert.True(t, num("1.50e1").IsInteger())
	assert.False(t, num("1.50").IsInteger())

	f, ok := num("1e999999999").Float64()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))
}

func TestToAnyFromAny(t *testing.T) {
	n, err := ParseJSON([]byte(`{"a":[1,"x",false,null],"b":{"c":2.5}}`))
	require.NoError(t, err)

	v := n.ToAny()
	m, ok := v.(map[string]any)
	require.True(t, ok)
	arr, ok := m["a"].([]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), arr[0])

	back, err := FromAny(v)
	require.NoError(t, err)
	assert.True(t, Equal(n, back))

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestNodeJSONRoundTrip(t *testing.T) {
	var wrapper struct {
		Doc Node `json:"doc"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"doc":{"z":1,"a":2}}`), &wrapper))
	assert.Equal(t, []string{"z", "a"}, wrapper.Doc.Keys())

	out, err := json.Marshal(wrapper)
	require.NoError(t, err)
	assert.JSONEq(t, `{"doc":{"z":1,"a":2}}`, string(out))
}

func TestPretty(t *testing.T) {
	n, err := ParseJSON([]byte(`{"a":[1,2],"b":{}}`))
	require.NoError(t, err)
	want := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}"
	assert.Equal(t, want, Pretty(n))
}

func TestSelect(t *testing.T) {
	root, err := ParseJSON([]byte(`{"data":{"items":[{"id":1},{"id":2},{"name":"x"}]},"grid":[[1,2],[3,4]]}`))
	require.NoError(t, err)

	nodes, ok := Select(root, "$.data.items[*].id")
	require.True(t, ok)
	require.Len(t, nodes, 2)
	assert.Equal(t, "1", nodes[0].String())
	assert.Equal(t, "2", nodes[1].String())

	one, ok := SelectOne(root, "$.data.items[2].name")
	require.True(t, ok)
	assert.Equal(t, `"x"`, one.String())

	cell, ok := SelectOne(root, "$.grid[1][0]")
	require.True(t, ok)
	assert.Equal(t, "3", cell.String())

	all, ok := Select(root, "$")
	require.True(t, ok)
	require.Len(t, all, 1)

	_, ok = Select(root, "data.items")
	assert.False(t, ok)
	_, ok = Select(root, "$.data.missing")
	assert.False(t, ok)
	_, ok = Select(root, "$.data.items[9]")
	assert.False(t, ok)
	_, ok = Select(root, "$.data.items[x]")
	assert.False(t, ok)
}

func TestNarrow(t *testing.T) {
	root, err := ParseJSON([]byte(`{"data":{"items":[{"id":1},{"id":2}]}}`))
	require.NoError(t, err)

	n, ok := Narrow(root, "$.data.items[*].id")
	require.True(t, ok)
	assert.Equal(t, "[1,2]", n.String())

	n, ok = Narrow(root, "$.data.items[0]")
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, n.String())

	_, ok = Narrow(root, "$.data.nope")
	assert.False(t, ok)
}

func TestLoadFile_Compressed(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`{"ok":true}`)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(body)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	gzPath := filepath.Join(dir, "resp.json.gz")
	require.NoError(t, os.WriteFile(gzPath, gz.Bytes(), 0o600))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zstPath := filepath.Join(dir, "resp.json.zst")
	require.NoError(t, os.WriteFile(zstPath, enc.EncodeAll(body, nil), 0o600))
	require.NoError(t, enc.Close())

	plainPath := filepath.Join(dir, "resp.xml")
	require.NoError(t, os.WriteFile(plainPath, []byte(`<ok>true</ok>`), 0o600))

	for _, p := range []string{gzPath, zstPath} {
		n, err := LoadFile(p, FormatAuto)
		require.NoError(t, err, p)
		assert.Equal(t, `{"ok":true}`, n.String())
	}

	n, err := LoadFile(plainPath, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":"true"}`, n.String())
}

func TestLoadFile_ParseErrorNamesSource(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"a":`), 0o600))

	_, err := LoadFile(p, FormatAuto)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, p, pe.Source)
	assert.Contains(t, err.Error(), "broken.json")
}
