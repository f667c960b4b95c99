package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/respcheck/pkg/document"
)

const userSchema = `{
  "type": "object",
  "required": ["id", "tags"],
  "properties": {
    "id": {"type": "integer", "minimum": 1},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

func mustParse(t *testing.T, s string) document.Node {
	t.Helper()
	n, err := document.ParseJSON([]byte(s))
	require.NoError(t, err)
	return n
}

func TestValidate_Passes(t *testing.T) {
	v, err := Compile("user.json", []byte(userSchema))
	require.NoError(t, err)
	require.NoError(t, v.Validate(mustParse(t, `{"id": 3, "tags": ["a"]}`)))
}

func TestValidate_ReportsEveryIssue(t *testing.T) {
	v, err := Compile("user.json", []byte(userSchema))
	require.NoError(t, err)

	err = v.Validate(mustParse(t, `{"id": 0, "tags": ["a", 2]}`))
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	locs := make([]string, 0, len(ve.Issues))
	for _, is := range ve.Issues {
		locs = append(locs, is.Location)
	}
	assert.ElementsMatch(t, []string{"$.id", "$.tags[1]"}, locs)
	assert.Contains(t, err.Error(), "user.json")
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("", []byte(`{"type": 12}`))
	require.Error(t, err)

	_, err = Compile("", []byte(`{not json`))
	require.Error(t, err)
}

func TestCompileFileAndNode(t *testing.T) {
	p := filepath.Join(t.TempDir(), "user.schema.json")
	require.NoError(t, os.WriteFile(p, []byte(userSchema), 0o600))

	v, err := CompileFile(p)
	require.NoError(t, err)
	assert.Equal(t, p, v.Name())
	assert.Error(t, v.Validate(mustParse(t, `{"id": 1}`)))

	nv, err := CompileNode("", mustParse(t, `{"type":"string"}`))
	require.NoError(t, err)
	assert.NoError(t, nv.Validate(document.String("x")))
	assert.Error(t, nv.Validate(document.Int(1)))
}

func TestInstancePath(t *testing.T) {
	assert.Equal(t, "$", instancePath(""))
	assert.Equal(t, "$.items[0].id", instancePath("/items/0/id"))
	assert.Equal(t, `$["a/b"]`, instancePath("/a~1b"))
	assert.Equal(t, `$.m["x.y"]`, instancePath("/m/x.y"))
}
