package suite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/document"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func defaultRegistry(t *testing.T) *compare.Registry {
	t.Helper()
	reg, err := compare.BuildRegistry(compare.DefaultVocabulary())
	require.NoError(t, err)
	return reg
}

const manifest = `
name: users
defaults:
  mode: strict_order
  ignore_paths: ["$.meta"]
cases:
  - name: list
    expected: expected/list.json
    actual: actual/list.json
    select: "$.data"
    mode: lenient
  - name: profile
    expected: expected/profile.json
    actual: actual/profile.json
    schema: schemas/profile.json
  - name: broken
    expected: expected/profile.json
    actual: actual/missing.json
  - name: xml
    expected: expected/user.xml
    actual: actual/user.xml
  - name: later
    expected: expected/profile.json
    actual: actual/profile.json
    skip: true
`

func suiteFixtures() map[string]string {
	return map[string]string{
		ManifestName:            manifest,
		"expected/list.json":    `[{"id":"uuid"},{"id":"skip"}]`,
		"actual/list.json":      `{"meta":{"page":1},"data":[{"id":"x"},{"id":"1b4e28ba-2fa1-41d2-883f-0016d3cca427"}]}`,
		"expected/profile.json": `{"name":"Ann","age":"delta:30:1","meta":"anything"}`,
		"actual/profile.json":   `{"name":"Ann","age":32,"meta":{"v":2}}`,
		"schemas/profile.json":  `{"type":"object","required":["name","age"],"properties":{"age":{"type":"integer","maximum":31}}}`,
		"expected/user.xml":     `<user id="regex:^\d+$"><name>Ann</name></user>`,
		"actual/user.xml":       `<user id="12"><name>Ann</name></user>`,
	}
}

func TestLoadAndRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, suiteFixtures())

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "users", s.Name)
	assert.Equal(t, dir, s.Dir)
	require.Len(t, s.Cases, 5)
	assert.Equal(t, "lenient", s.Cases[0].Mode)
	assert.Equal(t, "strict_order", s.Cases[1].Mode)
	assert.Equal(t, []string{"$.meta"}, s.Cases[1].IgnorePaths)

	sum, err := Run(context.Background(), s, defaultRegistry(t), RunOptions{Parallelism: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 2, sum.Passed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Errored)
	assert.Equal(t, 1, sum.Skipped)
	assert.False(t, sum.OK())

	byName := map[string]CaseResult{}
	for _, r := range sum.Cases {
		byName[r.Name] = r
	}
	assert.Equal(t, StatusPassed, byName["list"].Status)
	assert.Equal(t, StatusPassed, byName["xml"].Status)
	assert.Equal(t, StatusSkipped, byName["later"].Status)

	profile := byName["profile"]
	assert.Equal(t, StatusFailed, profile.Status)
	require.Len(t, profile.Failures, 2)
	assert.Equal(t, "$.age", profile.Failures[0].Path)
	assert.Contains(t, profile.Failures[0].Message, "schema violation")
	assert.Equal(t, "$.age", profile.Failures[1].Path)
	assert.Contains(t, profile.Failures[1].Message, "not within")

	broken := byName["broken"]
	assert.Equal(t, StatusErrored, broken.Status)
	var ce *CaseError
	require.True(t, errors.As(broken.Err, &ce))
	assert.Equal(t, "broken", ce.Case)
	assert.ErrorIs(t, broken.Err, os.ErrNotExist)
}

func TestRun_ConfigErrorIsErrored(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		ManifestName: `
cases:
  - expected: e.json
    actual: a.json
`,
		"e.json": `{"v":"regex:("}`,
		"a.json": `{"v":"x"}`,
	})
	s, err := Load(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "e", s.Cases[0].Name)

	sum, err := Run(context.Background(), s, defaultRegistry(t), RunOptions{})
	require.NoError(t, err)
	require.Equal(t, StatusErrored, sum.Cases[0].Status)
	var cfgErr *compare.ConfigError
	require.True(t, errors.As(sum.Cases[0].Err, &cfgErr))
	assert.Equal(t, "$.v", cfgErr.Path)
}

func TestRun_FailFast(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		ManifestName: `
cases:
  - {name: bad, expected: one.json, actual: two.json}
  - {name: good1, expected: one.json, actual: one.json}
  - {name: good2, expected: one.json, actual: one.json}
  - {name: good3, expected: one.json, actual: one.json}
`,
		"one.json": `1`,
		"two.json": `2`,
	}
	writeFiles(t, dir, files)
	s, err := Load(dir)
	require.NoError(t, err)

	sum, err := Run(context.Background(), s, defaultRegistry(t), RunOptions{Parallelism: 1, FailFast: true})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, sum.Cases[0].Status)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 3, sum.Skipped)
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		ManifestName: "cases:\n  - {expected: one.json, actual: one.json}\n",
		"one.json":   `1`,
	})
	s, err := Load(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := Run(ctx, s, defaultRegistry(t), RunOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Skipped)
}

type countingComparator struct {
	calls atomic.Int32
}

func (c *countingComparator) Keyword() string { return "count" }

func (c *countingComparator) IsMatch(expected document.Node) bool {
	s, ok := expected.AsString()
	return ok && s == "count"
}

func (c *countingComparator) Compare(compare.Path, document.Node, document.Node, *compare.Result) error {
	c.calls.Add(1)
	return nil
}

func TestRun_ParallelCasesShareRegistry(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		ManifestName: `
defaults:
  mode: lenient
cases:
  - {name: a, expected: e.json, actual: a.json}
  - {name: b, expected: e.json, actual: a.json}
  - {name: c, expected: e.json, actual: a.json}
  - {name: d, expected: e.json, actual: a.json}
`,
		"e.json": `{"k":"count","xs":[3,2,1]}`,
		"a.json": `{"k":5,"xs":[1,2,3]}`,
	}
	writeFiles(t, dir, files)
	s, err := Load(dir)
	require.NoError(t, err)

	counter := &countingComparator{}
	reg, err := compare.BuildRegistry(compare.DefaultVocabulary(), counter)
	require.NoError(t, err)

	sum, err := Run(context.Background(), s, reg, RunOptions{Parallelism: 4})
	require.NoError(t, err)
	assert.True(t, sum.OK())
	assert.Equal(t, 4, sum.Passed)
	assert.Equal(t, int32(4), counter.calls.Load())
}

func TestParse_Validation(t *testing.T) {
	cases := map[string]string{
		"no cases":       `name: x`,
		"missing actual": "cases:\n  - {expected: a.json}\n",
		"duplicate name": "cases:\n  - {name: a, expected: a.json, actual: b.json}\n  - {name: a, expected: a.json, actual: b.json}\n",
		"bad mode":       "cases:\n  - {expected: a.json, actual: b.json, mode: fuzzy}\n",
		"bad format":     "cases:\n  - {expected: a.json, actual: b.json, format: csv}\n",
		"unknown field":  "cases:\n  - {expected: a.json, actual: b.json, expect: c.json}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestSuiteFiles(t *testing.T) {
	s, err := Parse([]byte(`
defaults:
  schema: s.json
cases:
  - {expected: e.json, actual: a.json}
  - {name: two, expected: e.json, actual: b.json}
`))
	require.NoError(t, err)
	s.Dir = "/fixtures"
	assert.Equal(t, []string{"/fixtures/e.json", "/fixtures/a.json", "/fixtures/s.json", "/fixtures/b.json"}, s.Files())
}
