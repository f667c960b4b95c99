package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...)
	code := run(context.Background(), full, strings.NewReader(""), &out, &errOut)
	return cliResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"compare", "check", "watch", "view", "serve", "keywords", "version"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Fatalf("find %s subcommand: %v", name, err)
		}
	}
}

func TestVersionCmdOutput(t *testing.T) {
	res := runCLI(t, "version")
	if res.code != 0 || !strings.HasPrefix(res.stdout, "respcheck ") {
		t.Fatalf("code=%d stdout=%q stderr=%q", res.code, res.stdout, res.stderr)
	}
}

func TestCompareCmd_Pass(t *testing.T) {
	dir := t.TempDir()
	exp := writeFile(t, dir, "expected.json", `{"id":"uuid","n":"delta:10:0.5","tags":["array:contains","b"]}`)
	act := writeFile(t, dir, "actual.json", `{"id":"1b4e28ba-2fa1-41d2-883f-0016d3cca427","n":10.2,"tags":["a","b","c"]}`)

	res := runCLI(t, "compare", exp, act)
	if res.code != 0 {
		t.Fatalf("code=%d stdout=%q stderr=%q", res.code, res.stdout, res.stderr)
	}
	if res.stdout != "PASS expected.json vs actual.json\n" {
		t.Fatalf("stdout=%q", res.stdout)
	}
}

func TestCompareCmd_FailTextAndJSON(t *testing.T) {
	dir := t.TempDir()
	exp := writeFile(t, dir, "e.json", `{"a":1,"b":[1,2]}`)
	act := writeFile(t, dir, "a.json", `{"a":2,"b":[1,2],"c":true}`)

	res := runCLI(t, "compare", "--mode", "strict", exp, act)
	if res.code != 1 {
		t.Fatalf("code=%d stderr=%q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "FAIL e.json vs a.json") ||
		!strings.Contains(res.stdout, "  $.a: value mismatch: expected 1, got 2") ||
		!strings.Contains(res.stdout, "  $.c: unexpected field") {
		t.Fatalf("stdout=%q", res.stdout)
	}
	if res.stderr != "" {
		t.Fatalf("failure should not print an error, stderr=%q", res.stderr)
	}

	res = runCLI(t, "compare", "-o", "json", "--ignore", "$.a", exp, act)
	if res.code != 0 {
		t.Fatalf("code=%d stdout=%q", res.code, res.stdout)
	}
	var body struct {
		Passed   bool   `json:"passed"`
		Mode     string `json:"mode"`
		Failures []struct {
			Path string `json:"path"`
		} `json:"failures"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &body); err != nil {
		t.Fatalf("decode %q: %v", res.stdout, err)
	}
	if !body.Passed || body.Mode != "strict_order" || len(body.Failures) != 0 {
		t.Fatalf("body=%+v", body)
	}
}

func TestCompareCmd_SelectSchemaAndDump(t *testing.T) {
	dir := t.TempDir()
	exp := writeFile(t, dir, "e.json", `{"name":"regex:^A"}`)
	act := writeFile(t, dir, "a.json", `{"data":{"name":"Ann","age":-1}}`)
	sch := writeFile(t, dir, "s.json", `{"properties":{"age":{"minimum":0}}}`)

	res := runCLI(t, "compare", "--select", "$.data", "--schema", sch, "--dump", exp, act)
	if res.code != 1 {
		t.Fatalf("code=%d stdout=%q stderr=%q", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, "$.age: schema violation") {
		t.Fatalf("stdout=%q", res.stdout)
	}
	if !strings.Contains(res.stderr, "expected:") || !strings.Contains(res.stderr, "actual:") || !strings.Contains(res.stderr, "Ann") {
		t.Fatalf("dump=%q", res.stderr)
	}
}

func TestCompareCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	exp := writeFile(t, dir, "e.json", `{"v":"type:widget"}`)
	act := writeFile(t, dir, "a.json", `{"v":1}`)

	cases := map[string][]string{
		"config error":    {"compare", exp, act},
		"missing file":    {"compare", exp, filepath.Join(dir, "nope.json")},
		"bad mode":        {"compare", "--mode", "fuzzy", act, act},
		"bad output":      {"compare", "-o", "yaml", act, act},
		"wrong arg count": {"compare", act},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			res := runCLI(t, args...)
			if res.code != 2 || !strings.HasPrefix(res.stderr, "error: ") {
				t.Fatalf("code=%d stderr=%q", res.code, res.stderr)
			}
		})
	}
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "respcheck.yaml", `
name: smoke
cases:
  - {name: same, expected: one.json, actual: one.json}
  - {name: differs, expected: one.json, actual: two.json}
`)
	writeFile(t, dir, "one.json", `{"v":1}`)
	writeFile(t, dir, "two.json", `{"v":2}`)

	res := runCLI(t, "check", dir)
	if res.code != 1 {
		t.Fatalf("code=%d stdout=%q stderr=%q", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, "FAIL differs") || strings.Contains(res.stdout, "PASS same") {
		t.Fatalf("stdout=%q", res.stdout)
	}
	if !strings.Contains(res.stdout, "2 total, 1 passed, 1 failed, 0 errored, 0 skipped") {
		t.Fatalf("stdout=%q", res.stdout)
	}

	res = runCLI(t, "check", "-v", "--ignore", "$.v", dir)
	if res.code != 0 || !strings.Contains(res.stdout, "PASS same") {
		t.Fatalf("code=%d stdout=%q", res.code, res.stdout)
	}

	res = runCLI(t, "check", "-o", "json", dir)
	var sum struct {
		Total  int `json:"total"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &sum); err != nil {
		t.Fatalf("decode %q: %v", res.stdout, err)
	}
	if sum.Total != 2 || sum.Failed != 1 {
		t.Fatalf("sum=%+v", sum)
	}
}

func TestKeywordsCmd_UsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "respcheck.config.yaml", `
keywords:
  regex: "re:"
  disabled: [schema]
`)
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--config", cfgPath, "keywords"}, strings.NewReader(""), &out, &errOut)
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, errOut.String())
	}
	got := out.String()
	if !strings.Contains(got, "re:") || strings.Contains(got, "regex:") || strings.Contains(got, "schema:") {
		t.Fatalf("keywords=%q", got)
	}
}

func TestGlobalColorFlagValidated(t *testing.T) {
	res := runCLI(t, "--color", "rainbow", "keywords")
	if res.code != 2 {
		t.Fatalf("code=%d stderr=%q", res.code, res.stderr)
	}
}
