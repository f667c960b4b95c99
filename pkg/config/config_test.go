package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/r9s-ai/respcheck/pkg/compare"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "respcheck.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
suite:
  dir: "./fixtures"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Suite.Dir != "./fixtures" {
		t.Fatalf("suite.dir=%q", cfg.Suite.Dir)
	}
	if cfg.Compare.Mode != "strict_order" {
		t.Fatalf("default compare.mode=%q", cfg.Compare.Mode)
	}
	if cfg.Suite.Parallelism != 4 {
		t.Fatalf("default suite.parallelism=%d", cfg.Suite.Parallelism)
	}
	if cfg.Suite.FailFast {
		t.Fatalf("suite.fail_fast default should be false")
	}
	if cfg.Watch.DebounceMs != 300 {
		t.Fatalf("default watch.debounce_ms=%d", cfg.Watch.DebounceMs)
	}
	if cfg.Server.Listen != ":3310" {
		t.Fatalf("default listen=%q", cfg.Server.Listen)
	}
	if cfg.Server.MaxBodyBytes != 8<<20 || cfg.Server.MaxConnections != 256 {
		t.Fatalf("server defaults=%+v", cfg.Server)
	}
	if !cfg.Logging.AccessLog {
		t.Fatalf("access_log default should be true")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Color != "auto" {
		t.Fatalf("logging defaults=%+v", cfg.Logging)
	}
	reg, err := cfg.Keywords.Registry()
	if err != nil {
		t.Fatalf("Registry err=%v", err)
	}
	if got := strings.Join(reg.Keywords(), ","); !strings.Contains(got, "regex:") {
		t.Fatalf("default keywords=%s", got)
	}
}

func TestLoad_AccessLogCanBeDisabled(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  access_log: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Logging.AccessLog {
		t.Fatalf("explicit access_log=false should be kept")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
keywords:
  regex: "re:"
compare:
  mode: strict
`)
	t.Setenv("RESPCHECK_COMPARE_MODE", "lenient")
	t.Setenv("RESPCHECK_IGNORE_PATHS", "meta.*, items[*].ts ,")
	t.Setenv("RESPCHECK_PARALLELISM", "9")
	t.Setenv("RESPCHECK_FAIL_FAST", "yes")
	t.Setenv("RESPCHECK_LISTEN", ":9999")
	t.Setenv("RESPCHECK_ACCESS_LOG", "off")
	t.Setenv("RESPCHECK_COLOR", "never")
	t.Setenv("RESPCHECK_KEYWORD_IGNORE", "any")
	t.Setenv("RESPCHECK_KEYWORD_BOGUS", "zzz")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Compare.Mode != "lenient" {
		t.Fatalf("compare.mode=%q", cfg.Compare.Mode)
	}
	if len(cfg.Compare.IgnorePaths) != 2 || cfg.Compare.IgnorePaths[1] != "items[*].ts" {
		t.Fatalf("ignore_paths=%v", cfg.Compare.IgnorePaths)
	}
	if cfg.Suite.Parallelism != 9 || !cfg.Suite.FailFast {
		t.Fatalf("suite=%+v", cfg.Suite)
	}
	if cfg.Server.Listen != ":9999" {
		t.Fatalf("listen=%q", cfg.Server.Listen)
	}
	if cfg.Logging.AccessLog || cfg.Logging.Color != "never" {
		t.Fatalf("logging=%+v", cfg.Logging)
	}
	if cfg.Keywords.Regex != "re:" || cfg.Keywords.Ignore != "any" {
		t.Fatalf("keywords=%+v", cfg.Keywords)
	}

	opts, err := cfg.Compare.Options()
	if err != nil {
		t.Fatalf("Options err=%v", err)
	}
	c, err := compare.New(nil, opts...)
	if err != nil {
		t.Fatalf("compare.New err=%v", err)
	}
	if c.Mode() != compare.ModeLenient {
		t.Fatalf("mode=%q", c.Mode())
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"bad mode": `
compare:
  mode: fuzzy
`,
		"bad ignore path": `
compare:
  ignore_paths: ["a..b"]
`,
		"ambiguous keywords": `
keywords:
  type: "regex:t"
`,
		"unknown disabled keyword": `
keywords:
  disabled: [nope]
`,
		"bad level": `
logging:
  level: loud
`,
		"bad color": `
logging:
  color: rainbow
`,
		"negative connections": `
server:
  max_connections: -1
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfigFile(t, content)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadIfExists_Missing(t *testing.T) {
	cfg, err := LoadIfExists(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadIfExists err=%v", err)
	}
	if cfg.Server.Listen != ":3310" {
		t.Fatalf("expected defaults, got listen=%q", cfg.Server.Listen)
	}

	cfg, err = LoadIfExists("")
	if err != nil || cfg == nil {
		t.Fatalf("LoadIfExists(\"\") cfg=%v err=%v", cfg, err)
	}
}

func TestKeywordsConfig_Vocabulary(t *testing.T) {
	k := KeywordsConfig{Tolerance: "approx:", Disabled: []string{"schema"}}
	reg, err := k.Registry()
	if err != nil {
		t.Fatalf("Registry err=%v", err)
	}
	kws := strings.Join(reg.Keywords(), " ")
	if !strings.Contains(kws, "approx:") || strings.Contains(kws, "delta:") || strings.Contains(kws, "schema:") {
		t.Fatalf("keywords=%s", kws)
	}
}
