package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/r9s-ai/respcheck/pkg/compare"
)

const (
	defaultListen         = ":3310"
	defaultTimeoutMs      = 30000
	defaultMaxConnections = 256
	defaultMaxBodyBytes   = 8 << 20
	defaultSuiteDir       = "."
	defaultParallelism    = 4
	defaultDebounceMs     = 300
)

// KeywordsConfig holds the keyword vocabulary fixture authors write.
// Empty entries keep the built-in keyword.
type KeywordsConfig struct {
	Regex     string   `yaml:"regex"`
	Ignore    string   `yaml:"ignore"`
	Tolerance string   `yaml:"tolerance"`
	Unordered string   `yaml:"unordered"`
	Contains  string   `yaml:"contains"`
	Type      string   `yaml:"type"`
	UUID      string   `yaml:"uuid"`
	Schema    string   `yaml:"schema"`
	Predicate string   `yaml:"predicate"`
	Disabled  []string `yaml:"disabled"`
}

// Vocabulary converts the section into the comparator vocabulary.
func (k KeywordsConfig) Vocabulary() compare.Vocabulary {
	return compare.Vocabulary{
		Regex:     k.Regex,
		Ignore:    k.Ignore,
		Tolerance: k.Tolerance,
		Unordered: k.Unordered,
		Contains:  k.Contains,
		Type:      k.Type,
		UUID:      k.UUID,
		Schema:    k.Schema,
		Predicate: k.Predicate,
		Disabled:  append([]string(nil), k.Disabled...),
	}
}

// Registry builds the keyword registry described by the section.
func (k KeywordsConfig) Registry(extra ...compare.KeywordComparator) (*compare.Registry, error) {
	return compare.BuildRegistry(k.Vocabulary(), extra...)
}

func (k *KeywordsConfig) set(name, keyword string) bool {
	switch name {
	case compare.NameRegex:
		k.Regex = keyword
	case compare.NameIgnore:
		k.Ignore = keyword
	case compare.NameTolerance:
		k.Tolerance = keyword
	case compare.NameUnordered:
		k.Unordered = keyword
	case compare.NameContains:
		k.Contains = keyword
	case compare.NameType:
		k.Type = keyword
	case compare.NameUUID:
		k.UUID = keyword
	case compare.NameSchema:
		k.Schema = keyword
	case compare.NamePredicate:
		k.Predicate = keyword
	default:
		return false
	}
	return true
}

type CompareConfig struct {
	Mode        string   `yaml:"mode"`
	IgnorePaths []string `yaml:"ignore_paths"`
}

// Options converts the section into comparator options.
func (c CompareConfig) Options() ([]compare.Option, error) {
	mode, err := compare.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	return []compare.Option{
		compare.WithMode(mode),
		compare.WithIgnorePaths(c.IgnorePaths...),
	}, nil
}

type SuiteConfig struct {
	Dir         string `yaml:"dir"`
	Parallelism int    `yaml:"parallelism"`
	FailFast    bool   `yaml:"fail_fast"`
}

type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

type ServerConfig struct {
	Listen         string `yaml:"listen"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	MaxConnections int    `yaml:"max_connections"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
}

type LoggingConfig struct {
	Level                 string `yaml:"level"`
	AccessLog             bool   `yaml:"access_log"`
	AccessLogPath         string `yaml:"access_log_path"`
	AccessLogFormat       string `yaml:"access_log_format"`
	AccessLogFormatPreset string `yaml:"access_log_format_preset"`
	// Color is auto, always or never.
	Color string `yaml:"color"`

	accessLogSet bool `yaml:"-"`
}

func (c *LoggingConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawLogging struct {
		Level                 string `yaml:"level"`
		AccessLog             bool   `yaml:"access_log"`
		AccessLogPath         string `yaml:"access_log_path"`
		AccessLogFormat       string `yaml:"access_log_format"`
		AccessLogFormatPreset string `yaml:"access_log_format_preset"`
		Color                 string `yaml:"color"`
	}
	var raw rawLogging
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Level = raw.Level
	c.AccessLog = raw.AccessLog
	c.AccessLogPath = raw.AccessLogPath
	c.AccessLogFormat = raw.AccessLogFormat
	c.AccessLogFormatPreset = raw.AccessLogFormatPreset
	c.Color = raw.Color
	c.accessLogSet = false

	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if strings.TrimSpace(value.Content[i].Value) == "access_log" {
			c.accessLogSet = true
		}
	}
	return nil
}

type Config struct {
	Keywords KeywordsConfig `yaml:"keywords"`
	Compare  CompareConfig  `yaml:"compare"`
	Suite    SuiteConfig    `yaml:"suite"`
	Watch    WatchConfig    `yaml:"watch"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Load reads a YAML config file, then applies defaults and RESPCHECK_*
// environment overrides.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path is provided by trusted config/flag.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse is Load for config content already in memory.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(&cfg)
}

// LoadIfExists loads path when it exists. A missing file, or an empty
// path, yields the defaults with environment overrides applied.
func LoadIfExists(path string) (*Config, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return finish(&Config{})
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finish(&Config{})
		}
		return nil, err
	}
	return Load(p)
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Compare.Mode) == "" {
		cfg.Compare.Mode = string(compare.ModeStrictOrder)
	}
	if strings.TrimSpace(cfg.Suite.Dir) == "" {
		cfg.Suite.Dir = defaultSuiteDir
	}
	if cfg.Suite.Parallelism <= 0 {
		cfg.Suite.Parallelism = defaultParallelism
	}
	if cfg.Watch.DebounceMs <= 0 {
		cfg.Watch.DebounceMs = defaultDebounceMs
	}
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = defaultListen
	}
	if cfg.Server.ReadTimeoutMs <= 0 {
		cfg.Server.ReadTimeoutMs = defaultTimeoutMs
	}
	if cfg.Server.WriteTimeoutMs <= 0 {
		cfg.Server.WriteTimeoutMs = defaultTimeoutMs
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = defaultMaxConnections
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	// default true
	if !cfg.Logging.accessLogSet {
		cfg.Logging.AccessLog = true
	}
	if strings.TrimSpace(cfg.Logging.Color) == "" {
		cfg.Logging.Color = "auto"
	}
}

func applyEnvOverrides(cfg *Config) {
	applyEnvCompareOverrides(cfg)
	applyEnvServerOverrides(cfg)
	applyEnvLoggingOverrides(cfg)
	applyKeywordEnvOverrides(cfg)
}

func applyEnvCompareOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_COMPARE_MODE")); v != "" {
		cfg.Compare.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_IGNORE_PATHS")); v != "" {
		cfg.Compare.IgnorePaths = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_SUITE_DIR")); v != "" {
		cfg.Suite.Dir = v
	}
	if n, ok := envInt("RESPCHECK_PARALLELISM"); ok && n > 0 {
		cfg.Suite.Parallelism = n
	}
	cfg.Suite.FailFast = envBool("RESPCHECK_FAIL_FAST", cfg.Suite.FailFast)
	if n, ok := envInt("RESPCHECK_WATCH_DEBOUNCE_MS"); ok {
		cfg.Watch.DebounceMs = n
	}
}

func applyEnvServerOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_LISTEN")); v != "" {
		cfg.Server.Listen = v
	}
	if n, ok := envInt("RESPCHECK_READ_TIMEOUT_MS"); ok && n > 0 {
		cfg.Server.ReadTimeoutMs = n
	}
	if n, ok := envInt("RESPCHECK_WRITE_TIMEOUT_MS"); ok && n > 0 {
		cfg.Server.WriteTimeoutMs = n
	}
	if n, ok := envInt("RESPCHECK_MAX_CONNECTIONS"); ok {
		cfg.Server.MaxConnections = n
	}
	if n, ok := envInt("RESPCHECK_MAX_BODY_BYTES"); ok {
		cfg.Server.MaxBodyBytes = int64(n)
	}
}

func applyEnvLoggingOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	cfg.Logging.AccessLog = envBool("RESPCHECK_ACCESS_LOG", cfg.Logging.AccessLog)
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_ACCESS_LOG_PATH")); v != "" {
		cfg.Logging.AccessLogPath = v
	}
	if v := os.Getenv("RESPCHECK_ACCESS_LOG_FORMAT"); strings.TrimSpace(v) != "" {
		cfg.Logging.AccessLogFormat = v
	}
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_ACCESS_LOG_FORMAT_PRESET")); v != "" {
		cfg.Logging.AccessLogFormatPreset = v
	}
	if v := strings.TrimSpace(os.Getenv("RESPCHECK_COLOR")); v != "" {
		cfg.Logging.Color = v
	}
}

var envKeywordPattern = regexp.MustCompile(`^RESPCHECK_KEYWORD_([A-Z0-9_]+)$`)

// applyKeywordEnvOverrides maps RESPCHECK_KEYWORD_<NAME>=<keyword> onto the
// keyword vocabulary. Unknown names are ignored.
func applyKeywordEnvOverrides(cfg *Config) {
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m := envKeywordPattern.FindStringSubmatch(strings.TrimSpace(k))
		if m == nil {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		cfg.Keywords.set(strings.ToLower(m[1]), v)
	}
}

func validate(cfg *Config) error {
	if _, err := cfg.Compare.Options(); err != nil {
		return fmt.Errorf("compare.mode: %w", err)
	}
	if _, err := compare.New(nil, compare.WithIgnorePaths(cfg.Compare.IgnorePaths...)); err != nil {
		return fmt.Errorf("compare.ignore_paths: %w", err)
	}
	if _, err := cfg.Keywords.Registry(); err != nil {
		return fmt.Errorf("keywords: %w", err)
	}
	if cfg.Suite.Parallelism <= 0 {
		return errors.New("suite.parallelism must be > 0")
	}
	if cfg.Watch.DebounceMs <= 0 {
		return errors.New("watch.debounce_ms must be > 0")
	}
	if cfg.Server.MaxConnections < 0 {
		return errors.New("server.max_connections must be >= 0 (0 disables the limit)")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be > 0")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Color)) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("logging.color %q must be one of auto, always, never", cfg.Logging.Color)
	}
	return nil
}

func envInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
