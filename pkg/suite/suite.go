package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/document"
)

// ManifestName is the file Load looks for when given a directory.
const ManifestName = "respcheck.yaml"

// Case is one expected/actual pair. File paths are relative to the suite
// directory.
type Case struct {
	Name        string   `yaml:"name"`
	Expected    string   `yaml:"expected"`
	Actual      string   `yaml:"actual"`
	Format      string   `yaml:"format"`
	Mode        string   `yaml:"mode"`
	IgnorePaths []string `yaml:"ignore_paths"`
	// Select narrows the actual document before comparing, e.g. "$.data".
	Select string `yaml:"select"`
	// Schema is a JSON Schema file the actual document must satisfy.
	Schema string `yaml:"schema"`
	Skip   bool   `yaml:"skip"`
}

// Defaults apply to every case that leaves the field empty. IgnorePaths
// are added to each case's own list.
type Defaults struct {
	Format      string   `yaml:"format"`
	Mode        string   `yaml:"mode"`
	IgnorePaths []string `yaml:"ignore_paths"`
	Schema      string   `yaml:"schema"`
}

// Suite is a parsed respcheck.yaml manifest.
type Suite struct {
	Name     string   `yaml:"name"`
	Defaults Defaults `yaml:"defaults"`
	Cases    []Case   `yaml:"cases"`

	// Dir is the directory case paths resolve against.
	Dir string `yaml:"-"`
}

// Load reads a suite manifest. path may name the manifest itself or a
// directory holding respcheck.yaml.
func Load(path string) (*Suite, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		p = "."
	}
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("load suite: %w", err)
	}
	if fi.IsDir() {
		p = filepath.Join(p, ManifestName)
	}
	// #nosec G304 -- suite path is provided by trusted flag/config.
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read suite manifest: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	s.Dir = filepath.Dir(p)
	return s, nil
}

// Parse decodes manifest content. Unknown fields are rejected. The
// result's Dir is empty, so case paths resolve against the working
// directory until the caller sets it.
func Parse(b []byte) (*Suite, error) {
	var s Suite
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse suite manifest: %w", err)
	}
	applyDefaults(&s)
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func applyDefaults(s *Suite) {
	for i := range s.Cases {
		c := &s.Cases[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			c.Name = strings.TrimSuffix(filepath.Base(c.Expected), filepath.Ext(c.Expected))
		}
		if strings.TrimSpace(c.Format) == "" {
			c.Format = s.Defaults.Format
		}
		if strings.TrimSpace(c.Mode) == "" {
			c.Mode = s.Defaults.Mode
		}
		if strings.TrimSpace(c.Schema) == "" {
			c.Schema = s.Defaults.Schema
		}
		if len(s.Defaults.IgnorePaths) > 0 {
			c.IgnorePaths = append(append([]string(nil), s.Defaults.IgnorePaths...), c.IgnorePaths...)
		}
	}
}

func validate(s *Suite) error {
	if len(s.Cases) == 0 {
		return errors.New("suite has no cases")
	}
	seen := make(map[string]struct{}, len(s.Cases))
	for i, c := range s.Cases {
		where := fmt.Sprintf("cases[%d]", i)
		if strings.TrimSpace(c.Expected) == "" {
			return fmt.Errorf("%s: expected is required", where)
		}
		if strings.TrimSpace(c.Actual) == "" {
			return fmt.Errorf("%s: actual is required", where)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%s: duplicate case name %q", where, c.Name)
		}
		seen[c.Name] = struct{}{}
		if _, err := document.ParseFormat(c.Format); err != nil {
			return fmt.Errorf("%s (%s): %w", where, c.Name, err)
		}
		if strings.TrimSpace(c.Mode) != "" {
			if _, err := compare.ParseMode(c.Mode); err != nil {
				return fmt.Errorf("%s (%s): %w", where, c.Name, err)
			}
		}
	}
	return nil
}

func (s *Suite) resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// Files lists every fixture and schema path the suite reads.
func (s *Suite) Files() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(p string) {
		if strings.TrimSpace(p) == "" {
			return
		}
		p = s.resolve(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, c := range s.Cases {
		add(c.Expected)
		add(c.Actual)
		add(c.Schema)
	}
	return out
}
