package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/r9s-ai/respcheck/pkg/document"
)

const defaultResourceName = "schema.json"

// Validator checks documents against one compiled JSON Schema.
// It is safe for concurrent use.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// Issue is one schema violation.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Schema string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Location+": "+is.Message)
	}
	return fmt.Sprintf("document does not match schema %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Compile compiles a JSON Schema document. Draft 2020-12 is assumed when
// the schema does not declare "$schema".
func Compile(name string, data []byte) (*Validator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultResourceName
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Validator{name: name, schema: s}, nil
}

// CompileNode compiles a schema that is already held as a document node.
func CompileNode(name string, n document.Node) (*Validator, error) {
	return Compile(name, []byte(n.String()))
}

// CompileFile reads and compiles a schema file.
func CompileFile(path string) (*Validator, error) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Compile(path, data)
}

// Name returns the resource name the schema was compiled under.
func (v *Validator) Name() string {
	if v == nil {
		return ""
	}
	return v.name
}

// Validate checks n. A violation is returned as *ValidationError.
func (v *Validator) Validate(n document.Node) error {
	if v == nil || v.schema == nil {
		return errors.New("schema validator is not initialized")
	}
	err := v.schema.Validate(n.ToAny())
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate against %s: %w", v.name, err)
	}
	out := &ValidationError{Schema: v.name}
	collectIssues(ve, &out.Issues)
	if len(out.Issues) == 0 {
		out.Issues = append(out.Issues, Issue{Location: "$", Message: ve.Message})
	}
	return out
}

// collectIssues keeps the leaves of the cause tree; the inner nodes only
// say that a subschema failed.
func collectIssues(ve *jsonschema.ValidationError, out *[]Issue) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Issue{Location: instancePath(ve.InstanceLocation), Message: ve.Message})
		return
	}
	for _, c := range ve.Causes {
		collectIssues(c, out)
	}
}

// instancePath turns a JSON pointer such as "/items/0/id" into the
// "$.items[0].id" form used by reports.
func instancePath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	if ptr == "" || ptr == "/" {
		return "$"
	}
	var b strings.Builder
	b.WriteString("$")
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		if tok != "" && strings.Trim(tok, "0123456789") == "" {
			b.WriteString("[" + tok + "]")
			continue
		}
		if document.IsPlainKey(tok) {
			b.WriteString("." + tok)
			continue
		}
		b.WriteString("[" + strconv.Quote(tok) + "]")
	}
	return b.String()
}
