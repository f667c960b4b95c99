package compare

import (
	"errors"
	"fmt"
	"sync"

	"github.com/r9s-ai/respcheck/pkg/document"
	"github.com/r9s-ai/respcheck/pkg/schema"
)

// KeywordSchema is the default keyword of SchemaComparator.
const KeywordSchema = "schema:"

// SchemaComparator validates the actual subtree against an inline JSON
// Schema written after its keyword.
type SchemaComparator struct {
	keyword string
	cache   sync.Map // payload -> *schema.Validator
}

// NewSchemaComparator returns the comparator for keyword, or the default
// keyword when empty.
func NewSchemaComparator(keyword string) *SchemaComparator {
	if keyword == "" {
		keyword = KeywordSchema
	}
	return &SchemaComparator{keyword: keyword}
}

func (c *SchemaComparator) Keyword() string { return c.keyword }

func (c *SchemaComparator) Description() string {
	return c.keyword + `{"type":...} validates the value against an inline JSON Schema`
}

func (c *SchemaComparator) IsMatch(expected document.Node) bool {
	_, ok := scalarPayload(c.keyword, expected)
	return ok
}

func (c *SchemaComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	payload, _ := scalarPayload(c.keyword, expected)
	v, err := c.validator(payload)
	if err != nil {
		return err
	}
	err = v.Validate(actual)
	if err == nil {
		return nil
	}
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for _, is := range ve.Issues {
		result.Failf(path, "schema violation at %s: %s", is.Location, is.Message)
	}
	return nil
}

func (c *SchemaComparator) validator(payload string) (*schema.Validator, error) {
	if v, ok := c.cache.Load(payload); ok {
		return v.(*schema.Validator), nil
	}
	v, err := schema.Compile("inline.json", []byte(payload))
	if err != nil {
		return nil, fmt.Errorf("invalid inline schema: %w", err)
	}
	c.cache.Store(payload, v)
	return v, nil
}
