package compare

import (
	"fmt"
	"strings"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// KeywordType is the default keyword of TypeComparator.
const KeywordType = "type:"

// TypeComparator checks only the kind of the actual value.
type TypeComparator struct {
	keyword string
}

// NewTypeComparator returns the comparator for keyword, or the default
// keyword when empty.
func NewTypeComparator(keyword string) *TypeComparator {
	if keyword == "" {
		keyword = KeywordType
	}
	return &TypeComparator{keyword: keyword}
}

func (c *TypeComparator) Keyword() string { return c.keyword }

func (c *TypeComparator) Description() string {
	return c.keyword + "NAME checks the value kind: string, number, integer, boolean, null, object, array or any"
}

func (c *TypeComparator) IsMatch(expected document.Node) bool {
	_, ok := scalarPayload(c.keyword, expected)
	return ok
}

func (c *TypeComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	payload, _ := scalarPayload(c.keyword, expected)
	name := strings.ToLower(strings.TrimSpace(payload))
	var ok bool
	switch name {
	case "any":
		ok = true
	case "integer", "int":
		ok = actual.Kind() == document.KindNumber && actual.IsInteger()
	case "bool":
		ok = actual.Kind() == document.KindBool
	default:
		kind, known := kindByName[name]
		if !known {
			return fmt.Errorf("unknown type name %q", payload)
		}
		ok = actual.Kind() == kind
	}
	if !ok {
		result.Failf(path, "type mismatch: expected %s, got %s", name, describe(actual))
	}
	return nil
}

var kindByName = map[string]document.Kind{
	"null":    document.KindNull,
	"boolean": document.KindBool,
	"number":  document.KindNumber,
	"string":  document.KindString,
	"array":   document.KindArray,
	"object":  document.KindObject,
}
