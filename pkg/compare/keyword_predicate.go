package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// KeywordPredicate is the default keyword of PredicateComparator.
const KeywordPredicate = "predicate:"

// PredicateFunc decides whether an actual value satisfies a named check.
type PredicateFunc func(actual document.Node) bool

// PredicateOption configures a PredicateComparator.
type PredicateOption func(map[string]PredicateFunc)

// WithPredicate adds or replaces a named predicate.
func WithPredicate(name string, fn PredicateFunc) PredicateOption {
	return func(m map[string]PredicateFunc) {
		if fn != nil && strings.TrimSpace(name) != "" {
			m[strings.TrimSpace(name)] = fn
		}
	}
}

// PredicateComparator applies a predicate named after its keyword.
type PredicateComparator struct {
	keyword    string
	predicates map[string]PredicateFunc
}

// NewPredicateComparator returns the comparator for keyword, or the
// default keyword when empty, with the built-in predicates plus opts.
func NewPredicateComparator(keyword string, opts ...PredicateOption) *PredicateComparator {
	if keyword == "" {
		keyword = KeywordPredicate
	}
	preds := map[string]PredicateFunc{
		"notNull":       func(n document.Node) bool { return !n.IsNull() },
		"notEmpty":      notEmpty,
		"positive":      func(n document.Node) bool { return sign(n) > 0 },
		"nonNegative":   func(n document.Node) bool { s := sign(n); return s == 0 || s > 0 },
		"emptyArray":    func(n document.Node) bool { return n.Kind() == document.KindArray && n.Len() == 0 },
		"nonEmptyArray": func(n document.Node) bool { return n.Kind() == document.KindArray && n.Len() > 0 },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(preds)
		}
	}
	return &PredicateComparator{keyword: keyword, predicates: preds}
}

func (c *PredicateComparator) Keyword() string { return c.keyword }

func (c *PredicateComparator) Description() string {
	return c.keyword + "NAME applies a named check: " + strings.Join(c.Names(), ", ")
}

// Names returns the predicate names in sorted order.
func (c *PredicateComparator) Names() []string {
	names := make([]string, 0, len(c.predicates))
	for n := range c.predicates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *PredicateComparator) IsMatch(expected document.Node) bool {
	_, ok := scalarPayload(c.keyword, expected)
	return ok
}

func (c *PredicateComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	payload, _ := scalarPayload(c.keyword, expected)
	name := strings.TrimSpace(payload)
	fn, ok := c.predicates[name]
	if !ok {
		return fmt.Errorf("unknown predicate %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	if !fn(actual) {
		result.Failf(path, "value %s does not satisfy predicate %s", actual, name)
	}
	return nil
}

func notEmpty(n document.Node) bool {
	switch n.Kind() {
	case document.KindNull:
		return false
	case document.KindString:
		s, _ := n.AsString()
		return s != ""
	case document.KindArray, document.KindObject:
		return n.Len() > 0
	default:
		return true
	}
}

// sign returns -1, 0 or 1 for numbers and -2 for anything else.
func sign(n document.Node) int {
	s, ok := n.Sign()
	if !ok {
		return -2
	}
	return s
}
