package compare

import (
	"fmt"
	"strings"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// KeywordComparator is one comparison strategy selected by a reserved
// keyword in the expected document.
//
// IsMatch must be cheap and must not panic for any node. Compare records
// mismatches into result and returns an error only for configuration
// problems such as a malformed payload.
type KeywordComparator interface {
	Keyword() string
	IsMatch(expected document.Node) bool
	Compare(path Path, expected, actual document.Node, result *Result) error
}

// Describer is implemented by comparators that can explain their keyword.
type Describer interface {
	Description() string
}

// Registry resolves expected nodes to keyword comparators. It is immutable
// once built and safe for concurrent use.
type Registry struct {
	comparators []KeywordComparator
}

// NewRegistry builds a registry. Comparators are tried in the given order.
// Two keywords that are equal, or where one is a prefix of the other, are
// rejected with *AmbiguousKeywordError.
func NewRegistry(comparators ...KeywordComparator) (*Registry, error) {
	out := make([]KeywordComparator, 0, len(comparators))
	for i, c := range comparators {
		if c == nil {
			return nil, &ConfigError{Err: fmt.Errorf("comparator #%d: %w", i, ErrNilComparator)}
		}
		kw := c.Keyword()
		if strings.TrimSpace(kw) == "" {
			return nil, &ConfigError{Err: fmt.Errorf("comparator #%d (%T): %w", i, c, ErrEmptyKeyword)}
		}
		for _, prev := range out {
			pk := prev.Keyword()
			if strings.HasPrefix(kw, pk) || strings.HasPrefix(pk, kw) {
				return nil, &AmbiguousKeywordError{First: pk, Second: kw}
			}
		}
		out = append(out, c)
	}
	return &Registry{comparators: out}, nil
}

// Resolve returns the first comparator that claims expected.
func (r *Registry) Resolve(expected document.Node) (KeywordComparator, bool) {
	if r == nil {
		return nil, false
	}
	for _, c := range r.comparators {
		if c.IsMatch(expected) {
			return c, true
		}
	}
	return nil, false
}

// Comparators returns the registered comparators in resolution order.
func (r *Registry) Comparators() []KeywordComparator {
	if r == nil {
		return nil
	}
	return append([]KeywordComparator(nil), r.comparators...)
}

// Keywords returns the registered keywords in resolution order.
func (r *Registry) Keywords() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.comparators))
	for i, c := range r.comparators {
		out[i] = c.Keyword()
	}
	return out
}

// KeywordInfo describes one registered keyword.
type KeywordInfo struct {
	Keyword     string `json:"keyword"`
	Description string `json:"description,omitempty"`
}

// Describe lists the registered keywords with their descriptions.
func (r *Registry) Describe() []KeywordInfo {
	cs := r.Comparators()
	out := make([]KeywordInfo, 0, len(cs))
	for _, c := range cs {
		info := KeywordInfo{Keyword: c.Keyword()}
		if d, ok := c.(Describer); ok {
			info.Description = d.Description()
		}
		out = append(out, info)
	}
	return out
}

// scalarPayload matches a string node against kw. Keywords ending in ':'
// take the rest of the string as payload. Other keywords match the bare
// word or the word followed by ':' and a payload.
func scalarPayload(kw string, n document.Node) (string, bool) {
	s, ok := n.AsString()
	if !ok || kw == "" {
		return "", false
	}
	if strings.HasSuffix(kw, ":") {
		if !strings.HasPrefix(s, kw) {
			return "", false
		}
		return s[len(kw):], true
	}
	if s == kw {
		return "", true
	}
	if strings.HasPrefix(s, kw+":") {
		return s[len(kw)+1:], true
	}
	return "", false
}

// arrayMarker reports whether n is an array whose first element is the
// marker string kw.
func arrayMarker(kw string, n document.Node) bool {
	if n.Kind() != document.KindArray || kw == "" {
		return false
	}
	first, ok := n.Index(0)
	if !ok {
		return false
	}
	s, ok := first.AsString()
	return ok && s == kw
}
