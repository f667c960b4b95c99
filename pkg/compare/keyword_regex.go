package compare

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// KeywordRegex is the default keyword of RegexComparator.
const KeywordRegex = "regex:"

// RegexComparator matches the string form of the actual value against the
// pattern following its keyword. The pattern only has to be found
// somewhere in the value; anchor it to match the whole value.
type RegexComparator struct {
	keyword string
	cache   sync.Map // pattern -> *regexp.Regexp
}

// NewRegexComparator returns the comparator for keyword, or the default
// keyword when empty.
func NewRegexComparator(keyword string) *RegexComparator {
	if keyword == "" {
		keyword = KeywordRegex
	}
	return &RegexComparator{keyword: keyword}
}

func (c *RegexComparator) Keyword() string { return c.keyword }

func (c *RegexComparator) Description() string {
	return c.keyword + "PATTERN finds PATTERN in the actual string or number"
}

func (c *RegexComparator) IsMatch(expected document.Node) bool {
	_, ok := scalarPayload(c.keyword, expected)
	return ok
}

func (c *RegexComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	pattern, _ := scalarPayload(c.keyword, expected)
	re, err := c.compile(pattern)
	if err != nil {
		return err
	}
	s, ok := actual.ScalarText()
	if !ok {
		result.Failf(path, "type mismatch: regex needs a string or number, got %s", describe(actual))
		return nil
	}
	if !re.MatchString(s) {
		result.Failf(path, "actual value '%s' at %s doesn't match expected regex '%s'", s, path, pattern)
	}
	return nil
}

func (c *RegexComparator) compile(pattern string) (*regexp.Regexp, error) {
	if v, ok := c.cache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	c.cache.Store(pattern, re)
	return re, nil
}
