package compare

import "github.com/r9s-ai/respcheck/pkg/document"

// KeywordIgnore is the default keyword of IgnoreComparator.
const KeywordIgnore = "skip"

// IgnoreComparator accepts any actual value. A reason may follow the
// keyword after a colon ("skip:generated id").
type IgnoreComparator struct {
	keyword string
}

// NewIgnoreComparator returns the comparator for keyword, or the default
// keyword when empty.
func NewIgnoreComparator(keyword string) *IgnoreComparator {
	if keyword == "" {
		keyword = KeywordIgnore
	}
	return &IgnoreComparator{keyword: keyword}
}

func (c *IgnoreComparator) Keyword() string { return c.keyword }

func (c *IgnoreComparator) Description() string {
	return c.keyword + " accepts any value, including a missing type match"
}

func (c *IgnoreComparator) IsMatch(expected document.Node) bool {
	_, ok := scalarPayload(c.keyword, expected)
	return ok
}

func (c *IgnoreComparator) Compare(Path, document.Node, document.Node, *Result) error {
	return nil
}
