package compare

import (
	"github.com/r9s-ai/respcheck/pkg/document"
)

// Default markers for the set-style array comparators.
const (
	KeywordUnordered = "array:unordered"
	KeywordContains  = "array:contains"
)

// UnorderedArrayComparator matches an expected array marked with its
// keyword as first element against the actual array as a set: every
// expected element must consume one distinct actual element and no actual
// element may be left over.
type UnorderedArrayComparator struct {
	keyword string
}

// NewUnorderedArrayComparator returns the comparator for keyword, or the
// default keyword when empty.
func NewUnorderedArrayComparator(keyword string) *UnorderedArrayComparator {
	if keyword == "" {
		keyword = KeywordUnordered
	}
	return &UnorderedArrayComparator{keyword: keyword}
}

func (c *UnorderedArrayComparator) Keyword() string { return c.keyword }

func (c *UnorderedArrayComparator) Description() string {
	return `["` + c.keyword + `", ...] matches the remaining elements in any order; no extra actual elements`
}

func (c *UnorderedArrayComparator) IsMatch(expected document.Node) bool {
	return arrayMarker(c.keyword, expected)
}

func (c *UnorderedArrayComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	if actual.Kind() != document.KindArray {
		result.Fail(path, kindMismatch(expected, actual))
		return nil
	}
	return matchUnordered(path, expected.Elements()[1:], actual, result, true)
}

// ContainsArrayComparator requires every marked expected element to match a
// distinct actual element; extra actual elements are allowed.
type ContainsArrayComparator struct {
	keyword string
}

// NewContainsArrayComparator returns the comparator for keyword, or the
// default keyword when empty.
func NewContainsArrayComparator(keyword string) *ContainsArrayComparator {
	if keyword == "" {
		keyword = KeywordContains
	}
	return &ContainsArrayComparator{keyword: keyword}
}

func (c *ContainsArrayComparator) Keyword() string { return c.keyword }

func (c *ContainsArrayComparator) Description() string {
	return `["` + c.keyword + `", ...] requires the remaining elements somewhere in the actual array`
}

func (c *ContainsArrayComparator) IsMatch(expected document.Node) bool {
	return arrayMarker(c.keyword, expected)
}

func (c *ContainsArrayComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	if actual.Kind() != document.KindArray {
		result.Fail(path, kindMismatch(expected, actual))
		return nil
	}
	return matchUnordered(path, expected.Elements()[1:], actual, result, false)
}

// matchUnordered pairs expected elements with actual elements so that as
// many expected elements as possible are matched (maximum bipartite
// matching). Unmatched expected elements are reported at path; surplus
// actual elements at their own index when reportSurplus is set.
func matchUnordered(path Path, expected []document.Node, actual document.Node, result *Result, reportSurplus bool) error {
	actualElems := actual.Elements()
	edges := make([][]int, len(expected))
	for i, e := range expected {
		for j, a := range actualElems {
			ok, err := result.Matches(path.Index(j), e, a)
			if err != nil {
				return err
			}
			if ok {
				edges[i] = append(edges[i], j)
			}
		}
	}

	owner := make([]int, len(actualElems))
	for j := range owner {
		owner[j] = -1
	}
	var augment func(i int, seen []bool) bool
	augment = func(i int, seen []bool) bool {
		for _, j := range edges[i] {
			if seen[j] {
				continue
			}
			seen[j] = true
			if owner[j] < 0 || augment(owner[j], seen) {
				owner[j] = i
				return true
			}
		}
		return false
	}
	matched := make([]bool, len(expected))
	for i := range expected {
		matched[i] = augment(i, make([]bool, len(actualElems)))
	}

	for i, e := range expected {
		if !matched[i] {
			result.Failf(path, "no actual element matches expected %s", e)
		}
	}
	if !reportSurplus {
		return nil
	}
	for j, a := range actualElems {
		if owner[j] < 0 {
			result.Failf(path.Index(j), "unexpected array element %s", a)
		}
	}
	return nil
}
