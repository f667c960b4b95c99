package document

import (
	"strconv"
	"strings"
	"unicode"
)

// Select returns the nodes matched by a restricted JSONPath expression.
// Supported syntax:
// - $ (the root itself)
// - $.a.b.c
// - $.items[0].x, $[1]
// - $.items[*].x (every element)
//
// The boolean is false when the path is malformed or a named step does not
// exist. A wildcard over elements that lack the rest of the path skips them.
func Select(root Node, path string) ([]Node, bool) {
	p := strings.TrimSpace(path)
	if p == "$" {
		return []Node{root}, true
	}
	if !strings.HasPrefix(p, "$.") && !strings.HasPrefix(p, "$[") {
		return nil, false
	}
	p = strings.TrimPrefix(strings.TrimPrefix(p, "$"), ".")
	parts := strings.Split(p, ".")
	return collectNodes(root, parts)
}

// SelectOne is Select for paths that must match exactly one node.
func SelectOne(root Node, path string) (Node, bool) {
	nodes, ok := Select(root, path)
	if !ok || len(nodes) != 1 {
		return Node{}, false
	}
	return nodes[0], true
}

// Narrow applies path to root for comparison. A path with a wildcard
// always yields an array of the matches; otherwise the single match is
// returned as is.
func Narrow(root Node, path string) (Node, bool) {
	nodes, ok := Select(root, path)
	if !ok {
		return Node{}, false
	}
	if strings.Contains(path, "[*]") {
		return Array(nodes...), true
	}
	if len(nodes) != 1 {
		return Node{}, false
	}
	return nodes[0], true
}

func collectNodes(cur Node, parts []string) ([]Node, bool) {
	if len(parts) == 0 {
		return []Node{cur}, true
	}
	part := strings.TrimSpace(parts[0])
	if part == "" {
		return nil, false
	}
	name, steps, ok := splitSteps(part)
	if !ok {
		return nil, false
	}
	if name != "" {
		next, ok := cur.Get(name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return collectSteps(cur, steps, parts[1:])
}

// collectSteps applies the bracket steps of one path part before moving on
// to the remaining parts.
func collectSteps(cur Node, steps []indexStep, rest []string) ([]Node, bool) {
	if len(steps) == 0 {
		return collectNodes(cur, rest)
	}
	if cur.Kind() != KindArray {
		return nil, false
	}
	step := steps[0]
	if step.star {
		out := make([]Node, 0, cur.Len())
		for _, item := range cur.elems {
			vals, ok := collectSteps(item, steps[1:], rest)
			if !ok {
				continue
			}
			out = append(out, vals...)
		}
		return out, true
	}
	item, ok := cur.Index(step.idx)
	if !ok {
		return nil, false
	}
	return collectSteps(item, steps[1:], rest)
}

type indexStep struct {
	idx  int
	star bool
}

func splitSteps(s string) (name string, steps []indexStep, ok bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return s, nil, true
	}
	name = s[:open]
	rest := s[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		inner := strings.TrimSpace(rest[1:end])
		rest = rest[end+1:]
		if inner == "*" {
			steps = append(steps, indexStep{star: true})
			continue
		}
		n, err := strconv.Atoi(inner)
		if err != nil || n < 0 {
			return "", nil, false
		}
		steps = append(steps, indexStep{idx: n})
	}
	return name, steps, true
}

// IsPlainKey reports whether k can be written after a dot in a rendered
// path. Other keys are quoted in brackets.
func IsPlainKey(k string) bool {
	if k == "" || k == "*" {
		return false
	}
	for _, r := range k {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '_', r == '-', r == '@', r == '#', r == ':', r == '$':
		default:
			return false
		}
	}
	return true
}
