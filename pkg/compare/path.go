package compare

import (
	"strconv"
	"strings"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a node inside a document. It is used for diagnostics only.
// Appending returns a new Path and never mutates the receiver.
type Path struct {
	segs []Segment
}

// Root returns the empty path.
func Root() Path { return Path{} }

// Key returns p extended with an object key.
func (p Path) Key(k string) Path { return p.with(Segment{Key: k}) }

// Index returns p extended with an array index.
func (p Path) Index(i int) Path { return p.with(Segment{Index: i, IsIndex: true}) }

func (p Path) with(s Segment) Path {
	segs := make([]Segment, len(p.segs), len(p.segs)+1)
	copy(segs, p.segs)
	return Path{segs: append(segs, s)}
}

// Segments returns a copy of the path steps.
func (p Path) Segments() []Segment { return append([]Segment(nil), p.segs...) }

// Len returns the number of steps.
func (p Path) Len() int { return len(p.segs) }

// IsRoot reports whether p has no steps.
func (p Path) IsRoot() bool { return len(p.segs) == 0 }

// String renders p as $.items[2].id. The root renders as "$" and keys that
// are not plain identifiers are quoted in brackets, as in $.meta["a.b"].
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p.segs {
		switch {
		case s.IsIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		case document.IsPlainKey(s.Key):
			b.WriteByte('.')
			b.WriteString(s.Key)
		default:
			b.WriteByte('[')
			b.WriteString(strconv.Quote(s.Key))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// pathPattern is a parsed ignore path. A wildcard key step matches any key
// and a wildcard index step matches any index.
type pathPattern struct {
	raw   string
	steps []patternStep
}

type patternStep struct {
	seg      Segment
	wildcard bool
}

func (pp pathPattern) match(p Path) bool {
	if len(pp.steps) != len(p.segs) {
		return false
	}
	for i, st := range pp.steps {
		s := p.segs[i]
		if st.seg.IsIndex != s.IsIndex {
			return false
		}
		if st.wildcard {
			continue
		}
		if s.IsIndex {
			if s.Index != st.seg.Index {
				return false
			}
			continue
		}
		if s.Key != st.seg.Key {
			return false
		}
	}
	return true
}

// parsePathPattern accepts the rendered path form, optionally prefixed with
// "$." and with "*" for any key and "[*]" for any index.
func parsePathPattern(raw string) (pathPattern, error) {
	s := strings.TrimSpace(raw)
	pp := pathPattern{raw: s}
	switch {
	case s == "" || s == "$":
		return pp, nil
	case strings.HasPrefix(s, "$."):
		s = s[2:]
	case strings.HasPrefix(s, "$["):
		s = s[1:]
	}
	expectKey := true
	for s != "" {
		switch {
		case s[0] == '[':
			end, step, err := parseBracket(s)
			if err != nil {
				return pathPattern{}, err
			}
			pp.steps = append(pp.steps, step)
			s = s[end:]
			expectKey = false
		case s[0] == '.':
			if expectKey {
				return pathPattern{}, errEmptyPathKey
			}
			s = s[1:]
			expectKey = true
			if s == "" {
				return pathPattern{}, errEmptyPathKey
			}
		default:
			if !expectKey {
				return pathPattern{}, errMissingDot
			}
			end := strings.IndexAny(s, ".[")
			if end < 0 {
				end = len(s)
			}
			key := s[:end]
			pp.steps = append(pp.steps, patternStep{seg: Segment{Key: key}, wildcard: key == "*"})
			s = s[end:]
			expectKey = false
		}
	}
	return pp, nil
}

func parseBracket(s string) (int, patternStep, error) {
	if strings.HasPrefix(s, `["`) {
		// quoted key; find the closing quote that is followed by ']'
		for i := 2; i < len(s); i++ {
			if s[i] == '\\' {
				i++
				continue
			}
			if s[i] == '"' {
				if i+1 >= len(s) || s[i+1] != ']' {
					return 0, patternStep{}, errUnclosedBracket
				}
				key, err := strconv.Unquote(s[1 : i+1])
				if err != nil {
					return 0, patternStep{}, err
				}
				return i + 2, patternStep{seg: Segment{Key: key}}, nil
			}
		}
		return 0, patternStep{}, errUnclosedBracket
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return 0, patternStep{}, errUnclosedBracket
	}
	inner := strings.TrimSpace(s[1:end])
	if inner == "*" {
		return end + 1, patternStep{seg: Segment{IsIndex: true}, wildcard: true}, nil
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return 0, patternStep{}, errBadIndex
	}
	return end + 1, patternStep{seg: Segment{Index: n, IsIndex: true}}, nil
}
