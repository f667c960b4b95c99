package compare

import (
	"fmt"
	"strings"
	"sync"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// Mode selects how objects and arrays without a keyword are compared.
type Mode string

const (
	// ModeStrictOrder allows extra actual fields and compares arrays in order.
	ModeStrictOrder Mode = "strict_order"
	// ModeLenient allows extra actual fields and compares arrays as sets.
	ModeLenient Mode = "lenient"
	// ModeStrict rejects extra actual fields and compares arrays in order.
	ModeStrict Mode = "strict"
	// ModeNonExtensible rejects extra actual fields and compares arrays as sets.
	ModeNonExtensible Mode = "non_extensible"
)

// ParseMode maps a mode name to a Mode. An empty name is ModeStrictOrder.
func ParseMode(s string) (Mode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "-", "_")
	switch Mode(v) {
	case "", ModeStrictOrder:
		return ModeStrictOrder, nil
	case ModeLenient, ModeStrict, ModeNonExtensible:
		return Mode(v), nil
	default:
		return "", fmt.Errorf("unknown compare mode %q (supported: strict_order, lenient, strict, non_extensible)", s)
	}
}

// Extensible reports whether actual objects may carry fields the expected
// object does not name.
func (m Mode) Extensible() bool {
	return m != ModeStrict && m != ModeNonExtensible
}

// OrderedArrays reports whether arrays without a keyword compare by index.
func (m Mode) OrderedArrays() bool {
	return m != ModeLenient && m != ModeNonExtensible
}

type options struct {
	mode   Mode
	ignore []string
}

// Option configures a Comparator.
type Option func(*options)

// WithMode sets the comparison mode.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithIgnorePaths skips the given paths. Patterns use the rendered path
// form; "*" matches any key and "[*]" any index.
func WithIgnorePaths(patterns ...string) Option {
	return func(o *options) { o.ignore = append(o.ignore, patterns...) }
}

// Comparator walks an expected document against an actual one. It is
// immutable and can be shared between goroutines; each Compare call owns
// its own Result.
type Comparator struct {
	reg    *Registry
	mode   Mode
	ignore []pathPattern
}

var literalComparator = &Comparator{mode: ModeStrictOrder}

// New returns a Comparator resolving keywords through reg. A nil reg means
// no keywords.
func New(reg *Registry, opts ...Option) (*Comparator, error) {
	o := options{mode: ModeStrictOrder}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	mode, err := ParseMode(string(o.mode))
	if err != nil {
		return nil, err
	}
	c := &Comparator{reg: reg, mode: mode}
	for _, raw := range o.ignore {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		pp, err := parsePathPattern(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore path %q: %w", raw, err)
		}
		c.ignore = append(c.ignore, pp)
	}
	return c, nil
}

var defaultComparator = sync.OnceValues(func() (*Comparator, error) {
	reg, err := BuildRegistry(DefaultVocabulary())
	if err != nil {
		return nil, err
	}
	return New(reg)
})

// Default returns a Comparator using the default keyword vocabulary.
func Default() (*Comparator, error) { return defaultComparator() }

// Compare compares expected against actual with the default vocabulary.
func Compare(expected, actual document.Node) (Report, error) {
	c, err := Default()
	if err != nil {
		return Report{}, err
	}
	return c.Compare(expected, actual)
}

// Registry returns the keyword registry in use.
func (c *Comparator) Registry() *Registry { return c.reg }

// Mode returns the comparison mode.
func (c *Comparator) Mode() Mode { return c.mode }

// Compare walks expected against actual and returns every mismatch found.
// An error means the expected document or the keyword setup is broken.
func (c *Comparator) Compare(expected, actual document.Node) (Report, error) {
	r := newResult(c)
	if err := c.walk(Root(), expected, actual, r); err != nil {
		return Report{}, err
	}
	return r.Report(), nil
}

// CompareAt is Compare for a subtree located at base.
func (c *Comparator) CompareAt(base Path, expected, actual document.Node) (Report, error) {
	r := newResult(c)
	if err := c.walk(base, expected, actual, r); err != nil {
		return Report{}, err
	}
	return r.Report(), nil
}

func (c *Comparator) ignored(p Path) bool {
	for _, pp := range c.ignore {
		if pp.match(p) {
			return true
		}
	}
	return false
}

// walk offers expected to the registry first; a claiming comparator decides
// alone for the whole subtree.
func (c *Comparator) walk(path Path, expected, actual document.Node, r *Result) error {
	if c.ignored(path) {
		return nil
	}
	if kc, ok := c.reg.Resolve(expected); ok {
		return configError(kc.Compare(path, expected, actual, r), kc.Keyword(), path)
	}
	return c.walkDefault(path, expected, actual, r)
}

func (c *Comparator) walkDefault(path Path, expected, actual document.Node, r *Result) error {
	switch expected.Kind() {
	case document.KindObject:
		return c.walkObject(path, expected, actual, r)
	case document.KindArray:
		if actual.Kind() != document.KindArray {
			r.Fail(path, kindMismatch(expected, actual))
			return nil
		}
		if !c.mode.OrderedArrays() {
			return matchUnordered(path, expected.Elements(), actual, r, true)
		}
		return c.walkArray(path, expected, actual, r)
	case document.KindNull, document.KindBool, document.KindNumber, document.KindString:
		compareLiteral(path, expected, actual, r)
		return nil
	default:
		return fmt.Errorf("unknown node kind %v at %s", expected.Kind(), path)
	}
}

func (c *Comparator) walkObject(path Path, expected, actual document.Node, r *Result) error {
	if actual.Kind() != document.KindObject {
		r.Fail(path, kindMismatch(expected, actual))
		return nil
	}
	for _, m := range expected.Members() {
		child := path.Key(m.Key)
		av, ok := actual.Get(m.Key)
		if !ok {
			if !c.ignored(child) {
				r.Fail(child, "field missing")
			}
			continue
		}
		if err := c.walk(child, m.Value, av, r); err != nil {
			return err
		}
	}
	if c.mode.Extensible() {
		return nil
	}
	for _, k := range actual.Keys() {
		if _, ok := expected.Get(k); ok {
			continue
		}
		child := path.Key(k)
		if !c.ignored(child) {
			r.Fail(child, "unexpected field")
		}
	}
	return nil
}

func (c *Comparator) walkArray(path Path, expected, actual document.Node, r *Result) error {
	el, al := expected.Len(), actual.Len()
	if el != al {
		r.Failf(path, "array length mismatch: expected %d, got %d", el, al)
	}
	n := min(el, al)
	for i := 0; i < n; i++ {
		e, _ := expected.Index(i)
		a, _ := actual.Index(i)
		if err := c.walk(path.Index(i), e, a, r); err != nil {
			return err
		}
	}
	return nil
}

// compareLiteral checks scalar equality. Numbers compare by value.
func compareLiteral(path Path, expected, actual document.Node, r *Result) {
	if expected.Kind() != actual.Kind() {
		r.Fail(path, kindMismatch(expected, actual))
		return
	}
	if !document.Equal(expected, actual) {
		r.Failf(path, "value mismatch: expected %s, got %s", expected, actual)
	}
}

func kindMismatch(expected, actual document.Node) string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", describe(expected), describe(actual))
}

// describe names the kind of n, with the value for scalars.
func describe(n document.Node) string {
	if n.Kind().IsContainer() || n.IsNull() {
		return n.Kind().String()
	}
	return n.Kind().String() + " " + n.String()
}
