package compare

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError reports a broken fixture or comparator setup: an ambiguous
// keyword, a malformed keyword payload, an invalid pattern. It is never a
// mismatch and stops the comparison.
type ConfigError struct {
	Keyword string
	Path    string
	Err     error
}

func (e *ConfigError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("comparator config")
	if e.Keyword != "" {
		b.WriteString(fmt.Sprintf(" (keyword %q)", e.Keyword))
	}
	if e.Path != "" {
		b.WriteString(" at " + e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func configError(err error, keyword string, path Path) error {
	if err == nil {
		return nil
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	return &ConfigError{Keyword: keyword, Path: path.String(), Err: err}
}

// AmbiguousKeywordError is returned by NewRegistry when two comparators
// could claim the same expected value.
type AmbiguousKeywordError struct {
	First  string
	Second string
}

func (e *AmbiguousKeywordError) Error() string {
	if e.First == e.Second {
		return fmt.Sprintf("keyword %q registered twice", e.First)
	}
	return fmt.Sprintf("keywords %q and %q overlap: one is a prefix of the other", e.First, e.Second)
}

var (
	ErrNilComparator = errors.New("nil keyword comparator")
	ErrEmptyKeyword  = errors.New("empty keyword")

	errEmptyPathKey    = errors.New("empty key in path")
	errMissingDot      = errors.New("missing '.' between path steps")
	errUnclosedBracket = errors.New("unclosed '[' in path")
	errBadIndex        = errors.New("array index must be a non-negative integer or *")
)
