package document

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports a document that could not be turned into a Node.
// Source is the file name when the document came from disk.
type ParseError struct {
	Format Format
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	src := strings.TrimSpace(e.Source)
	if src == "" {
		return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("parse %s %s: %v", e.Format, src, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var (
	errEmptyDocument = errors.New("empty document")
	errTrailingData  = errors.New("unexpected data after top-level value")
	errNoRootElement = errors.New("no root element")
	errManyRoots     = errors.New("unexpected content after root element")
)

func errInvalidNumber(lit string) error {
	return fmt.Errorf("invalid number literal %q", lit)
}

func withSource(err error, source string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Source == "" {
		cp := *pe
		cp.Source = source
		return &cp
	}
	return err
}
