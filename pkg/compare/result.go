package compare

import (
	"fmt"
	"strings"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// Failure is one mismatch found during a comparison.
type Failure struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (f Failure) String() string { return f.Path + ": " + f.Message }

// Report is the outcome of a top-level comparison.
type Report struct {
	Passed   bool      `json:"passed"`
	Failures []Failure `json:"failures"`
}

// String renders the failures one per line in discovery order.
func (r Report) String() string {
	lines := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

// Result accumulates the failures of one comparison. It is owned by a
// single call and must not be shared between goroutines.
//
// The zero Result is usable; it compares literally with no keywords.
type Result struct {
	failures []Failure
	cmp      *Comparator
}

func newResult(c *Comparator) *Result { return &Result{cmp: c} }

func (r *Result) comparator() *Comparator {
	if r.cmp == nil {
		return literalComparator
	}
	return r.cmp
}

// Fail records a mismatch at path.
func (r *Result) Fail(path Path, message string) {
	r.failures = append(r.failures, Failure{Path: path.String(), Message: message})
}

// Failf records a formatted mismatch at path.
func (r *Result) Failf(path Path, format string, args ...any) {
	r.Fail(path, fmt.Sprintf(format, args...))
}

// CompareByDefault runs the structural comparison for expected without
// offering it to the keyword registry first. Children are still resolved
// normally.
func (r *Result) CompareByDefault(path Path, expected, actual document.Node) error {
	return r.comparator().walkDefault(path, expected, actual, r)
}

// Matches compares expected with actual in isolation, using the same
// keywords and options, and reports whether they match. Nothing is
// recorded in r.
func (r *Result) Matches(path Path, expected, actual document.Node) (bool, error) {
	sub := newResult(r.cmp)
	if err := sub.comparator().walk(path, expected, actual, sub); err != nil {
		return false, err
	}
	return sub.IsSuccessful(), nil
}

// IsSuccessful reports whether no failure was recorded.
func (r *Result) IsSuccessful() bool { return len(r.failures) == 0 }

// Failures returns a copy of the recorded failures in discovery order.
func (r *Result) Failures() []Failure { return append([]Failure(nil), r.failures...) }

// FailureReport renders the failures one per line as "path: message".
func (r *Result) FailureReport() string { return r.Report().String() }

// Report returns the verdict together with the failures.
func (r *Result) Report() Report {
	return Report{
		Passed:   r.IsSuccessful(),
		Failures: append(make([]Failure, 0, len(r.failures)), r.failures...),
	}
}
