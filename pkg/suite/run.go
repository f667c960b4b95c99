package suite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/document"
	"github.com/r9s-ai/respcheck/pkg/schema"
)

// Status is the verdict of one case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
	StatusSkipped Status = "skipped"
)

// CaseError wraps a problem that kept a case from producing a verdict:
// an unreadable fixture, a broken schema, a comparator ConfigError.
type CaseError struct {
	Case string
	Err  error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("case %q: %v", e.Case, e.Err)
}

func (e *CaseError) Unwrap() error { return e.Err }

// CaseResult is the outcome of one case. Err is set only when Status is
// StatusErrored.
type CaseResult struct {
	Name     string            `json:"name"`
	Status   Status            `json:"status"`
	Failures []compare.Failure `json:"failures,omitempty"`
	Err      error             `json:"-"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
}

// Summary aggregates the case results of one suite run, in manifest order.
type Summary struct {
	Name     string        `json:"name,omitempty"`
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Errored  int           `json:"errored"`
	Skipped  int           `json:"skipped"`
	Cases    []CaseResult  `json:"cases"`
	Duration time.Duration `json:"duration_ns"`
}

// OK reports whether no case failed or errored.
func (s Summary) OK() bool { return s.Failed == 0 && s.Errored == 0 }

// RunOptions are the run-wide settings. Case and manifest settings take
// precedence over Mode; IgnorePaths are added to every case.
type RunOptions struct {
	Mode        compare.Mode
	IgnorePaths []string
	// Parallelism caps concurrently running cases; <= 0 means 1.
	Parallelism int
	// FailFast stops starting new cases after the first failure or error.
	FailFast bool
}

var errStop = errors.New("fail fast")

// Run compares every case. Each case gets its own comparator and Result,
// so reg must be safe for concurrent use, which built-in comparators are.
// The returned error is non-nil only when ctx is cancelled.
func Run(ctx context.Context, s *Suite, reg *compare.Registry, opts RunOptions) (Summary, error) {
	start := time.Now()
	sum := Summary{Name: s.Name, Total: len(s.Cases), Cases: make([]CaseResult, len(s.Cases))}
	for i, c := range s.Cases {
		sum.Cases[i] = CaseResult{Name: c.Name, Status: StatusSkipped}
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, c := range s.Cases {
		if c.Skip {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := runCase(s, c, reg, opts)
			sum.Cases[i] = res
			if opts.FailFast && res.Status != StatusPassed {
				return errStop
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range sum.Cases {
		switch r.Status {
		case StatusPassed:
			sum.Passed++
		case StatusFailed:
			sum.Failed++
		case StatusErrored:
			sum.Errored++
		default:
			sum.Skipped++
		}
	}
	sum.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

func runCase(s *Suite, c Case, reg *compare.Registry, opts RunOptions) CaseResult {
	start := time.Now()
	res := CaseResult{Name: c.Name}
	failures, err := evaluate(s, c, reg, opts)
	res.Duration = time.Since(start)
	switch {
	case err != nil:
		res.Status = StatusErrored
		res.Err = &CaseError{Case: c.Name, Err: err}
		res.Error = err.Error()
	case len(failures) > 0:
		res.Status = StatusFailed
		res.Failures = failures
	default:
		res.Status = StatusPassed
	}
	return res
}

func evaluate(s *Suite, c Case, reg *compare.Registry, opts RunOptions) ([]compare.Failure, error) {
	mode := opts.Mode
	if m := strings.TrimSpace(c.Mode); m != "" {
		parsed, err := compare.ParseMode(m)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}
	ignore := append(append([]string(nil), opts.IgnorePaths...), c.IgnorePaths...)
	cmp, err := compare.New(reg, compare.WithMode(mode), compare.WithIgnorePaths(ignore...))
	if err != nil {
		return nil, err
	}

	format, err := document.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	expected, err := document.LoadFile(s.resolve(c.Expected), format)
	if err != nil {
		return nil, err
	}
	actual, err := document.LoadFile(s.resolve(c.Actual), format)
	if err != nil {
		return nil, err
	}
	if sel := strings.TrimSpace(c.Select); sel != "" {
		narrowed, ok := document.Narrow(actual, sel)
		if !ok {
			return []compare.Failure{{Path: sel, Message: "select path matched nothing"}}, nil
		}
		actual = narrowed
	}

	var failures []compare.Failure
	if p := strings.TrimSpace(c.Schema); p != "" {
		failures, err = SchemaFailures(s.resolve(p), actual)
		if err != nil {
			return nil, err
		}
	}

	rep, err := cmp.Compare(expected, actual)
	if err != nil {
		return nil, err
	}
	return append(failures, rep.Failures...), nil
}

// SchemaFailures validates n against the JSON Schema file at path and
// turns each violation into a failure at the violating location.
func SchemaFailures(path string, n document.Node) ([]compare.Failure, error) {
	v, err := schema.CompileFile(path)
	if err != nil {
		return nil, err
	}
	verr := v.Validate(n)
	if verr == nil {
		return nil, nil
	}
	var ve *schema.ValidationError
	if !errors.As(verr, &ve) {
		return nil, verr
	}
	out := make([]compare.Failure, 0, len(ve.Issues))
	for _, is := range ve.Issues {
		out = append(out, compare.Failure{Path: is.Location, Message: "schema violation: " + is.Message})
	}
	return out, nil
}
