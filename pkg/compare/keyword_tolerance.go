package compare

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// KeywordTolerance is the default keyword of ToleranceComparator.
const KeywordTolerance = "delta:"

// ToleranceComparator accepts a number within a tolerance of a target.
// The payload is TARGET:TOL, where TOL may end with '%' to be relative to
// the target. A payload without TOL compares the target literally.
type ToleranceComparator struct {
	keyword string
}

// NewToleranceComparator returns the comparator for keyword, or the
// default keyword when empty.
func NewToleranceComparator(keyword string) *ToleranceComparator {
	if keyword == "" {
		keyword = KeywordTolerance
	}
	return &ToleranceComparator{keyword: keyword}
}

func (c *ToleranceComparator) Keyword() string { return c.keyword }

func (c *ToleranceComparator) Description() string {
	return c.keyword + "TARGET:TOL accepts |actual-TARGET| <= TOL; TOL may be a percentage"
}

func (c *ToleranceComparator) IsMatch(expected document.Node) bool {
	_, ok := scalarPayload(c.keyword, expected)
	return ok
}

type toleranceSpec struct {
	target    document.Node
	tol       float64
	relative  bool
	rawTol    string
	hasBounds bool
}

func parseToleranceSpec(payload string) (toleranceSpec, error) {
	p := strings.TrimSpace(payload)
	if p == "" {
		return toleranceSpec{}, errors.New("empty tolerance payload, want TARGET:TOL")
	}
	targetLit, tolLit, hasTol := strings.Cut(p, ":")
	target, err := document.ParseNumber(targetLit)
	if err != nil {
		return toleranceSpec{}, fmt.Errorf("tolerance target %q is not a number", strings.TrimSpace(targetLit))
	}
	spec := toleranceSpec{target: target}
	if !hasTol {
		return spec, nil
	}
	tolLit = strings.TrimSpace(tolLit)
	spec.rawTol = tolLit
	if strings.HasSuffix(tolLit, "%") {
		spec.relative = true
		tolLit = strings.TrimSpace(strings.TrimSuffix(tolLit, "%"))
	}
	tol, err := strconv.ParseFloat(tolLit, 64)
	if err != nil || math.IsNaN(tol) || math.IsInf(tol, 0) {
		return toleranceSpec{}, fmt.Errorf("tolerance %q is not a number", spec.rawTol)
	}
	if tol < 0 {
		return toleranceSpec{}, fmt.Errorf("tolerance %q must not be negative", spec.rawTol)
	}
	spec.tol = tol
	spec.hasBounds = true
	return spec, nil
}

func (c *ToleranceComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	payload, _ := scalarPayload(c.keyword, expected)
	spec, err := parseToleranceSpec(payload)
	if err != nil {
		return err
	}
	if actual.Kind() != document.KindNumber {
		result.Failf(path, "type mismatch: expected number, got %s", describe(actual))
		return nil
	}
	if !spec.hasBounds {
		return result.CompareByDefault(path, spec.target, actual)
	}
	target, _ := spec.target.Float64()
	got, _ := actual.Float64()
	tol := spec.tol
	if spec.relative {
		tol = math.Abs(target) * spec.tol / 100
	}
	// small slack so that 0.1+0.2 style literals do not fail on the boundary
	if diff := math.Abs(got - target); diff > tol+tol*1e-12 {
		result.Failf(path, "value %s is not within %s of %s (difference %s)",
			actual, spec.rawTol, spec.target, strconv.FormatFloat(diff, 'g', -1, 64))
	}
	return nil
}
