package document

import (
	"math/big"
	"strings"
)

// decimal is a number literal in normal form: digits * 10^exp, where digits
// has no leading or trailing zeros. Zero has empty digits. Exponents are
// unbounded, so literals big.Rat refuses still compare exactly.
type decimal struct {
	neg    bool
	digits string
	exp    *big.Int
}

func parseDecimal(lit string) (decimal, bool) {
	var d decimal
	s := lit
	if strings.HasPrefix(s, "-") {
		d.neg = true
		s = s[1:]
	}
	mant, expLit := s, "0"
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, expLit = s[:i], s[i+1:]
	}
	intPart, frac, _ := strings.Cut(mant, ".")
	if intPart == "" || strings.Trim(intPart+frac, "0123456789") != "" {
		return decimal{}, false
	}
	exp, ok := new(big.Int).SetString(expLit, 10)
	if !ok {
		return decimal{}, false
	}
	exp.Sub(exp, big.NewInt(int64(len(frac))))

	digits := strings.TrimLeft(intPart+frac, "0")
	trimmed := strings.TrimRight(digits, "0")
	exp.Add(exp, big.NewInt(int64(len(digits)-len(trimmed))))
	d.digits = trimmed
	d.exp = exp
	if d.digits == "" {
		d.neg = false
		d.exp.SetInt64(0)
	}
	return d, true
}

func (d decimal) sign() int {
	switch {
	case d.digits == "":
		return 0
	case d.neg:
		return -1
	default:
		return 1
	}
}

func (d decimal) equal(o decimal) bool {
	return d.neg == o.neg && d.digits == o.digits && d.exp.Cmp(o.exp) == 0
}

// Sign returns -1, 0 or 1 for a number node.
func (n Node) Sign() (int, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	d, ok := parseDecimal(n.text)
	if !ok {
		return 0, false
	}
	return d.sign(), true
}
