package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name used in comparison messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsContainer reports whether k is an array or an object.
func (k Kind) IsContainer() bool {
	return k == KindArray || k == KindObject
}

// Member is one key/value pair of an object node.
type Member struct {
	Key   string
	Value Node
}

// Node is an immutable document tree node. The zero value is JSON null.
//
// Numbers keep their source literal so that reports show what the document
// said, while comparisons are done on the numeric value.
type Node struct {
	kind    Kind
	boolVal bool
	text    string // string value or number literal
	elems   []Node
	members []Member
	index   map[string]int
}

// Null returns the null node.
func Null() Node { return Node{} }

// Bool returns a boolean node.
func Bool(b bool) Node { return Node{kind: KindBool, boolVal: b} }

// String returns a string node.
func String(s string) Node { return Node{kind: KindString, text: s} }

// Int returns a number node holding i.
func Int(i int64) Node { return Node{kind: KindNumber, text: strconv.FormatInt(i, 10)} }

// Float returns a number node holding f in its shortest representation.
func Float(f float64) Node {
	return Node{kind: KindNumber, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// ParseNumber returns a number node for a JSON number literal.
func ParseNumber(lit string) (Node, error) {
	lit = strings.TrimSpace(lit)
	if !isJSONNumber(lit) {
		return Node{}, &ParseError{Format: FormatJSON, Err: errInvalidNumber(lit)}
	}
	return Node{kind: KindNumber, text: lit}, nil
}

// Array returns an array node holding a copy of elems.
func Array(elems ...Node) Node {
	return Node{kind: KindArray, elems: append([]Node{}, elems...)}
}

// Object returns an object node. Member order is preserved; a repeated key
// keeps its first position and takes the last value.
func Object(members ...Member) Node {
	n := Node{
		kind:    KindObject,
		members: make([]Member, 0, len(members)),
		index:   make(map[string]int, len(members)),
	}
	for _, m := range members {
		if i, ok := n.index[m.Key]; ok {
			n.members[i].Value = m.Value
			continue
		}
		n.index[m.Key] = len(n.members)
		n.members = append(n.members, m)
	}
	return n
}

// Kind returns the variant of n.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether n is null.
func (n Node) IsNull() bool { return n.kind == KindNull }

// AsBool returns the boolean value of a boolean node.
func (n Node) AsBool() (bool, bool) {
	if n.kind != KindBool {
		return false, false
	}
	return n.boolVal, true
}

// AsString returns the value of a string node.
func (n Node) AsString() (string, bool) {
	if n.kind != KindString {
		return "", false
	}
	return n.text, true
}

// NumberLiteral returns the source literal of a number node.
func (n Node) NumberLiteral() (string, bool) {
	if n.kind != KindNumber {
		return "", false
	}
	return n.text, true
}

// ScalarText returns the text form of a string or number node.
func (n Node) ScalarText() (string, bool) {
	if n.kind != KindString && n.kind != KindNumber {
		return "", false
	}
	return n.text, true
}

// Float64 returns the value of a number node as float64.
func (n Node) Float64() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.text, 64)
	if err != nil {
		// Out of range literals round to ±Inf or zero.
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// Rat returns the exact value of a number node.
func (n Node) Rat() (*big.Rat, bool) {
	if n.kind != KindNumber {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(n.text)
	return r, ok
}

// IsInteger reports whether n is a number with an integral value.
func (n Node) IsInteger() bool {
	if n.kind != KindNumber {
		return false
	}
	d, ok := parseDecimal(n.text)
	return ok && d.exp.Sign() >= 0
}

// Len returns the number of elements of an array or members of an object.
func (n Node) Len() int {
	switch n.kind {
	case KindArray:
		return len(n.elems)
	case KindObject:
		return len(n.members)
	default:
		return 0
	}
}

// Index returns the i-th element of an array node.
func (n Node) Index(i int) (Node, bool) {
	if n.kind != KindArray || i < 0 || i >= len(n.elems) {
		return Node{}, false
	}
	return n.elems[i], true
}

// Elements returns a copy of the elements of an array node.
func (n Node) Elements() []Node {
	if n.kind != KindArray {
		return nil
	}
	return append([]Node(nil), n.elems...)
}

// Members returns a copy of the members of an object node in document order.
func (n Node) Members() []Member {
	if n.kind != KindObject {
		return nil
	}
	return append([]Member(nil), n.members...)
}

// Keys returns the member keys of an object node in document order.
func (n Node) Keys() []string {
	if n.kind != KindObject {
		return nil
	}
	keys := make([]string, len(n.members))
	for i, m := range n.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the value stored under key in an object node.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindObject {
		return Node{}, false
	}
	i, ok := n.index[key]
	if !ok {
		return Node{}, false
	}
	return n.members[i].Value, true
}

// NumbersEqual reports whether two number nodes hold the same value,
// regardless of how the literals were written.
func NumbersEqual(a, b Node) bool {
	if a.kind != KindNumber || b.kind != KindNumber {
		return false
	}
	if a.text == b.text {
		return true
	}
	ra, okA := a.Rat()
	rb, okB := b.Rat()
	if okA && okB {
		return ra.Cmp(rb) == 0
	}
	da, okA := parseDecimal(a.text)
	db, okB := parseDecimal(b.text)
	return okA && okB && da.equal(db)
}

// Equal reports whether a and b are the same document. Object member order
// is ignored and numbers compare by value.
func Equal(a, b Node) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindString:
		return a.text == b.text
	case KindNumber:
		return NumbersEqual(a, b)
	case KindArray:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			other, ok := b.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders n as compact JSON.
func (n Node) String() string {
	var buf bytes.Buffer
	writeJSON(&buf, n, "", "")
	return buf.String()
}

// Pretty renders n as indented JSON.
func Pretty(n Node) string {
	var buf bytes.Buffer
	writeJSON(&buf, n, "", "  ")
	return buf.String()
}

func writeJSON(buf *bytes.Buffer, n Node, prefix, indent string) {
	switch n.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.boolVal))
	case KindNumber:
		buf.WriteString(n.text)
	case KindString:
		buf.WriteString(quote(n.text))
	case KindArray:
		if len(n.elems) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteByte('[')
		inner := prefix + indent
		for i, e := range n.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, inner, indent)
			writeJSON(buf, e, inner, indent)
		}
		newline(buf, prefix, indent)
		buf.WriteByte(']')
	case KindObject:
		if len(n.members) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteByte('{')
		inner := prefix + indent
		for i, m := range n.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, inner, indent)
			buf.WriteString(quote(m.Key))
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			writeJSON(buf, m.Value, inner, indent)
		}
		newline(buf, prefix, indent)
		buf.WriteByte('}')
	}
}

func newline(buf *bytes.Buffer, prefix, indent string) {
	if indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(prefix)
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// isJSONNumber reports whether s follows the JSON number grammar.
func isJSONNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
