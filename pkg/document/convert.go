package document

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ToAny converts n into plain Go values: nil, bool, json.Number, string,
// []any and map[string]any. Numbers stay json.Number so that no precision
// is lost on the way to libraries that accept decoded JSON.
func (n Node) ToAny() any {
	switch n.kind {
	case KindNull:
		return nil
	case KindBool:
		return n.boolVal
	case KindNumber:
		return json.Number(n.text)
	case KindString:
		return n.text
	case KindArray:
		out := make([]any, len(n.elems))
		for i, e := range n.elems {
			out[i] = e.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.members))
		for _, m := range n.members {
			out[m.Key] = m.Value.ToAny()
		}
		return out
	default:
		return nil
	}
}

// FromAny builds a Node from decoded JSON style values. Map keys are sorted
// because Go maps carry no order.
func FromAny(v any) (Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Node:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return ParseNumber(t.String())
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Node{}, fmt.Errorf("number %v is not representable in JSON", t)
		}
		return Float(t), nil
	case float32:
		return FromAny(float64(t))
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Node{kind: KindNumber, text: strconv.FormatUint(t, 10)}, nil
	case []any:
		elems := make([]Node, len(t))
		for i, e := range t {
			n, err := FromAny(e)
			if err != nil {
				return Node{}, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = n
		}
		return Node{kind: KindArray, elems: elems}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(keys))
		for _, k := range keys {
			n, err := FromAny(t[k])
			if err != nil {
				return Node{}, fmt.Errorf("%s: %w", k, err)
			}
			members = append(members, Member{Key: k, Value: n})
		}
		return Object(members...), nil
	default:
		return Node{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// MarshalJSON renders n with its member order and number literals intact.
func (n Node) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalJSON parses data into n, keeping member order.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
