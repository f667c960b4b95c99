package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON decodes a single JSON value. Object member order is kept and
// number literals are preserved verbatim.
func ParseJSON(data []byte) (Node, error) {
	data = trimBOM(data)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeJSONValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
			if len(bytes.TrimSpace(data)) == 0 {
				err = errEmptyDocument
			}
		}
		return Node{}, &ParseError{Format: FormatJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return Node{}, &ParseError{Format: FormatJSON, Err: err}
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return Node{}, fmt.Errorf("unexpected delimiter %q at offset %d", t, dec.InputOffset())
		}
	case string:
		return String(t), nil
	case json.Number:
		return Node{kind: KindNumber, text: t.String()}, nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Node{}, fmt.Errorf("unexpected token %v at offset %d", tok, dec.InputOffset())
	}
}

func decodeJSONObject(dec *json.Decoder) (Node, error) {
	members := make([]Member, 0, 8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Node{}, fmt.Errorf("object key must be a string at offset %d", dec.InputOffset())
		}
		v, err := decodeJSONValue(dec)
		if err != nil {
			return Node{}, err
		}
		members = append(members, Member{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return Object(members...), nil
}

func decodeJSONArray(dec *json.Decoder) (Node, error) {
	elems := make([]Node, 0, 8)
	for dec.More() {
		v, err := decodeJSONValue(dec)
		if err != nil {
			return Node{}, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return Node{kind: KindArray, elems: elems}, nil
}
