package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// XML elements are mapped onto nodes as follows:
//
//   - the root element becomes the single member of the top-level object
//   - attributes become members named "@attr"
//   - child elements become members; repeated names collapse into an array
//   - an element with only text becomes a string
//   - text next to attributes or children is kept under "#text"
const (
	xmlAttrPrefix = "@"
	xmlTextKey    = "#text"
)

// ParseXML decodes an XML document into a Node.
func ParseXML(data []byte) (Node, error) {
	data = trimBOM(data)
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errNoRootElement
			}
			return Node{}, &ParseError{Format: FormatXML, Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			if cd, isText := tok.(xml.CharData); isText && len(bytes.TrimSpace(cd)) > 0 {
				return Node{}, &ParseError{Format: FormatXML, Err: errNoRootElement}
			}
			continue
		}
		root, err := decodeXMLElement(dec, start)
		if err != nil {
			return Node{}, &ParseError{Format: FormatXML, Err: err}
		}
		if err := expectXMLEnd(dec); err != nil {
			return Node{}, &ParseError{Format: FormatXML, Err: err}
		}
		return Object(Member{Key: start.Name.Local, Value: root}), nil
	}
}

func expectXMLEnd(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errManyRoots
			}
		case xml.Comment, xml.ProcInst, xml.Directive:
		default:
			return errManyRoots
		}
	}
}

// xmlFields collects element members while keeping first-seen key order.
type xmlFields struct {
	keys   []string
	values map[string][]Node
}

func (f *xmlFields) add(key string, v Node) {
	if f.values == nil {
		f.values = make(map[string][]Node)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = append(f.values[key], v)
}

func (f *xmlFields) node() Node {
	members := make([]Member, 0, len(f.keys))
	for _, k := range f.keys {
		vs := f.values[k]
		if len(vs) == 1 {
			members = append(members, Member{Key: k, Value: vs[0]})
			continue
		}
		members = append(members, Member{Key: k, Value: Array(vs...)})
	}
	return Object(members...)
}

func decodeXMLElement(dec *xml.Decoder, start xml.StartElement) (Node, error) {
	var fields xmlFields
	for _, a := range start.Attr {
		fields.add(xmlAttrPrefix+a.Name.Local, String(a.Value))
	}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return Node{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeXMLElement(dec, t)
			if err != nil {
				return Node{}, err
			}
			fields.add(t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			s := strings.TrimSpace(text.String())
			if len(fields.keys) == 0 {
				return String(s), nil
			}
			if s != "" {
				fields.add(xmlTextKey, String(s))
			}
			return fields.node(), nil
		}
	}
}
