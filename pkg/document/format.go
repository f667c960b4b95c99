package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a document encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat maps a user supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unsupported document format %q (supported: auto, json, xml)", s)
	}
}

// DetectFormat picks a format from the file name, falling back to sniffing
// the first non-blank byte of data.
func DetectFormat(name string, data []byte) Format {
	base := strings.ToLower(filepath.Base(strings.TrimSpace(name)))
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".zst")
	switch filepath.Ext(base) {
	case ".json":
		return FormatJSON
	case ".xml":
		return FormatXML
	}
	trimmed := bytes.TrimLeft(trimBOM(data), " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatJSON
}

// Parse decodes data in the given format. FormatAuto sniffs the content.
func Parse(data []byte, format Format) (Node, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat("", data)
	}
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatXML:
		return ParseXML(data)
	default:
		return Node{}, fmt.Errorf("unsupported document format %q", format)
	}
}

var utf8BOM = []byte("\uFEFF")

// trimBOM drops a leading UTF-8 byte order mark.
func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}
