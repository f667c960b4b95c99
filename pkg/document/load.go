package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxFileBytes bounds how much a single fixture may expand to once read.
const MaxFileBytes = 64 << 20

// ReadFile returns the content of a fixture file, decompressing ".gz" and
// ".zst" files on the fly.
func ReadFile(path string) ([]byte, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, fmt.Errorf("fixture path is empty")
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(p)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip fixture %s: %w", p, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zstd fixture %s: %w", p, err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", p, err)
	}
	if len(data) > MaxFileBytes {
		return nil, fmt.Errorf("fixture %s exceeds %d bytes", p, MaxFileBytes)
	}
	return data, nil
}

// LoadFile reads and parses a fixture. FormatAuto picks the format from the
// file name or content.
func LoadFile(path string, format Format) (Node, error) {
	data, err := ReadFile(path)
	if err != nil {
		return Node{}, err
	}
	if format == "" || format == FormatAuto {
		format = DetectFormat(path, data)
	}
	n, err := Parse(data, format)
	if err != nil {
		return Node{}, withSource(err, path)
	}
	return n, nil
}
