package compare

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/r9s-ai/respcheck/pkg/document"
)

// KeywordUUID is the default keyword of UUIDComparator.
const KeywordUUID = "uuid"

// UUIDComparator requires a string that parses as a UUID. "uuid:v4" also
// pins the version.
type UUIDComparator struct {
	keyword string
}

// NewUUIDComparator returns the comparator for keyword, or the default
// keyword when empty.
func NewUUIDComparator(keyword string) *UUIDComparator {
	if keyword == "" {
		keyword = KeywordUUID
	}
	return &UUIDComparator{keyword: keyword}
}

func (c *UUIDComparator) Keyword() string { return c.keyword }

func (c *UUIDComparator) Description() string {
	return c.keyword + "[:vN] requires a UUID string, optionally of version N"
}

func (c *UUIDComparator) IsMatch(expected document.Node) bool {
	_, ok := scalarPayload(c.keyword, expected)
	return ok
}

func (c *UUIDComparator) Compare(path Path, expected, actual document.Node, result *Result) error {
	payload, _ := scalarPayload(c.keyword, expected)
	version, err := parseUUIDVersion(payload)
	if err != nil {
		return err
	}
	s, ok := actual.AsString()
	if !ok {
		result.Failf(path, "type mismatch: expected uuid string, got %s", describe(actual))
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		result.Failf(path, "value %q is not a uuid: %v", s, err)
		return nil
	}
	if version > 0 && id.Version() != uuid.Version(version) {
		result.Failf(path, "uuid %s has version %d, expected %d", s, id.Version(), version)
	}
	return nil
}

func parseUUIDVersion(payload string) (int, error) {
	p := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(payload)), "v")
	if p == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(p)
	if err != nil || n < 1 || n > 8 {
		return 0, fmt.Errorf("invalid uuid version %q, want v1..v8", payload)
	}
	return n, nil
}
