package server

import (
	"strings"

	"github.com/google/uuid"
)

const DefaultRequestIDHeaderKey = "X-Respcheck-Request-Id"

// ResolveRequestIDHeaderKey returns headerKey when non-empty, otherwise
// the default header.
func ResolveRequestIDHeaderKey(headerKey string) string {
	if v := strings.TrimSpace(headerKey); v != "" {
		return v
	}
	return DefaultRequestIDHeaderKey
}

// genRequestID returns a time-ordered id (UUIDv7). It falls back to a
// random v4 id if the clock source fails.
func genRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
