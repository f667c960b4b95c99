package server

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/r9s-ai/respcheck/internal/logx"
)

// Context keys set by handlers and picked up by the access log.
const (
	ctxMode         = "respcheck.mode"
	ctxPassed       = "respcheck.passed"
	ctxFailures     = "respcheck.failures"
	ctxKeywordError = "respcheck.keyword_error"
	ctxBytesIn      = "respcheck.bytes_in"
)

type contextFieldSpec struct {
	ctxKey string
	logKey string
}

var accessLogContextFieldSpecs = []contextFieldSpec{
	{ctxKey: ctxMode, logKey: "mode"},
	{ctxKey: ctxPassed, logKey: "passed"},
	{ctxKey: ctxFailures, logKey: "failures"},
	{ctxKey: ctxKeywordError, logKey: "keyword_error"},
	{ctxKey: ctxBytesIn, logKey: "bytes_in"},
}

type accessLogRecord struct {
	RequestID string
	LatencyMS int64
	Extras    map[string]any
}

func (r accessLogRecord) Fields() map[string]any {
	out := make(map[string]any, len(r.Extras)+2)
	if strings.TrimSpace(r.RequestID) != "" {
		out["request_id"] = r.RequestID
	}
	out["latency_ms"] = r.LatencyMS
	for k, v := range r.Extras {
		out[k] = v
	}
	return out
}

func requestIDMiddleware(headerKey string) gin.HandlerFunc {
	headerKey = ResolveRequestIDHeaderKey(headerKey)
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerKey))
		if id == "" {
			id = genRequestID()
		}
		c.Header(headerKey, id)
		c.Set(headerKey, id)
		c.Next()
	}
}

func requestLoggerWithColor(l *log.Logger, color bool, requestIDHeaderKey string, accessFormatter *logx.AccessLogFormatter) gin.HandlerFunc {
	requestIDHeaderKey = ResolveRequestIDHeaderKey(requestIDHeaderKey)
	if l == nil {
		l = log.New(os.Stdout, "", log.LstdFlags)
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		rec := accessLogRecord{
			RequestID: c.GetString(requestIDHeaderKey),
			LatencyMS: latency.Milliseconds(),
			Extras:    map[string]any{},
		}
		for _, s := range accessLogContextFieldSpecs {
			if v, ok := c.Get(s.ctxKey); ok {
				rec.Extras[s.logKey] = v
			}
		}
		entry := logx.AccessEntry{
			Time:     time.Now(),
			Status:   c.Writer.Status(),
			Latency:  latency,
			ClientIP: c.ClientIP(),
			Method:   c.Request.Method,
			Path:     c.Request.URL.Path,
			Fields:   rec.Fields(),
		}
		if accessFormatter != nil {
			l.Println(accessFormatter.Format(entry, color))
			return
		}
		l.Println(logx.FormatRequestLineWithColor(entry, color))
	}
}

// bodyLimitMiddleware caps request bodies at max bytes. Handlers see an
// *http.MaxBytesError when reading past the cap.
func bodyLimitMiddleware(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
