package logx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type formatPart struct {
	literal string
	varName string
}

type AccessLogFormatter struct {
	parts []formatPart
}

var accessLogFormatPresets = map[string]string{
	"respcheck_combined": "$time_local | $status | $latency | $client_ip | $method $path | request_id=$request_id mode=$mode passed=$passed failures=$failures keyword_error=$keyword_error bytes_in=$bytes_in",
	"respcheck_minimal":  "$time_local | $status | $latency | $method $path | request_id=$request_id passed=$passed failures=$failures",
}

var allowedAccessLogVars = map[string]struct{}{
	"time_local":    {},
	"status":        {},
	"latency":       {},
	"latency_ms":    {},
	"client_ip":     {},
	"method":        {},
	"path":          {},
	"request_id":    {},
	"mode":          {},
	"passed":        {},
	"failures":      {},
	"keyword_error": {},
	"bytes_in":      {},
}

// ResolveAccessLogFormat returns format when set, otherwise the named preset.
func ResolveAccessLogFormat(format string, preset string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}
	p := strings.ToLower(strings.TrimSpace(preset))
	if p == "" {
		return "", nil
	}
	out, ok := accessLogFormatPresets[p]
	if !ok {
		return "", fmt.Errorf("invalid access_log_format_preset: %q", preset)
	}
	return out, nil
}

// CompileAccessLogFormat parses a template of literal text and variables.
// A variable is written $name, or ${name} when text follows it directly;
// "$$" is a literal dollar. An empty template yields a nil formatter,
// meaning the default request line.
func CompileAccessLogFormat(format string) (*AccessLogFormatter, error) {
	s := strings.TrimSpace(format)
	if s == "" {
		return nil, nil
	}
	f := &AccessLogFormatter{}
	var lit strings.Builder
	for s != "" {
		i := strings.IndexByte(s, '$')
		if i < 0 {
			lit.WriteString(s)
			break
		}
		lit.WriteString(s[:i])
		s = s[i+1:]
		if strings.HasPrefix(s, "$") {
			lit.WriteByte('$')
			s = s[1:]
			continue
		}
		name, rest, err := scanAccessLogVar(s)
		if err != nil {
			return nil, fmt.Errorf("invalid access_log_format: %w", err)
		}
		if lit.Len() > 0 {
			f.parts = append(f.parts, formatPart{literal: lit.String()})
			lit.Reset()
		}
		f.parts = append(f.parts, formatPart{varName: name})
		s = rest
	}
	if lit.Len() > 0 {
		f.parts = append(f.parts, formatPart{literal: lit.String()})
	}
	return f, nil
}

// scanAccessLogVar reads the variable name following a '$'.
func scanAccessLogVar(s string) (name, rest string, err error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return "", "", errors.New("unclosed ${")
		}
		name, rest = s[1:end], s[end+1:]
	} else {
		end := strings.IndexFunc(s, func(r rune) bool { return r != '_' && (r < 'a' || r > 'z') })
		if end < 0 {
			end = len(s)
		}
		name, rest = s[:end], s[end:]
	}
	if name == "" {
		return "", "", errors.New("missing variable name after '$'")
	}
	if _, ok := allowedAccessLogVars[name]; !ok {
		return "", "", fmt.Errorf("unknown variable $%s (allowed: %s)", name, strings.Join(AccessLogAllowedVars(), ", "))
	}
	return name, rest, nil
}

// AccessEntry is one served request as seen by the access log.
type AccessEntry struct {
	Time     time.Time
	Status   int
	Latency  time.Duration
	ClientIP string
	Method   string
	Path     string
	Fields   map[string]any
}

func (e AccessEntry) vars(color bool) map[string]string {
	vars := map[string]string{
		"time_local": e.Time.Format("2006/01/02 - 15:04:05"),
		"status":     ColorizeStatusWith(e.Status, color),
		"latency":    e.Latency.String(),
		"latency_ms": fmt.Sprintf("%d", e.Latency.Milliseconds()),
		"client_ip":  strings.TrimSpace(e.ClientIP),
		"method":     strings.TrimSpace(e.Method),
		"path":       e.Path,
	}
	for k, v := range e.Fields {
		s := strings.TrimSpace(fmt.Sprintf("%v", v))
		if s == "" || s == "<nil>" {
			continue
		}
		vars[k] = s
	}
	return vars
}

// Format renders e. Variables without a value render as "-".
func (f *AccessLogFormatter) Format(e AccessEntry, color bool) string {
	if f == nil || len(f.parts) == 0 {
		return ""
	}
	vars := e.vars(color)
	var b strings.Builder
	for _, p := range f.parts {
		if p.literal != "" {
			b.WriteString(p.literal)
			continue
		}
		v := strings.TrimSpace(vars[p.varName])
		if v == "" {
			b.WriteByte('-')
			continue
		}
		b.WriteString(v)
	}
	return b.String()
}

// FormatRequestLineWithColor renders the default access line: a fixed
// head followed by the extra fields as sorted key=value pairs.
func FormatRequestLineWithColor(e AccessEntry, color bool) string {
	head := fmt.Sprintf("%s | %s | %s | %s | %s %s",
		e.Time.Format("2006/01/02 - 15:04:05"),
		ColorizeStatusWith(e.Status, color),
		e.Latency,
		strings.TrimSpace(e.ClientIP),
		strings.TrimSpace(e.Method),
		e.Path,
	)
	if len(e.Fields) == 0 {
		return head
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(head)
	b.WriteString(" |")
	for _, k := range keys {
		s := strings.TrimSpace(fmt.Sprintf("%v", e.Fields[k]))
		if s == "" || s == "<nil>" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(s)
	}
	return b.String()
}

// AccessLogAllowedVars lists the variables a format may use.
func AccessLogAllowedVars() []string {
	keys := make([]string, 0, len(allowedAccessLogVars))
	for k := range allowedAccessLogVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
