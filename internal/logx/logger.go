package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	default:
		return "ERROR"
	}
}

func (l Level) paint(s string) string {
	switch l {
	case LevelDebug:
		return ansiGray + s + ansiReset
	case LevelWarn:
		return ansiYellow + s + ansiReset
	case LevelError:
		return ansiRed + s + ansiReset
	default:
		return s
	}
}

// ParseLevel maps debug, info, warn and error to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

// Logger writes "[RESPCHECK] LEVEL message" lines through a stdlib logger.
// A nil *Logger discards everything.
type Logger struct {
	l     *log.Logger
	min   Level
	color bool
}

// New returns a Logger writing to out. A nil out means stderr.
func New(out io.Writer, min Level, color bool) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{l: log.New(out, "", log.LstdFlags), min: min, color: color}
}

// NewWithFlags is New with explicit stdlib log flags; tests pass 0.
func NewWithFlags(out io.Writer, min Level, color bool, flags int) *Logger {
	lg := New(out, min, color)
	lg.l.SetFlags(flags)
	return lg
}

// Enabled reports whether lvl would be written.
func (lg *Logger) Enabled(lvl Level) bool {
	return lg != nil && lvl >= lg.min
}

func (lg *Logger) logf(lvl Level, format string, args ...any) {
	if !lg.Enabled(lvl) {
		return
	}
	tag := lvl.String()
	if lg.color {
		tag = lvl.paint(tag)
	}
	lg.l.Printf("[RESPCHECK] %s %s", tag, fmt.Sprintf(format, args...))
}

func (lg *Logger) Debugf(format string, args ...any) { lg.logf(LevelDebug, format, args...) }
func (lg *Logger) Infof(format string, args ...any)  { lg.logf(LevelInfo, format, args...) }
func (lg *Logger) Warnf(format string, args ...any)  { lg.logf(LevelWarn, format, args...) }
func (lg *Logger) Errorf(format string, args ...any) { lg.logf(LevelError, format, args...) }

// Std exposes the underlying stdlib logger, e.g. for http.Server.ErrorLog.
func (lg *Logger) Std() *log.Logger {
	if lg == nil {
		return log.New(io.Discard, "", 0)
	}
	return lg.l
}
