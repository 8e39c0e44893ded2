// Package logger provides structured JSON logging with automatic redaction
// of recipient email addresses. Sync runs touch large volumes of PII, so
// every field value passes through redaction before it is written.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel maps a level name (any case) to a Level. Unknown names map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes structured JSON log entries with optional PII redaction.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	redactPII bool
	component string
}

var defaultLogger = &Logger{
	out:       os.Stderr,
	level:     ParseLevel(os.Getenv("LOG_LEVEL")),
	redactPII: true,
}

// New creates a logger writing to out. Used by tests; production code uses
// the package-level functions or Component.
func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level, redactPII: true}
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) { defaultLogger.level = l }

// SetRedactPII enables or disables PII redaction for the default logger.
func SetRedactPII(r bool) { defaultLogger.redactPII = r }

// Component returns a copy of the default logger that tags every entry with
// the given component name.
func Component(name string) *Logger {
	return &Logger{
		out:       defaultLogger.out,
		level:     defaultLogger.level,
		redactPII: defaultLogger.redactPII,
		component: name,
	}
}

// Debug emits a DEBUG-level structured log entry on the default logger.
func Debug(msg string, fields ...any) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry on the default logger.
func Info(msg string, fields ...any) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry on the default logger.
func Warn(msg string, fields ...any) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry on the default logger.
func Error(msg string, fields ...any) { defaultLogger.log(ERROR, msg, fields...) }

// Debug emits a DEBUG-level entry.
func (l *Logger) Debug(msg string, fields ...any) { l.log(DEBUG, msg, fields...) }

// Info emits an INFO-level entry.
func (l *Logger) Info(msg string, fields ...any) { l.log(INFO, msg, fields...) }

// Warn emits a WARN-level entry.
func (l *Logger) Warn(msg string, fields ...any) { l.log(WARN, msg, fields...) }

// Error emits an ERROR-level entry.
func (l *Logger) Error(msg string, fields ...any) { l.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...any) {
	if level < l.level {
		return
	}

	entry := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}

	// fields are alternating key/value pairs
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redactPII {
			val = redactPIIValue(key, val)
		}
		entry[key] = val
	}

	data, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()
}
