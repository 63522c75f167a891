// Package logger provides the leveled logger used by paramcheck.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level.
type Level int

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return ""
	}
}

// ParseLevel parses a level name case-insensitively.
// The empty string parses as LevelNone.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off", "":
		return LevelNone, nil
	}
	return LevelNone, fmt.Errorf("unknown log level %q", s)
}

// Logger provides logging functionality.
//
// Loggers derived with With share the level and output of the logger they
// were derived from.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	prefix string

	parent *Logger
	fields string
}

var defaultLogger = &Logger{
	level:  LevelNone,
	output: os.Stderr,
	prefix: "paramcheck",
}

// Default returns the default logger. It writes to stderr and is silent
// until its level is lowered.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// New creates a new logger.
func New(output io.Writer, level Level) *Logger {
	return &Logger{
		level:  level,
		output: output,
		prefix: "paramcheck",
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelNone)
}

// With returns a logger that appends key=value to every message.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{
		parent: l.root(),
		fields: l.fields + " " + key + "=" + fmt.Sprint(value),
	}
}

func (l *Logger) root() *Logger {
	if l.parent != nil {
		return l.parent
	}
	return l
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level Level) {
	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.level = level
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	return level >= r.level && level != LevelNone
}

// Output returns the output writer.
func (l *Logger) Output() io.Writer {
	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output = w
}

func (l *Logger) log(level Level, format string, args ...any) {
	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()

	if level < r.level || level == LevelNone {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(r.output, "[%s] %s [%s] %s%s\n", timestamp, r.prefix, level.String(), msg, l.fields)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}
