// Package ports defines the interfaces between the frame captioning pipeline
// and its external dependencies: decoders, oracles, fetchers and sinks.
package ports

import (
	"fmt"
	"strings"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota // Component internals
	LevelInfo                  // Run progress
	LevelWarn                  // Recoverable problems: dropped frames, failed captions
	LevelError                 // Failed runs
	LevelQuiet                 // Suppresses all output
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel, falling back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	if l, ok := LookupLogLevel(s); ok {
		return l
	}
	return LevelInfo
}

// LookupLogLevel parses a level name case-insensitively.
func LookupLogLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "quiet":
		return LevelQuiet, true
	}
	return LevelInfo, false
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so levels can be read
// from configuration files.
func (l *LogLevel) UnmarshalText(b []byte) error {
	v, ok := LookupLogLevel(string(b))
	if !ok {
		return fmt.Errorf("unknown log level %q", b)
	}
	*l = v
	return nil
}

// Logger abstracts logging operations with multi-language support.
type Logger interface {
	// Debug logs a debug message with optional format arguments.
	// Debug messages are for internal component processing details.
	// The msg parameter is the message key that can be translated.
	Debug(msg string, args ...interface{})

	// Info logs an informational message with optional format arguments.
	// Info messages are for orchestration-level progress updates.
	Info(msg string, args ...interface{})

	// Warn logs a warning message with optional format arguments.
	// Warn messages indicate recoverable problems.
	Warn(msg string, args ...interface{})

	// Error logs an error message with optional format arguments.
	// Error messages indicate unrecoverable problems.
	Error(msg string, args ...interface{})

	// WithComponent returns a new Logger that prefixes messages with the component name.
	// Component loggers are typically used at debug level for internal processing logs.
	WithComponent(component string) Logger
}
