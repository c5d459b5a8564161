// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/framescribe/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Options configures a ConsoleLogger.
type Options struct {
	Timestamps bool // Prefix each line with the local time
	Color      bool // Force ANSI colours; New enables them for terminals
}

// ConsoleLogger writes one line per message. All levels go to the same
// writer so stdout stays free for command results.
type ConsoleLogger struct {
	out       *output
	level     ports.LogLevel
	component string
	opts      Options
	now       func() time.Time
}

// output serializes writes from loggers sharing a writer.
type output struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a logger writing to w. Colours are enabled when w is a terminal.
func New(w io.Writer, level ports.LogLevel, opts Options) *ConsoleLogger {
	if f, ok := w.(*os.File); ok && !opts.Color {
		opts.Color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ConsoleLogger{
		out:   &output{w: w},
		level: level,
		opts:  opts,
		now:   time.Now,
	}
}

// NewConsole creates a logger on stderr with the specified level.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	return New(os.Stderr, level, Options{})
}

// NewNoop creates a logger that discards all messages.
func NewNoop() *ConsoleLogger {
	return New(io.Discard, ports.LevelQuiet, Options{})
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a logger sharing this one's writer. Nested
// components are joined with a slash.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	c := *l
	if l.component != "" {
		c.component = l.component + "/" + component
	} else {
		c.component = component
	}
	return &c
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level || l.level == ports.LevelQuiet {
		return
	}

	// Translate message using go-l10n. Without arguments the message is
	// printed verbatim, so a literal % in it survives.
	translated := l10n.T(msg)
	if len(args) > 0 {
		translated = l10n.F(msg, args...)
	}

	var sb strings.Builder
	if l.opts.Timestamps {
		sb.WriteString(l.now().Format(timeLayout))
		sb.WriteByte(' ')
	}
	if level >= ports.LevelWarn {
		sb.WriteString(strings.ToUpper(level.String()))
		sb.WriteByte(' ')
	}
	if l.component != "" {
		if l.opts.Color {
			fmt.Fprintf(&sb, "%s[%s]%s ", colorCyan, l.component, colorReset)
		} else {
			fmt.Fprintf(&sb, "[%s] ", l.component)
		}
	}
	sb.WriteString(translated)

	line := sb.String()
	if l.opts.Color {
		switch level {
		case ports.LevelDebug:
			line = colorGray + line + colorReset
		case ports.LevelWarn:
			line = colorYellow + line + colorReset
		case ports.LevelError:
			line = colorRed + line + colorReset
		}
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	fmt.Fprintln(l.out.w, line)
}

// Ensure ConsoleLogger implements ports.Logger
var _ ports.Logger = (*ConsoleLogger)(nil)
