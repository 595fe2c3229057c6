// Package logger provides the console logger used during tree scanning and
// reconciliation. Output is timestamped, level-filtered, and safe for use
// from concurrent scan goroutines.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger writes "[HH:MM:SS] [LEVEL] message" lines to a writer.
// A nil writer discards all output.
type ConsoleLogger struct {
	writer   io.Writer
	level    int
	useColor bool
	mu       sync.Mutex
}

// New creates a ConsoleLogger writing to w at the given minimum level.
// Valid levels are debug, info, warn and error (case-insensitive); anything
// else falls back to info. Color is enabled only when w is a terminal.
func New(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:   w,
		level:    parseLevel(level),
		useColor: isTerminal(w),
	}
}

// parseLevel maps a level name to its numeric rank, defaulting to info.
func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// isTerminal reports whether w is a color-capable terminal. The color
// package's NoColor already folds in TTY detection and NO_COLOR.
func isTerminal(w io.Writer) bool {
	if w == os.Stdout || w == os.Stderr {
		return !color.NoColor
	}
	return false
}

// Debugf logs a debug-level message.
func (cl *ConsoleLogger) Debugf(format string, args ...any) {
	cl.logf(levelDebug, "DEBUG", format, args...)
}

// Infof logs an info-level message.
func (cl *ConsoleLogger) Infof(format string, args ...any) {
	cl.logf(levelInfo, "INFO", format, args...)
}

// Warnf logs a warning.
func (cl *ConsoleLogger) Warnf(format string, args ...any) {
	cl.logf(levelWarn, "WARN", format, args...)
}

// Errorf logs an error.
func (cl *ConsoleLogger) Errorf(format string, args ...any) {
	cl.logf(levelError, "ERROR", format, args...)
}

func (cl *ConsoleLogger) logf(level int, tag, format string, args ...any) {
	if cl == nil || cl.writer == nil || level < cl.level {
		return
	}

	label := fmt.Sprintf("[%s]", tag)
	if cl.useColor {
		switch level {
		case levelWarn:
			label = color.YellowString(label)
		case levelError:
			label = color.RedString(label)
		}
	}

	line := fmt.Sprintf("[%s] %s %s\n",
		time.Now().Format("15:04:05"), label, fmt.Sprintf(format, args...))

	cl.mu.Lock()
	defer cl.mu.Unlock()
	fmt.Fprint(cl.writer, line)
}
