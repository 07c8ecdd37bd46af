// Package logger provides leveled logging on top of the standard library
// logger. Output goes to stderr by default because stdout carries the MCP
// protocol.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps "debug", "info", "warning"/"warn" and "error" to a Level.
// Unknown strings yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	}
	return LevelInfo
}

// Logger writes leveled, prefixed entries.
type Logger struct {
	mu    sync.Mutex
	level Level

	debugLog   *log.Logger
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
}

// New creates a Logger writing to w at the given minimum level.
func New(w io.Writer, level Level) *Logger {
	flags := log.Ldate | log.Ltime
	return &Logger{
		level:      level,
		debugLog:   log.New(w, "DEBUG   ", flags),
		infoLog:    log.New(w, "INFO    ", flags),
		warningLog: log.New(w, "WARNING ", flags),
		errorLog:   log.New(w, "ERROR   ", flags),
	}
}

// NewStderr creates a Logger on stderr.
func NewStderr(level Level) *Logger {
	return New(os.Stderr, level)
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

// Enabled reports whether entries at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) output(level Level, dst *log.Logger, format string, v ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	dst.Output(3, fmt.Sprintf(format, v...))
}

// Debug writes a formatted debug-level entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.output(LevelDebug, l.debugLog, format, v...)
}

// Info writes a formatted info-level entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.output(LevelInfo, l.infoLog, format, v...)
}

// Warning writes a formatted warning-level entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.output(LevelWarning, l.warningLog, format, v...)
}

// Error writes a formatted error-level entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.output(LevelError, l.errorLog, format, v...)
}
