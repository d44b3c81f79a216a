package logging

import (
	"io"
	"log"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
	// FatalLevel indicates a log message's level of criticality
	FatalLevel
)

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}

// Logger is the hook the engine reports node lifecycle events through.
// Implementations must be safe for concurrent use.
type Logger interface {
	Log(level int, format string, args ...interface{})
}

type stdLogger struct {
	min int
	l   *log.Logger
}

// NewStdLogger produces a Logger writing to w, dropping messages below the
// given level
func NewStdLogger(w io.Writer, minLevel int) Logger {
	return &stdLogger{min: minLevel, l: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level int, format string, args ...interface{}) {
	if level < s.min {
		return
	}
	s.l.Printf("["+LogLevelToString(level)+"] "+format, args...)
}

type nopLogger struct{}

func (nopLogger) Log(level int, format string, args ...interface{}) {}

// Discard returns a Logger which drops everything
func Discard() Logger { return nopLogger{} }
