package logging

import (
	"io"
	"sync"
	"time"
)

// Level orders log entries by severity. A logger drops entries below its level.
type Level int

const (
	// DebugLevel covers per-attempt detail: rejected candidates, missing paths, void trials
	DebugLevel Level = iota
	// InfoLevel reports one line per placed pair and per finished run or replica
	InfoLevel
	// WarnLevel marks runs that stopped early: exhausted budgets, failed replicas, cancellation
	WarnLevel
	// ErrorLevel is for broken lattice invariants and I/O failures; a clean run emits none
	ErrorLevel
)

// String returns the upper-case name written in each entry.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts the config spellings of a level in either case.
// Anything else yields InfoLevel.
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DebugLevel
	case "INFO", "info":
		return InfoLevel
	case "WARN", "warn", "WARNING", "warning":
		return WarnLevel
	case "ERROR", "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Format selects the line encoding of a logger.
type Format string

const (
	// FormatText writes "LEVEL message key=value ..." lines
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line
	FormatJSON Format = "json"
)

// Field is one key/value pair attached to an entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the sink injected into the engines and the ensemble runner.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child that prepends fields to every entry, e.g. replica and seed.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// encodeFunc renders one entry onto the writer.
type encodeFunc func(w io.Writer, level Level, msg string, fields []Field)

// StreamLogger implements Logger on top of an io.Writer with a pluggable
// line encoding. Child loggers created by With share the writer and its lock.
type StreamLogger struct {
	writer io.Writer
	mu     *sync.Mutex
	level  Level
	fields []Field
	encode encodeFunc
}

// LogEntry is the JSON form of one entry.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything. Engines use it when no logger is injected.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (n NopLogger) With(fields ...Field) Logger     { return n }
func (NopLogger) SetLevel(level Level)              {}
func (NopLogger) GetLevel() Level                   { return InfoLevel }

// NewNopLogger returns a NopLogger as a Logger.
func NewNopLogger() Logger {
	return NopLogger{}
}

// TimedOperation logs a message with the latency of a placement, diffusion or ensemble run.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}
