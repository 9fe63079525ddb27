package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// NewJSONLogger creates a logger writing one JSON object per line
func NewJSONLogger(writer io.Writer, level Level) *StreamLogger {
	return newStreamLogger(writer, level, encodeJSON)
}

// NewTextLogger creates a logger writing "LEVEL message key=value" lines
func NewTextLogger(writer io.Writer, level Level) *StreamLogger {
	return newStreamLogger(writer, level, encodeText)
}

// New creates a logger in the given format. Unknown formats fall back to text.
func New(format Format, writer io.Writer, level Level) *StreamLogger {
	if format == FormatJSON {
		return NewJSONLogger(writer, level)
	}
	return NewTextLogger(writer, level)
}

func newStreamLogger(writer io.Writer, level Level, encode encodeFunc) *StreamLogger {
	return &StreamLogger{
		writer: writer,
		mu:     &sync.Mutex{},
		level:  level,
		fields: make([]Field, 0),
		encode: encode,
	}
}

// log is the internal logging method
func (l *StreamLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	l.encode(l.writer, level, msg, all)
}

func encodeJSON(w io.Writer, level Level, msg string, fields []Field) {
	entry := LogEntry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}

	// Only include fields if there are any
	if len(fields) > 0 {
		entry.Fields = make(map[string]any, len(fields))
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Fallback to simple text logging if JSON marshal fails
		fmt.Fprintf(w, "[ERROR] Failed to marshal log entry: %v\n", err)
		return
	}

	w.Write(data)
	w.Write([]byte("\n"))
}

// encodeText keeps field order: preset fields first, then call-site fields.
func encodeText(w io.Writer, level Level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.Value))
	}
	b.WriteByte('\n')
	io.WriteString(w, b.String())
}

func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// Debug logs a debug-level message
func (l *StreamLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields...)
}

// Info logs an info-level message
func (l *StreamLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields...)
}

// Warn logs a warning-level message
func (l *StreamLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields...)
}

// Error logs an error-level message
func (l *StreamLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields...)
}

// With creates a child logger with the given fields pre-set
func (l *StreamLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &StreamLogger{
		writer: l.writer,
		mu:     l.mu,
		level:  l.level,
		fields: newFields,
		encode: l.encode,
	}
}

// SetLevel sets the minimum log level
func (l *StreamLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *StreamLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Environment variables that override the configured log level and format.
const (
	EnvLogLevel  = "ICEDOPE_LOG_LEVEL"
	EnvLogFormat = "ICEDOPE_LOG_FORMAT"
)

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End logs the operation with its duration
func (t *TimedOperation) End(extra ...Field) {
	elapsed := time.Since(t.start)
	fields := append(append([]Field{}, t.fields...), extra...)
	t.logger.Info(t.msg, append(fields, Latency(elapsed))...)
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) {
	elapsed := time.Since(t.start)
	fields := append([]Field{}, t.fields...)
	t.logger.Error(t.msg, append(fields, Latency(elapsed), Error(err))...)
}
