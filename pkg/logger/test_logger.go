package logger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a Logger implementation for tests that captures every
// message it receives instead of writing it anywhere.
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		zerolog:  &nop,
	}
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields, nil)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields, nil)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields, nil)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields, nil)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.log("FATAL", msg, fields, nil)
}

// WithError adds an error to the logger context
func (l *TestLogger) WithError(err error) Logger {
	return &testContextLogger{parent: l, err: err}
}

// WithField adds a field to the logger context
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testContextLogger{parent: l, fields: map[string]interface{}{key: value}}
}

// WithFields adds multiple fields to the logger context
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testContextLogger{parent: l, fields: fields}
}

// WithContext is a no-op for tests
func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

// GetZerolog returns the underlying zerolog instance
func (l *TestLogger) GetZerolog() *zerolog.Logger { return l.zerolog }

// log captures a log message
func (l *TestLogger) log(level, msg string, fields map[string]interface{}, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   err,
	})
}

// GetMessages returns a copy of all captured log messages
func (l *TestLogger) GetMessages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	messages := make([]LogMessage, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// GetMessagesByLevel returns all messages of a specific level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var filtered []LogMessage
	for _, msg := range l.messages {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, msg := range l.messages {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// HasError checks if an error was logged
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear clears all captured messages
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = l.messages[:0]
}

// testContextLogger carries field/error context accumulated via the
// With* methods back into the parent TestLogger's capture buffer.
type testContextLogger struct {
	parent *TestLogger
	fields map[string]interface{}
	err    error
}

func (l *testContextLogger) merged(fields map[string]interface{}) map[string]interface{} {
	if len(l.fields) == 0 {
		return fields
	}
	out := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (l *testContextLogger) Debug(msg string) { l.parent.log("DEBUG", msg, l.fields, l.err) }
func (l *testContextLogger) Info(msg string)  { l.parent.log("INFO", msg, l.fields, l.err) }
func (l *testContextLogger) Warn(msg string)  { l.parent.log("WARN", msg, l.fields, l.err) }
func (l *testContextLogger) Error(msg string) { l.parent.log("ERROR", msg, l.fields, l.err) }
func (l *testContextLogger) Fatal(msg string) { l.parent.log("FATAL", msg, l.fields, l.err) }

func (l *testContextLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.parent.log("DEBUG", msg, l.merged(fields), l.err)
}

func (l *testContextLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.parent.log("INFO", msg, l.merged(fields), l.err)
}

func (l *testContextLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.parent.log("WARN", msg, l.merged(fields), l.err)
}

func (l *testContextLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.parent.log("ERROR", msg, l.merged(fields), l.err)
}

func (l *testContextLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.parent.log("FATAL", msg, l.merged(fields), l.err)
}

func (l *testContextLogger) WithError(err error) Logger {
	return &testContextLogger{parent: l.parent, fields: l.fields, err: err}
}

func (l *testContextLogger) WithField(key string, value interface{}) Logger {
	return &testContextLogger{
		parent: l.parent,
		fields: l.merged(map[string]interface{}{key: value}),
		err:    l.err,
	}
}

func (l *testContextLogger) WithFields(fields map[string]interface{}) Logger {
	return &testContextLogger{parent: l.parent, fields: l.merged(fields), err: l.err}
}

func (l *testContextLogger) WithContext(ctx context.Context) Logger { return l }

func (l *testContextLogger) GetZerolog() *zerolog.Logger { return l.parent.zerolog }
