package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Entry is one message captured by a TestLogger
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

type entrySink struct {
	mu      sync.Mutex
	entries []Entry
}

// TestLogger forwards messages to t.Logf and keeps them for assertions.
// Loggers derived with WithField share the parent's entries.
type TestLogger struct {
	t      testing.TB
	fields map[string]interface{}
	sink   *entrySink
}

// NewTestLogger creates a logger bound to t. A nil t only records.
func NewTestLogger(t testing.TB) *TestLogger {
	return &TestLogger{t: t, sink: &entrySink{}}
}

func (l *TestLogger) log(level, msg string) {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	l.sink.mu.Lock()
	l.sink.entries = append(l.sink.entries, Entry{Level: level, Message: msg, Fields: fields})
	l.sink.mu.Unlock()

	if l.t != nil {
		l.t.Helper()
		l.t.Logf("[%s] %s%s", strings.ToUpper(level), msg, formatFields(fields))
	}
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fmt.Sprint(fields[k]))
	}
	return b.String()
}

func (l *TestLogger) Debug(msg string) { l.log("debug", msg) }
func (l *TestLogger) Info(msg string)  { l.log("info", msg) }
func (l *TestLogger) Warn(msg string)  { l.log("warn", msg) }
func (l *TestLogger) Error(msg string) { l.log("error", msg) }

// Fatal is recorded like any other level; it never exits the test binary
func (l *TestLogger) Fatal(msg string) { l.log("fatal", msg) }

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{t: l.t, fields: merged, sink: l.sink}
}

// Entries returns the captured entries, all of them when level is empty
func (l *TestLogger) Entries(level string) []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	var out []Entry
	for _, e := range l.sink.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the captured messages at level
func (l *TestLogger) Messages(level string) []string {
	entries := l.Entries(level)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
