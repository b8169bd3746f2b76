package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// TestLogRecord is one captured log line with its attributes flattened.
// Group names are joined onto keys with dots.
type TestLogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recordSink struct {
	mu      sync.Mutex
	records []TestLogRecord
}

// TestLogHandler captures everything logged through it. Loggers derived with
// With or WithGroup write into the same sink as their parent.
type TestLogHandler struct {
	sink   *recordSink
	attrs  []slog.Attr
	groups []string
}

func NewTestLogHandler() *TestLogHandler {
	return &TestLogHandler{sink: &recordSink{}}
}

// NewTestLogger returns a logger that records into the returned handler.
func NewTestLogger() (*slog.Logger, *TestLogHandler) {
	handler := NewTestLogHandler()
	return slog.New(handler), handler
}

func (h *TestLogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *TestLogHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		flatten(attrs, "", attr)
	}
	prefix := strings.Join(h.groups, ".")
	record.Attrs(func(attr slog.Attr) bool {
		flatten(attrs, prefix, attr)
		return true
	})

	h.sink.mu.Lock()
	h.sink.records = append(h.sink.records, TestLogRecord{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	h.sink.mu.Unlock()
	return nil
}

func (h *TestLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := strings.Join(h.groups, ".")
	scoped := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	scoped = append(scoped, h.attrs...)
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		scoped = append(scoped, attr)
	}
	return &TestLogHandler{sink: h.sink, attrs: scoped, groups: h.groups}
}

func (h *TestLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := append(append([]string(nil), h.groups...), name)
	return &TestLogHandler{sink: h.sink, attrs: h.attrs, groups: groups}
}

func flatten(into map[string]any, prefix string, attr slog.Attr) {
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		for _, nested := range value.Group() {
			flatten(into, key, nested)
		}
		return
	}
	into[key] = value.Any()
}

func (h *TestLogHandler) GetRecords() []TestLogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return append([]TestLogRecord(nil), h.sink.records...)
}

func (h *TestLogHandler) GetRecordsByLevel(level slog.Level) []TestLogRecord {
	var filtered []TestLogRecord
	for _, record := range h.GetRecords() {
		if record.Level == level {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Find returns the first record with exactly this message.
func (h *TestLogHandler) Find(message string) (TestLogRecord, bool) {
	for _, record := range h.GetRecords() {
		if record.Message == message {
			return record, true
		}
	}
	return TestLogRecord{}, false
}

func (h *TestLogHandler) ContainsMessage(level slog.Level, message string) bool {
	for _, record := range h.GetRecordsByLevel(level) {
		if record.Message == message {
			return true
		}
	}
	return false
}

func (h *TestLogHandler) CountByLevel(level slog.Level) int {
	return len(h.GetRecordsByLevel(level))
}

func (h *TestLogHandler) Reset() {
	h.sink.mu.Lock()
	h.sink.records = nil
	h.sink.mu.Unlock()
}
