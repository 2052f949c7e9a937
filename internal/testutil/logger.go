// Package testutil provides test utilities for structured logging and
// template fixtures.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(newTestHandler(t))
}

func newTestHandler(t testing.TB) slog.Handler {
	return slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// Entry is one captured log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Capture records log entries at or above a level while still writing
// everything to the test log.
type Capture struct {
	mu      sync.Mutex
	level   slog.Level
	entries []Entry
}

// NewCaptureLogger returns a logger that writes to t.Log() and records every
// entry at level or above in the returned Capture.
func NewCaptureLogger(t testing.TB, level slog.Level) (*slog.Logger, *Capture) {
	t.Helper()
	c := &Capture{level: level}
	return slog.New(&captureHandler{capture: c, next: newTestHandler(t)}), c
}

// Entries returns a copy of the captured entries.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Messages returns the captured messages in order.
func (c *Capture) Messages() []string {
	var out []string
	for _, e := range c.Entries() {
		out = append(out, e.Message)
	}
	return out
}

func (c *Capture) add(e Entry) {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
}

type captureHandler struct {
	capture *Capture
	attrs   []slog.Attr
	next    slog.Handler
}

func (h *captureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *captureHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.capture.level {
		e := Entry{Level: r.Level, Message: r.Message, Attrs: make(map[string]string)}
		for _, a := range h.attrs {
			e.Attrs[a.Key] = a.Value.String()
		}
		r.Attrs(func(a slog.Attr) bool {
			e.Attrs[a.Key] = a.Value.String()
			return true
		})
		h.capture.add(e)
	}
	return h.next.Handle(ctx, r)
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &captureHandler{
		capture: h.capture,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
		next:    h.next.WithAttrs(attrs),
	}
}

// WithGroup keeps attribute keys flat in captured entries.
func (h *captureHandler) WithGroup(name string) slog.Handler {
	return &captureHandler{capture: h.capture, attrs: h.attrs, next: h.next.WithGroup(name)}
}

// TemplateFS returns an in-memory template tree from path/content pairs.
func TemplateFS(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return fsys
}
