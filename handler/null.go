package handler

import (
	"sync"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// NullHandler discards every entry at or above its level. Use it to
// silence a channel without removing it from configuration.
type NullHandler struct {
	level     core.Level
	mu        sync.Mutex
	formatter formatter.Formatter
}

// NewNullHandler creates a null handler
func NewNullHandler(level core.Level) *NullHandler {
	return &NullHandler{level: level}
}

// Handle discards the entry
func (h *NullHandler) Handle(*core.Entry) error { return nil }

// IsHandling reports whether entries at level pass the threshold
func (h *NullHandler) IsHandling(level core.Level) bool { return level >= h.level }

// CanRecycleEntry always returns true
func (h *NullHandler) CanRecycleEntry() bool { return true }

// SetFormatter stores f; nothing is ever formatted
func (h *NullHandler) SetFormatter(f formatter.Formatter) {
	h.mu.Lock()
	h.formatter = f
	h.mu.Unlock()
}

// Formatter returns the stored formatter
func (h *NullHandler) Formatter() formatter.Formatter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.formatter
}

// Close is a no-op
func (h *NullHandler) Close() error { return nil }
