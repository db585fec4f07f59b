package handler

import (
	"sync"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// MemoryHandler records entries in memory. It keeps the entries it is
// given, so it never lets the caller recycle them. Intended for tests and
// for inspecting what a channel emitted.
type MemoryHandler struct {
	level     core.Level
	mu        sync.Mutex
	entries   []*core.Entry
	formatted [][]byte
	formatter formatter.Formatter
	closed    bool
}

// NewMemoryHandler creates an in-memory handler
func NewMemoryHandler(level core.Level) *MemoryHandler {
	return &MemoryHandler{level: level}
}

// Handle stores the entry and, when a formatter is attached, its
// formatted form.
func (h *MemoryHandler) Handle(entry *core.Entry) error {
	if entry.Level < h.level {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.formatter != nil {
		b, err := h.formatter.Format(entry)
		if err != nil {
			return err
		}
		h.formatted = append(h.formatted, b)
	}
	h.entries = append(h.entries, entry)
	return nil
}

// IsHandling reports whether entries at level pass the threshold
func (h *MemoryHandler) IsHandling(level core.Level) bool { return level >= h.level }

// CanRecycleEntry returns false: entries are retained
func (h *MemoryHandler) CanRecycleEntry() bool { return false }

// SetFormatter attaches a formatter used to render stored entries
func (h *MemoryHandler) SetFormatter(f formatter.Formatter) {
	h.mu.Lock()
	h.formatter = f
	h.mu.Unlock()
}

// Formatter returns the attached formatter, if any
func (h *MemoryHandler) Formatter() formatter.Formatter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.formatter
}

// Entries returns the recorded entries in arrival order
func (h *MemoryHandler) Entries() []*core.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*core.Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Formatted returns the formatted output of each recorded entry. Empty
// unless a formatter is attached.
func (h *MemoryHandler) Formatted() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]byte, len(h.formatted))
	copy(out, h.formatted)
	return out
}

// HasMessage reports whether an entry with msg was recorded
func (h *MemoryHandler) HasMessage(msg string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// Reset drops all recorded entries
func (h *MemoryHandler) Reset() {
	h.mu.Lock()
	h.entries = nil
	h.formatted = nil
	h.mu.Unlock()
}

// Closed reports whether Close has been called
func (h *MemoryHandler) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close marks the handler closed; recorded entries stay readable
func (h *MemoryHandler) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}
