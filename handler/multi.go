package handler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/nlog-channels/core"
)

// Multi sends each entry to an ordered list of handlers. Handlers that
// keep entries beyond Handle get their own copy, so the caller always
// retains ownership of the entry it passed in.
type Multi struct {
	handlers []Handler
	retains  []bool // true when the handler keeps entries (needs a clone)
}

// NewMulti creates a fan-out over handlers, preserving their order
func NewMulti(handlers ...Handler) *Multi {
	m := &Multi{
		handlers: make([]Handler, len(handlers)),
		retains:  make([]bool, len(handlers)),
	}
	copy(m.handlers, handlers)
	for i, h := range handlers {
		m.retains[i] = !CanRecycle(h)
	}
	return m
}

// Handle dispatches entry to every handler in order. A failing handler
// does not stop the ones after it; all errors are combined.
func (m *Multi) Handle(entry *core.Entry) error {
	var errs error
	for i, h := range m.handlers {
		if !IsHandling(h, entry.Level) {
			continue
		}
		e := entry
		if m.retains[i] {
			e = core.CloneEntry(entry)
		}
		errs = multierr.Append(errs, h.Handle(e))
	}
	return errs
}

// IsHandling reports whether any handler accepts entries at level
func (m *Multi) IsHandling(level core.Level) bool {
	for _, h := range m.handlers {
		if IsHandling(h, level) {
			return true
		}
	}
	return false
}

// CanRecycleEntry returns true: retaining handlers receive copies
func (m *Multi) CanRecycleEntry() bool { return true }

// Handlers returns a copy of the handler list
func (m *Multi) Handlers() []Handler {
	out := make([]Handler, len(m.handlers))
	copy(out, m.handlers)
	return out
}

// Len returns the number of handlers
func (m *Multi) Len() int { return len(m.handlers) }

// Close closes every handler and combines their errors
func (m *Multi) Close() error {
	var errs error
	for _, h := range m.handlers {
		errs = multierr.Append(errs, h.Close())
	}
	return errs
}
