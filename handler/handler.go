package handler

import (
	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// Handler defines the interface for log handlers
type Handler interface {
	// Handle processes a log entry
	Handle(entry *core.Entry) error

	// Close closes the handler and releases resources
	Close() error
}

// FormattableHandler is a handler whose output formatter can be replaced
// after construction.
type FormattableHandler interface {
	Handler
	SetFormatter(f formatter.Formatter)
	Formatter() formatter.Formatter
}

// LevelAware is implemented by handlers with a minimum level. Callers use
// it to skip work for entries the handler would discard.
type LevelAware interface {
	IsHandling(level core.Level) bool
}

// CanRecycle reports whether the caller may reuse entry memory once
// h.Handle returns. Handlers that keep entries (async queues, in-memory
// recorders) opt out by returning false from CanRecycleEntry; handlers
// without the method are treated as keeping them.
func CanRecycle(h Handler) bool {
	rc, ok := h.(interface{ CanRecycleEntry() bool })
	return ok && rc.CanRecycleEntry()
}

// IsHandling reports whether h accepts entries at level. Handlers that do
// not implement LevelAware accept every level.
func IsHandling(h Handler, level core.Level) bool {
	if la, ok := h.(LevelAware); ok {
		return la.IsHandling(level)
	}
	return true
}
