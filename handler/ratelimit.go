package handler

import (
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// RateLimited throttles the entries forwarded to the wrapped handler.
// Entries over the limit are dropped and counted.
type RateLimited struct {
	next    Handler
	limiter *rate.Limiter
	dropped atomic.Uint64
}

// NewRateLimited wraps next with a token bucket of perSecond entries and
// the given burst. A burst below 1 is raised to 1.
func NewRateLimited(next Handler, perSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Handle forwards the entry when a token is available
func (h *RateLimited) Handle(entry *core.Entry) error {
	if !IsHandling(h.next, entry.Level) {
		return nil
	}
	if !h.limiter.Allow() {
		h.dropped.Add(1)
		return nil
	}
	return h.next.Handle(entry)
}

// Dropped returns the number of entries rejected by the limiter
func (h *RateLimited) Dropped() uint64 {
	return h.dropped.Load()
}

// Unwrap returns the wrapped handler
func (h *RateLimited) Unwrap() Handler {
	return h.next
}

// IsHandling delegates to the wrapped handler
func (h *RateLimited) IsHandling(level core.Level) bool {
	return IsHandling(h.next, level)
}

// CanRecycleEntry delegates to the wrapped handler
func (h *RateLimited) CanRecycleEntry() bool {
	return CanRecycle(h.next)
}

// SetFormatter forwards to the wrapped handler when it is formattable
func (h *RateLimited) SetFormatter(f formatter.Formatter) {
	if fh, ok := h.next.(FormattableHandler); ok {
		fh.SetFormatter(f)
	}
}

// Formatter returns the wrapped handler's formatter, or nil
func (h *RateLimited) Formatter() formatter.Formatter {
	if fh, ok := h.next.(FormattableHandler); ok {
		return fh.Formatter()
	}
	return nil
}

// Close closes the wrapped handler
func (h *RateLimited) Close() error {
	return h.next.Close()
}
