package handler

import (
	"io"
	"os"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// StreamHandler writes log entries to an io.Writer (default: os.Stdout)
type StreamHandler struct {
	base
	writer     io.Writer
	ownsWriter bool
	closed     bool
}

// StreamConfig holds configuration for the stream handler
type StreamConfig struct {
	QueueConfig
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// OwnsWriter closes Writer when the handler is closed
	OwnsWriter bool
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Level is the minimum level written (default: DebugLevel)
	Level core.Level
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(cfg StreamConfig) *StreamHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	h := &StreamHandler{
		base:       newBase(cfg.Level, cfg.Formatter),
		writer:     cfg.Writer,
		ownsWriter: cfg.OwnsWriter,
	}
	if cfg.Async {
		h.async = newAsyncQueue(cfg.QueueConfig, h.stats, h.write)
	}
	return h
}

// Handle processes a log entry
func (h *StreamHandler) Handle(entry *core.Entry) error {
	if entry.Level < h.level {
		return nil
	}
	if h.async != nil {
		return h.async.enqueue(entry)
	}
	return h.write(entry)
}

// write formats and writes an entry
func (h *StreamHandler) write(entry *core.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	if _, err := h.formatLocked(entry, h.writer); err != nil {
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// Close drains the async queue, if any, and closes an owned writer
func (h *StreamHandler) Close() error {
	if h.async != nil {
		h.async.close()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.ownsWriter {
		return closeOwned(h.writer)
	}
	return nil
}
