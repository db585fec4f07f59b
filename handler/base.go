package handler

import (
	"io"
	"os"
	"sync"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// base holds the state shared by the writer-backed handlers: level
// threshold, formatter, statistics and the optional async queue.
type base struct {
	mu              sync.Mutex
	level           core.Level
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	stats           *Stats
	async           *asyncQueue
}

func newBase(level core.Level, f formatter.Formatter) base {
	if f == nil {
		f = formatter.NewTextFormatter(formatter.Config{})
	}
	b := base{level: level, stats: NewStats()}
	b.setFormatterLocked(f)
	return b
}

func (b *base) setFormatterLocked(f formatter.Formatter) {
	b.formatter = f
	// Cache WriterFormatter for zero-alloc path
	b.writerFormatter, _ = f.(formatter.WriterFormatter)
}

// SetFormatter replaces the formatter used for subsequent writes
func (b *base) SetFormatter(f formatter.Formatter) {
	if f == nil {
		return
	}
	b.mu.Lock()
	b.setFormatterLocked(f)
	b.mu.Unlock()
}

// Formatter returns the current formatter
func (b *base) Formatter() formatter.Formatter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.formatter
}

// Level returns the minimum level the handler writes
func (b *base) Level() core.Level {
	return b.level
}

// IsHandling reports whether entries at level pass the threshold
func (b *base) IsHandling(level core.Level) bool {
	return level >= b.level
}

// CanRecycleEntry returns true if the caller can recycle the entry after Handle returns
func (b *base) CanRecycleEntry() bool {
	return b.async == nil
}

// Stats returns a snapshot of the current statistics
func (b *base) Stats() Snapshot {
	return b.stats.GetSnapshot()
}

// formatLocked writes entry to w with the current formatter. b.mu must be held.
func (b *base) formatLocked(entry *core.Entry, w io.Writer) (int, error) {
	if b.writerFormatter != nil {
		cw := &countingWriter{w: w}
		err := b.writerFormatter.FormatTo(entry, cw)
		return cw.n, err
	}
	data, err := b.formatter.Format(entry)
	if err != nil {
		return 0, err
	}
	return w.Write(data)
}

// countingWriter tracks bytes written, used for size-based rotation
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// closeOwned closes a writer the handler opened itself. The process standard
// streams are never closed.
func closeOwned(w io.Writer) error {
	if w == os.Stdout || w == os.Stderr {
		return nil
	}
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
