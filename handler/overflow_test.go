package handler

import (
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/philipp01105/nlog-channels/core"
)

// slowWriter simulates slow disk I/O
type slowWriter struct {
	delay time.Duration
	mu    sync.Mutex
	n     int
}

func (w *slowWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	time.Sleep(w.delay)
	w.n++
	return len(p), nil
}

func (w *slowWriter) writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

func TestOverflowPolicy_DropNewest(t *testing.T) {
	h := NewStreamHandler(StreamConfig{
		QueueConfig: QueueConfig{
			Async:      true,
			BufferSize: 2,
			OverflowPolicy: map[core.Level]OverflowPolicy{
				core.InfoLevel: DropNewest,
			},
		},
		Writer: &slowWriter{delay: 5 * time.Millisecond},
	})
	defer h.Close()

	for i := 0; i < 20; i++ {
		h.Handle(newEntry(core.InfoLevel, "test"))
	}

	stats := h.Stats()
	if stats.DroppedTotal[core.InfoLevel] == 0 {
		t.Error("Expected some dropped logs with DropNewest policy")
	}
}

func TestOverflowPolicy_DropOldest(t *testing.T) {
	h := NewStreamHandler(StreamConfig{
		QueueConfig: QueueConfig{
			Async:      true,
			BufferSize: 2,
			OverflowPolicy: map[core.Level]OverflowPolicy{
				core.WarnLevel: DropOldest,
			},
		},
		Writer: &slowWriter{delay: 5 * time.Millisecond},
	})
	defer h.Close()

	for i := 0; i < 20; i++ {
		h.Handle(newEntry(core.WarnLevel, "warn"))
	}

	stats := h.Stats()
	if stats.DroppedTotal[core.WarnLevel] == 0 {
		t.Error("Expected some dropped logs with DropOldest policy")
	}
}

func TestOverflowPolicy_Block(t *testing.T) {
	sw := &slowWriter{delay: 20 * time.Millisecond}
	h := NewStreamHandler(StreamConfig{
		QueueConfig: QueueConfig{
			Async:        true,
			BufferSize:   1,
			BlockTimeout: 5 * time.Millisecond,
			OverflowPolicy: map[core.Level]OverflowPolicy{
				core.ErrorLevel: Block,
			},
		},
		Writer: sw,
	})

	for i := 0; i < 5; i++ {
		h.Handle(newEntry(core.ErrorLevel, "error"))
	}
	h.Close()

	stats := h.Stats()
	if stats.BlockedTotal == 0 {
		t.Error("Expected blocked writes with Block policy")
	}
	// Block never drops: timed out entries are written synchronously
	if stats.DroppedTotal[core.ErrorLevel] != 0 {
		t.Errorf("Block policy dropped %d entries", stats.DroppedTotal[core.ErrorLevel])
	}
	if sw.writes() != 5 {
		t.Errorf("writes = %d, want 5", sw.writes())
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want OverflowPolicy
		ok   bool
	}{
		{"drop_newest", DropNewest, true},
		{"drop_oldest", DropOldest, true},
		{"block", Block, true},
		{"sometimes", DropNewest, false},
	}
	for _, tt := range tests {
		got, ok := ParseOverflowPolicy(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseOverflowPolicy(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStats_Telemetry(t *testing.T) {
	h := NewStreamHandler(StreamConfig{Writer: io.Discard})
	defer h.Close()

	for i := 0; i < 5; i++ {
		h.Handle(newEntry(core.InfoLevel, "info"))
	}

	stats := h.Stats()
	if stats.ProcessedTotal != 5 {
		t.Errorf("Expected 5 processed logs, got %d", stats.ProcessedTotal)
	}
}

func TestStats_FatalLevelsCounted(t *testing.T) {
	s := NewStats()
	s.IncrementDropped(core.FatalLevel)
	s.IncrementDropped(core.PanicLevel)
	if s.GetTotalDropped() != 2 {
		t.Errorf("GetTotalDropped() = %d, want 2", s.GetTotalDropped())
	}
}

func TestHandler_CloseIdempotent(t *testing.T) {
	h := NewStreamHandler(StreamConfig{
		QueueConfig: QueueConfig{Async: true},
		Writer:      io.Discard,
	})

	for i := 0; i < 3; i++ {
		if err := h.Close(); err != nil {
			t.Errorf("close %d failed: %v", i+1, err)
		}
	}
}

func TestHandler_DrainTimeout(t *testing.T) {
	h := NewStreamHandler(StreamConfig{
		QueueConfig: QueueConfig{
			Async:        true,
			BufferSize:   1000,
			DrainTimeout: 100 * time.Millisecond,
		},
		Writer: io.Discard,
	})

	for i := 0; i < 100; i++ {
		h.Handle(newEntry(core.InfoLevel, "test"))
	}

	start := time.Now()
	h.Close()
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Close took too long: %v", elapsed)
	}
}

func TestFileHandler_AsyncSyncOnClose(t *testing.T) {
	h, err := NewFileHandler(FileConfig{
		QueueConfig: QueueConfig{Async: true},
		Filename:    filepath.Join(t.TempDir(), "test.log"),
	})
	if err != nil {
		t.Fatal(err)
	}

	h.Handle(newEntry(core.InfoLevel, "test"))

	if err := h.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if h.Stats().ProcessedTotal != 1 {
		t.Errorf("processed = %d, want 1", h.Stats().ProcessedTotal)
	}
}
