package handler

import (
	"sync"
	"time"

	"github.com/philipp01105/nlog-channels/core"
)

// QueueConfig holds the async settings shared by handlers that can write
// from a background goroutine.
type QueueConfig struct {
	// Async enables asynchronous logging
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-level overflow behavior (default: uses DefaultLevelPolicy)
	OverflowPolicy map[core.Level]OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
}

func (c *QueueConfig) applyDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = 1000
	}
	if c.OverflowPolicy == nil {
		c.OverflowPolicy = DefaultLevelPolicy()
	}
	if c.BlockTimeout == 0 {
		c.BlockTimeout = 100 * time.Millisecond
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 5 * time.Second
	}
}

// asyncQueue owns the entries it accepts and returns them to the pool
// once written or dropped.
type asyncQueue struct {
	queue          chan *core.Entry
	closed         chan struct{}
	closeOnce      sync.Once
	wg             sync.WaitGroup
	overflowPolicy map[core.Level]OverflowPolicy
	blockTimeout   time.Duration
	drainTimeout   time.Duration
	stats          *Stats
	write          func(*core.Entry) error
}

func newAsyncQueue(cfg QueueConfig, stats *Stats, write func(*core.Entry) error) *asyncQueue {
	cfg.applyDefaults()
	q := &asyncQueue{
		queue:          make(chan *core.Entry, cfg.BufferSize),
		closed:         make(chan struct{}),
		overflowPolicy: cfg.OverflowPolicy,
		blockTimeout:   cfg.BlockTimeout,
		drainTimeout:   cfg.DrainTimeout,
		stats:          stats,
		write:          write,
	}
	q.wg.Add(1)
	go q.process()
	return q
}

// enqueue hands entry to the background writer, applying the overflow
// policy for the entry's level when the queue is full.
func (q *asyncQueue) enqueue(entry *core.Entry) error {
	select {
	case <-q.closed:
		// Handler is closing, write synchronously
		return q.writeAndRelease(entry)
	default:
	}

	policy, ok := q.overflowPolicy[entry.Level]
	if !ok {
		policy = DropNewest
	}

	switch policy {
	case Block:
		select {
		case q.queue <- entry:
			return nil
		default:
		}
		timer := time.NewTimer(q.blockTimeout)
		defer timer.Stop()
		select {
		case q.queue <- entry:
			return nil
		case <-timer.C:
			// Timeout - fall back to synchronous write
			q.stats.IncrementBlocked()
			return q.writeAndRelease(entry)
		case <-q.closed:
			return q.writeAndRelease(entry)
		}

	case DropOldest:
		select {
		case q.queue <- entry:
			return nil
		default:
			select {
			case old := <-q.queue:
				q.stats.IncrementDropped(old.Level)
				core.PutEntry(old)
			default:
			}
			select {
			case q.queue <- entry:
				return nil
			default:
				q.stats.IncrementDropped(entry.Level)
				core.PutEntry(entry)
				return nil
			}
		}

	default:
		select {
		case q.queue <- entry:
			return nil
		default:
			q.stats.IncrementDropped(entry.Level)
			core.PutEntry(entry)
			return nil
		}
	}
}

func (q *asyncQueue) writeAndRelease(entry *core.Entry) error {
	err := q.write(entry)
	core.PutEntry(entry)
	return err
}

// process writes queued entries until the queue is closed, then drains
// what is left within the drain timeout.
func (q *asyncQueue) process() {
	defer q.wg.Done()

	for {
		select {
		case entry := <-q.queue:
			// Write errors have no caller to return to on this path.
			_ = q.writeAndRelease(entry)
		case <-q.closed:
			deadline := time.After(q.drainTimeout)
			for {
				select {
				case entry := <-q.queue:
					_ = q.writeAndRelease(entry)
				case <-deadline:
					return
				default:
					return
				}
			}
		}
	}
}

// close stops the background writer and waits for the drain to finish.
func (q *asyncQueue) close() {
	q.closeOnce.Do(func() {
		close(q.closed)
		q.wg.Wait()
	})
}
