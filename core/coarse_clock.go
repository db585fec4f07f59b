package core

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

// Clock supplies timestamps for new entries.
type Clock func() time.Time

var (
	coarseClockOnce sync.Once
	coarseNow       unsafe.Pointer // *time.Time
)

// StartCoarseClock starts the background goroutine that caches
// time.Now() every 500µs. It is safe to call multiple times; the
// goroutine is started exactly once and runs for the lifetime of the
// process.
func StartCoarseClock() {
	coarseClockOnce.Do(func() {
		t := time.Now()
		atomic.StorePointer(&coarseNow, unsafe.Pointer(&t))
		go func() {
			ticker := time.NewTicker(500 * time.Microsecond)
			for range ticker.C {
				t := time.Now()
				atomic.StorePointer(&coarseNow, unsafe.Pointer(&t))
			}
		}()
	})
}

// CoarseNow returns the most recently cached time.Time value.
// StartCoarseClock must have been called before using CoarseNow.
func CoarseNow() time.Time {
	return *(*time.Time)(atomic.LoadPointer(&coarseNow))
}

// CoarseClock starts the coarse clock and returns it as a Clock. Channels
// that log at high rates trade sub-millisecond precision for a cheaper
// timestamp.
func CoarseClock() Clock {
	StartCoarseClock()
	return CoarseNow
}
