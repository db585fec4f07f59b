// Package handler provides the Handler interface and the sinks a channel
// can write to.
//
// Writer-backed handlers (StreamHandler, FileHandler) run synchronously or
// asynchronously. In async mode entries go to a bounded queue drained by a
// background goroutine. When the queue is full each level applies its
// OverflowPolicy: DropNewest for Debug/Info/Warn, Block with a timeout for
// Error and above. Dropped, blocked and processed counts are kept in Stats.
//
// Every handler has a minimum level. Handlers that render their own output
// through a Formatter implement FormattableHandler so a formatter can be
// attached after construction.
//
// Built-in handlers:
//
//   - NullHandler discards entries.
//   - MemoryHandler records entries for inspection.
//   - StreamHandler writes to an io.Writer (default: stdout).
//   - FileHandler writes to a file with rotation by size, age or interval.
//   - ZapHandler, ZerologHandler and CharmHandler hand entries to those
//     logging libraries.
//
// RateLimited throttles any handler and Multi fans one entry out to many.
package handler
