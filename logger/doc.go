// Package logger provides the channel logger.
//
// A Logger is a named channel and is immutable after construction: its
// name, handlers, processor pipeline, level and default fields are set
// once via the Builder and never modified. This makes Logger safe for
// concurrent use without any locking on the read path.
//
//	log := logger.NewBuilder().
//	    WithName("billing").
//	    WithHandlers(fileHandler, streamHandler).
//	    WithProcessors(pipeline).
//	    WithLevel(logger.DebugLevel).
//	    Build()
//
// Every entry is stamped with the channel name, passed through the
// processors in order and then offered to each handler in declaration
// order. Handlers that keep entries after Handle returns receive their
// own copy.
//
// Child loggers with extra fields are created via With, which returns
// a new Logger sharing the same handlers and pipeline:
//
//	reqLog := log.With(logger.String("request_id", id))
//
// Level checks happen before any allocation, so filtered-out
// messages cost only a single integer comparison.
//
// NewSlogHandler lets a channel back the standard library's log/slog.
package logger
