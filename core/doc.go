// Package core defines the shared types used across the channel manager.
//
// It provides the Level type used for handler thresholds, the Entry type
// that represents a single log record flowing through a channel, the Field
// type for structured key-value pairs, the Resolver contract used to turn
// configured names into live processors and formatters, and the sentinel
// errors every other package wraps.
//
// Entry objects are pooled via sync.Pool. A channel logger takes an Entry
// with GetEntry, runs it through its processor pipeline and handlers, and
// returns it with PutEntry. Handlers that keep an entry beyond Handle (async
// queues, in-memory test handlers) are given their own copy made with
// CloneEntry and own that copy from then on.
//
// Field encodes values into fixed-size numeric fields (Int64, Float64)
// wherever possible so that common types like int, bool, and time.Time
// never escape to the heap. The Any field exists as a fallback for
// arbitrary types but will cause an allocation.
package core
