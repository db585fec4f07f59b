// Package formatter defines how log entries are serialized into bytes.
//
// A Formatter turns one entry into bytes with Format and a slice of entries
// into one output per entry with FormatBatch. Handlers check for the
// optional WriterFormatter and BufferFormatter interfaces when a formatter
// is attached and prefer them when available, eliminating the intermediate
// byte slice allocation on the write path.
//
// Formatters named in configuration are built through a Registry, which
// maps a type tag to a Constructor taking positional parameters. NewAdapter
// resolves the tag and builds the formatter once, at construction, so a
// misconfigured formatter fails when the channel is created rather than on
// the first record. Built-in tags:
//
//   - text: TextFormatter, params (timestampFormat, includeCaller)
//   - json: JSONFormatter, params (timestampFormat, includeCaller)
//   - pretty: colorized console lines via zerolog, params (noColor, timeFormat)
//   - zap_json, zap_console: zap's production JSON and development console
//     encodings
//
// TextFormatter and JSONFormatter use a pooled bytes.Buffer internally and
// rely on Go's Append-style functions (time.AppendFormat, strconv.AppendInt)
// to avoid per-call allocations. Buffers larger than 64 KiB are not returned
// to the pool to prevent a single large log line from permanently inflating
// memory usage.
package formatter
