package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/handler"
	"github.com/philipp01105/nlog-channels/processor"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Logger is a named channel (immutable). Every entry runs through the
// processor pipeline and is then offered to each handler in order.
type Logger struct {
	name          string
	handlers      *handler.Multi
	processors    []processor.Func
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	now           core.Clock
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	name          string
	handlers      []handler.Handler
	processors    []processor.Func
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	now           core.Clock
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel, // Default level
		callerSkip: 3,              // Default skip for getCaller
	}
}

// WithName sets the channel name stamped on every entry
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithHandler appends a handler
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	if h != nil {
		b.handlers = append(b.handlers, h)
	}
	return b
}

// WithHandlers appends handlers, keeping their order
func (b *Builder) WithHandlers(hs ...handler.Handler) *Builder {
	for _, h := range hs {
		b.WithHandler(h)
	}
	return b
}

// WithProcessors sets the processor pipeline. The slice is shared, not
// copied, so channels built from one pipeline apply the same processors.
func (b *Builder) WithProcessors(ps []processor.Func) *Builder {
	b.processors = ps
	return b
}

// WithLevel sets the log level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithFields adds default fields to all log entries
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

// WithClock sets the time source for entry timestamps (default: time.Now)
func (b *Builder) WithClock(c core.Clock) *Builder {
	b.now = c
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	now := b.now
	if now == nil {
		now = time.Now
	}
	return &Logger{
		name:          b.name,
		handlers:      handler.NewMulti(b.handlers...),
		processors:    b.processors,
		level:         b.level,
		fields:        b.fields,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
		now:           now,
	}
}

// Name returns the channel name
func (l *Logger) Name() string { return l.name }

// Level returns the minimum level the logger dispatches
func (l *Logger) Level() core.Level { return l.level }

// Handlers returns the handlers in dispatch order
func (l *Logger) Handlers() []handler.Handler { return l.handlers.Handlers() }

// Processors returns the processor pipeline
func (l *Logger) Processors() []processor.Func {
	out := make([]processor.Func, len(l.processors))
	copy(out, l.processors)
	return out
}

// Enabled reports whether an entry at level would reach a handler
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.level && l.handlers.IsHandling(level)
}

// With creates a new Logger with additional fields (immutable operation).
// The child shares the parent's handlers and pipeline.
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	child := *l
	child.fields = newFields
	return &child
}

// Log logs a message at the specified level and returns the combined
// handler errors, if any.
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) error {
	// Level check optimization - exit early BEFORE any allocations
	if level < l.level {
		return nil
	}
	return l.log(level, msg, fields)
}

// Handle dispatches a prepared entry as if it had been logged on this
// channel. The caller keeps ownership of entry.
func (l *Logger) Handle(entry *core.Entry) error {
	if entry.Level < l.level {
		return nil
	}
	e := core.CloneEntry(entry)
	e.Channel = l.name
	if len(l.fields) > 0 {
		e.Fields = append(e.Fields[:0], l.fields...)
		e.Fields = append(e.Fields, entry.Fields...)
	}
	return l.dispatch(e)
}

// log is the internal logging method that takes a pre-allocated slice
func (l *Logger) log(level core.Level, msg string, fields []core.Field) error {
	if l.handlers.Len() == 0 {
		return nil
	}

	// Get entry from pool AFTER level check
	entry := core.GetEntry()
	entry.Time = l.now()
	entry.Level = level
	entry.Channel = l.name
	entry.Message = msg

	// Add logger's default fields
	if len(l.fields) > 0 {
		entry.Fields = append(entry.Fields, l.fields...)
	}

	// Add provided fields
	if len(fields) > 0 {
		entry.Fields = append(entry.Fields, fields...)
	}

	if l.includeCaller {
		entry.Caller = core.GetCaller(l.callerSkip)
	}

	return l.dispatch(entry)
}

// dispatch runs the pipeline and hands the result to the handlers. It
// owns entry and returns it to the pool; handlers that keep entries get
// copies from the fan-out.
func (l *Logger) dispatch(entry *core.Entry) error {
	out := processor.Apply(l.processors, entry)
	if out == nil {
		core.PutEntry(entry)
		return nil
	}

	err := l.handlers.Handle(out)

	if out != entry {
		core.PutEntry(out)
	}
	core.PutEntry(entry)
	return err
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	_ = l.log(core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	_ = l.log(core.InfoLevel, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	_ = l.log(core.WarnLevel, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	_ = l.log(core.ErrorLevel, msg, fields)
}

// Fatal logs a fatal message and exits the program with os.Exit(1)
func (l *Logger) Fatal(msg string, fields ...core.Field) {
	_ = l.log(core.FatalLevel, msg, fields)
	_ = l.Close()
	osExit(1)
}

// Panic logs a panic message and panics
func (l *Logger) Panic(msg string, fields ...core.Field) {
	_ = l.log(core.PanicLevel, msg, fields)
	panic(msg)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	if core.DebugLevel < l.level {
		return
	}
	_ = l.log(core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	if core.InfoLevel < l.level {
		return
	}
	_ = l.log(core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	if core.WarnLevel < l.level {
		return
	}
	_ = l.log(core.WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	if core.ErrorLevel < l.level {
		return
	}
	_ = l.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a fatal message with formatting and exits the program with os.Exit(1)
func (l *Logger) Fatalf(format string, args ...interface{}) {
	_ = l.log(core.FatalLevel, fmt.Sprintf(format, args...), nil)
	_ = l.Close()
	osExit(1)
}

// Panicf logs a panic message with formatting and panics
func (l *Logger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_ = l.log(core.PanicLevel, msg, nil)
	panic(msg)
}

// Close closes every handler of the channel. Loggers derived with With
// share those handlers.
func (l *Logger) Close() error {
	return l.handlers.Close()
}
