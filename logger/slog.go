package logger

import (
	"context"
	"log/slog"

	"github.com/philipp01105/nlog-channels/core"
)

// SlogHandler implements slog.Handler on top of a channel, so code written
// against log/slog goes through the channel's processors and handlers.
type SlogHandler struct {
	logger *Logger
	attrs  []core.Field
	group  string
}

// NewSlogHandler creates a slog.Handler that logs to l
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// Enabled reports whether the channel handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return s.logger.Enabled(slogLevelToCore(level))
}

// Handle converts the record to an entry and dispatches it on the channel.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	l := s.logger
	level := slogLevelToCore(record.Level)
	if level < l.level {
		return nil
	}

	entry := core.GetEntry()
	entry.Time = record.Time
	if entry.Time.IsZero() {
		entry.Time = l.now()
	}
	entry.Level = level
	entry.Channel = l.name
	entry.Message = record.Message

	if len(l.fields) > 0 {
		entry.Fields = append(entry.Fields, l.fields...)
	}
	if len(s.attrs) > 0 {
		entry.Fields = append(entry.Fields, s.attrs...)
	}
	record.Attrs(func(a slog.Attr) bool {
		entry.Fields = appendSlogAttr(entry.Fields, s.group, a)
		return true
	})

	return l.dispatch(entry)
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = appendSlogAttr(newAttrs, s.group, a)
	}
	return &SlogHandler{logger: s.logger, attrs: newAttrs, group: s.group}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	group := name
	if s.group != "" {
		group = s.group + "." + name
	}
	return &SlogHandler{logger: s.logger, attrs: s.attrs, group: group}
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

// appendSlogAttr converts a to fields, prefixing keys with the group.
// Group attributes are flattened into dotted keys.
func appendSlogAttr(dst []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}

	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return append(dst, core.String(key, a.Value.String()))
	case slog.KindInt64:
		return append(dst, core.Int64(key, a.Value.Int64()))
	case slog.KindUint64:
		return append(dst, core.Any(key, a.Value.Uint64()))
	case slog.KindFloat64:
		return append(dst, core.Float64(key, a.Value.Float64()))
	case slog.KindBool:
		return append(dst, core.Bool(key, a.Value.Bool()))
	case slog.KindTime:
		return append(dst, core.Time(key, a.Value.Time()))
	case slog.KindDuration:
		return append(dst, core.Duration(key, a.Value.Duration()))
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			dst = appendSlogAttr(dst, key, ga)
		}
		return dst
	default:
		if err, ok := a.Value.Any().(error); ok {
			return append(dst, core.Field{Key: key, Type: core.ErrorType, Str: err.Error()})
		}
		return append(dst, core.Any(key, a.Value.Any()))
	}
}
