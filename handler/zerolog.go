package handler

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/philipp01105/nlog-channels/core"
)

// ZerologHandler writes entries through a zerolog.Logger
type ZerologHandler struct {
	logger     zerolog.Logger
	level      core.Level
	writer     io.Writer
	ownsWriter bool
}

// ZerologConfig holds configuration for the zerolog handler
type ZerologConfig struct {
	// Writer to write to (default: os.Stderr)
	Writer io.Writer
	// OwnsWriter closes Writer when the handler is closed
	OwnsWriter bool
	// Console renders human readable lines through zerolog.ConsoleWriter
	Console bool
	// NoColor disables colors in console mode
	NoColor bool
	// Level is the minimum level written
	Level core.Level
}

// NewZerologHandler creates a zerolog-backed handler
func NewZerologHandler(cfg ZerologConfig) *ZerologHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	out := cfg.Writer
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: cfg.Writer, NoColor: cfg.NoColor, TimeFormat: time.RFC3339}
	}

	return &ZerologHandler{
		logger:     zerolog.New(out).Level(ZerologLevel(cfg.Level)),
		level:      cfg.Level,
		writer:     cfg.Writer,
		ownsWriter: cfg.OwnsWriter,
	}
}

// ZerologLevel maps a core level to the zerolog level
func ZerologLevel(l core.Level) zerolog.Level {
	switch l {
	case core.DebugLevel:
		return zerolog.DebugLevel
	case core.InfoLevel:
		return zerolog.InfoLevel
	case core.WarnLevel:
		return zerolog.WarnLevel
	case core.ErrorLevel:
		return zerolog.ErrorLevel
	case core.FatalLevel:
		return zerolog.FatalLevel
	case core.PanicLevel:
		return zerolog.PanicLevel
	default:
		return zerolog.NoLevel
	}
}

// Handle writes the entry. WithLevel never exits or panics, so fatal and
// panic entries are only recorded.
func (h *ZerologHandler) Handle(entry *core.Entry) error {
	if entry.Level < h.level {
		return nil
	}

	ev := h.logger.WithLevel(ZerologLevel(entry.Level))
	if ev == nil {
		return nil
	}
	ev = ev.Time(zerolog.TimestampFieldName, entry.Time)
	if entry.Channel != "" {
		ev = ev.Str("channel", entry.Channel)
	}
	if entry.Caller.Defined {
		ev = ev.Str(zerolog.CallerFieldName, entry.Caller.String())
	}
	for _, f := range entry.Fields {
		ev = zerologField(ev, f)
	}
	ev.Msg(entry.Message)
	return nil
}

func zerologField(ev *zerolog.Event, f core.Field) *zerolog.Event {
	switch f.Type {
	case core.StringType:
		return ev.Str(f.Key, f.Str)
	case core.IntType, core.Int64Type:
		return ev.Int64(f.Key, f.Int64)
	case core.Float64Type:
		return ev.Float64(f.Key, f.Float64)
	case core.BoolType:
		return ev.Bool(f.Key, f.Int64 == 1)
	case core.TimeType:
		return ev.Time(f.Key, time.Unix(0, f.Int64))
	case core.DurationType:
		return ev.Dur(f.Key, time.Duration(f.Int64))
	case core.ErrorType:
		return ev.Str(f.Key, f.Str)
	default:
		return ev.Interface(f.Key, f.Any)
	}
}

// IsHandling reports whether entries at level pass the threshold
func (h *ZerologHandler) IsHandling(level core.Level) bool { return level >= h.level }

// CanRecycleEntry returns true: writes are synchronous
func (h *ZerologHandler) CanRecycleEntry() bool { return true }

// Close closes an owned writer
func (h *ZerologHandler) Close() error {
	if h.ownsWriter {
		return closeOwned(h.writer)
	}
	return nil
}
