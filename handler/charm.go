package handler

import (
	"io"
	"os"
	"time"

	"charm.land/log/v2"

	"github.com/philipp01105/nlog-channels/core"
)

// CharmHandler renders entries for terminals through charm's log package
type CharmHandler struct {
	logger     *log.Logger
	level      core.Level
	timeFormat string
	writer     io.Writer
	ownsWriter bool
}

// CharmConfig holds configuration for the charm handler
type CharmConfig struct {
	// Writer to write to (default: os.Stderr)
	Writer io.Writer
	// OwnsWriter closes Writer when the handler is closed
	OwnsWriter bool
	// Format is "text" (default), "json" or "logfmt"
	Format string
	// TimeFormat for the timestamp (default: time.Kitchen)
	TimeFormat string
	// Level is the minimum level written
	Level core.Level
}

// NewCharmHandler creates a charm-backed handler
func NewCharmHandler(cfg CharmConfig) *CharmHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.Kitchen
	}

	l := log.NewWithOptions(cfg.Writer, log.Options{
		Level:     CharmLevel(cfg.Level),
		Formatter: charmFormatter(cfg.Format),
	})

	return &CharmHandler{
		logger:     l,
		level:      cfg.Level,
		timeFormat: cfg.TimeFormat,
		writer:     cfg.Writer,
		ownsWriter: cfg.OwnsWriter,
	}
}

func charmFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// CharmLevel maps a core level to the charm level. Panic collapses to fatal.
func CharmLevel(l core.Level) log.Level {
	switch l {
	case core.DebugLevel:
		return log.DebugLevel
	case core.InfoLevel:
		return log.InfoLevel
	case core.WarnLevel:
		return log.WarnLevel
	case core.ErrorLevel:
		return log.ErrorLevel
	default:
		return log.FatalLevel
	}
}

// Handle writes the entry. The entry's own time is written under the
// "time" key, so the channel clock decides the timestamp. Log never exits,
// even at fatal level.
func (h *CharmHandler) Handle(entry *core.Entry) error {
	if entry.Level < h.level {
		return nil
	}

	kv := make([]interface{}, 0, 2*len(entry.Fields)+6)
	if !entry.Time.IsZero() {
		kv = append(kv, "time", entry.Time.Format(h.timeFormat))
	}
	if entry.Channel != "" {
		kv = append(kv, "channel", entry.Channel)
	}
	if entry.Caller.Defined {
		kv = append(kv, "caller", entry.Caller.String())
	}
	for _, f := range entry.Fields {
		kv = append(kv, f.Key, f.Value())
	}
	h.logger.Log(CharmLevel(entry.Level), entry.Message, kv...)
	return nil
}

// IsHandling reports whether entries at level pass the threshold
func (h *CharmHandler) IsHandling(level core.Level) bool { return level >= h.level }

// CanRecycleEntry returns true: writes are synchronous
func (h *CharmHandler) CanRecycleEntry() bool { return true }

// Close closes an owned writer
func (h *CharmHandler) Close() error {
	if h.ownsWriter {
		return closeOwned(h.writer)
	}
	return nil
}
