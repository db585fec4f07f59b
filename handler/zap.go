package handler

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// ZapHandler writes entries through a zapcore.Core. Output encoding is
// chosen by zap, so the handler does not accept a formatter.
type ZapHandler struct {
	core       zapcore.Core
	writer     io.Writer
	ownsWriter bool
}

// ZapConfig holds configuration for the zap handler
type ZapConfig struct {
	// Writer to write to (default: os.Stderr)
	Writer io.Writer
	// OwnsWriter closes Writer when the handler is closed
	OwnsWriter bool
	// Encoding is "json" (default) or "console"
	Encoding string
	// Level is the minimum level written
	Level core.Level
}

// NewZapHandler creates a zap-backed handler
func NewZapHandler(cfg ZapConfig) *ZapHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	var enc zapcore.Encoder
	if cfg.Encoding == "console" {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	return &ZapHandler{
		core:       zapcore.NewCore(enc, zapcore.AddSync(cfg.Writer), formatter.ZapLevel(cfg.Level)),
		writer:     cfg.Writer,
		ownsWriter: cfg.OwnsWriter,
	}
}

// NewZapCoreHandler wraps an existing zapcore.Core, for callers that
// already run zap and want a channel to share its sinks.
func NewZapCoreHandler(c zapcore.Core) *ZapHandler {
	return &ZapHandler{core: c}
}

// Handle writes the entry. Fatal and panic entries are written without
// exiting or panicking; that decision belongs to the caller.
func (h *ZapHandler) Handle(entry *core.Entry) error {
	lvl := formatter.ZapLevel(entry.Level)
	if !h.core.Enabled(lvl) {
		return nil
	}
	return h.core.Write(formatter.ZapEntry(entry), formatter.ZapFields(entry.Fields))
}

// IsHandling reports whether the zap core is enabled at level
func (h *ZapHandler) IsHandling(level core.Level) bool {
	return h.core.Enabled(formatter.ZapLevel(level))
}

// CanRecycleEntry returns true: writes are synchronous
func (h *ZapHandler) CanRecycleEntry() bool { return true }

// Close syncs the core and closes an owned writer
func (h *ZapHandler) Close() error {
	err := h.core.Sync()
	if h.writer == os.Stderr || h.writer == os.Stdout {
		// Sync on a terminal returns EINVAL on some platforms.
		err = nil
	}
	if h.ownsWriter {
		if cerr := closeOwned(h.writer); cerr != nil {
			return cerr
		}
	}
	return err
}
