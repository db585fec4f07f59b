package strategy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/handler"
)

// Queue holds the async parameters of writer-backed handlers
type Queue struct {
	Async        bool                                  `mapstructure:"async"`
	BufferSize   int                                   `mapstructure:"buffer_size"`
	Overflow     map[core.Level]handler.OverflowPolicy `mapstructure:"overflow"`
	BlockTimeout time.Duration                         `mapstructure:"block_timeout"`
	DrainTimeout time.Duration                         `mapstructure:"drain_timeout"`
}

func (q Queue) queueConfig() handler.QueueConfig {
	cfg := handler.QueueConfig{
		Async:        q.Async,
		BufferSize:   q.BufferSize,
		BlockTimeout: q.BlockTimeout,
		DrainTimeout: q.DrainTimeout,
	}
	if len(q.Overflow) > 0 {
		// Levels not mentioned keep their default policy
		cfg.OverflowPolicy = handler.DefaultLevelPolicy()
		for level, p := range q.Overflow {
			cfg.OverflowPolicy[level] = p
		}
	}
	return cfg
}

// NullParams configures the "null" handler
type NullParams struct {
	Common `mapstructure:",squash"`
}

// TestParams configures the "test" handler
type TestParams struct {
	Common `mapstructure:",squash"`
}

// StreamParams configures the "stream" handler. Stream is "stdout",
// "stderr" (default) or a file path opened for appending.
type StreamParams struct {
	Common `mapstructure:",squash"`
	Queue  `mapstructure:",squash"`
	Stream string `mapstructure:"stream"`
}

// FileParams configures the "file" handler
type FileParams struct {
	Common         `mapstructure:",squash"`
	Queue          `mapstructure:",squash"`
	Path           string        `mapstructure:"path"`
	MaxSize        int64         `mapstructure:"max_size"`
	MaxAge         time.Duration `mapstructure:"max_age"`
	MaxBackups     int           `mapstructure:"max_backups"`
	RotateInterval time.Duration `mapstructure:"rotate_interval"`
}

// RotatingFileParams configures the "rotating_file" handler: one file per
// day, keeping at most MaxFiles old files (0 = keep all).
type RotatingFileParams struct {
	Common   `mapstructure:",squash"`
	Queue    `mapstructure:",squash"`
	Path     string `mapstructure:"path"`
	MaxFiles int    `mapstructure:"max_files"`
	MaxSize  int64  `mapstructure:"max_size"`
}

// ZapParams configures the "zap" handler
type ZapParams struct {
	Common   `mapstructure:",squash"`
	Stream   string `mapstructure:"stream"`
	Encoding string `mapstructure:"encoding"`
}

// ZerologParams configures the "zerolog" handler
type ZerologParams struct {
	Common  `mapstructure:",squash"`
	Stream  string `mapstructure:"stream"`
	Console bool   `mapstructure:"console"`
	NoColor bool   `mapstructure:"no_color"`
}

// CharmParams configures the "charm" handler
type CharmParams struct {
	Common     `mapstructure:",squash"`
	Stream     string `mapstructure:"stream"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

func registerBuiltins(s *Strategy) {
	Register(s, "null", func(p NullParams) (handler.Handler, error) {
		return handler.NewNullHandler(p.Level), nil
	})
	Register(s, "test", func(p TestParams) (handler.Handler, error) {
		return handler.NewMemoryHandler(p.Level), nil
	})
	Register(s, "stream", func(p StreamParams) (handler.Handler, error) {
		w, owns, err := openStream(p.Stream)
		if err != nil {
			return nil, err
		}
		return handler.NewStreamHandler(handler.StreamConfig{
			QueueConfig: p.queueConfig(),
			Writer:      w,
			OwnsWriter:  owns,
			Level:       p.Level,
		}), nil
	})
	Register(s, "file", func(p FileParams) (handler.Handler, error) {
		return handler.NewFileHandler(handler.FileConfig{
			QueueConfig:    p.queueConfig(),
			Filename:       p.Path,
			Level:          p.Level,
			MaxSize:        p.MaxSize,
			MaxAge:         p.MaxAge,
			MaxBackups:     p.MaxBackups,
			RotateInterval: p.RotateInterval,
		})
	})
	Register(s, "rotating_file", func(p RotatingFileParams) (handler.Handler, error) {
		return handler.NewFileHandler(handler.FileConfig{
			QueueConfig:    p.queueConfig(),
			Filename:       p.Path,
			Level:          p.Level,
			MaxSize:        p.MaxSize,
			MaxBackups:     p.MaxFiles,
			RotateInterval: 24 * time.Hour,
		})
	})
	Register(s, "zap", func(p ZapParams) (handler.Handler, error) {
		w, owns, err := openStream(p.Stream)
		if err != nil {
			return nil, err
		}
		if p.Encoding != "" && p.Encoding != "json" && p.Encoding != "console" {
			closeIfOwned(w, owns)
			return nil, fmt.Errorf("%w: unknown zap encoding %q", core.ErrInvalidConfiguration, p.Encoding)
		}
		return handler.NewZapHandler(handler.ZapConfig{
			Writer:     w,
			OwnsWriter: owns,
			Encoding:   p.Encoding,
			Level:      p.Level,
		}), nil
	})
	Register(s, "zerolog", func(p ZerologParams) (handler.Handler, error) {
		w, owns, err := openStream(p.Stream)
		if err != nil {
			return nil, err
		}
		return handler.NewZerologHandler(handler.ZerologConfig{
			Writer:     w,
			OwnsWriter: owns,
			Console:    p.Console,
			NoColor:    p.NoColor,
			Level:      p.Level,
		}), nil
	})
	Register(s, "charm", func(p CharmParams) (handler.Handler, error) {
		w, owns, err := openStream(p.Stream)
		if err != nil {
			return nil, err
		}
		switch p.Format {
		case "", "text", "json", "logfmt":
		default:
			closeIfOwned(w, owns)
			return nil, fmt.Errorf("%w: unknown charm format %q", core.ErrInvalidConfiguration, p.Format)
		}
		return handler.NewCharmHandler(handler.CharmConfig{
			Writer:     w,
			OwnsWriter: owns,
			Format:     p.Format,
			TimeFormat: p.TimeFormat,
			Level:      p.Level,
		}), nil
	})
}

// openStream maps a stream name to a writer. Files are created with their
// parent directory and owned by the handler.
func openStream(name string) (io.Writer, bool, error) {
	switch name {
	case "", "stderr":
		return os.Stderr, false, nil
	case "stdout":
		return os.Stdout, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return nil, false, err
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}

func closeIfOwned(w io.Writer, owns bool) {
	if c, ok := w.(io.Closer); ok && owns {
		_ = c.Close()
	}
}
