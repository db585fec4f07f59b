// Package config describes the declarative channel configuration: which
// handlers exist, which channels each one feeds, and the processor
// pipeline shared by every channel.
package config

import (
	"fmt"

	"github.com/philipp01105/nlog-channels/core"
)

const (
	// DefaultChannel receives handlers that name no channels
	DefaultChannel = "main"
	// DefaultLogPath is where the implicit handler writes
	DefaultLogPath = "runtime/logs/log.log"
)

// Config is the top level configuration.
type Config struct {
	// Handlers in declaration order
	Handlers []NamedHandler
	// Processor references: processor.Func values, record processors or
	// names resolved at build time
	Processor []any
	// DefaultChannel for handlers without a channel list (default: "main")
	DefaultChannel string
}

// NamedHandler is a handler config together with its key in the
// handlers mapping.
type NamedHandler struct {
	Key string
	HandlerConfig
}

// HandlerConfig declares a single handler.
type HandlerConfig struct {
	// Type selects the handler strategy
	Type string
	// Channels this handler feeds. Empty means the default channel.
	Channels []string
	// Formatter to attach after construction, if any
	Formatter *FormatterRef
	// Params is the type specific parameter bag
	Params map[string]any
}

// FormatterRef names a formatter either by a resolvable Name or by a
// registered Type plus positional Params.
type FormatterRef struct {
	Name   string
	Type   string
	Params []any
}

// ChannelConfig is the accumulated handler list for one channel. Each
// entry is a HandlerConfig or an already constructed handler.
type ChannelConfig struct {
	Name     string
	Handlers []any
}

// WithDefaults returns a copy of c with defaults applied. A config that
// does not declare handlers at all gets a debug level rotating file handler
// on the default channel; an explicitly empty handler list stays empty.
func (c Config) WithDefaults() Config {
	if c.DefaultChannel == "" {
		c.DefaultChannel = DefaultChannel
	}
	if c.Handlers == nil {
		c.Handlers = []NamedHandler{{
			Key: "main",
			HandlerConfig: HandlerConfig{
				Type: "rotating_file",
				Params: map[string]any{
					"path":  DefaultLogPath,
					"level": "debug",
				},
			},
		}}
	}
	if c.Processor == nil {
		c.Processor = []any{}
	}
	return c
}

// Handler returns the handler declared under key.
func (c Config) Handler(key string) (HandlerConfig, bool) {
	for _, h := range c.Handlers {
		if h.Key == key {
			return h.HandlerConfig, true
		}
	}
	return HandlerConfig{}, false
}

// Validate checks structural problems that do not need a strategy:
// missing types and duplicate handler keys.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Handlers))
	for _, h := range c.Handlers {
		if h.Type == "" {
			return fmt.Errorf("%w: handler %q has no type", core.ErrInvalidConfiguration, h.Key)
		}
		if _, dup := seen[h.Key]; dup {
			return fmt.Errorf("%w: duplicate handler %q", core.ErrInvalidConfiguration, h.Key)
		}
		seen[h.Key] = struct{}{}
	}
	return nil
}
