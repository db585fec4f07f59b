package formatter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/philipp01105/nlog-channels/core"
)

// Constructor builds a formatter from positional parameters.
type Constructor func(params ...any) (Formatter, error)

// Registry maps a formatter type tag to its constructor.
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding the built-in formatter types:
// text, json, pretty, zap_json and zap_console.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("text", newText)
	r.Register("json", newJSON)
	r.Register("pretty", newPretty)
	r.Register("zap_json", newZapJSON)
	r.Register("zap_console", newZapConsole)
	return r
}

// Register binds name to ctor, replacing any previous binding.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	r.ctors[name] = ctor
	r.mu.Unlock()
}

// Lookup returns the constructor bound to name.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.ctors[name]
	return c, ok
}

// Names returns the registered type tags in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newText(params ...any) (Formatter, error) {
	cfg, err := configParams("text", params)
	if err != nil {
		return nil, err
	}
	return NewTextFormatter(cfg), nil
}

func newJSON(params ...any) (Formatter, error) {
	cfg, err := configParams("json", params)
	if err != nil {
		return nil, err
	}
	return NewJSONFormatter(cfg), nil
}

// configParams reads the positional (timestampFormat, includeCaller)
// parameters shared by the text and json formatters.
func configParams(kind string, params []any) (Config, error) {
	var cfg Config
	if len(params) > 2 {
		return cfg, fmt.Errorf("%w: %s formatter takes at most 2 params, got %d",
			core.ErrInvalidConfiguration, kind, len(params))
	}
	var err error
	if cfg.TimestampFormat, err = stringParam(kind, params, 0); err != nil {
		return cfg, err
	}
	if cfg.IncludeCaller, err = boolParam(kind, params, 1); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func stringParam(kind string, params []any, i int) (string, error) {
	if i >= len(params) || params[i] == nil {
		return "", nil
	}
	s, ok := params[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s formatter param %d must be a string, got %T",
			core.ErrInvalidConfiguration, kind, i, params[i])
	}
	return s, nil
}

func boolParam(kind string, params []any, i int) (bool, error) {
	if i >= len(params) || params[i] == nil {
		return false, nil
	}
	b, ok := params[i].(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s formatter param %d must be a bool, got %T",
			core.ErrInvalidConfiguration, kind, i, params[i])
	}
	return b, nil
}
