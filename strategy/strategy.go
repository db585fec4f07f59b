// Package strategy builds handlers from declarative configuration. Each
// handler type is registered under a tag together with a typed parameter
// struct; the parameter bag from configuration is decoded into that struct
// before the creation function runs.
package strategy

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/philipp01105/nlog-channels/config"
	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
	"github.com/philipp01105/nlog-channels/handler"
)

// Common holds the parameters every handler type accepts. Parameter
// structs embed it with `mapstructure:",squash"`.
type Common struct {
	// Level is the minimum level the handler writes
	Level core.Level `mapstructure:"level"`
	// RateLimit caps entries per second (0 = unlimited)
	RateLimit float64 `mapstructure:"rate_limit"`
	// Burst is the number of entries allowed above RateLimit at once
	Burst int `mapstructure:"burst"`
}

// Shared returns the common parameters
func (c Common) Shared() Common { return c }

type sharer interface{ Shared() Common }

type factory func(params map[string]any) (handler.Handler, Common, error)

// Strategy maps handler type tags to creation functions.
type Strategy struct {
	mu         sync.RWMutex
	factories  map[string]factory
	resolver   core.Resolver
	formatters *formatter.Registry
}

// Option configures a Strategy
type Option func(*Strategy)

// WithResolver sets the resolver used for formatter names
func WithResolver(r core.Resolver) Option {
	return func(s *Strategy) { s.resolver = r }
}

// WithFormatterRegistry sets the registry used to build formatters
// declared by type
func WithFormatterRegistry(r *formatter.Registry) Option {
	return func(s *Strategy) { s.formatters = r }
}

// New creates a strategy with the built-in handler types registered
func New(opts ...Option) *Strategy {
	s := NewEmpty(opts...)
	registerBuiltins(s)
	return s
}

// NewEmpty creates a strategy without any handler types
func NewEmpty(opts ...Option) *Strategy {
	s := &Strategy{factories: make(map[string]factory)}
	for _, opt := range opts {
		opt(s)
	}
	if s.formatters == nil {
		s.formatters = formatter.DefaultRegistry()
	}
	return s
}

// Register binds name to create. The parameter bag is decoded into a
// fresh T; unknown keys and values of the wrong type are configuration
// errors. Registering a name again replaces the earlier function.
func Register[T any](s *Strategy, name string, create func(T) (handler.Handler, error)) {
	f := func(params map[string]any) (handler.Handler, Common, error) {
		var p T
		if err := decode(params, &p); err != nil {
			return nil, Common{}, err
		}
		var common Common
		if sh, ok := any(p).(sharer); ok {
			common = sh.Shared()
		}
		h, err := create(p)
		return h, common, err
	}

	s.mu.Lock()
	s.factories[name] = f
	s.mu.Unlock()
}

// Has reports whether a handler type is registered
func (s *Strategy) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[name]
	return ok
}

// Types returns the registered type tags, sorted
func (s *Strategy) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.factories))
	for name := range s.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateHandler builds the handler described by cfg. A declared formatter
// is attached before the handler is returned; if that fails the handler
// is closed. Rate limiting, when configured, wraps the finished handler.
func (s *Strategy) CreateHandler(cfg config.HandlerConfig) (handler.Handler, error) {
	s.mu.RLock()
	f, ok := s.factories[cfg.Type]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: type %q", core.ErrHandlerNotFound, cfg.Type)
	}

	h, common, err := f(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("handler type %q: %w", cfg.Type, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: handler type %q returned no handler", core.ErrInvalidConfiguration, cfg.Type)
	}

	if cfg.Formatter != nil {
		if err := s.attachFormatter(h, cfg.Type, cfg.Formatter); err != nil {
			_ = h.Close()
			return nil, err
		}
	}

	if common.RateLimit > 0 {
		h = handler.NewRateLimited(h, common.RateLimit, common.Burst)
	}
	return h, nil
}

func (s *Strategy) attachFormatter(h handler.Handler, typ string, ref *config.FormatterRef) error {
	fh, ok := h.(handler.FormattableHandler)
	if !ok {
		return fmt.Errorf("%w: handler type %q does not accept a formatter", core.ErrInvalidConfiguration, typ)
	}
	f, err := s.BuildFormatter(ref)
	if err != nil {
		return err
	}
	fh.SetFormatter(f)
	return nil
}

// BuildFormatter resolves ref by name through the resolver, or by type
// through the formatter registry.
func (s *Strategy) BuildFormatter(ref *config.FormatterRef) (formatter.Formatter, error) {
	if ref.Name == "" {
		a, err := formatter.NewAdapter(s.formatters, ref.Type, ref.Params...)
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	if s.resolver == nil {
		return nil, fmt.Errorf("formatter %q: %w: no resolver configured", ref.Name, core.ErrNotResolved)
	}
	v, err := s.resolver.Resolve(ref.Name)
	if err != nil {
		return nil, fmt.Errorf("formatter %q: %w", ref.Name, err)
	}
	f, ok := v.(formatter.Formatter)
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: formatter %q is %T, not a Formatter", core.ErrInvalidConfiguration, ref.Name, v)
	}
	return f, nil
}

func decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			levelHook,
			overflowHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfiguration, err)
	}
	return nil
}

var (
	levelType    = reflect.TypeOf(core.Level(0))
	overflowType = reflect.TypeOf(handler.OverflowPolicy(0))
)

func levelHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != levelType {
		return data, nil
	}
	if from.Kind() == reflect.String {
		return core.ParseLevel(reflect.ValueOf(data).String())
	}
	n, err := enumValue(data, int64(core.DebugLevel), int64(core.PanicLevel))
	if err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	return core.Level(n), nil
}

func overflowHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != overflowType {
		return data, nil
	}
	if from.Kind() == reflect.String {
		name := reflect.ValueOf(data).String()
		p, ok := handler.ParseOverflowPolicy(name)
		if !ok {
			return nil, fmt.Errorf("unknown overflow policy %q", name)
		}
		return p, nil
	}
	n, err := enumValue(data, int64(handler.DropNewest), int64(handler.Block))
	if err != nil {
		return nil, fmt.Errorf("overflow policy: %w", err)
	}
	return handler.OverflowPolicy(n), nil
}

// enumValue reads a numeric enum value and checks it lies in [lo, hi].
func enumValue(data interface{}, lo, hi int64) (int64, error) {
	v := reflect.ValueOf(data)
	var n int64
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > uint64(hi) {
			return 0, fmt.Errorf("%d out of range [%d, %d]", u, lo, hi)
		}
		n = int64(u)
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("%v is not a whole number", f)
		}
		n = int64(f)
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", data, data)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}
