package registry

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/philipp01105/nlog-channels/config"
	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
	"github.com/philipp01105/nlog-channels/handler"
	"github.com/philipp01105/nlog-channels/logger"
	"github.com/philipp01105/nlog-channels/processor"
	"github.com/philipp01105/nlog-channels/strategy"
)

// Registry maps channel names to live loggers.
type Registry struct {
	mu             sync.RWMutex
	channels       map[string]*logger.Logger
	order          []string
	processors     []processor.Func
	strategy       *strategy.Strategy
	defaultChannel string
	clock          core.Clock
	caller         bool
}

type options struct {
	resolver       core.Resolver
	strategy       *strategy.Strategy
	formatters     *formatter.Registry
	defaultChannel string
	clock          core.Clock
	caller         bool
}

// Option configures a Registry
type Option func(*options)

// WithResolver sets the resolver for processor and formatter names. The
// built-in processors (hostname, pid, uid) are tried after it.
func WithResolver(r core.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithStrategy replaces the handler strategy. The strategy's own resolver
// and formatter registry are used for formatters.
func WithStrategy(s *strategy.Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithFormatterRegistry sets the registry for formatters declared by type
func WithFormatterRegistry(r *formatter.Registry) Option {
	return func(o *options) { o.formatters = r }
}

// WithDefaultChannel overrides the configured default channel
func WithDefaultChannel(name string) Option {
	return func(o *options) { o.defaultChannel = name }
}

// WithCoarseClock timestamps entries from the coarse clock
func WithCoarseClock() Option {
	return func(o *options) { o.clock = core.CoarseClock() }
}

// WithClock sets the time source for entry timestamps
func WithClock(c core.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithCaller records the calling file and line on every entry
func WithCaller(enabled bool) Option {
	return func(o *options) { o.caller = enabled }
}

// New builds a registry from cfg and opens every configured channel.
// Channels open in the order they are first referenced. If any channel
// fails, the channels opened so far are closed and the error returned.
func New(cfg config.Config, opts ...Option) (*Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.WithDefaults()
	if o.defaultChannel != "" {
		cfg.DefaultChannel = o.defaultChannel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	resolver := core.ChainResolver{o.resolver, processor.Builtins()}
	processors, err := processor.Build(cfg.Processor, resolver)
	if err != nil {
		return nil, err
	}

	s := o.strategy
	if s == nil {
		s = strategy.New(
			strategy.WithResolver(o.resolver),
			strategy.WithFormatterRegistry(o.formatters),
		)
	}

	r := &Registry{
		channels:       make(map[string]*logger.Logger),
		processors:     processors,
		strategy:       s,
		defaultChannel: cfg.DefaultChannel,
		clock:          o.clock,
		caller:         o.caller,
	}

	for _, ch := range Ingest(cfg.Handlers, cfg.DefaultChannel) {
		if err := r.CreateChannel(ch.Name, ch); err != nil {
			// No channel survives a failed initialization
			_ = r.Close()
			return nil, err
		}
	}
	return r, nil
}

// Ingest groups handler declarations by the channels they feed. Channels
// appear in order of first reference and each channel lists its handlers
// in declaration order. A handler without channels feeds defaultChannel.
// The channel list is cleared on the per-channel copies.
func Ingest(handlers []config.NamedHandler, defaultChannel string) []config.ChannelConfig {
	var out []config.ChannelConfig
	index := make(map[string]int)

	for _, nh := range handlers {
		channels := nh.Channels
		if len(channels) == 0 {
			channels = []string{defaultChannel}
		}
		hc := nh.HandlerConfig
		hc.Channels = nil

		for _, name := range channels {
			i, ok := index[name]
			if !ok {
				i = len(out)
				index[name] = i
				out = append(out, config.ChannelConfig{Name: name})
			}
			out[i].Handlers = append(out[i].Handlers, hc)
		}
	}
	return out
}

// CreateChannel instantiates the handlers of cc and opens the channel.
// Entries are either config.HandlerConfig values, built through the
// strategy with their formatter attached, or ready handler.Handler values
// used as is. Anything else fails with core.ErrHandlerNotFound. On error
// the handlers built here are closed and nothing is indexed.
func (r *Registry) CreateChannel(name string, cc config.ChannelConfig) error {
	if name == "" {
		return fmt.Errorf("%w: channel name is empty", core.ErrInvalidConfiguration)
	}
	if r.HasLogger(name) {
		return errChannelExists(name)
	}

	handlers := make([]handler.Handler, 0, len(cc.Handlers))
	var built []handler.Handler
	fail := func(err error) error {
		_ = closeAll(built)
		return fmt.Errorf("channel %q: %w", name, err)
	}

	for i, item := range cc.Handlers {
		switch v := item.(type) {
		case config.HandlerConfig:
			h, err := r.strategy.CreateHandler(v)
			if err != nil {
				return fail(err)
			}
			built = append(built, h)
			handlers = append(handlers, h)
		case *config.HandlerConfig:
			if v == nil {
				return fail(fmt.Errorf("%w: handler %d is nil", core.ErrHandlerNotFound, i))
			}
			h, err := r.strategy.CreateHandler(*v)
			if err != nil {
				return fail(err)
			}
			built = append(built, h)
			handlers = append(handlers, h)
		case handler.Handler:
			handlers = append(handlers, v)
		default:
			return fail(fmt.Errorf("%w: handler %d is %T", core.ErrHandlerNotFound, i, item))
		}
	}

	if err := r.OpenChannel(name, handlers, r.processors); err != nil {
		_ = closeAll(built)
		return err
	}
	return nil
}

// OpenChannel indexes a new logger built from handlers and processors.
// Opening a name that is already live fails with
// core.ErrInvalidConfiguration.
func (r *Registry) OpenChannel(name string, handlers []handler.Handler, processors []processor.Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[name]; ok {
		return errChannelExists(name)
	}

	r.channels[name] = logger.NewBuilder().
		WithName(name).
		WithHandlers(handlers...).
		WithProcessors(processors).
		WithLevel(core.DebugLevel).
		WithClock(r.clock).
		WithCaller(r.caller).
		Build()
	r.order = append(r.order, name)
	return nil
}

// CloseChannel removes name from the registry and closes its handlers.
// Closing an unknown channel is a no-op.
func (r *Registry) CloseChannel(name string) error {
	r.mu.Lock()
	l, ok := r.channels[name]
	if ok {
		delete(r.channels, name)
		for i, n := range r.order {
			if n == name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return l.Close()
}

// HasLogger reports whether name maps to a live logger
func (r *Registry) HasLogger(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.channels[name]
	return ok
}

// GetLogger returns the live logger for name. Unknown names fail with
// core.ErrLoggerNotFound.
func (r *Registry) GetLogger(name string) (*logger.Logger, error) {
	r.mu.RLock()
	l, ok := r.channels[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: logger instance %q not found", core.ErrLoggerNotFound, name)
	}
	return l, nil
}

// Default returns the logger of the default channel
func (r *Registry) Default() (*logger.Logger, error) {
	return r.GetLogger(r.defaultChannel)
}

// DefaultChannel returns the name of the default channel
func (r *Registry) DefaultChannel() string {
	return r.defaultChannel
}

// Channels returns the live channel names in the order they were opened
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Processors returns the shared processor pipeline
func (r *Registry) Processors() []processor.Func {
	out := make([]processor.Func, len(r.processors))
	copy(out, r.processors)
	return out
}

// Close closes every channel and empties the registry. All close errors
// are returned together.
func (r *Registry) Close() error {
	r.mu.Lock()
	loggers := make([]*logger.Logger, 0, len(r.order))
	for _, name := range r.order {
		loggers = append(loggers, r.channels[name])
	}
	r.channels = make(map[string]*logger.Logger)
	r.order = nil
	r.mu.Unlock()

	var errs error
	for _, l := range loggers {
		errs = multierr.Append(errs, l.Close())
	}
	return errs
}

func errChannelExists(name string) error {
	return fmt.Errorf("%w: channel %q already exists", core.ErrInvalidConfiguration, name)
}

func closeAll(hs []handler.Handler) error {
	var errs error
	for _, h := range hs {
		errs = multierr.Append(errs, h.Close())
	}
	return errs
}
