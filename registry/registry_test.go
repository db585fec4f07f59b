package registry_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/nlog-channels/config"
	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
	"github.com/philipp01105/nlog-channels/handler"
	"github.com/philipp01105/nlog-channels/processor"
	"github.com/philipp01105/nlog-channels/registry"
	"github.com/philipp01105/nlog-channels/strategy"
)

func named(key, typ string, channels ...string) config.NamedHandler {
	return config.NamedHandler{Key: key, HandlerConfig: config.HandlerConfig{Type: typ, Channels: channels}}
}

func memories(t *testing.T, reg *registry.Registry, channel string) []*handler.MemoryHandler {
	t.Helper()
	l, err := reg.GetLogger(channel)
	require.NoError(t, err)
	var out []*handler.MemoryHandler
	for _, h := range l.Handlers() {
		m, ok := h.(*handler.MemoryHandler)
		require.True(t, ok, "handler is %T", h)
		out = append(out, m)
	}
	return out
}

func TestIngest(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		handlers []config.NamedHandler
		want     map[string][]string // channel -> handler types, in order
		order    []string
	}{
		"fan out keeps declaration order": {
			handlers: []config.NamedHandler{
				named("h1", "null", "a", "b"),
				named("h2", "test", "b"),
				named("h3", "stream", "a"),
			},
			want:  map[string][]string{"a": {"null", "stream"}, "b": {"null", "test"}},
			order: []string{"a", "b"},
		},
		"missing channels use default": {
			handlers: []config.NamedHandler{named("h1", "null")},
			want:     map[string][]string{"main": {"null"}},
			order:    []string{"main"},
		},
		"explicit empty list uses default": {
			handlers: []config.NamedHandler{{Key: "h1", HandlerConfig: config.HandlerConfig{Type: "null", Channels: []string{}}}},
			want:     map[string][]string{"main": {"null"}},
			order:    []string{"main"},
		},
		"first reference decides channel order": {
			handlers: []config.NamedHandler{
				named("h1", "null", "z"),
				named("h2", "test"),
				named("h3", "null", "a", "z"),
			},
			want:  map[string][]string{"z": {"null", "null"}, "main": {"test"}, "a": {"null"}},
			order: []string{"z", "main", "a"},
		},
		"no handlers": {
			handlers: nil,
			want:     map[string][]string{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := registry.Ingest(tc.handlers, "main")

			var order []string
			types := map[string][]string{}
			for _, ch := range got {
				order = append(order, ch.Name)
				for _, h := range ch.Handlers {
					hc, ok := h.(config.HandlerConfig)
					require.True(t, ok)
					assert.Nil(t, hc.Channels, "channel list must be stripped")
					types[ch.Name] = append(types[ch.Name], hc.Type)
				}
			}
			assert.Equal(t, tc.order, order)
			assert.Equal(t, tc.want, types)
		})
	}
}

func TestNew_NullScenario(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{
		Handlers:  []config.NamedHandler{named("h1", "null", "a", "b")},
		Processor: []any{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	for _, ch := range []string{"a", "b"} {
		l, err := reg.GetLogger(ch)
		require.NoError(t, err)
		require.Len(t, l.Handlers(), 1)
		assert.IsType(t, &handler.NullHandler{}, l.Handlers()[0])
		assert.Equal(t, ch, l.Name())
	}

	_, err = reg.GetLogger("c")
	require.ErrorIs(t, err, core.ErrLoggerNotFound)
	assert.Contains(t, err.Error(), `"c"`)

	assert.Equal(t, []string{"a", "b"}, reg.Channels())
}

func TestNew_UnknownTypeLeavesNothingLive(t *testing.T) {
	t.Parallel()

	tracked := handler.NewMemoryHandler(core.DebugLevel)
	s := strategy.New()
	strategy.Register(s, "tracked", func(strategy.TestParams) (handler.Handler, error) {
		return tracked, nil
	})

	reg, err := registry.New(config.Config{
		Handlers: []config.NamedHandler{
			named("ok", "tracked", "first"),
			named("h1", "unknown_type", "second"),
		},
	}, registry.WithStrategy(s))

	require.ErrorIs(t, err, core.ErrHandlerNotFound)
	assert.Nil(t, reg)
	assert.True(t, tracked.Closed(), "channels opened before the failure must be closed")
}

func TestNew_NonCallableProcessor(t *testing.T) {
	t.Parallel()

	_, err := registry.New(config.Config{
		Handlers:  []config.NamedHandler{named("h1", "null")},
		Processor: []any{"not_a_processor_name"},
	}, registry.WithResolver(core.MapResolver{"not_a_processor_name": "plain value"}))

	require.ErrorIs(t, err, core.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "processor must be callable")
}

func TestNew_UnresolvedProcessor(t *testing.T) {
	t.Parallel()

	_, err := registry.New(config.Config{
		Handlers:  []config.NamedHandler{named("h1", "null")},
		Processor: []any{"nobody"},
	})
	require.ErrorIs(t, err, core.ErrNotResolved)
	assert.Contains(t, err.Error(), "nobody")
}

func TestNew_SharedPipeline(t *testing.T) {
	t.Parallel()

	appendMsg := func(s string) processor.Func {
		return func(e *core.Entry) *core.Entry {
			e.Message += s
			return e
		}
	}

	reg, err := registry.New(config.Config{
		Handlers: []config.NamedHandler{
			named("a", "test", "x"),
			named("b", "test", "y", "z"),
		},
		Processor: []any{appendMsg("-f1"), "f2"},
	}, registry.WithResolver(core.MapResolver{"f2": appendMsg("-f2")}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	for _, ch := range reg.Channels() {
		l, err := reg.GetLogger(ch)
		require.NoError(t, err)
		l.Info("msg")

		mem := memories(t, reg, ch)[0]
		assert.True(t, mem.HasMessage("msg-f1-f2"), "channel %s", ch)
		assert.Equal(t, ch, mem.Entries()[0].Channel)
	}
	assert.Len(t, reg.Processors(), 2)
}

func TestNew_BuiltinProcessors(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{
		Handlers:  []config.NamedHandler{named("a", "test")},
		Processor: []any{"pid"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	l, err := reg.Default()
	require.NoError(t, err)
	l.Info("hello")

	e := memories(t, reg, "main")[0].Entries()[0]
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "pid", e.Fields[0].Key)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	var got strategy.RotatingFileParams
	s := strategy.NewEmpty()
	strategy.Register(s, "rotating_file", func(p strategy.RotatingFileParams) (handler.Handler, error) {
		got = p
		return handler.NewMemoryHandler(p.Level), nil
	})

	reg, err := registry.New(config.Config{}, registry.WithStrategy(s))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	assert.Equal(t, "main", reg.DefaultChannel())
	assert.Equal(t, []string{"main"}, reg.Channels())
	assert.Equal(t, config.DefaultLogPath, got.Path)
	assert.Equal(t, core.DebugLevel, got.Level)
	assert.Empty(t, reg.Processors())
}

func TestNew_EmptyHandlerList(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	assert.Empty(t, reg.Channels())
	_, err = reg.Default()
	require.ErrorIs(t, err, core.ErrLoggerNotFound)
}

func TestNew_DefaultChannelOption(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{
		Handlers: []config.NamedHandler{named("h", "null")},
	}, registry.WithDefaultChannel("app"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	assert.True(t, reg.HasLogger("app"))
	assert.False(t, reg.HasLogger("main"))
	_, err = reg.Default()
	require.NoError(t, err)
}

func TestNew_FormatterAttached(t *testing.T) {
	t.Parallel()

	shared := formatter.NewJSONFormatter(formatter.Config{})
	reg, err := registry.New(config.Config{
		Handlers: []config.NamedHandler{
			{Key: "byname", HandlerConfig: config.HandlerConfig{Type: "test", Formatter: &config.FormatterRef{Name: "json_fmt"}}},
			{Key: "bytype", HandlerConfig: config.HandlerConfig{Type: "test", Formatter: &config.FormatterRef{Type: "text"}}},
		},
	}, registry.WithResolver(core.MapResolver{"json_fmt": shared}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	mems := memories(t, reg, "main")
	require.Len(t, mems, 2)
	assert.Same(t, shared, mems[0].Formatter())
	assert.IsType(t, &formatter.Adapter{}, mems[1].Formatter())
}

func TestNew_BadFormatterFails(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{
		Handlers: []config.NamedHandler{
			{Key: "h", HandlerConfig: config.HandlerConfig{Type: "test", Formatter: &config.FormatterRef{Name: "fmt"}}},
		},
	}, registry.WithResolver(core.MapResolver{"fmt": struct{}{}}))
	require.ErrorIs(t, err, core.ErrInvalidConfiguration)
	assert.Nil(t, reg)
}

func TestNew_FileHandlerEndToEnd(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	reg, err := registry.New(config.Config{
		Handlers: []config.NamedHandler{{Key: "file", HandlerConfig: config.HandlerConfig{
			Type:   "rotating_file",
			Params: map[string]any{"path": path, "level": "info", "max_files": 3},
		}}},
	})
	require.NoError(t, err)

	l, err := reg.Default()
	require.NoError(t, err)
	l.Debug("skipped")
	l.Info("written")
	require.NoError(t, reg.Close())

	assert.FileExists(t, path)
}

func TestCreateChannel(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "null")}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	ready := handler.NewMemoryHandler(core.DebugLevel)
	err = reg.CreateChannel("audit", config.ChannelConfig{Handlers: []any{
		config.HandlerConfig{Type: "test"},
		ready,
		&config.HandlerConfig{Type: "null"},
	}})
	require.NoError(t, err)

	l, err := reg.GetLogger("audit")
	require.NoError(t, err)
	hs := l.Handlers()
	require.Len(t, hs, 3)
	assert.IsType(t, &handler.MemoryHandler{}, hs[0])
	assert.Same(t, ready, hs[1])
	assert.IsType(t, &handler.NullHandler{}, hs[2])
}

func TestCreateChannel_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		name    string
		entries []any
		wantErr error
	}{
		"unsupported entry": {
			name:    "x",
			entries: []any{config.HandlerConfig{Type: "test"}, 42},
			wantErr: core.ErrHandlerNotFound,
		},
		"nil config pointer": {
			name:    "x",
			entries: []any{(*config.HandlerConfig)(nil)},
			wantErr: core.ErrHandlerNotFound,
		},
		"nil entry": {
			name:    "x",
			entries: []any{nil},
			wantErr: core.ErrHandlerNotFound,
		},
		"unknown type": {
			name:    "x",
			entries: []any{config.HandlerConfig{Type: "carrier_pigeon"}},
			wantErr: core.ErrHandlerNotFound,
		},
		"duplicate": {
			name:    "main",
			entries: []any{config.HandlerConfig{Type: "test"}},
			wantErr: core.ErrInvalidConfiguration,
		},
		"empty name": {
			name:    "",
			wantErr: core.ErrInvalidConfiguration,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "null")}})
			require.NoError(t, err)
			t.Cleanup(func() { _ = reg.Close() })

			err = reg.CreateChannel(tc.name, config.ChannelConfig{Handlers: tc.entries})
			require.ErrorIs(t, err, tc.wantErr)
			if tc.name != "main" {
				assert.False(t, reg.HasLogger(tc.name))
			}
			assert.Equal(t, []string{"main"}, reg.Channels())
		})
	}
}

func TestCreateChannel_FailureClosesBuiltHandlers(t *testing.T) {
	t.Parallel()

	var built []*handler.MemoryHandler
	s := strategy.New()
	strategy.Register(s, "tracked", func(p strategy.TestParams) (handler.Handler, error) {
		m := handler.NewMemoryHandler(p.Level)
		built = append(built, m)
		return m, nil
	})

	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "null")}}, registry.WithStrategy(s))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	caller := handler.NewMemoryHandler(core.DebugLevel)
	err = reg.CreateChannel("x", config.ChannelConfig{Handlers: []any{
		config.HandlerConfig{Type: "tracked"},
		caller,
		config.HandlerConfig{Type: "nope"},
	}})
	require.ErrorIs(t, err, core.ErrHandlerNotFound)

	require.Len(t, built, 1)
	assert.True(t, built[0].Closed())
	assert.False(t, caller.Closed(), "handlers supplied by the caller stay open")
}

func TestOpenChannel_Duplicate(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "null", "a")}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	err = reg.OpenChannel("a", nil, nil)
	require.ErrorIs(t, err, core.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, reg.OpenChannel("b", []handler.Handler{handler.NewNullHandler(core.DebugLevel)}, nil))
	assert.Equal(t, []string{"a", "b"}, reg.Channels())
}

func TestCloseChannel(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "test", "a", "b")}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	mem := memories(t, reg, "a")[0]

	require.NoError(t, reg.CloseChannel("a"))
	assert.False(t, reg.HasLogger("a"))
	assert.True(t, mem.Closed())
	_, err = reg.GetLogger("a")
	require.ErrorIs(t, err, core.ErrLoggerNotFound)

	// Idempotent, and unknown names are a no-op
	require.NoError(t, reg.CloseChannel("a"))
	require.NoError(t, reg.CloseChannel("never"))
	assert.Equal(t, []string{"b"}, reg.Channels())

	// The name can be reopened once closed
	require.NoError(t, reg.CreateChannel("a", config.ChannelConfig{Handlers: []any{config.HandlerConfig{Type: "null"}}}))
	assert.True(t, reg.HasLogger("a"))
}

type failingCloser struct{ err error }

func (f failingCloser) Handle(*core.Entry) error { return nil }
func (f failingCloser) Close() error             { return f.err }

func TestClose_CombinesErrors(t *testing.T) {
	t.Parallel()

	errA, errB := errors.New("close a"), errors.New("close b")
	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "null")}})
	require.NoError(t, err)

	require.NoError(t, reg.OpenChannel("a", []handler.Handler{failingCloser{errA}}, nil))
	require.NoError(t, reg.OpenChannel("b", []handler.Handler{failingCloser{errB}}, nil))

	err = reg.Close()
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	assert.Empty(t, reg.Channels())
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "test")}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			name := fmt.Sprintf("ch-%d", g)
			for i := 0; i < 50; i++ {
				l, err := reg.Default()
				if err != nil {
					t.Error(err)
					return
				}
				l.Info("hello")

				_ = reg.CreateChannel(name, config.ChannelConfig{Handlers: []any{config.HandlerConfig{Type: "null"}}})
				_ = reg.HasLogger(name)
				_ = reg.Channels()
				_ = reg.CloseChannel(name)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, []string{"main"}, reg.Channels())
	assert.Len(t, memories(t, reg, "main")[0].Entries(), 8*50)
}

func TestRegistry_ConcurrentDuplicateOpen(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(config.Config{Handlers: []config.NamedHandler{named("h", "null")}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.CreateChannel("race", config.ChannelConfig{Handlers: []any{config.HandlerConfig{Type: "null"}}})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			} else if !errors.Is(err, core.ErrInvalidConfiguration) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}
