package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/philipp01105/nlog-channels/config"
	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/logger"
	"github.com/philipp01105/nlog-channels/registry"
)

func newRootCommand(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "nlogctl",
		Short: "Inspect and drive logging channel configurations",
		Long: `nlogctl loads a channel configuration, builds every channel it declares
and reports the result. Handlers fan out to the channels they list; handlers
without channels feed the default channel.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg.RegisterFlags(root.PersistentFlags())
	if err := cfg.RegisterCompletions(root); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "register completions: %v\n", err)
	}

	root.AddCommand(
		newCheckCommand(cfg),
		newEmitCommand(cfg),
		newWatchCommand(cfg),
	)
	return root
}

func newCheckCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Build every channel and print the channel topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cfg, cmd.OutOrStdout())
		},
	}
}

func runCheck(cfg *Config, out io.Writer) error {
	c, err := config.Load(cfg.Path)
	if err != nil {
		return err
	}

	reg, err := registry.New(c, registry.WithDefaultChannel(cfg.DefaultChannel))
	if err != nil {
		return err
	}

	defaultChannel := reg.DefaultChannel()
	for _, ch := range registry.Ingest(c.WithDefaults().Handlers, defaultChannel) {
		types := make([]string, 0, len(ch.Handlers))
		for _, h := range ch.Handlers {
			if hc, ok := h.(config.HandlerConfig); ok {
				types = append(types, hc.Type)
			}
		}
		marker := ""
		if ch.Name == defaultChannel {
			marker = " (default)"
		}
		fmt.Fprintf(out, "%s%s: %s\n", ch.Name, marker, strings.Join(types, ", "))
	}
	fmt.Fprintf(out, "processors: %d\n", len(reg.Processors()))

	return reg.Close()
}

type emitOptions struct {
	Channel string
	Level   string
	Fields  map[string]string
}

func newEmitCommand(cfg *Config) *cobra.Command {
	opts := &emitOptions{}
	cmd := &cobra.Command{
		Use:   "emit [flags] <message>",
		Short: "Write one record to a channel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runEmit(cfg, opts, strings.Join(args, " "))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Channel, "channel", "", "channel to write to (default: the default channel)")
	flags.StringVarP(&opts.Level, "level", "l", "info", "record level")
	flags.StringToStringVarP(&opts.Fields, "field", "f", nil, "record field as key=value, repeatable")

	err := cmd.RegisterFlagCompletionFunc("level",
		cobra.FixedCompletions(levelNames, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		panic(err)
	}
	return cmd
}

func runEmit(cfg *Config, opts *emitOptions, msg string) error {
	level, err := core.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("--level: %w", err)
	}

	c, err := config.Load(cfg.Path)
	if err != nil {
		return err
	}

	reg, err := registry.New(c, registry.WithDefaultChannel(cfg.DefaultChannel))
	if err != nil {
		return err
	}

	channel := opts.Channel
	if channel == "" {
		channel = reg.DefaultChannel()
	}
	l, err := reg.GetLogger(channel)
	if err != nil {
		return multierr.Combine(err, reg.Close())
	}

	keys := make([]string, 0, len(opts.Fields))
	for k := range opts.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]logger.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, logger.String(k, opts.Fields[k]))
	}

	return multierr.Combine(l.Log(level, msg, fields...), reg.Close())
}

func newWatchCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the channels live and rebuild them when the file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}
}

// reloader owns the live registry of the watch command. A rebuilt
// registry replaces the live one only when every channel opened. Once
// closed, further reloads are ignored.
type reloader struct {
	cfg  *Config
	diag *logger.Logger

	mu     sync.Mutex
	reg    *registry.Registry
	closed bool
}

func (r *reloader) apply(c config.Config, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if err != nil {
		r.diag.Error("reload failed, keeping previous channels", logger.Err(err))
		return
	}

	next, err := registry.New(c, registry.WithDefaultChannel(r.cfg.DefaultChannel))
	if err != nil {
		r.diag.Error("rebuild failed, keeping previous channels", logger.Err(err))
		return
	}

	prev := r.reg
	r.reg = next
	if prev != nil {
		if err := prev.Close(); err != nil {
			r.diag.Warn("closing previous channels", logger.Err(err))
		}
	}
	r.diag.Info("channels ready", logger.String("channels", strings.Join(next.Channels(), ",")))
}

func (r *reloader) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.reg == nil {
		return nil
	}
	err := r.reg.Close()
	r.reg = nil
	return err
}

func runWatch(ctx context.Context, cfg *Config, diagOut io.Writer) error {
	diag, err := cfg.NewDiagnostics(diagOut)
	if err != nil {
		return err
	}
	defer diag.Close()

	c, err := config.Load(cfg.Path)
	if err != nil {
		return err
	}

	reg, err := registry.New(c, registry.WithDefaultChannel(cfg.DefaultChannel))
	if err != nil {
		return err
	}

	r := &reloader{cfg: cfg, diag: diag, reg: reg}
	diag.Info("watching",
		logger.String("path", cfg.Path),
		logger.String("channels", strings.Join(reg.Channels(), ",")))
	err = config.Watch(ctx, cfg.Path, r.apply)
	return multierr.Combine(err, r.close())
}
