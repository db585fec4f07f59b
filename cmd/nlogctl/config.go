package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/handler"
	"github.com/philipp01105/nlog-channels/logger"
)

var (
	levelNames  = []string{"debug", "info", "warn", "error"}
	formatNames = []string{"text", "json", "logfmt"}
)

// Config holds the flags shared by every command.
type Config struct {
	// Path of the channel configuration file (YAML or JSON)
	Path string
	// DefaultChannel overrides the default_channel of the file
	DefaultChannel string
	// LogLevel and LogFormat control nlogctl's own diagnostics
	LogLevel  string
	LogFormat string
}

// NewConfig returns a Config with zero-value fields.
func NewConfig() *Config {
	return &Config{}
}

// RegisterFlags adds the shared flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Path, "config", "c", "nlog.yaml", "channel configuration file")
	flags.StringVar(&c.DefaultChannel, "default-channel", "",
		"override the default channel of the configuration")
	flags.StringVar(&c.LogLevel, "log-level", "info",
		fmt.Sprintf("diagnostic log level, one of: %s", strings.Join(levelNames, ", ")))
	flags.StringVar(&c.LogFormat, "log-format", "text",
		fmt.Sprintf("diagnostic log format, one of: %s", strings.Join(formatNames, ", ")))
}

// RegisterCompletions registers shell completions for the shared flags.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(levelNames, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-level completion: %w", err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(formatNames, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-format completion: %w", err)
	}

	return nil
}

// NewDiagnostics builds the "nlogctl" channel that reports on the
// registries the commands manage.
func (c *Config) NewDiagnostics(w io.Writer) (*logger.Logger, error) {
	level, err := core.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: --log-level: %w", core.ErrInvalidConfiguration, err)
	}

	format := strings.ToLower(c.LogFormat)
	if !slices.Contains(formatNames, format) {
		return nil, fmt.Errorf("%w: --log-format %q", core.ErrInvalidConfiguration, c.LogFormat)
	}

	h := handler.NewCharmHandler(handler.CharmConfig{
		Writer: w,
		Format: format,
		Level:  level,
	})

	return logger.NewBuilder().
		WithName("nlogctl").
		WithHandler(h).
		WithLevel(level).
		Build(), nil
}
