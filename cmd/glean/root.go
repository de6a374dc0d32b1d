package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/glean/config"
)

// NewRootCmd creates the root command. Run without a subcommand it scrapes.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glean",
		Short: "Extract elements from a web page with a CSS selector",
		Long: `glean fetches a single page and prints the text and attributes of every
element matching a CSS selector.

Before fetching, glean reads the site's robots.txt and refuses paths that are
disallowed for its user agent. A missing robots.txt is not an error.

Examples:
  # Headlines as text
  glean -u https://example.com -s "h1, h2"

  # Links as JSON, no delay
  glean -u https://example.com -s "a[href]" -f json -d 0

Configuration is read from $XDG_CONFIG_HOME/glean/config.yaml and GLEAN_*
environment variables; flags win over both.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrapeCmd,
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: $XDG_CONFIG_HOME/glean/config.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	addScrapeFlags(cmd)

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file named by --config (or the default file) and the
// environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

// initLogger configures slog based on the LogConfig. --verbose forces debug.
func initLogger(cmd *cobra.Command, cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
