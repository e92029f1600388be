// Package cli implements the netweave command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/netweave/netweave/pkg/buildinfo"
	"github.com/netweave/netweave/pkg/config"
	"github.com/netweave/netweave/pkg/pipeline"
	"github.com/netweave/netweave/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "netweave"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location when set
	// via the --config flag.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "netweave",
		Short:        "Netweave converts, lays out, and renders networks",
		Long:         `Netweave is a CLI tool for working with network interchange formats (GEXF, GML, XNET), computing force-directed layouts, and rendering node-link diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: ./netweave.toml)")

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Store Helpers
// =============================================================================

// loadConfig loads the config file, falling back to defaults when absent.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		path = config.DefaultFilename
	}
	return config.Load(path)
}

// newRunner creates a pipeline runner for CLI use. With noStore set, the
// runner skips artifact caching entirely.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noStore bool) (*pipeline.Runner, store.Store) {
	if noStore {
		st := store.NewNullStore()
		return pipeline.NewRunner(st, c.Logger), st
	}
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		// Store trouble should not block local workflows.
		c.Logger.Warnf("store unavailable, continuing without caching: %v", err)
		st = store.NewNullStore()
	}
	return pipeline.NewRunner(st, c.Logger), st
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies CLI-specific defaults on top of pipeline defaults.
func setCLIDefaults(opts *pipeline.Options) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	// CLI-specific preferences (override pipeline defaults)
	opts.UsePositions = true
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
