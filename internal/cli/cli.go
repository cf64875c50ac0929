// Package cli implements the riskgraph command-line interface.
//
// # Commands
//
//   - scan: analyze the manifests below a directory
//   - serve: expose the analysis over HTTP
//   - cache: manage the HTTP response cache
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Every command reads an optional TOML file from --config or
// $XDG_CONFIG_HOME/riskgraph/config.toml. Flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/riskgraph/pkg/buildinfo"
	"github.com/matzehuels/riskgraph/pkg/cache"
	"github.com/matzehuels/riskgraph/pkg/observability"
	"github.com/matzehuels/riskgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "riskgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogFatal = log.FatalLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug logging reports callers.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= LogDebug)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Riskgraph maps known vulnerabilities onto your dependency graph",
		Long:         `Riskgraph parses dependency manifests, resolves their transitive graphs through deps.dev, attaches OSV advisories and reports the dependencies that carry risk.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= LogDebug {
				observability.Register(observability.NewLogHooks(c.Logger))
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/riskgraph/config.toml)")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner opens the configured cache and creates a pipeline runner. The
// caller must Close the runner.
func (c *CLI) newRunner(ctx context.Context, cfg *Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r, err := pipeline.NewRunner(ch, cfg.Pipeline, c.Logger)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return r, nil
}

// openCache opens the configured backend. A file cache without an explicit
// directory lives in the XDG cache dir; if that cannot be determined,
// caching is disabled.
func (c *CLI) openCache(ctx context.Context, cfg *Config, noCache bool) (cache.Cache, error) {
	cc := cfg.Cache
	if noCache {
		cc.Backend = cache.BackendNone
	}
	if (cc.Backend == "" || cc.Backend == cache.BackendFile) && cc.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		cc.Dir = dir
	}
	return cache.Open(ctx, cc)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/riskgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/riskgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
