package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/buildinfo"
	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/config"
	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/build"
	"github.com/matzehuels/orgtower/pkg/dag/transform"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName
)

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

	configPath string

	faceOnce sync.Once
	face     text.Measurer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Orgtower lays out governance hierarchies",
		Long: `Orgtower turns flat governance records (committees, SIGs, task groups) into
a hierarchy graph and lays it out as a force-directed graph or a tidy tree.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			installHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/orgtower/config.toml)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

// newCache returns the cache selected by cfg: Redis when a URL is set,
// the file cache otherwise. An unusable cache directory disables caching.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// measurer returns the font measurer shared by every layout the CLI
// produces. It falls back to the fixed-width estimate if the embedded
// font cannot be loaded.
func (c *CLI) measurer() text.Measurer {
	c.faceOnce.Do(func() {
		f, err := text.NewFace()
		if err != nil {
			c.Logger.Warn("font unavailable, estimating label widths", "err", err)
			c.face = text.Approx{}
			return
		}
		c.face = f
	})
	return c.face
}

// pipelineOptions seeds pipeline options from the loaded configuration.
func (c *CLI) pipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Mode:     cfg.Mode,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Force:    cfg.Force,
		Tree:     cfg.Tree,
		Measurer: c.measurer(),

		ActiveOnly: cfg.ActiveOnly,
	}
}

// sceneConfig seeds a scene configuration from the loaded configuration.
func sceneConfig(cfg config.Config) scene.Config {
	return scene.Config{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Mode:       scene.Mode(cfg.Mode),
		ActiveOnly: cfg.ActiveOnly,
		Force:      cfg.Force,
		Tree:       cfg.Tree,
		Viewport:   cfg.Viewport,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// isGraphFile reports whether path holds a serialized graph (a JSON
// object) rather than row data (a JSON array, CSV, or YAML).
func isGraphFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head, _ := bufio.NewReader(f).Peek(512)
	head = bytes.TrimLeft(head, " \t\r\n\ufeff")
	return len(head) > 0 && head[0] == '{'
}

// loadGraph returns the graph of input: read directly for graph files,
// built through the runner for row files.
func (c *CLI) loadGraph(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*dag.DAG, build.Report, bool, error) {
	if isGraphFile(input) {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			return nil, build.Report{}, false, err
		}
		root := opts.RootID
		if root == "" {
			root = build.RootID
		}
		if n := transform.BreakCycles(g, root); n > 0 {
			c.Logger.Warn("removed cycle edges", "file", input, "edges", n)
		}
		return g, build.Report{}, false, nil
	}
	opts.Source = input
	return runner.BuildWithCacheInfo(ctx, opts)
}
