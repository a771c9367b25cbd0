package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/derivgraph/pkg/buildinfo"
	"github.com/matzehuels/derivgraph/pkg/cache"
	dgio "github.com/matzehuels/derivgraph/pkg/io"
	"github.com/matzehuels/derivgraph/pkg/loader"
)

// appName is used for config and cache directories.
const appName = "derivgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *Config
}

// New creates a CLI whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Inspect, validate and render derivation graphs",
		Long: `derivgraph loads a derivation graph (nodes with a rule, inputs, outputs and
children, plus links between them), validates it against the bundled JSON
schema and lets you summarize, check, export, render, browse or serve it.

Without a file argument, commands use the derivation graph bundled with the binary.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			registerLogHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/derivgraph/config.toml)")

	root.AddCommand(c.showCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// load runs the loader over the file named in args, or over the bundled
// payload when args is empty. Read errors are returned; validation failures
// are reported through the state's error slot.
func (c *CLI) load(ctx context.Context, args []string) (*loader.State, []byte, error) {
	logger := loggerFromContext(ctx)
	opts := []loader.Option{loader.WithLogger(logger)}

	payload := loader.Bundled()
	if len(args) > 0 {
		data, err := dgio.ReadPayload(args[0])
		if err != nil {
			return nil, nil, err
		}
		payload = data
		opts = append(opts, loader.WithPayload(args[0], data))
	}

	st := loader.New(opts...).LoadContext(ctx)
	return st, payload, nil
}

// mustLoad is load for commands that need a graph: a set error slot is
// printed to w and turned into an error.
func (c *CLI) mustLoad(ctx context.Context, w io.Writer, args []string) (*loader.State, []byte, error) {
	st, payload, err := c.load(ctx, args)
	if err != nil {
		return nil, nil, err
	}
	if msg, failed := st.Err(); failed {
		printError(w, "%s: %s", st.Source, msg)
		return nil, nil, errInvalidGraph
	}
	return st, payload, nil
}

// newCache builds the render cache from config. Redis wins over the file
// cache when a URL is configured.
func (c *CLI) newCache(noCache bool) (cache.Cache, cache.Keyer, error) {
	keyer := cache.NewDefaultKeyer()
	if noCache {
		return cache.NewNullCache(), keyer, nil
	}
	if url := c.config.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(url)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(keyer, appName+":"), nil
	}

	dir := c.config.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), keyer, nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, keyer, nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/derivgraph/).
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

// configDir returns the config directory using XDG standard (~/.config/derivgraph/).
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
