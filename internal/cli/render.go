package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/derivgraph/pkg/cache"
	"github.com/matzehuels/derivgraph/pkg/derivation"
	errs "github.com/matzehuels/derivgraph/pkg/errors"
	"github.com/matzehuels/derivgraph/pkg/render/nodelink"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string
	format   string
	detailed bool
	children bool
	noCache  bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a derivation graph as a node-link diagram",
		Long: `Render a derivation graph as Graphviz DOT or SVG.

Each node is a box labelled "#id rule"; links are arrows. Ids referenced but
never declared appear as dashed red placeholders. Output is cached by
payload and options; pass --no-cache to skip the cache.

Defaults for --format, --detailed and --children come from the [render]
section of the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("format") {
				opts.format = c.config.Render.Format
			}
			if !flags.Changed("detailed") {
				opts.detailed = c.config.Render.Detailed
			}
			if !flags.Changed("children") {
				opts.children = c.config.Render.Children
			}
			if !slices.Contains(nodelink.Formats, opts.format) {
				return errs.New(errs.ErrCodeInvalidInput, "invalid format %q (want %s)", opts.format, strings.Join(nodelink.Formats, " or "))
			}
			return c.runRender(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", nodelink.FormatSVG, "output format: svg, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include inputs and outputs in node labels")
	cmd.Flags().BoolVar(&opts.children, "children", false, "draw children lists as dashed edges")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	w := cmd.OutOrStdout()

	st, payload, err := c.mustLoad(ctx, cmd.ErrOrStderr(), args)
	if err != nil {
		return err
	}
	g, _ := st.Graph()

	store, keyer, err := c.newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	prog := newProgress(logger)
	data, cached, err := renderCached(ctx, store, keyer, c.config.Cache.TTL, payload, g, opts)
	if err != nil {
		return err
	}
	if cached {
		logger.Debug("Render cache hit", "format", opts.format)
	}

	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered " + opts.output)
	printSuccess(w, "Rendered %s", strings.ToUpper(opts.format))
	printFile(w, opts.output)
	printStats(w, g.NodeCount(), g.LinkCount(), cached)
	return nil
}

// renderCached renders through the cache. A failing cache write is logged
// and the rendered bytes are still returned.
func renderCached(ctx context.Context, store cache.Cache, keyer cache.Keyer, ttl time.Duration, payload []byte, g *derivation.Graph, opts *renderOpts) ([]byte, bool, error) {
	key := keyer.RenderKey(cache.Hash(payload), cache.RenderKeyOpts{
		Format:   opts.format,
		Detailed: opts.detailed,
		Children: opts.children,
	})
	data, cached, err := cache.GetOrCompute(ctx, store, key, "render", ttl, func() ([]byte, error) {
		return nodelink.Render(ctx, g, opts.format, nodelink.Options{
			Detailed: opts.detailed,
			Children: opts.children,
		})
	})
	if err != nil && data != nil {
		loggerFromContext(ctx).Warn("Could not cache render", "err", err)
		return data, false, nil
	}
	return data, cached, err
}
