package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/derivgraph/pkg/cache"
	"github.com/matzehuels/derivgraph/pkg/render/nodelink"
	"github.com/matzehuels/derivgraph/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a derivation graph over HTTP",
		Long: `Serve a derivation graph over HTTP.

Endpoints:
  GET /healthz          liveness
  GET /api/graph        {"data": graph, "error": null} or 422 {"data": null, "error": msg}
  GET /api/graph.dot    DOT source (?detailed=true&children=true)
  GET /api/graph.svg    rendered SVG
  GET /api/schema       the JSON schema

An invalid graph is still served: the API answers 422 with the message.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			w := cmd.OutOrStdout()

			if !cmd.Flags().Changed("addr") {
				addr = c.config.Serve.Addr
			}

			st, payload, err := c.load(ctx, args)
			if err != nil {
				return err
			}
			if msg, failed := st.Err(); failed {
				printWarning(w, "Serving invalid graph: %s", msg)
			}

			store, keyer, err := c.newCache(noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(st,
				server.WithLogger(logger),
				server.WithCache(store, keyer, c.config.Cache.TTL),
				server.WithPayloadHash(cache.Hash(payload)),
				server.WithRenderOptions(nodelink.Options{
					Detailed: c.config.Render.Detailed,
					Children: c.config.Render.Children,
				}),
			)
			printInfo(w, "Listening on http://%s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not cache rendered SVG")
	return cmd
}
