// Package server exposes a loaded derivation graph over HTTP.
//
// The server wraps one [loader.State] and mirrors its two slots: when the
// data slot is set, /api/graph answers 200 with the graph; when the error
// slot is set, it answers 422 with the message. Rendered DOT and SVG
// artifacts are available under /api/graph.dot and /api/graph.svg, and the
// schema the payload was validated against under /api/schema.
//
//	st := loader.New().Load()
//	srv := server.New(st, server.WithLogger(logger))
//	err := srv.ListenAndServe(ctx, ":8080")
//
// [loader.State]: github.com/matzehuels/derivgraph/pkg/loader.State
package server
