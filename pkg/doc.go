// Package pkg holds the libraries behind derivgraph.
//
// # Layout
//
//   - [derivation]: the graph model, its JSON schema and structural validation
//   - [loader]: one-shot loading into write-once data and error slots
//   - [io]: JSON and YAML import and export
//   - [render/nodelink]: DOT and SVG node-link diagrams
//   - [cache]: render artifact caches (file, Redis, null)
//   - [server]: HTTP view of a load result
//   - [observability]: hooks for load, render and cache events
//   - [errors]: coded errors shared by the packages above
//
// # Data flow
//
//	bundled or file payload
//	         ↓
//	    [loader] (validate with [derivation].Parse)
//	         ↓
//	  data slot | error slot
//	         ↓
//	CLI, TUI browser, [server], [render/nodelink]
//
// # Quick Start
//
//	st := loader.New().Load()
//	if msg, failed := st.Err(); failed {
//	    log.Fatal(msg)
//	}
//	g, _ := st.Graph()
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//
// [derivation]: github.com/matzehuels/derivgraph/pkg/derivation
// [loader]: github.com/matzehuels/derivgraph/pkg/loader
// [io]: github.com/matzehuels/derivgraph/pkg/io
// [render/nodelink]: github.com/matzehuels/derivgraph/pkg/render/nodelink
// [cache]: github.com/matzehuels/derivgraph/pkg/cache
// [server]: github.com/matzehuels/derivgraph/pkg/server
// [observability]: github.com/matzehuels/derivgraph/pkg/observability
// [errors]: github.com/matzehuels/derivgraph/pkg/errors
package pkg
