// Package nodelink renders derivation graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render it to SVG in-process:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Render] does both steps for a named format and reports the work to the
// observability render hooks.
//
// # Layout
//
// Every node becomes a rounded box labelled "#id rule". Links are solid
// arrows in document order. With [Options.Children] set, each node's
// children list is drawn as dashed grey arrows as well.
//
// Ids referenced by a link or child entry that no node declares are drawn as
// dashed red placeholder boxes, so a graph with broken references still
// renders instead of silently dropping edges.
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly; no system installation is needed.
package nodelink
