package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/derivgraph/pkg/derivation"
	errs "github.com/matzehuels/derivgraph/pkg/errors"
	"github.com/matzehuels/derivgraph/pkg/observability"
)

// Output formats accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDOT, FormatSVG}

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node's inputs and outputs to its label.
	Detailed bool
	// Children draws each node's children list as dashed edges.
	Children bool
}

// ToDOT converts a derivation graph to Graphviz DOT source.
// Nodes with a duplicated id are declared once, using the first occurrence.
func ToDOT(g *derivation.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	declared := make(map[int]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if declared[n.ID] {
			continue
		}
		declared[n.ID] = true
		fmt.Fprintf(&buf, "  %s [label=%q];\n", nodeName(n.ID), fmtLabel(n, opts.Detailed))
	}

	var missing []int
	ref := func(id int) string {
		if !declared[id] && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
		return nodeName(id)
	}

	var edges []string
	for _, l := range g.Links {
		edges = append(edges, fmt.Sprintf("  %s -> %s;\n", ref(l.Source), ref(l.Target)))
	}
	if opts.Children {
		for _, n := range g.Nodes {
			for _, c := range n.Children {
				edges = append(edges, fmt.Sprintf("  %s -> %s [style=dashed, color=grey50, arrowhead=empty];\n", nodeName(n.ID), ref(c)))
			}
		}
	}

	for _, id := range missing {
		fmt.Fprintf(&buf, "  %s [label=%q, style=\"rounded,dashed\", color=red, fontcolor=red];\n",
			nodeName(id), fmt.Sprintf("#%d (missing)", id))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id int) string {
	if id < 0 {
		return "n_" + strconv.Itoa(-id)
	}
	return "n" + strconv.Itoa(id)
}

func fmtLabel(n derivation.Node, detailed bool) string {
	label := fmt.Sprintf("#%d %s", n.ID, n.Rule)
	if !detailed {
		return label
	}

	parts := []string{label}
	if len(n.Inputs) > 0 {
		parts = append(parts, "in: "+strings.Join(n.Inputs, ", "))
	}
	if len(n.Outputs) > 0 {
		parts = append(parts, "out: "+strings.Join(n.Outputs, ", "))
	}
	return strings.Join(parts, "\n")
}

// Render produces the graph in the named format ("dot" or "svg").
func Render(ctx context.Context, g *derivation.Graph, format string, opts Options) (out []byte, err error) {
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, format, g.NodeCount())
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, format, len(out), time.Since(start), err)
	}()

	dot := ToDOT(g, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format %q (want %s)", format, strings.Join(Formats, " or "))
}

// RenderSVG renders a DOT graph to SVG using Graphviz. A canceled ctx
// stops it before Graphviz is started.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one whose
// viewBox starts at the origin, so the image scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
