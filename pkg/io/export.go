package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/derivgraph/pkg/derivation"
)

// WriteJSON encodes g as indented JSON and writes it to w.
// Nil slices are written as empty arrays so the output always validates.
func WriteJSON(g *derivation.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *derivation.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteYAML encodes g as YAML and writes it to w.
func WriteYAML(g *derivation.Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalized(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

func normalized(g *derivation.Graph) *derivation.Graph {
	out := &derivation.Graph{
		Nodes: make([]derivation.Node, len(g.Nodes)),
		Links: make([]derivation.Link, len(g.Links)),
	}
	copy(out.Links, g.Links)
	for i, n := range g.Nodes {
		out.Nodes[i] = derivation.Node{
			ID:       n.ID,
			Rule:     n.Rule,
			Inputs:   orEmpty(n.Inputs),
			Outputs:  orEmpty(n.Outputs),
			Children: orEmpty(n.Children),
		}
	}
	return out
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
