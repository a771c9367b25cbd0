package derivation

import (
	"fmt"
	"maps"
	"slices"
)

// ProblemKind classifies an integrity problem.
type ProblemKind string

const (
	ProblemDuplicateID    ProblemKind = "duplicate-id"
	ProblemDanglingChild  ProblemKind = "dangling-child"
	ProblemDanglingSource ProblemKind = "dangling-source"
	ProblemDanglingTarget ProblemKind = "dangling-target"
)

// Problem is a referential-integrity finding. Problems never make a graph
// invalid; they are reported for consumers that want them.
type Problem struct {
	Kind ProblemKind `json:"kind"`
	// Node is the node id the problem was found on (for links, the index).
	Node int `json:"node"`
	// Ref is the id that could not be resolved, or the duplicated id.
	Ref int `json:"ref"`
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemDuplicateID:
		return fmt.Sprintf("node id %d is declared more than once", p.Ref)
	case ProblemDanglingChild:
		return fmt.Sprintf("node %d lists child %d, which does not exist", p.Node, p.Ref)
	case ProblemDanglingSource:
		return fmt.Sprintf("link %d has source %d, which does not exist", p.Node, p.Ref)
	case ProblemDanglingTarget:
		return fmt.Sprintf("link %d has target %d, which does not exist", p.Node, p.Ref)
	}
	return string(p.Kind)
}

// Check reports duplicate node ids and references to ids that no node
// declares. Problems are returned in document order.
func Check(g *Graph) []Problem {
	var problems []Problem
	ids := make(map[int]int, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID]++
		if ids[n.ID] == 2 {
			problems = append(problems, Problem{Kind: ProblemDuplicateID, Node: n.ID, Ref: n.ID})
		}
	}
	for _, n := range g.Nodes {
		for _, c := range n.Children {
			if ids[c] == 0 {
				problems = append(problems, Problem{Kind: ProblemDanglingChild, Node: n.ID, Ref: c})
			}
		}
	}
	for i, l := range g.Links {
		if ids[l.Source] == 0 {
			problems = append(problems, Problem{Kind: ProblemDanglingSource, Node: i, Ref: l.Source})
		}
		if ids[l.Target] == 0 {
			problems = append(problems, Problem{Kind: ProblemDanglingTarget, Node: i, Ref: l.Target})
		}
	}
	return problems
}

// RuleCount is the number of nodes using a rule.
type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Summary describes the shape of a graph.
type Summary struct {
	Nodes int         `json:"nodes"`
	Links int         `json:"links"`
	Rules []RuleCount `json:"rules"`
	// Roots are nodes that no child list and no link targets.
	Roots []int `json:"roots"`
	// Leaves are nodes without children.
	Leaves []int `json:"leaves"`
}

// Summarize computes counts, per-rule totals (sorted by rule), roots and
// leaves. Roots and leaves keep document order.
func Summarize(g *Graph) Summary {
	s := Summary{Nodes: len(g.Nodes), Links: len(g.Links)}

	referenced := make(map[int]bool)
	for _, n := range g.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	for _, l := range g.Links {
		referenced[l.Target] = true
	}

	rules := make(map[string]int)
	for _, n := range g.Nodes {
		rules[n.Rule]++
		if !referenced[n.ID] {
			s.Roots = append(s.Roots, n.ID)
		}
		if len(n.Children) == 0 {
			s.Leaves = append(s.Leaves, n.ID)
		}
	}
	for _, r := range slices.Sorted(maps.Keys(rules)) {
		s.Rules = append(s.Rules, RuleCount{Rule: r, Count: rules[r]})
	}
	return s
}
