package derivation

// Graph is a validated derivation graph. Node and link order is the order of
// declaration in the source document.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Links []Link `json:"links" yaml:"links"`
}

// Node is one derivation step.
type Node struct {
	ID       int      `json:"id" yaml:"id"`
	Rule     string   `json:"rule" yaml:"rule"`
	Inputs   []string `json:"inputs" yaml:"inputs"`
	Outputs  []string `json:"outputs" yaml:"outputs"`
	Children []int    `json:"children" yaml:"children"`
}

// Link is a directed edge between two nodes. Source and Target are expected
// to be node ids but are not required to be.
type Link struct {
	Source int `json:"source" yaml:"source"`
	Target int `json:"target" yaml:"target"`
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// LinkCount returns the number of links in the graph.
func (g *Graph) LinkCount() int { return len(g.Links) }

// Node returns the first node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
