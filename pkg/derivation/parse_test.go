package derivation

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/derivgraph/pkg/errors"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Graph
	}{
		{
			name:  "SingleNode",
			input: `{"nodes":[{"id":1,"rule":"compile","inputs":["a.c"],"outputs":["a.o"],"children":[]}],"links":[]}`,
			want: &Graph{
				Nodes: []Node{{ID: 1, Rule: "compile", Inputs: []string{"a.c"}, Outputs: []string{"a.o"}, Children: []int{}}},
				Links: []Link{},
			},
		},
		{
			name:  "Empty",
			input: `{"nodes":[],"links":[]}`,
			want:  &Graph{Nodes: []Node{}, Links: []Link{}},
		},
		{
			name:  "DanglingChild",
			input: `{"nodes":[{"id":1,"rule":"link","inputs":[],"outputs":["app"],"children":[99]}],"links":[]}`,
			want: &Graph{
				Nodes: []Node{{ID: 1, Rule: "link", Inputs: []string{}, Outputs: []string{"app"}, Children: []int{99}}},
				Links: []Link{},
			},
		},
		{
			name:  "DanglingLink",
			input: `{"nodes":[],"links":[{"source":3,"target":4}]}`,
			want:  &Graph{Nodes: []Node{}, Links: []Link{{Source: 3, Target: 4}}},
		},
		{
			name: "PreservesOrder",
			input: `{
				"nodes": [
					{"id": 3, "rule": "c", "inputs": [], "outputs": [], "children": [1, 2]},
					{"id": 1, "rule": "a", "inputs": [], "outputs": [], "children": []},
					{"id": 2, "rule": "b", "inputs": [], "outputs": [], "children": []}
				],
				"links": [{"source": 3, "target": 2}, {"source": 3, "target": 1}]
			}`,
			want: &Graph{
				Nodes: []Node{
					{ID: 3, Rule: "c", Inputs: []string{}, Outputs: []string{}, Children: []int{1, 2}},
					{ID: 1, Rule: "a", Inputs: []string{}, Outputs: []string{}, Children: []int{}},
					{ID: 2, Rule: "b", Inputs: []string{}, Outputs: []string{}, Children: []int{}},
				},
				Links: []Link{{Source: 3, Target: 2}, {Source: 3, Target: 1}},
			},
		},
		{
			name:  "IDIntegralFloat",
			input: `{"nodes":[{"id":1.0,"rule":"r","inputs":[],"outputs":[],"children":[1e2,-3E0]}],"links":[{"source":2.000,"target":-0}]}`,
			want: &Graph{
				Nodes: []Node{{ID: 1, Rule: "r", Inputs: []string{}, Outputs: []string{}, Children: []int{100, -3}}},
				Links: []Link{{Source: 2, Target: 0}},
			},
		},
		{
			name:  "ExtraKeysIgnored",
			input: `{"nodes":[{"id":1,"rule":"r","inputs":[],"outputs":[],"children":[],"note":"x"}],"links":[],"version":2}`,
			want: &Graph{
				Nodes: []Node{{ID: 1, Rule: "r", Inputs: []string{}, Outputs: []string{}, Children: []int{}}},
				Links: []Link{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{
			name:     "IDAsString",
			input:    `{"nodes":[{"id":"x","rule":"compile","inputs":[],"outputs":[],"children":[]}],"links":[]}`,
			wantPath: "/nodes/0/id",
		},
		{
			name:     "IDMissing",
			input:    `{"nodes":[{"rule":"compile","inputs":[],"outputs":[],"children":[]}],"links":[]}`,
			wantPath: "/nodes/0",
		},
		{
			name:     "IDFractional",
			input:    `{"nodes":[{"id":1.5,"rule":"compile","inputs":[],"outputs":[],"children":[]}],"links":[]}`,
			wantPath: "/nodes/0/id",
		},
		{
			name:     "LinkMissingTarget",
			input:    `{"nodes":[],"links":[{"source":1}]}`,
			wantPath: "/links/0",
		},
		{
			name:     "InputsNotStrings",
			input:    `{"nodes":[{"id":1,"rule":"r","inputs":[1],"outputs":[],"children":[]}],"links":[]}`,
			wantPath: "/nodes/0/inputs/0",
		},
		{
			name:     "ChildrenNull",
			input:    `{"nodes":[{"id":1,"rule":"r","inputs":[],"outputs":[],"children":null}],"links":[]}`,
			wantPath: "/nodes/0/children",
		},
		{
			name:     "NodesNotArray",
			input:    `{"nodes":{},"links":[]}`,
			wantPath: "/nodes",
		},
		{
			name:     "LinksMissing",
			input:    `{"nodes":[]}`,
			wantPath: "",
		},
		{
			name:     "RootNotObject",
			input:    `[]`,
			wantPath: "",
		},
		{
			name:     "MalformedJSON",
			input:    `{"nodes": [`,
			wantPath: "",
		},
		{
			name:     "TrailingData",
			input:    `{"nodes":[],"links":[]} {}`,
			wantPath: "",
		},
		{
			name:     "IDOverflow",
			input:    `{"nodes":[{"id":123456789012345678901234567890,"rule":"r","inputs":[],"outputs":[],"children":[]}],"links":[]}`,
			wantPath: "/nodes/0/id",
		},
		{
			name:     "ChildOverflow",
			input:    `{"nodes":[{"id":1,"rule":"r","inputs":[],"outputs":[],"children":[2,99999999999999999999]}],"links":[]}`,
			wantPath: "/nodes/0/children/1",
		},
		{
			name:     "LinkTargetHugeExponent",
			input:    `{"nodes":[],"links":[{"source":1,"target":1e400}]}`,
			wantPath: "/links/0/target",
		},
		{
			name:     "EmptyPayload",
			input:    ``,
			wantPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatalf("Parse succeeded with %+v, want error", g)
			}
			if g != nil {
				t.Errorf("Parse returned graph alongside error")
			}

			var sve *SchemaValidationError
			if !errors.As(err, &sve) {
				t.Fatalf("error %T is not a *SchemaValidationError: %v", err, err)
			}
			if len(sve.Issues) == 0 {
				t.Fatal("no issues reported")
			}
			found := false
			for _, is := range sve.Issues {
				if is.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("issues %v do not include path %q", sve.Issues, tt.wantPath)
			}
			if !errs.Is(err, errs.ErrCodeInvalidSchema) {
				t.Errorf("error code = %q, want %q", errs.GetCode(err), errs.ErrCodeInvalidSchema)
			}
			if msg := errs.UserMessage(err); !strings.HasPrefix(msg, "schema validation failed: ") {
				t.Errorf("UserMessage = %q", msg)
			}
		})
	}
}

func TestParseIntegerOverflow(t *testing.T) {
	_, err := Parse([]byte(`{"nodes":[],"links":[{"source":-99999999999999999999,"target":1}]}`))
	var sve *SchemaValidationError
	if !errors.As(err, &sve) {
		t.Fatalf("err = %v, want *SchemaValidationError", err)
	}
	want := []Issue{{Path: "/links/0/source", Message: "-99999999999999999999 is out of range for an id"}}
	if diff := cmp.Diff(want, sve.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	if got := err.Error(); got != "schema validation failed: /links/0/source: -99999999999999999999 is out of range for an id" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIssueString(t *testing.T) {
	if got := (Issue{Path: "/nodes/0/id", Message: "bad"}).String(); got != "/nodes/0/id: bad" {
		t.Errorf("String() = %q", got)
	}
	if got := (Issue{Message: "bad"}).String(); got != "(root): bad" {
		t.Errorf("String() = %q", got)
	}
}

func TestSchema(t *testing.T) {
	s := Schema()
	if !strings.Contains(string(s), `"DerivationGraph"`) {
		t.Error("schema does not describe DerivationGraph")
	}
	s[0] = 'X'
	if Schema()[0] == 'X' {
		t.Error("Schema() must return a copy")
	}
}

func TestGraphNode(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: 1, Rule: "a"}, {ID: 2, Rule: "b"}}}
	n, ok := g.Node(2)
	if !ok || n.Rule != "b" {
		t.Errorf("Node(2) = %+v, %v", n, ok)
	}
	if _, ok := g.Node(3); ok {
		t.Error("Node(3) found, want missing")
	}
	if g.NodeCount() != 2 || g.LinkCount() != 0 {
		t.Errorf("counts = %d/%d", g.NodeCount(), g.LinkCount())
	}
}
