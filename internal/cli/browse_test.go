package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/derivgraph/pkg/derivation"
)

func browseGraph(n int) *derivation.Graph {
	g := &derivation.Graph{}
	for i := range n {
		node := derivation.Node{ID: i, Rule: "Var", Outputs: []string{"x"}}
		if i+1 < n {
			node.Children = []int{i + 1}
			g.Links = append(g.Links, derivation.Link{Source: i, Target: i + 1})
		}
		g.Nodes = append(g.Nodes, node)
	}
	return g
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(BrowseModel)
	}
	return m
}

func TestBrowseNavigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantCursor int
		wantOffset int
	}{
		{"start", nil, 0, 0},
		{"down", []string{"down", "j"}, 2, 0},
		{"up clamps", []string{"up", "k"}, 0, 0},
		{"end scrolls", []string{"G"}, 19, 5},
		{"end then home", []string{"G", "g"}, 0, 0},
		{"past end clamps", []string{"G", "j", "down"}, 19, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewBrowseModel("test", browseGraph(20)), tt.keys...)
			if m.Cursor != tt.wantCursor || m.Offset != tt.wantOffset {
				t.Errorf("cursor/offset = %d/%d, want %d/%d", m.Cursor, m.Offset, tt.wantCursor, tt.wantOffset)
			}
		})
	}
}

func TestBrowseQuit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		_, cmd := NewBrowseModel("test", browseGraph(2)).Update(key(k))
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command is not tea.Quit", k)
		}
	}
}

func TestBrowseWindowSize(t *testing.T) {
	m := NewBrowseModel("test", browseGraph(40))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	if got := next.(BrowseModel).Height; got != 5 {
		t.Errorf("height = %d, want minimum 5", got)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 44})
	if got := next.(BrowseModel).Height; got != 30 {
		t.Errorf("height = %d, want 30", got)
	}
}

func TestBrowseView(t *testing.T) {
	g := browseGraph(3)
	g.Nodes[0].Children = append(g.Nodes[0].Children, 99)

	m := press(NewBrowseModel("bundled", g), "enter")
	view := m.View()

	for _, want := range []string{"bundled", "#0", "#2", "[1/3]", "Parents", "child 99, which does not exist"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m = press(m, "enter")
	if strings.Contains(m.View(), "Parents") {
		t.Error("detail still shown after toggling off")
	}
}

func TestBrowseEmpty(t *testing.T) {
	m := press(NewBrowseModel("empty", &derivation.Graph{}), "down", "G", "enter")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d", m.Cursor)
	}
	if _, ok := m.Selected(); ok {
		t.Error("Selected on empty graph")
	}
	if !strings.Contains(m.View(), "empty graph") {
		t.Error("empty view missing placeholder")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
