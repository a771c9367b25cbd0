package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/derivgraph/pkg/derivation"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle    = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [file]",
		Short: "Browse a derivation graph interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.mustLoad(ctx, cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			g, _ := st.Graph()

			p := tea.NewProgram(NewBrowseModel(st.Source, g), tea.WithContext(ctx), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// BrowseModel is the bubbletea model of the node browser.
type BrowseModel struct {
	Source string
	Graph  *derivation.Graph
	Cursor int
	Offset int
	Height int
	// Detail shows the selected node's full record below the list.
	Detail bool

	parents  map[int][]int
	problems map[int][]derivation.Problem
}

// NewBrowseModel creates a browser over g.
func NewBrowseModel(source string, g *derivation.Graph) BrowseModel {
	m := BrowseModel{
		Source:   source,
		Graph:    g,
		Height:   15,
		parents:  make(map[int][]int),
		problems: make(map[int][]derivation.Problem),
	}
	for _, l := range g.Links {
		m.parents[l.Target] = append(m.parents[l.Target], l.Source)
	}
	for _, p := range derivation.Check(g) {
		if p.Kind == derivation.ProblemDuplicateID || p.Kind == derivation.ProblemDanglingChild {
			m.problems[p.Node] = append(m.problems[p.Node], p)
		}
	}
	return m
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Graph.Nodes)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "pgup":
			m.moveTo(m.Cursor - m.Height)
		case "pgdown":
			m.moveTo(m.Cursor + m.Height)
		case "home", "g":
			m.moveTo(0)
		case "end", "G":
			m.moveTo(n - 1)
		case "enter", " ":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
		m.moveTo(m.Cursor)
	}
	return m, nil
}

// moveTo clamps i to the node range and scrolls it into view.
func (m *BrowseModel) moveTo(i int) {
	n := len(m.Graph.Nodes)
	if n == 0 {
		m.Cursor, m.Offset = 0, 0
		return
	}
	m.Cursor = min(max(i, 0), n-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the node under the cursor.
func (m BrowseModel) Selected() (derivation.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Graph.Nodes) {
		return derivation.Node{}, false
	}
	return m.Graph.Nodes[m.Cursor], true
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Source))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.Graph.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (empty graph)"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Graph.Nodes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := m.Graph.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		flag := ""
		if len(m.problems[n.ID]) > 0 {
			flag = iconWarning
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("#%d", n.ID),
			n.Rule,
			truncate(strings.Join(n.Inputs, ", "), 28),
			truncate(strings.Join(n.Outputs, ", "), 28),
			fmt.Sprint(len(n.Children)),
			flag,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Rule", "Inputs", "Outputs", "Children", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 6 {
				return StyleWarning
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Graph.Nodes))))

	if node, ok := m.Selected(); ok && m.Detail {
		b.WriteString("\n\n")
		b.WriteString(m.detailView(node))
	}
	return b.String()
}

func (m BrowseModel) detailView(n derivation.Node) string {
	var b strings.Builder
	line := func(k, v string) {
		b.WriteString(detailKeyStyle.Render(k) + " " + v + "\n")
	}
	line("Node", fmt.Sprintf("#%d %s", n.ID, n.Rule))
	line("Inputs", orNone(strings.Join(n.Inputs, ", ")))
	line("Outputs", orNone(strings.Join(n.Outputs, ", ")))
	line("Children", formatIDs(n.Children, listLimit))
	line("Parents", formatIDs(m.parents[n.ID], listLimit))
	for _, p := range m.problems[n.ID] {
		b.WriteString(StyleWarning.Render(iconWarning+" "+p.String()) + "\n")
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
