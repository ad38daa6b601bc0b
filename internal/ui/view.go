package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/filterbar/internal/completion"
	"github.com/oakwood-commons/filterbar/internal/formatter"
	"github.com/oakwood-commons/filterbar/pkg/filter"
)

const footerHelp = "←/→ move · ↑/↓ choose · enter select · space next · ctrl+o and/or · ctrl+y copy · esc close · ctrl+c done"

func (m *Model) View() tea.View {
	return tea.NewView(m.Render())
}

// Render draws the bar, its menu and the status and footer lines.
func (m *Model) Render() string {
	var lines []string
	lines = append(lines, m.header())
	lines = append(lines, lipgloss.NewStyle().Width(m.width).Render(m.renderTree()))
	lines = append(lines, m.renderMenu()...)
	if s := m.renderStatus(); s != "" {
		lines = append(lines, s)
	}
	lines = append(lines, m.st.footer.Render(formatter.Truncate(footerHelp, m.width)))
	out := strings.Join(lines, "\n")
	if m.cfg.NoColor {
		out = ansi.Strip(out)
	}
	return out
}

func (m *Model) header() string {
	title := strings.TrimSpace(m.cfg.Title)
	if title == "" {
		title = "filter"
	}
	fill := m.width - len([]rune(title)) - 4
	if fill < 0 {
		fill = 0
	}
	return m.st.border.Render("── ") + m.st.property.Render(title) + " " + m.st.border.Render(strings.Repeat("─", fill))
}

func (m *Model) renderTree() string {
	tree := m.bar.Tree()
	s := m.renderGroup(tree, filter.Root)
	if s == "" {
		return m.st.ghost.Render("No filters. Press enter to add one.")
	}
	return s
}

func (m *Model) renderGroup(g *filter.Group, p filter.Path) string {
	parts := make([]string, 0, g.Len())
	for i, child := range g.Conditions {
		cp := p.Child(i)
		switch n := child.(type) {
		case *filter.Group:
			parts = append(parts, m.renderGroup(n, cp))
		case *filter.Condition:
			parts = append(parts, m.renderCondition(n, cp))
		}
	}
	s := strings.Join(parts, " "+m.st.logical.Render(string(g.LogicalOperator))+" ")

	a := m.bar.Active()
	switch {
	case a.Is(filter.InputGroup) && a.Path.Equal(p):
		if s != "" {
			s += " "
		}
		s += m.inputView()
	case g.Len() == 0 && !p.IsRoot():
		s = m.st.ghost.Render("…")
	}
	if p.IsRoot() {
		return s
	}
	return m.st.bracket.Render("(") + s + m.st.bracket.Render(")")
}

func (m *Model) renderCondition(c *filter.Condition, p filter.Path) string {
	label := c.PropertyName
	if prop, ok := m.bar.Properties().Lookup(c.PropertyName); ok && prop.Label != "" {
		label = prop.Label
	}
	a := m.bar.Active()

	op := m.st.operator.Render(c.Operator)
	if a.Is(filter.InputOperator) && a.Path.Equal(p) && m.editing == nil {
		op = m.inputView()
	}

	var value string
	switch {
	case m.editing != nil && m.editing.Path.Equal(p):
		value = m.st.ghost.Render("[" + m.editing.Editor.EditorLabel() + "]")
	case a.Is(filter.InputValue) && a.Path.Equal(p):
		value = m.inputView()
	case c.Value == "":
		value = m.st.ghost.Render("…")
	default:
		value = m.st.value.Render(quoteValue(c.Value))
	}
	return m.st.property.Render(label) + " " + op + " " + value
}

func quoteValue(v string) string {
	if strings.ContainsAny(v, " \t\"()") {
		return fmt.Sprintf("%q", v)
	}
	return v
}

func (m *Model) inputView() string {
	return m.st.input.Render(m.input.View())
}

func (m *Model) renderMenu() []string {
	if len(m.items) == 0 {
		return nil
	}
	n := len(m.items)
	start, end := m.window.Bounds(n)
	above, below := m.window.Hidden(n)
	maxLabel := m.width - 4

	var lines []string
	if above > 0 {
		lines = append(lines, m.st.ghost.Render(fmt.Sprintf("  ↑ %d more", above)))
	}
	for i := start; i < end; i++ {
		it := m.items[i]
		label := formatter.Truncate(itemMarker(it)+it.Label, maxLabel)
		switch {
		case it.Disabled:
			lines = append(lines, "  "+m.st.disabled.Render(label))
		case i == m.bar.Highlighted():
			lines = append(lines, m.st.selected.Render("> "+label))
		default:
			lines = append(lines, "  "+m.st.menu.Render(label))
		}
	}
	if below > 0 {
		lines = append(lines, m.st.ghost.Render(fmt.Sprintf("  ↓ %d more", below)))
	}
	return lines
}

func itemMarker(it completion.Item) string {
	switch it.Kind {
	case completion.KindNewGroup:
		return "+ "
	case completion.KindAI:
		return "✦ "
	case completion.KindAction:
		return "» "
	case completion.KindCustom:
		return "✎ "
	}
	return ""
}

func (m *Model) renderStatus() string {
	if m.editing != nil {
		line := m.editor.View() + "  " + m.st.ghost.Render("enter apply · esc cancel")
		if err := m.bar.Error(); err != "" {
			line += "  " + m.st.errText.Render(err)
		}
		return line
	}
	if err := m.bar.Error(); err != "" {
		return m.st.errText.Render(err)
	}
	if m.bar.Synthesizing() {
		return m.spin.View() + " " + m.st.info.Render("Filtering by AI...")
	}
	if a := m.bar.Active(); a.Is(filter.InputValue) {
		if c := filter.FindConditionByPath(m.bar.Tree(), a.Path); c != nil {
			if msg := m.bar.OptionsError(c.PropertyName); msg != "" {
				return m.st.errText.Render(msg)
			}
		}
	}
	if m.status != "" {
		return m.st.info.Render(m.status)
	}
	return ""
}
