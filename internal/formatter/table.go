package formatter

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

var (
	defaultHeaderFG  = lipgloss.Color("12")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultKeyColor  = lipgloss.Color("14")
	defaultSeparator = lipgloss.Color("240")
)

// TableColors controls the rendered colors of RenderTable. Nil fields fall
// back to defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	SeparatorColor color.Color
}

type tableStyles struct {
	header, key, sep lipgloss.Style
}

func (tc TableColors) styles() tableStyles {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	return tableStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(pick(tc.HeaderFG, defaultHeaderFG)).Background(pick(tc.HeaderBG, defaultHeaderBG)),
		key:    lipgloss.NewStyle().Foreground(pick(tc.KeyColor, defaultKeyColor)),
		sep:    lipgloss.NewStyle().Foreground(pick(tc.SeparatorColor, defaultSeparator)),
	}
}

// TableOptions controls RenderTable.
type TableOptions struct {
	NoColor bool
	// MaxWidth caps each column's width. 0 = natural width.
	MaxWidth int
	Colors   TableColors
}

// PropertyRows describes declared properties as NAME/LABEL/TYPE/OPERATORS/OPTIONS rows.
func PropertyRows(props filter.Properties) [][]string {
	rows := [][]string{{"NAME", "LABEL", "TYPE", "OPERATORS", "OPTIONS"}}
	for _, p := range props {
		rows = append(rows, []string{p.Name, p.Label, string(p.Type), strings.Join(p.OperatorList(), " "), describeOptions(p)})
	}
	return rows
}

func describeOptions(p filter.Property) string {
	switch o := p.Options.(type) {
	case filter.StaticOptions:
		labels := make([]string, 0, len(o))
		for _, opt := range o {
			labels = append(labels, opt.Label)
		}
		return strings.Join(labels, ", ")
	case filter.SyncOptions:
		return fmt.Sprintf("(%d from list)", len(o("")))
	case filter.AsyncOptions:
		return "(fetched)"
	case *filter.CustomEditor:
		return "(" + o.EditorLabel() + ")"
	}
	return ""
}

// RenderTable renders rows as aligned columns. The first row is the header.
func RenderTable(rows [][]string, opts TableOptions) string {
	if len(rows) == 0 {
		return ""
	}
	st := opts.Colors.styles()
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	widths := make([]int, cols)
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	if opts.MaxWidth > 0 {
		for i := range widths {
			widths[i] = min(widths[i], opts.MaxWidth)
		}
	}

	const sep = "  "
	total := len(sep) * (cols - 1)
	for _, w := range widths {
		total += w
	}

	var b strings.Builder
	for ri, r := range rows {
		cells := make([]string, cols)
		for i := range cells {
			cell := ""
			if i < len(r) {
				cell = r[i]
			}
			cell = padRight(Truncate(cell, widths[i]), widths[i])
			if !opts.NoColor {
				switch {
				case ri == 0:
					cell = st.header.Render(cell)
				case i == 0:
					cell = st.key.Render(cell)
				}
			}
			cells[i] = cell
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, sep), " "))
		b.WriteByte('\n')
		if ri == 0 {
			line := strings.Repeat("─", total)
			if !opts.NoColor {
				line = st.sep.Render(line)
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
