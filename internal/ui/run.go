package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts an interactive program over the model and blocks until the
// user finishes. Width/height of 0 are auto-detected from the terminal.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func Run(ctx context.Context, m *Model, startKeys []string, opts ...tea.ProgramOption) (*Model, error) {
	if m.cfg.Width <= 0 || m.cfg.Height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if m.cfg.Width <= 0 {
				m.width = w
			}
			if m.cfg.Height <= 0 {
				m.height = h
			}
			m.resize()
		}
	} else {
		opts = append(opts, tea.WithWindowSize(m.cfg.Width, m.cfg.Height))
	}
	ApplyStartupKeys(m, startKeys)

	opts = append(opts, tea.WithContext(ctx))
	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, err
	}
	return m, err
}
