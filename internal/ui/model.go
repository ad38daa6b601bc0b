// Package ui is a terminal host for the filter bar. It renders the tree as a
// single editable line with a completion menu underneath and forwards key
// presses to a filterbar.Bar.
package ui

import (
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/filterbar/internal/completion"
	"github.com/oakwood-commons/filterbar/internal/formatter"
	"github.com/oakwood-commons/filterbar/internal/limiter"
	"github.com/oakwood-commons/filterbar/internal/router"
	"github.com/oakwood-commons/filterbar/internal/synth"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/filterbar"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	defaultMaxItems = 8
)

// Config configures a Model.
type Config struct {
	Width    int
	Height   int
	NoColor  bool
	MaxItems int
	Theme    *Theme
	Title    string
	// Notifier delivers background option loads. It must be the notifier
	// whose Notify was handed to the bar via WithOnOptionsLoaded.
	Notifier *Notifier
	// Synchronous runs AI calls inline instead of as commands. Snapshots
	// use it so results are visible without an event loop.
	Synchronous bool
	// Unfocused starts without focusing the root group.
	Unfocused bool
}

type synthMsg struct {
	outcome synth.Outcome
}

// Model drives a filterbar.Bar from bubbletea messages.
type Model struct {
	bar *filterbar.Bar
	cfg Config
	st  styles

	input  textinput.Model
	editor textinput.Model
	spin   spinner.Model

	items      []completion.Item
	window     limiter.Config
	lastActive *filter.ActiveInput
	editing    *router.EditorSession

	width  int
	height int
	status string
	done   bool
}

// NewModel wraps bar.
func NewModel(bar *filterbar.Bar, cfg Config) *Model {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaultMaxItems
	}
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 500

	ed := textinput.New()
	ed.CharLimit = 500

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		bar:    bar,
		cfg:    cfg,
		st:     newStyles(theme, cfg.NoColor),
		input:  ti,
		editor: ed,
		spin:   s,
		window: limiter.Config{Limit: cfg.MaxItems},
		width:  cfg.Width,
		height: cfg.Height,
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	m.resize()
	if !cfg.Unfocused && bar.Active() == nil {
		bar.Focus(filter.FocusGroup(filter.Root))
	}
	m.refresh()
	return m
}

// Bar returns the wrapped bar.
func (m *Model) Bar() *filterbar.Bar { return m.bar }

// Tree returns the current filter tree.
func (m *Model) Tree() *filter.Group { return m.bar.Tree() }

// Done reports whether the user asked to finish.
func (m *Model) Done() bool { return m.done }

// Items returns the menu as last rendered.
func (m *Model) Items() []completion.Item { return m.items }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.cfg.Notifier.wait())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case optionsMsg:
		m.bar.OptionsUpdated(msg.property)
		m.refresh()
		return m, m.cfg.Notifier.wait()

	case synthMsg:
		m.bar.ApplySynthesis(msg.outcome)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.bar.Synthesizing() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.bar.Editor() != nil {
		m.editor, cmd = m.editor.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	m.status = ""
	if key == "ctrl+c" {
		m.done = true
		return tea.Quit
	}

	if m.bar.Editor() != nil {
		return m.handleEditorKey(msg)
	}

	if m.bar.Active() == nil {
		switch {
		case key == "esc":
			m.done = true
			return tea.Quit
		case key == "enter" || key == "tab":
			m.bar.Focus(filter.FocusGroup(filter.Root))
			m.refresh()
			return nil
		case msg.Text == "":
			return nil
		}
		m.bar.Focus(filter.FocusGroup(filter.Root))
		m.refresh()
	}

	switch key {
	case "ctrl+o":
		m.bar.ToggleLogicalOperator(m.currentGroup())
		m.refresh()
		return nil
	case "ctrl+y":
		if err := CopyToClipboard(formatter.Expression(m.bar.Tree(), m.bar.Properties())); err != nil {
			m.status = "Copy failed: " + err.Error()
		} else {
			m.status = "Copied filter to clipboard"
		}
		return nil
	}

	var cmds []tea.Cmd
	if !m.bar.Key(key, m.input.Position()) {
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		if m.input.Value() != before {
			m.bar.SetText(m.input.Value())
		}
	}
	m.refresh()
	cmds = append(cmds, m.synthesize())
	return tea.Batch(cmds...)
}

func (m *Model) handleEditorKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.bar.CustomChange(strings.TrimSpace(m.editor.Value()))
	case "esc":
		m.bar.CustomCancel()
	default:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return cmd
	}
	m.refresh()
	return nil
}

// currentGroup is the group the focused leaf belongs to.
func (m *Model) currentGroup() filter.Path {
	a := m.bar.Active()
	switch {
	case a == nil:
		return filter.Root
	case a.Kind == filter.InputGroup:
		return a.Path
	}
	return a.Path.Parent()
}

// synthesize turns a requested AI call into a command, or runs it inline in
// synchronous mode.
func (m *Model) synthesize() tea.Cmd {
	run := m.bar.SynthesizeCmd()
	if run == nil {
		return nil
	}
	if m.cfg.Synchronous {
		m.bar.ApplySynthesis(run())
		m.refresh()
		return nil
	}
	return tea.Batch(
		func() tea.Msg { return synthMsg{outcome: run()} },
		m.spin.Tick,
	)
}

// refresh mirrors the bar's state into the text inputs and menu.
func (m *Model) refresh() {
	if ed := m.bar.Editor(); ed != nil {
		if ed != m.editing {
			m.editing = ed
			m.editor.Prompt = ed.Editor.EditorLabel() + " "
			value := ""
			if c := filter.FindConditionByPath(m.bar.Tree(), ed.Path); c != nil {
				value = c.Value
			}
			if ed.Search != "" {
				value = ed.Search
			}
			m.editor.SetValue(value)
			m.editor.CursorEnd()
			m.editor.Focus()
			m.input.Blur()
		}
	} else if m.editing != nil {
		m.editing = nil
		m.editor.Blur()
	}

	active := m.bar.Active()
	if !active.Same(m.lastActive) {
		m.lastActive = active
		m.input.SetValue(m.bar.Text())
		m.input.CursorEnd()
		m.input.Placeholder = placeholder(active)
		m.window.Offset = 0
		if active != nil && m.editing == nil {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
	} else if m.input.Value() != m.bar.Text() {
		m.input.SetValue(m.bar.Text())
		m.input.CursorEnd()
	}

	m.items = m.bar.Items()
	m.window = m.window.Follow(m.bar.Highlighted(), len(m.items))
}

func placeholder(a *filter.ActiveInput) string {
	switch {
	case a.Is(filter.InputGroup):
		return "Add filter..."
	case a.Is(filter.InputOperator):
		return "operator"
	case a.Is(filter.InputValue):
		return "value"
	}
	return ""
}

func (m *Model) resize() {
	w := m.width / 2
	if w < 10 {
		w = 10
	}
	m.input.SetWidth(w)
	m.editor.SetWidth(w)
}
