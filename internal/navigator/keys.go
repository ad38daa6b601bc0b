package navigator

import (
	"unicode/utf8"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

// Key names match the strings bubbletea reports for key presses.
const (
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyBackspace = "backspace"
	KeySpace     = "space"
	KeyEscape    = "esc"
	KeyEnter     = "enter"
)

// Event is a key press observed in the focused leaf. Text is the leaf's
// current text and Cursor the caret position in runes.
type Event struct {
	Key    string
	Text   string
	Cursor int
}

// State is the tree and focus a key press applies to.
type State struct {
	Tree   *filter.Group
	Active *filter.ActiveInput
}

// Result describes what a key press did. When Handled is false the key
// belongs to the host's text widget (typing, caret movement). Select asks the
// caller to apply the highlighted menu item; Move shifts the highlight.
type Result struct {
	Handled bool
	Tree    *filter.Group
	Active  *filter.ActiveInput
	Select  bool
	Move    int
}

func (s State) keep() Result {
	return Result{Handled: true, Tree: s.Tree, Active: s.Active}
}

func (s State) focus(a *filter.ActiveInput) Result {
	return Result{Handled: true, Tree: s.Tree, Active: a}
}

func (s State) pass() Result {
	return Result{Tree: s.Tree, Active: s.Active}
}

// HandleKey applies a single key press. A focus that no longer resolves in
// the tree is cleared before anything else happens.
func HandleKey(s State, ev Event) Result {
	if s.Active == nil {
		return s.pass()
	}
	if !s.Active.Resolves(s.Tree) {
		return s.focus(nil)
	}

	switch ev.Key {
	case KeyEscape:
		return s.focus(nil)
	case KeyEnter:
		r := s.keep()
		r.Select = true
		return r
	case KeyUp:
		r := s.keep()
		r.Move = -1
		return r
	case KeyDown:
		r := s.keep()
		r.Move = 1
		return r
	case KeySpace:
		if s.Active.Kind == filter.InputValue {
			return s.focus(filter.FocusGroup(s.Active.Path.Parent()))
		}
		return s.pass()
	case KeyBackspace:
		return backspace(s, ev)
	case KeyLeft:
		if ev.Cursor > 0 {
			return s.pass()
		}
		return arrowLeft(s)
	case KeyRight:
		if ev.Cursor < utf8.RuneCountInString(ev.Text) {
			return s.pass()
		}
		return arrowRight(s)
	}
	return s.pass()
}

func backspace(s State, ev Event) Result {
	if ev.Text != "" || s.Active.Kind == filter.InputOperator {
		return s.pass()
	}
	p := s.Active.Path
	switch s.Active.Kind {
	case filter.InputValue:
		return Result{
			Handled: true,
			Tree:    filter.RemoveFromGroup(s.Tree, p),
			Active:  filter.FocusGroup(p.Parent()),
		}
	case filter.InputGroup:
		g := filter.FindGroupByPath(s.Tree, p)
		if g.Len() > 0 {
			return Result{
				Handled: true,
				Tree:    filter.RemoveFromGroup(s.Tree, p.Child(g.Len()-1)),
				Active:  filter.FocusGroup(p),
			}
		}
		if p.IsRoot() {
			return s.keep()
		}
		return Result{
			Handled: true,
			Tree:    filter.RemoveFromGroup(s.Tree, p),
			Active:  filter.FocusGroup(p.Parent()),
		}
	}
	return s.pass()
}

// Arrows stay inside the enclosing group: past its last leaf focus moves to
// the group's own input, and before its first leaf to the condition's operator.
func arrowLeft(s State) Result {
	p := s.Active.Path
	switch s.Active.Kind {
	case filter.InputValue:
		if prev := FindPreviousCondition(s.Tree, p); prev != nil && prev.HasPrefix(p.Parent()) {
			return s.focus(filter.FocusValue(prev))
		}
		return s.focus(filter.FocusOperator(p))
	case filter.InputGroup:
		g := filter.FindGroupByPath(s.Tree, p)
		if last := LastCondition(g, p); last != nil {
			return s.focus(filter.FocusValue(last))
		}
		if !p.IsRoot() {
			return s.focus(filter.FocusGroup(p.Parent()))
		}
	}
	return s.keep()
}

func arrowRight(s State) Result {
	p := s.Active.Path
	switch s.Active.Kind {
	case filter.InputOperator:
		return s.focus(filter.FocusValue(p))
	case filter.InputValue:
		if next := FindNextCondition(s.Tree, p); next != nil && next.HasPrefix(p.Parent()) {
			return s.focus(filter.FocusValue(next))
		}
		return s.focus(filter.FocusGroup(p.Parent()))
	case filter.InputGroup:
		if p.IsRoot() {
			return s.keep()
		}
		if next := FindNextCondition(s.Tree, p); next != nil && next.HasPrefix(p.Parent()) {
			return s.focus(filter.FocusValue(next))
		}
		return s.focus(filter.FocusGroup(p.Parent()))
	}
	return s.keep()
}
