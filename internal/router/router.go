// Package router applies a selected menu item to the filter tree and decides
// which leaf is focused next.
//
// Every selection is planned as a Transition against the tree the user saw,
// then committed in two steps: the mutation runs first, and only after it
// succeeds does the planned focus take effect. Focus paths are computed from
// the pre-mutation tree, so a mutation that grows a group cannot leave focus
// pointing at a stale index.
package router

import (
	"fmt"

	"github.com/oakwood-commons/filterbar/internal/completion"
	"github.com/oakwood-commons/filterbar/pkg/filter"
)

// Context is the state a selection is made in.
type Context struct {
	Tree       *filter.Group
	Active     *filter.ActiveInput
	Properties filter.Properties
	Text       string
	Actions    []filter.Action
}

// ActionCall is a caller action to invoke once the transition is committed.
type ActionCall struct {
	Action  filter.Action
	Text    string
	Context filter.ActionContext
}

// Transition is a planned selection. Commit applies it.
type Transition struct {
	base   *filter.Group
	active *filter.ActiveInput
	mutate func(*filter.Group) (*filter.Group, error)
	focus  *filter.ActiveInput
	err    error

	clearText  bool
	editor     *EditorSession
	action     *ActionCall
	synthesize filter.Path
	noop       bool
}

// Result is a committed transition.
type Result struct {
	Tree   *filter.Group
	Active *filter.ActiveInput
	// ClearText asks the host to clear the free text.
	ClearText bool
	// Editor is set when a custom value editor was opened.
	Editor *EditorSession
	// Action is set when a caller action must run.
	Action *ActionCall
	// Synthesize is non-nil when AI synthesis was requested for that group.
	Synthesize filter.Path
	// Changed reports whether the tree was replaced.
	Changed bool
	// Noop reports that the item had no effect in this context.
	Noop bool
	Err  error
}

// Commit runs the mutation and then the focus change. On a failed mutation
// the tree and focus are left as they were and Err is set.
func (t Transition) Commit() Result {
	keep := Result{Tree: t.base, Active: t.active}
	if t.noop {
		keep.Noop = true
		return keep
	}
	if t.err != nil {
		keep.Err = t.err
		return keep
	}
	tree := t.base
	if t.mutate != nil {
		next, err := t.mutate(t.base)
		if err != nil {
			keep.Err = err
			return keep
		}
		tree = next
	}
	focus := t.focus
	if focus != nil && !focus.Resolves(tree) {
		focus = nil
	}
	return Result{
		Tree:       tree,
		Active:     focus,
		ClearText:  t.clearText,
		Editor:     t.editor,
		Action:     t.action,
		Synthesize: t.synthesize,
		Changed:    tree != t.base,
	}
}

// Select plans the effect of choosing item in c.
func Select(c Context, item completion.Item) Transition {
	t := Transition{base: c.Tree, active: c.Active, focus: c.Active}
	if item.Disabled || !c.Active.Resolves(c.Tree) {
		t.noop = true
		return t
	}
	switch c.Active.Kind {
	case filter.InputGroup:
		return selectInGroup(c, item, t)
	case filter.InputValue:
		return selectValue(c, item, t)
	case filter.InputOperator:
		return selectOperator(c, item, t)
	}
	t.noop = true
	return t
}

func selectInGroup(c Context, item completion.Item, t Transition) Transition {
	p := c.Active.Path
	g := filter.FindGroupByPath(c.Tree, p)
	newPath := p.Child(g.Len())

	switch item.Kind {
	case completion.KindNewGroup:
		t.mutate = func(root *filter.Group) (*filter.Group, error) {
			return filter.AddGroupToGroupE(root, p)
		}
		t.focus = filter.FocusGroup(newPath)
		t.clearText = true

	case completion.KindAI:
		t.synthesize = p.Clone()

	case completion.KindAction:
		action, ok := findAction(c.Actions, item.Value)
		if !ok {
			t.err = fmt.Errorf("unknown action %q", item.Value)
			return t
		}
		t.action = &ActionCall{
			Action:  action,
			Text:    c.Text,
			Context: filter.ActionContext{Path: p.Clone(), Tree: c.Tree},
		}
		t.focus = nil
		t.clearText = true

	case completion.KindProperty:
		prop, ok := c.Properties.Lookup(item.Value)
		if !ok {
			t.err = &filter.UnknownPropertyError{Name: item.Value, Path: newPath}
			return t
		}
		t.mutate = func(root *filter.Group) (*filter.Group, error) {
			return filter.AddFilterToGroupE(root, p, prop)
		}
		t.focus = filter.FocusValue(newPath)
		t.clearText = true
		if ed, ok := prop.Editor(); ok {
			t.editor = &EditorSession{Path: newPath, Property: prop, Editor: ed, added: true}
		}

	default:
		t.noop = true
	}
	return t
}

func selectValue(c Context, item completion.Item, t Transition) Transition {
	p := c.Active.Path
	cond := filter.FindConditionByPath(c.Tree, p)
	prop, _ := c.Properties.Lookup(cond.PropertyName)

	switch item.Kind {
	case completion.KindCustom:
		ed := item.Editor
		if ed == nil {
			ed, _ = prop.Editor()
		}
		t.editor = &EditorSession{Path: p.Clone(), Property: prop, Editor: ed, Search: c.Text}

	case completion.KindValue:
		if err := check(prop, item.Value); err != nil {
			t.err = err
			return t
		}
		t.mutate = func(root *filter.Group) (*filter.Group, error) {
			return filter.UpdateNestedValueE(root, p, item.Value)
		}
		t.focus = filter.FocusGroup(p.Parent())

	default:
		t.noop = true
	}
	return t
}

func selectOperator(c Context, item completion.Item, t Transition) Transition {
	if item.Kind != completion.KindOperator {
		t.noop = true
		return t
	}
	p := c.Active.Path
	t.mutate = func(root *filter.Group) (*filter.Group, error) {
		return filter.UpdateNestedOperatorE(root, p, item.Value)
	}
	t.focus = nil
	return t
}

func findAction(actions []filter.Action, value string) (filter.Action, bool) {
	for _, a := range actions {
		if a.Value == value {
			return a, true
		}
	}
	return filter.Action{}, false
}

func check(prop filter.Property, value string) error {
	if prop.Validate == nil {
		return nil
	}
	if err := prop.Validate(value); err != nil {
		return fmt.Errorf("%s: %w", labelOf(prop), err)
	}
	return nil
}

func labelOf(prop filter.Property) string {
	if prop.Label != "" {
		return prop.Label
	}
	return prop.Name
}
