package router

import "github.com/oakwood-commons/filterbar/pkg/filter"

// EditorSession tracks a custom value editor opened for the condition at
// Path. The renderer shows Editor.Component and reports back through Change
// or Cancel.
type EditorSession struct {
	Path     filter.Path
	Property filter.Property
	Editor   *filter.CustomEditor
	Search   string
	// added is set when the condition was appended to open this editor;
	// cancelling removes it again.
	added bool
}

// Added reports whether cancelling the session removes its condition.
func (s *EditorSession) Added() bool { return s != nil && s.added }

// Change commits value to the session's condition and focuses the parent
// group. A failing property check leaves the tree alone and keeps the
// session open.
func (s *EditorSession) Change(tree *filter.Group, value string) Result {
	if filter.FindConditionByPath(tree, s.Path) == nil {
		return Result{Tree: tree, Err: filter.ErrInvalidPath}
	}
	if err := check(s.Property, value); err != nil {
		return Result{Tree: tree, Active: filter.FocusValue(s.Path), Editor: s, Err: err}
	}
	next, err := filter.UpdateNestedValueE(tree, s.Path, value)
	if err != nil {
		return Result{Tree: tree, Err: err}
	}
	return Result{Tree: next, Active: filter.FocusGroup(s.Path.Parent()), Changed: true}
}

// Cancel closes the editor. A condition added for the editor is removed.
func (s *EditorSession) Cancel(tree *filter.Group) Result {
	parent := filter.FocusGroup(s.Path.Parent())
	if !s.added {
		if !parent.Resolves(tree) {
			parent = nil
		}
		return Result{Tree: tree, Active: parent}
	}
	next, err := filter.RemoveFromGroupE(tree, s.Path)
	if err != nil {
		return Result{Tree: tree, Err: err}
	}
	return Result{Tree: next, Active: parent, Changed: true}
}
