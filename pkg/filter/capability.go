package filter

import "context"

// ActionContext is handed to action handlers.
type ActionContext struct {
	Path Path
	Tree *Group
}

// ActionFunc runs a caller-supplied action with the typed free text.
type ActionFunc func(ctx context.Context, text string, ac ActionContext) error

// Action is a caller-supplied menu entry shown in group context once free
// text has been typed.
type Action struct {
	Value   string
	Label   string
	Handler ActionFunc
}
