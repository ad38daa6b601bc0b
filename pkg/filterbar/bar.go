// Package filterbar is the host-facing controller of the filter bar. A Bar
// owns the filter tree, the focused leaf and the typed text, and turns key
// presses and menu selections into tree mutations and focus changes.
//
// A Bar is driven from a single goroutine, the host's event loop. Options
// loading and AI synthesis run elsewhere and report back through callbacks
// and values the host hands to OptionsUpdated and ApplySynthesis.
package filterbar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/filterbar/internal/completion"
	"github.com/oakwood-commons/filterbar/internal/navigator"
	"github.com/oakwood-commons/filterbar/internal/router"
	"github.com/oakwood-commons/filterbar/internal/synth"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/logger"
)

type loadKey struct {
	property string
	search   string
}

type pendingSynthesis struct {
	token  uint64
	prompt string
	path   filter.Path
}

// Bar is the filter bar state machine.
type Bar struct {
	ctx      context.Context
	lgr      *logr.Logger
	props    filter.Properties
	actions  []filter.Action
	newGroup bool
	debounce *time.Duration

	backend synth.Backend
	synth   *synth.Synthesizer

	cache  *completion.OptionsCache
	loader *completion.Loader

	onChange  func(*filter.Group)
	onOptions func(string)

	tree      *filter.Group
	active    *filter.ActiveInput
	freeText  string
	opDraft   string
	typed     bool
	highlight int
	hidden    bool
	err       string
	editor    *router.EditorSession
	lastLoad  *loadKey

	pending      *pendingSynthesis
	synthesizing uint64
}

// New creates a bar over props.
func New(props filter.Properties, opts ...Option) *Bar {
	b := &Bar{
		ctx:      context.Background(),
		props:    props,
		newGroup: true,
		tree:     filter.NewGroup(filter.And),
		cache:    completion.NewOptionsCache(),
	}
	for _, opt := range opts {
		opt(b)
	}
	var lopts []completion.LoaderOption
	if b.debounce != nil {
		lopts = append(lopts, completion.WithDebounce(*b.debounce))
	}
	if b.onOptions != nil {
		lopts = append(lopts, completion.WithNotify(b.onOptions))
	}
	b.loader = completion.NewLoader(b.context(), b.cache, lopts...)
	if b.backend != nil {
		b.synth = synth.New(b.backend, props)
	}
	return b
}

// Close stops background option loading.
func (b *Bar) Close() { b.loader.Close() }

// Tree returns the current tree.
func (b *Bar) Tree() *filter.Group { return b.tree }

// Properties returns the declared properties.
func (b *Bar) Properties() filter.Properties { return b.props }

// Active returns the focused leaf, or nil.
func (b *Bar) Active() *filter.ActiveInput { return b.active }

// Error returns the last user-facing error, or "".
func (b *Bar) Error() string { return b.err }

// FreeText returns the group input's text.
func (b *Bar) FreeText() string { return b.freeText }

// OperatorDraft returns the operator input's uncommitted text.
func (b *Bar) OperatorDraft() string { return b.opDraft }

// Editor returns the open custom editor session, if any.
func (b *Bar) Editor() *router.EditorSession { return b.editor }

// Synthesizing reports whether an AI call is outstanding.
func (b *Bar) Synthesizing() bool { return b.synthesizing != 0 }

// HasSynthesizer reports whether AI synthesis is configured.
func (b *Bar) HasSynthesizer() bool { return b.synth != nil }

// Highlighted returns the index of the highlighted menu item.
func (b *Bar) Highlighted() int { return b.highlight }

// Text returns the text of the focused leaf.
func (b *Bar) Text() string {
	switch {
	case b.active.Is(filter.InputGroup):
		return b.freeText
	case b.active.Is(filter.InputOperator):
		return b.opDraft
	case b.active.Is(filter.InputValue):
		if c := filter.FindConditionByPath(b.tree, b.active.Path); c != nil {
			return c.Value
		}
	}
	return ""
}

// SetTree replaces the tree, clearing focus if it no longer resolves.
func (b *Bar) SetTree(tree *filter.Group) {
	if tree == nil {
		tree = filter.NewGroup(filter.And)
	}
	b.setTree(tree)
}

func (b *Bar) setTree(tree *filter.Group) {
	if tree == b.tree {
		return
	}
	b.tree = tree
	if b.active != nil && !b.active.Resolves(tree) {
		b.focus(nil)
	}
	if b.onChange != nil {
		b.onChange(tree)
	}
}

// Focus moves focus to a. A path that does not resolve clears focus.
func (b *Bar) Focus(a *filter.ActiveInput) {
	b.err = ""
	b.focus(a)
}

func (b *Bar) focus(a *filter.ActiveInput) {
	if a != nil && !a.Resolves(b.tree) {
		a = nil
	}
	changed := !b.active.Same(a)
	b.active = a
	b.hidden = a == nil
	if !changed {
		return
	}
	b.typed = false
	b.highlight = 0
	b.lastLoad = nil
	b.opDraft = ""
	if a.Is(filter.InputOperator) {
		if c := filter.FindConditionByPath(b.tree, a.Path); c != nil {
			b.opDraft = c.Operator
		}
	}
	logger.FromContext(b.context()).V(1).Info("focus changed", "active", a.String())
}

// Blur clears focus and closes the menu.
func (b *Bar) Blur() { b.focus(nil) }

// SetText records text typed into the focused leaf. Value text is written to
// the tree as it is typed; operator text stays a draft until an operator is
// selected.
func (b *Bar) SetText(s string) {
	if b.active == nil {
		return
	}
	b.err = ""
	b.typed = true
	b.highlight = 0
	b.hidden = false
	switch b.active.Kind {
	case filter.InputGroup:
		b.freeText = s
	case filter.InputOperator:
		b.opDraft = s
	case filter.InputValue:
		b.setTree(filter.UpdateNestedValue(b.tree, b.active.Path, s))
	}
}

// Key applies a key press in the focused leaf. cursor is the caret position
// in runes. It reports false when the key belongs to the host's text widget.
func (b *Bar) Key(key string, cursor int) bool {
	if b.editor != nil {
		return false
	}
	r := navigator.HandleKey(navigator.State{Tree: b.tree, Active: b.active}, navigator.Event{Key: key, Text: b.Text(), Cursor: cursor})
	if !r.Handled {
		return false
	}
	switch {
	case r.Select:
		b.Select(b.highlight)
	case r.Move != 0:
		b.Highlight(r.Move)
	default:
		b.setTree(r.Tree)
		b.focus(r.Active)
	}
	return true
}

// Items returns the menu for the focused leaf. It also starts option fetches
// the menu needs.
func (b *Bar) Items() []completion.Item {
	if b.active == nil || b.hidden || b.editor != nil {
		return nil
	}
	m := completion.Build(completion.Request{
		Tree:            b.tree,
		Active:          b.active,
		Properties:      b.props,
		Text:            b.Text(),
		TypedSinceFocus: b.typed,
		NewGroup:        b.newGroup,
		AI:              b.synth != nil,
		Actions:         b.actions,
		Options:         b.cache,
	})
	if m.Load != nil {
		key := loadKey{m.Load.Property.Name, m.Load.Search}
		if b.lastLoad == nil || *b.lastLoad != key {
			b.lastLoad = &key
			b.loader.Load(m.Load.Property, m.Load.Search)
		}
	}
	return m.Items
}

// OptionsUpdated tells the bar that a property's options changed in the
// background. When the finished fetch was for an older search, the next
// Items call requests the current one again. Failures are retried only
// after focus moves.
func (b *Bar) OptionsUpdated(property string) {
	if b.lastLoad == nil || b.lastLoad.property != property {
		return
	}
	if b.cache.Loading(property) || b.cache.Error(property) != nil {
		return
	}
	if _, ok := b.cache.Get(property, b.lastLoad.search); !ok {
		b.lastLoad = nil
	}
}

// OptionsError returns the user-facing load failure for a property, or "".
func (b *Bar) OptionsError(property string) string {
	if b.cache.Error(property) == nil {
		return ""
	}
	label := property
	if p, ok := b.props.Lookup(property); ok && p.Label != "" {
		label = p.Label
	}
	return fmt.Sprintf("Failed to load options for %s", label)
}

// OptionsLoading reports whether a fetch for the property is in flight.
func (b *Bar) OptionsLoading(property string) bool { return b.cache.Loading(property) }

// OptionsIdle reports whether no option fetch is scheduled or running.
func (b *Bar) OptionsIdle() bool { return b.loader.Idle() }

// Highlight moves the menu highlight by delta, clamped to the menu.
func (b *Bar) Highlight(delta int) {
	n := len(b.Items())
	b.highlight += delta
	if b.highlight > n-1 {
		b.highlight = n - 1
	}
	if b.highlight < 0 {
		b.highlight = 0
	}
}

// Select applies the menu item at index i.
func (b *Bar) Select(i int) {
	items := b.Items()
	if i < 0 || i >= len(items) {
		return
	}
	b.SelectItem(items[i])
}

// SelectItem applies item in the current context.
func (b *Bar) SelectItem(item completion.Item) {
	t := router.Select(router.Context{
		Tree:       b.tree,
		Active:     b.active,
		Properties: b.props,
		Text:       b.Text(),
		Actions:    b.actions,
	}, item)
	b.apply(t.Commit())
}

func (b *Bar) apply(r router.Result) {
	if r.Noop {
		return
	}
	if r.Err != nil {
		b.err = r.Err.Error()
		return
	}
	b.err = ""
	if r.ClearText {
		b.freeText = ""
	}
	b.setTree(r.Tree)
	b.focus(r.Active)
	b.editor = r.Editor
	if r.Editor != nil {
		b.hidden = true
	}
	if r.Action != nil {
		b.runAction(r.Action)
	}
	if r.Synthesize != nil {
		b.requestSynthesis(r.Synthesize)
	}
}

func (b *Bar) runAction(call *router.ActionCall) {
	if call.Action.Handler == nil {
		return
	}
	if err := call.Action.Handler(b.context(), call.Text, call.Context); err != nil {
		logger.FromContext(b.context()).Error(err, "action failed", "action", call.Action.Value)
		b.err = err.Error()
	}
}

func (b *Bar) requestSynthesis(p filter.Path) {
	if b.synth == nil {
		return
	}
	token := b.synth.Begin()
	b.pending = &pendingSynthesis{token: token, prompt: b.freeText, path: p.Clone()}
	b.synthesizing = token
	b.err = ""
}

// SynthesizeCmd returns the AI call requested by the last selection, or nil.
// The returned function blocks; hosts run it off their event loop and pass
// its outcome to ApplySynthesis.
func (b *Bar) SynthesizeCmd() func() synth.Outcome {
	p := b.pending
	if p == nil {
		return nil
	}
	b.pending = nil
	s, ctx := b.synth, b.context()
	return func() synth.Outcome {
		return s.Run(ctx, p.token, p.prompt, p.path)
	}
}

// ApplySynthesis applies a finished AI call. Results superseded by a newer
// call are dropped. Either way the free text is cleared; on failure the tree
// is left unchanged and the error surfaces through Error. A custom editor or
// focus inside the replaced group no longer points at the node it opened on:
// the editor is closed and focus moves to the replaced group.
func (b *Bar) ApplySynthesis(o synth.Outcome) {
	if b.synth == nil {
		return
	}
	next, err := b.synth.Apply(b.context(), b.tree, o)
	if errors.Is(err, synth.ErrStale) {
		return
	}
	b.synthesizing = 0
	b.freeText = ""
	b.highlight = 0
	if err != nil {
		b.err = err.Error()
		return
	}
	b.err = ""
	if b.editor != nil && b.editor.Path.HasPrefix(o.Path) {
		b.editor = nil
	}
	b.setTree(next)
	if b.active != nil && b.active.Path.HasPrefix(o.Path) {
		b.focus(filter.FocusGroup(o.Path))
	}
	b.hidden = true
}

// ToggleLogicalOperator flips AND/OR on the group at p.
func (b *Bar) ToggleLogicalOperator(p filter.Path) {
	b.setTree(filter.UpdateNestedLogicalOperator(b.tree, p))
}

// CustomChange commits a value from the open custom editor.
func (b *Bar) CustomChange(value string) {
	if b.editor == nil {
		return
	}
	r := b.editor.Change(b.tree, value)
	if r.Err != nil {
		b.err = r.Err.Error()
		if r.Editor == nil {
			b.editor = nil
			b.focus(r.Active)
		}
		return
	}
	b.editor = nil
	b.err = ""
	b.setTree(r.Tree)
	b.focus(r.Active)
}

// CustomCancel closes the open custom editor.
func (b *Bar) CustomCancel() {
	if b.editor == nil {
		return
	}
	r := b.editor.Cancel(b.tree)
	b.editor = nil
	if r.Err != nil {
		b.err = r.Err.Error()
		return
	}
	b.setTree(r.Tree)
	b.focus(r.Active)
}
