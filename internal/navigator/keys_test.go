package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

func TestBackspace(t *testing.T) {
	twoGroups := filter.NewGroup(filter.And, c("a"), filter.NewGroup(filter.Or))
	withValue := filter.NewGroup(filter.And, c("a"), &filter.Condition{PropertyName: "b", Operator: "=", Value: "x"})

	tests := []struct {
		name       string
		tree       *filter.Group
		active     *filter.ActiveInput
		text       string
		wantTree   *filter.Group
		wantActive *filter.ActiveInput
		handled    bool
	}{
		{
			name:       "empty non-root group is removed",
			tree:       twoGroups,
			active:     filter.FocusGroup(filter.Path{1}),
			wantTree:   filter.NewGroup(filter.And, c("a")),
			wantActive: filter.FocusGroup(filter.Root),
			handled:    true,
		},
		{
			name:       "empty group input removes last condition",
			tree:       twoGroups,
			active:     filter.FocusGroup(filter.Root),
			wantTree:   filter.NewGroup(filter.And, c("a")),
			wantActive: filter.FocusGroup(filter.Root),
			handled:    true,
		},
		{
			name:       "empty root is left alone",
			tree:       filter.NewGroup(filter.And),
			active:     filter.FocusGroup(filter.Root),
			wantTree:   filter.NewGroup(filter.And),
			wantActive: filter.FocusGroup(filter.Root),
			handled:    true,
		},
		{
			name:       "empty value removes condition",
			tree:       twoGroups,
			active:     filter.FocusValue(filter.Path{0}),
			wantTree:   filter.NewGroup(filter.And, filter.NewGroup(filter.Or)),
			wantActive: filter.FocusGroup(filter.Root),
			handled:    true,
		},
		{
			name:       "non-empty value text is edited by the host",
			tree:       withValue,
			active:     filter.FocusValue(filter.Path{1}),
			text:       "x",
			wantTree:   withValue,
			wantActive: filter.FocusValue(filter.Path{1}),
		},
		{
			name:       "operator input is never structural",
			tree:       withValue,
			active:     filter.FocusOperator(filter.Path{0}),
			wantTree:   withValue,
			wantActive: filter.FocusOperator(filter.Path{0}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := HandleKey(State{Tree: tt.tree, Active: tt.active}, Event{Key: KeyBackspace, Text: tt.text, Cursor: len(tt.text)})
			assert.Equal(t, tt.handled, r.Handled)
			assert.True(t, filter.Equal(tt.wantTree, r.Tree), "tree %+v", r.Tree)
			assert.True(t, tt.wantActive.Same(r.Active), "active %s", r.Active)
		})
	}
}

func TestBackspaceOnEmptyRootKeepsSameTree(t *testing.T) {
	root := filter.NewGroup(filter.And)
	r := HandleKey(State{Tree: root, Active: filter.FocusGroup(filter.Root)}, Event{Key: KeyBackspace})
	assert.Same(t, root, r.Tree)
}

func TestArrows(t *testing.T) {
	// [a, {b, c}, d]
	tree := filter.NewGroup(filter.And, c("a"), filter.NewGroup(filter.Or, c("b"), c("c")), c("d"))
	tests := []struct {
		name   string
		key    string
		active *filter.ActiveInput
		want   *filter.ActiveInput
	}{
		{name: "value right to next sibling", key: KeyRight, active: filter.FocusValue(filter.Path{0}), want: filter.FocusValue(filter.Path{1, 0})},
		{name: "value right past group end", key: KeyRight, active: filter.FocusValue(filter.Path{1, 1}), want: filter.FocusGroup(filter.Path{1})},
		{name: "last root value right to root input", key: KeyRight, active: filter.FocusValue(filter.Path{2}), want: filter.FocusGroup(filter.Root)},
		{name: "value left to previous", key: KeyLeft, active: filter.FocusValue(filter.Path{1, 1}), want: filter.FocusValue(filter.Path{1, 0})},
		{name: "first value in group left to operator", key: KeyLeft, active: filter.FocusValue(filter.Path{1, 0}), want: filter.FocusOperator(filter.Path{1, 0})},
		{name: "value left descends into group", key: KeyLeft, active: filter.FocusValue(filter.Path{2}), want: filter.FocusValue(filter.Path{1, 1})},
		{name: "operator right to value", key: KeyRight, active: filter.FocusOperator(filter.Path{0}), want: filter.FocusValue(filter.Path{0})},
		{name: "operator left stays", key: KeyLeft, active: filter.FocusOperator(filter.Path{0}), want: filter.FocusOperator(filter.Path{0})},
		{name: "group left to its last leaf", key: KeyLeft, active: filter.FocusGroup(filter.Path{1}), want: filter.FocusValue(filter.Path{1, 1})},
		{name: "root left to last leaf", key: KeyLeft, active: filter.FocusGroup(filter.Root), want: filter.FocusValue(filter.Path{2})},
		{name: "group right to next leaf", key: KeyRight, active: filter.FocusGroup(filter.Path{1}), want: filter.FocusValue(filter.Path{2})},
		{name: "root right stays", key: KeyRight, active: filter.FocusGroup(filter.Root), want: filter.FocusGroup(filter.Root)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := HandleKey(State{Tree: tree, Active: tt.active}, Event{Key: tt.key})
			require.True(t, r.Handled)
			assert.Same(t, tree, r.Tree)
			assert.True(t, tt.want.Same(r.Active), "got %s", r.Active)
		})
	}
}

func TestArrowsDelegateWhenCaretIsInside(t *testing.T) {
	tree := filter.NewGroup(filter.And, &filter.Condition{PropertyName: "a", Operator: "=", Value: "héllo"})
	st := State{Tree: tree, Active: filter.FocusValue(filter.Path{0})}

	r := HandleKey(st, Event{Key: KeyLeft, Text: "héllo", Cursor: 2})
	assert.False(t, r.Handled)
	r = HandleKey(st, Event{Key: KeyRight, Text: "héllo", Cursor: 4})
	assert.False(t, r.Handled)
	r = HandleKey(st, Event{Key: KeyRight, Text: "héllo", Cursor: 5})
	assert.True(t, r.Handled)
	assert.True(t, filter.FocusGroup(filter.Root).Same(r.Active))
}

func TestOtherKeys(t *testing.T) {
	tree := filter.NewGroup(filter.And, filter.NewGroup(filter.Or, c("a")))
	value := filter.FocusValue(filter.Path{0, 0})

	r := HandleKey(State{Tree: tree, Active: value}, Event{Key: KeySpace, Text: "x", Cursor: 1})
	assert.True(t, r.Handled)
	assert.True(t, filter.FocusGroup(filter.Path{0}).Same(r.Active))
	assert.Same(t, tree, r.Tree)

	r = HandleKey(State{Tree: tree, Active: filter.FocusGroup(filter.Root)}, Event{Key: KeySpace})
	assert.False(t, r.Handled)

	r = HandleKey(State{Tree: tree, Active: value}, Event{Key: KeyEscape})
	assert.True(t, r.Handled)
	assert.Nil(t, r.Active)

	r = HandleKey(State{Tree: tree, Active: value}, Event{Key: KeyEnter})
	assert.True(t, r.Select)
	assert.True(t, value.Same(r.Active))

	r = HandleKey(State{Tree: tree, Active: value}, Event{Key: KeyDown})
	assert.Equal(t, 1, r.Move)
	r = HandleKey(State{Tree: tree, Active: value}, Event{Key: KeyUp})
	assert.Equal(t, -1, r.Move)

	r = HandleKey(State{Tree: tree}, Event{Key: KeyEnter})
	assert.False(t, r.Handled)
	assert.False(t, r.Select)
}

func TestStaleFocusIsCleared(t *testing.T) {
	tree := filter.NewGroup(filter.And, c("a"))
	r := HandleKey(State{Tree: tree, Active: filter.FocusValue(filter.Path{3})}, Event{Key: KeyLeft})
	assert.True(t, r.Handled)
	assert.Nil(t, r.Active)

	r = HandleKey(State{Tree: tree, Active: filter.FocusGroup(filter.Path{0})}, Event{Key: KeyBackspace})
	assert.Nil(t, r.Active)
	assert.Same(t, tree, r.Tree)
}
