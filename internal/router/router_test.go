package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/filterbar/internal/completion"
	"github.com/oakwood-commons/filterbar/pkg/filter"
)

var picker = &filter.CustomEditor{Label: "Pick..."}

func props() filter.Properties {
	return filter.Properties{
		{Label: "Status", Name: "status", Operators: []string{"=", "!="}, Options: filter.StaticOptions(filter.StringOptions("open", "closed"))},
		{Label: "Count", Name: "count", Operators: []string{">", "<"}, Validate: func(v string) error {
			if v == "bad" {
				return errors.New("not a number")
			}
			return nil
		}},
		{Label: "Created", Name: "created", Options: picker},
	}
}

func tree() *filter.Group {
	return filter.NewGroup(filter.And,
		&filter.Condition{PropertyName: "status", Operator: "="},
		filter.NewGroup(filter.Or, &filter.Condition{PropertyName: "count", Operator: ">"}),
	)
}

func item(kind completion.ItemKind, value string) completion.Item {
	return completion.Item{Kind: kind, Value: value, Label: value}
}

func TestSelectPropertyAppendsAndFocusesValue(t *testing.T) {
	c := Context{Tree: tree(), Active: filter.FocusGroup(filter.Path{1}), Properties: props(), Text: "sta"}
	r := Select(c, item(completion.KindProperty, "status")).Commit()

	require.NoError(t, r.Err)
	assert.True(t, r.Changed)
	assert.True(t, r.ClearText)
	assert.True(t, filter.FocusValue(filter.Path{1, 1}).Same(r.Active))
	got := filter.FindConditionByPath(r.Tree, filter.Path{1, 1})
	require.NotNil(t, got)
	assert.Equal(t, filter.Condition{PropertyName: "status", Operator: "="}, *got)
	assert.Nil(t, r.Editor)
}

func TestSelectUnknownProperty(t *testing.T) {
	base := tree()
	c := Context{Tree: base, Active: filter.FocusGroup(filter.Root), Properties: props()}
	r := Select(c, item(completion.KindProperty, "nope")).Commit()

	require.Error(t, r.Err)
	assert.ErrorIs(t, r.Err, filter.ErrUnknownProperty)
	assert.Equal(t, "Invalid property: nope", r.Err.Error())
	assert.Same(t, base, r.Tree)
	assert.True(t, c.Active.Same(r.Active))
}

func TestSelectNewGroup(t *testing.T) {
	c := Context{Tree: tree(), Active: filter.FocusGroup(filter.Root), Properties: props()}
	r := Select(c, item(completion.KindNewGroup, completion.ValueNewGroup)).Commit()

	require.NoError(t, r.Err)
	assert.True(t, filter.FocusGroup(filter.Path{2}).Same(r.Active))
	g := filter.FindGroupByPath(r.Tree, filter.Path{2})
	require.NotNil(t, g)
	assert.Equal(t, filter.And, g.LogicalOperator)
	assert.Equal(t, 0, g.Len())
}

func TestSelectValue(t *testing.T) {
	c := Context{Tree: tree(), Active: filter.FocusValue(filter.Path{1, 0}), Properties: props()}
	r := Select(c, item(completion.KindValue, "5")).Commit()

	require.NoError(t, r.Err)
	assert.Equal(t, "5", filter.FindConditionByPath(r.Tree, filter.Path{1, 0}).Value)
	assert.True(t, filter.FocusGroup(filter.Path{1}).Same(r.Active))
}

func TestSelectValueRejectedByCheck(t *testing.T) {
	base := tree()
	c := Context{Tree: base, Active: filter.FocusValue(filter.Path{1, 0}), Properties: props()}
	r := Select(c, item(completion.KindValue, "bad")).Commit()

	require.Error(t, r.Err)
	assert.Contains(t, r.Err.Error(), "Count: not a number")
	assert.Same(t, base, r.Tree)
	assert.True(t, c.Active.Same(r.Active))
}

func TestSelectOperatorClearsFocus(t *testing.T) {
	c := Context{Tree: tree(), Active: filter.FocusOperator(filter.Path{0}), Properties: props()}
	r := Select(c, item(completion.KindOperator, "!=")).Commit()

	require.NoError(t, r.Err)
	assert.Nil(t, r.Active)
	assert.Equal(t, "!=", filter.FindConditionByPath(r.Tree, filter.Path{0}).Operator)
}

func TestSelectAIRequestsSynthesis(t *testing.T) {
	base := tree()
	c := Context{Tree: base, Active: filter.FocusGroup(filter.Path{1}), Properties: props(), Text: "open ones"}
	r := Select(c, item(completion.KindAI, completion.ValueAIFilter)).Commit()

	assert.Equal(t, filter.Path{1}, r.Synthesize)
	assert.Same(t, base, r.Tree)
	assert.False(t, r.Changed)
	assert.True(t, c.Active.Same(r.Active))
}

func TestSelectAIAtRootRequestsRootPath(t *testing.T) {
	c := Context{Tree: tree(), Active: filter.FocusGroup(filter.Root), Properties: props(), Text: "x"}
	r := Select(c, item(completion.KindAI, completion.ValueAIFilter)).Commit()
	require.NotNil(t, r.Synthesize)
	assert.True(t, r.Synthesize.IsRoot())
}

func TestSelectAction(t *testing.T) {
	var gotText string
	var gotCtx filter.ActionContext
	save := filter.Action{Value: "save", Label: "Save", Handler: func(_ context.Context, text string, ac filter.ActionContext) error {
		gotText, gotCtx = text, ac
		return nil
	}}
	base := tree()
	c := Context{Tree: base, Active: filter.FocusGroup(filter.Path{1}), Properties: props(), Text: "my view", Actions: []filter.Action{save}}
	r := Select(c, item(completion.KindAction, "save")).Commit()

	require.NoError(t, r.Err)
	require.NotNil(t, r.Action)
	assert.Nil(t, r.Active)
	require.NoError(t, r.Action.Action.Handler(context.Background(), r.Action.Text, r.Action.Context))
	assert.Equal(t, "my view", gotText)
	assert.Equal(t, filter.Path{1}, gotCtx.Path)
	assert.Same(t, base, gotCtx.Tree)

	r = Select(c, item(completion.KindAction, "missing")).Commit()
	assert.Error(t, r.Err)
}

func TestNoopSelections(t *testing.T) {
	base := tree()
	tests := []struct {
		name   string
		active *filter.ActiveInput
		item   completion.Item
	}{
		{name: "disabled loading item", active: filter.FocusValue(filter.Path{0}), item: completion.Item{Kind: completion.KindLoading, Disabled: true}},
		{name: "no focus", active: nil, item: item(completion.KindValue, "x")},
		{name: "stale focus", active: filter.FocusValue(filter.Path{7}), item: item(completion.KindValue, "x")},
		{name: "property in operator context", active: filter.FocusOperator(filter.Path{0}), item: item(completion.KindProperty, "status")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Select(Context{Tree: base, Active: tt.active, Properties: props()}, tt.item).Commit()
			assert.True(t, r.Noop)
			assert.Same(t, base, r.Tree)
			assert.NoError(t, r.Err)
		})
	}
}

func TestPropertyEditorChange(t *testing.T) {
	c := Context{Tree: tree(), Active: filter.FocusGroup(filter.Root), Properties: props()}
	r := Select(c, item(completion.KindProperty, "created")).Commit()

	require.NotNil(t, r.Editor)
	assert.True(t, r.Editor.Added())
	assert.Same(t, picker, r.Editor.Editor)
	assert.Equal(t, filter.Path{2}, r.Editor.Path)

	done := r.Editor.Change(r.Tree, "2024-01-02")
	require.NoError(t, done.Err)
	assert.Equal(t, "2024-01-02", filter.FindConditionByPath(done.Tree, filter.Path{2}).Value)
	assert.True(t, filter.FocusGroup(filter.Root).Same(done.Active))
}

func TestPropertyEditorCancelRemovesCondition(t *testing.T) {
	base := tree()
	c := Context{Tree: base, Active: filter.FocusGroup(filter.Path{1}), Properties: props()}
	r := Select(c, item(completion.KindProperty, "created")).Commit()
	require.NotNil(t, r.Editor)

	undone := r.Editor.Cancel(r.Tree)
	require.NoError(t, undone.Err)
	assert.True(t, filter.Equal(base, undone.Tree))
	assert.True(t, filter.FocusGroup(filter.Path{1}).Same(undone.Active))
}

func TestValueMenuCustomItemKeepsCondition(t *testing.T) {
	base := filter.NewGroup(filter.And, &filter.Condition{PropertyName: "created", Operator: "=", Value: "old"})
	c := Context{Tree: base, Active: filter.FocusValue(filter.Path{0}), Properties: props(), Text: "old"}
	r := Select(c, completion.Item{Kind: completion.KindCustom, Value: completion.ValueCustom, Editor: picker}).Commit()

	require.NotNil(t, r.Editor)
	assert.False(t, r.Editor.Added())
	assert.Equal(t, "old", r.Editor.Search)
	assert.Same(t, base, r.Tree)

	cancelled := r.Editor.Cancel(base)
	assert.Same(t, base, cancelled.Tree)
	assert.True(t, filter.FocusGroup(filter.Root).Same(cancelled.Active))
}

func TestEditorChangeOnStalePath(t *testing.T) {
	s := &EditorSession{Path: filter.Path{5}, Property: props()[2], Editor: picker}
	r := s.Change(tree(), "x")
	assert.ErrorIs(t, r.Err, filter.ErrInvalidPath)
	assert.Nil(t, r.Active)
}
