package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

func c(name string) *filter.Condition {
	return &filter.Condition{PropertyName: name, Operator: "="}
}

// nested is [a, {b, {}, {c}}, {}, d].
func nested() *filter.Group {
	return filter.NewGroup(filter.And,
		c("a"),
		filter.NewGroup(filter.Or,
			c("b"),
			filter.NewGroup(filter.And),
			filter.NewGroup(filter.And, c("c")),
		),
		filter.NewGroup(filter.Or),
		c("d"),
	)
}

func TestScenarioNextAndPrevious(t *testing.T) {
	tree := filter.NewGroup(filter.And, c("a"), filter.NewGroup(filter.And, c("c")))
	assert.Equal(t, filter.Path{1, 0}, FindNextCondition(tree, filter.Path{0}))
	assert.Equal(t, filter.Path{0}, FindPreviousCondition(tree, filter.Path{1, 0}))
}

func TestFindNextCondition(t *testing.T) {
	tree := nested()
	tests := []struct {
		name string
		from filter.Path
		want filter.Path
	}{
		{name: "descends into sibling group", from: filter.Path{0}, want: filter.Path{1, 0}},
		{name: "skips empty group", from: filter.Path{1, 0}, want: filter.Path{1, 2, 0}},
		{name: "ascends past empty sibling", from: filter.Path{1, 2, 0}, want: filter.Path{3}},
		{name: "last leaf", from: filter.Path{3}},
		{name: "from a group skips its subtree", from: filter.Path{1}, want: filter.Path{3}},
		{name: "from an empty group", from: filter.Path{1, 1}, want: filter.Path{1, 2, 0}},
		{name: "unresolved path", from: filter.Path{9}},
		{name: "root", from: filter.Root},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindNextCondition(tree, tt.from))
		})
	}
}

func TestFindPreviousCondition(t *testing.T) {
	tree := nested()
	tests := []struct {
		name string
		from filter.Path
		want filter.Path
	}{
		{name: "first leaf", from: filter.Path{0}},
		{name: "ascends to parent sibling", from: filter.Path{1, 0}, want: filter.Path{0}},
		{name: "skips empty group", from: filter.Path{1, 2, 0}, want: filter.Path{1, 0}},
		{name: "descends into last leaf", from: filter.Path{3}, want: filter.Path{1, 2, 0}},
		{name: "from a group", from: filter.Path{2}, want: filter.Path{1, 2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindPreviousCondition(tree, tt.from))
		})
	}
}

func TestFirstAndLastCondition(t *testing.T) {
	tree := nested()
	assert.Equal(t, filter.Path{0}, FirstCondition(tree, filter.Root))
	assert.Equal(t, filter.Path{3}, LastCondition(tree, filter.Root))
	assert.Equal(t, filter.Path{1, 2, 0}, LastCondition(filter.FindGroupByPath(tree, filter.Path{1}), filter.Path{1}))
	assert.Nil(t, FirstCondition(filter.NewGroup(filter.And, filter.NewGroup(filter.Or)), filter.Root))
	assert.Nil(t, LastCondition(nil, filter.Root))
}

func drawTree(t *rapid.T, depth int) *filter.Group {
	g := filter.NewGroup(filter.And)
	n := rapid.IntRange(0, 4).Draw(t, "n")
	for i := 0; i < n; i++ {
		if depth < 3 && rapid.Bool().Draw(t, "group") {
			g.Conditions = append(g.Conditions, drawTree(t, depth+1))
		} else {
			g.Conditions = append(g.Conditions, c("p"))
		}
	}
	return g
}

func TestPropertyTraversalSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := drawTree(t, 0)
		leaves := filter.ConditionPaths(tree)
		for i := 0; i+1 < len(leaves); i++ {
			a, b := leaves[i], leaves[i+1]
			if got := FindNextCondition(tree, a); !got.Equal(b) {
				t.Fatalf("next(%s) = %s, want %s", a, got, b)
			}
			if got := FindPreviousCondition(tree, b); !got.Equal(a) {
				t.Fatalf("previous(%s) = %s, want %s", b, got, a)
			}
		}
		if len(leaves) > 0 {
			if FindNextCondition(tree, leaves[len(leaves)-1]) != nil {
				t.Fatalf("last leaf has a successor")
			}
			if FindPreviousCondition(tree, leaves[0]) != nil {
				t.Fatalf("first leaf has a predecessor")
			}
		}
	})
}
