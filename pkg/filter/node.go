package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// LogicalOperator combines the direct children of a group.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
)

// Toggle flips AND and OR. Anything else becomes AND.
func (o LogicalOperator) Toggle() LogicalOperator {
	if o == And {
		return Or
	}
	return And
}

// ParseLogicalOperator accepts AND/OR in any case. Empty input yields AND.
func ParseLogicalOperator(s string) (LogicalOperator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AND":
		return And, nil
	case "OR":
		return Or, nil
	}
	return "", fmt.Errorf("invalid logical operator %q", s)
}

// Node is either a *Condition or a *Group.
type Node interface {
	node()
}

// Condition is a leaf binding a property, an operator and a value.
type Condition struct {
	PropertyName string
	Operator     string
	Value        string
}

// Group combines its children under a single logical operator. An empty group
// has a nil Conditions slice.
type Group struct {
	LogicalOperator LogicalOperator
	Conditions      []Node
}

func (*Condition) node() {}
func (*Group) node()     {}

// NewGroup returns a group with the given operator and children.
func NewGroup(op LogicalOperator, children ...Node) *Group {
	g := &Group{LogicalOperator: op}
	if len(children) > 0 {
		g.Conditions = append([]Node(nil), children...)
	}
	return g
}

// Len returns the number of direct children; nil groups have none.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Conditions)
}

// withChild returns a shallow copy of g with child i replaced.
func (g *Group) withChild(i int, child Node) *Group {
	conds := make([]Node, len(g.Conditions))
	copy(conds, g.Conditions)
	conds[i] = child
	return &Group{LogicalOperator: g.LogicalOperator, Conditions: conds}
}

// withAppended returns a shallow copy of g with child appended.
func (g *Group) withAppended(child Node) *Group {
	conds := make([]Node, 0, len(g.Conditions)+1)
	conds = append(conds, g.Conditions...)
	conds = append(conds, child)
	return &Group{LogicalOperator: g.LogicalOperator, Conditions: conds}
}

// withoutChild returns a shallow copy of g with child i removed.
func (g *Group) withoutChild(i int) *Group {
	var conds []Node
	if len(g.Conditions) > 1 {
		conds = make([]Node, 0, len(g.Conditions)-1)
		conds = append(conds, g.Conditions[:i]...)
		conds = append(conds, g.Conditions[i+1:]...)
	}
	return &Group{LogicalOperator: g.LogicalOperator, Conditions: conds}
}

// Equal reports structural equality of two trees.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Condition:
		y, ok := b.(*Condition)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		return *x == *y
	case *Group:
		y, ok := b.(*Group)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		if x.LogicalOperator != y.LogicalOperator || len(x.Conditions) != len(y.Conditions) {
			return false
		}
		for i := range x.Conditions {
			if !Equal(x.Conditions[i], y.Conditions[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

// Path addresses a node by the sibling index taken at each level from the
// root. The empty path is the root group.
type Path []int

// Root is the path of the root group.
var Root = Path{}

// IsRoot reports whether p addresses the root group.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Parent returns the path of the enclosing group. The root's parent is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return append(Path{}, p[:len(p)-1]...)
}

// Last returns the final index of p, or -1 for the root.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child returns a new path extending p with index i.
func (p Path) Child(i int) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	return append(out, i)
}

// Clone returns a copy that does not alias p.
func (p Path) Clone() Path {
	return append(Path{}, p...)
}

// Equal compares two paths element-wise.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return prefix.Equal(p[:len(prefix)])
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// InputKind names the three focusable leaf contexts.
type InputKind string

const (
	// InputGroup is a group's freeform input, where properties are picked.
	InputGroup InputKind = "group"
	// InputValue is a condition's value input.
	InputValue InputKind = "value"
	// InputOperator is a condition's operator input.
	InputOperator InputKind = "operator"
)

// ActiveInput is the single focused leaf. A nil *ActiveInput means nothing has focus.
type ActiveInput struct {
	Kind InputKind
	Path Path
}

// FocusGroup focuses the freeform input of the group at p.
func FocusGroup(p Path) *ActiveInput { return &ActiveInput{Kind: InputGroup, Path: p.Clone()} }

// FocusValue focuses the value input of the condition at p.
func FocusValue(p Path) *ActiveInput { return &ActiveInput{Kind: InputValue, Path: p.Clone()} }

// FocusOperator focuses the operator input of the condition at p.
func FocusOperator(p Path) *ActiveInput { return &ActiveInput{Kind: InputOperator, Path: p.Clone()} }

// Resolves reports whether the input's path references an existing node of
// the kind the input expects.
func (a *ActiveInput) Resolves(root *Group) bool {
	if a == nil {
		return false
	}
	if a.Kind == InputGroup {
		return FindGroupByPath(root, a.Path) != nil
	}
	return FindConditionByPath(root, a.Path) != nil
}

// Is reports whether a has the given kind.
func (a *ActiveInput) Is(kind InputKind) bool {
	return a != nil && a.Kind == kind
}

// Same compares two inputs, treating two nils as equal.
func (a *ActiveInput) Same(b *ActiveInput) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind == b.Kind && a.Path.Equal(b.Path)
}

func (a *ActiveInput) String() string {
	if a == nil {
		return "none"
	}
	return string(a.Kind) + a.Path.String()
}
