package filter

// FindGroupByPath returns the group at p, or nil when p is out of range or
// resolves to a condition.
func FindGroupByPath(root *Group, p Path) *Group {
	g := root
	for _, idx := range p {
		if g == nil || idx < 0 || idx >= len(g.Conditions) {
			return nil
		}
		next, ok := g.Conditions[idx].(*Group)
		if !ok {
			return nil
		}
		g = next
	}
	return g
}

// FindConditionByPath returns the condition at p, or nil when p is empty,
// out of range, or resolves to a group.
func FindConditionByPath(root *Group, p Path) *Condition {
	if len(p) == 0 {
		return nil
	}
	parent := FindGroupByPath(root, p[:len(p)-1])
	if parent == nil {
		return nil
	}
	idx := p[len(p)-1]
	if idx < 0 || idx >= len(parent.Conditions) {
		return nil
	}
	c, _ := parent.Conditions[idx].(*Condition)
	return c
}

// FindNode returns whatever node sits at p.
func FindNode(root *Group, p Path) Node {
	if len(p) == 0 {
		if root == nil {
			return nil
		}
		return root
	}
	parent := FindGroupByPath(root, p[:len(p)-1])
	idx := p[len(p)-1]
	if parent == nil || idx < 0 || idx >= len(parent.Conditions) {
		return nil
	}
	return parent.Conditions[idx]
}

// modifyGroup rebuilds the ancestor chain down to the group at p and swaps
// that group for the result of fn. Siblings along the way are shared.
func modifyGroup(g *Group, p Path, depth int, fn func(*Group) (*Group, error)) (*Group, error) {
	if g == nil {
		return nil, pathError(ErrInvalidPath, p)
	}
	if depth == len(p) {
		return fn(g)
	}
	idx := p[depth]
	if idx < 0 || idx >= len(g.Conditions) {
		return nil, pathError(ErrInvalidPath, p)
	}
	child, ok := g.Conditions[idx].(*Group)
	if !ok {
		return nil, pathError(ErrNotAGroup, p[:depth+1])
	}
	updated, err := modifyGroup(child, p, depth+1, fn)
	if err != nil {
		return nil, err
	}
	return g.withChild(idx, updated), nil
}

// modifyCondition replaces the condition at p with fn's result.
func modifyCondition(root *Group, p Path, fn func(Condition) Condition) (*Group, error) {
	if len(p) == 0 {
		return nil, pathError(ErrNotACondition, p)
	}
	last := p[len(p)-1]
	return modifyGroup(root, p[:len(p)-1], 0, func(parent *Group) (*Group, error) {
		if last < 0 || last >= len(parent.Conditions) {
			return nil, pathError(ErrInvalidPath, p)
		}
		c, ok := parent.Conditions[last].(*Condition)
		if !ok {
			return nil, pathError(ErrNotACondition, p)
		}
		updated := fn(*c)
		return parent.withChild(last, &updated), nil
	})
}

// NewCondition returns the condition AddFilterToGroup appends for prop.
func NewCondition(prop Property) *Condition {
	return &Condition{PropertyName: prop.Name, Operator: prop.DefaultOperator(), Value: ""}
}

// AddFilterToGroupE appends a new condition for prop to the group at p.
func AddFilterToGroupE(root *Group, p Path, prop Property) (*Group, error) {
	return modifyGroup(root, p, 0, func(g *Group) (*Group, error) {
		return g.withAppended(NewCondition(prop)), nil
	})
}

// AddFilterToGroup appends {prop.Name, "", first operator or "="} to the
// group at p. An invalid path returns root unchanged.
func AddFilterToGroup(root *Group, p Path, prop Property) *Group {
	return orUnchanged(root)(AddFilterToGroupE(root, p, prop))
}

// AddGroupToGroupE appends an empty AND group to the group at p.
func AddGroupToGroupE(root *Group, p Path) (*Group, error) {
	return modifyGroup(root, p, 0, func(g *Group) (*Group, error) {
		return g.withAppended(&Group{LogicalOperator: And}), nil
	})
}

// AddGroupToGroup appends an empty AND group to the group at p.
func AddGroupToGroup(root *Group, p Path) *Group {
	return orUnchanged(root)(AddGroupToGroupE(root, p))
}

// RemoveFromGroupE removes the node at p from its parent. The root cannot be removed.
func RemoveFromGroupE(root *Group, p Path) (*Group, error) {
	if len(p) == 0 {
		return nil, ErrRootRemoval
	}
	last := p[len(p)-1]
	return modifyGroup(root, p[:len(p)-1], 0, func(parent *Group) (*Group, error) {
		if last < 0 || last >= len(parent.Conditions) {
			return nil, pathError(ErrInvalidPath, p)
		}
		return parent.withoutChild(last), nil
	})
}

// RemoveFromGroup removes the node at p from its parent.
func RemoveFromGroup(root *Group, p Path) *Group {
	return orUnchanged(root)(RemoveFromGroupE(root, p))
}

// UpdateNestedValueE sets the value of the condition at p.
func UpdateNestedValueE(root *Group, p Path, value string) (*Group, error) {
	return modifyCondition(root, p, func(c Condition) Condition {
		c.Value = value
		return c
	})
}

// UpdateNestedValue sets the value of the condition at p. Group paths are a no-op.
func UpdateNestedValue(root *Group, p Path, value string) *Group {
	return orUnchanged(root)(UpdateNestedValueE(root, p, value))
}

// UpdateNestedOperatorE sets the operator of the condition at p.
func UpdateNestedOperatorE(root *Group, p Path, op string) (*Group, error) {
	return modifyCondition(root, p, func(c Condition) Condition {
		c.Operator = op
		return c
	})
}

// UpdateNestedOperator sets the operator of the condition at p. Group paths are a no-op.
func UpdateNestedOperator(root *Group, p Path, op string) *Group {
	return orUnchanged(root)(UpdateNestedOperatorE(root, p, op))
}

// UpdateNestedLogicalOperatorE toggles AND/OR on the group at p, root included.
func UpdateNestedLogicalOperatorE(root *Group, p Path) (*Group, error) {
	return modifyGroup(root, p, 0, func(g *Group) (*Group, error) {
		return &Group{LogicalOperator: g.LogicalOperator.Toggle(), Conditions: g.Conditions}, nil
	})
}

// UpdateNestedLogicalOperator toggles AND/OR on the group at p.
func UpdateNestedLogicalOperator(root *Group, p Path) *Group {
	return orUnchanged(root)(UpdateNestedLogicalOperatorE(root, p))
}

// UpdateGroupAtPathE replaces the group at p with newGroup. The empty path
// replaces the root.
func UpdateGroupAtPathE(root *Group, p Path, newGroup *Group) (*Group, error) {
	if newGroup == nil {
		return nil, pathError(ErrNotAGroup, p)
	}
	return modifyGroup(root, p, 0, func(*Group) (*Group, error) {
		return newGroup, nil
	})
}

// UpdateGroupAtPath replaces the subtree at p with newGroup.
func UpdateGroupAtPath(root *Group, p Path, newGroup *Group) *Group {
	return orUnchanged(root)(UpdateGroupAtPathE(root, p, newGroup))
}

func orUnchanged(root *Group) func(*Group, error) *Group {
	return func(updated *Group, err error) *Group {
		if err != nil {
			return root
		}
		return updated
	}
}

// Walk visits every node in pre-order together with its path. Returning false
// from fn stops the walk.
func Walk(root *Group, fn func(p Path, n Node) bool) {
	if root == nil {
		return
	}
	walk(root, Path{}, fn)
}

func walk(n Node, p Path, fn func(Path, Node) bool) bool {
	if !fn(p, n) {
		return false
	}
	g, ok := n.(*Group)
	if !ok {
		return true
	}
	for i, child := range g.Conditions {
		if !walk(child, p.Child(i), fn) {
			return false
		}
	}
	return true
}

// ConditionPaths lists the paths of all conditions in reading order.
func ConditionPaths(root *Group) []Path {
	var out []Path
	Walk(root, func(p Path, n Node) bool {
		if _, ok := n.(*Condition); ok {
			out = append(out, p)
		}
		return true
	})
	return out
}
