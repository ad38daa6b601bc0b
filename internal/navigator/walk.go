// Package navigator implements the in-order condition walk over a filter tree
// and the keyboard semantics that move focus between leaves or delete nodes.
package navigator

import "github.com/oakwood-commons/filterbar/pkg/filter"

// FirstCondition returns the path of the first condition inside g, which is
// addressed by base, or nil when g holds no conditions at any depth.
func FirstCondition(g *filter.Group, base filter.Path) filter.Path {
	if g == nil {
		return nil
	}
	for i, child := range g.Conditions {
		switch v := child.(type) {
		case *filter.Condition:
			return base.Child(i)
		case *filter.Group:
			if p := FirstCondition(v, base.Child(i)); p != nil {
				return p
			}
		}
	}
	return nil
}

// LastCondition returns the path of the last condition inside g, which is
// addressed by base, or nil when g holds no conditions at any depth.
func LastCondition(g *filter.Group, base filter.Path) filter.Path {
	if g == nil {
		return nil
	}
	for i := len(g.Conditions) - 1; i >= 0; i-- {
		switch v := g.Conditions[i].(type) {
		case *filter.Condition:
			return base.Child(i)
		case *filter.Group:
			if p := LastCondition(v, base.Child(i)); p != nil {
				return p
			}
		}
	}
	return nil
}

// FindNextCondition returns the first condition that follows the node at p in
// reading order, skipping the node's own subtree. Empty groups are passed
// over. It returns nil when p is the last leaf or does not resolve.
func FindNextCondition(root *filter.Group, p filter.Path) filter.Path {
	if filter.FindNode(root, p) == nil {
		return nil
	}
	for depth := len(p); depth > 0; depth-- {
		parentPath := p[:depth-1]
		parent := filter.FindGroupByPath(root, parentPath)
		for j := p[depth-1] + 1; j < parent.Len(); j++ {
			if next := leafAt(parent.Conditions[j], parentPath.Child(j), FirstCondition); next != nil {
				return next
			}
		}
	}
	return nil
}

// FindPreviousCondition returns the last condition that precedes the node at
// p in reading order. It is the mirror of FindNextCondition.
func FindPreviousCondition(root *filter.Group, p filter.Path) filter.Path {
	if filter.FindNode(root, p) == nil {
		return nil
	}
	for depth := len(p); depth > 0; depth-- {
		parentPath := p[:depth-1]
		parent := filter.FindGroupByPath(root, parentPath)
		for j := p[depth-1] - 1; j >= 0; j-- {
			if prev := leafAt(parent.Conditions[j], parentPath.Child(j), LastCondition); prev != nil {
				return prev
			}
		}
	}
	return nil
}

func leafAt(n filter.Node, p filter.Path, descend func(*filter.Group, filter.Path) filter.Path) filter.Path {
	switch v := n.(type) {
	case *filter.Condition:
		return p
	case *filter.Group:
		return descend(v, p)
	}
	return nil
}
