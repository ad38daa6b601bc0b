package filter

import (
	"errors"
	"fmt"
)

// Validate checks every condition against the declared properties and every
// group's logical operator. All problems are reported, joined.
func Validate(root *Group, props Properties) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrInvalidPath)
	}
	var errs []error
	Walk(root, func(p Path, n Node) bool {
		switch v := n.(type) {
		case *Group:
			if v.LogicalOperator != And && v.LogicalOperator != Or {
				errs = append(errs, fmt.Errorf("group %s: invalid logical operator %q", p, v.LogicalOperator))
			}
		case *Condition:
			if err := CheckCondition(*v, props, p); err != nil {
				errs = append(errs, err)
			}
		}
		return true
	})
	return errors.Join(errs...)
}

// CheckCondition verifies that c names a declared property and uses one of
// its operators.
func CheckCondition(c Condition, props Properties, p Path) error {
	prop, ok := props.Lookup(c.PropertyName)
	if !ok {
		return &UnknownPropertyError{Name: c.PropertyName, Path: p.Clone()}
	}
	if !prop.HasOperator(c.Operator) {
		return &UnknownOperatorError{Property: c.PropertyName, Operator: c.Operator, Path: p.Clone()}
	}
	return nil
}
