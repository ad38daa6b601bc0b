package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned when a path does not resolve inside the tree.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotAGroup is returned when a path resolves to a condition where a group was expected.
	ErrNotAGroup = errors.New("path does not reference a group")
	// ErrNotACondition is returned when a path resolves to a group where a condition was expected.
	ErrNotACondition = errors.New("path does not reference a condition")
	// ErrRootRemoval is returned when removing the root group is attempted.
	ErrRootRemoval = errors.New("the root group cannot be removed")
	// ErrUnknownProperty is matched by every *UnknownPropertyError.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrUnknownOperator is matched by every *UnknownOperatorError.
	ErrUnknownOperator = errors.New("unknown operator")
)

// UnknownPropertyError reports a condition naming an undeclared property.
type UnknownPropertyError struct {
	Name string
	Path Path
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("Invalid property: %s", e.Name)
}

// Is lets errors.Is match ErrUnknownProperty.
func (e *UnknownPropertyError) Is(target error) bool { return target == ErrUnknownProperty }

// UnknownOperatorError reports an operator outside the property's operator set.
type UnknownOperatorError struct {
	Property string
	Operator string
	Path     Path
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q for property %s", e.Operator, e.Property)
}

// Is lets errors.Is match ErrUnknownOperator.
func (e *UnknownOperatorError) Is(target error) bool { return target == ErrUnknownOperator }

func pathError(err error, p Path) error {
	return fmt.Errorf("%w: %s", err, p)
}
