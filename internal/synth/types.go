// Package synth turns free text into a replacement filter subtree through an
// external completion endpoint, validating the answer before it is applied.
package synth

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

var (
	// ErrInvalidResponse is returned when the endpoint answers without a
	// conditions array.
	ErrInvalidResponse = errors.New("Invalid response from AI filter") //nolint:staticcheck // user-facing message
	// ErrStale is returned when a newer synthesis superseded the one being applied.
	ErrStale = errors.New("superseded by a newer AI request")
)

// DefaultFailureMessage is reported when a failed response carries no error text.
const DefaultFailureMessage = "AI filtering failed"

// Request is the body posted to the synthesis endpoint.
type Request struct {
	Prompt           string            `json:"prompt"`
	FilterProperties filter.Properties `json:"filterProperties"`
	CurrentPath      filter.Path       `json:"currentPath"`
}

// Node is one element of the endpoint's answer: a group or a condition, as
// decided by filter.IsGroupShape.
type Node struct {
	LogicalOperator *string         `json:"logicalOperator,omitempty"`
	Conditions      *[]Node         `json:"conditions,omitempty"`
	PropertyName    string          `json:"propertyName,omitempty"`
	Operator        string          `json:"operator,omitempty"`
	Value           json.RawMessage `json:"value,omitempty"`
}

// IsGroup reports whether n describes a group.
func (n Node) IsGroup() bool {
	return filter.IsGroupShape(n.LogicalOperator != nil, n.Conditions != nil)
}

// Response is the endpoint's answer; its root is always a group.
type Response = Node

// Backend is the opaque completion capability.
type Backend interface {
	Synthesize(ctx context.Context, req Request) (*Response, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req Request) (*Response, error)

// Synthesize calls f.
func (f BackendFunc) Synthesize(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// StatusError is a non-2xx answer from the endpoint.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return DefaultFailureMessage
	}
	return e.Message
}

// Convert validates resp against props and builds the replacement group.
// Any condition naming an unknown property, or an operator its property does
// not declare, rejects the whole response. A missing operator becomes "=" and
// a missing logical operator becomes AND.
func Convert(resp *Response, props filter.Properties) (*filter.Group, error) {
	if resp == nil || resp.Conditions == nil {
		return nil, ErrInvalidResponse
	}
	return convertGroup(*resp, props, filter.Root)
}

func convertGroup(n Node, props filter.Properties, p filter.Path) (*filter.Group, error) {
	var raw string
	if n.LogicalOperator != nil {
		raw = *n.LogicalOperator
	}
	op, err := filter.ParseLogicalOperator(raw)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", p, err)
	}
	g := filter.NewGroup(op)
	if n.Conditions == nil {
		return g, nil
	}
	for i, child := range *n.Conditions {
		cp := p.Child(i)
		if child.IsGroup() {
			sub, err := convertGroup(child, props, cp)
			if err != nil {
				return nil, err
			}
			g.Conditions = append(g.Conditions, sub)
			continue
		}
		cond, err := convertCondition(child, props, cp)
		if err != nil {
			return nil, err
		}
		g.Conditions = append(g.Conditions, cond)
	}
	return g, nil
}

func convertCondition(n Node, props filter.Properties, p filter.Path) (*filter.Condition, error) {
	value, err := filter.ScalarString(n.Value)
	if err != nil {
		return nil, fmt.Errorf("condition %s: %w", p, err)
	}
	c := filter.Condition{PropertyName: n.PropertyName, Operator: n.Operator, Value: value}
	if c.Operator == "" {
		c.Operator = filter.DefaultOperator
	}
	if err := filter.CheckCondition(c, props, p); err != nil {
		return nil, err
	}
	return &c, nil
}
