// Package filter holds the filter tree data model shared by every filterbar
// component: property declarations, conditions, groups, and the path-addressed
// operations that produce new trees from old ones.
//
// Trees are treated as immutable values. Every operation returns a new root and
// rebuilds only the ancestor chain of the node it touches, so untouched sibling
// subtrees are shared between the old and the new tree.
package filter

import (
	"context"
	"strings"
)

// PropertyType is the declared value type of a property.
type PropertyType string

const (
	TypeString  PropertyType = "string"
	TypeNumber  PropertyType = "number"
	TypeDate    PropertyType = "date"
	TypeBoolean PropertyType = "boolean"
)

// DefaultOperator is used when a property declares no operators.
const DefaultOperator = "="

// Option is a single selectable value. Entries with a non-nil Editor open a
// custom editor instead of supplying Value directly.
type Option struct {
	Label  string        `json:"label"`
	Value  string        `json:"value"`
	Editor *CustomEditor `json:"-"`
}

// StringOptions turns plain strings into options whose label equals the value.
func StringOptions(values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Label: v, Value: v})
	}
	return out
}

// Options is the closed set of value sources a property can declare:
// StaticOptions, SyncOptions, AsyncOptions or *CustomEditor.
type Options interface {
	optionsSource()
}

// StaticOptions is a literal list of options.
type StaticOptions []Option

// SyncOptions computes options from the search text without blocking.
type SyncOptions func(search string) []Option

// AsyncOptions fetches options for the search text. Results are cached by the
// options loader under (property name, search).
type AsyncOptions func(ctx context.Context, search string) ([]Option, error)

// CustomEditor describes a host-rendered value editor. Component is an opaque
// token handed back to the renderer; the core never inspects it.
type CustomEditor struct {
	Label     string
	Component any
}

func (StaticOptions) optionsSource() {}
func (SyncOptions) optionsSource()   {}
func (AsyncOptions) optionsSource()  {}
func (*CustomEditor) optionsSource() {}

// EditorLabel returns the label shown for the editor's menu item.
func (e *CustomEditor) EditorLabel() string {
	if e == nil || strings.TrimSpace(e.Label) == "" {
		return "Custom..."
	}
	return e.Label
}

// Property declares a filterable field.
type Property struct {
	Label     string
	Name      string
	Type      PropertyType
	Operators []string
	Options   Options
	// Validate, when set, is consulted before a selected value is committed.
	Validate func(value string) error
}

// DefaultOperator returns the first declared operator, or "=".
func (p Property) DefaultOperator() string {
	if len(p.Operators) > 0 {
		return p.Operators[0]
	}
	return DefaultOperator
}

// OperatorList returns the declared operators, or ["="] when none are declared.
func (p Property) OperatorList() []string {
	if len(p.Operators) == 0 {
		return []string{DefaultOperator}
	}
	return p.Operators
}

// HasOperator reports whether op is valid for this property. "=" is always valid.
func (p Property) HasOperator(op string) bool {
	if op == DefaultOperator {
		return true
	}
	for _, o := range p.Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Editor returns the custom editor when the property's options are a custom
// editor descriptor.
func (p Property) Editor() (*CustomEditor, bool) {
	ed, ok := p.Options.(*CustomEditor)
	return ed, ok && ed != nil
}

// IsFetched reports whether the property's options come from a provider
// function and therefore go through the options cache.
func (p Property) IsFetched() bool {
	switch p.Options.(type) {
	case SyncOptions, AsyncOptions:
		return true
	}
	return false
}

// Properties is the ordered list of declared properties.
type Properties []Property

// Lookup finds a property by name.
func (ps Properties) Lookup(name string) (Property, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Names returns property names in declaration order.
func (ps Properties) Names() []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return names
}
