// Package formatter renders filter trees and property declarations for the
// terminal and for machine consumption.
package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// Properties supplies display labels. Unknown names print as-is.
	Properties filter.Properties
	// ShowPaths prefixes every node with its path.
	ShowPaths bool
	// MaxValueLen truncates long values. 0 or negative = no truncation.
	MaxValueLen int
}

// FormatAsTree renders g as an ASCII tree: groups are branches labelled with
// their logical operator and conditions are leaves.
func FormatAsTree(g *filter.Group, opts TreeOptions) string {
	tree := treeprint.NewWithRoot(groupLabel(g, filter.Root, opts))
	buildTree(tree, g, filter.Root, opts)
	return tree.String()
}

func buildTree(branch treeprint.Tree, g *filter.Group, p filter.Path, opts TreeOptions) {
	for i, child := range g.Conditions {
		cp := p.Child(i)
		switch n := child.(type) {
		case *filter.Group:
			buildTree(branch.AddBranch(groupLabel(n, cp, opts)), n, cp, opts)
		case *filter.Condition:
			branch.AddNode(withPath(conditionLabel(n, opts), cp, opts))
		}
	}
}

func groupLabel(g *filter.Group, p filter.Path, opts TreeOptions) string {
	label := string(g.LogicalOperator)
	if g.Len() == 0 {
		label += " (empty)"
	}
	return withPath(label, p, opts)
}

func conditionLabel(c *filter.Condition, opts TreeOptions) string {
	return fmt.Sprintf("%s %s %s", propertyLabel(c.PropertyName, opts.Properties), c.Operator, displayValue(c.Value, opts.MaxValueLen))
}

func withPath(label string, p filter.Path, opts TreeOptions) string {
	if !opts.ShowPaths {
		return label
	}
	return p.String() + " " + label
}

func propertyLabel(name string, props filter.Properties) string {
	if p, ok := props.Lookup(name); ok && p.Label != "" {
		return p.Label
	}
	return name
}

func displayValue(v string, maxLen int) string {
	if v == "" {
		return `""`
	}
	if strings.ContainsAny(v, " \t\n\"()") {
		v = fmt.Sprintf("%q", v)
	}
	return Truncate(v, maxLen)
}

// Truncate shortens s to maxLen display cells, ending in "..." when there
// is room for it.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
