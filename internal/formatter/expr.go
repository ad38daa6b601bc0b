package formatter

import (
	"strings"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

// Expression renders g on one line, e.g.
//
//	status = open AND (count > 3 OR owner = "Bob B")
//
// Nested groups are parenthesised; the root is not. An empty root renders
// as the empty string and an empty nested group as "()".
func Expression(g *filter.Group, props filter.Properties) string {
	var b strings.Builder
	writeGroup(&b, g, props)
	return b.String()
}

func writeGroup(b *strings.Builder, g *filter.Group, props filter.Properties) {
	sep := " " + string(g.LogicalOperator) + " "
	for i, child := range g.Conditions {
		if i > 0 {
			b.WriteString(sep)
		}
		switch n := child.(type) {
		case *filter.Group:
			b.WriteByte('(')
			writeGroup(b, n, props)
			b.WriteByte(')')
		case *filter.Condition:
			b.WriteString(conditionLabel(n, TreeOptions{Properties: props}))
		}
	}
}
