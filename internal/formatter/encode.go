package formatter

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

// Format names an output rendering.
type Format string

const (
	FormatExpr Format = "expr"
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Render writes g in the requested format. Text formats end with a newline.
func Render(g *filter.Group, format Format, props filter.Properties) (string, error) {
	switch format {
	case FormatExpr, "":
		return Expression(g, props) + "\n", nil
	case FormatTree:
		return FormatAsTree(g, TreeOptions{Properties: props}), nil
	case FormatJSON:
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case FormatYAML:
		return EncodeYAML(g, 2)
	case FormatTOML:
		data, err := toml.Marshal(filter.ToMap(g))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unsupported output format %q", format)
}

// EncodeYAML renders g as YAML with keys in the same order as the JSON form.
func EncodeYAML(g *filter.Group, indent int) (string, error) {
	if indent <= 0 {
		indent = 2
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(groupNode(g)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func groupNode(g *filter.Group) *yaml.Node {
	conds := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, child := range g.Conditions {
		switch n := child.(type) {
		case *filter.Group:
			conds.Content = append(conds.Content, groupNode(n))
		case *filter.Condition:
			conds.Content = append(conds.Content, mapping(
				"propertyName", n.PropertyName,
				"operator", n.Operator,
				"value", n.Value,
			))
		}
	}
	if len(conds.Content) == 0 {
		conds.Style = yaml.FlowStyle
	}
	m := mapping("logicalOperator", string(g.LogicalOperator))
	m.Content = append(m.Content, scalar("conditions"), conds)
	return m
}

func mapping(kv ...string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Content = append(n.Content, scalar(kv[i]), scalar(kv[i+1]))
	}
	return n
}

// scalar always produces a string node so values like "3" or "true" keep
// their string type on the way back in.
func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
