package filter

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

type conditionJSON struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type groupJSON struct {
	LogicalOperator LogicalOperator   `json:"logicalOperator"`
	Conditions      []json.RawMessage `json:"conditions"`
}

// MarshalJSON encodes the condition with the field names hosts persist.
func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{PropertyName: c.PropertyName, Operator: c.Operator, Value: c.Value})
}

// UnmarshalJSON decodes a condition. Non-string scalar values are kept in
// their JSON text form; null becomes the empty value.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw struct {
		PropertyName string          `json:"propertyName"`
		Operator     string          `json:"operator"`
		Value        json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, err := ScalarString(raw.Value)
	if err != nil {
		return fmt.Errorf("condition %q: %w", raw.PropertyName, err)
	}
	*c = Condition{PropertyName: raw.PropertyName, Operator: raw.Operator, Value: value}
	return nil
}

// MarshalJSON always writes conditions as an array, even when empty.
func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"logicalOperator":`)
	op, err := json.Marshal(g.LogicalOperator)
	if err != nil {
		return nil, err
	}
	buf.Write(op)
	buf.WriteString(`,"conditions":[`)
	for i, child := range g.Conditions {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(child)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a group. Children are groups or conditions as decided
// by IsGroupShape.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw groupJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	op, err := ParseLogicalOperator(string(raw.LogicalOperator))
	if err != nil {
		return err
	}
	out := Group{LogicalOperator: op}
	for i, child := range raw.Conditions {
		n, err := decodeNode(child)
		if err != nil {
			return fmt.Errorf("conditions[%d]: %w", i, err)
		}
		out.Conditions = append(out.Conditions, n)
	}
	*g = out
	return nil
}

func decodeNode(data []byte) (Node, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if IsGroupShape(present(obj, "logicalOperator"), present(obj, "conditions")) {
		g := &Group{}
		if err := g.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return g, nil
	}
	c := &Condition{}
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return c, nil
}

// IsGroupShape reports whether an object is a group: one carrying a
// logicalOperator or a conditions key with a non-null value. Saved trees and
// AI responses are both read with this rule.
func IsGroupShape(hasLogicalOperator, hasConditions bool) bool {
	return hasLogicalOperator || hasConditions
}

func present(obj map[string]json.RawMessage, key string) bool {
	raw, ok := obj[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ScalarString renders a raw JSON scalar as a condition value.
func ScalarString(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("value must be a scalar, got %s", raw)
	}
	if bytes.Equal(raw, []byte("true")) || bytes.Equal(raw, []byte("false")) {
		return string(raw), nil
	}
	if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
		return "", fmt.Errorf("value must be a scalar, got %s", raw)
	}
	return string(raw), nil
}

// DecodeGroup parses a JSON document into a filter tree.
func DecodeGroup(data []byte) (*Group, error) {
	g := &Group{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

type propertyJSON struct {
	Label     string       `json:"label"`
	Name      string       `json:"name"`
	Type      PropertyType `json:"type,omitempty"`
	Operators []string     `json:"operators,omitempty"`
	Options   []Option     `json:"options,omitempty"`
}

// MarshalJSON describes a property for external collaborators. Only literal
// option lists are included; provider functions and editors stay local.
func (p Property) MarshalJSON() ([]byte, error) {
	out := propertyJSON{Label: p.Label, Name: p.Name, Type: p.Type, Operators: p.Operators}
	if static, ok := p.Options.(StaticOptions); ok {
		for _, o := range static {
			if o.Editor == nil {
				out.Options = append(out.Options, o)
			}
		}
	}
	return json.Marshal(out)
}

// ToMap converts a tree to plain maps and slices for YAML/TOML encoders.
func ToMap(g *Group) map[string]any {
	conds := make([]any, 0, len(g.Conditions))
	for _, child := range g.Conditions {
		switch n := child.(type) {
		case *Group:
			conds = append(conds, ToMap(n))
		case *Condition:
			conds = append(conds, map[string]any{
				"propertyName": n.PropertyName,
				"operator":     n.Operator,
				"value":        n.Value,
			})
		}
	}
	return map[string]any{
		"logicalOperator": string(g.LogicalOperator),
		"conditions":      conds,
	}
}

// FromMap is the inverse of ToMap and accepts the generic shapes produced by
// YAML and TOML decoders.
func FromMap(m map[string]any) (*Group, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return DecodeGroup(data)
}
