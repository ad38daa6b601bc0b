// Package config holds the declaration document types read by the loader:
// filterable properties, caller actions and the AI endpoint.
package config

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// File is a complete declaration document.
type File struct {
	Properties []PropertyDecl `json:"properties" yaml:"properties" toml:"properties"`
	Actions    []ActionDecl   `json:"actions,omitempty" yaml:"actions,omitempty" toml:"actions,omitempty"`
	AI         AIDecl         `json:"ai,omitempty" yaml:"ai,omitempty" toml:"ai,omitempty"`
}

// PropertyDecl declares one property. At most one of Options, OptionsFile,
// OptionsURL and Custom may be set.
type PropertyDecl struct {
	Name        string       `json:"name" yaml:"name" toml:"name"`
	Label       string       `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Operators   []string     `json:"operators,omitempty" yaml:"operators,omitempty" toml:"operators,omitempty"`
	Options     []OptionDecl `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	OptionsFile string       `json:"options_file,omitempty" yaml:"options_file,omitempty" toml:"options_file,omitempty"`
	OptionsURL  string       `json:"options_url,omitempty" yaml:"options_url,omitempty" toml:"options_url,omitempty"`
	Custom      *CustomDecl  `json:"custom,omitempty" yaml:"custom,omitempty" toml:"custom,omitempty"`
	Validate    string       `json:"validate,omitempty" yaml:"validate,omitempty" toml:"validate,omitempty"`
}

// OptionDecl is a static option. In documents it is either a plain string
// or a {label, value} object; an object with a custom key declares the
// custom editor entry of a mixed list.
type OptionDecl struct {
	Label  string      `json:"label,omitempty"`
	Value  string      `json:"value"`
	Custom *CustomDecl `json:"custom,omitempty"`
}

// UnmarshalJSON accepts a bare scalar or an object.
func (o *OptionDecl) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain OptionDecl
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("option: %w", err)
		}
		*o = OptionDecl(p)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("option: %w", err)
	}
	switch s := v.(type) {
	case string:
		*o = OptionDecl{Value: s}
	case float64, bool:
		*o = OptionDecl{Value: fmt.Sprint(s)}
	default:
		return fmt.Errorf("option: unsupported value %s", string(data))
	}
	return nil
}

// DisplayLabel returns Label, or Value when no label is declared.
func (o OptionDecl) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// CustomDecl declares a host-rendered editor.
type CustomDecl struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// ActionDecl declares a caller action shown in group menus.
type ActionDecl struct {
	Value string `json:"value" yaml:"value" toml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// AIDecl configures the synthesis endpoint.
type AIDecl struct {
	URL     string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value yields def.
func (a AIDecl) TimeoutDuration(def time.Duration) (time.Duration, error) {
	if a.Timeout == "" {
		return def, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("ai.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ai.timeout must be positive, got %s", a.Timeout)
	}
	return d, nil
}

// Check reports structural problems that decoding alone does not catch.
func (f *File) Check() error {
	seen := make(map[string]bool, len(f.Properties))
	for i, p := range f.Properties {
		if p.Name == "" {
			return fmt.Errorf("properties[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("properties[%d]: duplicate property %q", i, p.Name)
		}
		seen[p.Name] = true
		if n := p.sources(); n > 1 {
			return fmt.Errorf("property %s: options, options_file, options_url and custom are exclusive", p.Name)
		}
		customs := 0
		for _, o := range p.Options {
			if o.Custom != nil {
				customs++
			}
		}
		if customs > 1 {
			return fmt.Errorf("property %s: at most one custom option entry is allowed", p.Name)
		}
	}
	for i, a := range f.Actions {
		if a.Value == "" {
			return fmt.Errorf("actions[%d]: value is required", i)
		}
	}
	return nil
}

func (p PropertyDecl) sources() int {
	n := 0
	if len(p.Options) > 0 {
		n++
	}
	if p.OptionsFile != "" {
		n++
	}
	if p.OptionsURL != "" {
		n++
	}
	if p.Custom != nil {
		n++
	}
	return n
}
