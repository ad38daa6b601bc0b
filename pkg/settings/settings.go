// Package settings provides build metadata and the per-run settings of the
// filterbar CLI, carried through context.
package settings

import (
	"fmt"
	"strings"
)

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "filterbar"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, build version and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// OutputFormat selects how a filter tree is printed.
type OutputFormat string

const (
	OutputExpr OutputFormat = "expr"
	OutputTree OutputFormat = "tree"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
	OutputTOML OutputFormat = "toml"
)

// OutputFormats lists the accepted --output values.
var OutputFormats = []OutputFormat{OutputExpr, OutputTree, OutputJSON, OutputYAML, OutputTOML}

// ParseOutputFormat validates a --output value. Empty input selects expr.
func ParseOutputFormat(s string) (OutputFormat, error) {
	if s == "" {
		return OutputExpr, nil
	}
	for _, f := range OutputFormats {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of expr, tree, json, yaml, toml)", s)
}

// Run holds the settings of a single CLI invocation.
type Run struct {
	MinLogLevel    int8
	NoColor        bool
	Output         OutputFormat
	PropertiesFile string
	FiltersFile    string
	AIURL          string
	Snapshot       bool
	Press          []string
	LogFile        string
	Width          int
	Height         int
	MaxItems       int
}

// NewCliParams returns the defaults used before flags are applied.
func NewCliParams() *Run {
	return &Run{
		Output:   OutputExpr,
		MaxItems: 8,
	}
}
