// Package loader reads filterbar documents (property declarations and filter
// trees) from YAML, JSON or TOML, detecting the format from the file
// extension or, failing that, from the content.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// TOML section headers: [server], [[items]], ["table name"], [a.b]
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// TOML key = value, as opposed to YAML key: value
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// DetectFormat guesses the encoding of input.
func DetectFormat(input string) Format {
	input = strings.TrimSpace(input)
	// TOML before JSON: "[server]" looks like the start of a JSON array.
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// FormatFromPath maps a file extension to a format. ok is false for unknown
// extensions.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

func isLikelyTOML(input string) bool {
	sections, pairs, nonEmpty := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			pairs++
		}
	}
	return sections > 0 || (nonEmpty > 0 && pairs > nonEmpty/2)
}

// Decode parses data as a single document in the given format. An empty
// format triggers detection.
func Decode(data []byte, format Format) (map[string]any, error) {
	input := strings.TrimSpace(string(data))
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}
	if format == "" {
		format = DetectFormat(input)
	}

	var doc any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal([]byte(input), &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal([]byte(input), &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a %s object at the top level, got %T", format, doc)
	}
	return m, nil
}

// DecodeFile reads and parses path, honoring its extension.
func DecodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, _ := FormatFromPath(path)
	m, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// into re-encodes a generic document into a typed value. The JSON hop keeps
// one set of struct tags authoritative for all three input formats.
func into(doc map[string]any, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cannot marshal document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cannot decode document: %w", err)
	}
	return nil
}
