package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProps = `
properties:
  - name: status
    label: Status
    operators: ["=", "!="]
    options: [open, closed]
  - name: owner
    label: Owner
    options_file: owners.txt
  - name: count
    label: Count
    type: number
    operators: [">", "<"]
    validate: 'value.matches("^[0-9]+$") ? "" : "must be a whole number"'
`

const testFilters = `{
  "logicalOperator": "AND",
  "conditions": [
    {"propertyName": "status", "operator": "=", "value": "open"},
    {"logicalOperator": "OR", "conditions": [
      {"propertyName": "count", "operator": ">", "value": "3"},
      {"propertyName": "owner", "operator": "=", "value": "Bob B"}
    ]}
  ]
}`

func writeFixtures(t *testing.T) (props, filters string) {
	t.Helper()
	dir := t.TempDir()
	props = filepath.Join(dir, "issues.yaml")
	filters = filepath.Join(dir, "saved.json")
	require.NoError(t, os.WriteFile(props, []byte(testProps), 0o600))
	require.NoError(t, os.WriteFile(filters, []byte(testFilters), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "owners.txt"), []byte("alice\nBob B\n"), 0o600))
	return props, filters
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSnapshot(t *testing.T) {
	props, _ := writeFixtures(t)
	out, err := execute(t, "-p", props, "--snapshot", "--no-color", "--width", "60", "--height", "10",
		"--press", "Sta<CR><CR>", "--press", "Own<CR>")
	require.NoError(t, err)

	assert.Contains(t, out, "── issues ")
	assert.Contains(t, out, "Status = open AND Owner")
	assert.Contains(t, out, "> alice")
	assert.Contains(t, out, "  Bob B")
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 10)
}

func TestSnapshotWithInitialFilters(t *testing.T) {
	props, filters := writeFixtures(t)
	out, err := execute(t, "-p", props, "-f", filters, "--snapshot", "--no-color", "--width", "120")
	require.NoError(t, err)
	assert.Contains(t, out, `Status = open AND (Count > 3 OR Owner = "Bob B")`)
}

func TestSnapshotAIFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"logicalOperator":"OR","conditions":[{"propertyName":"status","operator":"!=","value":"closed"}]}`)
	}))
	defer srv.Close()

	props, _ := writeFixtures(t)
	out, err := execute(t, "-p", props, "--ai-url", srv.URL, "--snapshot", "--no-color", "--width", "60",
		"--press", "not closed<Down><CR>")
	require.NoError(t, err)
	assert.Contains(t, out, "Status != closed")
}

func TestInteractiveNeedsTerminal(t *testing.T) {
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	defer func() { stdinIsTerminal = orig }()

	props, _ := writeFixtures(t)
	_, err := execute(t, "-p", props)
	assert.ErrorIs(t, err, errNoTerminal)
}

func TestRootErrors(t *testing.T) {
	props, _ := writeFixtures(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing properties", args: []string{"--snapshot"}, want: "--properties is required"},
		{name: "bad output", args: []string{"-p", props, "-o", "xml", "--snapshot"}, want: "unknown output format"},
		{name: "negative max items", args: []string{"-p", props, "--max-items", "-1", "--snapshot"}, want: "--max-items must be non-negative"},
		{name: "missing file", args: []string{"-p", filepath.Join(t.TempDir(), "nope.yaml"), "--snapshot"}, want: "loading properties"},
		{name: "stray argument", args: []string{"extra"}, want: "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestShow(t *testing.T) {
	props, filters := writeFixtures(t)
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "expr with names", args: []string{"show", "-f", filters}, want: []string{`status = open AND (count > 3 OR owner = "Bob B")`}},
		{name: "expr with labels", args: []string{"show", "-f", filters, "-p", props}, want: []string{`Status = open AND (Count > 3 OR Owner = "Bob B")`}},
		{name: "tree", args: []string{"show", "-f", filters, "-o", "tree"}, want: []string{"AND", "OR", "count > 3"}},
		{name: "yaml", args: []string{"show", "-f", filters, "-o", "yaml"}, want: []string{"logicalOperator: AND", `value: "3"`}},
		{name: "json", args: []string{"show", "-f", filters, "-o", "json"}, want: []string{`"propertyName": "owner"`}},
		{name: "toml", args: []string{"show", "-f", filters, "-o", "toml"}, want: []string{"logicalOperator = ", "propertyName = "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}

	_, err := execute(t, "show")
	assert.EqualError(t, err, "--filters is required")
}

func TestValidate(t *testing.T) {
	props, filters := writeFixtures(t)

	out, err := execute(t, "validate", "-p", props, "-f", filters)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logicalOperator: AND\nconditions:\n  - propertyName: status\n    operator: '>'\n    value: open\n  - propertyName: priority\n    value: high\n"), 0o600))
	_, err = execute(t, "validate", "-p", props, "-f", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority")
	assert.Contains(t, err.Error(), ">")
}

func TestProperties(t *testing.T) {
	props, _ := writeFixtures(t)
	out, err := execute(t, "properties", "-p", props)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[2], "open, closed")
	assert.Contains(t, lines[3], "(2 from list)")
	assert.Contains(t, lines[4], "number")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "filterbar v0.0.0-nightly"))
}

func TestFlagsHaveUsage(t *testing.T) {
	root := newRootCmd()
	check := func(f *pflag.Flag) {
		assert.NotEmpty(t, f.Usage, "flag --%s", f.Name)
	}
	root.Flags().VisitAll(check)
	root.PersistentFlags().VisitAll(check)
	assert.Equal(t, "expr", root.PersistentFlags().Lookup("output").DefValue)
}
