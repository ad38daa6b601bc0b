package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/filterbar/internal/config"
	"github.com/oakwood-commons/filterbar/pkg/filter"
)

const sampleDecl = `
properties:
  - name: status
    label: Status
    operators: ["=", "!="]
    options:
      - open
      - label: Closed
        value: closed
      - custom:
          label: Other status...
  - name: owner
    label: Owner
    options_file: owners.txt
  - name: created
    label: Created
    type: date
    custom: { label: "Pick a date..." }
    validate: 'value.matches("^[0-9]{4}-[0-9]{2}-[0-9]{2}$")'
  - name: count
    type: number
actions:
  - value: save-view
    label: Save as view
  - value: export
ai:
  url: http://localhost:8080/ai-filter
  timeout: 5s
`

func writeDecl(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "owners.txt"), []byte("# owners\nalice\n\nBob Builder\tbob\n"), 0o600))
	path := filepath.Join(dir, "props.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDeclarationsFile(t *testing.T) {
	d, err := LoadDeclarationsFile(writeDecl(t, sampleDecl))
	require.NoError(t, err)
	require.Len(t, d.Properties, 4)
	assert.Equal(t, []string{"status", "owner", "created", "count"}, d.Properties.Names())

	status := d.Properties[0]
	static, ok := status.Options.(filter.StaticOptions)
	require.True(t, ok)
	require.Len(t, static, 3)
	assert.Equal(t, filter.Option{Label: "open", Value: "open"}, static[0])
	assert.Equal(t, filter.Option{Label: "Closed", Value: "closed"}, static[1])
	require.NotNil(t, static[2].Editor)
	assert.Equal(t, "Other status...", static[2].Label)
	assert.Equal(t, filter.TypeString, status.Type)

	owner := d.Properties[1]
	sync, ok := owner.Options.(filter.SyncOptions)
	require.True(t, ok)
	assert.Equal(t, []filter.Option{{Label: "alice", Value: "alice"}, {Label: "Bob Builder", Value: "bob"}}, sync(""))
	assert.Equal(t, []filter.Option{{Label: "Bob Builder", Value: "bob"}}, sync("BUILD"))

	created := d.Properties[2]
	ed, ok := created.Editor()
	require.True(t, ok)
	assert.Equal(t, "Pick a date...", ed.EditorLabel())
	require.NotNil(t, created.Validate)
	assert.NoError(t, created.Validate("2024-02-01"))
	assert.Error(t, created.Validate("tomorrow"))

	count := d.Properties[3]
	assert.Equal(t, "count", count.Label)
	assert.Equal(t, filter.TypeNumber, count.Type)
	assert.Nil(t, count.Options)

	require.Len(t, d.Actions, 2)
	assert.Equal(t, "Save as view", d.Actions[0].Label)
	assert.Equal(t, "export", d.Actions[1].Label)
	assert.NoError(t, d.Actions[0].Handler(context.Background(), "x", filter.ActionContext{}))

	assert.Equal(t, "http://localhost:8080/ai-filter", d.AI.URL)
	assert.Equal(t, "5s", d.AI.Timeout)
}

func TestLoadDeclarationsJSON(t *testing.T) {
	d, err := LoadDeclarations([]byte(`{"properties":[{"name":"status","options":["a",{"label":"B","value":"b"}]}]}`))
	require.NoError(t, err)
	require.Len(t, d.Properties, 1)
	assert.Equal(t, filter.StaticOptions{{Label: "a", Value: "a"}, {Label: "B", Value: "b"}}, d.Properties[0].Options)
}

func TestLoadDeclarationsTOML(t *testing.T) {
	d, err := LoadDeclarations([]byte(`
[[properties]]
name = "status"
operators = ["=", "!="]
options = ["open", "closed"]

[ai]
url = "http://ai"
`))
	require.NoError(t, err)
	require.Len(t, d.Properties, 1)
	assert.Equal(t, []string{"=", "!="}, d.Properties[0].Operators)
	assert.Equal(t, "http://ai", d.AI.URL)
}

func TestLoadDeclarationsErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "bad type", body: "properties:\n  - name: a\n    type: color\n", wantErr: `unknown type "color"`},
		{name: "bad validate", body: "properties:\n  - name: a\n    validate: 'value =='\n", wantErr: "validate"},
		{name: "missing options file", body: "properties:\n  - name: a\n    options_file: nope.txt\n", wantErr: "options_file"},
		{name: "exclusive sources", body: "properties:\n  - name: a\n    options: [x]\n    options_url: http://x\n", wantErr: "exclusive"},
		{name: "duplicate", body: "properties:\n  - name: a\n  - name: a\n", wantErr: "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDeclarations([]byte(tt.body), WithBaseDir(t.TempDir()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestActionHandlerOption(t *testing.T) {
	var got []string
	d, err := LoadDeclarations([]byte("properties: []\nactions:\n  - value: save\n"),
		WithActionHandler(func(decl config.ActionDecl) filter.ActionFunc {
			return func(_ context.Context, text string, _ filter.ActionContext) error {
				got = append(got, decl.Value+":"+text)
				return nil
			}
		}))
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)
	require.NoError(t, d.Actions[0].Handler(context.Background(), "mine", filter.ActionContext{}))
	assert.Equal(t, []string{"save:mine"}, got)
}

func TestURLOptions(t *testing.T) {
	var searches []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searches = append(searches, r.URL.Query().Get("search"))
		switch r.URL.Path {
		case "/plain":
			_, _ = w.Write([]byte(`["red", {"label":"Dark Blue","value":"navy"}]`))
		case "/wrapped":
			_, _ = w.Write([]byte(`{"options":["x"]}`))
		case "/broken":
			_, _ = w.Write([]byte(`{"options":`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	opts, err := URLOptions(srv.URL+"/plain?team=a", srv.Client())(ctx, "bl ue")
	require.NoError(t, err)
	assert.Equal(t, []filter.Option{{Label: "red", Value: "red"}, {Label: "Dark Blue", Value: "navy"}}, opts)
	assert.Equal(t, "bl ue", searches[0])

	opts, err = URLOptions(srv.URL+"/wrapped", nil)(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []filter.Option{{Label: "x", Value: "x"}}, opts)

	_, err = URLOptions(srv.URL+"/broken", nil)(ctx, "")
	assert.Error(t, err)

	_, err = URLOptions(srv.URL+"/fail", nil)(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestURLOptionsHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := URLOptions(srv.URL, nil)(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
