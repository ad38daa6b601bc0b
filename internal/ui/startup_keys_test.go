package ui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/filterbar"
)

func TestParseTokenSegments(t *testing.T) {
	tests := []struct {
		token string
		want  []tokenSegment
	}{
		{"abc", []tokenSegment{{text: "abc"}}},
		{"<CR>", []tokenSegment{{text: "<CR>", isVimKey: true}}},
		{"<Down>abc<CR>", []tokenSegment{
			{text: "<Down>", isVimKey: true},
			{text: "abc"},
			{text: "<CR>", isVimKey: true},
		}},
		{"a<b", []tokenSegment{{text: "a"}, {text: "<b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTokenSegments(tt.token))
		})
	}
}

func TestKeyMsgFromToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"<Esc>", "esc", true},
		{"<CR>", "enter", true},
		{"<enter>", "enter", true},
		{"<Tab>", "tab", true},
		{"<Space>", "space", true},
		{"<BS>", "backspace", true},
		{"<Left>", "left", true},
		{"<Right>", "right", true},
		{"<Up>", "up", true},
		{"<Down>", "down", true},
		{"<C-o>", "ctrl+o", true},
		{"<C-Y>", "ctrl+y", true},
		{"<Nope>", "", false},
		{"CR", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			msg, ok := keyMsgFromToken(tt.token)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, msg.String())
			}
		})
	}
}

func TestApplyStartupKeysLiteral(t *testing.T) {
	m := newTestModel(t, Config{})
	ApplyStartupKeys(m, []string{`\<CR>`})
	assert.Equal(t, "<CR>", m.Bar().FreeText())
	assert.Equal(t, 0, m.Tree().Len())

	ApplyStartupKeys(nil, []string{"x"})
}

func TestNotifier(t *testing.T) {
	n := NewNotifier()
	n.Notify("owner")
	n.Notify("status")

	var got []string
	assert.True(t, n.drain(func(p string) { got = append(got, p) }))
	assert.Equal(t, []string{"owner", "status"}, got)
	assert.False(t, n.drain(func(string) {}))

	n.Notify("owner")
	msg := n.wait()()
	assert.Equal(t, optionsMsg{property: "owner"}, msg)

	var nilN *Notifier
	assert.Nil(t, nilN.wait())
	for i := 0; i < notifyBuffer+5; i++ {
		n.Notify("flood")
	}
	count := 0
	n.drain(func(string) { count++ })
	assert.Equal(t, notifyBuffer, count)
}

func TestOptionsMsgRearmsWait(t *testing.T) {
	m := newTestModel(t, Config{})
	_, cmd := m.Update(optionsMsg{property: "owner"})
	assert.NotNil(t, cmd)
}

func TestRenderSnapshot(t *testing.T) {
	n := NewNotifier()
	bar := filterbar.New(testProps(), filterbar.WithDebounce(0), filterbar.WithOnOptionsLoaded(n.Notify))
	defer bar.Close()

	out, m := RenderSnapshot(bar, SnapshotConfig{
		Config:    Config{Width: 50, Height: 12, NoColor: true, Notifier: n, Title: "issues"},
		StartKeys: []string{"Sta<CR><CR>", "Own<CR>"},
		Settle:    time.Second,
	})
	require.NotNil(t, m)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 12)
	assert.True(t, strings.HasPrefix(lines[0], "── issues "))
	assert.Contains(t, out, "Status = open AND Owner")
	assert.Contains(t, out, "> alice")
	assert.Contains(t, out, "  bob")
	assert.NotContains(t, out, "\x1b[")

	want := filter.NewGroup(filter.And,
		&filter.Condition{PropertyName: "status", Operator: "=", Value: "open"},
		&filter.Condition{PropertyName: "owner", Operator: "=", Value: ""},
	)
	assert.True(t, filter.Equal(want, m.Tree()))
}

func TestRenderEmptyTree(t *testing.T) {
	m := newTestModel(t, Config{Unfocused: true})
	assert.Contains(t, m.Render(), "No filters. Press enter to add one.")

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, m.Bar().Active().Is(filter.InputGroup))
	assert.NotContains(t, m.Render(), "No filters.")
}

func TestPadSnapshotHeight(t *testing.T) {
	assert.Equal(t, "a\n   \n   ", padSnapshotHeight("a\n", 3, 3))
	assert.Equal(t, "a\nb", padSnapshotHeight("a\nb", 1, 3))
}
