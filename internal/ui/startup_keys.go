package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys simulates key presses given as Vim-like tokens and
// literal text, e.g. "<CR>Sta<CR>open<CR>". A leading backslash forces a
// token to be read as literal text. Commands produced by the presses are
// dropped, so hosts that need AI results inline set Config.Synchronous.
func ApplyStartupKeys(m *Model, keys []string) {
	if len(keys) == 0 || m == nil {
		return
	}
	press := func(msg tea.KeyPressMsg) {
		m.Update(msg)
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			for _, r := range strings.TrimPrefix(token, `\`) {
				press(runeKey(r))
			}
			continue
		}
		for _, segment := range parseTokenSegments(token) {
			if segment.isVimKey {
				if msg, ok := keyMsgFromToken(segment.text); ok {
					press(msg)
					continue
				}
			}
			for _, r := range segment.text {
				press(runeKey(r))
			}
		}
	}
}

func runeKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// tokenSegment is a parsed piece of a token: a <...> key or literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits "<Down>abc<CR>" into <Down>, abc, <CR>.
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for len(remaining) > 0 {
		start := strings.Index(remaining, "<")
		if start == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if start > 0 {
			segments = append(segments, tokenSegment{text: remaining[:start]})
		}
		end := strings.Index(remaining[start:], ">")
		if end == -1 {
			segments = append(segments, tokenSegment{text: remaining[start:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[start : start+end+1], isVimKey: true})
		remaining = remaining[start+end+1:]
	}
	return segments
}

// keyMsgFromToken parses tokens such as "<Esc>", "<CR>", "<Space>", "<BS>",
// "<C-o>" or "<Left>". Unknown tokens report false and are typed literally.
func keyMsgFromToken(token string) (tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return tea.KeyPressMsg{}, false
	}
	inner := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	switch inner {
	case "esc", "c-[", "escape":
		return tea.KeyPressMsg{Code: tea.KeyEscape}, true
	case "cr", "enter", "return":
		return tea.KeyPressMsg{Code: tea.KeyEnter}, true
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}, true
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, true
	case "bs", "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}, true
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}, true
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}, true
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}, true
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}, true
	case "home":
		return tea.KeyPressMsg{Code: tea.KeyHome}, true
	case "end":
		return tea.KeyPressMsg{Code: tea.KeyEnd}, true
	}
	if rest, ok := strings.CutPrefix(inner, "c-"); ok && len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'z' {
		return tea.KeyPressMsg{Code: rune(rest[0]), Mod: tea.ModCtrl}, true
	}
	return tea.KeyPressMsg{}, false
}
