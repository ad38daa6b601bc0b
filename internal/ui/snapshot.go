package ui

import (
	"strings"
	"time"

	"github.com/oakwood-commons/filterbar/pkg/filterbar"
)

// DefaultSettle bounds how long a snapshot waits for option fetches.
const DefaultSettle = 2 * time.Second

// SnapshotConfig configures RenderSnapshot.
type SnapshotConfig struct {
	Config
	StartKeys []string
	// Settle bounds the wait for background option fetches after the
	// keys are applied. 0 means DefaultSettle.
	Settle time.Duration
}

// RenderSnapshot applies the start keys to a fresh model over bar, waits for
// pending option fetches and renders one frame padded to the configured
// height. AI calls run inline.
func RenderSnapshot(bar *filterbar.Bar, cfg SnapshotConfig) (string, *Model) {
	cfg.Synchronous = true
	m := NewModel(bar, cfg.Config)
	ApplyStartupKeys(m, cfg.StartKeys)
	m.Settle(cfg.Settle)
	view := m.Render()
	if cfg.Height > 0 {
		view = padSnapshotHeight(view, cfg.Height, m.width)
	}
	return view, m
}

// Settle waits up to timeout for the bar's option loader to go idle,
// applying load notifications as they arrive.
func (m *Model) Settle(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultSettle
	}
	apply := func(p string) { m.bar.OptionsUpdated(p) }
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.cfg.Notifier.drain(apply)
		m.refresh()
		if m.bar.OptionsIdle() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	m.cfg.Notifier.drain(apply)
	m.refresh()
}

func padSnapshotHeight(view string, height, width int) string {
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
