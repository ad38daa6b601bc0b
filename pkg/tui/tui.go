// Package tui embeds the terminal filter bar in other programs.
package tui

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"golang.org/x/term"

	"github.com/oakwood-commons/filterbar/internal/synth"
	"github.com/oakwood-commons/filterbar/internal/ui"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/filterbar"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// Config configures Run and RenderSnapshot. Zero values pick defaults.
type Config struct {
	Title    string
	Width    int
	Height   int
	NoColor  bool
	MaxItems int
	// StartKeys are applied before the first frame, e.g. "Sta<CR>open<CR>".
	StartKeys []string

	// Tree is the initial filter. nil starts empty.
	Tree    *filter.Group
	Actions []filter.Action
	// AIURL enables "Filter by AI" against this endpoint.
	AIURL     string
	AITimeout time.Duration

	Logger   *logr.Logger
	OnChange func(*filter.Group)
	// Debounce overrides the option loader's debounce when non-nil.
	Debounce *time.Duration
	// Settle bounds how long RenderSnapshot waits for option fetches.
	Settle time.Duration
}

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr and stdin, then the COLUMNS variable. It falls back
// to 120x24.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

func newBar(ctx context.Context, props filter.Properties, cfg Config) (*filterbar.Bar, *ui.Notifier) {
	n := ui.NewNotifier()
	opts := []filterbar.Option{
		filterbar.WithContext(ctx),
		filterbar.WithTree(cfg.Tree),
		filterbar.WithActions(cfg.Actions...),
		filterbar.WithOnOptionsLoaded(n.Notify),
	}
	if cfg.Logger != nil {
		opts = append(opts, filterbar.WithLogger(cfg.Logger))
	}
	if cfg.OnChange != nil {
		opts = append(opts, filterbar.WithOnChange(cfg.OnChange))
	}
	if cfg.Debounce != nil {
		opts = append(opts, filterbar.WithDebounce(*cfg.Debounce))
	}
	if url := strings.TrimSpace(cfg.AIURL); url != "" {
		opts = append(opts, filterbar.WithSynthesizer(synth.NewClient(url, synth.WithTimeout(cfg.AITimeout))))
	}
	return filterbar.New(props, opts...), n
}

func (cfg Config) model(n *ui.Notifier) ui.Config {
	return ui.Config{
		Width:    cfg.Width,
		Height:   cfg.Height,
		NoColor:  cfg.NoColor,
		MaxItems: cfg.MaxItems,
		Title:    cfg.Title,
		Notifier: n,
	}
}

// Run shows the filter bar until the user finishes and returns the final
// tree. Cancelling ctx ends the program early; the tree built so far is
// still returned together with the error.
func Run(ctx context.Context, props filter.Properties, cfg Config, opts ...tea.ProgramOption) (*filter.Group, error) {
	bar, n := newBar(ctx, props, cfg)
	defer bar.Close()
	m, err := ui.Run(ctx, ui.NewModel(bar, cfg.model(n)), cfg.StartKeys, opts...)
	return m.Tree(), err
}

// RenderSnapshot renders one frame after applying cfg.StartKeys and returns
// it with the tree at that point. AI calls made by the keys complete before
// the frame is drawn.
func RenderSnapshot(ctx context.Context, props filter.Properties, cfg Config) (string, *filter.Group) {
	bar, n := newBar(ctx, props, cfg)
	defer bar.Close()
	view, m := ui.RenderSnapshot(bar, ui.SnapshotConfig{Config: cfg.model(n), StartKeys: cfg.StartKeys, Settle: cfg.Settle})
	return view, m.Tree()
}

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error {
	return ui.CopyToClipboard(text)
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
