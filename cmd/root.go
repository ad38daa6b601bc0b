// Package cmd implements the filterbar command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oakwood-commons/filterbar/internal/formatter"
	"github.com/oakwood-commons/filterbar/internal/limiter"
	"github.com/oakwood-commons/filterbar/internal/synth"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/loader"
	"github.com/oakwood-commons/filterbar/pkg/logger"
	"github.com/oakwood-commons/filterbar/pkg/settings"
	"github.com/oakwood-commons/filterbar/pkg/tui"
)

var errNoTerminal = errors.New("interactive mode needs a terminal; use --snapshot to render without one")

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newRootCmd() *cobra.Command {
	p := settings.NewCliParams()
	var logFile io.Closer

	root := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Build a structured filter interactively",
		Long: `filterbar edits a tree of filter conditions on one line.

Properties are declared in a JSON, YAML or TOML file. The finished filter is
printed to stdout; the editor itself draws on stderr so the result can be piped.`,
		Example: "  filterbar -p props.yaml\n" +
			"  filterbar -p props.yaml -f saved.json -o yaml\n" +
			"  filterbar -p props.yaml --snapshot --press 'Sta<CR><CR>'\n",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var w io.Writer = cmd.ErrOrStderr()
			if p.LogFile != "" {
				f, err := os.OpenFile(p.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("log file: %w", err)
				}
				w, logFile = f, f
			}
			lgr := logger.GetWithWriter(w, p.MinLogLevel)
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, lgr)
			cmd.SetContext(settings.IntoContext(ctx, p))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logFile != nil {
				_ = logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, p)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&p.PropertiesFile, "properties", "p", "", "property declarations file (json, yaml or toml)")
	pf.StringVarP(&p.FiltersFile, "filters", "f", "", "initial filter tree file (json, yaml or toml)")
	pf.VarP(outputFlag{&p.Output}, "output", "o", "output format: expr|tree|json|yaml|toml")
	pf.BoolVar(&p.NoColor, "no-color", false, "disable color output")
	pf.StringVar(&p.LogFile, "log-file", "", "append JSON logs to this file instead of stderr")
	pf.BoolFunc("debug", "enable debug logging", func(string) error {
		p.MinLogLevel = -1
		return nil
	})

	f := root.Flags()
	f.StringVar(&p.AIURL, "ai-url", "", "AI filter endpoint (overrides ai.url in the properties file)")
	f.BoolVar(&p.Snapshot, "snapshot", false, "render a single frame after --press keys and exit")
	f.StringArrayVar(&p.Press, "press", nil, "simulate keys on startup, e.g. --press 'Sta<CR>open<CR>'. Special keys: <CR> <Esc> <Tab> <Space> <BS> <Up> <Down> <Left> <Right> <C-o>")
	f.IntVar(&p.Width, "width", 0, "layout width in columns (0 = terminal width)")
	f.IntVar(&p.Height, "height", 0, "layout height in rows (0 = terminal height)")
	f.IntVar(&p.MaxItems, "max-items", p.MaxItems, "menu items shown at once")

	root.Version = cliVersionString()
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(newShowCmd(p), newValidateCmd(p), newPropertiesCmd(p), newVersionCmd())
	return root
}

// outputFlag parses --output into a settings.OutputFormat.
type outputFlag struct{ dst *settings.OutputFormat }

var _ pflag.Value = outputFlag{}

func (o outputFlag) String() string {
	if o.dst == nil {
		return ""
	}
	return string(*o.dst)
}

func (o outputFlag) Set(s string) error {
	f, err := settings.ParseOutputFormat(s)
	if err != nil {
		return err
	}
	*o.dst = f
	return nil
}

func (outputFlag) Type() string { return "format" }

func runRoot(cmd *cobra.Command, p *settings.Run) error {
	if err := (limiter.Config{Limit: p.MaxItems}).Validate(); err != nil {
		return err
	}
	if p.PropertiesFile == "" {
		return errors.New("--properties is required")
	}
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)

	decls, err := loader.LoadDeclarationsFile(p.PropertiesFile)
	if err != nil {
		return fmt.Errorf("loading properties: %w", err)
	}
	tree, err := loadTree(p.FiltersFile)
	if err != nil {
		return err
	}

	interactive := !p.Snapshot
	if interactive {
		if !stdinIsTerminal() {
			return errNoTerminal
		}
		if p.LogFile == "" {
			lgr = logger.GetNoopLogger()
			ctx = logger.WithLogger(ctx, lgr)
		}
	}

	aiURL, aiTimeout, err := aiSettings(p, decls, *lgr)
	if err != nil {
		return err
	}
	cfg := tui.Config{
		Title:     strings.TrimSuffix(filepath.Base(p.PropertiesFile), filepath.Ext(p.PropertiesFile)),
		Width:     p.Width,
		Height:    p.Height,
		NoColor:   p.NoColor,
		MaxItems:  p.MaxItems,
		StartKeys: p.Press,
		Tree:      tree,
		Actions:   decls.Actions,
		AIURL:     aiURL,
		AITimeout: aiTimeout,
		Logger:    lgr,
	}

	if p.Snapshot {
		view, _ := tui.RenderSnapshot(ctx, decls.Properties, cfg)
		_, err := fmt.Fprintln(cmd.OutOrStdout(), view)
		return err
	}

	final, err := tui.Run(ctx, decls.Properties, cfg, tui.WithIO(nil, cmd.ErrOrStderr())...)
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return printTree(cmd.OutOrStdout(), final, p.Output, decls.Properties)
}

// aiSettings resolves the AI endpoint: --ai-url wins over the file's ai.url.
func aiSettings(p *settings.Run, decls *loader.Declarations, lgr logr.Logger) (string, time.Duration, error) {
	url := p.AIURL
	if url == "" {
		url = decls.AI.URL
	}
	if url == "" {
		return "", 0, nil
	}
	timeout, err := decls.AI.TimeoutDuration(synth.DefaultTimeout)
	if err != nil {
		return "", 0, err
	}
	lgr.V(1).Info("AI filtering enabled", "url", url, "timeout", timeout.String())
	return url, timeout, nil
}

func loadTree(path string) (*filter.Group, error) {
	if path == "" {
		return nil, nil
	}
	tree, err := loader.LoadTreeFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading filters: %w", err)
	}
	return tree, nil
}

func printTree(w io.Writer, tree *filter.Group, format settings.OutputFormat, props filter.Properties) error {
	if tree == nil {
		tree = filter.NewGroup(filter.And)
	}
	out, err := formatter.Render(tree, formatter.Format(format), props)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
