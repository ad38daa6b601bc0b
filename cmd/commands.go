package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/filterbar/internal/formatter"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/loader"
	"github.com/oakwood-commons/filterbar/pkg/logger"
	"github.com/oakwood-commons/filterbar/pkg/settings"
)

func newShowCmd(p *settings.Run) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print a saved filter tree",
		Long:  "Print the tree from --filters in the --output format. With --properties, property labels replace names in expr and tree output.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if p.FiltersFile == "" {
				return errors.New("--filters is required")
			}
			tree, err := loadTree(p.FiltersFile)
			if err != nil {
				return err
			}
			var props filter.Properties
			if p.PropertiesFile != "" {
				decls, err := loader.LoadDeclarationsFile(p.PropertiesFile)
				if err != nil {
					return fmt.Errorf("loading properties: %w", err)
				}
				props = decls.Properties
			}
			return printTree(cmd.OutOrStdout(), tree, p.Output, props)
		},
	}
}

func newValidateCmd(p *settings.Run) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a properties file, and optionally a filter tree against it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if p.PropertiesFile == "" {
				return errors.New("--properties is required")
			}
			lgr := logger.FromContext(cmd.Context())
			decls, err := loader.LoadDeclarationsFile(p.PropertiesFile)
			if err != nil {
				return fmt.Errorf("%s: %w", p.PropertiesFile, err)
			}
			lgr.V(1).Info("properties loaded", "count", len(decls.Properties))
			if p.FiltersFile != "" {
				tree, err := loadTree(p.FiltersFile)
				if err != nil {
					return err
				}
				if err := filter.Validate(tree, decls.Properties); err != nil {
					return fmt.Errorf("%s: %w", p.FiltersFile, err)
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

func newPropertiesCmd(p *settings.Run) *cobra.Command {
	return &cobra.Command{
		Use:   "properties",
		Short: "List declared properties as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if p.PropertiesFile == "" {
				return errors.New("--properties is required")
			}
			decls, err := loader.LoadDeclarationsFile(p.PropertiesFile)
			if err != nil {
				return fmt.Errorf("loading properties: %w", err)
			}
			out := cmd.OutOrStdout()
			table := formatter.RenderTable(formatter.PropertyRows(decls.Properties), formatter.TableOptions{
				NoColor:  p.NoColor || !isTerminalWriter(out),
				MaxWidth: p.Width,
			})
			_, err = io.WriteString(out, table)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
