package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexanderjulianmartinez/datadict/internal/audit"
	"github.com/alexanderjulianmartinez/datadict/internal/source"
	"github.com/alexanderjulianmartinez/datadict/internal/tui"
	"github.com/alexanderjulianmartinez/datadict/pkg/types"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "datadict v%s (%s)\n", Version, GitCommit)
		},
	}
}

func (a *app) newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.Ping(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "connected to %s (schema %s)\n", r.Driver(), a.cfg.Source.Schema)
			return nil
		},
	}
}

func (a *app) newTablesCmd() *cobra.Command {
	var filter source.TableFilter

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List base tables and their comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			tables, err := r.ListTables(cmd.Context(), a.cfg.Source.Schema, filter)
			if err != nil {
				return err
			}
			listing := make([]types.TableListing, 0, len(tables))
			for _, t := range tables {
				listing = append(listing, types.TableListing{Name: t.Name, Comment: t.Comment})
			}
			return render(cmd.OutOrStdout(), a.output, listing, func(w io.Writer) { renderTables(w, listing) })
		},
	}

	cmd.Flags().StringVarP(&filter.Contains, "filter", "f", "", "Only tables whose name contains this text (case-sensitive)")
	cmd.Flags().StringSliceVar(&filter.Include, "include", nil, "Only these tables")
	return cmd
}

func (a *app) newColumnsCmd() *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "columns TABLE",
		Short: "List a table's columns in catalog order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			cols, err := r.ListColumns(cmd.Context(), a.cfg.Source.Schema, args[0], exclude)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output, cols, func(w io.Writer) { renderColumns(w, cols) })
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Columns to leave out")
	return cmd
}

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [TABLE...]",
		Short: "Report documentation gaps in the selected tables",
		Long: `Check the selected tables (default: export.tables from config, else every
base table) for missing tables, tables without a primary key and empty
comments. Exits non-zero when a BLOCK issue is found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			names, err := a.selection(cmd, r, args, len(args) == 0 && len(a.cfg.Export.Tables) == 0, "")
			if err != nil {
				return err
			}
			result, err := source.Inspect(cmd.Context(), r, a.cfg.Source.Schema, names)
			if err != nil {
				return err
			}

			rep := audit.Validate(result)
			if err := render(cmd.OutOrStdout(), a.output, rep, func(w io.Writer) { renderReport(w, rep) }); err != nil {
				return err
			}
			if rep.Blocking() {
				return fmt.Errorf("check found %d blocking issue(s)", rep.Count(audit.SeverityBlock))
			}
			return nil
		},
	}
}

func (a *app) newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Choose tables and export interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), tui.Options{
				Config: a.cfg,
				Logger: a.logger,
				Open:   a.open,
			})
		},
	}
}

// selection resolves which tables a command works on: explicit args, every
// table matching contains when all is set, or export.tables from config.
func (a *app) selection(cmd *cobra.Command, r source.Reader, args []string, all bool, contains string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if all {
		tables, err := r.ListTables(cmd.Context(), a.cfg.Source.Schema, source.TableFilter{Contains: contains})
		if err != nil {
			return nil, err
		}
		return source.Names(tables), nil
	}
	return a.cfg.Export.Tables, nil
}
