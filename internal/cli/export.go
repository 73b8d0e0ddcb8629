package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderjulianmartinez/datadict/internal/export"
	"github.com/alexanderjulianmartinez/datadict/pkg/types"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	All    bool
	Filter string
	Out    string
	Force  bool
}

func (a *app) newExportCmd() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export [TABLE...]",
		Short: "Write the data dictionary for the selected tables",
		Long: `Write a .docx data dictionary. Tables appear in the order given on the
command line; with --all they appear in catalog order. Without tables or
--all, export.tables from the config file is used.

An existing output file is only replaced with --force or after confirming
the prompt on an interactive terminal.`,
		Example: `  # Two tables, default output path under ~/Downloads
  datadict export users orders -s shop

  # Every table whose name contains "order", English labels
  datadict export --all --filter order --lang en --out orders.docx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Export every base table")
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "With --all, only tables whose name contains this text")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output path (default: <export.dir>/数据字典<unix>.docx)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace an existing output file without asking")
	cmd.Flags().String("template", "", "Base .docx supplying styles and page setup")
	cmd.Flags().String("table-style", "", "Table style name defined by the template")
	cmd.Flags().String("lang", "", "Label language (zh|en)")
	cmd.Flags().String("dir", "", "Directory for the default output path")

	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	if opts.Filter != "" && !opts.All {
		return errors.New("--filter requires --all")
	}

	r, err := a.connect(cmd.Context())
	if err != nil {
		return err
	}
	defer r.Close()

	names, err := a.selection(cmd, r, args, opts.All, opts.Filter)
	if err != nil {
		return err
	}

	var confirm export.Confirmer
	if a.isTerminal() {
		confirm = promptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	exp := &export.Exporter{Reader: r, Schema: a.cfg.Source.Schema, Logger: a.logger}
	res, err := exp.Run(cmd.Context(), export.ExportRequest{
		Tables:       names,
		OutputPath:   opts.Out,
		Overwrite:    opts.Force,
		TemplatePath: a.cfg.Export.Template,
		TableStyle:   a.cfg.Export.TableStyle,
		Language:     a.cfg.Export.Language,
		Dir:          a.cfg.Export.Dir,
	}, confirm)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), a.output, res, func(w io.Writer) { renderExport(w, res) })
}

func renderExport(w io.Writer, res *types.ExportResult) {
	_, _ = fmt.Fprintf(w, "wrote %s (%d tables, %d columns)\n", res.Path, res.Tables, res.Columns)
}

// promptConfirmer asks on out and reads a y/N answer from in.
func promptConfirmer(in io.Reader, out io.Writer) export.ConfirmFunc {
	br := bufio.NewReader(in)
	return func(path string) (bool, error) {
		_, _ = fmt.Fprintf(out, "%s already exists. Overwrite? [y/N] ", path)
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
