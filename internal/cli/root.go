// Package cli provides the command-line interface for datadict.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexanderjulianmartinez/datadict/internal/config"
	"github.com/alexanderjulianmartinez/datadict/internal/logging"
	"github.com/alexanderjulianmartinez/datadict/internal/source"

	// Register catalog readers.
	_ "github.com/alexanderjulianmartinez/datadict/internal/source/mysql"
	_ "github.com/alexanderjulianmartinez/datadict/internal/source/postgres"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// app holds state shared by the commands of one invocation.
type app struct {
	cfgFile string
	output  string

	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error

	// Replaced in tests.
	open       func(ctx context.Context, p source.Params) (source.Reader, error)
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		open:       source.Open,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		closeLog:   func() error { return nil },
	}
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "datadict",
		Short: "datadict - database data dictionary exporter",
		Long: `datadict reads table and column metadata from a MySQL or PostgreSQL
catalog and writes it as a .docx data dictionary: a summary of the selected
tables followed by one detail table per table.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./datadict.yaml)")
	pf.StringVarP(&a.output, "output", "o", "text", "Output format (text|json|yaml)")
	pf.String("type", "", "Source type (mysql|postgres)")
	pf.String("host", "", "Database host")
	pf.Int("port", 0, "Database port")
	pf.StringP("user", "u", "", "Database user")
	pf.StringP("password", "p", "", "Database password")
	pf.StringP("schema", "s", "", "Schema (MySQL database) to document")
	pf.String("database", "", "PostgreSQL database name")
	pf.String("dsn", "", "Connection string; overrides host, port, user and password")
	pf.Duration("connect-timeout", 0, "Connection timeout")
	pf.Duration("query-timeout", 0, "Per-query timeout")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-file", "", `Also log to this file ("daily" for ~/logs/datadict/run-<date>.log)`)
	pf.String("log-format", "", "Log format (text|json)")

	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return source.Drivers(), cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newPingCmd())
	root.AddCommand(a.newTablesCmd())
	root.AddCommand(a.newColumnsCmd())
	root.AddCommand(a.newExportCmd())
	root.AddCommand(a.newCheckCmd())
	root.AddCommand(a.newUICmd())

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	switch a.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (text|json|yaml)", a.output)
	}

	cfg, err := config.LoadConfig(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(cfg.Log, cmd.ErrOrStderr(), time.Now())
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closeLog = cfg, logger, closeLog

	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}
	logger.Debug("configuration loaded", "source", cfg.Source)
	return nil
}

// connect opens a reader for the configured source. The caller closes it.
func (a *app) connect(ctx context.Context) (source.Reader, error) {
	p, err := a.cfg.Source.Params(a.logger)
	if err != nil {
		return nil, err
	}
	return a.open(ctx, p)
}

// Describe formats err for the user. Connection failures get a hint about
// which settings to check.
func Describe(err error) string {
	if source.IsConnectionError(err) {
		return fmt.Sprintf("%v\ncheck source.host, source.port, source.user and source.password (or source.dsn)", err)
	}
	return err.Error()
}

// Execute runs the root command against args.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := newApp()
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if cerr := a.closeLog(); err == nil && cerr != nil {
		err = cerr
	}
	return err
}
