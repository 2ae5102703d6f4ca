/*
Package cli implements the cashflow command line.

COMMANDS:
  cashflow serve                 HTTP API, background refresher, /metrics
  cashflow project [flags]       Print a daily projection table
  cashflow import FILE           Load a plan document into the store

CONFIGURATION:
  Values come from CASHFLOW_* environment variables (and .env); the
  persistent flags below override them for one invocation.

SEE ALSO:
  - config/config.go: Variables and defaults
  - cmd/cashflow/main.go: Entry point
*/
package cli

import (
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/config"
	"github.com/warp/cashflow-engine/logging"
)

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cashflow",
		Short: "Household cash-flow projection engine",
		Long: `Project a household's account, credit card and voucher balances day by day.

Accounts, salary, card, vouchers, ledger entries, transfers and future events
are kept in a SQLite database and edited through the HTTP API or imported
from a JSON plan document.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.String("db", "", "SQLite database path (overrides CASHFLOW_DB_PATH)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (overrides CASHFLOW_LOG_LEVEL)")
	pf.String("log-format", "", "Log format: text or json (overrides CASHFLOW_LOG_FORMAT)")

	root.AddCommand(a.newServeCmd())
	root.AddCommand(a.newProjectCmd())
	root.AddCommand(a.newImportCmd())
	return root
}

// Execute runs the command line with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	a.logger = logging.New(logging.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: logging.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	logging.SetDefault(a.logger)
	a.cfg = cfg
	return nil
}
