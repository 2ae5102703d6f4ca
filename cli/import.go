package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/factory"
)

func (a *app) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a plan document into the database",
		Long: `Parse a JSON plan document and write its records to the database.
Accounts receive new ids; entries and transfers are re-pointed to them.
With --replace every existing record is removed first, and restored if the
import fails.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runImport,
	}
	cmd.Flags().Bool("replace", false, "Remove every existing record before importing")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	replace, _ := cmd.Flags().GetBool("replace")
	ctx := cmd.Context()

	plan, err := readPlan(args[0])
	if err != nil {
		return err
	}

	store, err := openStore(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	importPlan := factory.ImportPlan
	if replace {
		importPlan = factory.ReplacePlan
	}
	summary, err := importPlan(ctx, store, plan)
	if err != nil {
		return err
	}

	a.logger.Info("plan imported", "file", args[0], "db", a.cfg.DBPath, "replace", replace)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts, %d entries, %d transfers, %d events\n",
		summary.Accounts, summary.Entries, summary.Transfers, summary.Events)
	return nil
}
