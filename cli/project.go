package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/api"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
)

func (a *app) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print a day-by-day projection",
		Long: `Run a projection and print one row per day: every account, the credit card,
both voucher pools and the totals, followed by the start/end summary.

Inputs come from the database, or from a plan document with --plan.`,
		Example: `  cashflow project --days 30
  cashflow project --plan household.json --start 2025-03-01 --accounts 1,2 --events`,
		Args: cobra.NoArgs,
		RunE: a.runProject,
	}
	f := cmd.Flags()
	f.Int("days", 0, "Days to project, 1-365 (default CASHFLOW_DEFAULT_HORIZON)")
	f.String("start", "", "First projected day, YYYY-MM-DD (default today)")
	f.String("accounts", "", "Comma-separated account ids counted in totals (default all)")
	f.String("plan", "", "Read inputs from this plan document instead of the database")
	f.Bool("events", false, "Also print the posting log")
	f.Bool("json", false, "Print the projection as JSON")
	return cmd
}

// staticPlan serves a parsed plan document to the engine.
type staticPlan struct{ plan cashflow.Plan }

func (s staticPlan) LoadPlan(context.Context) (cashflow.Plan, error) { return s.plan, nil }

func (a *app) runProject(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	days, _ := f.GetInt("days")
	startStr, _ := f.GetString("start")
	accountsStr, _ := f.GetString("accounts")
	planPath, _ := f.GetString("plan")
	showEvents, _ := f.GetBool("events")
	asJSON, _ := f.GetBool("json")

	req := cashflow.ProjectionRequest{Horizon: days}
	if days == 0 {
		req.Horizon = a.cfg.DefaultHorizon
	}
	if startStr != "" {
		start, err := cashflow.ParseDate(startStr)
		if err != nil {
			return err
		}
		req.Start = start
	}
	if accountsStr != "" {
		ids, err := api.ParseAccountIDs(accountsStr)
		if err != nil {
			return err
		}
		req.Filter = ids
	}

	engine := &cashflow.ProjectionEngine{Contributions: a.cfg.Contributions()}
	if planPath != "" {
		plan, err := readPlan(planPath)
		if err != nil {
			return err
		}
		engine.Store = staticPlan{plan: plan}
	} else {
		store, err := openStore(a.cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		engine.Store = store
	}

	p, err := engine.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.ToProjectionDTO(p))
	}
	if err := printSnapshots(out, p); err != nil {
		return err
	}
	if showEvents {
		if err := printEvents(out, p.Events); err != nil {
			return err
		}
	}
	return printSummary(out, p.Summary)
}

func readPlan(path string) (cashflow.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cashflow.Plan{}, fmt.Errorf("read plan: %w", err)
	}
	return factory.NewPlanFactory().ParsePlan(data)
}

func printSnapshots(w io.Writer, p *cashflow.Projection) error {
	accounts := cashflow.SortAccounts(p.Plan.Accounts)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "DATE\t")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%s\t", acc.Name)
	}
	fmt.Fprint(tw, "CARD\t")
	for _, k := range cashflow.VoucherKinds {
		fmt.Fprintf(tw, "%s\t", k)
	}
	fmt.Fprintln(tw, "TOTAL\tVOUCHERS\t")

	for _, s := range p.Snapshots {
		fmt.Fprintf(tw, "%s\t", s.Date)
		for _, acc := range accounts {
			fmt.Fprintf(tw, "%s\t", money(s.AccountBalances[acc.ID]))
		}
		fmt.Fprintf(tw, "%s\t", money(s.CardBalance))
		for _, k := range cashflow.VoucherKinds {
			fmt.Fprintf(tw, "%s\t", money(s.VoucherBalances[k]))
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", money(s.TotalAccounts), money(s.TotalVouchers))
	}
	return tw.Flush()
}

func printEvents(w io.Writer, events []cashflow.LedgerEvent) error {
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT\tDESTINATION")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.Date, ev.Description, money(ev.Amount), ev.Destination)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s cashflow.Summary) error {
	_, err := fmt.Fprintf(w, "\nAccounts: %s -> %s (%s)\nVouchers: %s -> %s (%s)\n",
		money(s.TotalStart), money(s.TotalEnd), signed(s.Variation),
		money(s.VoucherStart), money(s.VoucherEnd), signed(s.VoucherVariation))
	return err
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
