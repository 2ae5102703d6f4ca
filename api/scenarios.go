/*
scenarios.go - Demo households for testing and demonstrations

PURPOSE:

	Provides pre-built households that populate the store with realistic
	data for demos. Dates are laid out relative to the day the scenario is
	loaded, so every scenario shows salary, card and voucher activity in a
	default 60-day projection.

AVAILABLE SCENARIOS:

	single-checking:   One checking account, salary, rent and daily spending
	card-and-vouchers: Checking + savings, credit card, both voucher pools
	stress:            Many accounts and overlapping rules for a 365-day run

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Build a plan document
 3. Import it through factory.ImportPlan

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "card-and-vouchers"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create a builder: xxxScenario(today) factory.PlanJSON
 3. Register it in scenarioBuilders

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: reset, invalidate
  - factory/plan.go: Plan document types and ImportPlan
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/logging"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-checking",
		Name:        "Single Checking",
		Description: "One checking account with salary, rent and daily spending",
	},
	{
		ID:          "card-and-vouchers",
		Name:        "Card and Vouchers",
		Description: "Checking and savings, a credit card settled monthly, meal and food vouchers",
	},
	{
		ID:          "stress",
		Name:        "Stress",
		Description: "Eight accounts with dozens of overlapping entries, transfers and events",
	},
}

var scenarioBuilders = map[string]func(today cashflow.Date) factory.PlanJSON{
	"single-checking":   singleCheckingScenario,
	"card-and-vouchers": cardAndVouchersScenario,
	"stress":            stressScenario,
}

// Scenarios lists the built-in demo households.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	copy(out, scenarios)
	return out
}

// SeedScenario resets store and loads the named scenario with dates laid out
// from today.
func SeedScenario(ctx context.Context, store cashflow.Store, id string, today cashflow.Date) (*factory.ImportSummary, error) {
	build, ok := scenarioBuilders[id]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", id)
	}
	plan, err := factory.NewPlanFactory().FromJSON(build(today))
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario %s: %w", id, err)
	}
	return factory.ReplacePlan(ctx, store, plan)
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns all available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario replaces the store's content with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if _, ok := scenarioBuilders[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	today := cashflow.Today()
	if h.Engine != nil && h.Engine.Clock != nil {
		today = h.Engine.Clock()
	}

	summary, err := SeedScenario(r.Context(), h.Store, req.ScenarioID, today)
	h.invalidate()
	if err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setScenario(req.ScenarioID)

	logging.FromContext(r.Context()).Info("scenario loaded",
		logging.FieldScenario, req.ScenarioID,
		"accounts", summary.Accounts,
		"entries", summary.Entries)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"imported": ImportResponse{
			Accounts:  summary.Accounts,
			Entries:   summary.Entries,
			Transfers: summary.Transfers,
			Events:    summary.Events,
		},
	})
}

// ResetDatabase clears every record and recreates the empty voucher pools.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(today cashflow.Date, offset int) string { return today.AddDays(offset).String() }

// singleCheckingScenario: salary on the 5th, rent a few days in, coffee every
// day for three weeks and a tax refund near the end of the window.
func singleCheckingScenario(today cashflow.Date) factory.PlanJSON {
	checking := int64(1)
	return factory.PlanJSON{
		Accounts: []factory.AccountJSON{
			{ID: checking, Name: "Checking", Kind: string(cashflow.KindChecking), Balance: amount("3200.00")},
		},
		Salary: &factory.SalaryJSON{Amount: amount("5400.00"), PayDay: 5},
		Entries: []factory.EntryJSON{
			{Description: "Rent", Amount: amount("-1650.00"), StartDate: day(today, 3), Destination: string(cashflow.DestAccount), AccountID: &checking},
			{Description: "Coffee", Amount: amount("-12.50"), StartDate: day(today, 0), EndDate: day(today, 20), Destination: string(cashflow.DestAccount)},
			{Description: "Electricity", Amount: amount("-210.35"), StartDate: day(today, 12), Destination: string(cashflow.DestAccount)},
		},
		Events: []factory.EventJSON{
			{Date: day(today, 25), Description: "Tax refund", Amount: amount("780.00"), Target: "Checking"},
		},
	}
}

// cardAndVouchersScenario exercises every posting path: card purchases and
// settlement, voucher spending and credits, a savings transfer and events
// aimed at reserved targets.
func cardAndVouchersScenario(today cashflow.Date) factory.PlanJSON {
	checking, savings := int64(1), int64(2)
	return factory.PlanJSON{
		Accounts: []factory.AccountJSON{
			{ID: checking, Name: "Checking", Kind: string(cashflow.KindChecking), Balance: amount("2100.00")},
			{ID: savings, Name: "Savings", Kind: string(cashflow.KindPocket), Balance: amount("6000.00")},
		},
		Card:   &factory.CardJSON{Name: "Visa", DueDay: 10, OpenAmount: amount("-1240.55")},
		Salary: &factory.SalaryJSON{Amount: amount("6800.00"), PayDay: 5},
		Vouchers: []factory.VoucherJSON{
			{Kind: string(cashflow.VoucherMeal), Balance: amount("420.00")},
			{Kind: string(cashflow.VoucherFood), Balance: amount("310.00")},
		},
		Entries: []factory.EntryJSON{
			{Description: "Lunch", Amount: amount("-38.00"), StartDate: day(today, 0), EndDate: day(today, 29), Destination: string(cashflow.DestMealVoucher)},
			{Description: "Supermarket", Amount: amount("-450.00"), StartDate: day(today, 6), Destination: string(cashflow.DestFoodVoucher)},
			{Description: "Streaming", Amount: amount("-55.90"), StartDate: day(today, 2), Destination: string(cashflow.DestCard)},
			{Description: "Fuel", Amount: amount("-40.00"), StartDate: day(today, 1), EndDate: day(today, 40), Destination: string(cashflow.DestCard)},
			{Description: "Pharmacy", Amount: amount("-86.20"), StartDate: day(today, 9), Destination: string(cashflow.DestAccount), AccountID: &checking},
		},
		Transfers: []factory.TransferJSON{
			{Description: "Monthly saving", Amount: amount("500.00"), StartDate: day(today, 6), FromAccountID: checking, ToAccountID: savings},
		},
		Events: []factory.EventJSON{
			{Date: day(today, 15), Description: "Annual insurance", Amount: amount("-1320.00"), Target: cashflow.TargetCreditCard},
			{Date: day(today, 18), Description: "Bonus", Amount: amount("2500.00"), Target: "Savings"},
			{Date: day(today, 22), Description: "Groceries top-up", Amount: amount("200.00"), Target: cashflow.TargetFoodVoucher, Source: "Checking"},
		},
	}
}

// stressScenario generates a large, deterministic household.
func stressScenario(today cashflow.Date) factory.PlanJSON {
	plan := factory.PlanJSON{
		Card:   &factory.CardJSON{Name: "Platinum", DueDay: 31, OpenAmount: amount("-3900.00")},
		Salary: &factory.SalaryJSON{Amount: amount("12500.00"), PayDay: 30},
		Vouchers: []factory.VoucherJSON{
			{Kind: string(cashflow.VoucherMeal), Balance: amount("0")},
			{Kind: string(cashflow.VoucherFood), Balance: amount("0")},
		},
	}

	const accounts = 8
	for i := 1; i <= accounts; i++ {
		kind := cashflow.KindPocket
		if i <= 2 {
			kind = cashflow.KindChecking
		}
		plan.Accounts = append(plan.Accounts, factory.AccountJSON{
			ID:      int64(i),
			Name:    fmt.Sprintf("Account %d", i),
			Kind:    string(kind),
			Balance: decimal.NewFromInt(int64(1000 * i)),
		})
	}

	destinations := []cashflow.Destination{cashflow.DestAccount, cashflow.DestCard, cashflow.DestMealVoucher, cashflow.DestFoodVoucher}
	for i := 0; i < 48; i++ {
		dest := destinations[i%len(destinations)]
		e := factory.EntryJSON{
			Description: fmt.Sprintf("Expense %02d", i+1),
			Amount:      decimal.New(-int64(500+(i%17)*100+i), -2),
			StartDate:   day(today, (i*7)%300),
			EndDate:     day(today, (i*7)%300+i%30),
			Destination: string(dest),
		}
		if dest == cashflow.DestAccount {
			id := int64(i%accounts + 1)
			e.AccountID = &id
		}
		plan.Entries = append(plan.Entries, e)
	}

	for i := 0; i < 12; i++ {
		from := int64(i%accounts + 1)
		to := int64((i+3)%accounts + 1)
		plan.Transfers = append(plan.Transfers, factory.TransferJSON{
			Description:   fmt.Sprintf("Sweep %02d", i+1),
			Amount:        decimal.NewFromInt(int64(25 * (i + 1))),
			StartDate:     day(today, i*30),
			EndDate:       day(today, i*30+4),
			FromAccountID: from,
			ToAccountID:   to,
		})
	}

	targets := []string{"Account 3", cashflow.TargetCreditCard, cashflow.TargetMealVoucher, "Account 7", "nobody"}
	for i := 0; i < 24; i++ {
		plan.Events = append(plan.Events, factory.EventJSON{
			Date:        day(today, 11+i*14),
			Description: fmt.Sprintf("One-off %02d", i+1),
			Amount:      decimal.NewFromInt(int64((i%2)*2-1) * int64(100+i*10)),
			Target:      targets[i%len(targets)],
		})
	}

	return plan
}
