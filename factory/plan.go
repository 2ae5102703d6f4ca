/*
Package factory provides JSON to Go plan conversion.

PURPOSE:
  Converts JSON plan documents into cashflow.Plan values and back, and
  imports a plan into a cashflow.Store. A household can be described in a
  single file, versioned, shared, and projected from the CLI without a
  database.

JSON SCHEMA:
  {
    "accounts": [
      {"id": 1, "name": "Checking", "kind": "CHECKING", "balance": "2500.00"},
      {"id": 2, "name": "Savings", "kind": "POCKET", "balance": 8000}
    ],
    "credit_card": {"name": "Visa", "due_day": 10, "open_amount": "-1350.75"},
    "salary": {"amount": "6200", "pay_day": 5},
    "vouchers": [{"kind": "MEAL", "balance": "300"}],
    "entries": [
      {"description": "Rent", "amount": "-1800", "start_date": "2025-03-06",
       "destination": "ACCOUNT", "account_id": 1},
      {"description": "Lunch", "amount": "-35", "start_date": "2025-03-03",
       "end_date": "2025-03-07", "destination": "MEAL_VOUCHER"}
    ],
    "transfers": [
      {"description": "Save", "amount": "200", "start_date": "2025-03-01",
       "from_account_id": 1, "to_account_id": 2}
    ],
    "events": [
      {"date": "2025-04-15", "description": "Tax refund", "amount": "900",
       "target": "Savings", "source": ""}
    ]
  }

  Amounts accept decimal strings or JSON numbers; output always uses
  strings. Dates are YYYY-MM-DD. Accounts without an id get one after the
  highest explicit id, in document order.

KEY FEATURES:
  - Every parse error names its field: entries[2].start_date "2025-02-30"
  - Unknown kinds and destinations are rejected, not defaulted
  - ImportPlan remaps document account ids onto the ids the store assigns

USAGE:
  factory := NewPlanFactory()

  plan, err := factory.ParsePlan(data)
  result := cashflow.Project(plan, cashflow.Options{Horizon: 90, Today: today})

  // Or persist it
  summary, err := ImportPlan(ctx, store, plan)

SEE ALSO:
  - cashflow/types.go: Plan type definition
  - api/scenarios.go: Demo households built from plan documents
*/
package factory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a household plan.
type PlanJSON struct {
	Accounts  []AccountJSON  `json:"accounts"`
	Card      *CardJSON      `json:"credit_card,omitempty"`
	Salary    *SalaryJSON    `json:"salary,omitempty"`
	Vouchers  []VoucherJSON  `json:"vouchers,omitempty"`
	Entries   []EntryJSON    `json:"entries,omitempty"`
	Transfers []TransferJSON `json:"transfers,omitempty"`
	Events    []EventJSON    `json:"events,omitempty"`
}

type AccountJSON struct {
	ID      int64           `json:"id,omitempty"`
	Name    string          `json:"name"`
	Kind    string          `json:"kind"` // CHECKING, POCKET
	Balance decimal.Decimal `json:"balance"`
}

type CardJSON struct {
	Name       string          `json:"name,omitempty"`
	DueDay     int             `json:"due_day"`
	OpenAmount decimal.Decimal `json:"open_amount"`
}

type SalaryJSON struct {
	Amount decimal.Decimal `json:"amount"`
	PayDay int             `json:"pay_day"`
}

type VoucherJSON struct {
	Kind    string          `json:"kind"` // MEAL, FOOD or their target tokens
	Balance decimal.Decimal `json:"balance"`
}

type EntryJSON struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date,omitempty"`
	Destination string          `json:"destination"` // ACCOUNT, CARD, MEAL_VOUCHER, FOOD_VOUCHER
	AccountID   *int64          `json:"account_id,omitempty"`
}

type TransferJSON struct {
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date,omitempty"`
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
}

type EventJSON struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Target      string          `json:"target"`
	Source      string          `json:"source,omitempty"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts JSON plan documents to cashflow.Plan.
type PlanFactory struct{}

// NewPlanFactory creates a new plan factory.
func NewPlanFactory() *PlanFactory {
	return &PlanFactory{}
}

// ParsePlan parses a JSON document into a Plan.
func (f *PlanFactory) ParsePlan(data []byte) (cashflow.Plan, error) {
	var pj PlanJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return cashflow.Plan{}, fmt.Errorf("%w: %v", cashflow.ErrInvalidPlan, err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PlanJSON to cashflow.Plan.
func (f *PlanFactory) FromJSON(pj PlanJSON) (cashflow.Plan, error) {
	var plan cashflow.Plan

	// Accounts: explicit ids first, then fill the gaps after the highest one.
	var maxID int64
	for _, aj := range pj.Accounts {
		if aj.ID > maxID {
			maxID = aj.ID
		}
	}
	seen := make(map[int64]bool, len(pj.Accounts))
	for i, aj := range pj.Accounts {
		a, err := parseAccount(fmt.Sprintf("accounts[%d]", i), aj)
		if err != nil {
			return cashflow.Plan{}, err
		}
		if a.ID == 0 {
			maxID++
			a.ID = cashflow.AccountID(maxID)
		}
		if seen[int64(a.ID)] {
			return cashflow.Plan{}, fieldError(fmt.Sprintf("accounts[%d].id", i), fmt.Sprint(a.ID), fmt.Errorf("%w: duplicate account id", cashflow.ErrInvalidPlan))
		}
		seen[int64(a.ID)] = true
		plan.Accounts = append(plan.Accounts, a)
	}

	if pj.Card != nil {
		plan.Card = &cashflow.CreditCard{Name: pj.Card.Name, DueDay: pj.Card.DueDay, OpenAmount: pj.Card.OpenAmount}
	}
	if pj.Salary != nil {
		plan.Salary = &cashflow.SalaryRule{Amount: pj.Salary.Amount, PayDay: pj.Salary.PayDay}
	}

	for i, vj := range pj.Vouchers {
		v, err := parseVoucher(fmt.Sprintf("vouchers[%d]", i), vj)
		if err != nil {
			return cashflow.Plan{}, err
		}
		plan.Vouchers = append(plan.Vouchers, v)
	}

	for i, ej := range pj.Entries {
		e, err := parseEntry(fmt.Sprintf("entries[%d]", i), ej)
		if err != nil {
			return cashflow.Plan{}, err
		}
		e.ID = int64(i + 1)
		plan.Entries = append(plan.Entries, e)
	}

	for i, tj := range pj.Transfers {
		t, err := parseTransfer(fmt.Sprintf("transfers[%d]", i), tj)
		if err != nil {
			return cashflow.Plan{}, err
		}
		t.ID = int64(i + 1)
		plan.Transfers = append(plan.Transfers, t)
	}

	for i, ej := range pj.Events {
		ev, err := parseEvent(fmt.Sprintf("events[%d]", i), ej)
		if err != nil {
			return cashflow.Plan{}, err
		}
		ev.ID = int64(i + 1)
		plan.Events = append(plan.Events, ev)
	}

	return plan, nil
}

// ToJSON converts a Plan to PlanJSON.
func (f *PlanFactory) ToJSON(plan cashflow.Plan) PlanJSON {
	var pj PlanJSON

	for _, a := range plan.Accounts {
		pj.Accounts = append(pj.Accounts, AccountJSON{
			ID: int64(a.ID), Name: a.Name, Kind: string(a.Kind), Balance: a.Balance,
		})
	}
	if plan.Card != nil {
		pj.Card = &CardJSON{Name: plan.Card.Name, DueDay: plan.Card.DueDay, OpenAmount: plan.Card.OpenAmount}
	}
	if plan.Salary != nil {
		pj.Salary = &SalaryJSON{Amount: plan.Salary.Amount, PayDay: plan.Salary.PayDay}
	}
	for _, v := range plan.Vouchers {
		pj.Vouchers = append(pj.Vouchers, VoucherJSON{Kind: string(v.Kind), Balance: v.Balance})
	}

	for _, e := range plan.Entries {
		ej := EntryJSON{
			Description: e.Description,
			Amount:      e.Amount,
			StartDate:   e.StartDate.String(),
			Destination: string(e.Destination),
		}
		if e.EndDate != nil {
			ej.EndDate = e.EndDate.String()
		}
		if e.AccountID != nil {
			id := int64(*e.AccountID)
			ej.AccountID = &id
		}
		pj.Entries = append(pj.Entries, ej)
	}

	for _, t := range plan.Transfers {
		tj := TransferJSON{
			Description:   t.Description,
			Amount:        t.Amount,
			StartDate:     t.StartDate.String(),
			FromAccountID: int64(t.FromAccountID),
			ToAccountID:   int64(t.ToAccountID),
		}
		if t.EndDate != nil {
			tj.EndDate = t.EndDate.String()
		}
		pj.Transfers = append(pj.Transfers, tj)
	}

	for _, ev := range plan.Events {
		pj.Events = append(pj.Events, EventJSON{
			Date:        ev.Date.String(),
			Description: ev.Description,
			Amount:      ev.Amount,
			Target:      ev.Target,
			Source:      ev.Source,
		})
	}

	return pj
}

// MarshalPlan renders a Plan as an indented JSON document.
func (f *PlanFactory) MarshalPlan(plan cashflow.Plan) ([]byte, error) {
	return json.MarshalIndent(f.ToJSON(plan), "", "  ")
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportSummary counts the records written by ImportPlan.
type ImportSummary struct {
	Accounts  int
	Entries   int
	Transfers int
	Events    int
}

// ImportPlan writes plan into store. Accounts get fresh ids; entry and
// transfer references are rewritten to match. References to accounts not in
// the plan are kept as-is so the engine's fallback still applies.
func ImportPlan(ctx context.Context, store cashflow.Store, plan cashflow.Plan) (*ImportSummary, error) {
	summary := &ImportSummary{}
	ids := make(map[cashflow.AccountID]cashflow.AccountID, len(plan.Accounts))

	for _, a := range plan.Accounts {
		oldID := a.ID
		a.ID = 0
		saved, err := store.SaveAccount(ctx, a)
		if err != nil {
			return summary, fmt.Errorf("failed to import account %q: %w", a.Name, err)
		}
		ids[oldID] = saved.ID
		summary.Accounts++
	}
	remap := func(id cashflow.AccountID) cashflow.AccountID {
		if newID, ok := ids[id]; ok {
			return newID
		}
		return id
	}

	if plan.Card != nil {
		if _, err := store.SaveCard(ctx, *plan.Card); err != nil {
			return summary, fmt.Errorf("failed to import card: %w", err)
		}
	}
	if plan.Salary != nil {
		if err := store.SaveSalary(ctx, *plan.Salary); err != nil {
			return summary, fmt.Errorf("failed to import salary: %w", err)
		}
	}
	if err := store.EnsureDefaults(ctx); err != nil {
		return summary, err
	}
	for _, v := range plan.Vouchers {
		if err := store.SaveVoucher(ctx, v); err != nil {
			return summary, fmt.Errorf("failed to import voucher %s: %w", v.Kind, err)
		}
	}

	for _, e := range plan.Entries {
		e.ID = 0
		if e.AccountID != nil {
			id := remap(*e.AccountID)
			e.AccountID = &id
		}
		if _, err := store.SaveEntry(ctx, e); err != nil {
			return summary, fmt.Errorf("failed to import entry %q: %w", e.Description, err)
		}
		summary.Entries++
	}

	for _, t := range plan.Transfers {
		t.ID = 0
		t.FromAccountID = remap(t.FromAccountID)
		t.ToAccountID = remap(t.ToAccountID)
		if _, err := store.SaveTransfer(ctx, t); err != nil {
			return summary, fmt.Errorf("failed to import transfer %q: %w", t.Description, err)
		}
		summary.Transfers++
	}

	for _, ev := range plan.Events {
		ev.ID = 0
		if _, err := store.SaveEvent(ctx, ev); err != nil {
			return summary, fmt.Errorf("failed to import event %q: %w", ev.Description, err)
		}
		summary.Events++
	}

	return summary, nil
}

// ReplacePlan swaps the store's contents for plan. The store has no
// transactions, so the current contents are read first and written back if
// the reset or the import fails; restored records get fresh ids.
func ReplacePlan(ctx context.Context, store cashflow.Store, plan cashflow.Plan) (*ImportSummary, error) {
	backup, err := store.LoadPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current plan: %w", err)
	}

	summary, err := resetAndImport(ctx, store, plan)
	if err == nil {
		return summary, nil
	}
	if _, restoreErr := resetAndImport(ctx, store, backup); restoreErr != nil {
		return nil, errors.Join(err, fmt.Errorf("failed to restore previous plan: %w", restoreErr))
	}
	return nil, err
}

func resetAndImport(ctx context.Context, store cashflow.Store, plan cashflow.Plan) (*ImportSummary, error) {
	if err := store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset store: %w", err)
	}
	return ImportPlan(ctx, store, plan)
}

// =============================================================================
// SINGLE RECORDS - Used by the API for create and update bodies
// =============================================================================

// ParseAccount converts one account record. The ID is kept as given.
func (f *PlanFactory) ParseAccount(aj AccountJSON) (cashflow.Account, error) {
	return parseAccount("", aj)
}

// ParseVoucher converts one voucher pool record.
func (f *PlanFactory) ParseVoucher(vj VoucherJSON) (cashflow.VoucherBalance, error) {
	return parseVoucher("", vj)
}

// ParseEntry converts one ledger entry. The returned ID is zero.
func (f *PlanFactory) ParseEntry(ej EntryJSON) (cashflow.LedgerEntry, error) {
	return parseEntry("", ej)
}

// ParseTransfer converts one transfer. The returned ID is zero.
func (f *PlanFactory) ParseTransfer(tj TransferJSON) (cashflow.Transfer, error) {
	return parseTransfer("", tj)
}

// ParseEvent converts one future event. The returned ID is zero.
func (f *PlanFactory) ParseEvent(ej EventJSON) (cashflow.FutureEvent, error) {
	return parseEvent("", ej)
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseAccountKind(s string) (cashflow.AccountKind, error) {
	switch cashflow.AccountKind(s) {
	case cashflow.KindChecking:
		return cashflow.KindChecking, nil
	case cashflow.KindPocket:
		return cashflow.KindPocket, nil
	}
	return "", fmt.Errorf("%w: unknown account kind", cashflow.ErrInvalidPlan)
}

func parseDestination(s string) (cashflow.Destination, error) {
	switch d := cashflow.Destination(s); d {
	case cashflow.DestAccount, cashflow.DestCard, cashflow.DestMealVoucher, cashflow.DestFoodVoucher:
		return d, nil
	case "":
		return cashflow.DestAccount, nil
	}
	return "", fmt.Errorf("%w: unknown destination", cashflow.ErrInvalidPlan)
}

func parseAccount(prefix string, aj AccountJSON) (cashflow.Account, error) {
	if aj.Name == "" {
		return cashflow.Account{}, fieldError(field(prefix, "name"), aj.Name, fmt.Errorf("%w: name is required", cashflow.ErrInvalidPlan))
	}
	kind, err := parseAccountKind(aj.Kind)
	if err != nil {
		return cashflow.Account{}, fieldError(field(prefix, "kind"), aj.Kind, err)
	}
	return cashflow.Account{
		ID:      cashflow.AccountID(aj.ID),
		Name:    aj.Name,
		Kind:    kind,
		Balance: aj.Balance,
	}, nil
}

func parseVoucher(prefix string, vj VoucherJSON) (cashflow.VoucherBalance, error) {
	kind, err := cashflow.ParseVoucherKind(vj.Kind)
	if err != nil {
		return cashflow.VoucherBalance{}, fieldError(field(prefix, "kind"), vj.Kind, cashflow.ErrUnknownVoucherKind)
	}
	return cashflow.VoucherBalance{Kind: kind, Balance: vj.Balance}, nil
}

func parseEntry(prefix string, ej EntryJSON) (cashflow.LedgerEntry, error) {
	dest, err := parseDestination(ej.Destination)
	if err != nil {
		return cashflow.LedgerEntry{}, fieldError(field(prefix, "destination"), ej.Destination, err)
	}
	start, end, err := parseRange(prefix, ej.StartDate, ej.EndDate)
	if err != nil {
		return cashflow.LedgerEntry{}, err
	}

	e := cashflow.LedgerEntry{
		Description: ej.Description,
		Amount:      ej.Amount,
		StartDate:   start,
		EndDate:     end,
		Destination: dest,
	}
	if ej.AccountID != nil && dest == cashflow.DestAccount {
		id := cashflow.AccountID(*ej.AccountID)
		e.AccountID = &id
	}
	return e, nil
}

func parseTransfer(prefix string, tj TransferJSON) (cashflow.Transfer, error) {
	start, end, err := parseRange(prefix, tj.StartDate, tj.EndDate)
	if err != nil {
		return cashflow.Transfer{}, err
	}
	return cashflow.Transfer{
		Description:   tj.Description,
		Amount:        tj.Amount,
		StartDate:     start,
		EndDate:       end,
		FromAccountID: cashflow.AccountID(tj.FromAccountID),
		ToAccountID:   cashflow.AccountID(tj.ToAccountID),
	}, nil
}

func parseEvent(prefix string, ej EventJSON) (cashflow.FutureEvent, error) {
	date, err := cashflow.ParseDate(ej.Date)
	if err != nil {
		return cashflow.FutureEvent{}, fieldError(field(prefix, "date"), ej.Date, err)
	}
	return cashflow.FutureEvent{
		Date:        date,
		Description: ej.Description,
		Amount:      ej.Amount,
		Target:      ej.Target,
		Source:      ej.Source,
	}, nil
}

// parseRange parses a required start date and an optional end date.
func parseRange(prefix, startStr, endStr string) (cashflow.Date, *cashflow.Date, error) {
	start, err := cashflow.ParseDate(startStr)
	if err != nil {
		return cashflow.Date{}, nil, fieldError(field(prefix, "start_date"), startStr, err)
	}
	if endStr == "" {
		return start, nil, nil
	}
	end, err := cashflow.ParseDate(endStr)
	if err != nil {
		return cashflow.Date{}, nil, fieldError(field(prefix, "end_date"), endStr, err)
	}
	return start, &end, nil
}

func fieldError(field, value string, err error) error {
	return &cashflow.PlanError{Field: field, Value: value, Err: err}
}

// field joins a record prefix such as "entries[2]" with a field name.
func field(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
