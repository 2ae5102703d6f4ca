/*
Package cashflow provides the household cash-flow projection engine.

PURPOSE:
  This package contains the domain model and the algorithms that project a
  household's cash position day by day: account balances, one revolving
  credit card, two voucher pools and the rules that move money between them.
  Storage, HTTP and CLI layers live elsewhere and only hand plain records in.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: A cash account (CHECKING or POCKET) with a balance
  - CreditCard: A revolving liability settled into checking on its due day
  - SalaryRule / VoucherBalance: Recurring credits and benefit pools
  - LedgerEntry / Transfer: Range rules, posted on every day of their range
  - FutureEvent: One-shot movement resolved by target name
  - Plan: One point-in-time read of all of the above

DESIGN PRINCIPLES:
  1. Immutability: Inputs are values; the engine copies, never mutates
  2. Precision: Uses decimal.Decimal to avoid floating-point drift
  3. Determinism: Same Plan + Options gives the same snapshots and events
  4. Totality: Bad references degrade to the primary checking account

USAGE:
  result := cashflow.Project(plan, cashflow.Options{
      Horizon: 60,
      Today:   cashflow.Today(),
  })
  summary := cashflow.Summarize(result.Snapshots, nil)

SEE ALSO:
  - daterules.go: Salary, voucher and card calendar triggers
  - projection.go: The day-stepping engine
  - aggregate.go: Start/end/variation totals
*/
package cashflow

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountID int64

type AccountKind string

const (
	KindChecking AccountKind = "CHECKING"
	KindPocket   AccountKind = "POCKET"
)

type Account struct {
	ID      AccountID
	Name    string
	Kind    AccountKind
	Balance decimal.Decimal
}

// PrimaryChecking returns the CHECKING account with the lowest id, the default
// target of salary, card settlement and unresolved postings.
func PrimaryChecking(accounts []Account) (Account, bool) {
	var (
		primary Account
		found   bool
	)
	for _, a := range accounts {
		if a.Kind != KindChecking {
			continue
		}
		if !found || a.ID < primary.ID {
			primary, found = a, true
		}
	}
	return primary, found
}

// SortAccounts returns a copy of accounts ordered by id.
func SortAccounts(accounts []Account) []Account {
	sorted := make([]Account, len(accounts))
	copy(sorted, accounts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// =============================================================================
// CREDIT CARD & SALARY
// =============================================================================

// CreditCard is a running, usually negative, balance zeroed on the due day.
type CreditCard struct {
	ID         int64
	Name       string
	DueDay     int
	OpenAmount decimal.Decimal
}

// SalaryRule credits the primary checking account once per month.
type SalaryRule struct {
	Amount decimal.Decimal
	PayDay int
}

// =============================================================================
// VOUCHERS - Non-cash benefit pools
// =============================================================================

type VoucherKind string

const (
	VoucherMeal VoucherKind = "MEAL"
	VoucherFood VoucherKind = "FOOD"
)

// VoucherKinds is the fixed processing order of voucher pools.
var VoucherKinds = []VoucherKind{VoucherMeal, VoucherFood}

// Reserved future-event targets.
const (
	TargetCreditCard  = "credit_card"
	TargetMealVoucher = "vale_refeicao"
	TargetFoodVoucher = "vale_alimentacao"
)

// Token returns the reserved target string naming this pool.
func (k VoucherKind) Token() string {
	switch k {
	case VoucherMeal:
		return TargetMealVoucher
	case VoucherFood:
		return TargetFoodVoucher
	}
	return string(k)
}

// ParseVoucherKind accepts the kind name or its reserved token.
func ParseVoucherKind(s string) (VoucherKind, error) {
	switch s {
	case string(VoucherMeal), TargetMealVoucher:
		return VoucherMeal, nil
	case string(VoucherFood), TargetFoodVoucher:
		return VoucherFood, nil
	}
	return "", &PlanError{Field: "voucher kind", Value: s, Err: ErrUnknownVoucherKind}
}

type VoucherBalance struct {
	Kind    VoucherKind
	Balance decimal.Decimal
}

// VoucherContributions is the fixed employer credit per pool, applied on the
// voucher credit day of every month. Kinds without a contribution are not credited.
type VoucherContributions map[VoucherKind]decimal.Decimal

// DefaultContributions returns the stock meal and food contributions.
func DefaultContributions() VoucherContributions {
	return VoucherContributions{
		VoucherMeal: decimal.RequireFromString("1236.40"),
		VoucherFood: decimal.RequireFromString("974.16"),
	}
}

// =============================================================================
// RANGE RULES - Ledger entries and transfers
// =============================================================================

type Destination string

const (
	DestAccount     Destination = "ACCOUNT"
	DestCard        Destination = "CARD"
	DestMealVoucher Destination = "MEAL_VOUCHER"
	DestFoodVoucher Destination = "FOOD_VOUCHER"
)

// VoucherKind maps a voucher destination to its pool.
func (d Destination) VoucherKind() (VoucherKind, bool) {
	switch d {
	case DestMealVoucher:
		return VoucherMeal, true
	case DestFoodVoucher:
		return VoucherFood, true
	}
	return "", false
}

// LedgerEntry posts Amount to its destination on every day of [StartDate, EndDate].
type LedgerEntry struct {
	ID          int64
	Description string
	Amount      decimal.Decimal // signed: negative is a debit
	StartDate   Date
	EndDate     *Date // nil = StartDate
	Destination Destination
	AccountID   *AccountID // ACCOUNT only; nil = primary checking
}

func (e LedgerEntry) Range() DateRange { return NewDateRange(e.StartDate, e.EndDate) }

// Transfer moves Amount between two accounts on every day of its range.
type Transfer struct {
	ID            int64
	Description   string
	Amount        decimal.Decimal
	StartDate     Date
	EndDate       *Date
	FromAccountID AccountID
	ToAccountID   AccountID
}

func (t Transfer) Range() DateRange { return NewDateRange(t.StartDate, t.EndDate) }

// FutureEvent is a one-shot posting of Amount to Target, matched against the
// reserved tokens first, then account names. Source only describes where the
// money comes from and never moves a balance.
type FutureEvent struct {
	ID          int64
	Date        Date
	Description string
	Amount      decimal.Decimal
	Target      string
	Source      string // optional
}

// =============================================================================
// PLAN - One coherent read of every projection input
// =============================================================================

type Plan struct {
	Accounts  []Account
	Card      *CreditCard
	Salary    *SalaryRule
	Vouchers  []VoucherBalance
	Entries   []LedgerEntry
	Transfers []Transfer
	Events    []FutureEvent
}

// =============================================================================
// OUTPUT
// =============================================================================

// DailySnapshot is the state after all effects of one day.
type DailySnapshot struct {
	Date            Date
	AccountBalances map[AccountID]decimal.Decimal
	VoucherBalances map[VoucherKind]decimal.Decimal
	CardBalance     decimal.Decimal
	TotalAccounts   decimal.Decimal
	TotalVouchers   decimal.Decimal
}

// LedgerEvent is one posting in the audit log.
type LedgerEvent struct {
	Date        Date
	Description string
	Amount      decimal.Decimal
	Destination string
}
