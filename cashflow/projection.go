/*
projection.go - Day-by-day cash projection

PURPOSE:
  Folds a Plan into one DailySnapshot per simulated day plus a flat event log.
  This is the single place where date ranges are expanded: entries and
  transfers are stored once and resolved lazily here.

DAILY STEP ORDER (fixed, several rules may touch the same pool on one day):
  1. Salary          - credit primary checking on the resolved payday
  2. Voucher credits - MEAL then FOOD, on the second-to-last business day
  3. Card settlement - move a non-zero card balance into primary checking
  4. Ledger entries  - every entry whose range contains the day, input order
  5. Transfers       - every transfer whose range contains the day, input order
  6. Future events   - every event dated that day, input order

  After the six steps the day's totals are computed and the snapshot appended.

TOTALITY:
  Project never fails. Unknown account ids and unmatched targets fall back to
  the primary checking account. Without a primary checking account the salary,
  voucher and card rules are skipped and fallback postings are dropped; a
  snapshot is still produced for every day.

EXAMPLE:
  result := cashflow.Project(plan, cashflow.Options{Horizon: 30, Today: today})
  for _, s := range result.Snapshots {
      fmt.Println(s.Date, s.TotalAccounts)
  }

SEE ALSO:
  - daterules.go: Calendar triggers
  - aggregate.go: Summaries over the snapshot sequence
*/
package cashflow

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// OPTIONS
// =============================================================================

// MaxHorizon bounds the number of simulated days.
const MaxHorizon = 365

// ClampHorizon pins a requested horizon into [1, MaxHorizon].
func ClampHorizon(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxHorizon {
		return MaxHorizon
	}
	return days
}

type Options struct {
	// Number of days to simulate, clamped to [1, MaxHorizon].
	Horizon int

	// First simulated day.
	Today Date

	// Accounts counted in TotalAccounts. Empty = all accounts.
	Filter []AccountID

	// Voucher credit per pool. Nil uses DefaultContributions.
	Contributions VoucherContributions
}

type Result struct {
	Snapshots []DailySnapshot
	Events    []LedgerEvent
}

// =============================================================================
// ENGINE
// =============================================================================

// Project runs the simulation. It reads plan and never modifies it.
func Project(plan Plan, opts Options) Result {
	horizon := ClampHorizon(opts.Horizon)
	contributions := opts.Contributions
	if contributions == nil {
		contributions = DefaultContributions()
	}
	filter := newAccountFilter(opts.Filter)

	st := newLedgerState(plan)
	snapshots := make([]DailySnapshot, 0, horizon)

	for i := 0; i < horizon; i++ {
		day := opts.Today.AddDays(i)

		st.applySalary(day, plan.Salary)
		st.applyVoucherCredits(day, contributions)
		st.applyCardSettlement(day, plan.Card)
		for _, e := range plan.Entries {
			if e.Range().Contains(day) {
				st.applyEntry(day, e)
			}
		}
		for _, t := range plan.Transfers {
			if t.Range().Contains(day) {
				st.applyTransfer(day, t)
			}
		}
		for _, ev := range plan.Events {
			if ev.Date.Equal(day) {
				st.applyEvent(day, ev)
			}
		}

		snapshots = append(snapshots, st.snapshot(day, filter))
	}

	return Result{Snapshots: snapshots, Events: st.events}
}

// =============================================================================
// LEDGER STATE - Mutable accumulator local to one Project call
// =============================================================================

type poolKind int

const (
	poolAccount poolKind = iota
	poolCard
	poolVoucher
)

// pool is one resolved posting target.
type pool struct {
	kind    poolKind
	account AccountID
	voucher VoucherKind
}

type ledgerState struct {
	accounts []Account // sorted by id; names and kinds only
	known    map[AccountID]string
	primary  *Account

	balances  map[AccountID]decimal.Decimal
	vouchers  map[VoucherKind]decimal.Decimal
	card      decimal.Decimal
	cardLabel string

	events []LedgerEvent
}

func newLedgerState(plan Plan) *ledgerState {
	st := &ledgerState{
		accounts:  SortAccounts(plan.Accounts),
		known:     make(map[AccountID]string, len(plan.Accounts)),
		balances:  make(map[AccountID]decimal.Decimal, len(plan.Accounts)),
		vouchers:  make(map[VoucherKind]decimal.Decimal, len(VoucherKinds)),
		cardLabel: TargetCreditCard,
	}
	for _, a := range st.accounts {
		if _, dup := st.known[a.ID]; dup {
			continue
		}
		st.known[a.ID] = a.Name
		st.balances[a.ID] = a.Balance
	}
	if primary, ok := PrimaryChecking(st.accounts); ok {
		st.primary = &primary
	}
	for _, k := range VoucherKinds {
		st.vouchers[k] = decimal.Zero
	}
	for _, v := range plan.Vouchers {
		st.vouchers[v.Kind] = v.Balance
	}
	if plan.Card != nil {
		st.card = plan.Card.OpenAmount
		if plan.Card.Name != "" {
			st.cardLabel = plan.Card.Name
		}
	}
	return st
}

func (st *ledgerState) applySalary(day Date, salary *SalaryRule) {
	if salary == nil || st.primary == nil {
		return
	}
	if !day.Equal(ResolveSalaryDay(day.Year(), day.Month(), salary.PayDay)) {
		return
	}
	st.post(day, "Salary", salary.Amount, pool{kind: poolAccount, account: st.primary.ID})
}

func (st *ledgerState) applyVoucherCredits(day Date, contributions VoucherContributions) {
	if st.primary == nil {
		return
	}
	if !day.Equal(ResolveVoucherCreditDay(day.Year(), day.Month())) {
		return
	}
	for _, k := range VoucherKinds {
		amount, ok := contributions[k]
		if !ok {
			continue
		}
		st.post(day, "Voucher credit "+k.Token(), amount, pool{kind: poolVoucher, voucher: k})
	}
}

func (st *ledgerState) applyCardSettlement(day Date, card *CreditCard) {
	if card == nil || st.primary == nil || st.card.IsZero() {
		return
	}
	if !day.Equal(ResolveCardSettlementDay(day.Year(), day.Month(), card.DueDay)) {
		return
	}
	amount := st.card
	st.card = decimal.Zero
	st.post(day, "Card settlement "+st.cardLabel, amount, pool{kind: poolAccount, account: st.primary.ID})
}

func (st *ledgerState) applyEntry(day Date, e LedgerEntry) {
	var target pool
	switch e.Destination {
	case DestCard:
		target = pool{kind: poolCard}
	case DestMealVoucher, DestFoodVoucher:
		k, _ := e.Destination.VoucherKind()
		target = pool{kind: poolVoucher, voucher: k}
	default:
		id, ok := st.accountOrPrimary(e.AccountID)
		if !ok {
			return
		}
		target = pool{kind: poolAccount, account: id}
	}
	st.post(day, e.Description, e.Amount, target)
}

func (st *ledgerState) applyTransfer(day Date, t Transfer) {
	from, okFrom := st.accountOrPrimary(&t.FromAccountID)
	to, okTo := st.accountOrPrimary(&t.ToAccountID)
	if !okFrom || !okTo {
		return
	}
	st.balances[from] = st.balances[from].Sub(t.Amount)
	st.balances[to] = st.balances[to].Add(t.Amount)
	st.events = append(st.events, LedgerEvent{
		Date:        day,
		Description: t.Description,
		Amount:      t.Amount,
		Destination: st.known[from] + " -> " + st.known[to],
	})
}

func (st *ledgerState) applyEvent(day Date, ev FutureEvent) {
	target, ok := st.resolveTarget(ev.Target)
	if !ok {
		return
	}
	st.post(day, ev.Description, ev.Amount, target)
}

// post credits amount to target and records the event.
func (st *ledgerState) post(day Date, description string, amount decimal.Decimal, target pool) {
	st.credit(target, amount)
	st.events = append(st.events, LedgerEvent{
		Date:        day,
		Description: description,
		Amount:      amount,
		Destination: st.label(target),
	})
}

func (st *ledgerState) credit(target pool, amount decimal.Decimal) {
	switch target.kind {
	case poolCard:
		st.card = st.card.Add(amount)
	case poolVoucher:
		st.vouchers[target.voucher] = st.vouchers[target.voucher].Add(amount)
	default:
		st.balances[target.account] = st.balances[target.account].Add(amount)
	}
}

func (st *ledgerState) label(target pool) string {
	switch target.kind {
	case poolCard:
		return st.cardLabel
	case poolVoucher:
		return target.voucher.Token()
	default:
		return st.known[target.account]
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

// accountOrPrimary returns id if it names a known account, else primary checking.
func (st *ledgerState) accountOrPrimary(id *AccountID) (AccountID, bool) {
	if id != nil {
		if _, ok := st.known[*id]; ok {
			return *id, true
		}
	}
	if st.primary == nil {
		return 0, false
	}
	return st.primary.ID, true
}

// resolveTarget matches a future-event target, falling back to primary checking.
func (st *ledgerState) resolveTarget(name string) (pool, bool) {
	if p, ok := st.lookupPool(name); ok {
		return p, true
	}
	if st.primary == nil {
		return pool{}, false
	}
	return pool{kind: poolAccount, account: st.primary.ID}, true
}

// lookupPool matches reserved tokens first, then exact account names (lowest id wins).
func (st *ledgerState) lookupPool(name string) (pool, bool) {
	switch name {
	case TargetCreditCard:
		return pool{kind: poolCard}, true
	case TargetMealVoucher:
		return pool{kind: poolVoucher, voucher: VoucherMeal}, true
	case TargetFoodVoucher:
		return pool{kind: poolVoucher, voucher: VoucherFood}, true
	}
	for _, a := range st.accounts {
		if a.Name == name {
			return pool{kind: poolAccount, account: a.ID}, true
		}
	}
	return pool{}, false
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func (st *ledgerState) snapshot(day Date, filter accountFilter) DailySnapshot {
	accounts := make(map[AccountID]decimal.Decimal, len(st.balances))
	for id, b := range st.balances {
		accounts[id] = b
	}
	vouchers := make(map[VoucherKind]decimal.Decimal, len(st.vouchers))
	for k, b := range st.vouchers {
		vouchers[k] = b
	}
	return DailySnapshot{
		Date:            day,
		AccountBalances: accounts,
		VoucherBalances: vouchers,
		CardBalance:     st.card,
		TotalAccounts:   filter.total(accounts).Add(st.card),
		TotalVouchers:   sumVouchers(vouchers),
	}
}

// accountFilter restricts totals to a set of accounts; nil means all.
type accountFilter map[AccountID]struct{}

func newAccountFilter(ids []AccountID) accountFilter {
	if len(ids) == 0 {
		return nil
	}
	f := make(accountFilter, len(ids))
	for _, id := range ids {
		f[id] = struct{}{}
	}
	return f
}

func (f accountFilter) includes(id AccountID) bool {
	if f == nil {
		return true
	}
	_, ok := f[id]
	return ok
}

// total sums the included balances in id order.
func (f accountFilter) total(balances map[AccountID]decimal.Decimal) decimal.Decimal {
	ids := make([]AccountID, 0, len(balances))
	for id := range balances {
		if f.includes(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := decimal.Zero
	for _, id := range ids {
		total = total.Add(balances[id])
	}
	return total
}

func sumVouchers(vouchers map[VoucherKind]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, k := range VoucherKinds {
		total = total.Add(vouchers[k])
	}
	for k, b := range vouchers {
		if k != VoucherMeal && k != VoucherFood {
			total = total.Add(b)
		}
	}
	return total
}

// =============================================================================
// PROJECTION ENGINE - Store-backed runner
// =============================================================================

// ProjectionEngine reads a Plan from a store and projects it.
type ProjectionEngine struct {
	Store         PlanReader
	Contributions VoucherContributions

	// Clock supplies the default start day. Nil uses Today.
	Clock func() Date
}

// ProjectionRequest holds the caller-facing knobs of one run.
type ProjectionRequest struct {
	Horizon int
	Start   Date // zero = Clock()
	Filter  []AccountID
}

// Projection is a completed run: the options used, the output and its summary.
type Projection struct {
	Options Options
	Plan    Plan
	Result
	Summary Summary
}

// Run loads a point-in-time plan and projects it.
func (pe *ProjectionEngine) Run(ctx context.Context, req ProjectionRequest) (*Projection, error) {
	plan, err := pe.Store.LoadPlan(ctx)
	if err != nil {
		return nil, err
	}

	start := req.Start
	if start.IsZero() {
		if pe.Clock != nil {
			start = pe.Clock()
		} else {
			start = Today()
		}
	}

	opts := Options{
		Horizon:       ClampHorizon(req.Horizon),
		Today:         start,
		Filter:        req.Filter,
		Contributions: pe.Contributions,
	}
	result := Project(plan, opts)

	return &Projection{
		Options: opts,
		Plan:    plan,
		Result:  result,
		Summary: Summarize(result.Snapshots, req.Filter),
	}, nil
}
