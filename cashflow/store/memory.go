// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	accounts  map[cashflow.AccountID]cashflow.Account
	card      *cashflow.CreditCard
	salary    *cashflow.SalaryRule
	vouchers  map[cashflow.VoucherKind]cashflow.VoucherBalance
	entries   map[int64]cashflow.LedgerEntry
	transfers map[int64]cashflow.Transfer
	events    map[int64]cashflow.FutureEvent

	nextID int64
}

var _ cashflow.Store = (*Memory)(nil)

func NewMemory() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.accounts = make(map[cashflow.AccountID]cashflow.Account)
	m.card = nil
	m.salary = nil
	m.vouchers = make(map[cashflow.VoucherKind]cashflow.VoucherBalance)
	m.entries = make(map[int64]cashflow.LedgerEntry)
	m.transfers = make(map[int64]cashflow.Transfer)
	m.events = make(map[int64]cashflow.FutureEvent)
}

// id hands out ids from one counter shared by every record type.
func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// LoadPlan returns every input under one read lock.
func (m *Memory) LoadPlan(_ context.Context) (cashflow.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plan := cashflow.Plan{
		Accounts:  m.accountsLocked(),
		Vouchers:  m.vouchersLocked(),
		Entries:   m.entriesLocked(),
		Transfers: m.transfersLocked(),
		Events:    m.eventsLocked(),
	}
	if m.card != nil {
		c := *m.card
		plan.Card = &c
	}
	if m.salary != nil {
		s := *m.salary
		plan.Salary = &s
	}
	return plan, nil
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (m *Memory) ListAccounts(_ context.Context) ([]cashflow.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accountsLocked(), nil
}

func (m *Memory) accountsLocked() []cashflow.Account {
	out := make([]cashflow.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return cashflow.SortAccounts(out)
}

func (m *Memory) GetAccount(_ context.Context, id cashflow.AccountID) (cashflow.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return cashflow.Account{}, cashflow.ErrAccountNotFound
	}
	return a, nil
}

func (m *Memory) SaveAccount(_ context.Context, a cashflow.Account) (cashflow.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == 0 {
		a.ID = cashflow.AccountID(m.id())
	} else if _, ok := m.accounts[a.ID]; !ok {
		return cashflow.Account{}, cashflow.ErrAccountNotFound
	}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *Memory) DeleteAccount(_ context.Context, id cashflow.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return cashflow.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

// =============================================================================
// CARD & SALARY - Single-row records
// =============================================================================

func (m *Memory) GetCard(_ context.Context) (cashflow.CreditCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.card == nil {
		return cashflow.CreditCard{}, cashflow.ErrCardNotFound
	}
	return *m.card, nil
}

func (m *Memory) SaveCard(_ context.Context, c cashflow.CreditCard) (cashflow.CreditCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.card != nil:
		c.ID = m.card.ID
	case c.ID == 0:
		c.ID = m.id()
	}
	m.card = &c
	return c, nil
}

func (m *Memory) DeleteCard(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.card == nil {
		return cashflow.ErrCardNotFound
	}
	m.card = nil
	return nil
}

func (m *Memory) GetSalary(_ context.Context) (cashflow.SalaryRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.salary == nil {
		return cashflow.SalaryRule{}, cashflow.ErrSalaryNotFound
	}
	return *m.salary, nil
}

func (m *Memory) SaveSalary(_ context.Context, s cashflow.SalaryRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salary = &s
	return nil
}

// =============================================================================
// VOUCHERS
// =============================================================================

func (m *Memory) ListVouchers(_ context.Context) ([]cashflow.VoucherBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vouchersLocked(), nil
}

func (m *Memory) vouchersLocked() []cashflow.VoucherBalance {
	out := make([]cashflow.VoucherBalance, 0, len(m.vouchers))
	for _, k := range cashflow.VoucherKinds {
		if v, ok := m.vouchers[k]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (m *Memory) SaveVoucher(_ context.Context, v cashflow.VoucherBalance) error {
	if _, err := cashflow.ParseVoucherKind(string(v.Kind)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vouchers[v.Kind] = v
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) ListEntries(_ context.Context) ([]cashflow.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entriesLocked(), nil
}

func (m *Memory) entriesLocked() []cashflow.LedgerEntry {
	out := make([]cashflow.LedgerEntry, 0, len(m.entries))
	for _, id := range sortedIDs(m.entries) {
		out = append(out, cloneEntry(m.entries[id]))
	}
	return out
}

func (m *Memory) SaveEntry(_ context.Context, e cashflow.LedgerEntry) (cashflow.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == 0 {
		e.ID = m.id()
	} else if _, ok := m.entries[e.ID]; !ok {
		return cashflow.LedgerEntry{}, cashflow.ErrEntryNotFound
	}
	m.entries[e.ID] = cloneEntry(e)
	return e, nil
}

func (m *Memory) DeleteEntry(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return cashflow.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *Memory) ClearEntries(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[int64]cashflow.LedgerEntry)
	return nil
}

// =============================================================================
// TRANSFERS
// =============================================================================

func (m *Memory) ListTransfers(_ context.Context) ([]cashflow.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transfersLocked(), nil
}

func (m *Memory) transfersLocked() []cashflow.Transfer {
	out := make([]cashflow.Transfer, 0, len(m.transfers))
	for _, id := range sortedIDs(m.transfers) {
		out = append(out, cloneTransfer(m.transfers[id]))
	}
	return out
}

func (m *Memory) SaveTransfer(_ context.Context, t cashflow.Transfer) (cashflow.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == 0 {
		t.ID = m.id()
	} else if _, ok := m.transfers[t.ID]; !ok {
		return cashflow.Transfer{}, cashflow.ErrTransferNotFound
	}
	m.transfers[t.ID] = cloneTransfer(t)
	return t, nil
}

func (m *Memory) DeleteTransfer(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transfers[id]; !ok {
		return cashflow.ErrTransferNotFound
	}
	delete(m.transfers, id)
	return nil
}

func (m *Memory) ClearTransfers(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = make(map[int64]cashflow.Transfer)
	return nil
}

// =============================================================================
// FUTURE EVENTS
// =============================================================================

func (m *Memory) ListEvents(_ context.Context) ([]cashflow.FutureEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eventsLocked(), nil
}

func (m *Memory) eventsLocked() []cashflow.FutureEvent {
	out := make([]cashflow.FutureEvent, 0, len(m.events))
	for _, id := range sortedIDs(m.events) {
		out = append(out, m.events[id])
	}
	return out
}

func (m *Memory) SaveEvent(_ context.Context, e cashflow.FutureEvent) (cashflow.FutureEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == 0 {
		e.ID = m.id()
	} else if _, ok := m.events[e.ID]; !ok {
		return cashflow.FutureEvent{}, cashflow.ErrEventNotFound
	}
	m.events[e.ID] = e
	return e, nil
}

func (m *Memory) DeleteEvent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return cashflow.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func (m *Memory) EnsureDefaults(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range cashflow.VoucherKinds {
		if _, ok := m.vouchers[k]; !ok {
			m.vouchers[k] = cashflow.VoucherBalance{Kind: k}
		}
	}
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func sortedIDs[T any](records map[int64]T) []int64 {
	ids := make([]int64, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// cloneEntry detaches the optional pointers so callers can't alias stored rows.
func cloneEntry(e cashflow.LedgerEntry) cashflow.LedgerEntry {
	if e.EndDate != nil {
		end := *e.EndDate
		e.EndDate = &end
	}
	if e.AccountID != nil {
		id := *e.AccountID
		e.AccountID = &id
	}
	return e
}

func cloneTransfer(t cashflow.Transfer) cashflow.Transfer {
	if t.EndDate != nil {
		end := *t.EndDate
		t.EndDate = &end
	}
	return t
}
