/*
store.go - Persistence interface for projection inputs

PURPOSE:
  Defines the interface between the projection engine and the database.
  The engine only ever reads, through LoadPlan; the CRUD methods serve the
  forms and the API that edit the household's data.

KEY INTERFACES:
  PlanReader: One coherent, point-in-time read of every input
  Store:      PlanReader plus CRUD for each record type

SNAPSHOT READS:
  LoadPlan must return a consistent view: accounts, card, salary, vouchers,
  entries, transfers and events as of the same instant. Memory holds a read
  lock for the whole read; SQLite uses a single read transaction.

RANGES ARE STORED ONCE:
  An entry or transfer spanning 30 days is one row with a start and an
  optional end. Nothing here materialises per-day rows; expansion happens
  in the engine only.

IDS:
  Save* inserts when the record's ID is zero and returns the stored record
  with its new ID; otherwise it updates the existing row. List* returns rows
  ordered by id, which is also the engine's processing order.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite with embedded migrations
  - cashflow/store/memory.go: In-memory for testing

SEE ALSO:
  - projection.go: ProjectionEngine reads through PlanReader
*/
package cashflow

import "context"

// =============================================================================
// STORE - Interface for the household ledger
// =============================================================================

// PlanReader supplies projection inputs.
type PlanReader interface {
	// LoadPlan returns a coherent snapshot of every input.
	LoadPlan(ctx context.Context) (Plan, error)
}

// Store handles persistence of all projection inputs.
type Store interface {
	PlanReader

	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id AccountID) (Account, error)
	SaveAccount(ctx context.Context, a Account) (Account, error)
	DeleteAccount(ctx context.Context, id AccountID) error

	// GetCard returns ErrCardNotFound when no card is configured.
	GetCard(ctx context.Context) (CreditCard, error)
	SaveCard(ctx context.Context, c CreditCard) (CreditCard, error)
	DeleteCard(ctx context.Context) error

	// GetSalary returns ErrSalaryNotFound when no rule is configured.
	GetSalary(ctx context.Context) (SalaryRule, error)
	SaveSalary(ctx context.Context, s SalaryRule) error

	ListVouchers(ctx context.Context) ([]VoucherBalance, error)
	SaveVoucher(ctx context.Context, v VoucherBalance) error

	ListEntries(ctx context.Context) ([]LedgerEntry, error)
	SaveEntry(ctx context.Context, e LedgerEntry) (LedgerEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	ClearEntries(ctx context.Context) error

	ListTransfers(ctx context.Context) ([]Transfer, error)
	SaveTransfer(ctx context.Context, t Transfer) (Transfer, error)
	DeleteTransfer(ctx context.Context, id int64) error
	ClearTransfers(ctx context.Context) error

	ListEvents(ctx context.Context) ([]FutureEvent, error)
	SaveEvent(ctx context.Context, e FutureEvent) (FutureEvent, error)
	DeleteEvent(ctx context.Context, id int64) error

	// EnsureDefaults creates missing voucher pools with a zero balance.
	EnsureDefaults(ctx context.Context) error

	// Reset removes every record.
	Reset(ctx context.Context) error
}
