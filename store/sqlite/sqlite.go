/*
Package sqlite provides a SQLite-backed implementation of cashflow.Store.

PURPOSE:
  Persists the household ledger: accounts, the credit card, the salary rule,
  voucher pools, ledger entries, transfers and future events. The projection
  engine reads everything back through LoadPlan.

KEY TABLES:
  accounts:       Cash accounts (CHECKING / POCKET)
  credit_cards:   Single-row card record
  salary:         Single-row salary rule (id pinned to 1)
  vouchers:       One row per voucher kind
  ledger_entries: Range rules; one row per rule, never per day
  transfers:      Range transfers between two accounts
  future_events:  One-shot postings resolved by target name

STORAGE FORMATS:
  - Money is TEXT holding the decimal string, never REAL
  - Dates are TEXT in YYYY-MM-DD
  - Optional values (end_date, account_id, source) are NULL when absent

SNAPSHOT READS:
  LoadPlan reads every table inside one transaction so a projection never
  sees a half-applied edit.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.
  An in-memory database is pinned to a single connection, since each
  ":memory:" connection would otherwise see its own empty database.

MIGRATION:
  Schema lives in migrations/*.sql, embedded into the binary and applied
  with golang-migrate on New().

USAGE:
  store, err := sqlite.New("./data/cashflow.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := &cashflow.ProjectionEngine{Store: store}

SEE ALSO:
  - cashflow/store.go: Interface definition
  - cashflow/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements cashflow.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ cashflow.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate applies the embedded migrations on the store's own connection.
// The migrate instance is not closed: its driver would close s.db with it.
func (s *Store) migrate() error {
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// PLAN READER
// =============================================================================

// LoadPlan returns every projection input read in a single transaction.
func (s *Store) LoadPlan(ctx context.Context) (cashflow.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cashflow.Plan{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var plan cashflow.Plan
	if plan.Accounts, err = listAccounts(ctx, tx); err != nil {
		return cashflow.Plan{}, err
	}
	if card, err := getCard(ctx, tx); err == nil {
		plan.Card = &card
	} else if !errors.Is(err, cashflow.ErrCardNotFound) {
		return cashflow.Plan{}, err
	}
	if salary, err := getSalary(ctx, tx); err == nil {
		plan.Salary = &salary
	} else if !errors.Is(err, cashflow.ErrSalaryNotFound) {
		return cashflow.Plan{}, err
	}
	if plan.Vouchers, err = listVouchers(ctx, tx); err != nil {
		return cashflow.Plan{}, err
	}
	if plan.Entries, err = listEntries(ctx, tx); err != nil {
		return cashflow.Plan{}, err
	}
	if plan.Transfers, err = listTransfers(ctx, tx); err != nil {
		return cashflow.Plan{}, err
	}
	if plan.Events, err = listEvents(ctx, tx); err != nil {
		return cashflow.Plan{}, err
	}

	return plan, tx.Commit()
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) ListAccounts(ctx context.Context) ([]cashflow.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAccounts(ctx, s.db)
}

func listAccounts(ctx context.Context, q queryer) ([]cashflow.Account, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, kind, balance FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var out []cashflow.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAccount(ctx context.Context, id cashflow.AccountID) (cashflow.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT id, name, kind, balance FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Account{}, cashflow.ErrAccountNotFound
	}
	return a, err
}

func (s *Store) SaveAccount(ctx context.Context, a cashflow.Account) (cashflow.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO accounts (name, kind, balance) VALUES (?, ?, ?)`,
			a.Name, string(a.Kind), a.Balance.String())
		if err != nil {
			return cashflow.Account{}, fmt.Errorf("failed to insert account: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return cashflow.Account{}, err
		}
		a.ID = cashflow.AccountID(id)
		return a, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, kind = ?, balance = ? WHERE id = ?`,
		a.Name, string(a.Kind), a.Balance.String(), a.ID)
	if err != nil {
		return cashflow.Account{}, fmt.Errorf("failed to update account: %w", err)
	}
	if err := requireAffected(res, cashflow.ErrAccountNotFound); err != nil {
		return cashflow.Account{}, err
	}
	return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id cashflow.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "accounts", int64(id), cashflow.ErrAccountNotFound)
}

// =============================================================================
// CARD & SALARY - Single-row tables
// =============================================================================

func (s *Store) GetCard(ctx context.Context) (cashflow.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCard(ctx, s.db)
}

func getCard(ctx context.Context, q queryer) (cashflow.CreditCard, error) {
	var (
		c    cashflow.CreditCard
		open string
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, name, due_day, open_amount FROM credit_cards ORDER BY id LIMIT 1`,
	).Scan(&c.ID, &c.Name, &c.DueDay, &open)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.CreditCard{}, cashflow.ErrCardNotFound
	}
	if err != nil {
		return cashflow.CreditCard{}, fmt.Errorf("failed to query card: %w", err)
	}
	if c.OpenAmount, err = parseDecimal("open_amount", open); err != nil {
		return cashflow.CreditCard{}, err
	}
	return c, nil
}

// SaveCard replaces the single card row, keeping its id once assigned.
func (s *Store) SaveCard(ctx context.Context, c cashflow.CreditCard) (cashflow.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := getCard(ctx, s.db)
	switch {
	case err == nil:
		c.ID = existing.ID
		_, err = s.db.ExecContext(ctx,
			`UPDATE credit_cards SET name = ?, due_day = ?, open_amount = ? WHERE id = ?`,
			c.Name, c.DueDay, c.OpenAmount.String(), c.ID)
		if err != nil {
			return cashflow.CreditCard{}, fmt.Errorf("failed to update card: %w", err)
		}
		return c, nil
	case !errors.Is(err, cashflow.ErrCardNotFound):
		return cashflow.CreditCard{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO credit_cards (id, name, due_day, open_amount) VALUES (?, ?, ?, ?)`,
		nullInt(c.ID), c.Name, c.DueDay, c.OpenAmount.String())
	if err != nil {
		return cashflow.CreditCard{}, fmt.Errorf("failed to insert card: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return cashflow.CreditCard{}, err
	}
	return c, nil
}

func (s *Store) DeleteCard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM credit_cards`)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return requireAffected(res, cashflow.ErrCardNotFound)
}

func (s *Store) GetSalary(ctx context.Context) (cashflow.SalaryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSalary(ctx, s.db)
}

func getSalary(ctx context.Context, q queryer) (cashflow.SalaryRule, error) {
	var (
		r      cashflow.SalaryRule
		amount string
	)
	err := q.QueryRowContext(ctx, `SELECT amount, pay_day FROM salary WHERE id = 1`).Scan(&amount, &r.PayDay)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.SalaryRule{}, cashflow.ErrSalaryNotFound
	}
	if err != nil {
		return cashflow.SalaryRule{}, fmt.Errorf("failed to query salary: %w", err)
	}
	if r.Amount, err = parseDecimal("amount", amount); err != nil {
		return cashflow.SalaryRule{}, err
	}
	return r, nil
}

func (s *Store) SaveSalary(ctx context.Context, r cashflow.SalaryRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salary (id, amount, pay_day) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET amount = excluded.amount, pay_day = excluded.pay_day
	`, r.Amount.String(), r.PayDay)
	if err != nil {
		return fmt.Errorf("failed to save salary: %w", err)
	}
	return nil
}

// =============================================================================
// VOUCHERS
// =============================================================================

func (s *Store) ListVouchers(ctx context.Context) ([]cashflow.VoucherBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listVouchers(ctx, s.db)
}

// listVouchers returns pools in processing order (MEAL, FOOD).
func listVouchers(ctx context.Context, q queryer) ([]cashflow.VoucherBalance, error) {
	rows, err := q.QueryContext(ctx, `SELECT kind, balance FROM vouchers`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vouchers: %w", err)
	}
	defer rows.Close()

	byKind := make(map[cashflow.VoucherKind]cashflow.VoucherBalance)
	for rows.Next() {
		var kind, balance string
		if err := rows.Scan(&kind, &balance); err != nil {
			return nil, err
		}
		v := cashflow.VoucherBalance{Kind: cashflow.VoucherKind(kind)}
		if v.Balance, err = parseDecimal("balance", balance); err != nil {
			return nil, err
		}
		byKind[v.Kind] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []cashflow.VoucherBalance
	for _, k := range cashflow.VoucherKinds {
		if v, ok := byKind[k]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) SaveVoucher(ctx context.Context, v cashflow.VoucherBalance) error {
	kind, err := cashflow.ParseVoucherKind(string(v.Kind))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vouchers (kind, balance) VALUES (?, ?)
		ON CONFLICT(kind) DO UPDATE SET balance = excluded.balance
	`, string(kind), v.Balance.String())
	if err != nil {
		return fmt.Errorf("failed to save voucher: %w", err)
	}
	return nil
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

const entryColumns = `id, description, amount, start_date, end_date, destination, account_id`

func (s *Store) ListEntries(ctx context.Context) ([]cashflow.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEntries(ctx, s.db)
}

func listEntries(ctx context.Context, q queryer) ([]cashflow.LedgerEntry, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+entryColumns+` FROM ledger_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var out []cashflow.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) SaveEntry(ctx context.Context, e cashflow.LedgerEntry) (cashflow.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accountID sql.NullInt64
	if e.AccountID != nil {
		accountID = sql.NullInt64{Int64: int64(*e.AccountID), Valid: true}
	}
	args := []any{
		e.Description, e.Amount.String(), e.StartDate.String(), nullDate(e.EndDate),
		string(e.Destination), accountID,
	}

	if e.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO ledger_entries (description, amount, start_date, end_date, destination, account_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return cashflow.LedgerEntry{}, fmt.Errorf("failed to insert entry: %w", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return cashflow.LedgerEntry{}, err
		}
		return e, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET description = ?, amount = ?, start_date = ?, end_date = ?, destination = ?, account_id = ?
		WHERE id = ?
	`, append(args, e.ID)...)
	if err != nil {
		return cashflow.LedgerEntry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	if err := requireAffected(res, cashflow.ErrEntryNotFound); err != nil {
		return cashflow.LedgerEntry{}, err
	}
	return e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "ledger_entries", id, cashflow.ErrEntryNotFound)
}

func (s *Store) ClearEntries(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM ledger_entries`)
	return err
}

// =============================================================================
// TRANSFERS
// =============================================================================

const transferColumns = `id, description, amount, start_date, end_date, from_account_id, to_account_id`

func (s *Store) ListTransfers(ctx context.Context) ([]cashflow.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTransfers(ctx, s.db)
}

func listTransfers(ctx context.Context, q queryer) ([]cashflow.Transfer, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+transferColumns+` FROM transfers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var out []cashflow.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SaveTransfer(ctx context.Context, t cashflow.Transfer) (cashflow.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := []any{
		t.Description, t.Amount.String(), t.StartDate.String(), nullDate(t.EndDate),
		int64(t.FromAccountID), int64(t.ToAccountID),
	}

	if t.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO transfers (description, amount, start_date, end_date, from_account_id, to_account_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return cashflow.Transfer{}, fmt.Errorf("failed to insert transfer: %w", err)
		}
		if t.ID, err = res.LastInsertId(); err != nil {
			return cashflow.Transfer{}, err
		}
		return t, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transfers
		SET description = ?, amount = ?, start_date = ?, end_date = ?, from_account_id = ?, to_account_id = ?
		WHERE id = ?
	`, append(args, t.ID)...)
	if err != nil {
		return cashflow.Transfer{}, fmt.Errorf("failed to update transfer: %w", err)
	}
	if err := requireAffected(res, cashflow.ErrTransferNotFound); err != nil {
		return cashflow.Transfer{}, err
	}
	return t, nil
}

func (s *Store) DeleteTransfer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "transfers", id, cashflow.ErrTransferNotFound)
}

func (s *Store) ClearTransfers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM transfers`)
	return err
}

// =============================================================================
// FUTURE EVENTS
// =============================================================================

func (s *Store) ListEvents(ctx context.Context) ([]cashflow.FutureEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEvents(ctx, s.db)
}

func listEvents(ctx context.Context, q queryer) ([]cashflow.FutureEvent, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, date, description, amount, target, source FROM future_events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []cashflow.FutureEvent
	for rows.Next() {
		var (
			e            cashflow.FutureEvent
			date, amount string
			source       sql.NullString
		)
		if err := rows.Scan(&e.ID, &date, &e.Description, &amount, &e.Target, &source); err != nil {
			return nil, err
		}
		if e.Date, err = cashflow.ParseDate(date); err != nil {
			return nil, err
		}
		if e.Amount, err = parseDecimal("amount", amount); err != nil {
			return nil, err
		}
		e.Source = source.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) SaveEvent(ctx context.Context, e cashflow.FutureEvent) (cashflow.FutureEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := []any{e.Date.String(), e.Description, e.Amount.String(), e.Target, nullString(e.Source)}

	if e.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO future_events (date, description, amount, target, source) VALUES (?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return cashflow.FutureEvent{}, fmt.Errorf("failed to insert event: %w", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return cashflow.FutureEvent{}, err
		}
		return e, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE future_events SET date = ?, description = ?, amount = ?, target = ?, source = ? WHERE id = ?
	`, append(args, e.ID)...)
	if err != nil {
		return cashflow.FutureEvent{}, fmt.Errorf("failed to update event: %w", err)
	}
	if err := requireAffected(res, cashflow.ErrEventNotFound); err != nil {
		return cashflow.FutureEvent{}, err
	}
	return e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "future_events", id, cashflow.ErrEventNotFound)
}

// =============================================================================
// UTILITIES
// =============================================================================

// EnsureDefaults creates the MEAL and FOOD pools with a zero balance if missing.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range cashflow.VoucherKinds {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO vouchers (kind, balance) VALUES (?, '0')`, string(k)); err != nil {
			return fmt.Errorf("failed to create voucher %s: %w", k, err)
		}
	}
	return nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"future_events", "transfers", "ledger_entries", "vouchers", "salary", "credit_cards", "accounts"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64, notFound error) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return requireAffected(res, notFound)
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (cashflow.Account, error) {
	var (
		a             cashflow.Account
		kind, balance string
	)
	if err := row.Scan(&a.ID, &a.Name, &kind, &balance); err != nil {
		return cashflow.Account{}, err
	}
	a.Kind = cashflow.AccountKind(kind)
	var err error
	if a.Balance, err = parseDecimal("balance", balance); err != nil {
		return cashflow.Account{}, err
	}
	return a, nil
}

func scanEntry(row scanner) (cashflow.LedgerEntry, error) {
	var (
		e                   cashflow.LedgerEntry
		amount, start, dest string
		end                 sql.NullString
		accountID           sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.Description, &amount, &start, &end, &dest, &accountID); err != nil {
		return cashflow.LedgerEntry{}, err
	}

	var err error
	if e.Amount, err = parseDecimal("amount", amount); err != nil {
		return cashflow.LedgerEntry{}, err
	}
	if e.StartDate, err = cashflow.ParseDate(start); err != nil {
		return cashflow.LedgerEntry{}, err
	}
	if e.EndDate, err = parseNullDate(end); err != nil {
		return cashflow.LedgerEntry{}, err
	}
	e.Destination = cashflow.Destination(dest)
	if accountID.Valid {
		id := cashflow.AccountID(accountID.Int64)
		e.AccountID = &id
	}
	return e, nil
}

func scanTransfer(row scanner) (cashflow.Transfer, error) {
	var (
		t             cashflow.Transfer
		amount, start string
		end           sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Description, &amount, &start, &end, &t.FromAccountID, &t.ToAccountID); err != nil {
		return cashflow.Transfer{}, err
	}

	var err error
	if t.Amount, err = parseDecimal("amount", amount); err != nil {
		return cashflow.Transfer{}, err
	}
	if t.StartDate, err = cashflow.ParseDate(start); err != nil {
		return cashflow.Transfer{}, err
	}
	if t.EndDate, err = parseNullDate(end); err != nil {
		return cashflow.Transfer{}, err
	}
	return t, nil
}

func parseDecimal(column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt %s %q: %w", column, value, err)
	}
	return d, nil
}

func parseNullDate(v sql.NullString) (*cashflow.Date, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := cashflow.ParseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullDate(d *cashflow.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return nullString(d.String())
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
