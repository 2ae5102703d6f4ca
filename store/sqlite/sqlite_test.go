package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTripPlan(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// GIVEN: One of every record type
	checking, err := s.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking, Balance: decimal.RequireFromString("1000.50")})
	require.NoError(t, err)
	savings, err := s.SaveAccount(ctx, cashflow.Account{Name: "Savings", Kind: cashflow.KindPocket, Balance: decimal.Zero})
	require.NoError(t, err)

	_, err = s.SaveCard(ctx, cashflow.CreditCard{Name: "Visa", DueDay: 10, OpenAmount: decimal.RequireFromString("-200.10")})
	require.NoError(t, err)
	require.NoError(t, s.SaveSalary(ctx, cashflow.SalaryRule{Amount: decimal.NewFromInt(3000), PayDay: 5}))
	require.NoError(t, s.EnsureDefaults(ctx))
	require.NoError(t, s.SaveVoucher(ctx, cashflow.VoucherBalance{Kind: cashflow.VoucherFood, Balance: decimal.NewFromInt(40)}))

	end := cashflow.MustParseDate("2025-03-07")
	id := savings.ID
	_, err = s.SaveEntry(ctx, cashflow.LedgerEntry{
		Description: "Lunch", Amount: decimal.NewFromInt(-10),
		StartDate: cashflow.MustParseDate("2025-03-03"), EndDate: &end,
		Destination: cashflow.DestAccount, AccountID: &id,
	})
	require.NoError(t, err)
	_, err = s.SaveEntry(ctx, cashflow.LedgerEntry{
		Description: "Fuel", Amount: decimal.NewFromInt(-50),
		StartDate: cashflow.MustParseDate("2025-03-04"), Destination: cashflow.DestCard,
	})
	require.NoError(t, err)
	_, err = s.SaveTransfer(ctx, cashflow.Transfer{
		Description: "Save", Amount: decimal.NewFromInt(100),
		StartDate: cashflow.MustParseDate("2025-03-01"), FromAccountID: checking.ID, ToAccountID: savings.ID,
	})
	require.NoError(t, err)
	_, err = s.SaveEvent(ctx, cashflow.FutureEvent{
		Date: cashflow.MustParseDate("2025-04-01"), Description: "Bonus",
		Amount: decimal.NewFromInt(500), Target: "Savings", Source: "Checking",
	})
	require.NoError(t, err)

	// WHEN: Loading the plan
	plan, err := s.LoadPlan(ctx)
	require.NoError(t, err)

	// THEN: Everything comes back intact
	require.Len(t, plan.Accounts, 2)
	assert.Equal(t, "1000.5", plan.Accounts[0].Balance.String())
	assert.Equal(t, cashflow.KindPocket, plan.Accounts[1].Kind)

	require.NotNil(t, plan.Card)
	assert.Equal(t, "Visa", plan.Card.Name)
	assert.True(t, plan.Card.OpenAmount.Equal(decimal.RequireFromString("-200.10")))

	require.NotNil(t, plan.Salary)
	assert.Equal(t, 5, plan.Salary.PayDay)

	require.Len(t, plan.Vouchers, 2)
	assert.Equal(t, cashflow.VoucherMeal, plan.Vouchers[0].Kind)
	assert.True(t, plan.Vouchers[1].Balance.Equal(decimal.NewFromInt(40)))

	require.Len(t, plan.Entries, 2, "a 5-day range is stored as one row")
	require.NotNil(t, plan.Entries[0].EndDate)
	assert.Equal(t, "2025-03-07", plan.Entries[0].EndDate.String())
	require.NotNil(t, plan.Entries[0].AccountID)
	assert.Equal(t, savings.ID, *plan.Entries[0].AccountID)
	assert.Nil(t, plan.Entries[1].EndDate)
	assert.Nil(t, plan.Entries[1].AccountID)

	require.Len(t, plan.Transfers, 1)
	assert.Equal(t, checking.ID, plan.Transfers[0].FromAccountID)

	require.Len(t, plan.Events, 1)
	assert.Equal(t, "Checking", plan.Events[0].Source)
	assert.Equal(t, "2025-04-01", plan.Events[0].Date.String())
}

func TestStore_EmptyPlan(t *testing.T) {
	plan, err := newTestStore(t).LoadPlan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, plan.Accounts)
	assert.Nil(t, plan.Card)
	assert.Nil(t, plan.Salary)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetAccount(ctx, 99)
	assert.ErrorIs(t, err, cashflow.ErrAccountNotFound)

	_, err = s.SaveAccount(ctx, cashflow.Account{ID: 99, Name: "x", Kind: cashflow.KindPocket})
	assert.ErrorIs(t, err, cashflow.ErrAccountNotFound)

	assert.ErrorIs(t, s.DeleteEntry(ctx, 99), cashflow.ErrEntryNotFound)
	assert.ErrorIs(t, s.DeleteTransfer(ctx, 99), cashflow.ErrTransferNotFound)
	assert.ErrorIs(t, s.DeleteEvent(ctx, 99), cashflow.ErrEventNotFound)
	assert.ErrorIs(t, s.DeleteCard(ctx), cashflow.ErrCardNotFound)

	_, err = s.GetSalary(ctx)
	assert.ErrorIs(t, err, cashflow.ErrSalaryNotFound)
}

func TestStore_CardIsSingleRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.SaveCard(ctx, cashflow.CreditCard{Name: "Visa", DueDay: 10, OpenAmount: decimal.Zero})
	require.NoError(t, err)
	second, err := s.SaveCard(ctx, cashflow.CreditCard{Name: "Master", DueDay: 3, OpenAmount: decimal.NewFromInt(-5)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := s.GetCard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Master", got.Name)
	assert.Equal(t, 3, got.DueDay)
}

func TestStore_UpdateAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.SaveEntry(ctx, cashflow.LedgerEntry{
		Description: "Gym", Amount: decimal.NewFromInt(-90),
		StartDate: cashflow.MustParseDate("2025-03-01"), Destination: cashflow.DestAccount,
	})
	require.NoError(t, err)

	e.Amount = decimal.NewFromInt(-95)
	_, err = s.SaveEntry(ctx, e)
	require.NoError(t, err)

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(-95)))

	require.NoError(t, s.ClearEntries(ctx))
	entries, err = s.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_RejectsUnknownVoucherKind(t *testing.T) {
	err := newTestStore(t).SaveVoucher(context.Background(), cashflow.VoucherBalance{Kind: "TRANSPORT"})
	assert.ErrorIs(t, err, cashflow.ErrUnknownVoucherKind)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking, Balance: decimal.Zero})
	require.NoError(t, err)
	require.NoError(t, s.SaveSalary(ctx, cashflow.SalaryRule{Amount: decimal.NewFromInt(1), PayDay: 1}))

	require.NoError(t, s.Reset(ctx))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	_, err = s.GetSalary(ctx)
	assert.ErrorIs(t, err, cashflow.ErrSalaryNotFound)
}

func TestStore_ProjectsFromDatabase(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc, err := s.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking, Balance: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	require.NoError(t, s.SaveSalary(ctx, cashflow.SalaryRule{Amount: decimal.NewFromInt(3000), PayDay: 5}))

	engine := &cashflow.ProjectionEngine{Store: s}
	p, err := engine.Run(ctx, cashflow.ProjectionRequest{Horizon: 10, Start: cashflow.MustParseDate("2025-08-01")})
	require.NoError(t, err)

	assert.True(t, p.Snapshots[4].AccountBalances[acc.ID].Equal(decimal.NewFromInt(4000)))
}
