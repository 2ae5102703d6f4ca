package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
)

func TestMemory_AccountCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a, err := m.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking, Balance: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	a.Balance = decimal.NewFromInt(20)
	_, err = m.SaveAccount(ctx, a)
	require.NoError(t, err)

	got, err := m.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(20)))

	require.NoError(t, m.DeleteAccount(ctx, a.ID))
	_, err = m.GetAccount(ctx, a.ID)
	assert.True(t, errors.Is(err, cashflow.ErrAccountNotFound))
	assert.True(t, cashflow.IsNotFound(err))
}

func TestMemory_UpdateMissingRecord(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.SaveAccount(ctx, cashflow.Account{ID: 42, Name: "ghost"})
	assert.ErrorIs(t, err, cashflow.ErrAccountNotFound)

	_, err = m.SaveEntry(ctx, cashflow.LedgerEntry{ID: 42})
	assert.ErrorIs(t, err, cashflow.ErrEntryNotFound)

	_, err = m.SaveTransfer(ctx, cashflow.Transfer{ID: 42})
	assert.ErrorIs(t, err, cashflow.ErrTransferNotFound)

	_, err = m.SaveEvent(ctx, cashflow.FutureEvent{ID: 42})
	assert.ErrorIs(t, err, cashflow.ErrEventNotFound)
}

func TestMemory_CardIsSingleRow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetCard(ctx)
	assert.ErrorIs(t, err, cashflow.ErrCardNotFound)

	first, err := m.SaveCard(ctx, cashflow.CreditCard{Name: "Visa", DueDay: 10})
	require.NoError(t, err)
	second, err := m.SaveCard(ctx, cashflow.CreditCard{Name: "Master", DueDay: 5})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	got, err := m.GetCard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Master", got.Name)

	require.NoError(t, m.DeleteCard(ctx))
	assert.ErrorIs(t, m.DeleteCard(ctx), cashflow.ErrCardNotFound)
}

func TestMemory_VoucherKindValidated(t *testing.T) {
	m := NewMemory()
	err := m.SaveVoucher(context.Background(), cashflow.VoucherBalance{Kind: "TRANSPORT"})
	assert.ErrorIs(t, err, cashflow.ErrUnknownVoucherKind)
}

func TestMemory_LoadPlanIsDetached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// GIVEN: An entry with optional pointers set
	acc, _ := m.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking})
	end := cashflow.MustParseDate("2025-03-10")
	id := acc.ID
	_, err := m.SaveEntry(ctx, cashflow.LedgerEntry{
		Description: "rent", Amount: decimal.NewFromInt(-1),
		StartDate: cashflow.MustParseDate("2025-03-01"), EndDate: &end,
		Destination: cashflow.DestAccount, AccountID: &id,
	})
	require.NoError(t, err)

	// WHEN: The loaded plan is mutated
	plan, err := m.LoadPlan(ctx)
	require.NoError(t, err)
	*plan.Entries[0].EndDate = cashflow.MustParseDate("2030-01-01")
	end = cashflow.MustParseDate("2031-01-01")

	// THEN: Storage is unaffected
	again, err := m.LoadPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", again.Entries[0].EndDate.String())
}

func TestMemory_ListsOrderedByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, name := range []string{"a", "b", "c"} {
		_, err := m.SaveEvent(ctx, cashflow.FutureEvent{Description: name, Date: cashflow.MustParseDate("2025-01-01")})
		require.NoError(t, err)
	}
	events, err := m.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "a", events[0].Description)
	assert.Equal(t, "c", events[2].Description)
	assert.Less(t, events[0].ID, events[1].ID)
}

func TestMemory_ClearAndReset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, _ = m.SaveEntry(ctx, cashflow.LedgerEntry{Description: "x"})
	_, _ = m.SaveTransfer(ctx, cashflow.Transfer{Description: "y"})
	require.NoError(t, m.ClearEntries(ctx))
	require.NoError(t, m.ClearTransfers(ctx))

	entries, _ := m.ListEntries(ctx)
	transfers, _ := m.ListTransfers(ctx)
	assert.Empty(t, entries)
	assert.Empty(t, transfers)

	require.NoError(t, m.SaveSalary(ctx, cashflow.SalaryRule{PayDay: 5}))
	require.NoError(t, m.Reset(ctx))
	_, err := m.GetSalary(ctx)
	assert.ErrorIs(t, err, cashflow.ErrSalaryNotFound)
}

func TestMemory_EnsureDefaults(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SaveVoucher(ctx, cashflow.VoucherBalance{Kind: cashflow.VoucherMeal, Balance: decimal.NewFromInt(7)}))
	require.NoError(t, m.EnsureDefaults(ctx))

	vouchers, err := m.ListVouchers(ctx)
	require.NoError(t, err)
	require.Len(t, vouchers, 2)
	assert.Equal(t, cashflow.VoucherMeal, vouchers[0].Kind)
	assert.True(t, vouchers[0].Balance.Equal(decimal.NewFromInt(7)), "existing pool untouched")
	assert.Equal(t, cashflow.VoucherFood, vouchers[1].Kind)
	assert.True(t, vouchers[1].Balance.IsZero())
}
