package cashflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/cashflow/store"
)

func TestSummarize_Empty(t *testing.T) {
	s := cashflow.Summarize(nil, nil)

	assertDecimal(t, "0", s.TotalStart)
	assertDecimal(t, "0", s.TotalEnd)
	assertDecimal(t, "0", s.Variation)
	assertDecimal(t, "0", s.VoucherStart)
	assertDecimal(t, "0", s.VoucherEnd)
	assertDecimal(t, "0", s.VoucherVariation)
}

func TestSummarize_StartEndVariation(t *testing.T) {
	// GIVEN: Checking 1000 with a 3000 salary inside the window
	plan := cashflow.Plan{
		Accounts: []cashflow.Account{checking(1, "Checking", "1000")},
		Salary:   &cashflow.SalaryRule{Amount: dec("3000"), PayDay: 5},
		Vouchers: []cashflow.VoucherBalance{{Kind: cashflow.VoucherMeal, Balance: dec("50")}},
	}
	result := cashflow.Project(plan, cashflow.Options{Horizon: 10, Today: cashflow.MustParseDate("2025-08-01")})

	// WHEN: Summarizing
	s := cashflow.Summarize(result.Snapshots, nil)

	// THEN
	assertDecimal(t, "1000", s.TotalStart)
	assertDecimal(t, "4000", s.TotalEnd)
	assertDecimal(t, "3000", s.Variation)
	assertDecimal(t, "50", s.VoucherStart)
	assertDecimal(t, "50", s.VoucherEnd)
	assertDecimal(t, "0", s.VoucherVariation)
}

func TestSummarize_RefiltersWithoutRerunning(t *testing.T) {
	// GIVEN: A projection computed over all accounts
	plan := cashflow.Plan{
		Accounts: []cashflow.Account{checking(1, "Checking", "1000"), pocket(2, "Savings", "300")},
		Card:     &cashflow.CreditCard{ID: 1, DueDay: 28, OpenAmount: dec("-100")},
	}
	result := cashflow.Project(plan, cashflow.Options{Horizon: 5, Today: cashflow.MustParseDate("2025-03-01")})
	assertDecimal(t, "1200", result.Snapshots[0].TotalAccounts)

	// WHEN: Summarizing only the pocket
	s := cashflow.Summarize(result.Snapshots, []cashflow.AccountID{2})

	// THEN: The card is still counted
	assertDecimal(t, "200", s.TotalStart)
	assertDecimal(t, "200", s.TotalEnd)
}

func TestTotalsFor(t *testing.T) {
	plan := cashflow.Plan{
		Accounts: []cashflow.Account{checking(1, "Checking", "10"), pocket(2, "Savings", "5")},
		Entries: []cashflow.LedgerEntry{{
			Description: "daily", Amount: dec("1"),
			StartDate: cashflow.MustParseDate("2025-03-01"), EndDate: datePtr("2025-03-03"),
			Destination: cashflow.DestAccount, AccountID: accountPtr(2),
		}},
	}
	result := cashflow.Project(plan, cashflow.Options{
		Horizon: 3, Today: cashflow.MustParseDate("2025-03-01"), Contributions: noVouchers,
	})

	totals := cashflow.TotalsFor(result.Snapshots, []cashflow.AccountID{2})

	require.Len(t, totals, 3)
	assertDecimal(t, "6", totals[0])
	assertDecimal(t, "7", totals[1])
	assertDecimal(t, "8", totals[2])
}

// =============================================================================
// PROJECTION ENGINE
// =============================================================================

func TestProjectionEngine_Run(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	// GIVEN: A stored household
	acc, err := s.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking, Balance: dec("1000")})
	require.NoError(t, err)
	require.NoError(t, s.SaveSalary(ctx, cashflow.SalaryRule{Amount: dec("3000"), PayDay: 5}))

	engine := &cashflow.ProjectionEngine{
		Store: s,
		Clock: func() cashflow.Date { return cashflow.MustParseDate("2025-08-01") },
	}

	// WHEN: Running without an explicit start, with an out-of-range horizon
	p, err := engine.Run(ctx, cashflow.ProjectionRequest{Horizon: 9999})
	require.NoError(t, err)

	// THEN: The clock supplies the start and the horizon is clamped
	assert.Equal(t, cashflow.MaxHorizon, p.Options.Horizon)
	require.Len(t, p.Snapshots, cashflow.MaxHorizon)
	assert.Equal(t, "2025-08-01", p.Snapshots[0].Date.String())
	assertDecimal(t, "4000", p.Snapshots[4].AccountBalances[acc.ID])
	assert.True(t, p.Summary.Variation.IsPositive())
}

func TestProjectionEngine_ExplicitStart(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	_, err := s.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking, Balance: dec("1")})
	require.NoError(t, err)

	engine := &cashflow.ProjectionEngine{Store: s, Contributions: noVouchers}
	p, err := engine.Run(ctx, cashflow.ProjectionRequest{Horizon: 3, Start: cashflow.MustParseDate("2025-03-27")})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-29", p.Snapshots[2].Date.String())
	assert.Empty(t, p.Events, "engine contributions override the defaults")
}
