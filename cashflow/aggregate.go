package cashflow

import "github.com/shopspring/decimal"

// Summary is the start/end/variation view over a snapshot sequence.
type Summary struct {
	TotalStart       decimal.Decimal
	TotalEnd         decimal.Decimal
	Variation        decimal.Decimal
	VoucherStart     decimal.Decimal
	VoucherEnd       decimal.Decimal
	VoucherVariation decimal.Decimal
}

// Summarize compares the first and last snapshot. Account totals are recomputed
// with filter (empty = all accounts) and always include the card balance, so a
// projection can be re-summarised for a different selection without re-running.
// An empty sequence yields an all-zero Summary.
func Summarize(snapshots []DailySnapshot, filter []AccountID) Summary {
	if len(snapshots) == 0 {
		return Summary{
			TotalStart:       decimal.Zero,
			TotalEnd:         decimal.Zero,
			Variation:        decimal.Zero,
			VoucherStart:     decimal.Zero,
			VoucherEnd:       decimal.Zero,
			VoucherVariation: decimal.Zero,
		}
	}

	f := newAccountFilter(filter)
	first, last := snapshots[0], snapshots[len(snapshots)-1]

	s := Summary{
		TotalStart:   filteredTotal(first, f),
		TotalEnd:     filteredTotal(last, f),
		VoucherStart: first.TotalVouchers,
		VoucherEnd:   last.TotalVouchers,
	}
	s.Variation = s.TotalEnd.Sub(s.TotalStart)
	s.VoucherVariation = s.VoucherEnd.Sub(s.VoucherStart)
	return s
}

// filteredTotal is a snapshot's account total restricted to filter, plus the card.
func filteredTotal(s DailySnapshot, filter accountFilter) decimal.Decimal {
	return filter.total(s.AccountBalances).Add(s.CardBalance)
}

// TotalsFor returns the filtered account total of every snapshot, in order.
// Used by charts that let the user toggle accounts.
func TotalsFor(snapshots []DailySnapshot, filter []AccountID) []decimal.Decimal {
	f := newAccountFilter(filter)
	totals := make([]decimal.Decimal, len(snapshots))
	for i, s := range snapshots {
		totals[i] = filteredTotal(s, f)
	}
	return totals
}
