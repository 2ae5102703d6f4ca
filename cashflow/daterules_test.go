package cashflow_test

import (
	"testing"
	"time"

	"github.com/warp/cashflow-engine/cashflow"
)

func TestResolveSalaryDay(t *testing.T) {
	tests := []struct {
		name   string
		year   int
		month  time.Month
		payDay int
		want   string
	}{
		{"weekday stays", 2025, time.August, 5, "2025-08-05"},
		{"saturday rolls back to friday", 2025, time.March, 15, "2025-03-14"},
		{"sunday rolls back to friday", 2025, time.March, 16, "2025-03-14"},
		{"clipped to short month", 2025, time.February, 31, "2025-02-28"},
		{"clipped then rolled back", 2025, time.May, 31, "2025-05-30"},
		{"zero pay day treated as first", 2025, time.August, 0, "2025-08-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cashflow.ResolveSalaryDay(tt.year, tt.month, tt.payDay)
			if got.String() != tt.want {
				t.Errorf("ResolveSalaryDay(%d, %s, %d) = %s, want %s", tt.year, tt.month, tt.payDay, got, tt.want)
			}
			if got.IsWeekend() {
				t.Errorf("payday %s falls on a weekend", got)
			}
		})
	}
}

func TestResolveVoucherCreditDay(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  string
	}{
		{2025, time.January, "2025-01-30"},   // month ends Friday
		{2025, time.March, "2025-03-28"},     // month ends Monday
		{2025, time.May, "2025-05-29"},       // month ends Saturday
		{2025, time.August, "2025-08-28"},    // month ends Sunday
		{2025, time.September, "2025-09-29"}, // month ends Tuesday
		{2026, time.February, "2026-02-26"},
	}

	for _, tt := range tests {
		got := cashflow.ResolveVoucherCreditDay(tt.year, tt.month)
		if got.String() != tt.want {
			t.Errorf("ResolveVoucherCreditDay(%d, %s) = %s, want %s", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestResolveCardSettlementDay_NoWeekendAdjustment(t *testing.T) {
	// GIVEN: Due day 15 in March 2025 (a Saturday)
	// THEN: Settlement stays on the 15th, unlike the salary rule
	got := cashflow.ResolveCardSettlementDay(2025, time.March, 15)
	if got.String() != "2025-03-15" {
		t.Errorf("expected 2025-03-15, got %s", got)
	}

	got = cashflow.ResolveCardSettlementDay(2025, time.February, 30)
	if got.String() != "2025-02-28" {
		t.Errorf("expected clip to 2025-02-28, got %s", got)
	}
}

func TestIsWithinRange(t *testing.T) {
	start := cashflow.MustParseDate("2025-03-10")
	end := cashflow.MustParseDate("2025-03-14")
	before := cashflow.MustParseDate("2025-03-01")

	if !cashflow.IsWithinRange(start, start, &end) {
		t.Error("start day should be within range")
	}
	if !cashflow.IsWithinRange(end, start, &end) {
		t.Error("end day should be within range")
	}
	if cashflow.IsWithinRange(end.AddDays(1), start, &end) {
		t.Error("day after end should be outside range")
	}
	if !cashflow.IsWithinRange(start, start, nil) {
		t.Error("missing end should mean the start day only")
	}
	if cashflow.IsWithinRange(start.AddDays(1), start, nil) {
		t.Error("missing end should not extend the range")
	}

	// End before start collapses to the single start date.
	if !cashflow.IsWithinRange(start, start, &before) {
		t.Error("inverted range should still contain its start")
	}
	if cashflow.IsWithinRange(before, start, &before) {
		t.Error("inverted range should not contain its end")
	}
}

func TestDateRange_Days(t *testing.T) {
	end := cashflow.MustParseDate("2025-03-14")
	r := cashflow.NewDateRange(cashflow.MustParseDate("2025-03-10"), &end)
	if r.Days() != 5 {
		t.Errorf("expected 5 days, got %d", r.Days())
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := cashflow.ParseDate("2025-13-01"); err == nil {
		t.Fatal("expected error for month 13")
	}
}
