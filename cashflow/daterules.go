package cashflow

import "time"

// =============================================================================
// DATE RULES - Calendar triggers for the recurring rules
// =============================================================================
//
// Business days are Monday to Friday. There is no holiday calendar.

// ResolveSalaryDay returns the payday for a month: payDay clipped to the month
// length, rolled back to Friday when it lands on a weekend.
func ResolveSalaryDay(year int, month time.Month, payDay int) Date {
	d := NewDate(year, month, clipDay(year, month, payDay))
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(-2)
	}
	return d
}

// ResolveVoucherCreditDay returns the second-to-last business day of the month.
func ResolveVoucherCreditDay(year int, month time.Month) Date {
	d := EndOfMonth(year, month)
	counted := 0
	for {
		if d.IsBusinessDay() {
			counted++
			if counted == 2 {
				return d
			}
		}
		d = d.AddDays(-1)
	}
}

// ResolveCardSettlementDay returns dueDay clipped to the month length. Unlike the
// salary rule, a weekend due day is not moved.
func ResolveCardSettlementDay(year int, month time.Month, dueDay int) Date {
	return NewDate(year, month, clipDay(year, month, dueDay))
}
