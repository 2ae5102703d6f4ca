package cashflow

// =============================================================================
// DATE RANGE - The repetition window of entries and transfers
// =============================================================================

// DateRange is an inclusive [Start, End] window. Entries and transfers are stored
// once with their range and expanded lazily by the engine, one posting per day.
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange builds a range from an optional end. A missing end, or one before
// start, collapses the range to the single start date.
func NewDateRange(start Date, end *Date) DateRange {
	if end == nil || end.IsZero() || end.Before(start) {
		return DateRange{Start: start, End: start}
	}
	return DateRange{Start: start, End: *end}
}

// Contains returns true if d is within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days returns the number of calendar days covered by the range.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// IsWithinRange reports start <= d <= (end ?? start).
func IsWithinRange(d, start Date, end *Date) bool {
	return NewDateRange(start, end).Contains(d)
}
