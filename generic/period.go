package generic

// =============================================================================
// PERIOD - An inclusive range of calendar days
// =============================================================================

// Period is the inclusive day range [Start, End].
//
// Examples:
//   - One ledger month: Mar 1 - Mar 31
//   - A ledger report: Jan 1 - Jun 30
//   - A leave request: Mar 10 - Mar 12
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod validates that end is not before start.
func NewPeriod(start, end TimePoint) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Len is the number of calendar days in the period.
func (p Period) Len() int { return DaysInclusive(p.Start, p.End) }

// Months lists the calendar months the period touches, in order.
func (p Period) Months() []Month {
	return MonthsBetween(p.Start.MonthOf(), p.End.MonthOf())
}

// CapAt returns the period with its end pulled back to limit when it runs past it.
// The second result is false when the whole period lies after limit.
func (p Period) CapAt(limit TimePoint) (Period, bool) {
	if p.Start.After(limit) {
		return Period{}, false
	}
	if p.End.After(limit) {
		p.End = limit
	}
	return p, true
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
