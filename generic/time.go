package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - A calendar day, independent of any timezone
// =============================================================================

// TimePoint is a calendar day. It is always stored as midnight UTC so that
// "2025-03-10" means the same day regardless of where the server runs;
// converting an instant to a TimePoint must go through DayOf with the
// location the day is defined in.
type TimePoint struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of instant t as observed in loc.
func DayOf(t time.Time, loc *time.Location) TimePoint {
	if loc != nil {
		t = t.In(loc)
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "YYYY-MM-DD". A full RFC3339 timestamp is accepted too,
// in which case only its own calendar date is kept (no zone shifting).
func ParseDate(s string) (TimePoint, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
	}
	return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }
func (tp TimePoint) MonthOf() Month        { return Month{Year: tp.Year(), Month: tp.Month()} }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

// DaysBetween counts whole days from -> to (negative when to is earlier).
func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }

// DaysInclusive counts calendar days in [from, to]; zero when to is before from.
func DaysInclusive(from, to TimePoint) int {
	n := DaysBetween(from, to) + 1
	if n < 0 {
		return 0
	}
	return n
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return TimePoint{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// =============================================================================
// MONTH - The unit of the leave ledger
// =============================================================================

// Month is a calendar month. The zero value is invalid.
type Month struct {
	Year  int
	Month time.Month
}

const MonthLayout = "2006-01"

func NewMonth(year int, month time.Month) Month {
	return StartOfMonth(year, month).MonthOf()
}

// ParseMonth accepts "YYYY-MM" or any date ParseDate accepts.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(MonthLayout, s); err == nil {
		return Month{Year: t.Year(), Month: t.Month()}, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return Month{}, err
	}
	return d.MonthOf(), nil
}

func (m Month) Start() TimePoint { return StartOfMonth(m.Year, m.Month) }
func (m Month) End() TimePoint   { return EndOfMonth(m.Year, m.Month) }
func (m Month) Next() Month      { return m.Start().AddMonths(1).MonthOf() }
func (m Month) Prev() Month      { return m.Start().AddMonths(-1).MonthOf() }
func (m Month) Period() Period   { return Period{Start: m.Start(), End: m.End()} }
func (m Month) IsZero() bool     { return m.Year == 0 && m.Month == 0 }
func (m Month) String() string   { return m.Start().Time.Format(MonthLayout) }

func (m Month) Contains(tp TimePoint) bool {
	return tp.Year() == m.Year && tp.Month() == m.Month
}

func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m Month) After(other Month) bool { return other.Before(m) }

// Label is the human form used in exports, e.g. "Mar 2025".
func (m Month) Label() string { return m.Start().Time.Format("Jan 2006") }

// MonthsBetween lists every month from first to last inclusive.
// It returns nil when last is before first.
func MonthsBetween(first, last Month) []Month {
	var months []Month
	for m := first; !m.After(last); m = m.Next() {
		months = append(months, m)
	}
	return months
}
