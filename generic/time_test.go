package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/leave-ledger/generic"
)

func TestParseDate_KeepsCalendarDay(t *testing.T) {
	// GIVEN: A date string
	// WHEN: Parsed on a machine whose local zone is far from UTC
	// THEN: The calendar day is unchanged

	prev := time.Local
	time.Local = time.FixedZone("UTC-10", -10*3600)
	defer func() { time.Local = prev }()

	d, err := generic.ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-03-10" {
		t.Errorf("expected 2025-03-10, got %s", d)
	}
	if d.MonthOf() != generic.NewMonth(2025, time.March) {
		t.Errorf("expected March 2025, got %s", d.MonthOf())
	}
}

func TestParseDate_RFC3339UsesOwnDate(t *testing.T) {
	d, err := generic.ParseDate("2025-03-31T23:30:00-05:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-03-31" {
		t.Errorf("expected 2025-03-31, got %s", d)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := generic.ParseDate("10/03/2025")
	if !errors.Is(err, generic.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if !generic.IsClientError(err) {
		t.Error("invalid date should be a client error")
	}
}

func TestDayOf_UsesLocation(t *testing.T) {
	// 23:30 UTC on the 10th is already the 11th in Kolkata
	kolkata := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)

	if got := generic.DayOf(instant, time.UTC).String(); got != "2025-03-10" {
		t.Errorf("UTC day = %s", got)
	}
	if got := generic.DayOf(instant, kolkata).String(); got != "2025-03-11" {
		t.Errorf("IST day = %s", got)
	}
}

func TestDaysInclusive(t *testing.T) {
	a := generic.NewTimePoint(2025, time.March, 10)
	if n := generic.DaysInclusive(a, a); n != 1 {
		t.Errorf("same day = %d", n)
	}
	if n := generic.DaysInclusive(a, a.AddDays(2)); n != 3 {
		t.Errorf("three days = %d", n)
	}
	if n := generic.DaysInclusive(a, a.AddDays(-1)); n != 0 {
		t.Errorf("reversed = %d", n)
	}
	// Across the DST-free UTC storage, a leap February has 29 days
	feb := generic.NewMonth(2024, time.February)
	if n := feb.Period().Len(); n != 29 {
		t.Errorf("Feb 2024 = %d", n)
	}
}

func TestMonth_Walk(t *testing.T) {
	months := generic.MonthsBetween(generic.NewMonth(2024, time.November), generic.NewMonth(2025, time.February))
	want := []string{"2024-11", "2024-12", "2025-01", "2025-02"}
	if len(months) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(months))
	}
	for i, m := range months {
		if m.String() != want[i] {
			t.Errorf("month %d = %s, want %s", i, m, want[i])
		}
	}

	if got := generic.MonthsBetween(generic.NewMonth(2025, time.March), generic.NewMonth(2025, time.January)); got != nil {
		t.Errorf("reversed range should be empty, got %v", got)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := generic.ParseMonth("2025-03")
	if err != nil || m != generic.NewMonth(2025, time.March) {
		t.Errorf("ParseMonth(2025-03) = %v, %v", m, err)
	}
	m, err = generic.ParseMonth("2025-03-17")
	if err != nil || m != generic.NewMonth(2025, time.March) {
		t.Errorf("ParseMonth(2025-03-17) = %v, %v", m, err)
	}
	if m.Label() != "Mar 2025" {
		t.Errorf("Label = %q", m.Label())
	}
	if m.End().Day() != 31 {
		t.Errorf("End = %s", m.End())
	}
}

func TestPeriod_CapAt(t *testing.T) {
	p := generic.Period{
		Start: generic.NewTimePoint(2025, time.March, 1),
		End:   generic.NewTimePoint(2025, time.June, 30),
	}
	capped, ok := p.CapAt(generic.NewTimePoint(2025, time.April, 15))
	if !ok || capped.End.String() != "2025-04-15" {
		t.Errorf("CapAt = %v, %v", capped, ok)
	}
	if _, ok := p.CapAt(generic.NewTimePoint(2025, time.February, 1)); ok {
		t.Error("period after limit should be rejected")
	}
}

func TestNewPeriod_Invalid(t *testing.T) {
	_, err := generic.NewPeriod(generic.NewTimePoint(2025, time.March, 2), generic.NewTimePoint(2025, time.March, 1))
	if !errors.Is(err, generic.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}
