/*
Package attendance captures check-in/check-out sessions and turns them into
worked time and present/absent counts.

PURPOSE:
  An employee has at most one attendance Day per calendar day. A Day holds
  the work sessions of that day as time-of-day text; durations are never
  stored, they are recomputed from the sessions every time they are needed.

KEY CONCEPTS IN THIS FILE (types.go):
  - Session: One [Start, End) interval. An empty End means "still running".
  - Status:  How the day counts towards the monthly present/absent tallies.
  - Day:     The per-employee, per-date record.

SEE ALSO:
  - aggregate.go: Worked-seconds arithmetic
  - timer.go: The live ticking display of an open session
  - service.go: Check-in and check-out
*/
package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is one work interval as time-of-day text (HH:MM or HH:MM:SS).
type Session struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Open reports whether the session has no end yet.
func (s Session) Open() bool { return s.End == "" }

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPresent        Status = "present"
	StatusLate           Status = "late"
	StatusAbsent         Status = "absent"
	StatusHalfDayPresent Status = "half_day_present"
	StatusHalfDayAbsent  Status = "half_day_absent"
)

var (
	half = decimal.NewFromFloat(0.5)
	one  = decimal.NewFromInt(1)
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusHalfDayPresent, StatusHalfDayAbsent:
		return true
	}
	return false
}

// Counts returns how much the status adds to the month's present and absent tallies.
// Late still counts as a full present day.
func (s Status) Counts() (present, absent decimal.Decimal) {
	switch s {
	case StatusPresent, StatusLate:
		return one, decimal.Zero
	case StatusHalfDayPresent:
		return half, decimal.Zero
	case StatusHalfDayAbsent:
		return decimal.Zero, half
	case StatusAbsent:
		return decimal.Zero, one
	}
	return decimal.Zero, decimal.Zero
}

// =============================================================================
// DAY
// =============================================================================

// Day is the attendance record of one employee on one calendar day.
//
// HR may enter a day manually with only CheckIn/CheckOut and no sessions;
// such a day is treated as a single session spanning the two.
type Day struct {
	EmployeeID generic.EmployeeID
	Date       generic.TimePoint
	Sessions   []Session
	Status     Status
	CheckIn    string
	CheckOut   string
}

// EffectiveSessions returns the sessions worked time is computed from.
func (d Day) EffectiveSessions() []Session {
	if len(d.Sessions) > 0 {
		return d.Sessions
	}
	if d.CheckIn != "" {
		return []Session{{Start: d.CheckIn, End: d.CheckOut}}
	}
	return nil
}

// HasOpenSession reports whether any effective session is still running.
func (d Day) HasOpenSession() bool {
	return openIndex(d.EffectiveSessions()) >= 0
}

// WorkedSeconds is the day's total worked time as of now (seconds since midnight).
func (d Day) WorkedSeconds(now int) int {
	return WorkedSeconds(d.EffectiveSessions(), now)
}

func openIndex(sessions []Session) int {
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Open() {
			return i
		}
	}
	return -1
}

// Counts tallies present and absent units over a set of days.
func Counts(days []Day) (present, absent decimal.Decimal) {
	present, absent = decimal.Zero, decimal.Zero
	for _, d := range days {
		p, a := d.Status.Counts()
		present = present.Add(p)
		absent = absent.Add(a)
	}
	return present, absent
}
