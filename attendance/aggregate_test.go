package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
)

func clock(t *testing.T, text string) int {
	t.Helper()
	s, ok := generic.ParseClock(text)
	if !ok {
		t.Fatalf("bad clock %q", text)
	}
	return s
}

func TestWorkedSeconds_TwoClosedSessions(t *testing.T) {
	// GIVEN: A morning and an afternoon session
	sessions := []attendance.Session{
		{Start: "09:00", End: "12:00"},
		{Start: "13:00", End: "17:30"},
	}

	// WHEN: Summed at any time of day
	total := attendance.WorkedSeconds(sessions, clock(t, "20:00"))

	// THEN: 3h + 4h30
	assert.Equal(t, 27000, total)
	assert.Equal(t, "07:30:00", generic.FormatSeconds(float64(total)))
}

func TestWorkedSeconds_MalformedSessionContributesZero(t *testing.T) {
	sessions := []attendance.Session{
		{Start: "bad", End: "17:00"},
		{Start: "09:00", End: "nope"},
		{Start: "10:00", End: "11:00"},
	}
	assert.Equal(t, 3600, attendance.WorkedSeconds(sessions, clock(t, "12:00")))
}

func TestWorkedSeconds_EndBeforeStartClampsToZero(t *testing.T) {
	sessions := []attendance.Session{{Start: "17:00", End: "09:00"}}
	assert.Equal(t, 0, attendance.WorkedSeconds(sessions, clock(t, "18:00")))
}

func TestWorkedSeconds_OpenSessionUsesNow(t *testing.T) {
	sessions := []attendance.Session{
		{Start: "09:00", End: "12:00"},
		{Start: "13:00"},
	}
	assert.Equal(t, 3*3600+30*60, attendance.WorkedSeconds(sessions, clock(t, "13:30")))

	// now before the open session's start clamps that session to zero
	assert.Equal(t, 3*3600, attendance.WorkedSeconds(sessions, clock(t, "12:30")))
}

func TestWorkedSeconds_MonotoneInNow(t *testing.T) {
	sessions := []attendance.Session{{Start: "08:00", End: "09:00"}, {Start: "10:00"}}
	prev := -1
	for now := 0; now < 86400; now += 900 {
		got := attendance.WorkedSeconds(sessions, now)
		assert.GreaterOrEqual(t, got, prev, "worked time went backwards at %d", now)
		assert.GreaterOrEqual(t, got, 0)
		prev = got
	}
}

func TestDay_ManualEntryIsOneSession(t *testing.T) {
	day := attendance.Day{CheckIn: "09:15", CheckOut: "18:15", Status: attendance.StatusPresent}
	assert.Len(t, day.EffectiveSessions(), 1)
	assert.Equal(t, 9*3600, day.WorkedSeconds(clock(t, "23:00")))
	assert.False(t, day.HasOpenSession())

	open := attendance.Day{CheckIn: "09:15"}
	assert.True(t, open.HasOpenSession())
}

func TestCounts(t *testing.T) {
	days := []attendance.Day{
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusLate},
		{Status: attendance.StatusHalfDayPresent},
		{Status: attendance.StatusHalfDayAbsent},
		{Status: attendance.StatusAbsent},
	}
	present, absent := attendance.Counts(days)
	assert.Equal(t, "2.5", present.String())
	assert.Equal(t, "1.5", absent.String())
}
