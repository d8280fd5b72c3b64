package timeoff_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func month(y int, m time.Month) generic.Month { return generic.NewMonth(y, m) }

func day(y int, m time.Month, dd int) generic.TimePoint { return generic.NewTimePoint(y, m, dd) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func approved(leaveType string, start, end generic.TimePoint) timeoff.LeaveRequest {
	return timeoff.LeaveRequest{
		ID:        leaveType + "-" + start.String(),
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
		Status:    timeoff.StatusApproved,
	}
}

func baseInput() timeoff.LedgerInput {
	return timeoff.LedgerInput{
		From:           month(2025, time.January),
		To:             month(2025, time.December),
		Today:          day(2025, time.June, 15),
		MonthlyAccrual: d("1.67"),
		UnpaidTypes:    []string{"LWP"},
	}
}

// =============================================================================
// OVERFLOW SPLIT
// =============================================================================

func TestLedger_OverflowBecomesLWP(t *testing.T) {
	// GIVEN: Opening 2, accrual 1.67, and 5 paid days in March
	in := baseInput()
	in.From = month(2025, time.March)
	in.To = month(2025, time.March)
	in.Opening = d("2")
	in.Requests = []timeoff.LeaveRequest{
		approved("Annual Leave", day(2025, time.March, 10), day(2025, time.March, 14)),
	}

	// WHEN: The ledger is built
	rows := timeoff.BuildLedger(in)

	// THEN: 3.67 is deducted, 1.33 is LWP and the closing bottoms out at zero
	require.Len(t, rows, 1)
	r := rows[0]
	assertDec(t, "3.67", r.Deducted)
	assertDec(t, "1.33", r.LWP)
	assertDec(t, "0", r.Closing)
	assert.False(t, r.Provisional)
}

func TestLedger_CurrentMonthIsProvisional(t *testing.T) {
	// GIVEN: Opening 5 in the current month and no leave
	in := baseInput()
	in.From = month(2025, time.June)
	in.Opening = d("5")

	rows := timeoff.BuildLedger(in)

	// THEN: Only June is produced, nothing deducted, closing carried as 6.67
	require.Len(t, rows, 1)
	r := rows[0]
	assert.True(t, r.Provisional)
	assertDec(t, "0", r.Deducted)
	assertDec(t, "0", r.LWP)
	assertDec(t, "6.67", r.Closing)

	// AND: The display suppresses accrual and closing
	disp := r.Display()
	assert.Equal(t, timeoff.PendingPlaceholder, disp.MonthlyCredit)
	assert.Equal(t, timeoff.PendingPlaceholder, disp.Closing)
	assert.Equal(t, "0.00", disp.Deducted)
	assert.Equal(t, "5.00", disp.Opening)
	assert.Equal(t, "Jun 2025", disp.Month)
}

func TestLedger_NoMonthsAfterToday(t *testing.T) {
	rows := timeoff.BuildLedger(baseInput())
	require.Len(t, rows, 6)
	assert.Equal(t, month(2025, time.June), rows[5].Month)

	in := baseInput()
	in.From = month(2025, time.July)
	assert.Empty(t, timeoff.BuildLedger(in))
}

func TestLedger_OpeningChainsFromClosing(t *testing.T) {
	in := baseInput()
	in.Requests = []timeoff.LeaveRequest{
		approved("Annual Leave", day(2025, time.February, 3), day(2025, time.February, 4)),
		approved("LWP", day(2025, time.March, 3), day(2025, time.March, 3)),
		approved("Sick Leave", day(2025, time.April, 1), day(2025, time.April, 10)),
	}

	rows := timeoff.BuildLedger(in)
	require.Len(t, rows, 6)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].Opening.Equal(rows[i-1].Closing), "row %d opening %s != previous closing %s",
			i, rows[i].Opening, rows[i-1].Closing)
	}
	for _, r := range rows {
		assert.False(t, r.Closing.IsNegative(), "closing negative in %s", r.Month)
		assert.False(t, r.LWP.IsNegative())
	}

	// April: 10 days against 1.67 + 1.67 - 2 + 1.67 - 1 + 1.67 = 3.68 available
	assertDec(t, "3.68", rows[3].Deducted)
	assertDec(t, "6.32", rows[3].LWP)
	assertDec(t, "0", rows[3].Closing)
}

func TestLedger_UnpaidFitsIntoBalance(t *testing.T) {
	// Unpaid days are only LWP when the balance cannot absorb them
	in := baseInput()
	in.From = month(2025, time.March)
	in.To = month(2025, time.March)
	in.Opening = d("4")
	in.Requests = []timeoff.LeaveRequest{approved("LWP", day(2025, time.March, 3), day(2025, time.March, 4))}

	r := timeoff.BuildLedger(in)[0]
	assertDec(t, "2", r.RawUnpaid.Value)
	assertDec(t, "2", r.Deducted)
	assertDec(t, "0", r.LWP)
}

func TestLedger_Idempotent(t *testing.T) {
	in := baseInput()
	in.Requests = []timeoff.LeaveRequest{
		approved("Annual Leave", day(2025, time.January, 6), day(2025, time.January, 8)),
	}
	in.Credits = []timeoff.CompensatoryCredit{{Credits: d("1"), AssignedDate: day(2025, time.February, 2)}}
	in.Attendance = []attendance.Day{{Date: day(2025, time.January, 2), Status: attendance.StatusPresent}}

	first := timeoff.BuildLedger(in)
	second := timeoff.BuildLedger(in)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Display(), second[i].Display())
		assert.True(t, first[i].Closing.Equal(second[i].Closing))
	}
}

// =============================================================================
// REQUEST DAY COUNTS
// =============================================================================

func TestLedger_RequestDayCounts(t *testing.T) {
	in := baseInput()
	in.From = month(2025, time.March)
	in.To = month(2025, time.March)
	in.Opening = d("30")

	half := approved("Casual Leave", day(2025, time.March, 3), day(2025, time.March, 3))
	half.HalfDay = true
	explicit := approved("Annual Leave", day(2025, time.March, 10), day(2025, time.March, 14))
	explicit.Days = dp("3") // weekend excluded by the caller
	span := approved("Sick Leave", day(2025, time.March, 20), day(2025, time.March, 21))
	pending := approved("Sick Leave", day(2025, time.March, 25), day(2025, time.March, 25))
	pending.Status = timeoff.StatusPending
	crossing := approved("Annual Leave", day(2025, time.March, 31), day(2025, time.April, 2))

	in.Requests = []timeoff.LeaveRequest{half, explicit, span, pending, crossing}

	r := timeoff.BuildLedger(in)[0]
	// 0.5 + 3 + 2 + 3 (charged wholly to its start month); pending ignored
	assertDec(t, "8.5", r.RawPaid.Value)
	assert.False(t, r.RawPaid.IsBackend())
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestLedger_PresentAbsentAndEffective(t *testing.T) {
	in := baseInput()
	in.From = month(2025, time.March)
	in.To = month(2025, time.March)
	in.Opening = d("1")
	in.Attendance = []attendance.Day{
		{Date: day(2025, time.March, 3), Status: attendance.StatusPresent},
		{Date: day(2025, time.March, 4), Status: attendance.StatusLate},
		{Date: day(2025, time.March, 5), Status: attendance.StatusHalfDayPresent},
		{Date: day(2025, time.March, 6), Status: attendance.StatusAbsent},
		{Date: day(2025, time.March, 7), Status: attendance.StatusAbsent},
		{Date: day(2025, time.March, 10), Status: attendance.StatusHalfDayAbsent},
		{Date: day(2025, time.April, 1), Status: attendance.StatusPresent},
	}
	in.Requests = []timeoff.LeaveRequest{approved("Annual Leave", day(2025, time.March, 6), day(2025, time.March, 6))}

	r := timeoff.BuildLedger(in)[0]
	assertDec(t, "2.5", r.Present)
	assertDec(t, "2.5", r.Absent)
	assertDec(t, "1", r.Deducted)
	assertDec(t, "3.5", r.EffectivePresent)
	assertDec(t, "1.5", r.EffectiveAbsent)
	assertDec(t, "3.5", r.PaidDays)
}

// =============================================================================
// CREDITS AND BACKEND FRAGMENTS
// =============================================================================

func TestLedger_ExtraCreditFromManualAndCompensatory(t *testing.T) {
	in := baseInput()
	in.From = month(2025, time.March)
	in.To = month(2025, time.March)
	in.ManualExtra = map[generic.Month]decimal.Decimal{month(2025, time.March): d("0.5")}
	in.Credits = []timeoff.CompensatoryCredit{
		{Credits: d("1"), AssignedDate: day(2025, time.March, 9), Status: timeoff.CreditActive},
		{Credits: d("1"), AssignedDate: day(2025, time.February, 9), Status: timeoff.CreditActive},
	}

	r := timeoff.BuildLedger(in)[0]
	assertDec(t, "1.5", r.ExtraCredit.Value)
	assert.False(t, r.ExtraCredit.IsBackend())
	assertDec(t, "3.17", r.Closing)
}

func TestLedger_BackendZeroIsHonoured(t *testing.T) {
	// GIVEN: Local data says 2 paid days, the backend explicitly reports 0
	in := baseInput()
	in.From = month(2025, time.March)
	in.To = month(2025, time.March)
	in.Requests = []timeoff.LeaveRequest{approved("Annual Leave", day(2025, time.March, 3), day(2025, time.March, 4))}
	in.Credits = []timeoff.CompensatoryCredit{{Credits: d("1"), AssignedDate: day(2025, time.March, 9)}}
	in.Fragments = &timeoff.FragmentSet{Months: map[generic.Month]timeoff.LedgerFragment{
		month(2025, time.March): {Month: month(2025, time.March), Deducted: dp("0"), ExtraCredit: dp("0")},
	}}

	r := timeoff.BuildLedger(in)[0]

	// THEN: The reported zeros win and are tagged as backend figures
	assert.True(t, r.RawPaid.IsBackend())
	assertDec(t, "0", r.Deducted)
	assert.True(t, r.ExtraCredit.IsBackend())
	assertDec(t, "0", r.ExtraCredit.Value)

	// AND: The unreported LWP field is still computed locally
	assert.False(t, r.RawUnpaid.IsBackend())
	assertDec(t, "1.67", r.Closing)
}

func TestLedger_AccrualGating(t *testing.T) {
	// GIVEN: The backend lists only March onwards (hired in March)
	in := baseInput()
	in.Fragments = &timeoff.FragmentSet{Months: map[generic.Month]timeoff.LedgerFragment{}}
	for _, m := range generic.MonthsBetween(month(2025, time.March), month(2025, time.June)) {
		in.Fragments.Months[m] = timeoff.LedgerFragment{Month: m}
	}

	rows := timeoff.BuildLedger(in)
	require.Len(t, rows, 6)

	// THEN: January and February get no accrual
	assert.False(t, rows[0].Accrued)
	assertDec(t, "0", rows[0].MonthlyCredit)
	assertDec(t, "0", rows[1].MonthlyCredit)
	assert.True(t, rows[2].Accrued)
	assertDec(t, "1.67", rows[2].MonthlyCredit)
	assertDec(t, "6.68", rows[5].Closing)

	// AND: Without a fragment set every month accrues
	in.Fragments = nil
	rows = timeoff.BuildLedger(in)
	assertDec(t, "1.67", rows[0].MonthlyCredit)
}
