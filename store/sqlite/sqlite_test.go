package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEmployees(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, Employee{
		ID: "alice", Name: "Alice", HireDate: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	}))

	emp, err := s.GetEmployee(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, generic.NewMonth(2025, time.March), emp.HireMonth())

	missing, err := s.GetEmployee(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLeaveTypes_SeedOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.SeedLeaveTypes(ctx, timeoff.DefaultLeaveTypes("LWP"))
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedLeaveTypes(ctx, timeoff.DefaultLeaveTypes("LWP"))
	require.NoError(t, err)
	assert.False(t, seeded)

	types, err := s.ListLeaveTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, len(timeoff.DefaultLeaveTypes("LWP")))

	// Names are unique ignoring case
	err = s.CreateLeaveType(ctx, timeoff.LeaveType{Name: "annual leave", AnnualAllocation: dec("5"), Paid: true})
	assert.ErrorIs(t, err, generic.ErrInvalidLeaveType)
}

func TestLeaveRequest_AllocationIsWriteOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	days := dec("2")
	req := timeoff.LeaveRequest{
		ID:         "r1",
		EmployeeID: "alice",
		LeaveType:  "Annual Leave",
		StartDate:  generic.NewTimePoint(2025, time.March, 3),
		EndDate:    generic.NewTimePoint(2025, time.March, 4),
		Status:     timeoff.StatusPending,
		Days:       &days,
	}
	require.NoError(t, s.SaveLeaveRequest(ctx, req))

	got, err := s.GetLeaveRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, got.Allocation)
	assert.Equal(t, "2", got.Days.String())
	assert.Equal(t, req.StartDate, got.StartDate)

	// GIVEN: The request is approved with an allocation
	req.Status = timeoff.StatusApproved
	req.Allocation = timeoff.Allocation{{LeaveType: "Annual Leave", Days: dec("1.5")}, {LeaveType: "LWP", Days: dec("0.5")}}
	require.NoError(t, s.SaveLeaveRequest(ctx, req))

	// WHEN: A later save tries to replace the allocation
	req.Status = timeoff.StatusCancelled
	req.Allocation = timeoff.Allocation{{LeaveType: "Annual Leave", Days: dec("2")}}
	require.NoError(t, s.SaveLeaveRequest(ctx, req))

	// THEN: The status changes but the original allocation survives
	got, err = s.GetLeaveRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, timeoff.StatusCancelled, got.Status)
	require.Len(t, got.Allocation, 2)
	assert.True(t, got.Allocation.For("LWP").Equal(dec("0.5")))

	pending, err := s.ListPendingRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestLeaveRequest_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetLeaveRequest(context.Background(), "nope")
	assert.ErrorIs(t, err, generic.ErrRequestNotFound)
	assert.True(t, generic.IsNotFound(err))
}

func TestAttendanceDays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	march3 := generic.NewTimePoint(2025, time.March, 3)
	require.NoError(t, s.SaveAttendanceDay(ctx, attendance.Day{
		EmployeeID: "alice",
		Date:       march3,
		Sessions:   []attendance.Session{{Start: "09:00:00", End: "12:00:00"}, {Start: "13:00:00"}},
		Status:     attendance.StatusPresent,
	}))
	require.NoError(t, s.SaveAttendanceDay(ctx, attendance.Day{
		EmployeeID: "alice",
		Date:       generic.NewTimePoint(2025, time.April, 1),
		Status:     attendance.StatusAbsent,
	}))

	day, err := s.GetAttendanceDay(ctx, "alice", march3)
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.True(t, day.HasOpenSession())
	assert.Len(t, day.Sessions, 2)

	none, err := s.GetAttendanceDay(ctx, "alice", march3.AddDays(1))
	require.NoError(t, err)
	assert.Nil(t, none)

	march := generic.NewMonth(2025, time.March).Period()
	days, err := s.ListAttendance(ctx, "alice", march)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, march3, days[0].Date)
}

func TestCredits_Expire(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCredit(ctx, timeoff.CompensatoryCredit{
		ID: "c1", EmployeeID: "alice", Credits: dec("1"),
		AssignedDate: generic.NewTimePoint(2025, time.January, 5),
		ExpiryDate:   generic.NewTimePoint(2025, time.March, 31),
		Status:       timeoff.CreditActive,
	}))
	require.NoError(t, s.SaveCredit(ctx, timeoff.CompensatoryCredit{
		ID: "c2", EmployeeID: "alice", Credits: dec("0.5"),
		AssignedDate: generic.NewTimePoint(2025, time.May, 5),
		ExpiryDate:   generic.NewTimePoint(2025, time.August, 31),
		Status:       timeoff.CreditActive,
	}))

	n, err := s.ExpireCredits(ctx, generic.NewTimePoint(2025, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	credits, err := s.ListCredits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, credits, 2)
	assert.Equal(t, timeoff.CreditExpired, credits[0].Status)
	assert.Equal(t, timeoff.CreditActive, credits[1].Status)
}

func TestLedgerFragments_NullIsNotZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	zero := decimal.Zero
	march := generic.NewMonth(2025, time.March)
	require.NoError(t, s.SaveLedgerFragment(ctx, "alice", timeoff.LedgerFragment{Month: march, Deducted: &zero}))

	frags, err := s.ListLedgerFragments(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, march, frags[0].Month)
	require.NotNil(t, frags[0].Deducted)
	assert.True(t, frags[0].Deducted.IsZero())
	assert.Nil(t, frags[0].LWP)
	assert.Nil(t, frags[0].ExtraCredit)
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetSetting(ctx, timeoff.SettingMonthlyAccrual)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetSetting(ctx, timeoff.SettingMonthlyAccrual, "2"))
	v, err = s.GetSetting(ctx, timeoff.SettingMonthlyAccrual)
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, s.SetSetting(ctx, timeoff.SettingMonthlyAccrual, ""))
	all, err := s.ListSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExtraCredits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveExtraCredit(ctx, timeoff.ExtraCredit{
		ID: "e1", EmployeeID: "alice", Month: generic.NewMonth(2025, time.February), Days: dec("0.5"),
	}))
	list, err := s.ListExtraCredits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "0.5", list[0].Days.String())
	assert.Equal(t, generic.NewMonth(2025, time.February), list[0].Month)
}
