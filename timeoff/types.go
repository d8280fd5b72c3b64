// Package timeoff implements leave requests, their approval-time allocation
// across leave types, and the monthly leave ledger.
package timeoff

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

// LeaveType is a named kind of leave with its yearly allowance.
type LeaveType struct {
	Name             string          `json:"name"`
	AnnualAllocation decimal.Decimal `json:"annual_allocation"`
	Paid             bool            `json:"paid"`
	AllowHalfDay     bool            `json:"allow_half_day"`
	Color            string          `json:"color,omitempty"`
}

// SameType compares leave type names the way users type them.
func SameType(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// LeaveRequest is one request for leave. Allocation is nil until the request
// is approved; it is written once at approval and never recomputed.
type LeaveRequest struct {
	ID         string
	EmployeeID generic.EmployeeID
	LeaveType  string
	StartDate  generic.TimePoint
	EndDate    generic.TimePoint
	Status     RequestStatus
	Days       *decimal.Decimal
	HalfDay    bool
	Allocation Allocation
	Reason     string
	ApprovedBy string
	ApprovedAt *time.Time
	CreatedAt  time.Time
}

var halfDay = decimal.NewFromFloat(0.5)

// TotalDays is the number of leave days the request stands for: 0.5 for a
// half day, the explicit Days when set, else the inclusive calendar span.
func (r LeaveRequest) TotalDays() decimal.Decimal {
	switch {
	case r.HalfDay:
		return halfDay
	case r.Days != nil:
		return *r.Days
	default:
		return decimal.NewFromInt(int64(generic.DaysInclusive(r.StartDate, r.EndDate)))
	}
}

// Month is the ledger month the request is charged to.
func (r LeaveRequest) Month() generic.Month { return r.StartDate.MonthOf() }

// =============================================================================
// ALLOCATION
// =============================================================================

// AllocationEntry charges Days to one bucket (a leave type or the unpaid bucket).
type AllocationEntry struct {
	LeaveType string          `json:"type"`
	Days      decimal.Decimal `json:"days"`
}

// Allocation is the ordered list of charges for one approved request.
type Allocation []AllocationEntry

// Total sums the days of every entry.
func (a Allocation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range a {
		total = total.Add(e.Days)
	}
	return total
}

// For sums the days charged to one bucket.
func (a Allocation) For(leaveType string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range a {
		if SameType(e.LeaveType, leaveType) {
			total = total.Add(e.Days)
		}
	}
	return total
}

// BalanceSnapshot maps a leave type name to the days remaining in it.
// It is computed fresh for each approval and never stored.
type BalanceSnapshot map[string]decimal.Decimal

// Get looks a type up case-insensitively. Missing types have zero balance.
func (b BalanceSnapshot) Get(leaveType string) decimal.Decimal {
	if v, ok := b[leaveType]; ok {
		return v
	}
	for k, v := range b {
		if SameType(k, leaveType) {
			return v
		}
	}
	return decimal.Zero
}

// =============================================================================
// CREDITS
// =============================================================================

type CreditStatus string

const (
	CreditActive  CreditStatus = "active"
	CreditExpired CreditStatus = "expired"
	CreditUsed    CreditStatus = "used"
)

// CompensatoryCredit grants extra leave days, usually for working a holiday.
// It counts towards the extra credit of the month it was assigned in.
type CompensatoryCredit struct {
	ID           string
	EmployeeID   generic.EmployeeID
	Credits      decimal.Decimal
	AssignedDate generic.TimePoint
	ExpiryDate   generic.TimePoint
	Status       CreditStatus
	Reason       string
}

// ExtraCredit is a manual HR adjustment to one month's extra credit.
type ExtraCredit struct {
	ID         string
	EmployeeID generic.EmployeeID
	Month      generic.Month
	Days       decimal.Decimal
	Reason     string
	CreatedAt  time.Time
}

// =============================================================================
// LEDGER FRAGMENTS - Backend-reported month figures
// =============================================================================

// LedgerFragment carries the figures the backend reports for one month.
// A nil field was not reported; a non-nil zero is a real zero.
type LedgerFragment struct {
	Month       generic.Month
	Deducted    *decimal.Decimal
	LWP         *decimal.Decimal
	ExtraCredit *decimal.Decimal
}

// FragmentSet is the backend's per-month view. A month missing from Months
// receives no accrual.
type FragmentSet struct {
	Months map[generic.Month]LedgerFragment
}

// Get returns the month's fragment and whether the backend listed the month.
func (f *FragmentSet) Get(m generic.Month) (LedgerFragment, bool) {
	if f == nil || f.Months == nil {
		return LedgerFragment{}, false
	}
	frag, ok := f.Months[m]
	return frag, ok
}
