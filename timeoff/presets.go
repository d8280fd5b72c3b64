/*
presets.go - Ready-made leave types

PURPOSE:
  A fresh install needs a sensible set of leave types before HR configures
  anything. These are the ones seeded on first start and by the demo
  scenarios.

AVAILABLE TYPES:
  Annual Leave: 20 days, paid, half days allowed (the primary type)
  Sick Leave:   10 days, paid, half days allowed
  Casual Leave:  7 days, paid, half days allowed
  LWP:           unpaid, no allowance

SEE ALSO:
  - factory/leavetype.go: JSON-based leave type creation
  - allocation.go: PrimaryType picks "Annual Leave" from this set
*/
package timeoff

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMMON LEAVE TYPES
// =============================================================================

func AnnualLeave() LeaveType {
	return LeaveType{Name: "Annual Leave", AnnualAllocation: decimal.NewFromInt(20), Paid: true, AllowHalfDay: true, Color: "#2563eb"}
}

func SickLeave() LeaveType {
	return LeaveType{Name: "Sick Leave", AnnualAllocation: decimal.NewFromInt(10), Paid: true, AllowHalfDay: true, Color: "#dc2626"}
}

func CasualLeave() LeaveType {
	return LeaveType{Name: "Casual Leave", AnnualAllocation: decimal.NewFromInt(7), Paid: true, AllowHalfDay: true, Color: "#16a34a"}
}

// UnpaidLeave is the type whose days always land in the unpaid bucket.
func UnpaidLeave(label string) LeaveType {
	if label == "" {
		label = DefaultUnpaidBucket
	}
	return LeaveType{Name: label, AnnualAllocation: decimal.Zero, Paid: false, AllowHalfDay: true, Color: "#6b7280"}
}

// DefaultLeaveTypes is the seed set.
func DefaultLeaveTypes(unpaidLabel string) []LeaveType {
	return []LeaveType{AnnualLeave(), SickLeave(), CasualLeave(), UnpaidLeave(unpaidLabel)}
}

// =============================================================================
// JSON HELPERS - For factory.ParseLeaveType
// =============================================================================

// LeaveTypeJSON renders a leave type definition the factory accepts.
func LeaveTypeJSON(name string, annualDays float64, paid, allowHalfDay bool) string {
	b, _ := json.Marshal(map[string]any{
		"name":              name,
		"annual_allocation": annualDays,
		"paid":              paid,
		"allow_half_day":    allowHalfDay,
	})
	return string(b)
}
