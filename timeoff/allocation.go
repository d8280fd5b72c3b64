/*
allocation.go - Splits an approved request across leave types

PURPOSE:
  When a request is approved, its days are charged in priority order:

    1. The requested type's own remaining balance
    2. The primary (annual-style) type's balance, if different
    3. Whatever is left goes to the unpaid bucket ("LWP")

  Step 3 never fails, so the allocation always sums to the request's total.

EXAMPLE:
  3 days of Sick Leave, Sick balance 1, Annual balance 1:

    [{Sick Leave, 1}, {Annual Leave, 1}, {LWP, 1}]

ONE SHOT:
  The allocation is computed once at approval and stored on the request.
  The monthly ledger does its own overflow split from raw requests and may
  disagree; the two figures are kept separate on purpose.

SEE ALSO:
  - service.go: RequestService.Approve runs Allocate
  - ledger.go: The month-level overflow split
*/
package timeoff

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultUnpaidBucket labels days no paid balance could cover.
	DefaultUnpaidBucket = "LWP"

	// DefaultPrimaryType is used when no configured type looks like annual leave.
	DefaultPrimaryType = "Annual Leave"
)

// AllocationInput is everything Allocate needs. Balances is read, never written.
type AllocationInput struct {
	TotalDays     decimal.Decimal
	RequestedType string
	PrimaryType   string
	Balances      BalanceSnapshot
	UnpaidBucket  string

	// RequestedUnpaid marks the requested type itself as unpaid leave; the
	// whole request is then charged to the unpaid bucket.
	RequestedUnpaid bool
}

// Allocate splits TotalDays across requested type, primary type and the
// unpaid bucket. Negative balances count as zero. The result sums exactly to
// TotalDays; a non-positive total yields an empty allocation.
func Allocate(in AllocationInput) Allocation {
	unpaid := in.UnpaidBucket
	if unpaid == "" {
		unpaid = DefaultUnpaidBucket
	}

	remaining := in.TotalDays
	if !remaining.IsPositive() {
		return Allocation{}
	}

	if in.RequestedUnpaid || SameType(in.RequestedType, unpaid) {
		return Allocation{{LeaveType: unpaid, Days: remaining}}
	}

	var out Allocation
	take := func(leaveType string) {
		if !remaining.IsPositive() {
			return
		}
		available := in.Balances.Get(leaveType)
		if available.IsNegative() {
			available = decimal.Zero
		}
		use := decimal.Min(remaining, available)
		if use.IsPositive() {
			out = append(out, AllocationEntry{LeaveType: leaveType, Days: use})
			remaining = remaining.Sub(use)
		}
	}

	take(in.RequestedType)
	if in.PrimaryType != "" && !SameType(in.PrimaryType, in.RequestedType) {
		take(in.PrimaryType)
	}
	if remaining.IsPositive() {
		out = append(out, AllocationEntry{LeaveType: unpaid, Days: remaining})
	}
	return out
}

// PrimaryType picks the fallback type for step 2: the first type whose name
// contains "annual", else the paid type with the largest annual allocation,
// else fallback (DefaultPrimaryType when empty).
func PrimaryType(types []LeaveType, fallback string) string {
	for _, t := range types {
		if strings.Contains(strings.ToLower(t.Name), "annual") {
			return t.Name
		}
	}

	best := -1
	for i, t := range types {
		if !t.Paid {
			continue
		}
		if best < 0 || t.AnnualAllocation.GreaterThan(types[best].AnnualAllocation) {
			best = i
		}
	}
	if best >= 0 {
		return types[best].Name
	}

	if fallback == "" {
		return DefaultPrimaryType
	}
	return fallback
}
