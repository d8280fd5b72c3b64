package timeoff

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// BALANCE SERVICE - Remaining days per leave type
// =============================================================================

// BalanceSource is what the balance snapshot is computed from.
type BalanceSource interface {
	ListLeaveTypes(ctx context.Context) ([]LeaveType, error)
	ListLeaveRequests(ctx context.Context, employeeID generic.EmployeeID) ([]LeaveRequest, error)
}

// BalanceService computes the BalanceSnapshot handed to Allocate.
type BalanceService struct {
	Source BalanceSource
}

// Snapshot returns, per paid leave type, the annual allocation minus what
// approved requests starting in asOf's calendar year have charged to it.
// Requests approved without an allocation charge their own type.
// Balances never go below zero.
func (s *BalanceService) Snapshot(ctx context.Context, employeeID generic.EmployeeID, asOf generic.TimePoint) (BalanceSnapshot, error) {
	types, err := s.Source.ListLeaveTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	requests, err := s.Source.ListLeaveRequests(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return ComputeSnapshot(types, requests, asOf.Year()), nil
}

// ComputeSnapshot is Snapshot over already-fetched data.
func ComputeSnapshot(types []LeaveType, requests []LeaveRequest, year int) BalanceSnapshot {
	snap := BalanceSnapshot{}
	for _, t := range types {
		if t.Paid {
			snap[t.Name] = t.AnnualAllocation
		}
	}

	charge := func(leaveType string, days decimal.Decimal) {
		for name, left := range snap {
			if SameType(name, leaveType) {
				snap[name] = left.Sub(days)
				return
			}
		}
	}

	for _, r := range requests {
		if r.Status != StatusApproved || r.StartDate.Year() != year {
			continue
		}
		if len(r.Allocation) == 0 {
			charge(r.LeaveType, r.TotalDays())
			continue
		}
		for _, e := range r.Allocation {
			charge(e.LeaveType, e.Days)
		}
	}

	for name, left := range snap {
		if left.IsNegative() {
			snap[name] = decimal.Zero
		}
	}
	return snap
}
