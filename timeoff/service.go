/*
service.go - Leave request workflow and ledger assembly

PURPOSE:
  The pure pieces (Allocate, BuildLedger) never touch storage. This file is
  the glue that fetches their inputs and persists their outputs:

  RequestService:
    submit -> pending
    pending -> approved   (lock, snapshot, allocate, one write)
    pending -> rejected
    pending|approved -> cancelled

  LedgerService:
    Gathers requests, attendance, credits and backend fragments for one
    employee and runs BuildLedger. A failed fetch is logged and replaced
    by an empty input; the ledger is always produced.

APPROVAL WRITE:
  The allocation is attached to the request and saved in the same write as
  the status change. If that write fails nothing else has been touched, so
  the computed allocation is simply dropped.

SEE ALSO:
  - allocation.go, ledger.go, balance.go
  - lock/: Serialises approvals per employee
*/
package timeoff

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/lock"
)

// SettingMonthlyAccrual is the settings key that overrides the configured accrual.
const SettingMonthlyAccrual = "monthly_accrual"

// DefaultApprovalLockTTL bounds how long a crashed approval can hold the lock.
const DefaultApprovalLockTTL = 10 * time.Second

// UnpaidTypes returns the names whose days count as unpaid leave: the unpaid
// bucket label plus every configured type that is not paid.
func UnpaidTypes(types []LeaveType, label string) []string {
	if label == "" {
		label = DefaultUnpaidBucket
	}
	names := []string{label}
	for _, t := range types {
		if !t.Paid {
			names = append(names, t.Name)
		}
	}
	return names
}

// =============================================================================
// REQUEST SERVICE
// =============================================================================

// RequestStore persists leave requests.
type RequestStore interface {
	BalanceSource
	GetLeaveRequest(ctx context.Context, id string) (LeaveRequest, error)
	SaveLeaveRequest(ctx context.Context, req LeaveRequest) error
	ListPendingRequests(ctx context.Context) ([]LeaveRequest, error)
}

type RequestService struct {
	Store           RequestStore
	Locker          lock.Locker
	UnpaidLabel     string
	PrimaryFallback string
	LockTTL         time.Duration
	Logger          *slog.Logger
	NewID           func() string
}

func (s *RequestService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *RequestService) unpaidLabel() string {
	if s.UnpaidLabel == "" {
		return DefaultUnpaidBucket
	}
	return s.UnpaidLabel
}

func (s *RequestService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// Submit validates and stores a new pending request.
func (s *RequestService) Submit(ctx context.Context, req LeaveRequest, now time.Time) (LeaveRequest, error) {
	if req.EmployeeID == "" {
		return LeaveRequest{}, &generic.ValidationError{Field: "employee_id", Message: "required"}
	}
	if req.StartDate.IsZero() {
		return LeaveRequest{}, &generic.ValidationError{Field: "start_date", Message: "required", Err: generic.ErrInvalidDate}
	}
	if req.EndDate.IsZero() {
		req.EndDate = req.StartDate
	}
	if req.EndDate.Before(req.StartDate) {
		return LeaveRequest{}, generic.ErrInvalidPeriod
	}
	if req.Days != nil && !req.Days.IsPositive() {
		return LeaveRequest{}, &generic.ValidationError{Field: "days", Message: "must be positive"}
	}

	types, err := s.Store.ListLeaveTypes(ctx)
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("list leave types: %w", err)
	}
	lt, known := findType(types, req.LeaveType)
	if !known && !SameType(req.LeaveType, s.unpaidLabel()) {
		return LeaveRequest{}, &generic.ValidationError{
			Field:   "leave_type",
			Message: fmt.Sprintf("unknown leave type %q", req.LeaveType),
			Err:     generic.ErrInvalidLeaveType,
		}
	}
	if known {
		req.LeaveType = lt.Name
	}
	if req.HalfDay {
		if !req.StartDate.Equal(req.EndDate) {
			return LeaveRequest{}, &generic.ValidationError{Field: "half_day", Message: "only single-day requests can be half days"}
		}
		if known && !lt.AllowHalfDay {
			return LeaveRequest{}, &generic.ValidationError{Field: "half_day", Message: fmt.Sprintf("%s does not allow half days", lt.Name)}
		}
	}

	req.ID = s.newID()
	req.Status = StatusPending
	req.Allocation = nil
	req.ApprovedBy = ""
	req.ApprovedAt = nil
	req.CreatedAt = now

	if err := s.Store.SaveLeaveRequest(ctx, req); err != nil {
		return LeaveRequest{}, fmt.Errorf("save leave request: %w", err)
	}
	s.logger().Info("leave request submitted",
		"request_id", req.ID, "employee_id", req.EmployeeID, "type", req.LeaveType, "days", req.TotalDays().String())
	return req, nil
}

// Approve allocates the request's days and marks it approved in one write.
func (s *RequestService) Approve(ctx context.Context, id, approver string, now time.Time) (LeaveRequest, error) {
	req, err := s.Store.GetLeaveRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.Status != StatusPending {
		return LeaveRequest{}, &generic.TransitionError{RequestID: id, From: string(req.Status), Action: "approve"}
	}

	key := "approve:" + string(req.EmployeeID)
	if s.Locker != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = DefaultApprovalLockTTL
		}
		token, ok, err := s.Locker.Lock(ctx, key, ttl)
		if err != nil {
			return LeaveRequest{}, fmt.Errorf("acquire approval lock: %w", err)
		}
		if !ok {
			return LeaveRequest{}, generic.ErrLocked
		}
		defer func() {
			if err := s.Locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				s.logger().Warn("release approval lock", "key", key, "err", err)
			}
		}()

		// Another approval may have finished between the read and the lock.
		if req, err = s.Store.GetLeaveRequest(ctx, id); err != nil {
			return LeaveRequest{}, err
		}
		if req.Status != StatusPending {
			return LeaveRequest{}, &generic.TransitionError{RequestID: id, From: string(req.Status), Action: "approve"}
		}
	}

	types, err := s.Store.ListLeaveTypes(ctx)
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("list leave types: %w", err)
	}
	history, err := s.Store.ListLeaveRequests(ctx, req.EmployeeID)
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("list leave requests: %w", err)
	}

	lt, known := findType(types, req.LeaveType)
	req.Allocation = Allocate(AllocationInput{
		TotalDays:       req.TotalDays(),
		RequestedType:   req.LeaveType,
		PrimaryType:     PrimaryType(types, s.PrimaryFallback),
		Balances:        ComputeSnapshot(types, history, req.StartDate.Year()),
		UnpaidBucket:    s.unpaidLabel(),
		RequestedUnpaid: known && !lt.Paid,
	})
	req.Status = StatusApproved
	req.ApprovedBy = approver
	approvedAt := now
	req.ApprovedAt = &approvedAt

	if err := s.Store.SaveLeaveRequest(ctx, req); err != nil {
		return LeaveRequest{}, fmt.Errorf("save approval: %w", err)
	}

	s.logger().Info("leave request approved",
		"request_id", req.ID, "employee_id", req.EmployeeID, "approver", approver, "allocation", req.Allocation)
	return req, nil
}

// Reject moves a pending request to rejected.
func (s *RequestService) Reject(ctx context.Context, id, approver string, now time.Time) (LeaveRequest, error) {
	return s.transition(ctx, id, "reject", StatusRejected, approver, now, StatusPending)
}

// Cancel withdraws a pending or approved request. The allocation of an
// approved request stays on it for audit; cancelled requests no longer count.
func (s *RequestService) Cancel(ctx context.Context, id string, now time.Time) (LeaveRequest, error) {
	return s.transition(ctx, id, "cancel", StatusCancelled, "", now, StatusPending, StatusApproved)
}

func (s *RequestService) transition(ctx context.Context, id, action string, to RequestStatus, by string, now time.Time, from ...RequestStatus) (LeaveRequest, error) {
	req, err := s.Store.GetLeaveRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}

	allowed := false
	for _, f := range from {
		if req.Status == f {
			allowed = true
		}
	}
	if !allowed {
		return LeaveRequest{}, &generic.TransitionError{RequestID: id, From: string(req.Status), Action: action}
	}

	req.Status = to
	if by != "" {
		req.ApprovedBy = by
		at := now
		req.ApprovedAt = &at
	}
	if err := s.Store.SaveLeaveRequest(ctx, req); err != nil {
		return LeaveRequest{}, fmt.Errorf("save %s: %w", action, err)
	}
	s.logger().Info("leave request "+string(to), "request_id", req.ID, "employee_id", req.EmployeeID)
	return req, nil
}

func (s *RequestService) ListForEmployee(ctx context.Context, employeeID generic.EmployeeID) ([]LeaveRequest, error) {
	return s.Store.ListLeaveRequests(ctx, employeeID)
}

func (s *RequestService) ListPending(ctx context.Context) ([]LeaveRequest, error) {
	return s.Store.ListPendingRequests(ctx)
}

func findType(types []LeaveType, name string) (LeaveType, bool) {
	for _, t := range types {
		if SameType(t.Name, name) {
			return t, true
		}
	}
	return LeaveType{}, false
}

// =============================================================================
// LEDGER SERVICE
// =============================================================================

// LedgerSource is everything a ledger build reads.
type LedgerSource interface {
	ListLeaveTypes(ctx context.Context) ([]LeaveType, error)
	ListLeaveRequests(ctx context.Context, employeeID generic.EmployeeID) ([]LeaveRequest, error)
	ListAttendance(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]attendance.Day, error)
	ListCredits(ctx context.Context, employeeID generic.EmployeeID) ([]CompensatoryCredit, error)
	ListExtraCredits(ctx context.Context, employeeID generic.EmployeeID) ([]ExtraCredit, error)
	ListLedgerFragments(ctx context.Context, employeeID generic.EmployeeID) ([]LedgerFragment, error)
	GetSetting(ctx context.Context, key string) (string, error)
}

// LedgerQuery selects one employee's ledger. Origin is the first month the
// employee accrues in (the hire month); rows are computed from the earlier
// of Origin and From so openings chain, and only From..To is returned.
type LedgerQuery struct {
	EmployeeID generic.EmployeeID
	Origin     generic.Month
	From       generic.Month
	To         generic.Month
	Today      generic.TimePoint
}

type LedgerService struct {
	Source         LedgerSource
	DefaultAccrual decimal.Decimal
	UnpaidLabel    string
	Logger         *slog.Logger
}

func (s *LedgerService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *LedgerService) degraded(employeeID generic.EmployeeID, input string, err error) {
	s.logger().Warn("ledger input unavailable, using empty value",
		"employee_id", employeeID, "input", input, "err", err)
}

// MonthlyAccrual returns the stored override, or the configured default.
func (s *LedgerService) MonthlyAccrual(ctx context.Context) decimal.Decimal {
	raw, err := s.Source.GetSetting(ctx, SettingMonthlyAccrual)
	if err != nil {
		s.logger().Warn("read accrual setting", "err", err)
		return s.DefaultAccrual
	}
	if raw == "" {
		return s.DefaultAccrual
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		s.logger().Warn("malformed accrual setting", "value", raw, "err", err)
		return s.DefaultAccrual
	}
	return v
}

// Build assembles inputs and returns the rows for q.From..q.To.
func (s *LedgerService) Build(ctx context.Context, q LedgerQuery) []LedgerRow {
	start := q.From
	if !q.Origin.IsZero() && q.Origin.Before(start) {
		start = q.Origin
	}
	origin := q.Origin
	if origin.IsZero() {
		origin = start
	}

	in := LedgerInput{
		From:           start,
		To:             q.To,
		Today:          q.Today,
		Opening:        decimal.Zero,
		MonthlyAccrual: s.MonthlyAccrual(ctx),
		ManualExtra:    map[generic.Month]decimal.Decimal{},
	}

	types, err := s.Source.ListLeaveTypes(ctx)
	if err != nil {
		s.degraded(q.EmployeeID, "leave_types", err)
	}
	in.UnpaidTypes = UnpaidTypes(types, s.UnpaidLabel)

	if in.Requests, err = s.Source.ListLeaveRequests(ctx, q.EmployeeID); err != nil {
		s.degraded(q.EmployeeID, "leave_requests", err)
		in.Requests = nil
	}

	period := generic.Period{Start: start.Start(), End: q.To.End()}
	if in.Attendance, err = s.Source.ListAttendance(ctx, q.EmployeeID, period); err != nil {
		s.degraded(q.EmployeeID, "attendance", err)
		in.Attendance = nil
	}

	if in.Credits, err = s.Source.ListCredits(ctx, q.EmployeeID); err != nil {
		s.degraded(q.EmployeeID, "compensatory_credits", err)
		in.Credits = nil
	}

	extras, err := s.Source.ListExtraCredits(ctx, q.EmployeeID)
	if err != nil {
		s.degraded(q.EmployeeID, "extra_credits", err)
	}
	for _, e := range extras {
		in.ManualExtra[e.Month] = in.ManualExtra[e.Month].Add(e.Days)
	}

	stored, err := s.Source.ListLedgerFragments(ctx, q.EmployeeID)
	if err != nil {
		s.degraded(q.EmployeeID, "ledger_fragments", err)
	} else {
		in.Fragments = fragmentSet(origin, q.To, stored)
	}

	rows := BuildLedger(in)
	out := rows[:0:0]
	for _, r := range rows {
		if !r.Month.Before(q.From) {
			out = append(out, r)
		}
	}
	return out
}

// fragmentSet lists every month from origin to last, overlaid with stored
// figures. Months before origin are absent, so they do not accrue.
func fragmentSet(origin, last generic.Month, stored []LedgerFragment) *FragmentSet {
	set := &FragmentSet{Months: map[generic.Month]LedgerFragment{}}
	for _, m := range generic.MonthsBetween(origin, last) {
		set.Months[m] = LedgerFragment{Month: m}
	}
	for _, f := range stored {
		set.Months[f.Month] = f
	}
	return set
}
