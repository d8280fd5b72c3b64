package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// LEAVE TYPE STORE
// =============================================================================

// CreateLeaveType inserts a new leave type; names are unique ignoring case.
func (s *Store) CreateLeaveType(ctx context.Context, lt timeoff.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_types (name, annual_allocation, paid, allow_half_day, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, lt.Name, lt.AnnualAllocation.String(), lt.Paid, lt.AllowHalfDay, nullString(lt.Color), now, now)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %q already exists", generic.ErrInvalidLeaveType, lt.Name)
	}
	if err != nil {
		return fmt.Errorf("create leave type: %w", err)
	}
	return nil
}

// SaveLeaveType inserts or replaces a leave type.
func (s *Store) SaveLeaveType(ctx context.Context, lt timeoff.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_types (name, annual_allocation, paid, allow_half_day, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			annual_allocation = excluded.annual_allocation,
			paid = excluded.paid,
			allow_half_day = excluded.allow_half_day,
			color = excluded.color,
			updated_at = excluded.updated_at
	`, lt.Name, lt.AnnualAllocation.String(), lt.Paid, lt.AllowHalfDay, nullString(lt.Color), now, now)
	if err != nil {
		return fmt.Errorf("save leave type: %w", err)
	}
	return nil
}

// ListLeaveTypes returns every leave type in creation order.
func (s *Store) ListLeaveTypes(ctx context.Context) ([]timeoff.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, annual_allocation, paid, allow_half_day, color FROM leave_types ORDER BY created_at, rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	defer rows.Close()

	var types []timeoff.LeaveType
	for rows.Next() {
		var lt timeoff.LeaveType
		var alloc string
		var color sql.NullString
		if err := rows.Scan(&lt.Name, &alloc, &lt.Paid, &lt.AllowHalfDay, &color); err != nil {
			return nil, err
		}
		lt.AnnualAllocation = generic.MustParseDecimal(alloc)
		lt.Color = color.String
		types = append(types, lt)
	}
	return types, rows.Err()
}

// SeedLeaveTypes stores types only when none are configured yet.
func (s *Store) SeedLeaveTypes(ctx context.Context, types []timeoff.LeaveType) (bool, error) {
	existing, err := s.ListLeaveTypes(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, lt := range types {
		if err := s.SaveLeaveType(ctx, lt); err != nil {
			return false, err
		}
	}
	return true, nil
}

// =============================================================================
// LEAVE REQUEST STORE
// =============================================================================

// SaveLeaveRequest inserts or updates a request. The allocation column is
// only ever filled once; later saves cannot overwrite it.
func (s *Store) SaveLeaveRequest(ctx context.Context, r timeoff.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var allocJSON sql.NullString
	if r.Allocation != nil {
		b, err := json.Marshal(r.Allocation)
		if err != nil {
			return fmt.Errorf("encode allocation: %w", err)
		}
		allocJSON = sql.NullString{String: string(b), Valid: true}
	}

	var approvedAt sql.NullString
	if r.ApprovedAt != nil {
		approvedAt = sql.NullString{String: r.ApprovedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, status,
			days, half_day, allocation_json, reason, approved_by, approved_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			allocation_json = COALESCE(leave_requests.allocation_json, excluded.allocation_json),
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.EmployeeID), r.LeaveType, r.StartDate.String(), r.EndDate.String(), string(r.Status),
		nullDecimal(r.Days), r.HalfDay, allocJSON, nullString(r.Reason), nullString(r.ApprovedBy), approvedAt,
		createdAt.UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save leave request: %w", err)
	}
	return nil
}

const leaveRequestColumns = `
	id, employee_id, leave_type, start_date, end_date, status, days, half_day,
	allocation_json, reason, approved_by, approved_at, created_at`

// GetLeaveRequest retrieves a request by ID.
func (s *Store) GetLeaveRequest(ctx context.Context, id string) (timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+leaveRequestColumns+" FROM leave_requests WHERE id = ?", id)
	r, err := scanLeaveRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timeoff.LeaveRequest{}, fmt.Errorf("%w: %s", generic.ErrRequestNotFound, id)
	}
	if err != nil {
		return timeoff.LeaveRequest{}, fmt.Errorf("get leave request: %w", err)
	}
	return r, nil
}

// ListLeaveRequests returns every request of an employee, oldest start first.
func (s *Store) ListLeaveRequests(ctx context.Context, employeeID generic.EmployeeID) ([]timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLeaveRequests(ctx,
		"SELECT "+leaveRequestColumns+" FROM leave_requests WHERE employee_id = ? ORDER BY start_date, created_at",
		string(employeeID))
}

// ListPendingRequests returns all pending requests, oldest first.
func (s *Store) ListPendingRequests(ctx context.Context) ([]timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLeaveRequests(ctx,
		"SELECT "+leaveRequestColumns+" FROM leave_requests WHERE status = 'pending' ORDER BY created_at",
	)
}

func (s *Store) queryLeaveRequests(ctx context.Context, query string, args ...any) ([]timeoff.LeaveRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leave requests: %w", err)
	}
	defer rows.Close()

	var out []timeoff.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLeaveRequest(sc scanner) (timeoff.LeaveRequest, error) {
	var r timeoff.LeaveRequest
	var employeeID, startDate, endDate, status, createdAt string
	var days, allocJSON, reason, approvedBy, approvedAt sql.NullString

	if err := sc.Scan(&r.ID, &employeeID, &r.LeaveType, &startDate, &endDate, &status, &days, &r.HalfDay,
		&allocJSON, &reason, &approvedBy, &approvedAt, &createdAt); err != nil {
		return timeoff.LeaveRequest{}, err
	}

	r.EmployeeID = generic.EmployeeID(employeeID)
	r.StartDate = parseDate(startDate)
	r.EndDate = parseDate(endDate)
	r.Status = timeoff.RequestStatus(status)
	r.Days = parseNullDecimal(days)
	r.Reason = reason.String
	r.ApprovedBy = approvedBy.String
	r.ApprovedAt = parseTimestamp(approvedAt)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if allocJSON.Valid {
		if err := json.Unmarshal([]byte(allocJSON.String), &r.Allocation); err != nil {
			return timeoff.LeaveRequest{}, fmt.Errorf("decode allocation of %s: %w", r.ID, err)
		}
		if r.Allocation == nil {
			r.Allocation = timeoff.Allocation{}
		}
	}
	return r, nil
}

// =============================================================================
// CREDIT STORE
// =============================================================================

// SaveCredit inserts or updates a compensatory credit.
func (s *Store) SaveCredit(ctx context.Context, c timeoff.CompensatoryCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compensatory_credits (id, employee_id, credits, assigned_date, expiry_date, status, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			credits = excluded.credits,
			assigned_date = excluded.assigned_date,
			expiry_date = excluded.expiry_date,
			status = excluded.status,
			reason = excluded.reason
	`, c.ID, string(c.EmployeeID), c.Credits.String(), c.AssignedDate.String(), c.ExpiryDate.String(),
		string(c.Status), nullString(c.Reason), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save credit: %w", err)
	}
	return nil
}

// ListCredits returns an employee's compensatory credits of every status.
func (s *Store) ListCredits(ctx context.Context, employeeID generic.EmployeeID) ([]timeoff.CompensatoryCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, credits, assigned_date, expiry_date, status, reason
		FROM compensatory_credits WHERE employee_id = ? ORDER BY assigned_date, created_at
	`, string(employeeID))
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()

	var out []timeoff.CompensatoryCredit
	for rows.Next() {
		var c timeoff.CompensatoryCredit
		var emp, credits, assigned, expiry, status string
		var reason sql.NullString
		if err := rows.Scan(&c.ID, &emp, &credits, &assigned, &expiry, &status, &reason); err != nil {
			return nil, err
		}
		c.EmployeeID = generic.EmployeeID(emp)
		c.Credits = generic.MustParseDecimal(credits)
		c.AssignedDate = parseDate(assigned)
		c.ExpiryDate = parseDate(expiry)
		c.Status = timeoff.CreditStatus(status)
		c.Reason = reason.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// ExpireCredits marks active credits whose expiry date is before asOf as expired.
func (s *Store) ExpireCredits(ctx context.Context, asOf generic.TimePoint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE compensatory_credits SET status = ? WHERE status = ? AND expiry_date < ?",
		string(timeoff.CreditExpired), string(timeoff.CreditActive), asOf.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("expire credits: %w", err)
	}
	return res.RowsAffected()
}

// SaveExtraCredit stores a manual month adjustment.
func (s *Store) SaveExtraCredit(ctx context.Context, e timeoff.ExtraCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extra_credits (id, employee_id, month, days, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, string(e.EmployeeID), e.Month.String(), e.Days.String(), nullString(e.Reason),
		createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save extra credit: %w", err)
	}
	return nil
}

// ListExtraCredits returns an employee's manual adjustments.
func (s *Store) ListExtraCredits(ctx context.Context, employeeID generic.EmployeeID) ([]timeoff.ExtraCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, month, days, reason, created_at
		FROM extra_credits WHERE employee_id = ? ORDER BY month, created_at
	`, string(employeeID))
	if err != nil {
		return nil, fmt.Errorf("list extra credits: %w", err)
	}
	defer rows.Close()

	var out []timeoff.ExtraCredit
	for rows.Next() {
		var e timeoff.ExtraCredit
		var emp, month, days, createdAt string
		var reason sql.NullString
		if err := rows.Scan(&e.ID, &emp, &month, &days, &reason, &createdAt); err != nil {
			return nil, err
		}
		e.EmployeeID = generic.EmployeeID(emp)
		e.Month, _ = generic.ParseMonth(month)
		e.Days = generic.MustParseDecimal(days)
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// LEDGER FRAGMENT STORE
// =============================================================================

// SaveLedgerFragment replaces the reported figures of one month.
func (s *Store) SaveLedgerFragment(ctx context.Context, employeeID generic.EmployeeID, f timeoff.LedgerFragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_fragments (employee_id, month, deducted, lwp, extra_credit, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, month) DO UPDATE SET
			deducted = excluded.deducted,
			lwp = excluded.lwp,
			extra_credit = excluded.extra_credit,
			updated_at = excluded.updated_at
	`, string(employeeID), f.Month.String(), nullDecimal(f.Deducted), nullDecimal(f.LWP), nullDecimal(f.ExtraCredit),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save ledger fragment: %w", err)
	}
	return nil
}

// ListLedgerFragments returns every stored fragment of an employee.
func (s *Store) ListLedgerFragments(ctx context.Context, employeeID generic.EmployeeID) ([]timeoff.LedgerFragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT month, deducted, lwp, extra_credit FROM ledger_fragments
		WHERE employee_id = ? ORDER BY month
	`, string(employeeID))
	if err != nil {
		return nil, fmt.Errorf("list ledger fragments: %w", err)
	}
	defer rows.Close()

	var out []timeoff.LedgerFragment
	for rows.Next() {
		var month string
		var deducted, lwp, extra sql.NullString
		if err := rows.Scan(&month, &deducted, &lwp, &extra); err != nil {
			return nil, err
		}
		m, err := generic.ParseMonth(month)
		if err != nil {
			return nil, fmt.Errorf("ledger fragment month %q: %w", month, err)
		}
		out = append(out, timeoff.LedgerFragment{
			Month:       m,
			Deducted:    parseNullDecimal(deducted),
			LWP:         parseNullDecimal(lwp),
			ExtraCredit: parseNullDecimal(extra),
		})
	}
	return out, rows.Err()
}

