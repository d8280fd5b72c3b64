/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMALS:
  Day quantities are shopspring decimals and serialise as JSON strings
  ("1.67"), so clients never see binary float noise.

TYPES:
  Employee:    EmployeeDTO, CreateEmployeeRequest
  Attendance:  AttendanceDayDTO, TodayDTO, RecordAttendanceRequest
  Leave:       LeaveRequestDTO, SubmitLeaveRequest, DecisionRequest
  Balances:    BalanceDTO
  Ledger:      LedgerRowDTO, LedgerResponse, FragmentRequest, ExtraCreditRequest
  Credits:     CreditDTO, CreateCreditRequest
  Scenarios:   ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and services, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/leavetype.go: LeaveTypeJSON
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/store/sqlite"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HireDate  string `json:"hire_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	HireDate string `json:"hire_date"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceDayDTO is one stored attendance day.
type AttendanceDayDTO struct {
	Date          string               `json:"date"`
	Status        string               `json:"status"`
	Sessions      []attendance.Session `json:"sessions"`
	CheckIn       string               `json:"check_in,omitempty"`
	CheckOut      string               `json:"check_out,omitempty"`
	WorkedSeconds int                  `json:"worked_seconds"`
	Worked        string               `json:"worked"`
}

// TodayDTO is the current day as seen now.
type TodayDTO struct {
	AttendanceDayDTO
	Running bool `json:"running"`
}

// RecordAttendanceRequest is a manual HR entry for one day.
type RecordAttendanceRequest struct {
	Date     string               `json:"date"`
	Status   string               `json:"status"`
	Sessions []attendance.Session `json:"sessions"`
	CheckIn  string               `json:"check_in"`
	CheckOut string               `json:"check_out"`
}

// TickDTO is one live timer event.
type TickDTO struct {
	At            string `json:"at"`
	WorkedSeconds int    `json:"worked_seconds"`
	Worked        string `json:"worked"`
	Running       bool   `json:"running"`
}

// =============================================================================
// LEAVE
// =============================================================================

// AllocationEntryDTO is one bucket of an approved request's allocation.
type AllocationEntryDTO struct {
	Type string          `json:"type"`
	Days decimal.Decimal `json:"days"`
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID         string               `json:"id"`
	EmployeeID string               `json:"employee_id"`
	LeaveType  string               `json:"leave_type"`
	StartDate  string               `json:"start_date"`
	EndDate    string               `json:"end_date"`
	Status     string               `json:"status"`
	Days       decimal.Decimal      `json:"days"`
	HalfDay    bool                 `json:"half_day"`
	Allocation []AllocationEntryDTO `json:"allocation,omitempty"`
	Reason     string               `json:"reason,omitempty"`
	ApprovedBy string               `json:"approved_by,omitempty"`
	ApprovedAt string               `json:"approved_at,omitempty"`
	CreatedAt  string               `json:"created_at,omitempty"`
}

// SubmitLeaveRequest is the request body for a new leave request.
type SubmitLeaveRequest struct {
	LeaveType string           `json:"leave_type"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Days      *decimal.Decimal `json:"days,omitempty"`
	HalfDay   bool             `json:"half_day"`
	Reason    string           `json:"reason"`
}

// DecisionRequest carries who approved or rejected a request.
type DecisionRequest struct {
	ApproverID string `json:"approver_id"`
}

// BalanceDTO is the per-type remaining balance of an employee.
type BalanceDTO struct {
	EmployeeID  string                     `json:"employee_id"`
	AsOf        string                     `json:"as_of"`
	PrimaryType string                     `json:"primary_type"`
	Balances    map[string]decimal.Decimal `json:"balances"`
}

// =============================================================================
// LEDGER
// =============================================================================

// LedgerRowDTO is one ledger month. Display holds the formatted values, with
// "pending" in place of unsettled figures of the current month.
type LedgerRowDTO struct {
	Month             string                `json:"month"`
	Opening           decimal.Decimal       `json:"opening"`
	MonthlyCredit     decimal.Decimal       `json:"monthly_credit"`
	ExtraCredit       decimal.Decimal       `json:"extra_credit"`
	ExtraCreditSource string                `json:"extra_credit_source"`
	Deducted          decimal.Decimal       `json:"deducted"`
	DeductedSource    string                `json:"deducted_source"`
	LWP               decimal.Decimal       `json:"lwp"`
	LWPSource         string                `json:"lwp_source"`
	Closing           decimal.Decimal       `json:"closing"`
	Present           decimal.Decimal       `json:"present"`
	Absent            decimal.Decimal       `json:"absent"`
	EffectivePresent  decimal.Decimal       `json:"effective_present"`
	EffectiveAbsent   decimal.Decimal       `json:"effective_absent"`
	PaidDays          decimal.Decimal       `json:"paid_days"`
	Accrued           bool                  `json:"accrued"`
	Provisional       bool                  `json:"provisional"`
	Display           timeoff.LedgerDisplay `json:"display"`
}

// LedgerResponse wraps the ledger of one employee.
type LedgerResponse struct {
	EmployeeID     string          `json:"employee_id"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	MonthlyAccrual decimal.Decimal `json:"monthly_accrual"`
	Rows           []LedgerRowDTO  `json:"rows"`
}

// FragmentRequest sets the backend-reported figures of a month. Omitted
// fields are "not reported"; an explicit zero is a real zero.
type FragmentRequest struct {
	Deducted    *decimal.Decimal `json:"deducted"`
	LWP         *decimal.Decimal `json:"lwp"`
	ExtraCredit *decimal.Decimal `json:"extra_credit"`
}

// ExtraCreditRequest adds a manual credit to a month.
type ExtraCreditRequest struct {
	Month  string          `json:"month"`
	Days   decimal.Decimal `json:"days"`
	Reason string          `json:"reason"`
}

// =============================================================================
// CREDITS
// =============================================================================

// CreditDTO is a compensatory credit.
type CreditDTO struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	Credits      decimal.Decimal `json:"credits"`
	AssignedDate string          `json:"assigned_date"`
	ExpiryDate   string          `json:"expiry_date"`
	Status       string          `json:"status"`
	Reason       string          `json:"reason,omitempty"`
}

// CreateCreditRequest grants a compensatory credit.
type CreateCreditRequest struct {
	Credits      decimal.Decimal `json:"credits"`
	AssignedDate string          `json:"assigned_date"`
	ExpiryDate   string          `json:"expiry_date"`
	Reason       string          `json:"reason"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:       e.ID,
		Name:     e.Name,
		Email:    e.Email,
		HireDate: e.HireDate.Format(generic.DateLayout),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAttendanceDayDTO(d attendance.Day, now int) AttendanceDayDTO {
	sessions := d.Sessions
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	worked := d.WorkedSeconds(now)
	return AttendanceDayDTO{
		Date:          d.Date.String(),
		Status:        string(d.Status),
		Sessions:      sessions,
		CheckIn:       d.CheckIn,
		CheckOut:      d.CheckOut,
		WorkedSeconds: worked,
		Worked:        generic.FormatSeconds(float64(worked)),
	}
}

func toTickDTO(t attendance.Tick) TickDTO {
	return TickDTO{
		At:            t.At.Format(time.RFC3339),
		WorkedSeconds: t.WorkedSeconds,
		Worked:        t.Display,
		Running:       t.Running,
	}
}

func toLeaveRequestDTO(r timeoff.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:         r.ID,
		EmployeeID: string(r.EmployeeID),
		LeaveType:  r.LeaveType,
		StartDate:  r.StartDate.String(),
		EndDate:    r.EndDate.String(),
		Status:     string(r.Status),
		Days:       r.TotalDays(),
		HalfDay:    r.HalfDay,
		Reason:     r.Reason,
		ApprovedBy: r.ApprovedBy,
	}
	for _, e := range r.Allocation {
		dto.Allocation = append(dto.Allocation, AllocationEntryDTO{Type: e.LeaveType, Days: e.Days})
	}
	if r.ApprovedAt != nil {
		dto.ApprovedAt = r.ApprovedAt.Format(time.RFC3339)
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toLeaveRequestDTOs(reqs []timeoff.LeaveRequest) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, len(reqs))
	for i, r := range reqs {
		dtos[i] = toLeaveRequestDTO(r)
	}
	return dtos
}

func toLedgerRowDTO(r timeoff.LedgerRow) LedgerRowDTO {
	return LedgerRowDTO{
		Month:             r.Month.String(),
		Opening:           r.Opening,
		MonthlyCredit:     r.MonthlyCredit,
		ExtraCredit:       r.ExtraCredit.Value,
		ExtraCreditSource: string(r.ExtraCredit.Source),
		Deducted:          r.Deducted,
		DeductedSource:    string(r.RawPaid.Source),
		LWP:               r.LWP,
		LWPSource:         string(r.RawUnpaid.Source),
		Closing:           r.Closing,
		Present:           r.Present,
		Absent:            r.Absent,
		EffectivePresent:  r.EffectivePresent,
		EffectiveAbsent:   r.EffectiveAbsent,
		PaidDays:          r.PaidDays,
		Accrued:           r.Accrued,
		Provisional:       r.Provisional,
		Display:           r.Display(),
	}
}

func toCreditDTO(c timeoff.CompensatoryCredit) CreditDTO {
	return CreditDTO{
		ID:           c.ID,
		EmployeeID:   string(c.EmployeeID),
		Credits:      c.Credits,
		AssignedDate: c.AssignedDate.String(),
		ExpiryDate:   c.ExpiryDate.String(),
		Status:       string(c.Status),
		Reason:       c.Reason,
	}
}
