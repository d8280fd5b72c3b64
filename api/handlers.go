/*
handlers.go - HTTP API handlers for attendance, leave and the monthly ledger

PURPOSE:
  Exposes the attendance, leave and ledger services via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List all employees
    POST   /api/employees                          Create employee
    GET    /api/employees/{id}                     Get employee details

  Attendance:
    GET    /api/employees/{id}/attendance          Days in ?from=&to= (format=csv)
    POST   /api/employees/{id}/attendance          Manual HR entry for a day
    POST   /api/employees/{id}/attendance/check-in
    POST   /api/employees/{id}/attendance/check-out
    GET    /api/employees/{id}/attendance/today    Sessions and worked time now
    GET    /api/employees/{id}/attendance/live     Server-sent worked time ticks

  Leave:
    GET    /api/employees/{id}/leave-requests      Employee's requests
    POST   /api/employees/{id}/leave-requests      Submit a request
    GET    /api/employees/{id}/balances            Remaining days per type
    GET    /api/leave-requests/pending             Requests awaiting approval
    POST   /api/leave-requests/{id}/approve        Allocate and approve
    POST   /api/leave-requests/{id}/reject
    POST   /api/leave-requests/{id}/cancel

  Ledger:
    GET    /api/employees/{id}/ledger              ?from=YYYY-MM&to=YYYY-MM (format=csv)
    PUT    /api/employees/{id}/ledger/fragments/{month}
    POST   /api/employees/{id}/ledger/extra-credits
    GET    /api/employees/{id}/credits             Compensatory credits
    POST   /api/employees/{id}/credits

  Configuration:
    GET    /api/leave-types                        List leave types
    POST   /api/leave-types                        Create from JSON
    GET    /api/settings                           Stored settings
    PUT    /api/settings                           Update settings

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Attendance, Requests, Ledger, Balances: Domain services
  - LeaveTypes: JSON to LeaveType conversion

  Every handler reads the clock once through h.now() and passes it down;
  services never call time.Now themselves.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee or request not found
  - 409: Request not pending, already checked in, nothing to check out
  - 423: Another approval for the employee is in progress
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - live.go: Server-sent events for the live timer
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/export"
	"github.com/warp/leave-ledger/factory"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/lock"
	"github.com/warp/leave-ledger/store/sqlite"
	"github.com/warp/leave-ledger/timeoff"
)

// DefaultCreditValidityDays is how long a compensatory credit stays usable
// when no expiry date is given.
const DefaultCreditValidityDays = 90

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options configures NewHandler.
type Options struct {
	Locker          lock.Locker
	Logger          *slog.Logger
	Location        *time.Location
	MonthlyAccrual  decimal.Decimal
	UnpaidLabel     string
	PrimaryFallback string
	LateAfter       int
	TickInterval    time.Duration
	Now             func() time.Time
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Attendance *attendance.Service
	Requests   *timeoff.RequestService
	Ledger     *timeoff.LedgerService
	Balances   *timeoff.BalanceService
	LeaveTypes *factory.LeaveTypeFactory

	Logger          *slog.Logger
	Location        *time.Location
	PrimaryFallback string
	TickInterval    time.Duration
	Now             func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler wires the services on top of the store.
func NewHandler(store *sqlite.Store, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Locker == nil {
		opts.Locker = lock.NewLocalLock()
	}
	if opts.UnpaidLabel == "" {
		opts.UnpaidLabel = timeoff.DefaultUnpaidBucket
	}
	if opts.PrimaryFallback == "" {
		opts.PrimaryFallback = timeoff.DefaultPrimaryType
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	leaveTypes := factory.NewLeaveTypeFactory()
	leaveTypes.UnpaidLabel = opts.UnpaidLabel

	return &Handler{
		Store: store,
		Attendance: &attendance.Service{
			Store:     store,
			Location:  opts.Location,
			LateAfter: opts.LateAfter,
			Logger:    opts.Logger,
		},
		Requests: &timeoff.RequestService{
			Store:           store,
			Locker:          opts.Locker,
			UnpaidLabel:     opts.UnpaidLabel,
			PrimaryFallback: opts.PrimaryFallback,
			Logger:          opts.Logger,
		},
		Ledger: &timeoff.LedgerService{
			Source:         store,
			DefaultAccrual: opts.MonthlyAccrual,
			UnpaidLabel:    opts.UnpaidLabel,
			Logger:         opts.Logger,
		},
		Balances:        &timeoff.BalanceService{Source: store},
		LeaveTypes:      leaveTypes,
		Logger:          opts.Logger,
		Location:        opts.Location,
		PrimaryFallback: opts.PrimaryFallback,
		TickInterval:    opts.TickInterval,
		Now:             opts.Now,
	}
}

func (h *Handler) now() time.Time { return h.Now() }

func (h *Handler) today() generic.TimePoint { return generic.DayOf(h.now(), h.Location) }

// employee loads the {id} employee, or fails with ErrEmployeeNotFound.
func (h *Handler) employee(ctx context.Context, id string) (*sqlite.Employee, error) {
	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return emp, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required", nil)
		return
	}

	hireDate, err := time.Parse(generic.DateLayout, req.HireDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	emp := sqlite.Employee{
		ID:       req.ID,
		Name:     req.Name,
		Email:    req.Email,
		HireDate: hireDate,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns the employee's days in ?from=&to= (dates, inclusive).
// Defaults to the current month. ?format=csv downloads the same days.
// GET /api/employees/{id}/attendance
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to list attendance", err)
		return
	}

	today := h.today()
	period := today.MonthOf().Period()
	if v := r.URL.Query().Get("from"); v != "" {
		if period.Start, err = generic.ParseDate(v); err != nil {
			h.fail(w, r, "Invalid from date", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if period.End, err = generic.ParseDate(v); err != nil {
			h.fail(w, r, "Invalid to date", err)
			return
		}
	}
	if period, err = generic.NewPeriod(period.Start, period.End); err != nil {
		h.fail(w, r, "Invalid range", err)
		return
	}

	days, err := h.Attendance.List(ctx, generic.EmployeeID(emp.ID), period)
	if err != nil {
		h.fail(w, r, "Failed to list attendance", err)
		return
	}

	// Worked time of an open session runs to now only on today's row.
	nowSeconds := generic.SecondsOf(h.now().In(h.Location))
	secondsFor := func(d attendance.Day) int {
		if d.Date.Equal(today) {
			return nowSeconds
		}
		return 0
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s-%s-%s.csv"`,
			emp.ID, period.Start, period.End))
		if err := export.WriteAttendanceCSV(w, days, secondsFor); err != nil {
			h.Logger.Error("write attendance csv", "employee_id", emp.ID, "err", err)
		}
		return
	}

	dtos := make([]AttendanceDayDTO, len(days))
	for i, d := range days {
		dtos[i] = toAttendanceDayDTO(d, secondsFor(d))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"employee_id": emp.ID,
		"from":        period.Start.String(),
		"to":          period.End.String(),
		"days":        dtos,
	})
}

// RecordAttendance stores a manually entered day.
// POST /api/employees/{id}/attendance
func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to record attendance", err)
		return
	}

	var req RecordAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, "Invalid date", err)
		return
	}

	day := attendance.Day{
		EmployeeID: generic.EmployeeID(emp.ID),
		Date:       date,
		Sessions:   req.Sessions,
		Status:     attendance.Status(req.Status),
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
	}
	if err := h.Attendance.Record(ctx, day); err != nil {
		h.fail(w, r, "Failed to record attendance", err)
		return
	}

	stored, err := h.Store.GetAttendanceDay(ctx, day.EmployeeID, date)
	if err != nil || stored == nil {
		h.fail(w, r, "Failed to reload attendance", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toAttendanceDayDTO(*stored, 0))
}

// CheckIn opens a session at the current time.
// POST /api/employees/{id}/attendance/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, "check in", h.Attendance.CheckIn)
}

// CheckOut closes the open session at the current time.
// POST /api/employees/{id}/attendance/check-out
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, "check out", h.Attendance.CheckOut)
}

type punchFunc func(ctx context.Context, employeeID generic.EmployeeID, now time.Time) (attendance.Day, error)

func (h *Handler) punch(w http.ResponseWriter, r *http.Request, action string, do punchFunc) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to "+action, err)
		return
	}

	now := h.now()
	day, err := do(ctx, generic.EmployeeID(emp.ID), now)
	if err != nil {
		h.fail(w, r, "Failed to "+action, err)
		return
	}

	writeJSON(w, r, http.StatusOK, TodayDTO{
		AttendanceDayDTO: toAttendanceDayDTO(day, generic.SecondsOf(now.In(h.Location))),
		Running:          day.HasOpenSession(),
	})
}

// Today returns today's sessions and worked time as of now.
// GET /api/employees/{id}/attendance/today
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get today", err)
		return
	}

	sum, err := h.Attendance.Today(ctx, generic.EmployeeID(emp.ID), h.now())
	if err != nil {
		h.fail(w, r, "Failed to get today", err)
		return
	}

	dto := toAttendanceDayDTO(sum.Day, 0)
	dto.WorkedSeconds = sum.WorkedSeconds
	dto.Worked = sum.Display
	writeJSON(w, r, http.StatusOK, TodayDTO{AttendanceDayDTO: dto, Running: sum.Running})
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ListEmployeeRequests returns the employee's leave requests.
// GET /api/employees/{id}/leave-requests
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to list leave requests", err)
		return
	}

	reqs, err := h.Requests.ListForEmployee(ctx, generic.EmployeeID(emp.ID))
	if err != nil {
		h.fail(w, r, "Failed to list leave requests", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"requests": toLeaveRequestDTOs(reqs)})
}

// SubmitLeaveRequest creates a pending leave request.
// POST /api/employees/{id}/leave-requests
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to submit leave request", err)
		return
	}

	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := generic.ParseDate(req.StartDate)
	if err != nil {
		h.fail(w, r, "Invalid start_date", err)
		return
	}
	end := start
	if req.EndDate != "" {
		if end, err = generic.ParseDate(req.EndDate); err != nil {
			h.fail(w, r, "Invalid end_date", err)
			return
		}
	}

	created, err := h.Requests.Submit(ctx, timeoff.LeaveRequest{
		EmployeeID: generic.EmployeeID(emp.ID),
		LeaveType:  req.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Days:       req.Days,
		HalfDay:    req.HalfDay,
		Reason:     req.Reason,
	}, h.now())
	if err != nil {
		h.fail(w, r, "Failed to submit leave request", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toLeaveRequestDTO(created))
}

// ListPendingRequests returns all pending requests awaiting approval.
// GET /api/leave-requests/pending
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListPending(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to get pending requests", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"requests": toLeaveRequestDTOs(reqs)})
}

// ApproveRequest allocates and approves a pending request.
// POST /api/leave-requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	approver, err := decodeApprover(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	approved, err := h.Requests.Approve(r.Context(), chi.URLParam(r, "id"), approver, h.now())
	if err != nil {
		h.fail(w, r, "Failed to approve request", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toLeaveRequestDTO(approved))
}

// RejectRequest rejects a pending request.
// POST /api/leave-requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	approver, err := decodeApprover(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rejected, err := h.Requests.Reject(r.Context(), chi.URLParam(r, "id"), approver, h.now())
	if err != nil {
		h.fail(w, r, "Failed to reject request", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toLeaveRequestDTO(rejected))
}

// CancelRequest withdraws a pending or approved request.
// POST /api/leave-requests/{id}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.Requests.Cancel(r.Context(), chi.URLParam(r, "id"), h.now())
	if err != nil {
		h.fail(w, r, "Failed to cancel request", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toLeaveRequestDTO(cancelled))
}

// decodeApprover reads the optional decision body. An empty body means "admin".
func decodeApprover(r *http.Request) (string, error) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if req.ApproverID == "" {
		return "admin", nil
	}
	return req.ApproverID, nil
}

// GetBalances returns the remaining days per paid leave type.
// GET /api/employees/{id}/balances?as_of=YYYY-MM-DD
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get balances", err)
		return
	}

	asOf := h.today()
	if v := r.URL.Query().Get("as_of"); v != "" {
		if asOf, err = generic.ParseDate(v); err != nil {
			h.fail(w, r, "Invalid as_of", err)
			return
		}
	}

	snap, err := h.Balances.Snapshot(ctx, generic.EmployeeID(emp.ID), asOf)
	if err != nil {
		h.fail(w, r, "Failed to get balances", err)
		return
	}
	types, err := h.Store.ListLeaveTypes(ctx)
	if err != nil {
		h.fail(w, r, "Failed to get balances", err)
		return
	}

	writeJSON(w, r, http.StatusOK, BalanceDTO{
		EmployeeID:  emp.ID,
		AsOf:        asOf.String(),
		PrimaryType: timeoff.PrimaryType(types, h.PrimaryFallback),
		Balances:    snap,
	})
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetLedger returns the monthly ledger for ?from=YYYY-MM&to=YYYY-MM.
// Defaults to January of the current year through the current month.
// Months after the current one are never produced. ?format=csv downloads it.
// GET /api/employees/{id}/ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to build ledger", err)
		return
	}

	today := h.today()
	from := generic.NewMonth(today.Year(), time.January)
	to := today.MonthOf()
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = generic.ParseMonth(v); err != nil {
			h.fail(w, r, "Invalid from month (use YYYY-MM)", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = generic.ParseMonth(v); err != nil {
			h.fail(w, r, "Invalid to month (use YYYY-MM)", err)
			return
		}
	}
	if to.Before(from) {
		h.fail(w, r, "Invalid range", generic.ErrInvalidPeriod)
		return
	}

	rows := h.Ledger.Build(ctx, timeoff.LedgerQuery{
		EmployeeID: generic.EmployeeID(emp.ID),
		Origin:     emp.HireMonth(),
		From:       from,
		To:         to,
		Today:      today,
	})

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-%s-%s-%s.csv"`, emp.ID, from, to))
		if err := export.WriteLedgerCSV(w, rows); err != nil {
			h.Logger.Error("write ledger csv", "employee_id", emp.ID, "err", err)
		}
		return
	}

	dtos := make([]LedgerRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toLedgerRowDTO(row)
	}
	writeJSON(w, r, http.StatusOK, LedgerResponse{
		EmployeeID:     emp.ID,
		From:           from.String(),
		To:             to.String(),
		MonthlyAccrual: h.Ledger.MonthlyAccrual(ctx),
		Rows:           dtos,
	})
}

// PutLedgerFragment stores the backend-reported figures of one month.
// PUT /api/employees/{id}/ledger/fragments/{month}
func (h *Handler) PutLedgerFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to save ledger fragment", err)
		return
	}
	month, err := generic.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		h.fail(w, r, "Invalid month (use YYYY-MM)", err)
		return
	}

	var req FragmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	for name, v := range map[string]*decimal.Decimal{"deducted": req.Deducted, "lwp": req.LWP, "extra_credit": req.ExtraCredit} {
		if v != nil && v.IsNegative() {
			h.fail(w, r, "Invalid ledger fragment", &generic.ValidationError{Field: name, Message: "must not be negative"})
			return
		}
	}

	frag := timeoff.LedgerFragment{Month: month, Deducted: req.Deducted, LWP: req.LWP, ExtraCredit: req.ExtraCredit}
	if err := h.Store.SaveLedgerFragment(ctx, generic.EmployeeID(emp.ID), frag); err != nil {
		h.fail(w, r, "Failed to save ledger fragment", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"employee_id":  emp.ID,
		"month":        month.String(),
		"deducted":     req.Deducted,
		"lwp":          req.LWP,
		"extra_credit": req.ExtraCredit,
	})
}

// CreateExtraCredit adds a manual credit to one month.
// POST /api/employees/{id}/ledger/extra-credits
func (h *Handler) CreateExtraCredit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to add extra credit", err)
		return
	}

	var req ExtraCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	month, err := generic.ParseMonth(req.Month)
	if err != nil {
		h.fail(w, r, "Invalid month (use YYYY-MM)", err)
		return
	}
	if req.Days.IsZero() {
		h.fail(w, r, "Invalid extra credit", &generic.ValidationError{Field: "days", Message: "must not be zero"})
		return
	}

	extra := timeoff.ExtraCredit{
		ID:         uuid.NewString(),
		EmployeeID: generic.EmployeeID(emp.ID),
		Month:      month,
		Days:       req.Days,
		Reason:     req.Reason,
		CreatedAt:  h.now(),
	}
	if err := h.Store.SaveExtraCredit(ctx, extra); err != nil {
		h.fail(w, r, "Failed to add extra credit", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{
		"id":          extra.ID,
		"employee_id": emp.ID,
		"month":       month.String(),
		"days":        extra.Days,
		"reason":      extra.Reason,
	})
}

// =============================================================================
// COMPENSATORY CREDIT HANDLERS
// =============================================================================

// ListCredits returns the employee's compensatory credits.
// GET /api/employees/{id}/credits
func (h *Handler) ListCredits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to list credits", err)
		return
	}

	credits, err := h.Store.ListCredits(ctx, generic.EmployeeID(emp.ID))
	if err != nil {
		h.fail(w, r, "Failed to list credits", err)
		return
	}
	dtos := make([]CreditDTO, len(credits))
	for i, c := range credits {
		dtos[i] = toCreditDTO(c)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"credits": dtos})
}

// CreateCredit grants a compensatory credit.
// POST /api/employees/{id}/credits
func (h *Handler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to create credit", err)
		return
	}

	var req CreateCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !req.Credits.IsPositive() {
		h.fail(w, r, "Invalid credit", &generic.ValidationError{Field: "credits", Message: "must be positive"})
		return
	}

	assigned := h.today()
	if req.AssignedDate != "" {
		if assigned, err = generic.ParseDate(req.AssignedDate); err != nil {
			h.fail(w, r, "Invalid assigned_date", err)
			return
		}
	}
	expiry := assigned.AddDays(DefaultCreditValidityDays)
	if req.ExpiryDate != "" {
		if expiry, err = generic.ParseDate(req.ExpiryDate); err != nil {
			h.fail(w, r, "Invalid expiry_date", err)
			return
		}
	}
	if expiry.Before(assigned) {
		h.fail(w, r, "Invalid credit", generic.ErrInvalidPeriod)
		return
	}

	credit := timeoff.CompensatoryCredit{
		ID:           uuid.NewString(),
		EmployeeID:   generic.EmployeeID(emp.ID),
		Credits:      req.Credits,
		AssignedDate: assigned,
		ExpiryDate:   expiry,
		Status:       timeoff.CreditActive,
		Reason:       req.Reason,
	}
	if expiry.Before(h.today()) {
		credit.Status = timeoff.CreditExpired
	}
	if err := h.Store.SaveCredit(ctx, credit); err != nil {
		h.fail(w, r, "Failed to create credit", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toCreditDTO(credit))
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// ListLeaveTypes returns all configured leave types.
// GET /api/leave-types
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListLeaveTypes(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list leave types", err)
		return
	}
	dtos := make([]factory.LeaveTypeJSON, len(types))
	for i, t := range types {
		dtos[i] = factory.ToJSON(t)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// CreateLeaveType creates a leave type from its JSON definition.
// POST /api/leave-types
func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req factory.LeaveTypeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lt, err := h.LeaveTypes.FromJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid leave type", err)
		return
	}
	if err := h.Store.CreateLeaveType(r.Context(), lt); err != nil {
		h.fail(w, r, "Failed to create leave type", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, factory.ToJSON(lt))
}

// GetSettings returns stored settings plus the effective monthly accrual.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stored, err := h.Store.ListSettings(ctx)
	if err != nil {
		h.fail(w, r, "Failed to get settings", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"settings":        stored,
		"monthly_accrual": h.Ledger.MonthlyAccrual(ctx),
	})
}

// PutSettings updates settings. An empty value restores the default.
// PUT /api/settings
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for key, value := range req {
		if key != timeoff.SettingMonthlyAccrual {
			h.fail(w, r, "Unknown setting", &generic.ValidationError{Field: key, Message: "unknown setting"})
			return
		}
		if value == "" {
			continue
		}
		v, err := decimal.NewFromString(value)
		if err != nil || v.IsNegative() {
			h.fail(w, r, "Invalid setting", &generic.ValidationError{Field: key, Message: "must be a non-negative decimal"})
			return
		}
	}
	for key, value := range req {
		if err := h.Store.SetSetting(r.Context(), key, value); err != nil {
			h.fail(w, r, "Failed to save settings", err)
			return
		}
	}
	h.GetSettings(w, r)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, r, status, resp)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrLocked):
		return http.StatusLocked
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status its kind maps to. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, "err", err, "request_id", middleware.GetReqID(r.Context()))
	}
	writeError(w, r, status, message, err)
}
