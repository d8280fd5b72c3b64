/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates employees, attendance, leave
	requests, credits and ledger figures that show one feature.

AVAILABLE SCENARIOS:

	steady-employee:  Attendance history, an approved and a pending request
	sick-overflow:    Sick leave beyond its allowance spilling into other buckets
	new-joiner:       Hired two months ago, checked in right now
	backend-figures:  Ledger months overridden by backend-reported fragments

HOW SCENARIOS WORK:
 1. Reset database (clear all data) and seed the default leave types
 2. Create employees
 3. Record attendance days
 4. Submit requests and approve them through the request service, so the
    stored allocation is exactly what a live approval would produce
 5. Optionally add credits and ledger fragments

All dates are relative to "today" in the configured location, so a
scenario looks the same whenever it is loaded.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "sick-overflow"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Services the loaders drive
  - timeoff/presets.go: Default leave types
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/store/sqlite"
	"github.com/warp/leave-ledger/timeoff"
)

const scenarioApprover = "hr-demo"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "steady-employee",
		Name:        "Steady Employee",
		Description: "Two weeks of attendance, an approved annual leave, a pending casual leave and a compensatory credit",
	},
	{
		ID:          "sick-overflow",
		Name:        "Sick Leave Overflow",
		Description: "Sick leave beyond its allowance is taken from Annual Leave, then from LWP",
	},
	{
		ID:          "new-joiner",
		Name:        "New Joiner",
		Description: "Hired two months ago: no accrual before the hire month, a session running now",
	},
	{
		ID:          "backend-figures",
		Name:        "Backend Figures",
		Description: "Ledger months where backend-reported deductions and extra credits win over computed ones",
	},
}

type scenarioLoader func(h *Handler, ctx context.Context) error

var scenarioLoaders = map[string]scenarioLoader{
	"steady-employee": (*Handler).loadSteadyEmployeeScenario,
	"sick-overflow":   (*Handler).loadSickOverflowScenario,
	"new-joiner":      (*Handler).loadNewJoinerScenario,
	"backend-figures": (*Handler).loadBackendFiguresScenario,
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, r, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, r, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, ScenarioDTO{ID: current, Name: current, Description: "Currently loaded scenario"})
}

// LoadScenario resets the database and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	if err := load(h, ctx); err != nil {
		h.fail(w, r, "Failed to load scenario", fmt.Errorf("%s: %w", req.ScenarioID, err))
		return
	}

	h.setScenario(req.ScenarioID)
	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data and seeds the default leave types again.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.setScenario("")
	_, err := h.Store.SeedLeaveTypes(ctx, timeoff.DefaultLeaveTypes(h.Requests.UnpaidLabel))
	return err
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSteadyEmployeeScenario(ctx context.Context) error {
	today := h.today()
	emp := sqlite.Employee{
		ID:       "emp-priya",
		Name:     "Priya Raman",
		Email:    "priya@example.com",
		HireDate: today.AddMonths(-26).MonthOf().Start().Time,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	// Two weeks of closed days; one late arrival and one split day.
	for i := 14; i >= 1; i-- {
		date := today.AddDays(-i)
		if isWeekend(date) {
			continue
		}
		day := attendance.Day{
			EmployeeID: generic.EmployeeID(emp.ID),
			Date:       date,
			Sessions:   []attendance.Session{{Start: "09:05", End: "17:45"}},
		}
		switch i {
		case 3:
			day.Status = attendance.StatusLate
			day.Sessions = []attendance.Session{{Start: "10:20", End: "18:40"}}
		case 5:
			day.Sessions = []attendance.Session{{Start: "08:50", End: "12:30"}, {Start: "13:15", End: "17:30"}}
		}
		if err := h.Attendance.Record(ctx, day); err != nil {
			return err
		}
	}

	lastMonth := today.MonthOf().Prev().Start()
	if err := h.approved(ctx, timeoff.LeaveRequest{
		EmployeeID: generic.EmployeeID(emp.ID),
		LeaveType:  timeoff.AnnualLeave().Name,
		StartDate:  lastMonth.AddDays(9),
		EndDate:    lastMonth.AddDays(10),
		Reason:     "Family visit",
	}); err != nil {
		return err
	}
	if _, err := h.Requests.Submit(ctx, timeoff.LeaveRequest{
		EmployeeID: generic.EmployeeID(emp.ID),
		LeaveType:  timeoff.CasualLeave().Name,
		StartDate:  today.AddDays(7),
		HalfDay:    true,
		Reason:     "Appointment",
	}, h.now()); err != nil {
		return err
	}

	assigned := today.AddDays(-20)
	return h.Store.SaveCredit(ctx, timeoff.CompensatoryCredit{
		ID:           "credit-priya-1",
		EmployeeID:   generic.EmployeeID(emp.ID),
		Credits:      decimal.NewFromInt(1),
		AssignedDate: assigned,
		ExpiryDate:   assigned.AddDays(DefaultCreditValidityDays),
		Status:       timeoff.CreditActive,
		Reason:       "Weekend release support",
	})
}

func (h *Handler) loadSickOverflowScenario(ctx context.Context) error {
	today := h.today()
	emp := sqlite.Employee{
		ID:       "emp-marco",
		Name:     "Marco Bianchi",
		Email:    "marco@example.com",
		HireDate: today.AddMonths(-14).MonthOf().Start().Time,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	// 12 sick days against a 10 day allowance: 10 Sick + 2 Annual.
	start := today.MonthOf().Start()
	if today.Month() > time.January {
		start = today.MonthOf().Prev().Start()
	}
	if err := h.approved(ctx, timeoff.LeaveRequest{
		EmployeeID: generic.EmployeeID(emp.ID),
		LeaveType:  timeoff.SickLeave().Name,
		StartDate:  start,
		EndDate:    start.AddDays(11),
		Reason:     "Surgery and recovery",
	}); err != nil {
		return err
	}

	// Leaves 3 Annual days, so the next sick week ends in LWP.
	annualLeft := timeoff.AnnualLeave().AnnualAllocation.Sub(decimal.NewFromInt(2))
	if err := h.approved(ctx, timeoff.LeaveRequest{
		EmployeeID: generic.EmployeeID(emp.ID),
		LeaveType:  timeoff.AnnualLeave().Name,
		StartDate:  start.AddDays(14),
		Days:       ptr(annualLeft.Sub(decimal.NewFromInt(3))),
		Reason:     "Extended travel",
	}); err != nil {
		return err
	}
	return h.approved(ctx, timeoff.LeaveRequest{
		EmployeeID: generic.EmployeeID(emp.ID),
		LeaveType:  timeoff.SickLeave().Name,
		StartDate:  today,
		EndDate:    today.AddDays(4),
		Reason:     "Flu",
	})
}

func (h *Handler) loadNewJoinerScenario(ctx context.Context) error {
	today := h.today()
	hire := today.MonthOf().Prev().Prev().Start().AddDays(14)
	emp := sqlite.Employee{
		ID:       "emp-aisha",
		Name:     "Aisha Khan",
		Email:    "aisha@example.com",
		HireDate: hire.Time,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	for date := hire; date.Before(today); date = date.AddDays(1) {
		if isWeekend(date) {
			continue
		}
		if err := h.Attendance.Record(ctx, attendance.Day{
			EmployeeID: generic.EmployeeID(emp.ID),
			Date:       date,
			CheckIn:    "09:10",
			CheckOut:   "17:40",
		}); err != nil {
			return err
		}
	}

	// Open a session earlier today so the live timer has something to show.
	now := h.now()
	checkIn := now.Add(-90 * time.Minute)
	if !generic.DayOf(checkIn, h.Location).Equal(today) {
		checkIn = now
	}
	_, err := h.Attendance.CheckIn(ctx, generic.EmployeeID(emp.ID), checkIn)
	return err
}

func (h *Handler) loadBackendFiguresScenario(ctx context.Context) error {
	today := h.today()
	emp := sqlite.Employee{
		ID:       "emp-ravi",
		Name:     "Ravi Menon",
		Email:    "ravi@example.com",
		HireDate: generic.NewTimePoint(today.Year()-3, time.April, 1).Time,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	current := today.MonthOf()
	twoBack := current.Prev().Prev()
	if err := h.approved(ctx, timeoff.LeaveRequest{
		EmployeeID: generic.EmployeeID(emp.ID),
		LeaveType:  timeoff.AnnualLeave().Name,
		StartDate:  twoBack.Start().AddDays(4),
		EndDate:    twoBack.Start().AddDays(6),
		Reason:     "Conference",
	}); err != nil {
		return err
	}

	// The backend says only 1 day was deducted that month and adds half a day.
	if err := h.Store.SaveLedgerFragment(ctx, generic.EmployeeID(emp.ID), timeoff.LedgerFragment{
		Month:       twoBack,
		Deducted:    ptr(decimal.NewFromInt(1)),
		ExtraCredit: ptr(decimal.RequireFromString("0.5")),
	}); err != nil {
		return err
	}
	// Last month: nothing deducted, one unpaid day.
	if err := h.Store.SaveLedgerFragment(ctx, generic.EmployeeID(emp.ID), timeoff.LedgerFragment{
		Month:    current.Prev(),
		Deducted: ptr(decimal.Zero),
		LWP:      ptr(decimal.NewFromInt(1)),
	}); err != nil {
		return err
	}

	return h.Store.SaveExtraCredit(ctx, timeoff.ExtraCredit{
		ID:         "extra-ravi-1",
		EmployeeID: generic.EmployeeID(emp.ID),
		Month:      current,
		Days:       decimal.NewFromInt(2),
		Reason:     "Long service award",
		CreatedAt:  h.now(),
	})
}

// approved submits req and approves it right away.
func (h *Handler) approved(ctx context.Context, req timeoff.LeaveRequest) error {
	created, err := h.Requests.Submit(ctx, req, h.now())
	if err != nil {
		return err
	}
	_, err = h.Requests.Approve(ctx, created.ID, scenarioApprover, h.now())
	return err
}

func isWeekend(tp generic.TimePoint) bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func ptr[T any](v T) *T { return &v }
