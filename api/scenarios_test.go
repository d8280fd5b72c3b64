/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Tests that each scenario loads through the API and sets up the expected
	state:
	- Employees are created
	- Requests are approved with the allocation a live approval produces
	- Ledger fragments and credits show up in the ledger

These tests double as integration tests of the services the loaders drive.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/timeoff"
)

func (e *testEnv) loadScenario(id string) {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScenarios_ListAndLoadEach(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]ScenarioDTO](t, rec)
	require.Len(t, listed, len(scenarioLoaders))

	for _, s := range listed {
		t.Run(s.ID, func(t *testing.T) {
			env.loadScenario(s.ID)

			rec := env.do(http.MethodGet, "/api/scenarios/current", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, s.ID, decode[ScenarioDTO](t, rec).ID)

			employees, err := env.store.ListEmployees(context.Background())
			require.NoError(t, err)
			assert.Len(t, employees, 1)
		})
	}
}

func TestScenario_Unknown(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_SickOverflow(t *testing.T) {
	// GIVEN: The sick overflow scenario
	env := newTestEnv(t)
	env.loadScenario("sick-overflow")

	// WHEN: Marco's requests are listed
	reqs, err := env.store.ListLeaveRequests(context.Background(), "emp-marco")
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	// THEN: Every request is approved and the last one ends in LWP
	var last timeoff.LeaveRequest
	for _, r := range reqs {
		assert.Equal(t, timeoff.StatusApproved, r.Status)
		assert.Equal(t, scenarioApprover, r.ApprovedBy)
		if last.StartDate.IsZero() || r.StartDate.After(last.StartDate) {
			last = r
		}
	}
	assertDec(t, "0", last.Allocation.For("Sick Leave"))
	assertDec(t, "3", last.Allocation.For("Annual Leave"))
	assertDec(t, "2", last.Allocation.For("LWP"))

	rec := env.do(http.MethodGet, "/api/employees/emp-marco/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[BalanceDTO](t, rec)
	assertDec(t, "0", bal.Balances["Annual Leave"])
	assertDec(t, "0", bal.Balances["Sick Leave"])
}

func TestScenario_NewJoiner(t *testing.T) {
	env := newTestEnv(t)
	env.loadScenario("new-joiner")

	// Hired mid April: January to March never accrue.
	rec := env.do(http.MethodGet, "/api/employees/emp-aisha/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ledger := decode[LedgerResponse](t, rec)
	require.Len(t, ledger.Rows, 6)
	for _, row := range ledger.Rows[:3] {
		assert.False(t, row.Accrued, row.Month)
		assertDec(t, "0", row.Closing)
	}
	assert.True(t, ledger.Rows[3].Accrued)

	// A session is running today.
	rec = env.do(http.MethodGet, "/api/employees/emp-aisha/attendance/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	today := decode[TodayDTO](t, rec)
	assert.True(t, today.Running)
	assert.Equal(t, 90*60, today.WorkedSeconds)
}

func TestScenario_BackendFigures(t *testing.T) {
	env := newTestEnv(t)
	env.loadScenario("backend-figures")

	rec := env.do(http.MethodGet, "/api/employees/emp-ravi/ledger?from=2025-04&to=2025-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[LedgerResponse](t, rec).Rows
	require.Len(t, rows, 3)

	// April: the backend deducted 1 day of the 3 requested.
	assert.Equal(t, "backend", rows[0].DeductedSource)
	assertDec(t, "1", rows[0].Deducted)
	assert.Equal(t, "backend", rows[0].ExtraCreditSource)
	assertDec(t, "0.5", rows[0].ExtraCredit)

	// May: the reported unpaid day fits in the balance, so it is deducted.
	assert.Equal(t, "backend", rows[1].DeductedSource)
	assert.Equal(t, "backend", rows[1].LWPSource)
	assertDec(t, "1", rows[1].Deducted)
	assertDec(t, "0", rows[1].LWP)

	// June: the manual extra credit is computed locally.
	assert.Equal(t, "computed", rows[2].ExtraCreditSource)
	assertDec(t, "2", rows[2].ExtraCredit)
}

func TestResetDatabase(t *testing.T) {
	env := newTestEnv(t)
	env.loadScenario("steady-employee")

	reqs, err := env.store.ListLeaveRequests(context.Background(), "emp-priya")
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	rec := env.do(http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	employees, err := env.store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, employees)

	// Leave types are seeded again so the service stays usable.
	types, err := env.store.ListLeaveTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 4)

	rec = env.do(http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current *ScenarioDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Nil(t, current)
}

func TestScenario_SteadyEmployeeCredit(t *testing.T) {
	env := newTestEnv(t)
	env.loadScenario("steady-employee")

	credits, err := env.store.ListCredits(context.Background(), "emp-priya")
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.True(t, credits[0].Credits.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, timeoff.CreditActive, credits[0].Status)
}
