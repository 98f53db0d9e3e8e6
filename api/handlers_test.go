/*
handlers_test.go - HTTP-level tests for the payroll API

Tests for:
- Preview and generation round trips over the router
- Error status mapping (400/404/409)
- Entry edit, recalculation and loan-deduction reversal endpoints
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

func testServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	engine := payroll.NewEngine(m, payroll.EvalConfig{}, nil)
	router := NewRouter(NewHandler(engine, m, nil), nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, m
}

func seedMaster(t *testing.T, m *store.Memory) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, m.SaveEmployee(ctx, payroll.Employee{
		ID:          "emp-1",
		Name:        "Amal",
		Salary:      decimal.NewFromInt(900),
		Status:      payroll.EmployeeActive,
		WorkingDays: 30,
	}))
	require.NoError(t, m.SaveLoan(ctx, payroll.LoanInstallment{
		ID:               "loan-1",
		EmployeeID:       "emp-1",
		MonthlyDeduction: decimal.NewFromInt(50),
		RemainingAmount:  decimal.NewFromInt(500),
	}))
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func marchGenerate() GenerateRequest {
	return GenerateRequest{
		Period:    "2024-03",
		StartDate: payroll.NewDate(2024, time.March, 1),
		EndDate:   payroll.NewDate(2024, time.March, 31),
	}
}

func TestPreviewEndpoint(t *testing.T) {
	// GIVEN: A seeded server
	srv, m := testServer(t)
	seedMaster(t, m)

	// WHEN: Previewing with a comparison scenario disabling loans
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/preview", PreviewRequest{
		Period:    "2024-03",
		StartDate: payroll.NewDate(2024, time.March, 1),
		EndDate:   payroll.NewDate(2024, time.March, 31),
		Comparisons: []ScenarioSpecRequest{
			{Key: "no-loans", Toggles: map[string]bool{"loans": false}},
		},
	})

	// THEN: Base first, comparison second, and nothing was persisted
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decodeBody[PreviewResponse](t, resp)
	require.Len(t, preview.Scenarios, 2)
	assert.Equal(t, "base", preview.Scenarios[0].Key)
	assert.True(t, preview.Scenarios[0].Totals.Net.Equal(decimal.NewFromInt(850)))
	assert.True(t, preview.Scenarios[1].Totals.Net.Equal(decimal.NewFromInt(900)))

	runsResp := doJSON(t, http.MethodGet, srv.URL+"/api/payroll/runs", nil)
	require.Equal(t, http.StatusOK, runsResp.StatusCode)
	assert.Empty(t, decodeBody[[]RunDTO](t, runsResp))
}

func TestPreview_InvalidPeriodReturns400(t *testing.T) {
	srv, m := testServer(t)
	seedMaster(t, m)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/preview", PreviewRequest{
		Period:    "2024-03",
		StartDate: payroll.NewDate(2024, time.March, 31),
		EndDate:   payroll.NewDate(2024, time.March, 1),
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEndpoint_RoundTrip(t *testing.T) {
	// GIVEN: A seeded server
	srv, m := testServer(t)
	seedMaster(t, m)

	// WHEN: Generating March
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/runs", marchGenerate())

	// THEN: 201 with the run and its single entry
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[RunWithEntriesResponse](t, resp)
	require.Len(t, created.Entries, 1)
	assert.True(t, created.Entries[0].LoanDeduction.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "default", created.Run.CalendarID)

	// AND: Fetching the run returns the same entry
	getResp := doJSON(t, http.MethodGet, srv.URL+"/api/payroll/runs/"+created.Run.ID, nil)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	fetched := decodeBody[RunWithEntriesResponse](t, getResp)
	assert.Equal(t, created.Entries[0].ID, fetched.Entries[0].ID)

	// AND: A second generation for the same period conflicts
	dupResp := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/runs", marchGenerate())
	defer dupResp.Body.Close()
	assert.Equal(t, http.StatusConflict, dupResp.StatusCode)
}

func TestEditEntryAndRecalculateEndpoints(t *testing.T) {
	srv, m := testServer(t)
	seedMaster(t, m)

	created := decodeBody[RunWithEntriesResponse](t,
		doJSON(t, http.MethodPost, srv.URL+"/api/payroll/runs", marchGenerate()))
	entry := created.Entries[0]

	// WHEN: Patching the gross
	newGross := decimal.NewFromInt(1200)
	patchResp := doJSON(t, http.MethodPatch,
		srv.URL+"/api/payroll/runs/"+created.Run.ID+"/entries/"+entry.ID,
		EntryPatchRequest{GrossPay: &newGross})
	require.Equal(t, http.StatusOK, patchResp.StatusCode)
	patched := decodeBody[EntryDTO](t, patchResp)
	assert.True(t, patched.NetPay.Equal(decimal.NewFromInt(1150)))

	// AND: Recalculating the run
	recalcResp := doJSON(t, http.MethodPost,
		srv.URL+"/api/payroll/runs/"+created.Run.ID+"/recalculate", nil)
	require.Equal(t, http.StatusOK, recalcResp.StatusCode)
	run := decodeBody[RunDTO](t, recalcResp)
	assert.True(t, run.GrossAmount.Equal(decimal.NewFromInt(1200)))
	assert.True(t, run.NetAmount.Equal(decimal.NewFromInt(1150)))
}

func TestDeleteRunEndpoint_GuardAndUndo(t *testing.T) {
	srv, m := testServer(t)
	seedMaster(t, m)

	created := decodeBody[RunWithEntriesResponse](t,
		doJSON(t, http.MethodPost, srv.URL+"/api/payroll/runs", marchGenerate()))
	runURL := srv.URL + "/api/payroll/runs/" + created.Run.ID

	// Deletion conflicts while loan deductions are outstanding
	delResp := doJSON(t, http.MethodDelete, runURL, nil)
	delResp.Body.Close()
	assert.Equal(t, http.StatusConflict, delResp.StatusCode)

	// Undo the loan deductions, restoring the balance
	undoResp := doJSON(t, http.MethodPost, runURL+"/undo-loan-deductions", nil)
	undoResp.Body.Close()
	require.Equal(t, http.StatusOK, undoResp.StatusCode)

	loanResp := doJSON(t, http.MethodGet, srv.URL+"/api/loans/loan-1", nil)
	require.Equal(t, http.StatusOK, loanResp.StatusCode)
	loan := decodeBody[LoanDTO](t, loanResp)
	assert.True(t, loan.RemainingAmount.Equal(decimal.NewFromInt(500)))

	// Deletion now succeeds, and the run is gone
	delResp = doJSON(t, http.MethodDelete, runURL, nil)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	getResp := doJSON(t, http.MethodGet, runURL, nil)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestMasterDataEndpoints(t *testing.T) {
	srv, _ := testServer(t)

	// Upsert an employee over the API
	empResp := doJSON(t, http.MethodPost, srv.URL+"/api/employees", EmployeeRequest{
		ID:     "emp-9",
		Name:   "Noor",
		Salary: decimal.NewFromInt(1200),
	})
	empResp.Body.Close()
	require.Equal(t, http.StatusCreated, empResp.StatusCode)

	listResp := doJSON(t, http.MethodGet, srv.URL+"/api/employees", nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	employees := decodeBody[[]EmployeeRequest](t, listResp)
	require.Len(t, employees, 1)
	assert.Equal(t, "active", employees[0].Status)

	// Unknown event types are rejected
	evResp := doJSON(t, http.MethodPost, srv.URL+"/api/events", EventRequest{
		ID:         "ev-1",
		EmployeeID: "emp-9",
		Type:       "gift",
		Amount:     decimal.NewFromInt(10),
		EventDate:  payroll.NewDate(2024, time.March, 1),
	})
	evResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, evResp.StatusCode)

	// Missing loans map to 404
	loanResp := doJSON(t, http.MethodGet, srv.URL+"/api/loans/missing", nil)
	loanResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, loanResp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
