/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Payroll:
    POST   /api/payroll/preview                        Multi-scenario preview
    POST   /api/payroll/runs                           Generate (commit) a run
    GET    /api/payroll/runs                           List runs
    GET    /api/payroll/runs/{id}                      Run with entries
    PATCH  /api/payroll/runs/{id}/entries/{entryID}    Manual entry correction
    POST   /api/payroll/runs/{id}/recalculate          Re-derive totals
    POST   /api/payroll/runs/{id}/undo-loan-deductions Reverse loan deductions
    DELETE /api/payroll/runs/{id}                      Delete run

  Master data (seed surface; a full HR system owns these upstream):
    GET/POST /api/employees       List / upsert employees
    GET      /api/employees/{id}  Employee details
    POST     /api/events          Upsert financial event
    POST     /api/vacations       Upsert vacation
    POST     /api/loans           Upsert loan
    GET      /api/loans/{id}      Loan with current balance

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Run/entry/employee/loan not found
  - 409: Duplicate period, outstanding loan deductions
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. This service is expected to sit behind the
  HR system's gateway.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - payroll/engine.go: The domain logic handlers delegate to
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DataStore is everything the API needs from storage: the engine's
// transactional store plus the master-data writes.
type DataStore interface {
	payroll.TxStore

	SaveEmployee(ctx context.Context, emp payroll.Employee) error
	SaveEvent(ctx context.Context, e payroll.EmployeeEvent) error
	SaveVacation(ctx context.Context, v payroll.VacationRequest) error
	SaveLoan(ctx context.Context, l payroll.LoanInstallment) error
	GetLoan(ctx context.Context, id payroll.LoanID) (*payroll.LoanInstallment, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *payroll.Engine
	Store  DataStore
	Logger *slog.Logger
}

// NewHandler creates a new handler around the engine and its store.
func NewHandler(engine *payroll.Engine, store DataStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Engine: engine, Store: store, Logger: logger}
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// Preview evaluates the base scenario plus comparisons without persisting.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var comparisons []payroll.ScenarioSpec
	for _, spec := range req.Comparisons {
		comparisons = append(comparisons, payroll.ScenarioSpec{
			Key:     spec.Key,
			Toggles: payroll.TogglesFrom(spec.Toggles),
		})
	}

	result, err := h.Engine.Preview(r.Context(), payroll.PreviewRequest{
		Period:      req.Period,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CalendarID:  req.CalendarID,
		Toggles:     payroll.TogglesFrom(req.Toggles),
		Comparisons: comparisons,
	})
	if err != nil {
		writeDomainError(w, "Preview failed", err)
		return
	}

	resp := PreviewResponse{
		Period:    result.Period,
		StartDate: result.Window.Start.String(),
		EndDate:   result.Window.End.String(),
	}
	for _, sc := range result.Scenarios {
		resp.Scenarios = append(resp.Scenarios, scenarioResultDTO(sc))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GenerateRun commits one payroll run with overrides burned in.
func (h *Handler) GenerateRun(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Engine.Generate(r.Context(), payroll.GenerateRequest{
		Period:     req.Period,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CalendarID: req.CalendarID,
		Scenario:   req.Scenario,
		Toggles:    payroll.TogglesFrom(req.Toggles),
		Overrides:  req.Overrides.toDomain(),
		Status:     payroll.RunStatus(req.Status),
	})
	if err != nil {
		writeDomainError(w, "Generation failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, RunWithEntriesResponse{
		Run:     runDTO(result.Run),
		Entries: entryDTOs(result.Entries),
	})
}

// ListRuns returns all payroll runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Engine.ListRuns(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = runDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns one run with its entries.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := payroll.RunID(chi.URLParam(r, "id"))

	run, err := h.Engine.GetRun(r.Context(), runID)
	if err != nil {
		writeDomainError(w, "Failed to get run", err)
		return
	}
	entries, err := h.Engine.ListEntries(r.Context(), runID)
	if err != nil {
		writeDomainError(w, "Failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, RunWithEntriesResponse{
		Run:     runDTO(*run),
		Entries: entryDTOs(entries),
	})
}

// EditEntry applies a manual correction to one entry. Run totals stay stale
// until a recalculation.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	runID := payroll.RunID(chi.URLParam(r, "id"))
	entryID := payroll.EntryID(chi.URLParam(r, "entryID"))

	var patch EntryPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.Engine.EditEntry(r.Context(), runID, entryID, patch.toDomain())
	if err != nil {
		writeDomainError(w, "Failed to edit entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entryDTO(*entry))
}

// RecalculateRun re-derives the run's totals from its entries' current
// field values.
func (h *Handler) RecalculateRun(w http.ResponseWriter, r *http.Request) {
	runID := payroll.RunID(chi.URLParam(r, "id"))

	run, err := h.Engine.Recalculate(r.Context(), runID)
	if err != nil {
		writeDomainError(w, "Recalculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, runDTO(*run))
}

// UndoLoanDeductions reverses the run's loan deductions back onto the loans.
func (h *Handler) UndoLoanDeductions(w http.ResponseWriter, r *http.Request) {
	runID := payroll.RunID(chi.URLParam(r, "id"))

	if err := h.Engine.UndoLoanDeductions(r.Context(), runID); err != nil {
		writeDomainError(w, "Failed to undo loan deductions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteRun removes a run; conflicts while loan deductions are outstanding.
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := payroll.RunID(chi.URLParam(r, "id"))

	if err := h.Engine.DeleteRun(r.Context(), runID); err != nil {
		writeDomainError(w, "Failed to delete run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MASTER DATA HANDLERS
// =============================================================================

// ListEmployees returns all active employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListActiveEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeRequest, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeRequest{
			ID:          string(e.ID),
			Name:        e.Name,
			Salary:      e.Salary,
			Status:      string(e.Status),
			WorkingDays: e.WorkingDays,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, EmployeeRequest{
		ID:          string(emp.ID),
		Name:        emp.Name,
		Salary:      emp.Salary,
		Status:      string(emp.Status),
		WorkingDays: emp.WorkingDays,
	})
}

// UpsertEmployee creates or replaces one employee.
func (h *Handler) UpsertEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	status := payroll.EmployeeStatus(req.Status)
	if status == "" {
		status = payroll.EmployeeActive
	}

	emp := payroll.Employee{
		ID:          payroll.EmployeeID(req.ID),
		Name:        req.Name,
		Salary:      req.Salary,
		Status:      status,
		WorkingDays: req.WorkingDays,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// UpsertEvent creates or replaces one financial event.
func (h *Handler) UpsertEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "id and employeeId are required", nil)
		return
	}

	eventType, ok := payroll.ParseEventType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown event type: "+req.Type, nil)
		return
	}

	recurrence := payroll.RecurrenceType(req.Recurrence)
	if recurrence == "" {
		recurrence = payroll.RecurrenceNone
	}
	status := payroll.EventStatus(req.Status)
	if status == "" {
		status = payroll.EventStatusActive
	}
	affectsPayroll := true
	if req.AffectsPayroll != nil {
		affectsPayroll = *req.AffectsPayroll
	}

	event := payroll.EmployeeEvent{
		ID:             payroll.EventID(req.ID),
		EmployeeID:     payroll.EmployeeID(req.EmployeeID),
		Type:           eventType,
		Amount:         req.Amount,
		EventDate:      req.EventDate,
		Recurrence:     recurrence,
		RecurrenceEnd:  req.RecurrenceEnd,
		AffectsPayroll: affectsPayroll,
		Status:         status,
	}
	if err := h.Store.SaveEvent(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save event", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// UpsertVacation creates or replaces one approved absence.
func (h *Handler) UpsertVacation(w http.ResponseWriter, r *http.Request) {
	var req VacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "id and employeeId are required", nil)
		return
	}
	if req.EndDate.Before(req.StartDate) {
		writeError(w, http.StatusBadRequest, "endDate before startDate", nil)
		return
	}

	deduct := true
	if req.DeductFromSalary != nil {
		deduct = *req.DeductFromSalary
	}

	vacation := payroll.VacationRequest{
		ID:               payroll.VacationID(req.ID),
		EmployeeID:       payroll.EmployeeID(req.EmployeeID),
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		LeaveType:        req.LeaveType,
		DeductFromSalary: deduct,
	}
	if err := h.Store.SaveVacation(r.Context(), vacation); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save vacation", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// UpsertLoan creates or replaces one loan.
func (h *Handler) UpsertLoan(w http.ResponseWriter, r *http.Request) {
	var req LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "id and employeeId are required", nil)
		return
	}
	if req.MonthlyDeduction.IsNegative() || req.RemainingAmount.IsNegative() {
		writeError(w, http.StatusBadRequest, "loan amounts must be non-negative", nil)
		return
	}

	loan := payroll.LoanInstallment{
		ID:               payroll.LoanID(req.ID),
		EmployeeID:       payroll.EmployeeID(req.EmployeeID),
		MonthlyDeduction: req.MonthlyDeduction,
		RemainingAmount:  req.RemainingAmount,
	}
	if err := h.Store.SaveLoan(r.Context(), loan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save loan", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// GetLoan returns one loan with its current remaining balance.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := payroll.LoanID(chi.URLParam(r, "id"))

	loan, err := h.Store.GetLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	writeJSON(w, http.StatusOK, LoanDTO{
		ID:               string(loan.ID),
		EmployeeID:       string(loan.EmployeeID),
		MonthlyDeduction: loan.MonthlyDeduction,
		RemainingAmount:  loan.RemainingAmount,
	})
}

// =============================================================================
// HEALTH
// =============================================================================

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP statuses: conflicts to 409,
// validation to 400, missing records to 404, everything else to 500.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, payroll.ErrDuplicatePeriod),
		errors.Is(err, payroll.ErrLoanDeductionConflict):
		writeError(w, http.StatusConflict, message, err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
