// Package store provides payroll.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	employees map[payroll.EmployeeID]payroll.Employee
	events    map[payroll.EmployeeID][]payroll.EmployeeEvent
	vacations map[payroll.EmployeeID][]payroll.VacationRequest
	loans     map[payroll.LoanID]payroll.LoanInstallment

	runs     map[payroll.RunID]payroll.PayrollRun
	entries  map[payroll.RunID][]payroll.PayrollEntry
	payments map[payroll.RunID][]payroll.LoanPayment

	// txMu serializes WithTx sections; the payroll engine is single-writer
	// per run, so coarse transaction serialization is enough here.
	txMu sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[payroll.EmployeeID]payroll.Employee),
		events:    make(map[payroll.EmployeeID][]payroll.EmployeeEvent),
		vacations: make(map[payroll.EmployeeID][]payroll.VacationRequest),
		loans:     make(map[payroll.LoanID]payroll.LoanInstallment),
		runs:      make(map[payroll.RunID]payroll.PayrollRun),
		entries:   make(map[payroll.RunID][]payroll.PayrollEntry),
		payments:  make(map[payroll.RunID][]payroll.LoanPayment),
	}
}

// =============================================================================
// SEEDING - The external HR workflows, reduced to direct writes
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) SaveEvent(_ context.Context, e payroll.EmployeeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.events[e.EmployeeID] {
		if existing.ID == e.ID {
			m.events[e.EmployeeID][i] = e
			return nil
		}
	}
	m.events[e.EmployeeID] = append(m.events[e.EmployeeID], e)
	return nil
}

func (m *Memory) SaveVacation(_ context.Context, v payroll.VacationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.vacations[v.EmployeeID] {
		if existing.ID == v.ID {
			m.vacations[v.EmployeeID][i] = v
			return nil
		}
	}
	m.vacations[v.EmployeeID] = append(m.vacations[v.EmployeeID], v)
	return nil
}

func (m *Memory) SaveLoan(_ context.Context, l payroll.LoanInstallment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[l.ID] = l
	return nil
}

// GetLoan reads one loan back (used by tests and the API layer).
func (m *Memory) GetLoan(_ context.Context, id payroll.LoanID) (*payroll.LoanInstallment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, payroll.ErrLoanNotFound
	}
	return &l, nil
}

// =============================================================================
// SOURCE
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, payroll.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (m *Memory) ListActiveEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.Employee
	for _, emp := range m.employees {
		if emp.Status == payroll.EmployeeActive {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListEvents(_ context.Context, id payroll.EmployeeID, from, to payroll.Date) ([]payroll.EmployeeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.EmployeeEvent
	for _, e := range m.events[id] {
		if eventIntersects(e, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// eventIntersects keeps one-off events dated inside [from, to] and any
// recurring event whose effective window touches it. A malformed recurrence
// end (before the anchor) reads as open-ended.
func eventIntersects(e payroll.EmployeeEvent, from, to payroll.Date) bool {
	if !e.Recurring() {
		return !e.EventDate.Before(from) && !e.EventDate.After(to)
	}
	if e.EventDate.After(to) {
		return false
	}
	end := e.RecurrenceEnd
	if end == nil || end.IsZero() || end.Before(e.EventDate) {
		return true
	}
	return !end.Before(from)
}

func (m *Memory) ListVacations(_ context.Context, id payroll.EmployeeID, from, to payroll.Date) ([]payroll.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.VacationRequest
	for _, v := range m.vacations[id] {
		if v.StartDate.BeforeOrEqual(to) && v.EndDate.AfterOrEqual(from) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *Memory) ListLoans(_ context.Context, id payroll.EmployeeID) ([]payroll.LoanInstallment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.LoanInstallment
	for _, l := range m.loans {
		if l.EmployeeID == id {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// RUN PERSISTENCE
// =============================================================================

func (m *Memory) FindRunByPeriod(_ context.Context, period, calendarID string) (*payroll.PayrollRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, run := range m.runs {
		if run.Period == period && run.CalendarID == calendarID {
			r := run
			return &r, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateRun(_ context.Context, run *payroll.PayrollRun, entries []payroll.PayrollEntry, payments []payroll.LoanPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	m.entries[run.ID] = append([]payroll.PayrollEntry(nil), entries...)
	m.payments[run.ID] = append([]payroll.LoanPayment(nil), payments...)
	return nil
}

func (m *Memory) GetRun(_ context.Context, id payroll.RunID) (*payroll.PayrollRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, payroll.ErrRunNotFound
	}
	return &run, nil
}

func (m *Memory) ListRuns(_ context.Context) ([]payroll.PayrollRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.PayrollRun, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (m *Memory) ListEntries(_ context.Context, runID payroll.RunID) ([]payroll.PayrollEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.PayrollEntry(nil), m.entries[runID]...), nil
}

func (m *Memory) ListLoanPayments(_ context.Context, runID payroll.RunID) ([]payroll.LoanPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.LoanPayment(nil), m.payments[runID]...), nil
}

func (m *Memory) UpdateRunTotals(_ context.Context, id payroll.RunID, totals payroll.RunTotals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.GrossAmount = totals.Gross
	run.NetAmount = totals.Net
	run.TotalDeductions = totals.Deductions
	m.runs[id] = run
	return nil
}

func (m *Memory) UpdateEntry(_ context.Context, entry payroll.PayrollEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.entries[entry.RunID]
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			return nil
		}
	}
	return payroll.ErrEntryNotFound
}

func (m *Memory) AdjustLoanRemaining(_ context.Context, id payroll.LoanID, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return payroll.ErrLoanNotFound
	}
	loan.RemainingAmount = loan.RemainingAmount.Add(delta)
	m.loans[id] = loan
	return nil
}

func (m *Memory) DeleteLoanPayments(_ context.Context, runID payroll.RunID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payments, runID)
	return nil
}

func (m *Memory) DeleteRun(_ context.Context, id payroll.RunID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[id]; !ok {
		return payroll.ErrRunNotFound
	}
	delete(m.runs, id)
	delete(m.entries, id)
	delete(m.payments, id)
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn with snapshot/rollback semantics. Sections are
// serialized against each other; reads outside transactions stay lock-free.
func (m *Memory) WithTx(_ context.Context, fn func(payroll.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	loans    map[payroll.LoanID]payroll.LoanInstallment
	runs     map[payroll.RunID]payroll.PayrollRun
	entries  map[payroll.RunID][]payroll.PayrollEntry
	payments map[payroll.RunID][]payroll.LoanPayment
}

func (m *Memory) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := memorySnapshot{
		loans:    make(map[payroll.LoanID]payroll.LoanInstallment, len(m.loans)),
		runs:     make(map[payroll.RunID]payroll.PayrollRun, len(m.runs)),
		entries:  make(map[payroll.RunID][]payroll.PayrollEntry, len(m.entries)),
		payments: make(map[payroll.RunID][]payroll.LoanPayment, len(m.payments)),
	}
	for k, v := range m.loans {
		snap.loans[k] = v
	}
	for k, v := range m.runs {
		snap.runs[k] = v
	}
	for k, v := range m.entries {
		snap.entries[k] = append([]payroll.PayrollEntry(nil), v...)
	}
	for k, v := range m.payments {
		snap.payments[k] = append([]payroll.LoanPayment(nil), v...)
	}
	return snap
}

func (m *Memory) restore(snap memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans = snap.loans
	m.runs = snap.runs
	m.entries = snap.entries
	m.payments = snap.payments
}
