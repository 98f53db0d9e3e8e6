/*
store.go - Persistence interfaces for the payroll core

PURPOSE:
  Defines the boundary between the computation core and storage. The Source
  half covers the external HR records the core only reads; the Store half
  adds payroll-run persistence. Implementations:

  - payroll/store (memory.go): in-memory, for tests and dev
  - store/sqlite:              production SQLite

TRANSACTIONS:
  The duplicate-period check plus the run insert must be serialized, and
  loan-deduction reversal plus payment-row deletion must be atomic. TxStore
  provides WithTx for both; everything else is a plain request-scoped call.
*/
package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE - External HR records (read-only from this core)
// =============================================================================

// Source provides the employee/event/vacation/loan reads the aggregator
// needs. ListEvents must return one-off events dated inside [from, to] plus
// any recurring event whose effective window intersects it; fine-grained
// filtering stays in the aggregator.
type Source interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListActiveEmployees(ctx context.Context) ([]Employee, error)
	ListEvents(ctx context.Context, id EmployeeID, from, to Date) ([]EmployeeEvent, error)
	ListVacations(ctx context.Context, id EmployeeID, from, to Date) ([]VacationRequest, error)
	ListLoans(ctx context.Context, id EmployeeID) ([]LoanInstallment, error)
}

// =============================================================================
// STORE - Payroll run persistence
// =============================================================================

// Store persists runs, entries and loan payments on top of Source.
type Store interface {
	Source

	// FindRunByPeriod returns the run for a (period, calendar) key, or nil.
	FindRunByPeriod(ctx context.Context, period, calendarID string) (*PayrollRun, error)

	// CreateRun persists a run and its entries and loan payments together.
	CreateRun(ctx context.Context, run *PayrollRun, entries []PayrollEntry, payments []LoanPayment) error

	GetRun(ctx context.Context, id RunID) (*PayrollRun, error)
	ListRuns(ctx context.Context) ([]PayrollRun, error)
	ListEntries(ctx context.Context, runID RunID) ([]PayrollEntry, error)
	ListLoanPayments(ctx context.Context, runID RunID) ([]LoanPayment, error)

	// UpdateRunTotals rewrites a run's aggregate totals after recalculation.
	UpdateRunTotals(ctx context.Context, id RunID, totals RunTotals) error

	// UpdateEntry rewrites an entry's mutable pay fields (manual correction).
	UpdateEntry(ctx context.Context, entry PayrollEntry) error

	// AdjustLoanRemaining shifts a loan's remaining amount by delta
	// (negative during generation, positive when deductions are undone).
	AdjustLoanRemaining(ctx context.Context, id LoanID, delta decimal.Decimal) error

	// DeleteLoanPayments removes a run's loan payment rows.
	DeleteLoanPayments(ctx context.Context, runID RunID) error

	// DeleteRun removes a run, cascading over entries and loan payments.
	DeleteRun(ctx context.Context, id RunID) error
}

// TxStore wraps Store with transaction support. If fn returns an error the
// transaction is rolled back, otherwise committed.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
