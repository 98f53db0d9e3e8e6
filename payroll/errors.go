/*
errors.go - Centralized error types for the payroll core

ERROR CATEGORIES:
  1. Validation errors - malformed caller input (inverted periods)
  2. Conflict errors   - duplicate period, outstanding loan deductions
  3. Not-found errors  - missing runs/employees

Only DuplicatePeriodError and LoanDeductionConflictError are meant to reach
an end user; other validation failures indicate a caller defect.
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrDuplicatePeriod is returned when a run already exists for the same
	// (period, calendar) key.
	ErrDuplicatePeriod = errors.New("payroll run already exists for period")

	// ErrLoanDeductionConflict blocks run deletion until loan deductions are
	// reversed via UndoLoanDeductions.
	ErrLoanDeductionConflict = errors.New("run has outstanding loan deductions")

	// ErrRunNotFound is returned when a referenced payroll run doesn't exist.
	ErrRunNotFound = errors.New("payroll run not found")

	// ErrEntryNotFound is returned when a referenced payroll entry doesn't exist.
	ErrEntryNotFound = errors.New("payroll entry not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLoanNotFound is returned when a referenced loan doesn't exist.
	ErrLoanNotFound = errors.New("loan not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicatePeriodError reports which (period, calendar) key collided.
type DuplicatePeriodError struct {
	Period     string
	CalendarID string
	ExistingID RunID
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("payroll run already exists for period %q calendar %q (run: %s)",
		e.Period, e.CalendarID, e.ExistingID)
}

func (e *DuplicatePeriodError) Unwrap() error { return ErrDuplicatePeriod }

// LoanDeductionConflictError reports which entries still carry loan deductions.
type LoanDeductionConflictError struct {
	RunID   RunID
	Entries []EntryID
}

func (e *LoanDeductionConflictError) Error() string {
	return fmt.Sprintf("run %s has %d entries with outstanding loan deductions; undo loan deductions first",
		e.RunID, len(e.Entries))
}

func (e *LoanDeductionConflictError) Unwrap() error { return ErrLoanDeductionConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrDuplicatePeriod) ||
		errors.Is(err, ErrLoanDeductionConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrLoanNotFound)
}
