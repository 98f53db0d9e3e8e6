package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYROLL RUN - The system of record for what was applied
// =============================================================================

type RunStatus string

const (
	RunDraft     RunStatus = "draft"
	RunCompleted RunStatus = "completed"
)

// DefaultCalendarID keys runs generated without an explicit pay calendar.
const DefaultCalendarID = "default"

// PayrollRun is one finalized (or draft) generation for a period.
type PayrollRun struct {
	ID         RunID
	Period     string // free-text label, e.g. "2024-03"
	StartDate  Date
	EndDate    Date
	CalendarID string
	Scenario   string
	Toggles    Toggles
	Status     RunStatus

	GrossAmount     decimal.Decimal
	NetAmount       decimal.Decimal
	TotalDeductions decimal.Decimal
}

// PayrollEntry is one employee's row in a run. Fields may be edited after
// creation (manual correction); the run's aggregate totals are then stale
// until Recalculate runs.
type PayrollEntry struct {
	ID         EntryID
	RunID      RunID
	EmployeeID EmployeeID

	BaseSalary decimal.Decimal
	GrossPay   decimal.Decimal
	NetPay     decimal.Decimal

	WorkingDays       int
	ActualWorkingDays int
	VacationDays      int

	Allowances map[string]decimal.Decimal

	TaxDeduction             decimal.Decimal
	SocialSecurityDeduction  decimal.Decimal
	HealthInsuranceDeduction decimal.Decimal
	LoanDeduction            decimal.Decimal
	OtherDeductions          decimal.Decimal
	BonusAmount              decimal.Decimal
}

// DeductionTotal sums the entry's current deduction fields.
func (e PayrollEntry) DeductionTotal() decimal.Decimal {
	return e.TaxDeduction.
		Add(e.SocialSecurityDeduction).
		Add(e.HealthInsuranceDeduction).
		Add(e.LoanDeduction).
		Add(e.OtherDeductions)
}

// LoanPayment records one loan installment deducted by a run, so deletion
// can reverse it onto the originating loan.
type LoanPayment struct {
	ID         string
	RunID      RunID
	LoanID     LoanID
	EmployeeID EmployeeID
	Amount     decimal.Decimal
}

// =============================================================================
// TOTALS
// =============================================================================

// TotalsOf re-derives aggregate totals from entries' current field values.
// Per-entry net is recomputed as gross minus the summed deduction fields,
// which is exactly the invariant Recalculate restores after a manual edit.
func TotalsOf(entries []PayrollEntry) RunTotals {
	totals := RunTotals{Gross: decimal.Zero, Net: decimal.Zero, Deductions: decimal.Zero}
	for i := range entries {
		deductions := entries[i].DeductionTotal()
		net := entries[i].GrossPay.Sub(deductions)
		totals.Gross = totals.Gross.Add(entries[i].GrossPay)
		totals.Deductions = totals.Deductions.Add(deductions)
		totals.Net = totals.Net.Add(net)
	}
	return totals
}
