/*
aggregate.go - Per-employee input collection

PURPOSE:
  For one employee and one period, collects everything that can move pay:
  overlapping vacations, active loan installments, one-off financial events,
  and expanded recurring-allowance occurrences. The result is a plain value
  the Scenario Evaluator consumes; no store handles leak past this point.

INCLUSION RULES:
  Vacations:  interval overlaps the period
  Loans:      remaining amount > 0, independent of dates
  Events:     anchor date inside the period, affects-payroll, active status
  Allowances: recurring occurrences intersecting the period, plus one-off
              allowance events dated inside it

Every aggregated item carries its pay effect; {bonus, commission, overtime,
allowance} add to gross, {deduction, penalty} subtract.
*/
package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATED INPUTS
// =============================================================================

// VacationItem is a vacation clipped to the aggregation period.
type VacationItem struct {
	Vacation VacationRequest
	// Days is the overlap with the period, in calendar days.
	Days int
}

// LoanItem is one active loan with the installment due this run.
type LoanItem struct {
	Loan LoanInstallment
	// Due is min(monthly deduction, remaining amount).
	Due decimal.Decimal
}

// EventItem is a one-off financial event inside the period.
type EventItem struct {
	Event  EmployeeEvent
	Effect Effect
}

// PeriodInputs is everything aggregated for one employee and one period.
type PeriodInputs struct {
	Employee Employee
	Period   Period

	Vacations  []VacationItem
	Loans      []LoanItem
	Events     []EventItem
	Allowances []Occurrence
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator collects per-employee inputs from the HR-facing store.
type Aggregator struct {
	Source Source
}

// ForEmployee aggregates one employee's inputs for the period.
func (a *Aggregator) ForEmployee(ctx context.Context, id EmployeeID, period Period) (*PeriodInputs, error) {
	emp, err := a.Source.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.collect(ctx, *emp, period)
}

func (a *Aggregator) collect(ctx context.Context, emp Employee, period Period) (*PeriodInputs, error) {
	inputs := &PeriodInputs{Employee: emp, Period: period}

	vacations, err := a.Source.ListVacations(ctx, emp.ID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	for _, v := range vacations {
		if !period.Overlaps(v.StartDate, v.EndDate) {
			continue
		}
		inputs.Vacations = append(inputs.Vacations, VacationItem{
			Vacation: v,
			Days:     period.OverlapDays(v.StartDate, v.EndDate),
		})
	}

	loans, err := a.Source.ListLoans(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	for _, l := range loans {
		if !l.Active() {
			continue
		}
		inputs.Loans = append(inputs.Loans, LoanItem{Loan: l, Due: l.InstallmentDue()})
	}

	events, err := a.Source.ListEvents(ctx, emp.ID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if !e.AffectsPayroll || e.Status != EventStatusActive {
			continue
		}
		if e.Recurring() {
			inputs.Allowances = append(inputs.Allowances, ExpandOccurrences(e, period.Start, period.End)...)
			continue
		}
		if !period.Contains(e.EventDate) {
			continue
		}
		if e.Type == EventAllowance {
			// One-off allowances join the recurring occurrences so the
			// evaluator sees a single allowance category.
			inputs.Allowances = append(inputs.Allowances, occurrenceAt(e, e.EventDate))
			continue
		}
		inputs.Events = append(inputs.Events, EventItem{Event: e, Effect: e.Type.Effect()})
	}

	return inputs, nil
}

// ForAllActive aggregates inputs for every active employee, ordered by the
// stable (name, id) key so scenario comparisons can diff row by row.
func (a *Aggregator) ForAllActive(ctx context.Context, period Period) ([]*PeriodInputs, error) {
	employees, err := a.Source.ListActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}
	sortEmployees(employees)

	out := make([]*PeriodInputs, 0, len(employees))
	for _, emp := range employees {
		inputs, err := a.collect(ctx, emp, period)
		if err != nil {
			return nil, err
		}
		out = append(out, inputs)
	}
	return out, nil
}
