/*
Package payroll implements the payroll computation core.

PURPOSE:
  Turns employee master data, dated events (bonuses, deductions, overtime,
  penalties, recurring allowances), vacations and loan installments into a
  deterministic payroll preview and, on commit, a finalized run with
  immutable per-employee entries and aggregate totals.

KEY CONCEPTS IN THIS FILE (types.go):
  - EventType: tagged with an Effect (additive/subtractive) at construction,
    so pay math never re-derives direction by string comparison
  - EmployeeEvent: one financial event, optionally recurring monthly
  - VacationRequest / LoanInstallment: the other two aggregation sources
  - Typed IDs: EmployeeID, EventID, VacationID, LoanID, RunID, EntryID

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary amount
  2. Day granularity: all dates are payroll.Date (UTC calendar days)
  3. Purity: evaluation types carry no store handles; the Engine owns I/O

SEE ALSO:
  - recurrence.go: expands recurring allowances into occurrences
  - aggregate.go:  collects per-employee inputs for a period
  - scenario.go:   toggle-gated evaluation
  - engine.go:     preview/generate/recalculate/delete
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	EmployeeID string
	EventID    string
	VacationID string
	LoanID     string
	RunID      string
	EntryID    string
)

// =============================================================================
// EVENT TYPES - Tagged union with explicit pay effect
// =============================================================================

// Effect is the direction an item moves gross pay.
type Effect int

const (
	EffectAdditive Effect = iota
	EffectSubtractive
)

// EventType identifies one category of financial event. The zero value is
// not valid; construct via ParseEventType or the exported constants.
type EventType struct {
	name   string
	effect Effect
}

var (
	EventBonus      = EventType{name: "bonus", effect: EffectAdditive}
	EventCommission = EventType{name: "commission", effect: EffectAdditive}
	EventAllowance  = EventType{name: "allowance", effect: EffectAdditive}
	EventOvertime   = EventType{name: "overtime", effect: EffectAdditive}
	EventDeduction  = EventType{name: "deduction", effect: EffectSubtractive}
	EventPenalty    = EventType{name: "penalty", effect: EffectSubtractive}
)

var eventTypes = map[string]EventType{
	"bonus":      EventBonus,
	"commission": EventCommission,
	"allowance":  EventAllowance,
	"overtime":   EventOvertime,
	"deduction":  EventDeduction,
	"penalty":    EventPenalty,
}

// ParseEventType resolves a wire/database name to its EventType.
func ParseEventType(name string) (EventType, bool) {
	et, ok := eventTypes[name]
	return et, ok
}

func (et EventType) Name() string   { return et.name }
func (et EventType) Effect() Effect { return et.effect }
func (et EventType) IsZero() bool   { return et.name == "" }

// Signed applies the effect's direction to an amount.
func (et EventType) Signed(amount decimal.Decimal) decimal.Decimal {
	if et.effect == EffectSubtractive {
		return amount.Neg()
	}
	return amount
}

// =============================================================================
// RECURRENCE
// =============================================================================

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// =============================================================================
// MASTER DATA - Owned by the external HR store, read-only here
// =============================================================================

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee is the master record pay is computed against.
type Employee struct {
	ID     EmployeeID
	Name   string
	Salary decimal.Decimal
	Status EmployeeStatus

	// WorkingDays is the standard working-day count per pay period.
	// Zero means "use the engine default".
	WorkingDays int
}

type EventStatus string

const (
	EventStatusActive   EventStatus = "active"
	EventStatusCanceled EventStatus = "canceled"
)

// EmployeeEvent is a single financial event anchored to a date. Monthly
// allowances additionally project occurrences forward from the anchor; see
// ExpandOccurrences.
type EmployeeEvent struct {
	ID         EventID
	EmployeeID EmployeeID
	Type       EventType
	Amount     decimal.Decimal
	EventDate  Date // anchor date

	Recurrence RecurrenceType
	// RecurrenceEnd, when set, must be >= EventDate. A missing or inverted
	// end is treated as open-ended rather than an error.
	RecurrenceEnd *Date

	AffectsPayroll bool
	Status         EventStatus
}

// Recurring reports whether the event expands into monthly occurrences.
// Only allowances recur; every other type/recurrence combination is a
// single occurrence at the anchor date.
func (e EmployeeEvent) Recurring() bool {
	return e.Type == EventAllowance && e.Recurrence == RecurrenceMonthly
}

// VacationRequest is an approved absence interval.
type VacationRequest struct {
	ID               VacationID
	EmployeeID       EmployeeID
	StartDate        Date
	EndDate          Date
	LeaveType        string
	DeductFromSalary bool
}

// LoanInstallment is an employee loan; its monthly deduction applies to
// every run while RemainingAmount > 0, independent of dates.
type LoanInstallment struct {
	ID               LoanID
	EmployeeID       EmployeeID
	MonthlyDeduction decimal.Decimal
	RemainingAmount  decimal.Decimal
}

// Active reports whether the loan still collects installments.
func (l LoanInstallment) Active() bool {
	return l.RemainingAmount.IsPositive()
}

// InstallmentDue caps the monthly deduction at the remaining balance so the
// final installment never overshoots.
func (l LoanInstallment) InstallmentDue() decimal.Decimal {
	if l.MonthlyDeduction.GreaterThan(l.RemainingAmount) {
		return l.RemainingAmount
	}
	return l.MonthlyDeduction
}
