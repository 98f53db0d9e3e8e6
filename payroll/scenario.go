/*
scenario.go - Toggle-gated payroll evaluation

PURPOSE:
  Applies a named scenario's boolean toggles to aggregated inputs and
  produces per-employee gross/net/deduction figures plus the full breakdown
  used for review. Evaluation is a pure function of (toggles, inputs): a
  base scenario and its comparison scenarios share the same inputs and can
  never disturb each other's totals.

TOGGLES:
  attendance  vacation-day proration of base salary
  loans       loan installments
  bonuses     bonus + commission events
  allowances  recurring occurrences and one-off allowances
  overtime    overtime events
  statutory   flat tax / social security / health insurance amounts

  Deduction and penalty events are not gated; they always apply.

  A disabled category contributes zero to totals but its raw items stay in
  the breakdown with Included=false, so a reviewer can see what would be
  excluded.

ORDERING:
  Employees are ordered by (name, id) identically across scenarios so
  comparison views can diff row by row.
*/
package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TOGGLES
// =============================================================================

// Toggles gates the aggregated categories for one scenario.
type Toggles struct {
	Attendance bool `json:"attendance"`
	Loans      bool `json:"loans"`
	Bonuses    bool `json:"bonuses"`
	Allowances bool `json:"allowances"`
	Statutory  bool `json:"statutory"`
	Overtime   bool `json:"overtime"`
}

// DefaultToggles enables every category.
func DefaultToggles() Toggles {
	return Toggles{Attendance: true, Loans: true, Bonuses: true, Allowances: true, Statutory: true, Overtime: true}
}

// TogglesFrom builds Toggles from a wire map; an absent key defaults to true.
func TogglesFrom(m map[string]bool) Toggles {
	t := DefaultToggles()
	get := func(key string, dst *bool) {
		if v, ok := m[key]; ok {
			*dst = v
		}
	}
	get("attendance", &t.Attendance)
	get("loans", &t.Loans)
	get("bonuses", &t.Bonuses)
	get("allowances", &t.Allowances)
	get("statutory", &t.Statutory)
	get("overtime", &t.Overtime)
	return t
}

// gatesEvent maps a non-allowance event type to its toggle.
func (t Toggles) gatesEvent(et EventType) bool {
	switch et {
	case EventBonus, EventCommission:
		return t.Bonuses
	case EventOvertime:
		return t.Overtime
	default:
		// Deductions and penalties have no toggle.
		return true
	}
}

// =============================================================================
// STATUTORY RATES
// =============================================================================

// StatutoryRates are the flat per-employee deduction amounts applied when
// the statutory toggle is enabled. Tax-law correctness beyond flat amounts
// is out of scope.
type StatutoryRates struct {
	Tax             decimal.Decimal
	SocialSecurity  decimal.Decimal
	HealthInsurance decimal.Decimal
}

// Total sums the three statutory amounts.
func (s StatutoryRates) Total() decimal.Decimal {
	return s.Tax.Add(s.SocialSecurity).Add(s.HealthInsurance)
}

// =============================================================================
// EVALUATION OUTPUT
// =============================================================================

// ItemKind labels a breakdown row.
type ItemKind string

const (
	ItemVacation  ItemKind = "vacation"
	ItemLoan      ItemKind = "loan"
	ItemEvent     ItemKind = "event"
	ItemAllowance ItemKind = "allowance"
)

// BreakdownItem is one reviewable line of an employee's evaluation. ID is
// the override-addressable id: vacation/loan/event id, or the synthetic
// occurrence id for recurring allowances.
type BreakdownItem struct {
	Kind     ItemKind
	ID       string
	Label    string
	Date     Date
	Days     int
	Amount   decimal.Decimal
	Effect   Effect
	Included bool
}

// EmployeeResult is one employee's evaluation under one toggle set.
type EmployeeResult struct {
	EmployeeID EmployeeID
	Name       string
	BaseSalary decimal.Decimal

	WorkingDays       int
	VacationDays      int
	ActualWorkingDays int

	Gross      decimal.Decimal
	Deductions decimal.Decimal
	Net        decimal.Decimal

	Tax             decimal.Decimal
	SocialSecurity  decimal.Decimal
	HealthInsurance decimal.Decimal
	LoanDeduction   decimal.Decimal
	OtherDeductions decimal.Decimal
	BonusAmount     decimal.Decimal
	Allowances      map[string]decimal.Decimal

	Items []BreakdownItem
}

// RunTotals are the aggregate figures across all employees.
type RunTotals struct {
	Gross      decimal.Decimal
	Net        decimal.Decimal
	Deductions decimal.Decimal
}

// ScenarioResult is one full scenario evaluation.
type ScenarioResult struct {
	Key       string
	Toggles   Toggles
	Employees []EmployeeResult
	Totals    RunTotals
}

// EvalConfig carries the per-run evaluation parameters that are not toggles.
type EvalConfig struct {
	Statutory StatutoryRates
	// DefaultWorkingDays is used when an employee has no standard set.
	DefaultWorkingDays int
}

// DefaultWorkingDays is the fallback standard working-day count.
const DefaultWorkingDays = 30

func (c EvalConfig) workingDays(emp Employee) int {
	if emp.WorkingDays > 0 {
		return emp.WorkingDays
	}
	if c.DefaultWorkingDays > 0 {
		return c.DefaultWorkingDays
	}
	return DefaultWorkingDays
}

// =============================================================================
// EVALUATION
// =============================================================================

// Evaluate computes one scenario over shared aggregated inputs. The inputs
// are never mutated; evaluating several scenarios against the same slice is
// safe and order-stable.
func Evaluate(key string, toggles Toggles, cfg EvalConfig, inputs []*PeriodInputs) ScenarioResult {
	result := ScenarioResult{Key: key, Toggles: toggles}
	result.Totals = RunTotals{Gross: decimal.Zero, Net: decimal.Zero, Deductions: decimal.Zero}

	for _, in := range inputs {
		er := evaluateEmployee(toggles, cfg, in)
		result.Employees = append(result.Employees, er)
		result.Totals.Gross = result.Totals.Gross.Add(er.Gross)
		result.Totals.Net = result.Totals.Net.Add(er.Net)
		result.Totals.Deductions = result.Totals.Deductions.Add(er.Deductions)
	}
	return result
}

func evaluateEmployee(toggles Toggles, cfg EvalConfig, in *PeriodInputs) EmployeeResult {
	er := EmployeeResult{
		EmployeeID: in.Employee.ID,
		Name:       in.Employee.Name,
		BaseSalary: in.Employee.Salary,
		Allowances: map[string]decimal.Decimal{},

		Tax:             decimal.Zero,
		SocialSecurity:  decimal.Zero,
		HealthInsurance: decimal.Zero,
		LoanDeduction:   decimal.Zero,
		OtherDeductions: decimal.Zero,
		BonusAmount:     decimal.Zero,
	}

	// Vacations: deduct-from-salary days prorate base pay when the
	// attendance toggle is on.
	vacationDays := 0
	for _, v := range in.Vacations {
		counted := toggles.Attendance && v.Vacation.DeductFromSalary
		if counted {
			vacationDays += v.Days
		}
		er.Items = append(er.Items, BreakdownItem{
			Kind:     ItemVacation,
			ID:       string(v.Vacation.ID),
			Label:    v.Vacation.LeaveType,
			Date:     v.Vacation.StartDate,
			Days:     v.Days,
			Amount:   decimal.Zero,
			Effect:   EffectSubtractive,
			Included: counted,
		})
	}

	er.WorkingDays = cfg.workingDays(in.Employee)
	er.VacationDays = vacationDays
	er.ActualWorkingDays = er.WorkingDays - vacationDays
	if er.ActualWorkingDays < 0 {
		er.ActualWorkingDays = 0
	}

	gross := er.BaseSalary.
		Mul(decimal.NewFromInt(int64(er.ActualWorkingDays))).
		Div(decimal.NewFromInt(int64(er.WorkingDays)))
	deductions := decimal.Zero

	// One-off events.
	for _, item := range in.Events {
		included := toggles.gatesEvent(item.Event.Type)
		er.Items = append(er.Items, BreakdownItem{
			Kind:     ItemEvent,
			ID:       string(item.Event.ID),
			Label:    item.Event.Type.Name(),
			Date:     item.Event.EventDate,
			Amount:   item.Event.Amount,
			Effect:   item.Effect,
			Included: included,
		})
		if !included {
			continue
		}
		switch item.Effect {
		case EffectAdditive:
			gross = gross.Add(item.Event.Amount)
			if item.Event.Type == EventBonus || item.Event.Type == EventCommission {
				er.BonusAmount = er.BonusAmount.Add(item.Event.Amount)
			}
		case EffectSubtractive:
			deductions = deductions.Add(item.Event.Amount)
			er.OtherDeductions = er.OtherDeductions.Add(item.Event.Amount)
		}
	}

	// Allowance occurrences (recurring and one-off).
	for _, occ := range in.Allowances {
		er.Items = append(er.Items, BreakdownItem{
			Kind:     ItemAllowance,
			ID:       occ.ID,
			Label:    EventAllowance.Name(),
			Date:     occ.Date,
			Amount:   occ.Amount,
			Effect:   EffectAdditive,
			Included: toggles.Allowances,
		})
		if !toggles.Allowances {
			continue
		}
		gross = gross.Add(occ.Amount)
		er.Allowances[occ.ID] = occ.Amount
	}

	// Loan installments.
	for _, l := range in.Loans {
		er.Items = append(er.Items, BreakdownItem{
			Kind:     ItemLoan,
			ID:       string(l.Loan.ID),
			Label:    "loan installment",
			Amount:   l.Due,
			Effect:   EffectSubtractive,
			Included: toggles.Loans,
		})
		if !toggles.Loans {
			continue
		}
		deductions = deductions.Add(l.Due)
		er.LoanDeduction = er.LoanDeduction.Add(l.Due)
	}

	// Statutory flats.
	if toggles.Statutory {
		er.Tax = cfg.Statutory.Tax
		er.SocialSecurity = cfg.Statutory.SocialSecurity
		er.HealthInsurance = cfg.Statutory.HealthInsurance
		deductions = deductions.Add(cfg.Statutory.Total())
	}

	er.Gross = gross
	er.Deductions = deductions
	er.Net = gross.Sub(deductions)
	return er
}

// =============================================================================
// COMPARISON
// =============================================================================

// MaxComparisonScenarios bounds a single preview request.
const MaxComparisonScenarios = 4

// ScenarioSpec names one toggle set for comparison.
type ScenarioSpec struct {
	Key     string
	Toggles Toggles
}

// Compare evaluates the base scenario plus up to MaxComparisonScenarios
// comparison scenarios against the same shared inputs. The base result is
// always first.
func Compare(base ScenarioSpec, comparisons []ScenarioSpec, cfg EvalConfig, inputs []*PeriodInputs) []ScenarioResult {
	if len(comparisons) > MaxComparisonScenarios {
		comparisons = comparisons[:MaxComparisonScenarios]
	}

	results := make([]ScenarioResult, 0, len(comparisons)+1)
	results = append(results, Evaluate(base.Key, base.Toggles, cfg, inputs))
	for _, spec := range comparisons {
		results = append(results, Evaluate(spec.Key, spec.Toggles, cfg, inputs))
	}
	return results
}

// sortEmployees orders by the stable (name, id) key used everywhere.
func sortEmployees(employees []Employee) {
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].Name != employees[j].Name {
			return employees[i].Name < employees[j].Name
		}
		return employees[i].ID < employees[j].ID
	})
}
