/*
scenario_test.go - Tests for toggle-gated evaluation

Tests for:
- Vacation proration of base salary (attendance toggle)
- Per-category toggle gating and ungated deductions
- Scenario independence over shared inputs
- Breakdown visibility of excluded items
*/
package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func marchPeriod(t *testing.T) Period {
	t.Helper()
	p, err := NewPeriod(NewDate(2024, time.March, 1), NewDate(2024, time.March, 31))
	if err != nil {
		t.Fatalf("Failed to build period: %v", err)
	}
	return p
}

func baseInputs(t *testing.T) *PeriodInputs {
	t.Helper()
	return &PeriodInputs{
		Employee: Employee{
			ID:          "emp-1",
			Name:        "Amal",
			Salary:      dec("900"),
			Status:      EmployeeActive,
			WorkingDays: 30,
		},
		Period: marchPeriod(t),
	}
}

func TestEvaluate_VacationProration(t *testing.T) {
	// GIVEN: Salary 900, 30 working days, a 3-day deductible vacation
	in := baseInputs(t)
	in.Vacations = append(in.Vacations, VacationItem{
		Vacation: VacationRequest{
			ID:               "vac-1",
			EmployeeID:       "emp-1",
			StartDate:        NewDate(2024, time.March, 10),
			EndDate:          NewDate(2024, time.March, 12),
			LeaveType:        "unpaid",
			DeductFromSalary: true,
		},
		Days: 3,
	})

	// WHEN: Evaluating with everything enabled
	result := Evaluate("base", DefaultToggles(), EvalConfig{}, []*PeriodInputs{in})

	// THEN: Gross is 900 * 27/30 = 810
	er := result.Employees[0]
	if er.ActualWorkingDays != 27 {
		t.Errorf("Expected 27 actual working days, got %d", er.ActualWorkingDays)
	}
	if !er.Gross.Equal(dec("810")) {
		t.Errorf("Expected gross 810, got %s", er.Gross)
	}
}

func TestEvaluate_AttendanceToggleDisablesProration(t *testing.T) {
	// GIVEN: The same vacation, attendance toggle off
	in := baseInputs(t)
	in.Vacations = append(in.Vacations, VacationItem{
		Vacation: VacationRequest{ID: "vac-1", EmployeeID: "emp-1", DeductFromSalary: true},
		Days:     3,
	})
	toggles := DefaultToggles()
	toggles.Attendance = false

	result := Evaluate("no-att", toggles, EvalConfig{}, []*PeriodInputs{in})

	// THEN: Full salary, and the vacation row is visible but excluded
	er := result.Employees[0]
	if !er.Gross.Equal(dec("900")) {
		t.Errorf("Expected gross 900, got %s", er.Gross)
	}
	if len(er.Items) != 1 || er.Items[0].Included {
		t.Errorf("Expected one excluded vacation item, got %+v", er.Items)
	}
}

func TestEvaluate_NonDeductibleVacationNeverProrates(t *testing.T) {
	// GIVEN: A paid vacation (deduct-from-salary false)
	in := baseInputs(t)
	in.Vacations = append(in.Vacations, VacationItem{
		Vacation: VacationRequest{ID: "vac-1", EmployeeID: "emp-1", DeductFromSalary: false},
		Days:     5,
	})

	result := Evaluate("base", DefaultToggles(), EvalConfig{}, []*PeriodInputs{in})

	if !result.Employees[0].Gross.Equal(dec("900")) {
		t.Errorf("Expected gross 900, got %s", result.Employees[0].Gross)
	}
}

func TestEvaluate_EventToggles(t *testing.T) {
	bonus := EventItem{Event: EmployeeEvent{ID: "ev-bonus", Type: EventBonus, Amount: dec("50"),
		EventDate: NewDate(2024, time.March, 5)}, Effect: EffectAdditive}
	overtime := EventItem{Event: EmployeeEvent{ID: "ev-ot", Type: EventOvertime, Amount: dec("30"),
		EventDate: NewDate(2024, time.March, 6)}, Effect: EffectAdditive}
	penalty := EventItem{Event: EmployeeEvent{ID: "ev-pen", Type: EventPenalty, Amount: dec("20"),
		EventDate: NewDate(2024, time.March, 7)}, Effect: EffectSubtractive}

	cases := []struct {
		name      string
		mutate    func(*Toggles)
		wantGross string
		wantNet   string
	}{
		{"all enabled", func(*Toggles) {}, "980", "960"},
		{"bonuses off", func(tg *Toggles) { tg.Bonuses = false }, "930", "910"},
		{"overtime off", func(tg *Toggles) { tg.Overtime = false }, "950", "930"},
		// Penalties have no toggle; disabling everything still applies them.
		{"all categories off", func(tg *Toggles) {
			tg.Attendance, tg.Loans, tg.Bonuses, tg.Allowances, tg.Statutory, tg.Overtime = false, false, false, false, false, false
		}, "900", "880"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := baseInputs(t)
			in.Events = []EventItem{bonus, overtime, penalty}
			toggles := DefaultToggles()
			c.mutate(&toggles)

			result := Evaluate(c.name, toggles, EvalConfig{}, []*PeriodInputs{in})

			er := result.Employees[0]
			if !er.Gross.Equal(dec(c.wantGross)) {
				t.Errorf("Expected gross %s, got %s", c.wantGross, er.Gross)
			}
			if !er.Net.Equal(dec(c.wantNet)) {
				t.Errorf("Expected net %s, got %s", c.wantNet, er.Net)
			}
		})
	}
}

func TestEvaluate_AllowancesAndLoans(t *testing.T) {
	// GIVEN: Two allowance occurrences and an active loan
	in := baseInputs(t)
	in.Allowances = []Occurrence{
		{ID: "allow-1:2024-03-15", EventID: "allow-1", Date: NewDate(2024, time.March, 15), Amount: dec("40")},
		{ID: "allow-2:2024-03-20", EventID: "allow-2", Date: NewDate(2024, time.March, 20), Amount: dec("25")},
	}
	in.Loans = []LoanItem{
		{Loan: LoanInstallment{ID: "loan-1", EmployeeID: "emp-1",
			MonthlyDeduction: dec("100"), RemainingAmount: dec("60")}, Due: dec("60")},
	}

	result := Evaluate("base", DefaultToggles(), EvalConfig{}, []*PeriodInputs{in})

	// THEN: Allowances add to gross; the loan deducts only its remaining 60
	er := result.Employees[0]
	if !er.Gross.Equal(dec("965")) {
		t.Errorf("Expected gross 965, got %s", er.Gross)
	}
	if !er.LoanDeduction.Equal(dec("60")) {
		t.Errorf("Expected loan deduction 60, got %s", er.LoanDeduction)
	}
	if !er.Net.Equal(dec("905")) {
		t.Errorf("Expected net 905, got %s", er.Net)
	}
	if len(er.Allowances) != 2 {
		t.Errorf("Expected 2 allowance lines, got %d", len(er.Allowances))
	}
}

func TestEvaluate_StatutoryFlats(t *testing.T) {
	in := baseInputs(t)
	cfg := EvalConfig{Statutory: StatutoryRates{
		Tax:             dec("45"),
		SocialSecurity:  dec("30"),
		HealthInsurance: dec("15"),
	}}

	on := Evaluate("on", DefaultToggles(), cfg, []*PeriodInputs{in})
	off := DefaultToggles()
	off.Statutory = false
	offResult := Evaluate("off", off, cfg, []*PeriodInputs{in})

	if !on.Employees[0].Net.Equal(dec("810")) {
		t.Errorf("Expected net 810 with statutory on, got %s", on.Employees[0].Net)
	}
	if !offResult.Employees[0].Net.Equal(dec("900")) {
		t.Errorf("Expected net 900 with statutory off, got %s", offResult.Employees[0].Net)
	}
}

func TestCompare_ScenariosAreIndependent(t *testing.T) {
	// GIVEN: Shared inputs with a vacation, a bonus and a loan
	in := baseInputs(t)
	in.Vacations = append(in.Vacations, VacationItem{
		Vacation: VacationRequest{ID: "vac-1", DeductFromSalary: true}, Days: 3})
	in.Events = append(in.Events, EventItem{
		Event:  EmployeeEvent{ID: "ev-1", Type: EventBonus, Amount: dec("100")},
		Effect: EffectAdditive})
	in.Loans = append(in.Loans, LoanItem{
		Loan: LoanInstallment{ID: "loan-1", MonthlyDeduction: dec("50"), RemainingAmount: dec("500")},
		Due:  dec("50")})
	inputs := []*PeriodInputs{in}

	noLoans := DefaultToggles()
	noLoans.Loans = false
	noBonus := DefaultToggles()
	noBonus.Bonuses = false

	// WHEN: Comparing three scenarios over the same inputs
	results := Compare(
		ScenarioSpec{Key: "base", Toggles: DefaultToggles()},
		[]ScenarioSpec{{Key: "no-loans", Toggles: noLoans}, {Key: "no-bonus", Toggles: noBonus}},
		EvalConfig{}, inputs)

	// THEN: Base comes first and each scenario's totals are unaffected by
	// the others
	if len(results) != 3 || results[0].Key != "base" {
		t.Fatalf("Expected base-first results, got %d scenarios", len(results))
	}
	if !results[0].Totals.Net.Equal(dec("860")) { // 810 + 100 - 50
		t.Errorf("base: expected net 860, got %s", results[0].Totals.Net)
	}
	if !results[1].Totals.Net.Equal(dec("910")) { // 810 + 100
		t.Errorf("no-loans: expected net 910, got %s", results[1].Totals.Net)
	}
	if !results[2].Totals.Net.Equal(dec("760")) { // 810 - 50
		t.Errorf("no-bonus: expected net 760, got %s", results[2].Totals.Net)
	}

	// AND: Re-evaluating base reproduces the same figure
	again := Evaluate("base", DefaultToggles(), EvalConfig{}, inputs)
	if !again.Totals.Net.Equal(results[0].Totals.Net) {
		t.Errorf("Shared inputs were mutated: %s vs %s", again.Totals.Net, results[0].Totals.Net)
	}
}

func TestCompare_CapsComparisonScenarios(t *testing.T) {
	in := baseInputs(t)
	specs := make([]ScenarioSpec, MaxComparisonScenarios+3)
	for i := range specs {
		specs[i] = ScenarioSpec{Key: "extra", Toggles: DefaultToggles()}
	}

	results := Compare(ScenarioSpec{Key: "base", Toggles: DefaultToggles()}, specs, EvalConfig{}, []*PeriodInputs{in})

	if len(results) != MaxComparisonScenarios+1 {
		t.Fatalf("Expected %d scenarios, got %d", MaxComparisonScenarios+1, len(results))
	}
}

func TestTogglesFrom_AbsentKeysDefaultOn(t *testing.T) {
	toggles := TogglesFrom(map[string]bool{"loans": false})

	if toggles.Loans {
		t.Error("Expected loans disabled")
	}
	if !toggles.Attendance || !toggles.Bonuses || !toggles.Allowances || !toggles.Statutory || !toggles.Overtime {
		t.Errorf("Expected absent keys to default on, got %+v", toggles)
	}
}

func TestEvaluate_VacationDaysExceedingWorkingDays(t *testing.T) {
	// GIVEN: More deductible vacation days than working days
	in := baseInputs(t)
	in.Vacations = append(in.Vacations, VacationItem{
		Vacation: VacationRequest{ID: "vac-1", DeductFromSalary: true}, Days: 40})

	result := Evaluate("base", DefaultToggles(), EvalConfig{}, []*PeriodInputs{in})

	// THEN: Actual working days floor at zero; gross is zero, not negative
	er := result.Employees[0]
	if er.ActualWorkingDays != 0 {
		t.Errorf("Expected 0 actual working days, got %d", er.ActualWorkingDays)
	}
	if !er.Gross.IsZero() {
		t.Errorf("Expected zero gross, got %s", er.Gross)
	}
}
