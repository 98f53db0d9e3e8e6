/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TOGGLES ON THE WIRE:
  Scenario toggles arrive as a map so an absent key defaults to enabled.
  payroll.TogglesFrom owns that defaulting; handlers never read the map
  directly.

AMOUNTS ON THE WIRE:
  decimal.Decimal marshals as a quoted string, which clients should treat
  as an exact decimal rather than a float.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/scenario.go: Evaluation result types these mirror
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// PREVIEW / GENERATE REQUESTS
// =============================================================================

// ScenarioSpecRequest names one comparison toggle set.
type ScenarioSpecRequest struct {
	Key     string          `json:"key"`
	Toggles map[string]bool `json:"toggles"`
}

// PreviewRequest asks for a multi-scenario evaluation of a period.
type PreviewRequest struct {
	Period      string                `json:"period"`
	StartDate   payroll.Date          `json:"startDate"`
	EndDate     payroll.Date          `json:"endDate"`
	CalendarID  string                `json:"calendarId"`
	Toggles     map[string]bool       `json:"toggles"`
	Comparisons []ScenarioSpecRequest `json:"comparisons"`
}

// OverridesRequest carries the skip ids a reviewer selected on a preview.
type OverridesRequest struct {
	SkippedVacationIDs []string `json:"skippedVacationIds"`
	SkippedLoanIDs     []string `json:"skippedLoanIds"`
	SkippedEventIDs    []string `json:"skippedEventIds"`
}

func (o OverridesRequest) toDomain() payroll.Overrides {
	var out payroll.Overrides
	for _, id := range o.SkippedVacationIDs {
		out.SkippedVacationIDs = append(out.SkippedVacationIDs, payroll.VacationID(id))
	}
	for _, id := range o.SkippedLoanIDs {
		out.SkippedLoanIDs = append(out.SkippedLoanIDs, payroll.LoanID(id))
	}
	out.SkippedEventIDs = append(out.SkippedEventIDs, o.SkippedEventIDs...)
	return out
}

// GenerateRequest commits one payroll run.
type GenerateRequest struct {
	Period     string           `json:"period"`
	StartDate  payroll.Date     `json:"startDate"`
	EndDate    payroll.Date     `json:"endDate"`
	CalendarID string           `json:"calendarId"`
	Scenario   string           `json:"scenario"`
	Status     string           `json:"status"`
	Toggles    map[string]bool  `json:"toggles"`
	Overrides  OverridesRequest `json:"overrides"`
}

// EntryPatchRequest carries a manual entry correction; nil fields are
// left untouched.
type EntryPatchRequest struct {
	GrossPay                 *decimal.Decimal `json:"grossPay"`
	TaxDeduction             *decimal.Decimal `json:"taxDeduction"`
	SocialSecurityDeduction  *decimal.Decimal `json:"socialSecurityDeduction"`
	HealthInsuranceDeduction *decimal.Decimal `json:"healthInsuranceDeduction"`
	OtherDeductions          *decimal.Decimal `json:"otherDeductions"`
	BonusAmount              *decimal.Decimal `json:"bonusAmount"`
	WorkingDays              *int             `json:"workingDays"`
	ActualWorkingDays        *int             `json:"actualWorkingDays"`
	VacationDays             *int             `json:"vacationDays"`
}

func (p EntryPatchRequest) toDomain() payroll.EntryPatch {
	return payroll.EntryPatch{
		GrossPay:                 p.GrossPay,
		TaxDeduction:             p.TaxDeduction,
		SocialSecurityDeduction:  p.SocialSecurityDeduction,
		HealthInsuranceDeduction: p.HealthInsuranceDeduction,
		OtherDeductions:          p.OtherDeductions,
		BonusAmount:              p.BonusAmount,
		WorkingDays:              p.WorkingDays,
		ActualWorkingDays:        p.ActualWorkingDays,
		VacationDays:             p.VacationDays,
	}
}

// =============================================================================
// EVALUATION RESPONSES
// =============================================================================

// BreakdownItemDTO is one reviewable line of an employee's evaluation.
type BreakdownItemDTO struct {
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Label    string          `json:"label,omitempty"`
	Date     string          `json:"date,omitempty"`
	Days     int             `json:"days,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Additive bool            `json:"additive"`
	Included bool            `json:"included"`
}

// EmployeeResultDTO is one employee's figures under one scenario.
type EmployeeResultDTO struct {
	EmployeeID string          `json:"employeeId"`
	Name       string          `json:"name"`
	BaseSalary decimal.Decimal `json:"baseSalary"`

	WorkingDays       int `json:"workingDays"`
	ActualWorkingDays int `json:"actualWorkingDays"`
	VacationDays      int `json:"vacationDays"`

	GrossPay   decimal.Decimal `json:"grossPay"`
	Deductions decimal.Decimal `json:"deductions"`
	NetPay     decimal.Decimal `json:"netPay"`

	Tax             decimal.Decimal            `json:"taxDeduction"`
	SocialSecurity  decimal.Decimal            `json:"socialSecurityDeduction"`
	HealthInsurance decimal.Decimal            `json:"healthInsuranceDeduction"`
	LoanDeduction   decimal.Decimal            `json:"loanDeduction"`
	OtherDeductions decimal.Decimal            `json:"otherDeductions"`
	BonusAmount     decimal.Decimal            `json:"bonusAmount"`
	Allowances      map[string]decimal.Decimal `json:"allowances"`

	Items []BreakdownItemDTO `json:"items"`
}

// TotalsDTO is the run-level aggregate.
type TotalsDTO struct {
	Gross      decimal.Decimal `json:"gross"`
	Net        decimal.Decimal `json:"net"`
	Deductions decimal.Decimal `json:"deductions"`
}

// ScenarioResultDTO is one full scenario evaluation.
type ScenarioResultDTO struct {
	Key       string              `json:"key"`
	Toggles   payroll.Toggles     `json:"toggles"`
	Employees []EmployeeResultDTO `json:"employees"`
	Totals    TotalsDTO           `json:"totals"`
}

// PreviewResponse is the multi-scenario preview, base scenario first.
type PreviewResponse struct {
	Period    string              `json:"period"`
	StartDate string              `json:"startDate"`
	EndDate   string              `json:"endDate"`
	Scenarios []ScenarioResultDTO `json:"scenarios"`
}

// =============================================================================
// RUN RESPONSES
// =============================================================================

// RunDTO is one payroll run.
type RunDTO struct {
	ID         string          `json:"id"`
	Period     string          `json:"period"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
	CalendarID string          `json:"calendarId"`
	Scenario   string          `json:"scenario,omitempty"`
	Toggles    payroll.Toggles `json:"toggles"`
	Status     string          `json:"status"`

	GrossAmount     decimal.Decimal `json:"grossAmount"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
}

// EntryDTO is one employee's row in a run.
type EntryDTO struct {
	ID         string `json:"id"`
	RunID      string `json:"runId"`
	EmployeeID string `json:"employeeId"`

	BaseSalary decimal.Decimal `json:"baseSalary"`
	GrossPay   decimal.Decimal `json:"grossPay"`
	NetPay     decimal.Decimal `json:"netPay"`

	WorkingDays       int `json:"workingDays"`
	ActualWorkingDays int `json:"actualWorkingDays"`
	VacationDays      int `json:"vacationDays"`

	Allowances map[string]decimal.Decimal `json:"allowances"`

	TaxDeduction             decimal.Decimal `json:"taxDeduction"`
	SocialSecurityDeduction  decimal.Decimal `json:"socialSecurityDeduction"`
	HealthInsuranceDeduction decimal.Decimal `json:"healthInsuranceDeduction"`
	LoanDeduction            decimal.Decimal `json:"loanDeduction"`
	OtherDeductions          decimal.Decimal `json:"otherDeductions"`
	BonusAmount              decimal.Decimal `json:"bonusAmount"`
}

// RunWithEntriesResponse pairs a run with its entries.
type RunWithEntriesResponse struct {
	Run     RunDTO     `json:"run"`
	Entries []EntryDTO `json:"entries"`
}

// =============================================================================
// MASTER DATA REQUESTS
// =============================================================================

// EmployeeRequest creates or replaces one employee.
type EmployeeRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Salary      decimal.Decimal `json:"salary"`
	Status      string          `json:"status"`
	WorkingDays int             `json:"workingDays"`
}

// EventRequest creates or replaces one financial event.
type EventRequest struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employeeId"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	EventDate      payroll.Date    `json:"eventDate"`
	Recurrence     string          `json:"recurrence"`
	RecurrenceEnd  *payroll.Date   `json:"recurrenceEnd"`
	AffectsPayroll *bool           `json:"affectsPayroll"`
	Status         string          `json:"status"`
}

// VacationRequest creates or replaces one approved absence.
type VacationRequest struct {
	ID               string       `json:"id"`
	EmployeeID       string       `json:"employeeId"`
	StartDate        payroll.Date `json:"startDate"`
	EndDate          payroll.Date `json:"endDate"`
	LeaveType        string       `json:"leaveType"`
	DeductFromSalary *bool        `json:"deductFromSalary"`
}

// LoanRequest creates or replaces one loan.
type LoanRequest struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	MonthlyDeduction decimal.Decimal `json:"monthlyDeduction"`
	RemainingAmount  decimal.Decimal `json:"remainingAmount"`
}

// LoanDTO is one loan with its current balance.
type LoanDTO struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	MonthlyDeduction decimal.Decimal `json:"monthlyDeduction"`
	RemainingAmount  decimal.Decimal `json:"remainingAmount"`
}

// =============================================================================
// DOMAIN -> DTO MAPPING
// =============================================================================

func runDTO(run payroll.PayrollRun) RunDTO {
	return RunDTO{
		ID:              string(run.ID),
		Period:          run.Period,
		StartDate:       run.StartDate.String(),
		EndDate:         run.EndDate.String(),
		CalendarID:      run.CalendarID,
		Scenario:        run.Scenario,
		Toggles:         run.Toggles,
		Status:          string(run.Status),
		GrossAmount:     run.GrossAmount,
		NetAmount:       run.NetAmount,
		TotalDeductions: run.TotalDeductions,
	}
}

func entryDTO(e payroll.PayrollEntry) EntryDTO {
	return EntryDTO{
		ID:         string(e.ID),
		RunID:      string(e.RunID),
		EmployeeID: string(e.EmployeeID),

		BaseSalary: e.BaseSalary,
		GrossPay:   e.GrossPay,
		NetPay:     e.NetPay,

		WorkingDays:       e.WorkingDays,
		ActualWorkingDays: e.ActualWorkingDays,
		VacationDays:      e.VacationDays,

		Allowances: e.Allowances,

		TaxDeduction:             e.TaxDeduction,
		SocialSecurityDeduction:  e.SocialSecurityDeduction,
		HealthInsuranceDeduction: e.HealthInsuranceDeduction,
		LoanDeduction:            e.LoanDeduction,
		OtherDeductions:          e.OtherDeductions,
		BonusAmount:              e.BonusAmount,
	}
}

func entryDTOs(entries []payroll.PayrollEntry) []EntryDTO {
	out := make([]EntryDTO, len(entries))
	for i, e := range entries {
		out[i] = entryDTO(e)
	}
	return out
}

func scenarioResultDTO(r payroll.ScenarioResult) ScenarioResultDTO {
	dto := ScenarioResultDTO{
		Key:     r.Key,
		Toggles: r.Toggles,
		Totals: TotalsDTO{
			Gross:      r.Totals.Gross,
			Net:        r.Totals.Net,
			Deductions: r.Totals.Deductions,
		},
	}
	for _, er := range r.Employees {
		dto.Employees = append(dto.Employees, employeeResultDTO(er))
	}
	return dto
}

func employeeResultDTO(er payroll.EmployeeResult) EmployeeResultDTO {
	dto := EmployeeResultDTO{
		EmployeeID: string(er.EmployeeID),
		Name:       er.Name,
		BaseSalary: er.BaseSalary,

		WorkingDays:       er.WorkingDays,
		ActualWorkingDays: er.ActualWorkingDays,
		VacationDays:      er.VacationDays,

		GrossPay:   er.Gross,
		Deductions: er.Deductions,
		NetPay:     er.Net,

		Tax:             er.Tax,
		SocialSecurity:  er.SocialSecurity,
		HealthInsurance: er.HealthInsurance,
		LoanDeduction:   er.LoanDeduction,
		OtherDeductions: er.OtherDeductions,
		BonusAmount:     er.BonusAmount,
		Allowances:      er.Allowances,
	}
	for _, item := range er.Items {
		d := BreakdownItemDTO{
			Kind:     string(item.Kind),
			ID:       item.ID,
			Label:    item.Label,
			Days:     item.Days,
			Amount:   item.Amount,
			Additive: item.Effect == payroll.EffectAdditive,
			Included: item.Included,
		}
		if !item.Date.IsZero() {
			d.Date = item.Date.String()
		}
		dto.Items = append(dto.Items, d)
	}
	return dto
}
