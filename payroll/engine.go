/*
engine.go - Payroll run finalization

PURPOSE:
  The Engine is the entry point the calling layer uses: preview a period
  under one or more scenarios, generate (commit) a run with overrides burned
  in, recalculate totals after manual entry edits, and delete runs behind
  the loan-deduction guard.

CONCURRENCY:
  Single writer per run. The duplicate-period check and the run insert
  execute inside one store transaction so two concurrent callers cannot
  both create a run for the same (period, calendar) key. Loan-deduction
  reversal and payment-row deletion are likewise one atomic unit. There is
  no background work: every operation is synchronous and request-scoped.
*/
package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/metrics"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine wires the aggregator, evaluator and store together.
type Engine struct {
	store  TxStore
	agg    *Aggregator
	cfg    EvalConfig
	logger *slog.Logger
}

// NewEngine builds an Engine. A nil logger disables engine logging.
func NewEngine(store TxStore, cfg EvalConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:  store,
		agg:    &Aggregator{Source: store},
		cfg:    cfg,
		logger: logger,
	}
}

// =============================================================================
// PREVIEW
// =============================================================================

// PreviewRequest asks for a multi-scenario breakdown before commit.
type PreviewRequest struct {
	Period      string
	StartDate   Date
	EndDate     Date
	CalendarID  string
	Toggles     Toggles
	Comparisons []ScenarioSpec
}

// PreviewResult is the reviewable snapshot overrides are later keyed off.
type PreviewResult struct {
	Period    string
	Window    Period
	Scenarios []ScenarioResult // base first
}

// Preview aggregates the period and evaluates the base scenario plus any
// comparison scenarios side by side. Nothing is persisted.
func (e *Engine) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	window, err := NewPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	inputs, err := e.agg.ForAllActive(ctx, window)
	if err != nil {
		return nil, err
	}

	base := ScenarioSpec{Key: "base", Toggles: req.Toggles}
	results := Compare(base, req.Comparisons, e.cfg, inputs)

	metrics.PreviewsEvaluated.Inc()
	e.logger.Debug("payroll preview evaluated",
		"period", req.Period,
		"employees", len(inputs),
		"scenarios", len(results))

	return &PreviewResult{Period: req.Period, Window: window, Scenarios: results}, nil
}

// =============================================================================
// GENERATE
// =============================================================================

// GenerateRequest commits one payroll run.
type GenerateRequest struct {
	Period     string
	StartDate  Date
	EndDate    Date
	CalendarID string
	Scenario   string
	Toggles    Toggles
	Overrides  Overrides
	Status     RunStatus
}

// GenerateResult is the persisted run with its entries.
type GenerateResult struct {
	Run     PayrollRun
	Entries []PayrollEntry
}

// Generate aggregates, resolves overrides, evaluates the scenario, and
// persists the run atomically with its entries and loan payments. Loan
// balances are decremented in the same transaction.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	window, err := NewPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = RunDraft
	}
	if status != RunDraft && status != RunCompleted {
		return nil, fmt.Errorf("%w: unknown run status %q", ErrInvalidPeriod, req.Status)
	}

	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	inputs, err := e.agg.ForAllActive(ctx, window)
	if err != nil {
		return nil, err
	}

	// Overrides resolve once, here. Skipped items are removed before
	// evaluation so their amounts never reach the entries.
	resolved := req.Overrides.Apply(inputs)
	evaluated := Evaluate(req.Scenario, req.Toggles, e.cfg, resolved)

	run := PayrollRun{
		ID:              RunID(uuid.NewString()),
		Period:          req.Period,
		StartDate:       window.Start,
		EndDate:         window.End,
		CalendarID:      calendarID,
		Scenario:        req.Scenario,
		Toggles:         req.Toggles,
		Status:          status,
		GrossAmount:     evaluated.Totals.Gross,
		NetAmount:       evaluated.Totals.Net,
		TotalDeductions: evaluated.Totals.Deductions,
	}

	entries, payments := e.buildEntries(run.ID, evaluated)

	err = e.store.WithTx(ctx, func(tx Store) error {
		existing, err := tx.FindRunByPeriod(ctx, req.Period, calendarID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicatePeriodError{Period: req.Period, CalendarID: calendarID, ExistingID: existing.ID}
		}
		if err := tx.CreateRun(ctx, &run, entries, payments); err != nil {
			return err
		}
		for _, p := range payments {
			if err := tx.AdjustLoanRemaining(ctx, p.LoanID, p.Amount.Neg()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RunsGenerated.Inc()
	e.logger.Info("payroll run generated",
		"run_id", run.ID,
		"period", run.Period,
		"calendar", run.CalendarID,
		"entries", len(entries),
		"net", run.NetAmount.String())

	return &GenerateResult{Run: run, Entries: entries}, nil
}

// buildEntries turns the evaluated scenario into persistable rows.
func (e *Engine) buildEntries(runID RunID, result ScenarioResult) ([]PayrollEntry, []LoanPayment) {
	var entries []PayrollEntry
	var payments []LoanPayment

	for _, er := range result.Employees {
		entry := PayrollEntry{
			ID:         EntryID(uuid.NewString()),
			RunID:      runID,
			EmployeeID: er.EmployeeID,

			BaseSalary: er.BaseSalary,
			GrossPay:   er.Gross,
			NetPay:     er.Net,

			WorkingDays:       er.WorkingDays,
			ActualWorkingDays: er.ActualWorkingDays,
			VacationDays:      er.VacationDays,

			Allowances: er.Allowances,

			TaxDeduction:             er.Tax,
			SocialSecurityDeduction:  er.SocialSecurity,
			HealthInsuranceDeduction: er.HealthInsurance,
			LoanDeduction:            er.LoanDeduction,
			OtherDeductions:          er.OtherDeductions,
			BonusAmount:              er.BonusAmount,
		}
		entries = append(entries, entry)

		for _, item := range er.Items {
			if item.Kind != ItemLoan || !item.Included {
				continue
			}
			payments = append(payments, LoanPayment{
				ID:         uuid.NewString(),
				RunID:      runID,
				LoanID:     LoanID(item.ID),
				EmployeeID: er.EmployeeID,
				Amount:     item.Amount,
			})
		}
	}
	return entries, payments
}

// =============================================================================
// RECALCULATE
// =============================================================================

// Recalculate re-derives the run's aggregate totals strictly from the
// entries' current field values. It never re-runs aggregation or re-fetches
// source events; it exists to restore aggregate/row consistency after a
// manual entry edit.
func (e *Engine) Recalculate(ctx context.Context, runID RunID) (*PayrollRun, error) {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	entries, err := e.store.ListEntries(ctx, runID)
	if err != nil {
		return nil, err
	}

	totals := TotalsOf(entries)

	err = e.store.WithTx(ctx, func(tx Store) error {
		for i := range entries {
			entries[i].NetPay = entries[i].GrossPay.Sub(entries[i].DeductionTotal())
			if err := tx.UpdateEntry(ctx, entries[i]); err != nil {
				return err
			}
		}
		return tx.UpdateRunTotals(ctx, runID, totals)
	})
	if err != nil {
		return nil, err
	}

	metrics.RunsRecalculated.Inc()

	run.GrossAmount = totals.Gross
	run.NetAmount = totals.Net
	run.TotalDeductions = totals.Deductions
	return run, nil
}

// =============================================================================
// ENTRY EDITS
// =============================================================================

// EntryPatch carries the fields a manual correction may rewrite. Nil fields
// are left untouched.
type EntryPatch struct {
	GrossPay                 *decimal.Decimal
	TaxDeduction             *decimal.Decimal
	SocialSecurityDeduction  *decimal.Decimal
	HealthInsuranceDeduction *decimal.Decimal
	OtherDeductions          *decimal.Decimal
	BonusAmount              *decimal.Decimal
	WorkingDays              *int
	ActualWorkingDays        *int
	VacationDays             *int
}

// EditEntry applies a manual correction to one entry. The run's aggregate
// totals are stale afterwards until Recalculate runs.
func (e *Engine) EditEntry(ctx context.Context, runID RunID, entryID EntryID, patch EntryPatch) (*PayrollEntry, error) {
	entries, err := e.store.ListEntries(ctx, runID)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].ID != entryID {
			continue
		}
		applyPatch(&entries[i], patch)
		entries[i].NetPay = entries[i].GrossPay.Sub(entries[i].DeductionTotal())
		if err := e.store.UpdateEntry(ctx, entries[i]); err != nil {
			return nil, err
		}
		e.logger.Info("payroll entry edited", "run_id", runID, "entry_id", entryID)
		return &entries[i], nil
	}
	return nil, ErrEntryNotFound
}

func applyPatch(entry *PayrollEntry, patch EntryPatch) {
	setDec := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setDec(&entry.GrossPay, patch.GrossPay)
	setDec(&entry.TaxDeduction, patch.TaxDeduction)
	setDec(&entry.SocialSecurityDeduction, patch.SocialSecurityDeduction)
	setDec(&entry.HealthInsuranceDeduction, patch.HealthInsuranceDeduction)
	setDec(&entry.OtherDeductions, patch.OtherDeductions)
	setDec(&entry.BonusAmount, patch.BonusAmount)
	setInt(&entry.WorkingDays, patch.WorkingDays)
	setInt(&entry.ActualWorkingDays, patch.ActualWorkingDays)
	setInt(&entry.VacationDays, patch.VacationDays)
}

// =============================================================================
// LOAN REVERSAL AND DELETION
// =============================================================================

// UndoLoanDeductions reverses every loan amount the run deducted back onto
// the originating loans, removes the payment rows, zeroes the entries'
// loan deduction fields, and refreshes the run's aggregate totals - all in
// one transaction, so loan balances can never go inconsistent with deleted
// entries and the run never reports reversed deductions.
func (e *Engine) UndoLoanDeductions(ctx context.Context, runID RunID) error {
	if _, err := e.store.GetRun(ctx, runID); err != nil {
		return err
	}

	err := e.store.WithTx(ctx, func(tx Store) error {
		payments, err := tx.ListLoanPayments(ctx, runID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			if err := tx.AdjustLoanRemaining(ctx, p.LoanID, p.Amount); err != nil {
				return err
			}
		}
		if err := tx.DeleteLoanPayments(ctx, runID); err != nil {
			return err
		}

		entries, err := tx.ListEntries(ctx, runID)
		if err != nil {
			return err
		}
		for i := range entries {
			if entries[i].LoanDeduction.IsZero() {
				continue
			}
			entries[i].LoanDeduction = decimal.Zero
			entries[i].NetPay = entries[i].GrossPay.Sub(entries[i].DeductionTotal())
			if err := tx.UpdateEntry(ctx, entries[i]); err != nil {
				return err
			}
		}
		return tx.UpdateRunTotals(ctx, runID, TotalsOf(entries))
	})
	if err != nil {
		return err
	}

	e.logger.Info("loan deductions undone", "run_id", runID)
	return nil
}

// DeleteRun removes a run and its entries. It conflicts while any entry
// still carries a loan deduction; the caller must undo loan deductions
// first so balances stay consistent.
func (e *Engine) DeleteRun(ctx context.Context, runID RunID) error {
	if _, err := e.store.GetRun(ctx, runID); err != nil {
		return err
	}

	entries, err := e.store.ListEntries(ctx, runID)
	if err != nil {
		return err
	}

	var blocked []EntryID
	for _, entry := range entries {
		if entry.LoanDeduction.IsPositive() {
			blocked = append(blocked, entry.ID)
		}
	}
	if len(blocked) > 0 {
		return &LoanDeductionConflictError{RunID: runID, Entries: blocked}
	}

	err = e.store.WithTx(ctx, func(tx Store) error {
		return tx.DeleteRun(ctx, runID)
	})
	if err != nil {
		return err
	}

	metrics.RunsDeleted.Inc()
	e.logger.Info("payroll run deleted", "run_id", runID)
	return nil
}

// =============================================================================
// READS
// =============================================================================

// GetRun returns one run.
func (e *Engine) GetRun(ctx context.Context, runID RunID) (*PayrollRun, error) {
	return e.store.GetRun(ctx, runID)
}

// ListRuns returns all runs.
func (e *Engine) ListRuns(ctx context.Context) ([]PayrollRun, error) {
	return e.store.ListRuns(ctx)
}

// ListEntries returns a run's entries.
func (e *Engine) ListEntries(ctx context.Context, runID RunID) ([]PayrollEntry, error) {
	if _, err := e.store.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return e.store.ListEntries(ctx, runID)
}
