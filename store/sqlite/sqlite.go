/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements payroll.TxStore plus the seed writes the API layer uses for
  employees, events, vacations and loans. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees        master data the engine computes against
  employee_events  financial events incl. recurring allowance definitions
  vacations        approved absence intervals
  loans            active loans with remaining balances
  payroll_runs     one row per generated run; UNIQUE(period, calendar_id)
  payroll_entries  per-employee rows, cascade-deleted with the run
  loan_payments    loan amounts a run deducted, cascade-deleted with the run

AMOUNT ENCODING:
  Monetary values are stored as decimal strings. Reads go through a
  forgiving parser: NULL or non-numeric text reads as zero, so a manually
  mangled entry degrades a recalculation instead of aborting it.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign keys on.
  The UNIQUE(period, calendar_id) constraint backs the duplicate-period
  check made inside the generation transaction.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := payroll.NewEngine(store, cfg, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/engine.go: Higher-level engine using TxStore
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.TxStore using SQLite.
type Store struct {
	queries
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{queries: queries{db: db}, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		salary TEXT NOT NULL,
		status TEXT NOT NULL,
		working_days INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS employee_events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		event_date TEXT NOT NULL,
		recurrence_type TEXT NOT NULL DEFAULT 'none',
		recurrence_end TEXT,
		affects_payroll BOOLEAN NOT NULL DEFAULT TRUE,
		status TEXT NOT NULL DEFAULT 'active'
	);

	CREATE INDEX IF NOT EXISTS idx_events_employee_date
		ON employee_events(employee_id, event_date);

	CREATE TABLE IF NOT EXISTS vacations (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		leave_type TEXT,
		deduct_from_salary BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_vacations_employee_dates
		ON vacations(employee_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		monthly_deduction TEXT NOT NULL,
		remaining_amount TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_employee
		ON loans(employee_id);

	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		period TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		calendar_id TEXT NOT NULL DEFAULT 'default',
		scenario TEXT,
		toggles_json TEXT NOT NULL,
		status TEXT NOT NULL,
		gross_amount TEXT NOT NULL,
		net_amount TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		UNIQUE(period, calendar_id)
	);

	CREATE TABLE IF NOT EXISTS payroll_entries (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES payroll_runs(id) ON DELETE CASCADE,
		employee_id TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		gross_pay TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		working_days INTEGER NOT NULL,
		actual_working_days INTEGER NOT NULL,
		vacation_days INTEGER NOT NULL,
		allowances_json TEXT,
		tax_deduction TEXT,
		social_security_deduction TEXT,
		health_insurance_deduction TEXT,
		loan_deduction TEXT,
		other_deductions TEXT,
		bonus_amount TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_entries_run
		ON payroll_entries(run_id);

	CREATE TABLE IF NOT EXISTS loan_payments (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES payroll_runs(id) ON DELETE CASCADE,
		loan_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		amount TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loan_payments_run
		ON loan_payments(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(payroll.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	view := &txView{queries{db: tx}}
	if err := fn(view); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// txView is the store's query set bound to one open transaction.
type txView struct {
	queries
}

// =============================================================================
// QUERIES - Shared between the root store and transaction views
// =============================================================================

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

// decOf parses a stored decimal, reading NULL or garbage as zero.
func decOf(s sql.NullString) decimal.Decimal {
	if !s.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func dateOf(s string) payroll.Date {
	d, err := payroll.ParseDate(s)
	if err != nil {
		return payroll.Date{}
	}
	return d
}

// =============================================================================
// SEEDING - Master data writes
// =============================================================================

func (q queries) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, salary, status, working_days)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, salary = excluded.salary,
			status = excluded.status, working_days = excluded.working_days`,
		string(emp.ID), emp.Name, emp.Salary.String(), string(emp.Status), emp.WorkingDays)
	return err
}

func (q queries) SaveEvent(ctx context.Context, e payroll.EmployeeEvent) error {
	var recEnd any
	if e.RecurrenceEnd != nil && !e.RecurrenceEnd.IsZero() {
		recEnd = e.RecurrenceEnd.String()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO employee_events
			(id, employee_id, event_type, amount, event_date,
			 recurrence_type, recurrence_end, affects_payroll, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_type = excluded.event_type, amount = excluded.amount,
			event_date = excluded.event_date, recurrence_type = excluded.recurrence_type,
			recurrence_end = excluded.recurrence_end,
			affects_payroll = excluded.affects_payroll, status = excluded.status`,
		string(e.ID), string(e.EmployeeID), e.Type.Name(), e.Amount.String(),
		e.EventDate.String(), string(e.Recurrence), recEnd, e.AffectsPayroll, string(e.Status))
	return err
}

func (q queries) SaveVacation(ctx context.Context, v payroll.VacationRequest) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO vacations (id, employee_id, start_date, end_date, leave_type, deduct_from_salary)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date, end_date = excluded.end_date,
			leave_type = excluded.leave_type, deduct_from_salary = excluded.deduct_from_salary`,
		string(v.ID), string(v.EmployeeID), v.StartDate.String(), v.EndDate.String(),
		v.LeaveType, v.DeductFromSalary)
	return err
}

func (q queries) SaveLoan(ctx context.Context, l payroll.LoanInstallment) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO loans (id, employee_id, monthly_deduction, remaining_amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			monthly_deduction = excluded.monthly_deduction,
			remaining_amount = excluded.remaining_amount`,
		string(l.ID), string(l.EmployeeID), l.MonthlyDeduction.String(), l.RemainingAmount.String())
	return err
}

func (q queries) GetLoan(ctx context.Context, id payroll.LoanID) (*payroll.LoanInstallment, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, employee_id, monthly_deduction, remaining_amount
		FROM loans WHERE id = ?`, string(id))

	var l payroll.LoanInstallment
	var monthly, remaining sql.NullString
	err := row.Scan(&l.ID, &l.EmployeeID, &monthly, &remaining)
	if err == sql.ErrNoRows {
		return nil, payroll.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	l.MonthlyDeduction = decOf(monthly)
	l.RemainingAmount = decOf(remaining)
	return &l, nil
}

// =============================================================================
// SOURCE - Reads feeding aggregation
// =============================================================================

func (q queries) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, salary, status, working_days
		FROM employees WHERE id = ?`, string(id))

	var emp payroll.Employee
	var salary sql.NullString
	err := row.Scan(&emp.ID, &emp.Name, &salary, &emp.Status, &emp.WorkingDays)
	if err == sql.ErrNoRows {
		return nil, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	emp.Salary = decOf(salary)
	return &emp, nil
}

func (q queries) ListActiveEmployees(ctx context.Context) ([]payroll.Employee, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, salary, status, working_days
		FROM employees WHERE status = ? ORDER BY id`, string(payroll.EmployeeActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		var emp payroll.Employee
		var salary sql.NullString
		if err := rows.Scan(&emp.ID, &emp.Name, &salary, &emp.Status, &emp.WorkingDays); err != nil {
			return nil, err
		}
		emp.Salary = decOf(salary)
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (q queries) ListEvents(ctx context.Context, id payroll.EmployeeID, from, to payroll.Date) ([]payroll.EmployeeEvent, error) {
	// One-off events dated inside [from, to], plus recurring allowances whose
	// projection can still reach it. A recurrence end before the anchor is
	// malformed and reads as open-ended, so that filter stays in Go.
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, employee_id, event_type, amount, event_date,
		       recurrence_type, recurrence_end, affects_payroll, status
		FROM employee_events
		WHERE employee_id = ?
		  AND (
			(recurrence_type = 'monthly' AND event_type = 'allowance' AND event_date <= ?)
			OR (event_date >= ? AND event_date <= ?)
		  )
		ORDER BY event_date, id`,
		string(id), to.String(), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.EmployeeEvent
	for rows.Next() {
		var e payroll.EmployeeEvent
		var typeName, eventDate string
		var amount, recEnd sql.NullString
		if err := rows.Scan(&e.ID, &e.EmployeeID, &typeName, &amount, &eventDate,
			&e.Recurrence, &recEnd, &e.AffectsPayroll, &e.Status); err != nil {
			return nil, err
		}
		et, ok := payroll.ParseEventType(typeName)
		if !ok {
			continue
		}
		e.Type = et
		e.Amount = decOf(amount)
		e.EventDate = dateOf(eventDate)
		if recEnd.Valid && recEnd.String != "" {
			if d, err := payroll.ParseDate(recEnd.String); err == nil {
				e.RecurrenceEnd = &d
			}
		}
		if e.Recurring() && e.RecurrenceEnd != nil &&
			!e.RecurrenceEnd.Before(e.EventDate) && e.RecurrenceEnd.Before(from) {
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q queries) ListVacations(ctx context.Context, id payroll.EmployeeID, from, to payroll.Date) ([]payroll.VacationRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, employee_id, start_date, end_date, leave_type, deduct_from_salary
		FROM vacations
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date, id`,
		string(id), to.String(), from.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.VacationRequest
	for rows.Next() {
		var v payroll.VacationRequest
		var start, end string
		var leaveType sql.NullString
		if err := rows.Scan(&v.ID, &v.EmployeeID, &start, &end, &leaveType, &v.DeductFromSalary); err != nil {
			return nil, err
		}
		v.StartDate = dateOf(start)
		v.EndDate = dateOf(end)
		v.LeaveType = leaveType.String
		out = append(out, v)
	}
	return out, rows.Err()
}

func (q queries) ListLoans(ctx context.Context, id payroll.EmployeeID) ([]payroll.LoanInstallment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, employee_id, monthly_deduction, remaining_amount
		FROM loans WHERE employee_id = ? ORDER BY id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.LoanInstallment
	for rows.Next() {
		var l payroll.LoanInstallment
		var monthly, remaining sql.NullString
		if err := rows.Scan(&l.ID, &l.EmployeeID, &monthly, &remaining); err != nil {
			return nil, err
		}
		l.MonthlyDeduction = decOf(monthly)
		l.RemainingAmount = decOf(remaining)
		out = append(out, l)
	}
	return out, rows.Err()
}

// =============================================================================
// RUN PERSISTENCE
// =============================================================================

const runColumns = `id, period, start_date, end_date, calendar_id, scenario, toggles_json, status,
	gross_amount, net_amount, total_deductions`

func scanRunRow(scan func(dest ...any) error) (*payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	var start, end, togglesJSON string
	var scenario sql.NullString
	var gross, net, deductions sql.NullString
	err := scan(&run.ID, &run.Period, &start, &end, &run.CalendarID,
		&scenario, &togglesJSON, &run.Status, &gross, &net, &deductions)
	if err != nil {
		return nil, err
	}
	run.StartDate = dateOf(start)
	run.EndDate = dateOf(end)
	run.Scenario = scenario.String
	run.Toggles = payroll.DefaultToggles()
	json.Unmarshal([]byte(togglesJSON), &run.Toggles)
	run.GrossAmount = decOf(gross)
	run.NetAmount = decOf(net)
	run.TotalDeductions = decOf(deductions)
	return &run, nil
}

func (q queries) FindRunByPeriod(ctx context.Context, period, calendarID string) (*payroll.PayrollRun, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM payroll_runs WHERE period = ? AND calendar_id = ?`,
		period, calendarID)
	run, err := scanRunRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (q queries) CreateRun(ctx context.Context, run *payroll.PayrollRun, entries []payroll.PayrollEntry, payments []payroll.LoanPayment) error {
	toggles, err := json.Marshal(run.Toggles)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO payroll_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(run.ID), run.Period, run.StartDate.String(), run.EndDate.String(),
		run.CalendarID, run.Scenario, string(toggles), string(run.Status),
		run.GrossAmount.String(), run.NetAmount.String(), run.TotalDeductions.String())
	if err != nil {
		return err
	}

	for i := range entries {
		if err := q.insertEntry(ctx, entries[i]); err != nil {
			return err
		}
	}
	for _, p := range payments {
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO loan_payments (id, run_id, loan_id, employee_id, amount)
			VALUES (?, ?, ?, ?, ?)`,
			p.ID, string(p.RunID), string(p.LoanID), string(p.EmployeeID), p.Amount.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (q queries) insertEntry(ctx context.Context, e payroll.PayrollEntry) error {
	allowances, err := json.Marshal(e.Allowances)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO payroll_entries
			(id, run_id, employee_id, base_salary, gross_pay, net_pay,
			 working_days, actual_working_days, vacation_days, allowances_json,
			 tax_deduction, social_security_deduction, health_insurance_deduction,
			 loan_deduction, other_deductions, bonus_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), string(e.RunID), string(e.EmployeeID),
		e.BaseSalary.String(), e.GrossPay.String(), e.NetPay.String(),
		e.WorkingDays, e.ActualWorkingDays, e.VacationDays, string(allowances),
		e.TaxDeduction.String(), e.SocialSecurityDeduction.String(),
		e.HealthInsuranceDeduction.String(), e.LoanDeduction.String(),
		e.OtherDeductions.String(), e.BonusAmount.String())
	return err
}

func (q queries) GetRun(ctx context.Context, id payroll.RunID) (*payroll.PayrollRun, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM payroll_runs WHERE id = ?`, string(id))
	run, err := scanRunRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, payroll.ErrRunNotFound
	}
	return run, err
}

func (q queries) ListRuns(ctx context.Context) ([]payroll.PayrollRun, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM payroll_runs ORDER BY period, calendar_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRunRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func (q queries) ListEntries(ctx context.Context, runID payroll.RunID) ([]payroll.PayrollEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, run_id, employee_id, base_salary, gross_pay, net_pay,
		       working_days, actual_working_days, vacation_days, allowances_json,
		       tax_deduction, social_security_deduction, health_insurance_deduction,
		       loan_deduction, other_deductions, bonus_amount
		FROM payroll_entries WHERE run_id = ? ORDER BY employee_id, id`, string(runID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.PayrollEntry
	for rows.Next() {
		var e payroll.PayrollEntry
		var base, gross, net sql.NullString
		var allowancesJSON sql.NullString
		var tax, ss, health, loan, other, bonus sql.NullString
		err := rows.Scan(&e.ID, &e.RunID, &e.EmployeeID, &base, &gross, &net,
			&e.WorkingDays, &e.ActualWorkingDays, &e.VacationDays, &allowancesJSON,
			&tax, &ss, &health, &loan, &other, &bonus)
		if err != nil {
			return nil, err
		}
		e.BaseSalary = decOf(base)
		e.GrossPay = decOf(gross)
		e.NetPay = decOf(net)
		e.Allowances = map[string]decimal.Decimal{}
		if allowancesJSON.Valid && allowancesJSON.String != "" {
			json.Unmarshal([]byte(allowancesJSON.String), &e.Allowances)
		}
		e.TaxDeduction = decOf(tax)
		e.SocialSecurityDeduction = decOf(ss)
		e.HealthInsuranceDeduction = decOf(health)
		e.LoanDeduction = decOf(loan)
		e.OtherDeductions = decOf(other)
		e.BonusAmount = decOf(bonus)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q queries) ListLoanPayments(ctx context.Context, runID payroll.RunID) ([]payroll.LoanPayment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, run_id, loan_id, employee_id, amount
		FROM loan_payments WHERE run_id = ? ORDER BY id`, string(runID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.LoanPayment
	for rows.Next() {
		var p payroll.LoanPayment
		var amount sql.NullString
		if err := rows.Scan(&p.ID, &p.RunID, &p.LoanID, &p.EmployeeID, &amount); err != nil {
			return nil, err
		}
		p.Amount = decOf(amount)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q queries) UpdateRunTotals(ctx context.Context, id payroll.RunID, totals payroll.RunTotals) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE payroll_runs SET gross_amount = ?, net_amount = ?, total_deductions = ?
		WHERE id = ?`,
		totals.Gross.String(), totals.Net.String(), totals.Deductions.String(), string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrRunNotFound
	}
	return nil
}

func (q queries) UpdateEntry(ctx context.Context, e payroll.PayrollEntry) error {
	allowances, err := json.Marshal(e.Allowances)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE payroll_entries SET
			base_salary = ?, gross_pay = ?, net_pay = ?,
			working_days = ?, actual_working_days = ?, vacation_days = ?,
			allowances_json = ?,
			tax_deduction = ?, social_security_deduction = ?, health_insurance_deduction = ?,
			loan_deduction = ?, other_deductions = ?, bonus_amount = ?
		WHERE id = ? AND run_id = ?`,
		e.BaseSalary.String(), e.GrossPay.String(), e.NetPay.String(),
		e.WorkingDays, e.ActualWorkingDays, e.VacationDays, string(allowances),
		e.TaxDeduction.String(), e.SocialSecurityDeduction.String(),
		e.HealthInsuranceDeduction.String(), e.LoanDeduction.String(),
		e.OtherDeductions.String(), e.BonusAmount.String(),
		string(e.ID), string(e.RunID))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrEntryNotFound
	}
	return nil
}

func (q queries) AdjustLoanRemaining(ctx context.Context, id payroll.LoanID, delta decimal.Decimal) error {
	loan, err := q.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		UPDATE loans SET remaining_amount = ? WHERE id = ?`,
		loan.RemainingAmount.Add(delta).String(), string(id))
	return err
}

func (q queries) DeleteLoanPayments(ctx context.Context, runID payroll.RunID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM loan_payments WHERE run_id = ?`, string(runID))
	return err
}

func (q queries) DeleteRun(ctx context.Context, id payroll.RunID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM payroll_runs WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrRunNotFound
	}
	return nil
}
