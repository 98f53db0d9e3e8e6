package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A loan with a known balance
	ctx := context.Background()
	m := NewMemory()
	if err := m.SaveLoan(ctx, payroll.LoanInstallment{
		ID:               "loan-1",
		EmployeeID:       "emp-1",
		MonthlyDeduction: decimal.NewFromInt(50),
		RemainingAmount:  decimal.NewFromInt(500),
	}); err != nil {
		t.Fatalf("Failed to save loan: %v", err)
	}

	// WHEN: A transaction adjusts it and then fails
	boom := errors.New("boom")
	err := m.WithTx(ctx, func(tx payroll.Store) error {
		if err := tx.AdjustLoanRemaining(ctx, "loan-1", decimal.NewFromInt(-50)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the inner error, got %v", err)
	}

	// THEN: The adjustment was rolled back
	loan, err := m.GetLoan(ctx, "loan-1")
	if err != nil {
		t.Fatalf("Failed to read loan: %v", err)
	}
	if !loan.RemainingAmount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance 500 after rollback, got %s", loan.RemainingAmount)
	}
}

func TestListEvents_WindowFiltering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	oneOff := payroll.EmployeeEvent{
		ID:         "ev-1",
		EmployeeID: "emp-1",
		Type:       payroll.EventBonus,
		Amount:     decimal.NewFromInt(10),
		EventDate:  payroll.NewDate(2024, time.February, 15),
		Recurrence: payroll.RecurrenceNone,
	}
	recurring := payroll.EmployeeEvent{
		ID:         "allow-1",
		EmployeeID: "emp-1",
		Type:       payroll.EventAllowance,
		Amount:     decimal.NewFromInt(40),
		EventDate:  payroll.NewDate(2023, time.June, 1),
		Recurrence: payroll.RecurrenceMonthly,
	}
	ended := recurring
	ended.ID = "allow-2"
	end := payroll.NewDate(2023, time.December, 31)
	ended.RecurrenceEnd = &end

	for _, e := range []payroll.EmployeeEvent{oneOff, recurring, ended} {
		if err := m.SaveEvent(ctx, e); err != nil {
			t.Fatalf("Failed to save event: %v", err)
		}
	}

	// WHEN: Listing March 2024
	events, err := m.ListEvents(ctx, "emp-1",
		payroll.NewDate(2024, time.March, 1), payroll.NewDate(2024, time.March, 31))
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}

	// THEN: The February one-off and the ended allowance are filtered out;
	// the open-ended allowance survives
	if len(events) != 1 || events[0].ID != "allow-1" {
		ids := make([]payroll.EventID, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		t.Errorf("Expected only allow-1, got %v", ids)
	}
}

func TestSaveEvent_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e := payroll.EmployeeEvent{
		ID:         "ev-1",
		EmployeeID: "emp-1",
		Type:       payroll.EventBonus,
		Amount:     decimal.NewFromInt(10),
		EventDate:  payroll.NewDate(2024, time.March, 5),
	}
	if err := m.SaveEvent(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.Amount = decimal.NewFromInt(25)
	if err := m.SaveEvent(ctx, e); err != nil {
		t.Fatal(err)
	}

	events, err := m.ListEvents(ctx, "emp-1",
		payroll.NewDate(2024, time.March, 1), payroll.NewDate(2024, time.March, 31))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event after upsert, got %d", len(events))
	}
	if !events[0].Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected amount 25, got %s", events[0].Amount)
	}
}
