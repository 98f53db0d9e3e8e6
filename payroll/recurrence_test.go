/*
recurrence_test.go - Tests for monthly allowance expansion

Tests for:
- Anchor-day clamping across short months (31st -> Feb 29 -> Mar 31)
- Deterministic occurrence ids
- Window intersection and recurrence end bounds
- The expansion cap
*/
package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func monthlyAllowance(id string, anchor Date) EmployeeEvent {
	return EmployeeEvent{
		ID:             EventID(id),
		EmployeeID:     "emp-1",
		Type:           EventAllowance,
		Amount:         decimal.NewFromInt(100),
		EventDate:      anchor,
		Recurrence:     RecurrenceMonthly,
		AffectsPayroll: true,
		Status:         EventStatusActive,
	}
}

func TestExpandOccurrences_ClampsToShortMonths(t *testing.T) {
	// GIVEN: A monthly allowance anchored on Jan 31 of a leap year
	event := monthlyAllowance("allow-1", NewDate(2024, time.January, 31))

	// WHEN: Expanding through the end of April
	occs := ExpandOccurrences(event, NewDate(2024, time.January, 1), NewDate(2024, time.April, 30))

	// THEN: Short months clamp, and the 31st comes back after February
	want := []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}
	if len(occs) != len(want) {
		t.Fatalf("Expected %d occurrences, got %d", len(want), len(occs))
	}
	for i, day := range want {
		if occs[i].Date.String() != day {
			t.Errorf("Occurrence %d: expected %s, got %s", i, day, occs[i].Date)
		}
		if occs[i].ID != "allow-1:"+day {
			t.Errorf("Occurrence %d: expected id %q, got %q", i, "allow-1:"+day, occs[i].ID)
		}
		if !occs[i].Amount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Occurrence %d: expected amount 100, got %s", i, occs[i].Amount)
		}
	}
}

func TestExpandOccurrences_NonLeapFebruary(t *testing.T) {
	// GIVEN: A monthly allowance anchored on Jan 30 of a non-leap year
	event := monthlyAllowance("allow-2", NewDate(2023, time.January, 30))

	// WHEN: Expanding through March
	occs := ExpandOccurrences(event, NewDate(2023, time.January, 1), NewDate(2023, time.March, 31))

	// THEN: February clamps to the 28th
	want := []string{"2023-01-30", "2023-02-28", "2023-03-30"}
	if len(occs) != len(want) {
		t.Fatalf("Expected %d occurrences, got %d", len(want), len(occs))
	}
	for i, day := range want {
		if occs[i].Date.String() != day {
			t.Errorf("Occurrence %d: expected %s, got %s", i, day, occs[i].Date)
		}
	}
}

func TestExpandOccurrences_Deterministic(t *testing.T) {
	// GIVEN: The same event and window expanded twice
	event := monthlyAllowance("allow-3", NewDate(2024, time.March, 15))
	from, to := NewDate(2024, time.January, 1), NewDate(2024, time.December, 31)

	first := ExpandOccurrences(event, from, to)
	second := ExpandOccurrences(event, from, to)

	// THEN: Ids match pairwise, in order
	if len(first) != len(second) {
		t.Fatalf("Expansions differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Occurrence %d: ids differ: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestExpandOccurrences_RespectsRecurrenceEnd(t *testing.T) {
	// GIVEN: An allowance that ends in March
	end := NewDate(2024, time.March, 31)
	event := monthlyAllowance("allow-4", NewDate(2024, time.January, 10))
	event.RecurrenceEnd = &end

	// WHEN: Expanding over a window extending past the end
	occs := ExpandOccurrences(event, NewDate(2024, time.January, 1), NewDate(2024, time.June, 30))

	// THEN: Nothing projects past the recurrence end
	if len(occs) != 3 {
		t.Fatalf("Expected 3 occurrences, got %d", len(occs))
	}
	if last := occs[len(occs)-1].Date; last.After(end) {
		t.Errorf("Occurrence %s past recurrence end %s", last, end)
	}
}

func TestExpandOccurrences_MalformedEndReadsOpenEnded(t *testing.T) {
	// GIVEN: A recurrence end before the anchor (malformed)
	end := NewDate(2023, time.December, 1)
	event := monthlyAllowance("allow-5", NewDate(2024, time.January, 10))
	event.RecurrenceEnd = &end

	// WHEN: Expanding through April
	occs := ExpandOccurrences(event, NewDate(2024, time.January, 1), NewDate(2024, time.April, 30))

	// THEN: The end is ignored rather than producing zero occurrences
	if len(occs) != 4 {
		t.Fatalf("Expected 4 occurrences, got %d", len(occs))
	}
}

func TestExpandOccurrences_WindowAfterAnchor(t *testing.T) {
	// GIVEN: An allowance anchored well before the requested window
	event := monthlyAllowance("allow-6", NewDate(2024, time.January, 31))

	// WHEN: Expanding only over June
	occs := ExpandOccurrences(event, NewDate(2024, time.June, 1), NewDate(2024, time.June, 30))

	// THEN: Exactly the June occurrence is produced, still clamp-derived
	// from the original anchor day
	if len(occs) != 1 {
		t.Fatalf("Expected 1 occurrence, got %d", len(occs))
	}
	if occs[0].Date.String() != "2024-06-30" {
		t.Errorf("Expected 2024-06-30, got %s", occs[0].Date)
	}
}

func TestExpandOccurrences_EmptyWindow(t *testing.T) {
	// GIVEN: A window that ends before the anchor
	event := monthlyAllowance("allow-7", NewDate(2024, time.June, 1))

	// WHEN: Expanding over January
	occs := ExpandOccurrences(event, NewDate(2024, time.January, 1), NewDate(2024, time.January, 31))

	// THEN: No occurrences
	if len(occs) != 0 {
		t.Fatalf("Expected no occurrences, got %d", len(occs))
	}
}

func TestExpandOccurrences_CapBoundsGeneration(t *testing.T) {
	// GIVEN: An open-window expansion spanning far more than the cap
	event := monthlyAllowance("allow-8", NewDate(1900, time.January, 1))

	// WHEN: Expanding over more than MaxOccurrences months
	occs := ExpandOccurrences(event, NewDate(1900, time.January, 1), NewDate(2024, time.December, 31))

	// THEN: Generation stops at the cap
	if len(occs) != MaxOccurrences {
		t.Fatalf("Expected cap of %d occurrences, got %d", MaxOccurrences, len(occs))
	}
}

func TestExpandOccurrences_CapIgnoresPreWindowMonths(t *testing.T) {
	// GIVEN: An anchor more than MaxOccurrences months before the window
	event := monthlyAllowance("allow-old", NewDate(1950, time.January, 15))

	// WHEN: Expanding only over March 2024
	occs := ExpandOccurrences(event, NewDate(2024, time.March, 1), NewDate(2024, time.March, 31))

	// THEN: The skipped months don't consume the cap; the window's
	// occurrence is still produced
	if len(occs) != 1 {
		t.Fatalf("Expected 1 occurrence, got %d", len(occs))
	}
	if occs[0].Date.String() != "2024-03-15" {
		t.Errorf("Expected 2024-03-15, got %s", occs[0].Date)
	}
}

func TestExpandOccurrences_NonRecurringSingleOccurrence(t *testing.T) {
	// GIVEN: A one-off allowance inside the window
	event := monthlyAllowance("allow-9", NewDate(2024, time.March, 5))
	event.Recurrence = RecurrenceNone

	occs := ExpandOccurrences(event, NewDate(2024, time.March, 1), NewDate(2024, time.March, 31))

	// THEN: Exactly one occurrence at the anchor
	if len(occs) != 1 {
		t.Fatalf("Expected 1 occurrence, got %d", len(occs))
	}
	if !occs[0].Date.Equal(event.EventDate) {
		t.Errorf("Expected occurrence at %s, got %s", event.EventDate, occs[0].Date)
	}
}
