package payroll

import (
	"testing"
	"time"
)

func TestClampedDate(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		day   int
		want  string
	}{
		{2024, time.February, 31, "2024-02-29"}, // leap year clamp
		{2023, time.February, 31, "2023-02-28"}, // non-leap clamp
		{2024, time.April, 31, "2024-04-30"},
		{2024, time.March, 31, "2024-03-31"},        // no clamp needed
		{2024, time.January + 12, 15, "2025-01-15"}, // month overflow normalizes
		{2024, time.December + 2, 31, "2025-02-28"}, // overflow then clamp
	}
	for _, c := range cases {
		if got := ClampedDate(c.year, c.month, c.day); got.String() != c.want {
			t.Errorf("ClampedDate(%d, %d, %d): expected %s, got %s", c.year, c.month, c.day, c.want, got)
		}
	}
}

func TestPeriodOverlapDays(t *testing.T) {
	// GIVEN: A March payroll period
	period, err := NewPeriod(NewDate(2024, time.March, 1), NewDate(2024, time.March, 31))
	if err != nil {
		t.Fatalf("Failed to build period: %v", err)
	}

	// Vacation straddling the period start: only the inside days count
	if got := period.OverlapDays(NewDate(2024, time.February, 27), NewDate(2024, time.March, 3)); got != 3 {
		t.Errorf("Expected 3 overlap days, got %d", got)
	}
	// Fully inside
	if got := period.OverlapDays(NewDate(2024, time.March, 10), NewDate(2024, time.March, 12)); got != 3 {
		t.Errorf("Expected 3 overlap days, got %d", got)
	}
	// Disjoint
	if got := period.OverlapDays(NewDate(2024, time.April, 1), NewDate(2024, time.April, 5)); got != 0 {
		t.Errorf("Expected 0 overlap days, got %d", got)
	}
}

func TestNewPeriodRejectsInversion(t *testing.T) {
	_, err := NewPeriod(NewDate(2024, time.March, 31), NewDate(2024, time.March, 1))
	if err != ErrInvalidPeriod {
		t.Fatalf("Expected ErrInvalidPeriod, got %v", err)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.February, 29)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `"2024-02-29"` {
		t.Errorf("Expected \"2024-02-29\", got %s", b)
	}

	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("Round trip changed date: %s vs %s", d, back)
	}
}
