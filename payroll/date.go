package payroll

import (
	"time"
)

// =============================================================================
// DATE - Timezone-independent calendar day
// =============================================================================

// Date is a calendar day with no time-of-day component. All payroll
// comparisons happen at day granularity; normalizing to UTC midnight up
// front avoids drift between dates that came from different clocks.
type Date struct {
	t time.Time
}

// NewDate builds a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.t.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON encodes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "2006-01-02" and the empty string (zero date).
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == `""` || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return err
	}
	*d = DateOf(parsed)
	return nil
}

// MinDate / MaxDate pick the earlier/later of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds a date from a possibly out-of-range day-of-month by
// clamping to the last valid day (Jan 31 + 1 month -> Feb 28/29). The month
// may itself be out of [1,12]; time.Date normalizes it first.
func ClampedDate(year int, month time.Month, day int) Date {
	norm := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if max := DaysInMonth(norm.Year(), norm.Month()); day > max {
		day = max
	}
	return NewDate(norm.Year(), norm.Month(), day)
}

// DaysBetweenInclusive counts calendar days in [from, to], 0 when inverted.
func DaysBetweenInclusive(from, to Date) int {
	if from.After(to) {
		return 0
	}
	return int(to.t.Sub(from.t).Hours()/24) + 1
}

// =============================================================================
// PERIOD - Inclusive date range for one payroll run
// =============================================================================

// Period is the inclusive [Start, End] window a payroll run covers.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod validates End >= Start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// Contains reports whether the day falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps reports whether [from, to] intersects the period.
func (p Period) Overlaps(from, to Date) bool {
	return from.BeforeOrEqual(p.End) && to.AfterOrEqual(p.Start)
}

// OverlapDays counts the days of [from, to] that fall inside the period.
func (p Period) OverlapDays(from, to Date) int {
	return DaysBetweenInclusive(MaxDate(from, p.Start), MinDate(to, p.End))
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
