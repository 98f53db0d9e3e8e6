/*
recurrence.go - Monthly allowance expansion

PURPOSE:
  Expands one recurring monthly allowance into concrete dated occurrences
  within a window. Occurrences are always derived, never stored: the same
  event and window must reproduce the same id list in the same order,
  because override resolution keys off those ids.

ANCHOR-DAY CLAMPING:
  The anchor day is the day-of-month of the event's anchor date. Occurrence
  i lives in anchor month + i, with the day clamped to the last valid day of
  that month. Clamping is re-derived from the original anchor each month, so
  an anchor of Jan 31 yields Feb 29 (leap) and then Mar 31 again, not Mar 29.

WINDOW:
  effective start = max(rangeStart, anchor date)
  effective end   = min(rangeEnd ?? today, recurrence end ?? +inf)
  An open-ended allowance never projects past "today". An inverted window
  yields no occurrences.

SAFETY:
  MaxOccurrences caps the number of generated occurrences against malformed
  input. This is a generation bound, not a user-facing limit; months skipped
  before the window do not consume it.
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/metrics"
)

// =============================================================================
// OCCURRENCE - One derived instance of a recurring allowance
// =============================================================================

// MaxOccurrences bounds a single expansion.
const MaxOccurrences = 600

// Occurrence is one dated instance generated from an allowance definition.
type Occurrence struct {
	// ID is "{eventID}:{yyyy-mm-dd}", stable for the same event and window.
	ID      string
	EventID EventID
	Date    Date
	Amount  decimal.Decimal
}

// OccurrenceID builds the synthetic id for an event occurrence on a day.
func OccurrenceID(eventID EventID, day Date) string {
	return string(eventID) + ":" + day.String()
}

// =============================================================================
// EXPANSION
// =============================================================================

// ExpandOccurrences expands an event into dated occurrences inside
// [rangeStart, rangeEnd]. Zero-value bounds mean "unbounded" on that side
// (the end still defaults to today for recurring allowances). Non-recurring
// events short-circuit to a single occurrence at their own anchor date,
// subject to the same window.
func ExpandOccurrences(event EmployeeEvent, rangeStart, rangeEnd Date) []Occurrence {
	if !event.Recurring() {
		if inWindow(event.EventDate, rangeStart, rangeEnd) {
			return []Occurrence{occurrenceAt(event, event.EventDate)}
		}
		return nil
	}

	anchor := event.EventDate

	start := anchor
	if !rangeStart.IsZero() {
		start = MaxDate(rangeStart, anchor)
	}

	end := rangeEnd
	if end.IsZero() {
		end = Today()
	}
	if event.RecurrenceEnd != nil && !event.RecurrenceEnd.IsZero() && !event.RecurrenceEnd.Before(anchor) {
		end = MinDate(end, *event.RecurrenceEnd)
	}

	if end.Before(start) {
		return nil
	}

	// The cap bounds generated occurrences, not iterated months: months
	// before the effective start don't count against it, so an old anchor
	// still yields its occurrences inside a far-future window. Termination
	// holds regardless because day grows monthly toward the finite end.
	var out []Occurrence
	for i := 0; len(out) < MaxOccurrences; i++ {
		day := ClampedDate(anchor.Year(), anchor.Month()+time.Month(i), anchor.Day())
		if day.After(end) {
			break
		}
		if day.Before(start) {
			continue
		}
		out = append(out, occurrenceAt(event, day))
	}
	metrics.OccurrencesExpanded.Add(float64(len(out)))
	return out
}

func occurrenceAt(event EmployeeEvent, day Date) Occurrence {
	return Occurrence{
		ID:      OccurrenceID(event.ID, day),
		EventID: event.ID,
		Date:    day,
		Amount:  event.Amount,
	}
}

func inWindow(d, start, end Date) bool {
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}
