/*
override.go - Skip-id resolution at generation time

PURPOSE:
  A caller previews a run, then generates it with an optional set of skip
  ids taken from that preview. Each skip set is a plain membership test;
  absence means "included". Ids that no longer resolve are silently dropped
  rather than failing the call - they are best-effort hints from a possibly
  stale preview.

  The three id spaces are typed separately (vacation, loan, event) so a
  collision between id shapes can never exclude the wrong item. A recurring
  allowance occurrence is addressed by its synthetic "{eventId}:{date}" id,
  never its parent event id, so skipping one month leaves the other months
  alone.

  Overrides are write-once: resolved during one Generate call, burned into
  the resulting entries, and never stored as a standing preference.
*/
package payroll

// Overrides carries the skip sets supplied alongside a Generate call.
type Overrides struct {
	SkippedVacationIDs []VacationID
	SkippedLoanIDs     []LoanID
	// SkippedEventIDs holds one-off event ids and allowance occurrence ids.
	SkippedEventIDs []string
}

// IsEmpty reports whether no skips were supplied.
func (o Overrides) IsEmpty() bool {
	return len(o.SkippedVacationIDs) == 0 && len(o.SkippedLoanIDs) == 0 && len(o.SkippedEventIDs) == 0
}

type overrideSets struct {
	vacations map[VacationID]struct{}
	loans     map[LoanID]struct{}
	events    map[string]struct{}
}

func (o Overrides) sets() overrideSets {
	s := overrideSets{
		vacations: make(map[VacationID]struct{}, len(o.SkippedVacationIDs)),
		loans:     make(map[LoanID]struct{}, len(o.SkippedLoanIDs)),
		events:    make(map[string]struct{}, len(o.SkippedEventIDs)),
	}
	for _, id := range o.SkippedVacationIDs {
		s.vacations[id] = struct{}{}
	}
	for _, id := range o.SkippedLoanIDs {
		s.loans[id] = struct{}{}
	}
	for _, id := range o.SkippedEventIDs {
		s.events[id] = struct{}{}
	}
	return s
}

// Apply returns a filtered copy of the aggregated inputs with every skipped
// item removed. The originals are never mutated.
func (o Overrides) Apply(inputs []*PeriodInputs) []*PeriodInputs {
	if o.IsEmpty() {
		return inputs
	}
	sets := o.sets()

	out := make([]*PeriodInputs, 0, len(inputs))
	for _, in := range inputs {
		filtered := &PeriodInputs{Employee: in.Employee, Period: in.Period}

		for _, v := range in.Vacations {
			if _, skip := sets.vacations[v.Vacation.ID]; skip {
				continue
			}
			filtered.Vacations = append(filtered.Vacations, v)
		}
		for _, l := range in.Loans {
			if _, skip := sets.loans[l.Loan.ID]; skip {
				continue
			}
			filtered.Loans = append(filtered.Loans, l)
		}
		for _, e := range in.Events {
			if _, skip := sets.events[string(e.Event.ID)]; skip {
				continue
			}
			filtered.Events = append(filtered.Events, e)
		}
		for _, occ := range in.Allowances {
			// Occurrence id, not parent event id: one skipped month never
			// affects the allowance's other months.
			if _, skip := sets.events[occ.ID]; skip {
				continue
			}
			filtered.Allowances = append(filtered.Allowances, occ)
		}

		out = append(out, filtered)
	}
	return out
}
