package generic

import "time"

// =============================================================================
// PERIOD - Inclusive date interval used for revenue bucketing
// =============================================================================

// Period is the closed interval [Start, End].
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod returns the month window [first day, last day].
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// NextPeriod returns the following month window.
func (p Period) NextPeriod() Period {
	next := p.Start.Time.AddDate(0, 1, 0)
	return MonthPeriod(next.Year(), next.Month())
}

// PreviousPeriod returns the preceding month window.
func (p Period) PreviousPeriod() Period {
	prev := p.Start.Time.AddDate(0, -1, 0)
	return MonthPeriod(prev.Year(), prev.Month())
}
