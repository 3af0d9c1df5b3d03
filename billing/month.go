package billing

import (
	"fmt"
	"time"

	"github.com/nexwork/workbench/generic"
)

// MonthWindow returns [first day, last day] of the month ref falls in,
// read in ref's own location.
func MonthWindow(ref time.Time) generic.Period {
	return generic.MonthPeriod(ref.Year(), ref.Month())
}

// CurrentMonthProjects keeps projects that touch the month of ref: they
// start in it, end in it, or span it entirely (start on or before the first
// day and end on or after the last day, or never end). Order is preserved
// and the input slice is not modified.
//
// A project without a start date can only match by its end date.
func CurrentMonthProjects(projects []generic.Project, ref time.Time) []generic.Project {
	window := MonthWindow(ref)

	result := []generic.Project{}
	for _, p := range projects {
		if inWindow(p, window) {
			result = append(result, p)
		}
	}
	return result
}

func inWindow(p generic.Project, w generic.Period) bool {
	hasStart := !p.StartDate.IsZero()

	if hasStart && w.Contains(p.StartDate) {
		return true
	}
	if p.HasEndDate() && w.Contains(p.EndDate) {
		return true
	}
	if hasStart && p.StartDate.BeforeOrEqual(w.Start) &&
		(!p.HasEndDate() || p.EndDate.AfterOrEqual(w.End)) {
		return true
	}
	return false
}

// ParseMonth reads the "YYYY-MM" value of the month filter and returns the
// first instant of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (use YYYY-MM): %w", s, err)
	}
	return t, nil
}
