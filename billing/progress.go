package billing

import (
	"math"
	"time"

	"github.com/nexwork/workbench/generic"
)

// openEndedProgress is shown for running projects with no end date, where
// there is nothing to interpolate against.
const openEndedProgress = 50

// ProjectProgress estimates completion in percent (0-100) from the status
// and the calendar, never from logged time:
//
//	not_started            0
//	completed              100
//	in_progress, no end    50
//	in_progress, with end  linear between start and end, clamped
//	on_hold, with end      same as in_progress
//	on_hold, no end        0
//	anything else          0
func ProjectProgress(p generic.Project, now time.Time) int {
	switch p.Status {
	case generic.StatusNotStarted:
		return 0
	case generic.StatusCompleted:
		return 100
	case generic.StatusInProgress:
		if !p.HasEndDate() {
			return openEndedProgress
		}
		return interpolate(p.StartDate, p.EndDate, now)
	case generic.StatusOnHold:
		// TODO: decide with product whether a paused project should keep
		// advancing with the calendar; it currently does once it has an end.
		if !p.HasEndDate() {
			return 0
		}
		return interpolate(p.StartDate, p.EndDate, now)
	default:
		return 0
	}
}

func interpolate(start, end generic.Date, now time.Time) int {
	if start.IsZero() {
		if !now.Before(end.Time) {
			return 100
		}
		return openEndedProgress
	}

	if !now.Before(end.Time) {
		return 100
	}
	if !now.After(start.Time) {
		return 0
	}

	total := end.Time.Sub(start.Time)
	elapsed := now.Sub(start.Time)
	return int(math.Round(float64(elapsed) / float64(total) * 100))
}
