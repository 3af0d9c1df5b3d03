/*
Package billing provides the financial and progress calculations over projects.

PURPOSE:
  Every number the dashboard and project pages show is derived here from
  Project snapshots: decimal hours, project value, monthly revenue and the
  date-based progress estimate. Nothing in this package does I/O or keeps
  state, so all functions are safe for concurrent use and are called with
  whatever snapshot the store returned, stale or not.

KEY CONCEPTS:
  - Hour string: "H:MM" as typed in the UI ("4:15")
  - Decimal hours: the same duration as float64 (4.25)
  - Month window: the inclusive [first day, last day] of a calendar month

INPUT HANDLING:
  Inputs come from users and remote documents, so nothing here fails:
  malformed hour strings count as zero, missing dates fall back to fixed
  defaults and unknown statuses produce 0% progress and their raw label.

SEE ALSO:
  - generic/types.go: Project record
  - factory/: validation that runs before data is stored
*/
package billing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// ParseHourString converts "H:MM" into decimal hours. The minutes part is
// optional ("2" is two hours). A token that is not a non-negative integer
// counts as zero, so the result is never NaN or negative. Tokens have no
// magnitude bound.
func ParseHourString(s string) float64 {
	return parseHours(s).InexactFloat64()
}

// parseHours is the exact form of ParseHourString.
func parseHours(s string) decimal.Decimal {
	parts := strings.Split(s, ":")
	hours := parseToken(parts[0])
	if len(parts) > 1 {
		hours = hours.Add(parseToken(parts[1]).Div(sixty))
	}
	return hours
}

func parseToken(tok string) decimal.Decimal {
	tok = strings.TrimPrefix(strings.TrimSpace(tok), "+")
	if tok == "" {
		return decimal.Zero
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return decimal.Zero
		}
	}
	n, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero
	}
	return n
}

// FormatHourString renders decimal hours as "H:MM". Minutes that round up
// to 60 carry into the hour, so 4.9999 prints "5:00".
func FormatHourString(decimalHours float64) string {
	hours, minutes := HourMinutes(decimalHours)
	return fmt.Sprintf("%s:%02d", strconv.FormatFloat(hours, 'f', 0, 64), minutes)
}

// HourMinutes splits decimal hours into whole hours and rounded minutes
// (0-59). Hours stay a float so huge values do not wrap. NaN, infinities
// and negatives yield 0, 0.
func HourMinutes(decimalHours float64) (float64, int) {
	if math.IsNaN(decimalHours) || math.IsInf(decimalHours, 0) || decimalHours <= 0 {
		return 0, 0
	}
	hours := math.Floor(decimalHours)
	minutes := int(math.Round((decimalHours - hours) * 60))
	if minutes == 60 {
		hours++
		minutes = 0
	}
	return hours, minutes
}

// NormalizeHourInput cleans a user-typed hour string: everything except
// digits and ':' is dropped, only the first two ':'-separated parts are
// kept and minutes are cut to two digits. "4h:155x" becomes "4:15".
func NormalizeHourInput(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ':' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	parts := strings.Split(cleaned, ":")
	if len(parts) < 2 {
		return cleaned
	}
	return parts[0] + ":" + truncate(parts[1], 2)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
