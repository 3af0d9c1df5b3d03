package billing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/nexwork/workbench/generic"
)

// ProjectHours is the estimate as an exact decimal. Thirds of an hour stay
// exact to 16 digits, well past currency precision.
func ProjectHours(p generic.Project) decimal.Decimal {
	return parseHours(p.EstimatedHours)
}

// ProjectValue is estimated hours times the hourly rate.
func ProjectValue(p generic.Project) decimal.Decimal {
	return ProjectHours(p).Mul(p.HourlyRate)
}

// TotalProjectsValue sums ProjectValue. An empty slice totals zero.
func TotalProjectsValue(projects []generic.Project) decimal.Decimal {
	total := decimal.Zero
	for _, p := range projects {
		total = total.Add(ProjectValue(p))
	}
	return total
}

// TotalHours sums the decimal-hour estimates.
func TotalHours(projects []generic.Project) float64 {
	var total float64
	for _, p := range projects {
		total += ParseHourString(p.EstimatedHours)
	}
	return total
}

// =============================================================================
// CURRENCY
// =============================================================================

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrency renders an amount in Brazilian reais, e.g. "R$ 1.234,56".
func FormatCurrency(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + "R$ " + brl.Sprint(number.Decimal(f, number.Scale(2)))
}
