package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexwork/workbench/generic"
)

// recentLimit is how many projects the dashboard lists as recent.
const recentLimit = 5

// CompanyRevenue is the value of all projects of one company.
type CompanyRevenue struct {
	CompanyID string
	Name      string
	Value     decimal.Decimal
}

// Summary backs the dashboard cards and charts.
type Summary struct {
	Month             generic.Period
	MonthlyRevenue    decimal.Decimal
	MonthProjectCount int
	MonthHours        float64
	AverageHours      float64
	TotalProjects     int
	CompletedProjects int
	Companies         int
	Clients           int
	RevenueByCompany  []CompanyRevenue
	Recent            []generic.Project
}

// Summarize derives the dashboard for the month of ref.
//
// Monthly figures only count projects in the month window. Revenue by
// company counts every project and omits companies whose total is zero.
// Recent projects are the latest by start date; ties keep input order.
func Summarize(companies []generic.Company, clients []generic.Client, projects []generic.Project, ref time.Time) Summary {
	month := CurrentMonthProjects(projects, ref)
	hours := TotalHours(month)

	divisor := len(month)
	if divisor == 0 {
		divisor = 1
	}

	s := Summary{
		Month:             MonthWindow(ref),
		MonthlyRevenue:    TotalProjectsValue(month),
		MonthProjectCount: len(month),
		MonthHours:        hours,
		AverageHours:      hours / float64(divisor),
		TotalProjects:     len(projects),
		Companies:         len(companies),
		Clients:           len(clients),
		RevenueByCompany:  revenueByCompany(companies, projects),
		Recent:            recentProjects(projects, recentLimit),
	}
	for _, p := range projects {
		if p.Status == generic.StatusCompleted {
			s.CompletedProjects++
		}
	}
	return s
}

func revenueByCompany(companies []generic.Company, projects []generic.Project) []CompanyRevenue {
	byCompany := make(map[string][]generic.Project)
	for _, p := range projects {
		byCompany[p.CompanyID] = append(byCompany[p.CompanyID], p)
	}

	result := []CompanyRevenue{}
	for _, c := range companies {
		value := TotalProjectsValue(byCompany[c.ID])
		if value.IsPositive() {
			result = append(result, CompanyRevenue{CompanyID: c.ID, Name: c.Name, Value: value})
		}
	}
	return result
}

func recentProjects(projects []generic.Project, limit int) []generic.Project {
	sorted := append([]generic.Project{}, projects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.After(sorted[j].StartDate)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
