/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain records keep
  decimals and dates; DTOs flatten them to numbers and strings and add the
  derived values the UI shows next to each record.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients (the factory inputs are used
    directly for create/update bodies)

DERIVED PROJECT FIELDS:
  value                    estimated hours x hourly rate
  value_formatted          value as BRL ("R$ 1.234,56")
  estimated_hours_decimal  "H:MM" as decimal hours
  progress                 0-100 estimate for today
  status_label             label in the request's language

SEE ALSO:
  - handlers.go: Uses these types
  - factory/project.go: Input types
  - billing/: Derived values
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexwork/workbench/billing"
	"github.com/nexwork/workbench/generic"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type CompanyDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type ClientDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CompanyID string `json:"company_id"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type ProjectDTO struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Description           string         `json:"description"`
	CompanyID             string         `json:"company_id"`
	ClientID              string         `json:"client_id,omitempty"`
	HourlyRate            float64        `json:"hourly_rate"`
	EstimatedHours        string         `json:"estimated_hours"`
	EstimatedHoursDecimal float64        `json:"estimated_hours_decimal"`
	StartDate             generic.Date   `json:"start_date"`
	EndDate               generic.Date   `json:"end_date"`
	Status                generic.Status `json:"status"`
	StatusLabel           string         `json:"status_label"`
	Notes                 string         `json:"notes,omitempty"`
	Value                 float64        `json:"value"`
	ValueFormatted        string         `json:"value_formatted"`
	Progress              int            `json:"progress"`
}

type SettingsDTO struct {
	Theme   generic.Theme    `json:"theme"`
	Accent  generic.Accent   `json:"accent"`
	Classes []string         `json:"classes"`
	Accents []generic.Accent `json:"accents"`
}

type CompanyRevenueDTO struct {
	CompanyID      string  `json:"company_id"`
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	ValueFormatted string  `json:"value_formatted"`
}

type DashboardDTO struct {
	Month                   string              `json:"month"`
	MonthStart              generic.Date        `json:"month_start"`
	MonthEnd                generic.Date        `json:"month_end"`
	PreviousMonth           string              `json:"previous_month"`
	NextMonth               string              `json:"next_month"`
	MonthlyRevenue          float64             `json:"monthly_revenue"`
	MonthlyRevenueFormatted string              `json:"monthly_revenue_formatted"`
	MonthProjectCount       int                 `json:"month_project_count"`
	MonthHours              string              `json:"month_hours"`
	AverageHours            string              `json:"average_hours"`
	TotalProjects           int                 `json:"total_projects"`
	CompletedProjects       int                 `json:"completed_projects"`
	Companies               int                 `json:"companies"`
	Clients                 int                 `json:"clients"`
	RevenueByCompany        []CompanyRevenueDTO `json:"revenue_by_company"`
	RecentProjects          []ProjectDTO        `json:"recent_projects"`
}

// ScenarioDTO represents a demo workspace.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Companies   int    `json:"companies"`
	Clients     int    `json:"clients"`
	Projects    int    `json:"projects"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

type StatusChangeRequest struct {
	Status string `json:"status"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCompanyDTO(c generic.Company) CompanyDTO {
	return CompanyDTO{ID: c.ID, Name: c.Name, LogoURL: c.LogoURL}
}

func toClientDTO(c generic.Client) ClientDTO {
	return ClientDTO{ID: c.ID, Name: c.Name, CompanyID: c.CompanyID, Email: c.Email, Phone: c.Phone}
}

func toProjectDTO(p generic.Project, now time.Time, locale string) ProjectDTO {
	value := billing.ProjectValue(p)
	return ProjectDTO{
		ID:                    p.ID,
		Name:                  p.Name,
		Description:           p.Description,
		CompanyID:             p.CompanyID,
		ClientID:              p.ClientID,
		HourlyRate:            p.HourlyRate.InexactFloat64(),
		EstimatedHours:        p.EstimatedHours,
		EstimatedHoursDecimal: billing.ParseHourString(p.EstimatedHours),
		StartDate:             p.StartDate,
		EndDate:               p.EndDate,
		Status:                p.Status,
		StatusLabel:           billing.StatusLabelFor(locale, p.Status),
		Notes:                 p.Notes,
		Value:                 money(value),
		ValueFormatted:        billing.FormatCurrency(value),
		Progress:              billing.ProjectProgress(p, now),
	}
}

func toProjectDTOs(ps []generic.Project, now time.Time, locale string) []ProjectDTO {
	dtos := make([]ProjectDTO, len(ps))
	for i, p := range ps {
		dtos[i] = toProjectDTO(p, now, locale)
	}
	return dtos
}

func toSettingsDTO(s generic.Settings, classes []string) SettingsDTO {
	return SettingsDTO{Theme: s.Theme, Accent: s.Accent, Classes: classes, Accents: generic.Accents}
}

func toDashboardDTO(s billing.Summary, now time.Time, locale string) DashboardDTO {
	revenue := make([]CompanyRevenueDTO, len(s.RevenueByCompany))
	for i, r := range s.RevenueByCompany {
		revenue[i] = CompanyRevenueDTO{
			CompanyID:      r.CompanyID,
			Name:           r.Name,
			Value:          money(r.Value),
			ValueFormatted: billing.FormatCurrency(r.Value),
		}
	}
	return DashboardDTO{
		Month:                   s.Month.Start.Time.Format("2006-01"),
		MonthStart:              s.Month.Start,
		MonthEnd:                s.Month.End,
		PreviousMonth:           s.Month.PreviousPeriod().Start.Time.Format("2006-01"),
		NextMonth:               s.Month.NextPeriod().Start.Time.Format("2006-01"),
		MonthlyRevenue:          money(s.MonthlyRevenue),
		MonthlyRevenueFormatted: billing.FormatCurrency(s.MonthlyRevenue),
		MonthProjectCount:       s.MonthProjectCount,
		MonthHours:              billing.FormatHourString(s.MonthHours),
		AverageHours:            billing.FormatHourString(s.AverageHours),
		TotalProjects:           s.TotalProjects,
		CompletedProjects:       s.CompletedProjects,
		Companies:               s.Companies,
		Clients:                 s.Clients,
		RevenueByCompany:        revenue,
		RecentProjects:          toProjectDTOs(s.Recent, now, locale),
	}
}

// money rounds to cents before leaving decimal land.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
