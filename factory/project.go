/*
Package factory converts raw form input into validated workbench records.

PURPOSE:
  The UI sends what the user typed: hour strings with stray characters,
  rates as numbers, dates as YYYY-MM-DD strings, statuses as strings. The
  factory cleans and validates those values and produces generic.Company,
  generic.Client and generic.Project values the stores can persist. The
  billing package never sees unvalidated input from this path.

RULES (mirroring the original form guards):
  Company: name required
  Client:  name and company required
  Project:
    - name and company required (trimmed)
    - estimated hours required, cleaned with billing.NormalizeHourInput
      and stored in canonical "H:MM" form
    - hourly rate must be > 0
    - start date defaults to today; end date optional, not before start
    - status defaults to not_started and must be one of the four values
    - description and notes are trimmed

JSON SHAPE:
  {
    "name": "Website redesign",
    "description": "Landing page and blog",
    "company_id": "c0ffee",
    "client_id": "",
    "hourly_rate": 120,
    "estimated_hours": "40:30",
    "start_date": "2024-03-01",
    "end_date": "2024-04-15",
    "status": "in_progress",
    "notes": ""
  }

SEE ALSO:
  - generic/errors.go: ValidationError
  - workspace/service.go: Uses the factory before touching the store
*/
package factory

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexwork/workbench/billing"
	"github.com/nexwork/workbench/generic"
)

// =============================================================================
// INPUT TYPES
// =============================================================================

// CompanyInput is the raw company form.
type CompanyInput struct {
	Name    string `json:"name" yaml:"name"`
	LogoURL string `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`
}

// ClientInput is the raw client form.
type ClientInput struct {
	Name      string `json:"name" yaml:"name"`
	CompanyID string `json:"company_id" yaml:"company_id"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// ProjectInput is the raw project form.
type ProjectInput struct {
	Name           string  `json:"name" yaml:"name"`
	Description    string  `json:"description" yaml:"description"`
	CompanyID      string  `json:"company_id" yaml:"company_id"`
	ClientID       string  `json:"client_id" yaml:"client_id"`
	HourlyRate     float64 `json:"hourly_rate" yaml:"hourly_rate"`
	EstimatedHours string  `json:"estimated_hours" yaml:"estimated_hours"`
	StartDate      string  `json:"start_date" yaml:"start_date"`
	EndDate        string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Status         string  `json:"status,omitempty" yaml:"status,omitempty"`
	Notes          string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory builds records. Now supplies "today" for default start dates.
type Factory struct {
	Now func() time.Time
}

func New() *Factory {
	return &Factory{Now: time.Now}
}

// Company validates in and returns a record with the given ID.
func (f *Factory) Company(id string, in CompanyInput) (generic.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return generic.Company{}, generic.Invalid("name", "required")
	}
	return generic.Company{
		ID:      id,
		Name:    name,
		LogoURL: strings.TrimSpace(in.LogoURL),
	}, nil
}

// Client validates in and returns a record with the given ID.
func (f *Factory) Client(id string, in ClientInput) (generic.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return generic.Client{}, generic.Invalid("name", "required")
	}
	if strings.TrimSpace(in.CompanyID) == "" {
		return generic.Client{}, generic.Invalid("company_id", "required")
	}
	return generic.Client{
		ID:        id,
		Name:      name,
		CompanyID: strings.TrimSpace(in.CompanyID),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
	}, nil
}

// Project validates in and returns a record with the given ID.
func (f *Factory) Project(id string, in ProjectInput) (generic.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return generic.Project{}, generic.Invalid("name", "required")
	}
	companyID := strings.TrimSpace(in.CompanyID)
	if companyID == "" {
		return generic.Project{}, generic.Invalid("company_id", "required")
	}

	hours, err := CanonicalHours(in.EstimatedHours)
	if err != nil {
		return generic.Project{}, err
	}

	if math.IsNaN(in.HourlyRate) || math.IsInf(in.HourlyRate, 0) {
		return generic.Project{}, generic.Invalid("hourly_rate", "must be a finite number")
	}
	if in.HourlyRate <= 0 {
		return generic.Project{}, generic.Invalid("hourly_rate", "must be greater than zero")
	}

	start, err := generic.ParseDate(in.StartDate)
	if err != nil {
		return generic.Project{}, generic.Invalid("start_date", "%v", err)
	}
	if start.IsZero() {
		start = generic.DateOf(f.Now())
	}

	end, err := generic.ParseDate(in.EndDate)
	if err != nil {
		return generic.Project{}, generic.Invalid("end_date", "%v", err)
	}
	if !end.IsZero() && end.Before(start) {
		return generic.Project{}, generic.Invalid("end_date", "before start_date %s", start)
	}

	status, err := ParseStatus(in.Status)
	if err != nil {
		return generic.Project{}, err
	}

	return generic.Project{
		ID:             id,
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		CompanyID:      companyID,
		ClientID:       strings.TrimSpace(in.ClientID),
		HourlyRate:     decimal.NewFromFloat(in.HourlyRate),
		EstimatedHours: hours,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		Notes:          strings.TrimSpace(in.Notes),
	}, nil
}

// ProjectInputFrom is the inverse of Project, used to pre-fill edit forms
// and to apply partial updates.
func ProjectInputFrom(p generic.Project) ProjectInput {
	rate, _ := p.HourlyRate.Float64()
	return ProjectInput{
		Name:           p.Name,
		Description:    p.Description,
		CompanyID:      p.CompanyID,
		ClientID:       p.ClientID,
		HourlyRate:     rate,
		EstimatedHours: p.EstimatedHours,
		StartDate:      p.StartDate.String(),
		EndDate:        p.EndDate.String(),
		Status:         string(p.Status),
		Notes:          p.Notes,
	}
}

// =============================================================================
// FIELD HELPERS
// =============================================================================

// CanonicalHours cleans a typed hour string and re-renders it as "H:MM".
// "4:5" becomes "4:05", "7" becomes "7:00".
func CanonicalHours(raw string) (string, error) {
	cleaned := billing.NormalizeHourInput(raw)
	if strings.Trim(cleaned, ":") == "" {
		return "", generic.Invalid("estimated_hours", "required (use H:MM)")
	}
	return billing.FormatHourString(billing.ParseHourString(cleaned)), nil
}

// ParseStatus accepts the four status values; empty means not_started.
func ParseStatus(raw string) (generic.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return generic.StatusNotStarted, nil
	}
	s := generic.Status(raw)
	if !s.Valid() {
		return "", generic.Invalid("status", "unknown status %q", raw)
	}
	return s, nil
}
