/*
Package generic provides the shared records and contracts of the workbench.

PURPOSE:
  This package holds the transport-agnostic shapes every other package
  agrees on: companies, clients, projects, application settings, calendar
  dates and the Repository capability the stores implement. It contains no
  persistence and no HTTP code.

KEY CONCEPTS IN THIS FILE (types.go):
  - Company / Client / Project: the records the UI edits
  - Status: the four project lifecycle states
  - Settings: theme and accent color, persisted like any other record

DESIGN PRINCIPLES:
  1. Precision: hourly rates use decimal.Decimal, never float64
  2. Snapshots: records are plain values, copied in and out of stores
  3. Derived data is never stored: project value and progress are computed
     by the billing package on demand

SEE ALSO:
  - time.go: Date (calendar date without time of day)
  - store.go: Repository interfaces
  - billing/: calculations over Project snapshots
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - Project lifecycle
// =============================================================================

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// =============================================================================
// RECORDS
// =============================================================================

// Company owns clients and projects. Deleting a company cascades to both.
type Company struct {
	ID      string
	Name    string
	LogoURL string
}

// Client belongs to exactly one company.
type Client struct {
	ID        string
	Name      string
	CompanyID string
	Email     string
	Phone     string
}

// Project is a billable piece of work.
//
// EstimatedHours uses the "H:MM" form typed into the UI ("4:15" is four
// hours fifteen minutes). ClientID may be empty once its client is deleted.
// A zero EndDate means the project is open-ended.
type Project struct {
	ID             string
	Name           string
	Description    string
	CompanyID      string
	ClientID       string
	HourlyRate     decimal.Decimal
	EstimatedHours string
	StartDate      Date
	EndDate        Date
	Status         Status
	Notes          string
}

// HasEndDate reports whether the project has a known end.
func (p Project) HasEndDate() bool { return !p.EndDate.IsZero() }

// =============================================================================
// SETTINGS - Theme and accent color
// =============================================================================

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type Accent string

const (
	AccentPurple Accent = "purple"
	AccentBlue   Accent = "blue"
	AccentGreen  Accent = "green"
	AccentOrange Accent = "orange"
	AccentPink   Accent = "pink"
	AccentTeal   Accent = "teal"
	AccentAmber  Accent = "amber"
	AccentRed    Accent = "red"
	AccentIndigo Accent = "indigo"
)

var Accents = []Accent{
	AccentPurple, AccentBlue, AccentGreen, AccentOrange, AccentPink,
	AccentTeal, AccentAmber, AccentRed, AccentIndigo,
}

func (a Accent) Valid() bool {
	for _, known := range Accents {
		if a == known {
			return true
		}
	}
	return false
}

// Settings is the persisted application state.
type Settings struct {
	Theme  Theme
	Accent Accent
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeLight, Accent: AccentPurple}
}
