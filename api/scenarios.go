/*
scenarios.go - Demo workspaces for testing and demonstrations

PURPOSE:

	Populates the store with realistic companies, clients and projects so
	the dashboard, filters and progress bars have something to show. Each
	scenario is a YAML file embedded in the binary.

AVAILABLE SCENARIOS:

	freelancer: One company, a handful of projects in every status
	agency:     Three companies with clients, revenue spread across them
	year:       Projects spread over the past year, for month browsing

FIXTURE FORMAT:

	Dates are offsets in days from today so a scenario always lands around
	the current month. Clients and projects refer to their company by key.

	id: freelancer
	name: Solo Freelancer
	companies:
	  - key: acme
	    name: Acme
	    clients:
	      - key: ann
	        name: Ann
	    projects:
	      - name: Website
	        client: ann
	        hourly_rate: 120
	        estimated_hours: "40:00"
	        start: -20
	        end: 10
	        status: in_progress

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create companies, then clients, then projects through the service
 3. Apply scenario settings, if any

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "agency"}

NOTE:

	Loading resets the store. Stores without Reset (Firestore) refuse.

SEE ALSO:
  - handlers.go: Handler
  - workspace/service.go: Add* operations used by the loader
*/
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nexwork/workbench/factory"
	"github.com/nexwork/workbench/generic"
	"github.com/nexwork/workbench/settings"
)

//go:embed scenarios/*.yaml
var scenarioFiles embed.FS

// ErrUnknownScenario is returned for IDs with no fixture.
var ErrUnknownScenario = errors.New("unknown scenario")

// Resetter is implemented by stores that can drop all data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// FIXTURES
// =============================================================================

type scenarioFixture struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Settings    *settings.Update `yaml:"settings"`
	Companies   []companyFixture `yaml:"companies"`
}

type companyFixture struct {
	Key                  string `yaml:"key"`
	factory.CompanyInput `yaml:",inline"`
	Clients              []clientFixture  `yaml:"clients"`
	Projects             []projectFixture `yaml:"projects"`
}

type clientFixture struct {
	Key                 string `yaml:"key"`
	factory.ClientInput `yaml:",inline"`
}

type projectFixture struct {
	Name           string  `yaml:"name"`
	Description    string  `yaml:"description"`
	Client         string  `yaml:"client"`
	HourlyRate     float64 `yaml:"hourly_rate"`
	EstimatedHours string  `yaml:"estimated_hours"`
	Start          int     `yaml:"start"`
	End            *int    `yaml:"end"`
	Status         string  `yaml:"status"`
	Notes          string  `yaml:"notes"`
}

func (f scenarioFixture) dto() ScenarioDTO {
	dto := ScenarioDTO{ID: f.ID, Name: f.Name, Description: f.Description, Companies: len(f.Companies)}
	for _, c := range f.Companies {
		dto.Clients += len(c.Clients)
		dto.Projects += len(c.Projects)
	}
	return dto
}

// loadFixtures parses every embedded scenario, sorted by ID.
func loadFixtures() ([]scenarioFixture, error) {
	entries, err := scenarioFiles.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}
	var fixtures []scenarioFixture
	for _, e := range entries {
		data, err := scenarioFiles.ReadFile(path.Join("scenarios", e.Name()))
		if err != nil {
			return nil, err
		}
		var f scenarioFixture
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", e.Name(), err)
		}
		fixtures = append(fixtures, f)
	}
	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].ID < fixtures[j].ID })
	return fixtures, nil
}

func findFixture(id string) (scenarioFixture, error) {
	fixtures, err := loadFixtures()
	if err != nil {
		return scenarioFixture{}, err
	}
	for _, f := range fixtures {
		if f.ID == id {
			return f, nil
		}
	}
	return scenarioFixture{}, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	fixtures, err := loadFixtures()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read scenarios", err)
		return
	}
	dtos := make([]ScenarioDTO, len(fixtures))
	for i, f := range fixtures {
		dtos[i] = f.dto()
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	f, err := findFixture(current)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, f.dto())
}

// LoadScenario resets the store and loads a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.loadScenario(r.Context(), req.ScenarioID)
	switch {
	case errors.Is(err, ErrUnknownScenario):
		writeError(w, http.StatusBadRequest, "Unknown scenario", err)
		return
	case errors.Is(err, errNotResettable):
		writeError(w, http.StatusNotImplemented, "Store cannot be reset", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears every record.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.resetWorkspace(r.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errNotResettable) {
			status = http.StatusNotImplemented
		}
		writeError(w, status, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// LOADER
// =============================================================================

var errNotResettable = errors.New("store does not support reset")

func (h *Handler) resetWorkspace(ctx context.Context) error {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	return h.reset(ctx)
}

// reset requires loadMu to be held.
func (h *Handler) reset(ctx context.Context) error {
	resetter, ok := h.Service.Repository().(Resetter)
	if !ok {
		return errNotResettable
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}
	if err := h.Settings.Reload(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	f, err := findFixture(id)
	if err != nil {
		return err
	}

	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	if err := h.reset(ctx); err != nil {
		return err
	}

	today := generic.DateOf(h.Service.Now())
	for _, cf := range f.Companies {
		company, err := h.Service.AddCompany(ctx, cf.CompanyInput)
		if err != nil {
			return fmt.Errorf("company %s: %w", cf.Key, err)
		}

		clientIDs := make(map[string]string, len(cf.Clients))
		for _, clf := range cf.Clients {
			in := clf.ClientInput
			in.CompanyID = company.ID
			client, err := h.Service.AddClient(ctx, in)
			if err != nil {
				return fmt.Errorf("client %s: %w", clf.Key, err)
			}
			clientIDs[clf.Key] = client.ID
		}

		for _, pf := range cf.Projects {
			in := factory.ProjectInput{
				Name:           pf.Name,
				Description:    pf.Description,
				CompanyID:      company.ID,
				HourlyRate:     pf.HourlyRate,
				EstimatedHours: pf.EstimatedHours,
				StartDate:      today.AddDays(pf.Start).String(),
				Status:         pf.Status,
				Notes:          pf.Notes,
			}
			if pf.Client != "" {
				clientID, ok := clientIDs[pf.Client]
				if !ok {
					return fmt.Errorf("project %s: unknown client %q", pf.Name, pf.Client)
				}
				in.ClientID = clientID
			}
			if pf.End != nil {
				in.EndDate = today.AddDays(*pf.End).String()
			}
			if _, err := h.Service.AddProject(ctx, in); err != nil {
				return fmt.Errorf("project %s: %w", pf.Name, err)
			}
		}
	}

	if f.Settings != nil {
		if _, err := h.Settings.Apply(ctx, *f.Settings); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.currentScenario = f.ID
	h.mu.Unlock()
	return nil
}
