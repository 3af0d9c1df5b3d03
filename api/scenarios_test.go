/*
scenarios_test.go - Tests for demo workspaces

PURPOSE:
	Every embedded fixture must parse and load through the service without
	validation errors, and loading must replace whatever was there before.
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexwork/workbench/generic"
)

func TestLoadFixtures_AllParse(t *testing.T) {
	fixtures, err := loadFixtures()
	require.NoError(t, err)
	require.Len(t, fixtures, 3)

	ids := make([]string, len(fixtures))
	for i, f := range fixtures {
		ids[i] = f.ID
		assert.NotEmpty(t, f.Name, f.ID)
		assert.NotEmpty(t, f.Companies, f.ID)
	}
	assert.Equal(t, []string{"agency", "freelancer", "year"}, ids)
}

func TestScenario_EveryFixtureLoads(t *testing.T) {
	fixtures, err := loadFixtures()
	require.NoError(t, err)

	for _, f := range fixtures {
		t.Run(f.ID, func(t *testing.T) {
			// GIVEN: An empty workspace
			ts := setupTestServer(t)
			ctx := context.Background()

			// WHEN: Loading the scenario
			require.NoError(t, ts.handler.loadScenario(ctx, f.ID))

			// THEN: Counts match the fixture
			want := f.dto()
			companies, _ := ts.store.ListCompanies(ctx)
			clients, _ := ts.store.ListClients(ctx)
			projects, _ := ts.store.ListProjects(ctx)
			assert.Len(t, companies, want.Companies)
			assert.Len(t, clients, want.Clients)
			assert.Len(t, projects, want.Projects)
		})
	}
}

func TestScenario_Freelancer(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.handler.loadScenario(ctx, "freelancer"))

	projects, err := ts.store.ListProjects(ctx)
	require.NoError(t, err)

	statuses := map[generic.Status]int{}
	for _, p := range projects {
		statuses[p.Status]++
	}
	for _, s := range generic.Statuses {
		assert.Equal(t, 1, statuses[s], s)
	}

	// Dates are relative to the service clock (March 15)
	assert.Equal(t, "2024-02-24", projects[0].StartDate.String())
	assert.Equal(t, "2024-03-25", projects[0].EndDate.String())
	assert.NotEmpty(t, projects[0].ClientID)
}

func TestScenario_AgencyAppliesSettings(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.handler.loadScenario(context.Background(), "agency"))

	assert.Equal(t, []string{"dark", "theme-teal"}, ts.handler.Settings.Classes())

	// Reset restores a fresh install, settings included
	rec := ts.do(t, "POST", "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generic.DefaultSettings(), ts.handler.Settings.Current())
}

func TestScenario_LoadReplacesData(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWorkspace(t)

	rec := ts.do(t, "POST", "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "year"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	companies := decode[[]CompanyDTO](t, ts.do(t, "GET", "/api/companies", nil))
	require.Len(t, companies, 1)
	assert.Equal(t, "Nexo Consultoria", companies[0].Name)

	current := decode[ScenarioDTO](t, ts.do(t, "GET", "/api/scenarios/current", nil))
	assert.Equal(t, "year", current.ID)
	assert.Equal(t, 6, current.Projects)
}

func TestScenario_ConcurrentLoadsDoNotInterleave(t *testing.T) {
	// GIVEN: Many clients loading different scenarios at once
	ts := setupTestServer(t)
	ids := []string{"agency", "year", "freelancer"}

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			rec := ts.do(t, "POST", "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}(ids[i%len(ids)])
	}
	wg.Wait()

	// THEN: The workspace holds exactly one scenario, the current one
	current := decode[ScenarioDTO](t, ts.do(t, "GET", "/api/scenarios/current", nil))
	require.NotEmpty(t, current.ID)

	ctx := context.Background()
	companies, _ := ts.store.ListCompanies(ctx)
	clients, _ := ts.store.ListClients(ctx)
	projects, _ := ts.store.ListProjects(ctx)
	assert.Len(t, companies, current.Companies)
	assert.Len(t, clients, current.Clients)
	assert.Len(t, projects, current.Projects)
}

func TestScenario_Unknown(t *testing.T) {
	ts := setupTestServer(t)
	rec := ts.do(t, "POST", "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListScenarios(t *testing.T) {
	ts := setupTestServer(t)
	rec := ts.do(t, "GET", "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]ScenarioDTO](t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, "agency", list[0].ID)
	assert.Equal(t, 3, list[0].Companies)
	assert.Equal(t, 3, list[0].Clients)
	assert.Equal(t, 5, list[0].Projects)
}
