package workspace_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexwork/workbench/factory"
	"github.com/nexwork/workbench/generic"
	"github.com/nexwork/workbench/generic/store"
	"github.com/nexwork/workbench/workspace"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*workspace.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	n := 0
	svc := workspace.NewService(mem,
		workspace.WithClock(func() time.Time { return testNow }),
		workspace.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	return svc, mem
}

func projectInput(companyID, clientID, hours string, rate float64) factory.ProjectInput {
	return factory.ProjectInput{
		Name:           "Project",
		CompanyID:      companyID,
		ClientID:       clientID,
		HourlyRate:     rate,
		EstimatedHours: hours,
		StartDate:      "2024-03-01",
		Status:         "in_progress",
	}
}

// seed creates acme (with one client and two projects) and globex (with one project).
func seed(t *testing.T, svc *workspace.Service) (acme, globex generic.Company, client generic.Client) {
	t.Helper()
	ctx := context.Background()

	acme, err := svc.AddCompany(ctx, factory.CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	globex, err = svc.AddCompany(ctx, factory.CompanyInput{Name: "Globex"})
	require.NoError(t, err)

	client, err = svc.AddClient(ctx, factory.ClientInput{Name: "Ann", CompanyID: acme.ID})
	require.NoError(t, err)

	_, err = svc.AddProject(ctx, projectInput(acme.ID, client.ID, "10:00", 100))
	require.NoError(t, err)
	_, err = svc.AddProject(ctx, projectInput(acme.ID, "", "2:30", 80))
	require.NoError(t, err)
	_, err = svc.AddProject(ctx, projectInput(globex.ID, "", "5:00", 50))
	require.NoError(t, err)
	return acme, globex, client
}

// =============================================================================
// CASCADE TESTS
// =============================================================================

func TestDeleteCompany_CascadesToClientsAndProjects(t *testing.T) {
	// GIVEN: Two companies, acme owning a client and two projects
	svc, mem := newTestService(t)
	ctx := context.Background()
	acme, globex, _ := seed(t, svc)

	// WHEN: Deleting acme
	require.NoError(t, svc.DeleteCompany(ctx, acme.ID))

	// THEN: Only globex and its project remain
	companies, _ := mem.ListCompanies(ctx)
	require.Len(t, companies, 1)
	assert.Equal(t, globex.ID, companies[0].ID)

	clients, _ := mem.ListClients(ctx)
	assert.Empty(t, clients)

	projects, _ := mem.ListProjects(ctx)
	require.Len(t, projects, 1)
	assert.Equal(t, globex.ID, projects[0].CompanyID)
}

func TestDeleteCompany_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.DeleteCompany(context.Background(), "nope")
	assert.ErrorIs(t, err, generic.ErrCompanyNotFound)
}

func TestDeleteClient_DetachesProjects(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	_, _, client := seed(t, svc)

	require.NoError(t, svc.DeleteClient(ctx, client.ID))

	projects, _ := mem.ListProjects(ctx)
	require.Len(t, projects, 3)
	for _, p := range projects {
		assert.Empty(t, p.ClientID)
	}
	_, err := mem.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, generic.ErrClientNotFound)
}

// =============================================================================
// REFERENCE TESTS
// =============================================================================

func TestAddClient_UnknownCompany(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddClient(context.Background(), factory.ClientInput{Name: "Ann", CompanyID: "ghost"})
	assert.ErrorIs(t, err, generic.ErrCompanyNotFound)
}

func TestAddProject_ClientFromOtherCompany(t *testing.T) {
	svc, _ := newTestService(t)
	_, globex, client := seed(t, svc)

	_, err := svc.AddProject(context.Background(), projectInput(globex.ID, client.ID, "1:00", 10))

	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client_id", verr.Field)
}

func TestAddProject_InvalidInputNeverReachesStore(t *testing.T) {
	svc, mem := newTestService(t)
	acme, _, _ := seed(t, svc)

	_, err := svc.AddProject(context.Background(), projectInput(acme.ID, "", "1:00", 0))
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	projects, _ := mem.ListProjects(context.Background())
	assert.Len(t, projects, 3)
}

func TestUpdateClient_KeepsCompanyWhenOmitted(t *testing.T) {
	svc, _ := newTestService(t)
	acme, _, client := seed(t, svc)

	updated, err := svc.UpdateClient(context.Background(), client.ID, factory.ClientInput{Name: "Ann B."})
	require.NoError(t, err)
	assert.Equal(t, "Ann B.", updated.Name)
	assert.Equal(t, acme.ID, updated.CompanyID)
}

func TestUpdateCompany(t *testing.T) {
	svc, _ := newTestService(t)
	acme, _, _ := seed(t, svc)

	c, err := svc.UpdateCompany(context.Background(), acme.ID, factory.CompanyInput{Name: "Acme Ltd"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", c.Name)

	_, err = svc.UpdateCompany(context.Background(), "ghost", factory.CompanyInput{Name: "x"})
	assert.ErrorIs(t, err, generic.ErrCompanyNotFound)
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestChangeStatus_CompletedStampsEndDate(t *testing.T) {
	// GIVEN: An open-ended in-progress project
	svc, _ := newTestService(t)
	ctx := context.Background()
	acme, _, _ := seed(t, svc)
	p, err := svc.AddProject(ctx, projectInput(acme.ID, "", "1:00", 10))
	require.NoError(t, err)
	require.True(t, p.EndDate.IsZero())

	// WHEN: Completing it
	done, err := svc.ChangeStatus(ctx, p.ID, "completed")
	require.NoError(t, err)

	// THEN: End date is today
	assert.Equal(t, generic.StatusCompleted, done.Status)
	assert.Equal(t, "2024-03-15", done.EndDate.String())
}

func TestChangeStatus_AlreadyCompletedKeepsEndDate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acme, _, _ := seed(t, svc)

	in := projectInput(acme.ID, "", "1:00", 10)
	in.Status = "completed"
	in.EndDate = "2024-03-10"
	p, err := svc.AddProject(ctx, in)
	require.NoError(t, err)

	again, err := svc.ChangeStatus(ctx, p.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", again.EndDate.String())
}

func TestUpdateProject_CompletedStampsEndDate(t *testing.T) {
	// GIVEN: An open-ended in-progress project
	svc, _ := newTestService(t)
	ctx := context.Background()
	acme, _, _ := seed(t, svc)
	in := projectInput(acme.ID, "", "1:00", 10)
	in.Status = "in_progress"
	p, err := svc.AddProject(ctx, in)
	require.NoError(t, err)

	// WHEN: Editing it into completed
	in = factory.ProjectInputFrom(p)
	in.Status = "completed"
	done, err := svc.UpdateProject(ctx, p.ID, in)
	require.NoError(t, err)

	// THEN: End date is today, in the store too
	assert.Equal(t, "2024-03-15", done.EndDate.String())
	stored, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", stored.EndDate.String())

	// AND: Editing an already completed project keeps its end date
	in = factory.ProjectInputFrom(stored)
	in.EndDate = "2024-03-20"
	again, err := svc.UpdateProject(ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20", again.EndDate.String())
}

func TestChangeStatus_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acme, _, _ := seed(t, svc)
	p, err := svc.AddProject(ctx, projectInput(acme.ID, "", "1:00", 10))
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, p.ID, "done")
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = svc.ChangeStatus(ctx, "ghost", "on_hold")
	assert.ErrorIs(t, err, generic.ErrProjectNotFound)
}

// =============================================================================
// LISTING AND DASHBOARD TESTS
// =============================================================================

func TestListProjects_Filters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acme, _, _ := seed(t, svc)

	old := projectInput(acme.ID, "", "1:00", 10)
	old.StartDate = "2023-01-01"
	old.EndDate = "2023-02-01"
	old.Status = "on_hold"
	_, err := svc.AddProject(ctx, old)
	require.NoError(t, err)

	all, err := svc.ListProjects(ctx, workspace.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	march, err := svc.ListProjects(ctx, workspace.ProjectFilter{Month: testNow})
	require.NoError(t, err)
	assert.Len(t, march, 3)

	onHold, err := svc.ListProjects(ctx, workspace.ProjectFilter{Status: generic.StatusOnHold})
	require.NoError(t, err)
	assert.Len(t, onHold, 1)

	none, err := svc.ListProjects(ctx, workspace.ProjectFilter{Status: generic.StatusOnHold, Month: testNow})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDashboard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seed(t, svc)

	s, err := svc.Dashboard(ctx, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", s.Month.Start.String())
	assert.Equal(t, 3, s.MonthProjectCount)
	// 1000 + 200 + 250
	assert.Equal(t, "1450.00", s.MonthlyRevenue.StringFixed(2))
	assert.Equal(t, 2, s.Companies)
	assert.Equal(t, 1, s.Clients)
	require.Len(t, s.RevenueByCompany, 2)
	assert.Equal(t, "1200.00", s.RevenueByCompany[0].Value.StringFixed(2))
}
