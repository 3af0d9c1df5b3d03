package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nexwork/workbench/generic"
)

func TestMemory_CompanyLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateCompany(ctx, generic.Company{ID: "a", Name: "Acme"}))
	require.NoError(t, m.CreateCompany(ctx, generic.Company{ID: "b", Name: "Beta"}))
	assert.ErrorIs(t, m.CreateCompany(ctx, generic.Company{ID: "a"}), generic.ErrDuplicateID)

	require.NoError(t, m.UpdateCompany(ctx, generic.Company{ID: "a", Name: "Acme Ltda"}))
	got, err := m.GetCompany(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltda", got.Name)

	require.NoError(t, m.DeleteCompany(ctx, "a"))
	_, err = m.GetCompany(ctx, "a")
	assert.ErrorIs(t, err, generic.ErrCompanyNotFound)
	assert.ErrorIs(t, m.DeleteCompany(ctx, "a"), generic.ErrCompanyNotFound)
	assert.ErrorIs(t, m.UpdateCompany(ctx, generic.Company{ID: "a"}), generic.ErrCompanyNotFound)

	list, err := m.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestMemory_ListsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateProject(ctx, generic.Project{ID: "p1", Name: "Site"}))

	list, _ := m.ListProjects(ctx)
	list[0].Name = "changed"

	got, err := m.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Site", got.Name)
}

func TestMemory_ClientsByCompany(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateClient(ctx, generic.Client{ID: "c1", CompanyID: "a"}))
	require.NoError(t, m.CreateClient(ctx, generic.Client{ID: "c2", CompanyID: "b"}))
	require.NoError(t, m.CreateClient(ctx, generic.Client{ID: "c3", CompanyID: "a"}))

	list, err := m.ListClientsByCompany(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c3", list[1].ID)

	empty, err := m.ListClientsByCompany(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemory_SettingsAndReset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	s, err := m.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, generic.DefaultSettings(), s)

	s.Theme = generic.ThemeDark
	require.NoError(t, m.SaveSettings(ctx, s))
	got, _ := m.LoadSettings(ctx)
	assert.Equal(t, generic.ThemeDark, got.Theme)

	require.NoError(t, m.CreateCompany(ctx, generic.Company{ID: "a"}))
	require.NoError(t, m.Reset(ctx))

	companies, _ := m.ListCompanies(ctx)
	assert.Empty(t, companies)
	got, _ = m.LoadSettings(ctx)
	assert.Equal(t, generic.DefaultSettings(), got)
}

func TestMemory_SubscribePublishesWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := m.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, m.CreateClient(context.Background(), generic.Client{ID: "c1"}))
	require.NoError(t, m.DeleteClient(context.Background(), "c1"))
	// Failed writes publish nothing
	assert.Error(t, m.DeleteClient(context.Background(), "c1"))
	require.NoError(t, m.SaveSettings(context.Background(), generic.DefaultSettings()))

	assert.Equal(t, generic.Change{Kind: generic.KindClient, Op: generic.OpCreated, ID: "c1"}, <-changes)
	assert.Equal(t, generic.Change{Kind: generic.KindClient, Op: generic.OpDeleted, ID: "c1"}, <-changes)
	assert.Equal(t, generic.Change{Kind: generic.KindSettings, Op: generic.OpUpdated}, <-changes)

	cancel()
	for range changes {
	}
}
