// Package store provides Repository implementations.
package store

import (
	"context"
	"sync"

	"github.com/nexwork/workbench/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps records in insertion order. Every read returns copies.
type Memory struct {
	mu        sync.RWMutex
	companies []generic.Company
	clients   []generic.Client
	projects  []generic.Project
	settings  *generic.Settings

	feed *generic.Broadcaster
}

var (
	_ generic.Repository = (*Memory)(nil)
	_ generic.ChangeFeed = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{feed: generic.NewBroadcaster()}
}

// Subscribe implements generic.ChangeFeed.
func (m *Memory) Subscribe(ctx context.Context) (<-chan generic.Change, error) {
	return m.feed.Subscribe(ctx)
}

// Reset drops every record, settings included.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	m.companies, m.clients, m.projects, m.settings = nil, nil, nil, nil
	m.mu.Unlock()
	return nil
}

// =============================================================================
// COMPANIES
// =============================================================================

func (m *Memory) ListCompanies(_ context.Context) ([]generic.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]generic.Company{}, m.companies...), nil
}

func (m *Memory) GetCompany(_ context.Context, id string) (generic.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexOf(m.companies, id, companyID); i >= 0 {
		return m.companies[i], nil
	}
	return generic.Company{}, generic.ErrCompanyNotFound
}

func (m *Memory) CreateCompany(_ context.Context, c generic.Company) error {
	m.mu.Lock()
	if indexOf(m.companies, c.ID, companyID) >= 0 {
		m.mu.Unlock()
		return generic.ErrDuplicateID
	}
	m.companies = append(m.companies, c)
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindCompany, Op: generic.OpCreated, ID: c.ID})
	return nil
}

func (m *Memory) UpdateCompany(_ context.Context, c generic.Company) error {
	m.mu.Lock()
	i := indexOf(m.companies, c.ID, companyID)
	if i < 0 {
		m.mu.Unlock()
		return generic.ErrCompanyNotFound
	}
	m.companies[i] = c
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindCompany, Op: generic.OpUpdated, ID: c.ID})
	return nil
}

func (m *Memory) DeleteCompany(_ context.Context, id string) error {
	m.mu.Lock()
	i := indexOf(m.companies, id, companyID)
	if i < 0 {
		m.mu.Unlock()
		return generic.ErrCompanyNotFound
	}
	m.companies = append(m.companies[:i], m.companies[i+1:]...)
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindCompany, Op: generic.OpDeleted, ID: id})
	return nil
}

// =============================================================================
// CLIENTS
// =============================================================================

func (m *Memory) ListClients(_ context.Context) ([]generic.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]generic.Client{}, m.clients...), nil
}

func (m *Memory) ListClientsByCompany(_ context.Context, companyID string) ([]generic.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []generic.Client{}
	for _, c := range m.clients {
		if c.CompanyID == companyID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *Memory) GetClient(_ context.Context, id string) (generic.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexOf(m.clients, id, clientID); i >= 0 {
		return m.clients[i], nil
	}
	return generic.Client{}, generic.ErrClientNotFound
}

func (m *Memory) CreateClient(_ context.Context, c generic.Client) error {
	m.mu.Lock()
	if indexOf(m.clients, c.ID, clientID) >= 0 {
		m.mu.Unlock()
		return generic.ErrDuplicateID
	}
	m.clients = append(m.clients, c)
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindClient, Op: generic.OpCreated, ID: c.ID})
	return nil
}

func (m *Memory) UpdateClient(_ context.Context, c generic.Client) error {
	m.mu.Lock()
	i := indexOf(m.clients, c.ID, clientID)
	if i < 0 {
		m.mu.Unlock()
		return generic.ErrClientNotFound
	}
	m.clients[i] = c
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindClient, Op: generic.OpUpdated, ID: c.ID})
	return nil
}

func (m *Memory) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	i := indexOf(m.clients, id, clientID)
	if i < 0 {
		m.mu.Unlock()
		return generic.ErrClientNotFound
	}
	m.clients = append(m.clients[:i], m.clients[i+1:]...)
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindClient, Op: generic.OpDeleted, ID: id})
	return nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (m *Memory) ListProjects(_ context.Context) ([]generic.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]generic.Project{}, m.projects...), nil
}

func (m *Memory) GetProject(_ context.Context, id string) (generic.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexOf(m.projects, id, projectID); i >= 0 {
		return m.projects[i], nil
	}
	return generic.Project{}, generic.ErrProjectNotFound
}

func (m *Memory) CreateProject(_ context.Context, p generic.Project) error {
	m.mu.Lock()
	if indexOf(m.projects, p.ID, projectID) >= 0 {
		m.mu.Unlock()
		return generic.ErrDuplicateID
	}
	m.projects = append(m.projects, p)
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindProject, Op: generic.OpCreated, ID: p.ID})
	return nil
}

func (m *Memory) UpdateProject(_ context.Context, p generic.Project) error {
	m.mu.Lock()
	i := indexOf(m.projects, p.ID, projectID)
	if i < 0 {
		m.mu.Unlock()
		return generic.ErrProjectNotFound
	}
	m.projects[i] = p
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindProject, Op: generic.OpUpdated, ID: p.ID})
	return nil
}

func (m *Memory) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	i := indexOf(m.projects, id, projectID)
	if i < 0 {
		m.mu.Unlock()
		return generic.ErrProjectNotFound
	}
	m.projects = append(m.projects[:i], m.projects[i+1:]...)
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindProject, Op: generic.OpDeleted, ID: id})
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) LoadSettings(_ context.Context) (generic.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return generic.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s generic.Settings) error {
	m.mu.Lock()
	m.settings = &s
	m.mu.Unlock()

	m.feed.Publish(generic.Change{Kind: generic.KindSettings, Op: generic.OpUpdated})
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func companyID(c generic.Company) string { return c.ID }
func clientID(c generic.Client) string   { return c.ID }
func projectID(p generic.Project) string { return p.ID }

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}
