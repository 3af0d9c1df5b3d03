/*
store.go - Persistence interface for companies, clients, projects and settings

PURPOSE:
  Defines the interface between the application service and the database.
  The workbench ships two persistence strategies that the original product
  had: durable local storage and a hosted document database. Both (plus an
  in-memory store for tests) implement Repository, so callers never depend
  on the transport.

KEY INTERFACES:
  CompanyStore:  list/get/create/update/delete companies
  ClientStore:   same for clients, plus listing by company
  ProjectStore:  same for projects
  SettingsStore: load/save the single Settings record
  Repository:    all of the above
  ChangeFeed:    push notifications after writes

WRITE CONTRACT:
  - Create fails with ErrDuplicateID when the ID exists
  - Update and Delete fail with the matching not-found error when it doesn't
  - Cascades (company -> clients/projects) are NOT the store's job; the
    workspace service sequences them

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for testing/dev
  - store/sqlite/sqlite.go: Local SQLite file
  - store/firestore/firestore.go: Cloud Firestore

SEE ALSO:
  - feed.go: Broadcaster used by the memory and sqlite stores
  - workspace/service.go: Higher-level operations using Repository
*/
package generic

import "context"

// =============================================================================
// REPOSITORY - One capability per entity type
// =============================================================================

type CompanyStore interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id string) (Company, error)
	CreateCompany(ctx context.Context, c Company) error
	UpdateCompany(ctx context.Context, c Company) error
	DeleteCompany(ctx context.Context, id string) error
}

type ClientStore interface {
	ListClients(ctx context.Context) ([]Client, error)
	ListClientsByCompany(ctx context.Context, companyID string) ([]Client, error)
	GetClient(ctx context.Context, id string) (Client, error)
	CreateClient(ctx context.Context, c Client) error
	UpdateClient(ctx context.Context, c Client) error
	DeleteClient(ctx context.Context, id string) error
}

type ProjectStore interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	CreateProject(ctx context.Context, p Project) error
	UpdateProject(ctx context.Context, p Project) error
	DeleteProject(ctx context.Context, id string) error
}

// SettingsStore holds a single record. LoadSettings returns
// DefaultSettings() when nothing has been saved yet.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

type Repository interface {
	CompanyStore
	ClientStore
	ProjectStore
	SettingsStore
}

// =============================================================================
// CHANGE FEED - Push updates after writes
// =============================================================================

type ChangeKind string

const (
	KindCompany  ChangeKind = "company"
	KindClient   ChangeKind = "client"
	KindProject  ChangeKind = "project"
	KindSettings ChangeKind = "settings"
)

type ChangeOp string

const (
	OpCreated ChangeOp = "created"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
)

// Change describes one committed write. Remote stores deliver changes with
// eventual consistency, so consumers should re-read rather than trust order.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Op   ChangeOp   `json:"op"`
	ID   string     `json:"id"`
}

// ChangeFeed is implemented by stores that can notify about writes.
// The returned channel is closed once ctx is done.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (<-chan Change, error)
}
