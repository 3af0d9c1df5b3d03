/*
Package workspace sequences user operations over a generic.Repository.

PURPOSE:
  The stores only know single-record writes. Everything the user does in
  the UI that touches more than one record, or needs a lookup first, lives
  here: cascading deletes, reference checks, status transitions and the
  dashboard read.

CASCADES:
  DeleteCompany: removes the company's clients and projects, then itself
  DeleteClient:  clears ClientID on projects that pointed at the client

STATUS TRANSITIONS:
  Moving a project into completed from any other status stamps EndDate
  with today's date. Other transitions only change the status.

CONSISTENCY:
  Remote stores do not offer cross-collection transactions here, so a
  cascade that fails midway leaves the already-applied steps in place.
  Every step is idempotent from the user's point of view: retrying the
  delete finishes the job.

SEE ALSO:
  - generic/store.go: Repository contract
  - factory/: input validation
  - billing/: dashboard math
*/
package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexwork/workbench/billing"
	"github.com/nexwork/workbench/factory"
	"github.com/nexwork/workbench/generic"
)

// Service is safe for concurrent use if the Repository is.
type Service struct {
	repo    generic.Repository
	factory *factory.Factory
	now     func() time.Time
	newID   func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, for both defaults and progress.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.factory.Now = now
	}
}

// WithIDs replaces the UUID generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(repo generic.Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		factory: factory.New(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Repository exposes the underlying store for read-only callers.
func (s *Service) Repository() generic.Repository { return s.repo }

// =============================================================================
// COMPANIES
// =============================================================================

func (s *Service) ListCompanies(ctx context.Context) ([]generic.Company, error) {
	return s.repo.ListCompanies(ctx)
}

func (s *Service) GetCompany(ctx context.Context, id string) (generic.Company, error) {
	return s.repo.GetCompany(ctx, id)
}

func (s *Service) AddCompany(ctx context.Context, in factory.CompanyInput) (generic.Company, error) {
	c, err := s.factory.Company(s.newID(), in)
	if err != nil {
		return generic.Company{}, err
	}
	if err := s.repo.CreateCompany(ctx, c); err != nil {
		return generic.Company{}, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}

func (s *Service) UpdateCompany(ctx context.Context, id string, in factory.CompanyInput) (generic.Company, error) {
	if _, err := s.repo.GetCompany(ctx, id); err != nil {
		return generic.Company{}, err
	}
	c, err := s.factory.Company(id, in)
	if err != nil {
		return generic.Company{}, err
	}
	if err := s.repo.UpdateCompany(ctx, c); err != nil {
		return generic.Company{}, fmt.Errorf("update company: %w", err)
	}
	return c, nil
}

// DeleteCompany removes the company together with its clients and projects.
func (s *Service) DeleteCompany(ctx context.Context, id string) error {
	if _, err := s.repo.GetCompany(ctx, id); err != nil {
		return err
	}

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if p.CompanyID != id {
			continue
		}
		if err := s.repo.DeleteProject(ctx, p.ID); err != nil && !errors.Is(err, generic.ErrProjectNotFound) {
			return fmt.Errorf("delete project %s: %w", p.ID, err)
		}
	}

	clients, err := s.repo.ListClientsByCompany(ctx, id)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}
	for _, c := range clients {
		if err := s.repo.DeleteClient(ctx, c.ID); err != nil && !errors.Is(err, generic.ErrClientNotFound) {
			return fmt.Errorf("delete client %s: %w", c.ID, err)
		}
	}

	return s.repo.DeleteCompany(ctx, id)
}

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Service) ListClients(ctx context.Context, companyID string) ([]generic.Client, error) {
	if companyID == "" {
		return s.repo.ListClients(ctx)
	}
	if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListClientsByCompany(ctx, companyID)
}

func (s *Service) AddClient(ctx context.Context, in factory.ClientInput) (generic.Client, error) {
	c, err := s.factory.Client(s.newID(), in)
	if err != nil {
		return generic.Client{}, err
	}
	if _, err := s.repo.GetCompany(ctx, c.CompanyID); err != nil {
		return generic.Client{}, err
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return generic.Client{}, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func (s *Service) UpdateClient(ctx context.Context, id string, in factory.ClientInput) (generic.Client, error) {
	existing, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return generic.Client{}, err
	}
	if in.CompanyID == "" {
		in.CompanyID = existing.CompanyID
	}
	c, err := s.factory.Client(id, in)
	if err != nil {
		return generic.Client{}, err
	}
	if c.CompanyID != existing.CompanyID {
		if _, err := s.repo.GetCompany(ctx, c.CompanyID); err != nil {
			return generic.Client{}, err
		}
	}
	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return generic.Client{}, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

// DeleteClient removes the client and detaches it from its projects.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	if _, err := s.repo.GetClient(ctx, id); err != nil {
		return err
	}

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if p.ClientID != id {
			continue
		}
		p.ClientID = ""
		if err := s.repo.UpdateProject(ctx, p); err != nil {
			return fmt.Errorf("detach project %s: %w", p.ID, err)
		}
	}

	return s.repo.DeleteClient(ctx, id)
}

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectFilter narrows ListProjects. Zero values match everything.
type ProjectFilter struct {
	Status generic.Status
	Month  time.Time
}

func (s *Service) ListProjects(ctx context.Context, f ProjectFilter) ([]generic.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if !f.Month.IsZero() {
		projects = billing.CurrentMonthProjects(projects, f.Month)
	}
	if f.Status != "" {
		filtered := []generic.Project{}
		for _, p := range projects {
			if p.Status == f.Status {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}
	return projects, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (generic.Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) AddProject(ctx context.Context, in factory.ProjectInput) (generic.Project, error) {
	p, err := s.factory.Project(s.newID(), in)
	if err != nil {
		return generic.Project{}, err
	}
	if err := s.checkReferences(ctx, p); err != nil {
		return generic.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return generic.Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// UpdateProject replaces a project. Like ChangeStatus, entering completed
// stamps today's date as EndDate.
func (s *Service) UpdateProject(ctx context.Context, id string, in factory.ProjectInput) (generic.Project, error) {
	existing, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return generic.Project{}, err
	}
	p, err := s.factory.Project(id, in)
	if err != nil {
		return generic.Project{}, err
	}
	if p.Status == generic.StatusCompleted && existing.Status != generic.StatusCompleted {
		p.EndDate = generic.DateOf(s.now())
	}
	if p.CompanyID != existing.CompanyID || p.ClientID != existing.ClientID {
		if err := s.checkReferences(ctx, p); err != nil {
			return generic.Project{}, err
		}
	}
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return generic.Project{}, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return s.repo.DeleteProject(ctx, id)
}

// ChangeStatus sets a new status. Entering completed stamps today's date
// as EndDate.
func (s *Service) ChangeStatus(ctx context.Context, id string, raw string) (generic.Project, error) {
	status, err := factory.ParseStatus(raw)
	if err != nil {
		return generic.Project{}, err
	}
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return generic.Project{}, err
	}

	if status == generic.StatusCompleted && p.Status != generic.StatusCompleted {
		p.EndDate = generic.DateOf(s.now())
	}
	p.Status = status

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return generic.Project{}, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// checkReferences requires the company to exist and the client, if set,
// to belong to it.
func (s *Service) checkReferences(ctx context.Context, p generic.Project) error {
	if _, err := s.repo.GetCompany(ctx, p.CompanyID); err != nil {
		return err
	}
	if p.ClientID == "" {
		return nil
	}
	client, err := s.repo.GetClient(ctx, p.ClientID)
	if err != nil {
		return err
	}
	if client.CompanyID != p.CompanyID {
		return generic.Invalid("client_id", "client %s belongs to another company", p.ClientID)
	}
	return nil
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard summarises the month of ref (the current month when ref is zero).
func (s *Service) Dashboard(ctx context.Context, ref time.Time) (billing.Summary, error) {
	if ref.IsZero() {
		ref = s.now()
	}
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return billing.Summary{}, fmt.Errorf("list companies: %w", err)
	}
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return billing.Summary{}, fmt.Errorf("list clients: %w", err)
	}
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return billing.Summary{}, fmt.Errorf("list projects: %w", err)
	}
	return billing.Summarize(companies, clients, projects, ref), nil
}
