/*
Package firestore provides a Cloud Firestore-backed generic.Repository.

PURPOSE:
  The hosted store: several devices share one workspace and see each
  other's writes through the change feed. Records are plain documents;
  the workspace service handles cascades, so there are no cross-collection
  transactions.

LAYOUT:
  companies/{id}  name, logo_url, created_at
  clients/{id}    company_id, name, email, phone, created_at
  projects/{id}   company_id, client_id, name, description, hourly_rate
                  (decimal string), estimated_hours, start_date, end_date
                  (YYYY-MM-DD or ""), status, notes, created_at
  settings/app    theme, accent

ORDERING:
  Lists are sorted by created_at, which updates preserve. Sorting happens
  client side so no composite indexes are needed.

ERRORS:
  gRPC AlreadyExists -> generic.ErrDuplicateID
  gRPC NotFound      -> the entity's not-found error

CHANGE FEED:
  Subscribe starts one snapshot listener per collection. The first snapshot
  of each listener (the existing documents) is skipped.

EMULATOR:
  The client honours FIRESTORE_EMULATOR_HOST, so the same code runs against
  the local emulator with no credentials.

SEE ALSO:
  - generic/store.go: Interface definitions
  - store/sqlite/sqlite.go: Local implementation
*/
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nexwork/workbench/generic"
)

const (
	colCompanies = "companies"
	colClients   = "clients"
	colProjects  = "projects"
	colSettings  = "settings"
	settingsDoc  = "app"
)

// Config selects the Firebase project and credentials.
type Config struct {
	ProjectID       string
	CredentialsPath string
}

// Store implements generic.Repository and generic.ChangeFeed on Firestore.
type Store struct {
	client *firestore.Client
	now    func() time.Time
}

var (
	_ generic.Repository = (*Store)(nil)
	_ generic.ChangeFeed = (*Store)(nil)
)

// New initialises the Firebase app and opens its Firestore client.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}
	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *firestore.Client) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) Close() error {
	return s.client.Close()
}

// =============================================================================
// DOCUMENTS
// =============================================================================

type companyDoc struct {
	Name      string    `firestore:"name"`
	LogoURL   string    `firestore:"logo_url"`
	CreatedAt time.Time `firestore:"created_at"`
}

type clientDoc struct {
	CompanyID string    `firestore:"company_id"`
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Phone     string    `firestore:"phone"`
	CreatedAt time.Time `firestore:"created_at"`
}

type projectDoc struct {
	CompanyID      string    `firestore:"company_id"`
	ClientID       string    `firestore:"client_id"`
	Name           string    `firestore:"name"`
	Description    string    `firestore:"description"`
	HourlyRate     string    `firestore:"hourly_rate"`
	EstimatedHours string    `firestore:"estimated_hours"`
	StartDate      string    `firestore:"start_date"`
	EndDate        string    `firestore:"end_date"`
	Status         string    `firestore:"status"`
	Notes          string    `firestore:"notes"`
	CreatedAt      time.Time `firestore:"created_at"`
}

type settingsDocument struct {
	Theme  string `firestore:"theme"`
	Accent string `firestore:"accent"`
}

func toCompanyDoc(c generic.Company) companyDoc {
	return companyDoc{Name: c.Name, LogoURL: c.LogoURL}
}

func (d companyDoc) company(id string) generic.Company {
	return generic.Company{ID: id, Name: d.Name, LogoURL: d.LogoURL}
}

func toClientDoc(c generic.Client) clientDoc {
	return clientDoc{CompanyID: c.CompanyID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func (d clientDoc) client(id string) generic.Client {
	return generic.Client{ID: id, CompanyID: d.CompanyID, Name: d.Name, Email: d.Email, Phone: d.Phone}
}

func toProjectDoc(p generic.Project) projectDoc {
	return projectDoc{
		CompanyID:      p.CompanyID,
		ClientID:       p.ClientID,
		Name:           p.Name,
		Description:    p.Description,
		HourlyRate:     p.HourlyRate.String(),
		EstimatedHours: p.EstimatedHours,
		StartDate:      p.StartDate.String(),
		EndDate:        p.EndDate.String(),
		Status:         string(p.Status),
		Notes:          p.Notes,
	}
}

func (d projectDoc) project(id string) (generic.Project, error) {
	rate, err := decimal.NewFromString(d.HourlyRate)
	if err != nil {
		return generic.Project{}, fmt.Errorf("project %s: hourly_rate %q: %w", id, d.HourlyRate, err)
	}
	start, err := generic.ParseDate(d.StartDate)
	if err != nil {
		return generic.Project{}, fmt.Errorf("project %s: %w", id, err)
	}
	end, err := generic.ParseDate(d.EndDate)
	if err != nil {
		return generic.Project{}, fmt.Errorf("project %s: %w", id, err)
	}
	return generic.Project{
		ID:             id,
		Name:           d.Name,
		Description:    d.Description,
		CompanyID:      d.CompanyID,
		ClientID:       d.ClientID,
		HourlyRate:     rate,
		EstimatedHours: d.EstimatedHours,
		StartDate:      start,
		EndDate:        end,
		Status:         generic.Status(d.Status),
		Notes:          d.Notes,
	}, nil
}

// =============================================================================
// COMPANIES
// =============================================================================

func (s *Store) ListCompanies(ctx context.Context) ([]generic.Company, error) {
	snaps, err := s.all(ctx, s.client.Collection(colCompanies).Query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	companies := make([]generic.Company, 0, len(snaps))
	for _, snap := range snaps {
		var d companyDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		companies = append(companies, d.company(snap.Ref.ID))
	}
	return companies, nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (generic.Company, error) {
	var d companyDoc
	if err := s.get(ctx, colCompanies, id, &d); err != nil {
		return generic.Company{}, notFound(err, generic.ErrCompanyNotFound)
	}
	return d.company(id), nil
}

func (s *Store) CreateCompany(ctx context.Context, c generic.Company) error {
	d := toCompanyDoc(c)
	d.CreatedAt = s.now()
	return s.create(ctx, colCompanies, c.ID, d)
}

func (s *Store) UpdateCompany(ctx context.Context, c generic.Company) error {
	return s.replace(ctx, colCompanies, c.ID, generic.ErrCompanyNotFound, func(created time.Time) any {
		d := toCompanyDoc(c)
		d.CreatedAt = created
		return d
	})
}

func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	return s.delete(ctx, colCompanies, id, generic.ErrCompanyNotFound)
}

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Store) ListClients(ctx context.Context) ([]generic.Client, error) {
	return s.queryClients(ctx, s.client.Collection(colClients).Query)
}

func (s *Store) ListClientsByCompany(ctx context.Context, companyID string) ([]generic.Client, error) {
	return s.queryClients(ctx, s.client.Collection(colClients).Where("company_id", "==", companyID))
}

func (s *Store) queryClients(ctx context.Context, q firestore.Query) ([]generic.Client, error) {
	snaps, err := s.all(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make([]generic.Client, 0, len(snaps))
	for _, snap := range snaps {
		var d clientDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		clients = append(clients, d.client(snap.Ref.ID))
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (generic.Client, error) {
	var d clientDoc
	if err := s.get(ctx, colClients, id, &d); err != nil {
		return generic.Client{}, notFound(err, generic.ErrClientNotFound)
	}
	return d.client(id), nil
}

func (s *Store) CreateClient(ctx context.Context, c generic.Client) error {
	d := toClientDoc(c)
	d.CreatedAt = s.now()
	return s.create(ctx, colClients, c.ID, d)
}

func (s *Store) UpdateClient(ctx context.Context, c generic.Client) error {
	return s.replace(ctx, colClients, c.ID, generic.ErrClientNotFound, func(created time.Time) any {
		d := toClientDoc(c)
		d.CreatedAt = created
		return d
	})
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.delete(ctx, colClients, id, generic.ErrClientNotFound)
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) ListProjects(ctx context.Context) ([]generic.Project, error) {
	snaps, err := s.all(ctx, s.client.Collection(colProjects).Query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects := make([]generic.Project, 0, len(snaps))
	for _, snap := range snaps {
		var d projectDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		p, err := d.project(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (generic.Project, error) {
	var d projectDoc
	if err := s.get(ctx, colProjects, id, &d); err != nil {
		return generic.Project{}, notFound(err, generic.ErrProjectNotFound)
	}
	return d.project(id)
}

func (s *Store) CreateProject(ctx context.Context, p generic.Project) error {
	d := toProjectDoc(p)
	d.CreatedAt = s.now()
	return s.create(ctx, colProjects, p.ID, d)
}

func (s *Store) UpdateProject(ctx context.Context, p generic.Project) error {
	return s.replace(ctx, colProjects, p.ID, generic.ErrProjectNotFound, func(created time.Time) any {
		d := toProjectDoc(p)
		d.CreatedAt = created
		return d
	})
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.delete(ctx, colProjects, id, generic.ErrProjectNotFound)
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) LoadSettings(ctx context.Context) (generic.Settings, error) {
	var d settingsDocument
	err := s.get(ctx, colSettings, settingsDoc, &d)
	if status.Code(err) == codes.NotFound {
		return generic.DefaultSettings(), nil
	}
	if err != nil {
		return generic.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return generic.Settings{Theme: generic.Theme(d.Theme), Accent: generic.Accent(d.Accent)}, nil
}

func (s *Store) SaveSettings(ctx context.Context, st generic.Settings) error {
	d := settingsDocument{Theme: string(st.Theme), Accent: string(st.Accent)}
	if _, err := s.client.Collection(colSettings).Doc(settingsDoc).Set(ctx, d); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// =============================================================================
// CHANGE FEED
// =============================================================================

var collectionKinds = map[string]generic.ChangeKind{
	colCompanies: generic.KindCompany,
	colClients:   generic.KindClient,
	colProjects:  generic.KindProject,
}

// Subscribe implements generic.ChangeFeed. The channel closes when ctx is
// done or every listener has failed.
func (s *Store) Subscribe(ctx context.Context) (<-chan generic.Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(chan generic.Change, 64)

	var wg sync.WaitGroup
	for col, kind := range collectionKinds {
		wg.Add(1)
		go func(col string, kind generic.ChangeKind) {
			defer wg.Done()
			s.listen(ctx, col, kind, out)
		}(col, kind)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.listenSettings(ctx, out)
	}()

	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

func (s *Store) listen(ctx context.Context, col string, kind generic.ChangeKind, out chan<- generic.Change) {
	it := s.client.Collection(col).Snapshots(ctx)
	defer it.Stop()

	first := true
	for {
		snap, err := it.Next()
		if err != nil {
			return
		}
		if first {
			first = false
			continue
		}
		for _, ch := range snap.Changes {
			c := generic.Change{Kind: kind, Op: changeOp(ch.Kind), ID: ch.Doc.Ref.ID}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Store) listenSettings(ctx context.Context, out chan<- generic.Change) {
	it := s.client.Collection(colSettings).Doc(settingsDoc).Snapshots(ctx)
	defer it.Stop()

	first := true
	for {
		if _, err := it.Next(); err != nil {
			return
		}
		if first {
			first = false
			continue
		}
		select {
		case out <- generic.Change{Kind: generic.KindSettings, Op: generic.OpUpdated}:
		case <-ctx.Done():
			return
		}
	}
}

func changeOp(k firestore.DocumentChangeKind) generic.ChangeOp {
	switch k {
	case firestore.DocumentAdded:
		return generic.OpCreated
	case firestore.DocumentRemoved:
		return generic.OpDeleted
	default:
		return generic.OpUpdated
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// all runs q and returns the documents ordered by created_at.
func (s *Store) all(ctx context.Context, q firestore.Query) ([]*firestore.DocumentSnapshot, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		return createdAt(snaps[i]).Before(createdAt(snaps[j]))
	})
	return snaps, nil
}

func createdAt(snap *firestore.DocumentSnapshot) time.Time {
	v, err := snap.DataAt("created_at")
	if err != nil {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}

func (s *Store) get(ctx context.Context, col, id string, dst any) error {
	snap, err := s.client.Collection(col).Doc(id).Get(ctx)
	if err != nil {
		return err
	}
	return snap.DataTo(dst)
}

func (s *Store) create(ctx context.Context, col, id string, doc any) error {
	_, err := s.client.Collection(col).Doc(id).Create(ctx, doc)
	if status.Code(err) == codes.AlreadyExists {
		return generic.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", col, id, err)
	}
	return nil
}

// replace overwrites an existing document, keeping its created_at.
func (s *Store) replace(ctx context.Context, col, id string, missing error, build func(created time.Time) any) error {
	ref := s.client.Collection(col).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		return tx.Set(ref, build(createdAt(snap)))
	})
	if err != nil {
		if errors.Is(notFound(err, missing), missing) {
			return missing
		}
		return fmt.Errorf("update %s/%s: %w", col, id, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, col, id string, missing error) error {
	_, err := s.client.Collection(col).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if errors.Is(notFound(err, missing), missing) {
			return missing
		}
		return fmt.Errorf("delete %s/%s: %w", col, id, err)
	}
	return nil
}

// notFound maps gRPC NotFound to the entity's sentinel.
func notFound(err, missing error) error {
	if status.Code(err) == codes.NotFound {
		return missing
	}
	return err
}
