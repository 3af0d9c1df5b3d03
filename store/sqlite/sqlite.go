/*
Package sqlite provides a SQLite-backed generic.Repository.

PURPOSE:
  The durable local store: a single file next to the binary, used when the
  workbench runs offline or without cloud credentials. Behaviour matches
  the in-memory store record for record, so the API and service tests can
  run against either.

KEY TABLES:
  companies: id, name, logo_url
  clients:   id, company_id, name, email, phone
  projects:  id, company_id, client_id, rate (TEXT decimal),
             estimated_hours ("H:MM"), start_date/end_date (YYYY-MM-DD)
  settings:  single row (id = 1) with theme and accent

ORDERING:
  Lists return rows in insertion order (rowid). Updates keep the rowid, so
  editing a record does not move it.

WRITE CONTRACT:
  INSERT maps primary-key violations to generic.ErrDuplicateID. UPDATE and
  DELETE check RowsAffected and report the entity's not-found error.
  Cascades are the workspace service's job; there are no foreign keys.

CONCURRENCY:
  sync.RWMutex around every statement, and a single open connection so
  ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/workbench.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nexwork/workbench/generic"
)

// Store implements generic.Repository and generic.ChangeFeed using SQLite.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	feed *generic.Broadcaster
}

var (
	_ generic.Repository = (*Store)(nil)
	_ generic.ChangeFeed = (*Store)(nil)
)

// New opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, feed: generic.NewBroadcaster()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Subscribe implements generic.ChangeFeed.
func (s *Store) Subscribe(ctx context.Context) (<-chan generic.Change, error) {
	return s.feed.Subscribe(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		logo_url TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_clients_company ON clients(company_id);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		client_id TEXT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		hourly_rate TEXT NOT NULL,
		estimated_hours TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_projects_company ON projects(company_id);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		theme TEXT NOT NULL,
		accent TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data (for demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"projects", "clients", "companies", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// COMPANIES
// =============================================================================

const companyColumns = "id, name, logo_url"

func (s *Store) ListCompanies(ctx context.Context) ([]generic.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []generic.Company{}
	for rows.Next() {
		var c generic.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.LogoURL); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *Store) GetCompany(ctx context.Context, id string) (generic.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c generic.Company
	err := s.db.QueryRowContext(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.LogoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Company{}, generic.ErrCompanyNotFound
	}
	return c, err
}

func (s *Store) CreateCompany(ctx context.Context, c generic.Company) error {
	err := s.insert(ctx, "INSERT INTO companies ("+companyColumns+") VALUES (?, ?, ?)",
		c.ID, c.Name, c.LogoURL)
	if err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindCompany, Op: generic.OpCreated, ID: c.ID})
	return nil
}

func (s *Store) UpdateCompany(ctx context.Context, c generic.Company) error {
	err := s.mutate(ctx, generic.ErrCompanyNotFound,
		"UPDATE companies SET name = ?, logo_url = ? WHERE id = ?",
		c.Name, c.LogoURL, c.ID)
	if err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindCompany, Op: generic.OpUpdated, ID: c.ID})
	return nil
}

func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	if err := s.mutate(ctx, generic.ErrCompanyNotFound, "DELETE FROM companies WHERE id = ?", id); err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindCompany, Op: generic.OpDeleted, ID: id})
	return nil
}

// =============================================================================
// CLIENTS
// =============================================================================

const clientColumns = "id, company_id, name, email, phone"

func (s *Store) ListClients(ctx context.Context) ([]generic.Client, error) {
	return s.queryClients(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY rowid")
}

func (s *Store) ListClientsByCompany(ctx context.Context, companyID string) ([]generic.Client, error) {
	return s.queryClients(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE company_id = ? ORDER BY rowid", companyID)
}

func (s *Store) queryClients(ctx context.Context, query string, args ...any) ([]generic.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []generic.Client{}
	for rows.Next() {
		var c generic.Client
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id string) (generic.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c generic.Client
	err := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id,
	).Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Client{}, generic.ErrClientNotFound
	}
	return c, err
}

func (s *Store) CreateClient(ctx context.Context, c generic.Client) error {
	err := s.insert(ctx, "INSERT INTO clients ("+clientColumns+") VALUES (?, ?, ?, ?, ?)",
		c.ID, c.CompanyID, c.Name, c.Email, c.Phone)
	if err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindClient, Op: generic.OpCreated, ID: c.ID})
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, c generic.Client) error {
	err := s.mutate(ctx, generic.ErrClientNotFound,
		"UPDATE clients SET company_id = ?, name = ?, email = ?, phone = ? WHERE id = ?",
		c.CompanyID, c.Name, c.Email, c.Phone, c.ID)
	if err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindClient, Op: generic.OpUpdated, ID: c.ID})
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	if err := s.mutate(ctx, generic.ErrClientNotFound, "DELETE FROM clients WHERE id = ?", id); err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindClient, Op: generic.OpDeleted, ID: id})
	return nil
}

// =============================================================================
// PROJECTS
// =============================================================================

const projectColumns = `id, company_id, client_id, name, description, hourly_rate,
	estimated_hours, start_date, end_date, status, notes`

func (s *Store) ListProjects(ctx context.Context) ([]generic.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []generic.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (generic.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanProject(s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Project{}, generic.ErrProjectNotFound
	}
	return p, err
}

func (s *Store) CreateProject(ctx context.Context, p generic.Project) error {
	err := s.insert(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.CompanyID, nullString(p.ClientID), p.Name, p.Description,
		p.HourlyRate.String(), p.EstimatedHours,
		nullDate(p.StartDate), nullDate(p.EndDate), string(p.Status), p.Notes)
	if err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindProject, Op: generic.OpCreated, ID: p.ID})
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p generic.Project) error {
	err := s.mutate(ctx, generic.ErrProjectNotFound, `
		UPDATE projects SET
			company_id = ?, client_id = ?, name = ?, description = ?,
			hourly_rate = ?, estimated_hours = ?, start_date = ?, end_date = ?,
			status = ?, notes = ?
		WHERE id = ?`,
		p.CompanyID, nullString(p.ClientID), p.Name, p.Description,
		p.HourlyRate.String(), p.EstimatedHours,
		nullDate(p.StartDate), nullDate(p.EndDate), string(p.Status), p.Notes,
		p.ID)
	if err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindProject, Op: generic.OpUpdated, ID: p.ID})
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := s.mutate(ctx, generic.ErrProjectNotFound, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return err
	}
	s.feed.Publish(generic.Change{Kind: generic.KindProject, Op: generic.OpDeleted, ID: id})
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (generic.Project, error) {
	var (
		p                  generic.Project
		clientID           sql.NullString
		rate, status       string
		startDate, endDate sql.NullString
	)
	err := row.Scan(&p.ID, &p.CompanyID, &clientID, &p.Name, &p.Description,
		&rate, &p.EstimatedHours, &startDate, &endDate, &status, &p.Notes)
	if err != nil {
		return generic.Project{}, err
	}

	p.ClientID = clientID.String
	p.Status = generic.Status(status)
	if p.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return generic.Project{}, fmt.Errorf("project %s: hourly_rate %q: %w", p.ID, rate, err)
	}
	if p.StartDate, err = generic.ParseDate(startDate.String); err != nil {
		return generic.Project{}, fmt.Errorf("project %s: %w", p.ID, err)
	}
	if p.EndDate, err = generic.ParseDate(endDate.String); err != nil {
		return generic.Project{}, fmt.Errorf("project %s: %w", p.ID, err)
	}
	return p, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) LoadSettings(ctx context.Context) (generic.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var theme, accent string
	err := s.db.QueryRowContext(ctx, "SELECT theme, accent FROM settings WHERE id = 1").Scan(&theme, &accent)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.DefaultSettings(), nil
	}
	if err != nil {
		return generic.Settings{}, err
	}
	return generic.Settings{Theme: generic.Theme(theme), Accent: generic.Accent(accent)}, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings generic.Settings) error {
	s.mu.Lock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, theme, accent) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			theme = excluded.theme,
			accent = excluded.accent`,
		string(settings.Theme), string(settings.Accent))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.feed.Publish(generic.Change{Kind: generic.KindSettings, Op: generic.OpUpdated})
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) insert(ctx context.Context, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateID
		}
		return err
	}
	return nil
}

// mutate runs an UPDATE or DELETE and reports notFound when no row matched.
func (s *Store) mutate(ctx context.Context, notFound error, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d generic.Date) sql.NullString {
	return nullString(d.String())
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
