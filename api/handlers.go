/*
handlers.go - HTTP API handlers for the workbench

PURPOSE:
  Exposes the workspace service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the service, the settings state and
  the billing calculator.

ENDPOINTS:
  Companies:
    GET    /api/companies               List companies
    POST   /api/companies               Create company
    GET    /api/companies/{id}          Get company
    PUT    /api/companies/{id}          Update company (partial body)
    DELETE /api/companies/{id}          Delete company, its clients and projects
    GET    /api/companies/{id}/clients  Clients of one company

  Clients:
    GET    /api/clients                 List clients (?company_id=)
    POST   /api/clients                 Create client
    GET    /api/clients/{id}            Get client
    PUT    /api/clients/{id}            Update client (partial body)
    DELETE /api/clients/{id}            Delete client, detach its projects

  Projects:
    GET    /api/projects                List (?status=, ?month=YYYY-MM)
    POST   /api/projects                Create project
    GET    /api/projects/{id}           Get project
    PUT    /api/projects/{id}           Update project (partial body)
    PUT    /api/projects/{id}/status    Change status
    DELETE /api/projects/{id}           Delete project

  Dashboard / settings / events:
    GET    /api/dashboard               Month summary (?month=YYYY-MM)
    GET    /api/settings                Theme, accent and root classes
    PUT    /api/settings                Partial update
    POST   /api/settings/theme/toggle   Flip light/dark
    GET    /api/events                  Server-Sent Events of store changes

LANGUAGE:
  Status labels follow Accept-Language when present, otherwise the
  server's configured locale.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate ID
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The workbench is a single-user tool.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo workspace loaders
  - events.go: Change stream
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/nexwork/workbench/billing"
	"github.com/nexwork/workbench/factory"
	"github.com/nexwork/workbench/generic"
	"github.com/nexwork/workbench/settings"
	"github.com/nexwork/workbench/workspace"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *workspace.Service
	Settings *settings.State

	// Feed is nil when the store cannot push changes.
	Feed generic.ChangeFeed

	// Locale is used when a request carries no Accept-Language.
	Locale string

	metrics *Metrics

	mu              sync.Mutex
	currentScenario string

	// loadMu serializes scenario loads and resets end to end.
	loadMu sync.Mutex
}

// NewHandler creates a handler. The change feed is taken from the
// service's repository when it implements generic.ChangeFeed.
func NewHandler(svc *workspace.Service, st *settings.State, locale string) *Handler {
	h := &Handler{Service: svc, Settings: st, Locale: locale}
	if feed, ok := svc.Repository().(generic.ChangeFeed); ok {
		h.Feed = feed
	}
	return h
}

func (h *Handler) locale(r *http.Request) string {
	if al := r.Header.Get("Accept-Language"); al != "" {
		return al
	}
	return h.Locale
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Service.ListCompanies(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to list companies", err)
		return
	}
	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = toCompanyDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get company", err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(c))
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req factory.CompanyInput
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.Service.AddCompany(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompanyDTO(c))
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.Service.GetCompany(ctx, id)
	if err != nil {
		writeServiceError(w, "Failed to get company", err)
		return
	}
	req := factory.CompanyInput{Name: existing.Name, LogoURL: existing.LogoURL}
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.Service.UpdateCompany(ctx, id, req)
	if err != nil {
		writeServiceError(w, "Failed to update company", err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(c))
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Failed to delete company", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCompanyClients returns the clients of one company.
// GET /api/companies/{id}/clients
func (h *Handler) ListCompanyClients(w http.ResponseWriter, r *http.Request) {
	h.listClients(w, r, chi.URLParam(r, "id"))
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	h.listClients(w, r, r.URL.Query().Get("company_id"))
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request, companyID string) {
	clients, err := h.Service.ListClients(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, "Failed to list clients", err)
		return
	}
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Repository().GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req factory.ClientInput
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.Service.AddClient(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(c))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.Service.Repository().GetClient(ctx, id)
	if err != nil {
		writeServiceError(w, "Failed to get client", err)
		return
	}
	req := factory.ClientInput{
		Name:      existing.Name,
		CompanyID: existing.CompanyID,
		Email:     existing.Email,
		Phone:     existing.Phone,
	}
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.Service.UpdateClient(ctx, id, req)
	if err != nil {
		writeServiceError(w, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Failed to delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns projects, optionally filtered.
// GET /api/projects?status=in_progress&month=2024-03
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var filter workspace.ProjectFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, err := factory.ParseStatus(raw)
		if err != nil {
			writeServiceError(w, "Invalid status filter", err)
			return
		}
		filter.Status = status
	}
	if raw := q.Get("month"); raw != "" {
		month, err := billing.ParseMonth(raw)
		if err != nil {
			writeServiceError(w, "Invalid month filter", generic.Invalid("month", "%v", err))
			return
		}
		filter.Month = month
	}

	projects, err := h.Service.ListProjects(r.Context(), filter)
	if err != nil {
		writeServiceError(w, "Failed to list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTOs(projects, h.Service.Now(), h.locale(r)))
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p, h.Service.Now(), h.locale(r)))
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req factory.ProjectInput
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.Service.AddProject(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p, h.Service.Now(), h.locale(r)))
}

// UpdateProject applies the fields present in the body on top of the
// stored project.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.Service.GetProject(ctx, id)
	if err != nil {
		writeServiceError(w, "Failed to get project", err)
		return
	}
	req := factory.ProjectInputFrom(existing)
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.Service.UpdateProject(ctx, id, req)
	if err != nil {
		writeServiceError(w, "Failed to update project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p, h.Service.Now(), h.locale(r)))
}

// ChangeProjectStatus moves a project to a new status.
// PUT /api/projects/{id}/status {"status": "completed"}
func (h *Handler) ChangeProjectStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeServiceError(w, "Invalid status", generic.Invalid("status", "required"))
		return
	}
	p, err := h.Service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, "Failed to change status", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p, h.Service.Now(), h.locale(r)))
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Failed to delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard summarises a month, the current one by default.
// GET /api/dashboard?month=2024-03
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	now := h.Service.Now()
	ref := now
	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err := billing.ParseMonth(raw)
		if err != nil {
			writeServiceError(w, "Invalid month", generic.Invalid("month", "%v", err))
			return
		}
		ref = month
	}

	summary, err := h.Service.Dashboard(r.Context(), ref)
	if err != nil {
		writeServiceError(w, "Failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(summary, now, h.locale(r)))
}

// =============================================================================
// SETTINGS
// =============================================================================

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSettingsDTO(h.Settings.Current(), h.Settings.Classes()))
}

// UpdateSettings applies a partial change.
// PUT /api/settings {"theme": "dark"}
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Update
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.Settings.Apply(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(s, settings.Classes(s)))
}

// ToggleTheme flips between light and dark.
// POST /api/settings/theme/toggle
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.ToggleTheme(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to toggle theme", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(s, settings.Classes(s)))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	var verr *generic.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	writeJSON(w, status, resp)
}

// writeServiceError picks the status from the error's classification.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generic.ErrDuplicateID):
		return http.StatusConflict
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody writes a 400 and returns false when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}
