// Package tenants contiene los controllers del plano admin.
package tenants

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/tenantplane/internal/http/errors"
	"github.com/dropDatabas3/tenantplane/internal/http/dto"
	svc "github.com/dropDatabas3/tenantplane/internal/http/services/tenants"
)

// Controller expone el CRUD + provisioning de tenants.
type Controller struct {
	svc *svc.Service
}

// NewController crea el controller.
func NewController(s *svc.Service) *Controller {
	return &Controller{svc: s}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Create maneja POST /v1/admin/tenants.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httperrors.WriteError(w, r, httperrors.ErrInvalidJSON)
		return
	}
	out, err := c.svc.Create(r.Context(), in)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	// 201 aunque el provisioning haya sido parcial: el registro existe y la
	// respuesta detalla qué servicios faltan.
	writeJSON(w, http.StatusCreated, out)
}

// Get maneja GET /v1/admin/tenants/{tenantID}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	out, err := c.svc.Get(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// List maneja GET /v1/admin/tenants.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	out, err := c.svc.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Update maneja PATCH /v1/admin/tenants/{tenantID}.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var in dto.UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httperrors.WriteError(w, r, httperrors.ErrInvalidJSON)
		return
	}
	out, err := c.svc.Update(r.Context(), chi.URLParam(r, "tenantID"), in)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Provision maneja POST /v1/admin/tenants/{tenantID}/provision (retry).
func (c *Controller) Provision(w http.ResponseWriter, r *http.Request) {
	out, err := c.svc.Provision(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete maneja DELETE /v1/admin/tenants/{tenantID}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	out, err := c.svc.Delete(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
