// Package auth contiene el controller de login federado.
package auth

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/tenantplane/internal/http/errors"
	"github.com/dropDatabas3/tenantplane/internal/http/dto"
	svc "github.com/dropDatabas3/tenantplane/internal/http/services/auth"
)

// Controller expone el endpoint de login.
type Controller struct {
	svc *svc.Service
}

// NewController crea el controller.
func NewController(s *svc.Service) *Controller {
	return &Controller{svc: s}
}

// Login maneja POST /v1/auth/login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var in dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httperrors.WriteError(w, r, httperrors.ErrInvalidJSON)
		return
	}
	out, err := c.svc.Login(r.Context(), in)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}
