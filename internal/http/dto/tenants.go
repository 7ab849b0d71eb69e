// Package dto define los cuerpos de request/response de la API.
package dto

import (
	"time"

	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/provision"
)

// CreateTenantRequest registra un tenant nuevo y dispara su provisioning.
type CreateTenantRequest struct {
	Name          string `json:"name"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}

// UpdateTenantRequest es un patch parcial; los campos ausentes no se tocan.
type UpdateTenantRequest struct {
	Name          *string `json:"name,omitempty"`
	AdminEmail    *string `json:"adminEmail,omitempty"`
	AdminPassword *string `json:"adminPassword,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// TenantResponse es la proyección pública del TenantRecord (sin password).
type TenantResponse struct {
	TenantID   string    `json:"tenantId"`
	Name       string    `json:"name"`
	AdminEmail string    `json:"adminEmail"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewTenantResponse proyecta un TenantRecord.
func NewTenantResponse(rec *domain.TenantRecord) TenantResponse {
	return TenantResponse{
		TenantID:   rec.TenantID,
		Name:       rec.Name,
		AdminEmail: rec.AdminEmail,
		Status:     string(rec.Status),
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

// CreateTenantResponse incluye el resultado del provisioning inicial: el
// caller ve exactamente qué servicios quedaron pendientes si hubo partial
// failure.
type CreateTenantResponse struct {
	Tenant       TenantResponse    `json:"tenant"`
	Provisioning *provision.Result `json:"provisioning"`
}

// ProvisionTenantResponse es la respuesta del re-provisioning manual.
type ProvisionTenantResponse struct {
	Provisioning *provision.Result `json:"provisioning"`
}

// DeprovisionTenantResponse expone qué bases se droparon y cuáles quedaron
// huérfanas.
type DeprovisionTenantResponse struct {
	Result *provision.DeprovisionResult `json:"result"`
}

// ListTenantsResponse lista todos los tenants registrados.
type ListTenantsResponse struct {
	Tenants []TenantResponse `json:"tenants"`
}
