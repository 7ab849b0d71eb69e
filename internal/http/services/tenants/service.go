// Package tenants implementa el service del plano admin: CRUD del registro
// central más los disparos de provisioning/deprovisioning.
package tenants

import (
	"context"
	"strings"

	"github.com/dropDatabas3/tenantplane/internal/audit"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/email"
	httperrors "github.com/dropDatabas3/tenantplane/internal/http/errors"
	"github.com/dropDatabas3/tenantplane/internal/http/dto"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
	"github.com/dropDatabas3/tenantplane/internal/provision"
	"github.com/dropDatabas3/tenantplane/internal/registry"
)

// Deps contiene las dependencias del service.
type Deps struct {
	Store         domain.TenantStore
	Provisioner   *provision.Provisioner
	Deprovisioner *provision.Deprovisioner
	Alerts        *email.AlertMailer // nil = sin alertas
}

// Service orquesta las operaciones admin sobre tenants.
type Service struct {
	deps Deps
}

// NewService crea el service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Create registra el tenant y lo provisiona en los tres servicios. Un partial
// failure NO falla el request: el tenant queda registrado y la respuesta
// expone qué servicios faltan, para que el operador reintente con Provision.
func (s *Service) Create(ctx context.Context, in dto.CreateTenantRequest) (*dto.CreateTenantResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("tenants"),
		logger.Op("Create"),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.AdminEmail = strings.TrimSpace(strings.ToLower(in.AdminEmail))
	if in.Name == "" || in.AdminEmail == "" || in.AdminPassword == "" {
		return nil, httperrors.ErrMissingFields.WithDetail("name, adminEmail and adminPassword are required")
	}

	rec := &domain.TenantRecord{
		TenantID:      registry.NewTenantID(),
		Name:          in.Name,
		AdminEmail:    in.AdminEmail,
		AdminPassword: in.AdminPassword,
		Status:        domain.StatusActive,
	}
	if err := s.deps.Store.Create(ctx, rec); err != nil {
		return nil, err
	}
	log.Info("tenant created", logger.TenantID(rec.TenantID), logger.TenantName(rec.Name))

	res := s.deps.Provisioner.Provision(ctx, provision.Identity{
		TenantID:      rec.TenantID,
		Name:          rec.Name,
		AdminEmail:    rec.AdminEmail,
		AdminPassword: rec.AdminPassword,
	})
	audit.TenantProvisioned(ctx, rec.TenantID, res.OverallSuccess)
	if !res.OverallSuccess && s.deps.Alerts.Enabled() {
		s.deps.Alerts.ProvisioningFailure(ctx, rec.TenantID, rec.Name, res)
	}

	return &dto.CreateTenantResponse{
		Tenant:       dto.NewTenantResponse(rec),
		Provisioning: res,
	}, nil
}

// Get retorna un tenant por ID.
func (s *Service) Get(ctx context.Context, tenantID string) (*dto.TenantResponse, error) {
	rec, err := s.deps.Store.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewTenantResponse(rec)
	return &resp, nil
}

// List retorna todos los tenants.
func (s *Service) List(ctx context.Context) (*dto.ListTenantsResponse, error) {
	recs, err := s.deps.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := dto.ListTenantsResponse{Tenants: make([]dto.TenantResponse, 0, len(recs))}
	for i := range recs {
		out.Tenants = append(out.Tenants, dto.NewTenantResponse(&recs[i]))
	}
	return &out, nil
}

// Update aplica un patch parcial al registro. El nombre no es editable: los
// nombres de base derivados lo embeben y deben quedar estables de por vida.
func (s *Service) Update(ctx context.Context, tenantID string, in dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	if in.Name != nil {
		return nil, httperrors.ErrBadRequest.WithDetail("name is immutable: derived database names embed it")
	}
	patch := domain.UpdateTenantInput{
		AdminEmail:    in.AdminEmail,
		AdminPassword: in.AdminPassword,
	}
	if in.Status != nil {
		st := domain.LifecycleStatus(*in.Status)
		patch.Status = &st
	}
	rec, err := s.deps.Store.Update(ctx, tenantID, patch)
	if err != nil {
		return nil, err
	}
	resp := dto.NewTenantResponse(rec)
	return &resp, nil
}

// Provision re-ejecuta el provisioning de un tenant existente (retry tras un
// partial failure). Idempotente.
func (s *Service) Provision(ctx context.Context, tenantID string) (*dto.ProvisionTenantResponse, error) {
	rec, err := s.deps.Store.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	res := s.deps.Provisioner.Provision(ctx, provision.Identity{
		TenantID:      rec.TenantID,
		Name:          rec.Name,
		AdminEmail:    rec.AdminEmail,
		AdminPassword: rec.AdminPassword,
	})
	audit.TenantProvisioned(ctx, rec.TenantID, res.OverallSuccess)
	if !res.OverallSuccess && s.deps.Alerts.Enabled() {
		s.deps.Alerts.ProvisioningFailure(ctx, rec.TenantID, rec.Name, res)
	}
	return &dto.ProvisionTenantResponse{Provisioning: res}, nil
}

// Delete deprovisiona el tenant: dropea sus bases y borra el registro.
func (s *Service) Delete(ctx context.Context, tenantID string) (*dto.DeprovisionTenantResponse, error) {
	rec, err := s.deps.Store.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	res, err := s.deps.Deprovisioner.Deprovision(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	audit.TenantDeprovisioned(ctx, tenantID, res.OverallSuccess)
	if !res.OverallSuccess && s.deps.Alerts.Enabled() {
		s.deps.Alerts.DeprovisioningFailure(ctx, tenantID, rec.Name, res)
	}
	return &dto.DeprovisionTenantResponse{Result: res}, nil
}
