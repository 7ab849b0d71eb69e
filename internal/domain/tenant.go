package domain

import (
	"context"
	"time"
)

// LifecycleStatus gobierna si el tenant puede autenticarse y usar la API.
// Lo muta un workflow externo de licencias; acá solo se persiste y se consulta.
type LifecycleStatus string

const (
	StatusActive    LifecycleStatus = "active"
	StatusSuspended LifecycleStatus = "suspended"
	StatusPaused    LifecycleStatus = "paused"
	StatusExpired   LifecycleStatus = "expired"
)

// Valid verifica que el status sea uno de los conocidos.
func (s LifecycleStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusPaused, StatusExpired:
		return true
	}
	return false
}

// TenantRecord es el registro canónico de un tenant en el cluster de registro.
// Es la única fuente de verdad: las bases por servicio son estado derivado.
type TenantRecord struct {
	// TenantID es visible externamente, único y global. Se asigna una sola vez
	// y nunca se reutiliza, incluso después de un delete, para que un tenant
	// nuevo no colisione con estado por-servicio huérfano de un deprovisioning
	// fallido.
	TenantID string `bson:"tenantId" json:"tenantId"`

	// Name es el nombre visible. Mutar solo via un flujo de rename controlado;
	// para el esquema de nombres se trata como inmutable.
	Name string `bson:"name" json:"name"`

	// AdminEmail / AdminPassword son la credencial administradora bootstrap
	// que se propaga a cada base por-servicio al provisionar.
	AdminEmail    string `bson:"adminEmail" json:"adminEmail"`
	AdminPassword string `bson:"adminPassword" json:"-"`

	Status LifecycleStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TenantIdentity es la identidad mínima que necesita el provisioner.
type TenantIdentity struct {
	TenantID      string
	Name          string
	AdminEmail    string
	AdminPassword string
}

// Identity proyecta un TenantRecord a la identidad de provisioning.
func (t *TenantRecord) Identity() TenantIdentity {
	return TenantIdentity{
		TenantID:      t.TenantID,
		Name:          t.Name,
		AdminEmail:    t.AdminEmail,
		AdminPassword: t.AdminPassword,
	}
}

// CreateTenantInput contiene los datos para registrar un tenant.
type CreateTenantInput struct {
	Name          string
	AdminEmail    string
	AdminPassword string
}

// UpdateTenantInput contiene los campos actualizables de un tenant.
// Punteros nil = sin cambio.
type UpdateTenantInput struct {
	Name          *string
	AdminEmail    *string
	AdminPassword *string
	Status        *LifecycleStatus
}

// TenantStore define operaciones sobre el registro de tenants.
type TenantStore interface {
	// Create registra un tenant nuevo. Retorna ErrConflict si el tenantId ya existe.
	Create(ctx context.Context, rec *TenantRecord) error

	// GetByID busca por tenantId. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, tenantID string) (*TenantRecord, error)

	// GetByAdminCredentials busca por (tenantId, email, password) con igualdad
	// exacta. Retorna ErrNotFound si no matchea.
	GetByAdminCredentials(ctx context.Context, tenantID, email, password string) (*TenantRecord, error)

	// List retorna todos los tenants registrados.
	List(ctx context.Context) ([]TenantRecord, error)

	// Update aplica un patch parcial. Retorna ErrNotFound si no existe.
	Update(ctx context.Context, tenantID string, patch UpdateTenantInput) (*TenantRecord, error)

	// Delete elimina el registro. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, tenantID string) error
}
