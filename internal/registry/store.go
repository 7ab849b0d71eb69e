// Package registry implementa el Tenant Registry Store: CRUD sobre
// TenantRecord en el cluster de registro central. Una sola base, un solo
// cluster, operaciones de documento único; acá no hay transacciones
// multi-documento porque ningún otro componente escribe estos registros.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
)

// CollectionTenants es la colección de registros de tenant.
const CollectionTenants = "organizations"

// Store implementa domain.TenantStore sobre el cluster de registro.
type Store struct {
	clusters *cluster.Registry
	database string
}

// NewStore crea el store. database es el nombre de la base de registro
// (config registry.database).
func NewStore(clusters *cluster.Registry, database string) *Store {
	return &Store{clusters: clusters, database: database}
}

func (s *Store) db(ctx context.Context) (cluster.Database, error) {
	conn, err := s.clusters.RegistryConn(ctx)
	if err != nil {
		return nil, err
	}
	return conn.Database(s.database), nil
}

// NewTenantID genera un tenantId nuevo. Se asigna una sola vez por tenant y
// nunca se reutiliza (uuid v4), ni siquiera tras un delete.
func NewTenantID() string {
	return "org_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// Create registra un tenant nuevo.
func (s *Store) Create(ctx context.Context, rec *domain.TenantRecord) error {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Component("registry"), logger.Op("Create"))

	if rec.TenantID == "" {
		return fmt.Errorf("%w: tenantId is required", domain.ErrInvalidInput)
	}
	if rec.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if rec.AdminEmail == "" {
		return fmt.Errorf("%w: adminEmail is required", domain.ErrInvalidInput)
	}
	if rec.Status == "" {
		rec.Status = domain.StatusActive
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, rec.Status)
	}

	db, err := s.db(ctx)
	if err != nil {
		return err
	}

	// Check de colisión: el tenantId es la primary key lógica.
	var existing domain.TenantRecord
	err = db.FindOne(ctx, CollectionTenants, map[string]any{"tenantId": rec.TenantID}, &existing)
	if err == nil {
		return fmt.Errorf("%w: tenant %s", domain.ErrConflict, rec.TenantID)
	}
	if !domain.IsNotFound(err) {
		return err
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := db.InsertOne(ctx, CollectionTenants, rec); err != nil {
		log.Error("insert tenant failed", logger.Err(err))
		return err
	}
	log.Info("tenant registered", logger.TenantID(rec.TenantID), logger.TenantName(rec.Name))
	return nil
}

// GetByID busca por tenantId.
func (s *Store) GetByID(ctx context.Context, tenantID string) (*domain.TenantRecord, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rec domain.TenantRecord
	if err := db.FindOne(ctx, CollectionTenants, map[string]any{"tenantId": tenantID}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByAdminCredentials busca por (tenantId, email, password) con igualdad
// exacta sobre la credencial admin bootstrap del registro.
func (s *Store) GetByAdminCredentials(ctx context.Context, tenantID, email, password string) (*domain.TenantRecord, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	filter := map[string]any{
		"tenantId":      tenantID,
		"adminEmail":    strings.TrimSpace(strings.ToLower(email)),
		"adminPassword": password,
	}
	var rec domain.TenantRecord
	if err := db.FindOne(ctx, CollectionTenants, filter, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List retorna todos los tenants.
func (s *Store) List(ctx context.Context) ([]domain.TenantRecord, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var recs []domain.TenantRecord
	if err := db.FindAll(ctx, CollectionTenants, map[string]any{}, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Update aplica un patch parcial y retorna el registro actualizado.
func (s *Store) Update(ctx context.Context, tenantID string, patch domain.UpdateTenantInput) (*domain.TenantRecord, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	set := map[string]any{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.AdminEmail != nil {
		set["adminEmail"] = strings.TrimSpace(strings.ToLower(*patch.AdminEmail))
	}
	if patch.AdminPassword != nil {
		set["adminPassword"] = *patch.AdminPassword
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, *patch.Status)
		}
		set["status"] = *patch.Status
	}

	if err := db.UpdateOne(ctx, CollectionTenants, map[string]any{"tenantId": tenantID}, set); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, tenantID)
}

// Delete elimina el registro del tenant.
func (s *Store) Delete(ctx context.Context, tenantID string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if err := db.DeleteOne(ctx, CollectionTenants, map[string]any{"tenantId": tenantID}); err != nil {
		return err
	}
	logger.From(ctx).Info("tenant record deleted",
		logger.Layer("store"), logger.Component("registry"), logger.TenantID(tenantID))
	return nil
}

// Ensure Store implements domain.TenantStore
var _ domain.TenantStore = (*Store)(nil)
