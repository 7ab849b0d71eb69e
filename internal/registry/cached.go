package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/tenantplane/internal/cache"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
)

// CachedStore decora un TenantStore con cache de GetByID. El hot path es el
// login: cada intento resuelve el tenant antes de sondear los servicios, y
// ese lookup no necesita ir al cluster de registro cada vez.
//
// Solo se cachea GetByID; los writes invalidan. El password admin nunca entra
// al cache (se serializa sin él, ver cachedRecord).
type CachedStore struct {
	inner domain.TenantStore
	cache cache.Client
	ttl   time.Duration
}

// cachedRecord es la proyección cacheable del TenantRecord: sin el password
// bootstrap, que no hace falta para resolver el nombre del tenant.
type cachedRecord struct {
	TenantID   string                 `json:"tenantId"`
	Name       string                 `json:"name"`
	AdminEmail string                 `json:"adminEmail"`
	Status     domain.LifecycleStatus `json:"status"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// NewCachedStore decora inner con el cache dado. ttl <= 0 usa 2m.
func NewCachedStore(inner domain.TenantStore, c cache.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &CachedStore{inner: inner, cache: c, ttl: ttl}
}

func cacheKey(tenantID string) string { return "tenant:" + tenantID }

func (s *CachedStore) GetByID(ctx context.Context, tenantID string) (*domain.TenantRecord, error) {
	if raw, err := s.cache.Get(ctx, cacheKey(tenantID)); err == nil {
		var cr cachedRecord
		if err := json.Unmarshal([]byte(raw), &cr); err == nil {
			return &domain.TenantRecord{
				TenantID:   cr.TenantID,
				Name:       cr.Name,
				AdminEmail: cr.AdminEmail,
				Status:     cr.Status,
				CreatedAt:  cr.CreatedAt,
				UpdatedAt:  cr.UpdatedAt,
			}, nil
		}
	}

	rec, err := s.inner.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(cachedRecord{
		TenantID:   rec.TenantID,
		Name:       rec.Name,
		AdminEmail: rec.AdminEmail,
		Status:     rec.Status,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	})
	if err == nil {
		if err := s.cache.Set(ctx, cacheKey(tenantID), string(raw), s.ttl); err != nil {
			logger.From(ctx).Warn("tenant cache set failed", logger.Err(err))
		}
	}
	return rec, nil
}

func (s *CachedStore) Create(ctx context.Context, rec *domain.TenantRecord) error {
	return s.inner.Create(ctx, rec)
}

func (s *CachedStore) GetByAdminCredentials(ctx context.Context, tenantID, email, password string) (*domain.TenantRecord, error) {
	// Siempre contra el registro: las credenciales no se sirven de cache.
	return s.inner.GetByAdminCredentials(ctx, tenantID, email, password)
}

func (s *CachedStore) List(ctx context.Context) ([]domain.TenantRecord, error) {
	return s.inner.List(ctx)
}

func (s *CachedStore) Update(ctx context.Context, tenantID string, patch domain.UpdateTenantInput) (*domain.TenantRecord, error) {
	rec, err := s.inner.Update(ctx, tenantID, patch)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, cacheKey(tenantID))
	return rec, nil
}

func (s *CachedStore) Delete(ctx context.Context, tenantID string) error {
	if err := s.inner.Delete(ctx, tenantID); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cacheKey(tenantID))
	return nil
}

var _ domain.TenantStore = (*CachedStore)(nil)
