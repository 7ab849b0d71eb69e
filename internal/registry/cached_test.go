package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantplane/internal/cache"
	"github.com/dropDatabas3/tenantplane/internal/domain"
)

func TestCachedStore_GetByIDHitsCache(t *testing.T) {
	s, fake := newTestStore(t)
	rec := seedTenant(t, s)

	cached := NewCachedStore(s, cache.NewMemory("test", time.Minute), time.Minute)

	got, err := cached.GetByID(context.Background(), rec.TenantID)
	require.NoError(t, err)
	require.Equal(t, rec.Name, got.Name)

	// Segundo lookup sale del cache aunque el registro ya no responda.
	fake.DB("tenant_registry").FindErr = context.DeadlineExceeded
	got, err = cached.GetByID(context.Background(), rec.TenantID)
	require.NoError(t, err)
	require.Equal(t, rec.Name, got.Name)
	// El password bootstrap nunca entra al cache.
	require.Empty(t, got.AdminPassword)
}

func TestCachedStore_WritesInvalidate(t *testing.T) {
	s, _ := newTestStore(t)
	rec := seedTenant(t, s)

	cached := NewCachedStore(s, cache.NewMemory("test", time.Minute), time.Minute)
	_, err := cached.GetByID(context.Background(), rec.TenantID)
	require.NoError(t, err)

	name := "Renamed Co."
	_, err = cached.Update(context.Background(), rec.TenantID, domain.UpdateTenantInput{Name: &name})
	require.NoError(t, err)

	got, err := cached.GetByID(context.Background(), rec.TenantID)
	require.NoError(t, err)
	require.Equal(t, "Renamed Co.", got.Name)
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	s, _ := newTestStore(t)
	rec := seedTenant(t, s)

	cached := NewCachedStore(s, cache.NewMemory("test", time.Minute), time.Minute)
	_, err := cached.GetByID(context.Background(), rec.TenantID)
	require.NoError(t, err)

	require.NoError(t, cached.Delete(context.Background(), rec.TenantID))
	_, err = cached.GetByID(context.Background(), rec.TenantID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
