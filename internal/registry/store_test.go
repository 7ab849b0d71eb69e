package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/cluster/clustertest"
	"github.com/dropDatabas3/tenantplane/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *clustertest.FakeCluster) {
	t.Helper()
	fake := clustertest.NewFakeCluster()
	reg := cluster.NewRegistry(cluster.RegistryConfig{
		URIs: map[string]string{cluster.RegistryKey: "mongodb://registry"},
		Dial: func(ctx context.Context, uri string) (cluster.Conn, error) {
			return fake, nil
		},
	})
	return NewStore(reg, "tenant_registry"), fake
}

func seedTenant(t *testing.T, s *Store) *domain.TenantRecord {
	t.Helper()
	rec := &domain.TenantRecord{
		TenantID:      NewTenantID(),
		Name:          "Acme Co.",
		AdminEmail:    "admin@acme.test",
		AdminPassword: "s3cret",
		Status:        domain.StatusActive,
	}
	require.NoError(t, s.Create(context.Background(), rec))
	return rec
}

func TestStore_CreateAndGet(t *testing.T) {
	s, _ := newTestStore(t)
	rec := seedTenant(t, s)

	got, err := s.GetByID(context.Background(), rec.TenantID)
	require.NoError(t, err)
	require.Equal(t, rec.Name, got.Name)
	require.Equal(t, domain.StatusActive, got.Status)
	require.False(t, got.CreatedAt.IsZero())
}

func TestStore_CreateDuplicateConflicts(t *testing.T) {
	s, _ := newTestStore(t)
	rec := seedTenant(t, s)

	dup := &domain.TenantRecord{
		TenantID:      rec.TenantID,
		Name:          "Other",
		AdminEmail:    "other@acme.test",
		AdminPassword: "x",
	}
	err := s.Create(context.Background(), dup)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_GetByAdminCredentials(t *testing.T) {
	s, _ := newTestStore(t)
	rec := seedTenant(t, s)

	got, err := s.GetByAdminCredentials(context.Background(), rec.TenantID, "admin@acme.test", "s3cret")
	require.NoError(t, err)
	require.Equal(t, rec.TenantID, got.TenantID)

	// Igualdad exacta: password errado no matchea.
	_, err = s.GetByAdminCredentials(context.Background(), rec.TenantID, "admin@acme.test", "wrong")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpdateStatus(t *testing.T) {
	s, _ := newTestStore(t)
	rec := seedTenant(t, s)

	suspended := domain.StatusSuspended
	got, err := s.Update(context.Background(), rec.TenantID, domain.UpdateTenantInput{Status: &suspended})
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuspended, got.Status)
	// El resto del registro queda intacto.
	require.Equal(t, rec.Name, got.Name)
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(t)
	rec := seedTenant(t, s)

	require.NoError(t, s.Delete(context.Background(), rec.TenantID))
	_, err := s.GetByID(context.Background(), rec.TenantID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Delete de algo inexistente es ErrNotFound, no panic.
	require.ErrorIs(t, s.Delete(context.Background(), rec.TenantID), domain.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	s, _ := newTestStore(t)
	seedTenant(t, s)
	second := &domain.TenantRecord{
		TenantID:      NewTenantID(),
		Name:          "Globex",
		AdminEmail:    "admin@globex.test",
		AdminPassword: "pw",
	}
	require.NoError(t, s.Create(context.Background(), second))

	recs, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
}
