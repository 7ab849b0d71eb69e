package provision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/naming"
	"github.com/dropDatabas3/tenantplane/internal/registry"
)

func seedRegistry(t *testing.T, env *testEnv) (*registry.Store, *domain.TenantRecord) {
	t.Helper()
	store := registry.NewStore(env.clusters, "tenant_registry")
	rec := &domain.TenantRecord{
		TenantID:      acme.TenantID,
		Name:          acme.Name,
		AdminEmail:    acme.AdminEmail,
		AdminPassword: acme.AdminPassword,
		Status:        domain.StatusActive,
	}
	require.NoError(t, store.Create(context.Background(), rec))
	return store, rec
}

func TestDeprovision_DropsAllAndDeletesRecord(t *testing.T) {
	env := newTestEnv(t)
	store, rec := seedRegistry(t, env)

	require.True(t, NewProvisioner(env.clusters, 0).Provision(context.Background(), acme).OverallSuccess)

	d := NewDeprovisioner(env.clusters, store, 0)
	res, err := d.Deprovision(context.Background(), rec.TenantID)
	require.NoError(t, err)
	require.True(t, res.OverallSuccess)
	require.True(t, res.RegistryDeleted)

	for _, svc := range cluster.Services() {
		dbName := naming.TenantDatabase(svc.String(), rec.TenantID, rec.Name)
		require.False(t, env.fake(svc).HasDatabase(dbName))
		require.Contains(t, env.fake(svc).DroppedDatabases(), dbName)
	}

	_, err = store.GetByID(context.Background(), rec.TenantID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeprovision_UnknownTenant(t *testing.T) {
	env := newTestEnv(t)
	store, _ := seedRegistry(t, env)

	d := NewDeprovisioner(env.clusters, store, 0)
	_, err := d.Deprovision(context.Background(), "org_nope")
	require.ErrorIs(t, err, domain.ErrUnknownTenant)
}

func TestDeprovision_UnreachableClusterStillDeletesRecord(t *testing.T) {
	env := newTestEnv(t)
	store, rec := seedRegistry(t, env)
	require.True(t, NewProvisioner(env.clusters, 0).Provision(context.Background(), acme).OverallSuccess)

	// pingora cae entre el provisioning y el delete.
	_ = env.clusters.CloseAll(context.Background())
	env.down["pingora"] = true

	d := NewDeprovisioner(env.clusters, store, 0)
	res, err := d.Deprovision(context.Background(), rec.TenantID)
	require.NoError(t, err)
	require.False(t, res.OverallSuccess)
	require.False(t, res.PerService["pingora"].Success)
	require.True(t, res.PerService["billing"].Success)

	// El registro se borra igual: base huérfana en pingora, tenant muerto.
	require.True(t, res.RegistryDeleted)
	_, err = store.GetByID(context.Background(), rec.TenantID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeprovision_DropsLegacyDatabaseToo(t *testing.T) {
	env := newTestEnv(t)
	store, rec := seedRegistry(t, env)

	// Base legacy pre-tenantId con datos reales.
	legacy := naming.LegacyTenantDatabase("billing", rec.Name)
	require.NoError(t, env.fake(cluster.Billing).DB(legacy).CreateCollection(context.Background(), "invoices"))

	d := NewDeprovisioner(env.clusters, store, 0)
	res, err := d.Deprovision(context.Background(), rec.TenantID)
	require.NoError(t, err)
	require.True(t, res.OverallSuccess)
	require.Contains(t, env.fake(cluster.Billing).DroppedDatabases(), legacy)
}
