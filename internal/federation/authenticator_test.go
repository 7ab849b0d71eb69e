package federation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/cluster/clustertest"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/naming"
	"github.com/dropDatabas3/tenantplane/internal/provision"
	"github.com/dropDatabas3/tenantplane/internal/registry"
)

type testEnv struct {
	clusters *cluster.Registry
	store    *registry.Store
	fakes    map[string]*clustertest.FakeCluster
	down     map[string]bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		fakes: map[string]*clustertest.FakeCluster{},
		down:  map[string]bool{},
	}
	uris := map[string]string{cluster.RegistryKey: "mongodb://" + cluster.RegistryKey}
	env.fakes[cluster.RegistryKey] = clustertest.NewFakeCluster()
	for _, svc := range cluster.Services() {
		uris[svc.String()] = "mongodb://" + svc.String()
		env.fakes[svc.String()] = clustertest.NewFakeCluster()
	}
	env.clusters = cluster.NewRegistry(cluster.RegistryConfig{
		URIs: uris,
		Dial: func(ctx context.Context, uri string) (cluster.Conn, error) {
			key := uri[len("mongodb://"):]
			if env.down[key] {
				return nil, errors.New("connection refused")
			}
			return env.fakes[key], nil
		},
	})
	env.store = registry.NewStore(env.clusters, "tenant_registry")
	return env
}

func (e *testEnv) fake(svc cluster.Service) *clustertest.FakeCluster {
	return e.fakes[svc.String()]
}

// seedProvisionedTenant registra el tenant y lo provisiona en los tres
// servicios.
func seedProvisionedTenant(t *testing.T, env *testEnv) *domain.TenantRecord {
	t.Helper()
	rec := &domain.TenantRecord{
		TenantID:      "org_a1b2c3d4e5f601234567",
		Name:          "Acme Co.",
		AdminEmail:    "admin@acme.test",
		AdminPassword: "s3cret",
		Status:        domain.StatusActive,
	}
	require.NoError(t, env.store.Create(context.Background(), rec))
	res := provision.NewProvisioner(env.clusters, 0).Provision(context.Background(), provision.Identity{
		TenantID:      rec.TenantID,
		Name:          rec.Name,
		AdminEmail:    rec.AdminEmail,
		AdminPassword: rec.AdminPassword,
	})
	require.True(t, res.OverallSuccess)
	return rec
}

func TestAuthenticate_FederatedOR_AllServices(t *testing.T) {
	env := newTestEnv(t)
	rec := seedProvisionedTenant(t, env)
	a := NewAuthenticator(env.clusters, env.store, 0)

	res, err := a.Authenticate(context.Background(), rec.TenantID, "admin@acme.test", "s3cret")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Acme Co.", res.TenantName)
	require.Equal(t, []string{"billing", "crm", "pingora"}, res.AuthenticatedServices)
	require.NotNil(t, res.User)
	// El usuario representativo sale del primer servicio en orden fijo.
	require.Equal(t, "billing", res.User.ServiceType)
	require.Equal(t, "admin", res.User.Role)
}

func TestAuthenticate_UnknownTenantShortCircuits(t *testing.T) {
	env := newTestEnv(t)
	a := NewAuthenticator(env.clusters, env.store, 0)

	_, err := a.Authenticate(context.Background(), "org_nope", "admin@acme.test", "s3cret")
	require.ErrorIs(t, err, domain.ErrUnknownTenant)

	// Cero probes: la conexión a los clusters de servicio nunca se establece.
	for _, svc := range cluster.Services() {
		require.False(t, env.clusters.Has(svc.String()), svc)
	}
}

func TestAuthenticate_WrongPasswordRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := seedProvisionedTenant(t, env)
	a := NewAuthenticator(env.clusters, env.store, 0)

	res, err := a.Authenticate(context.Background(), rec.TenantID, "admin@acme.test", "wrong")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Empty(t, res.AuthenticatedServices)
	require.Nil(t, res.User)
}

func TestAuthenticate_InactiveCredentialRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := seedProvisionedTenant(t, env)

	// Desactiva la credencial en los tres servicios.
	for _, svc := range cluster.Services() {
		db := env.fake(svc).DB(naming.TenantDatabase(svc.String(), rec.TenantID, rec.Name))
		require.NoError(t, db.UpdateOne(context.Background(), naming.UserCollection(rec.Name),
			map[string]any{"tenantId": rec.TenantID}, map[string]any{"isActive": false}))
	}

	a := NewAuthenticator(env.clusters, env.store, 0)
	res, err := a.Authenticate(context.Background(), rec.TenantID, "admin@acme.test", "s3cret")
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestAuthenticate_DegradedClusterDoesNotLockOut(t *testing.T) {
	env := newTestEnv(t)
	rec := seedProvisionedTenant(t, env)

	// crm se cae después del provisioning.
	_ = env.clusters.CloseAll(context.Background())
	env.down["crm"] = true

	a := NewAuthenticator(env.clusters, env.store, time.Second)
	res, err := a.Authenticate(context.Background(), rec.TenantID, "admin@acme.test", "s3cret")
	require.NoError(t, err)
	require.True(t, res.Success, "one degraded cluster must not lock the tenant out")
	require.Equal(t, []string{"billing", "pingora"}, res.AuthenticatedServices)
}

func TestAuthenticate_PartialProvisioningSubset(t *testing.T) {
	env := newTestEnv(t)
	rec := seedProvisionedTenant(t, env)

	// El tenant perdió su base de pingora (o nunca se provisionó ahí).
	db := env.fake(cluster.Pingora).DB(naming.TenantDatabase("pingora", rec.TenantID, rec.Name))
	require.NoError(t, db.Drop(context.Background()))

	a := NewAuthenticator(env.clusters, env.store, 0)
	res, err := a.Authenticate(context.Background(), rec.TenantID, "admin@acme.test", "s3cret")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, []string{"billing", "crm"}, res.AuthenticatedServices)
}

func TestAuthenticate_LegacyDatabaseFallback(t *testing.T) {
	env := newTestEnv(t)

	// Tenant registrado pero provisionado con el esquema legacy (sin tenantId
	// en el nombre de la base).
	rec := &domain.TenantRecord{
		TenantID:      "org_legacy0000111122223",
		Name:          "Old Org",
		AdminEmail:    "admin@old.test",
		AdminPassword: "pw",
		Status:        domain.StatusActive,
	}
	require.NoError(t, env.store.Create(context.Background(), rec))

	legacy := naming.LegacyTenantDatabase("billing", rec.Name)
	db := env.fake(cluster.Billing).DB(legacy)
	userColl := naming.UserCollection(rec.Name)
	require.NoError(t, db.CreateCollection(context.Background(), userColl))
	require.NoError(t, db.InsertOne(context.Background(), userColl, domain.ServiceCredential{
		TenantID:    rec.TenantID,
		TenantName:  rec.Name,
		Email:       rec.AdminEmail,
		Password:    rec.AdminPassword,
		Role:        "admin",
		IsActive:    true,
		ServiceType: "billing",
	}))

	a := NewAuthenticator(env.clusters, env.store, 0)
	res, err := a.Authenticate(context.Background(), rec.TenantID, rec.AdminEmail, rec.AdminPassword)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, []string{"billing"}, res.AuthenticatedServices)
}
