package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/cluster/clustertest"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/naming"
)

// testEnv arma un Registry real con un FakeCluster por servicio más el de
// registro central. Los dials resuelven por URI.
type testEnv struct {
	clusters *cluster.Registry
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
	return env
}

func (e *testEnv) fake(svc cluster.Service) *clustertest.FakeCluster {
	return e.fakes[svc.String()]
}

var acme = Identity{
	TenantID:      "org_a1b2c3d4e5f601234567",
	Name:          "Acme Co.",
	AdminEmail:    "admin@acme.test",
	AdminPassword: "s3cret",
}

func TestProvision_AllServicesSucceed(t *testing.T) {
	env := newTestEnv(t)
	p := NewProvisioner(env.clusters, 0)

	res := p.Provision(context.Background(), acme)
	require.True(t, res.OverallSuccess)
	require.Len(t, res.PerService, 3)

	for _, svc := range cluster.Services() {
		sr := res.PerService[svc.String()]
		require.True(t, sr.Success, svc)
		wantDB := naming.TenantDatabase(svc.String(), acme.TenantID, acme.Name)
		require.Equal(t, wantDB, sr.DatabaseName)

		db := env.fake(svc).DB(wantDB)
		require.True(t, db.HasCollection("user_acme_co_"))
		require.True(t, db.HasCollection(svc.String()+"_config"))
		for _, coll := range ServiceCollections(svc) {
			require.True(t, db.HasCollection(coll), coll)
		}

		// Documento seed del admin.
		creds := db.Docs("user_acme_co_")
		require.Len(t, creds, 1)
		cred := creds[0].(domain.ServiceCredential)
		require.Equal(t, "admin", cred.Role)
		require.Equal(t, acme.AdminEmail, cred.Email)
		require.Equal(t, svc.String(), cred.ServiceType)
		require.True(t, cred.IsActive)
		require.NotEmpty(t, cred.Permissions)

		// Documento de metadata.
		metas := db.Docs(svc.String() + "_config")
		require.Len(t, metas, 1)
		meta := metas[0].(domain.TenantMetadata)
		require.Equal(t, acme.TenantID, meta.TenantID)
		require.Equal(t, "Acme Co.", meta.TenantName)
	}
}

func TestProvision_PartialFailureIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.down["crm"] = true
	p := NewProvisioner(env.clusters, 0)

	res := p.Provision(context.Background(), acme)
	require.False(t, res.OverallSuccess)

	require.True(t, res.PerService["billing"].Success)
	require.True(t, res.PerService["pingora"].Success)
	require.False(t, res.PerService["crm"].Success)
	require.NotEmpty(t, res.PerService["crm"].Error)

	// Los servicios que sí terminaron no se revierten.
	billingDB := naming.TenantDatabase("billing", acme.TenantID, acme.Name)
	require.True(t, env.fake(cluster.Billing).HasDatabase(billingDB))
}

func TestProvision_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	p := NewProvisioner(env.clusters, 0)

	first := p.Provision(context.Background(), acme)
	require.True(t, first.OverallSuccess)

	second := p.Provision(context.Background(), acme)
	require.True(t, second.OverallSuccess, "re-run must not fail on existing collections")

	// Los documentos seed se upsertean, no se duplican.
	for _, svc := range cluster.Services() {
		db := env.fake(svc).DB(naming.TenantDatabase(svc.String(), acme.TenantID, acme.Name))
		require.Len(t, db.Docs("user_acme_co_"), 1)
		require.Len(t, db.Docs(svc.String()+"_config"), 1)
	}
}

func TestProvision_CollectionErrorIsolatedToService(t *testing.T) {
	env := newTestEnv(t)
	dbName := naming.TenantDatabase("billing", acme.TenantID, acme.Name)
	env.fake(cluster.Billing).DB(dbName).CreateCollectionErr = errors.New("disk full")
	p := NewProvisioner(env.clusters, 0)

	res := p.Provision(context.Background(), acme)
	require.False(t, res.OverallSuccess)
	require.False(t, res.PerService["billing"].Success)
	require.Contains(t, res.PerService["billing"].Error, "disk full")
	require.True(t, res.PerService["crm"].Success)
	require.True(t, res.PerService["pingora"].Success)
}

func TestProvision_DatabaseNamesDifferPerTenantWithSameName(t *testing.T) {
	env := newTestEnv(t)
	p := NewProvisioner(env.clusters, 0)

	other := acme
	other.TenantID = "org_ffff000011112222"

	require.True(t, p.Provision(context.Background(), acme).OverallSuccess)
	require.True(t, p.Provision(context.Background(), other).OverallSuccess)

	a := naming.TenantDatabase("billing", acme.TenantID, acme.Name)
	b := naming.TenantDatabase("billing", other.TenantID, other.Name)
	require.NotEqual(t, a, b)
	require.True(t, env.fake(cluster.Billing).HasDatabase(a))
	require.True(t, env.fake(cluster.Billing).HasDatabase(b))
}
