package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/cluster/clustertest"
	"github.com/dropDatabas3/tenantplane/internal/federation"
	authctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/health"
	tenantsctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/tenants"
	authsvc "github.com/dropDatabas3/tenantplane/internal/http/services/auth"
	tenantssvc "github.com/dropDatabas3/tenantplane/internal/http/services/tenants"
	"github.com/dropDatabas3/tenantplane/internal/provision"
	"github.com/dropDatabas3/tenantplane/internal/rate"
	"github.com/dropDatabas3/tenantplane/internal/registry"
	"github.com/dropDatabas3/tenantplane/internal/security/password"
)

const testAdminKey = "test-admin-key"

type apiEnv struct {
	handler http.Handler
	fakes   map[string]*clustertest.FakeCluster
	down    map[string]bool
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	env := &apiEnv{
		fakes: map[string]*clustertest.FakeCluster{},
		down:  map[string]bool{},
	}
	uris := map[string]string{cluster.RegistryKey: "mongodb://" + cluster.RegistryKey}
	env.fakes[cluster.RegistryKey] = clustertest.NewFakeCluster()
	for _, svc := range cluster.Services() {
		uris[svc.String()] = "mongodb://" + svc.String()
		env.fakes[svc.String()] = clustertest.NewFakeCluster()
	}
	clusters := cluster.NewRegistry(cluster.RegistryConfig{
		URIs: uris,
		Dial: func(ctx context.Context, uri string) (cluster.Conn, error) {
			key := uri[len("mongodb://"):]
			if env.down[key] {
				return nil, errors.New("connection refused")
			}
			return env.fakes[key], nil
		},
	})

	store := registry.NewStore(clusters, "tenant_registry")
	prov := provision.NewProvisioner(clusters, 0)
	deprov := provision.NewDeprovisioner(clusters, store, 0)
	authn := federation.NewAuthenticator(clusters, store, 0)

	hash, err := password.Hash(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}, testAdminKey)
	require.NoError(t, err)

	env.handler = New(Deps{
		Tenants: tenantsctrl.NewController(tenantssvc.NewService(tenantssvc.Deps{
			Store:         store,
			Provisioner:   prov,
			Deprovisioner: deprov,
		})),
		Auth: authctrl.NewController(authsvc.NewService(authsvc.Deps{
			Authenticator: authn,
			JWTSecret:     "test-secret",
			JWTIssuer:     "tenantplane-test",
			AccessTTL:     time.Hour,
		})),
		Health:          healthctrl.NewController(clusters),
		AdminAPIKeyHash: hash,
		LoginLimiter:    rate.NewMemoryLimiter(100, time.Minute),
	})
	return env
}

func (e *apiEnv) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Admin-API-Key", testAdminKey)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func createTenant(t *testing.T, env *apiEnv) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/v1/admin/tenants", map[string]string{
		"name":          "Acme Co.",
		"adminEmail":    "admin@acme.test",
		"adminPassword": "s3cret",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Tenant struct {
			TenantID string `json:"tenantId"`
		} `json:"tenant"`
		Provisioning struct {
			OverallSuccess bool `json:"overallSuccess"`
		} `json:"provisioning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.True(t, out.Provisioning.OverallSuccess)
	require.NotEmpty(t, out.Tenant.TenantID)
	return out.Tenant.TenantID
}

func TestAdminPlaneRequiresAPIKey(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/admin/tenants", nil, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTenantAndLogin(t *testing.T) {
	env := newAPIEnv(t)
	tenantID := createTenant(t, env)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"tenantId": tenantID,
		"email":    "admin@acme.test",
		"password": "s3cret",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Success               bool     `json:"success"`
		Token                 string   `json:"token"`
		TenantName            string   `json:"tenantName"`
		AuthenticatedServices []string `json:"authenticatedServices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.True(t, out.Success)
	require.NotEmpty(t, out.Token)
	require.Equal(t, "Acme Co.", out.TenantName)
	require.Equal(t, []string{"billing", "crm", "pingora"}, out.AuthenticatedServices)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newAPIEnv(t)
	tenantID := createTenant(t, env)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"tenantId": tenantID,
		"email":    "admin@acme.test",
		"password": "wrong",
	}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownTenant(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"tenantId": "org_nope",
		"email":    "x@y.z",
		"password": "p",
	}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var out struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "UNKNOWN_TENANT", out.Code)
}

func TestDeleteTenantDeprovisions(t *testing.T) {
	env := newAPIEnv(t)
	tenantID := createTenant(t, env)

	rec := env.do(t, http.MethodDelete, "/v1/admin/tenants/"+tenantID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// El tenant ya no existe ni para el login.
	rec = env.do(t, http.MethodGet, "/v1/admin/tenants/"+tenantID, nil, true)
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.NotEmpty(t, env.fakes["billing"].DroppedDatabases())
}

func TestPartialProvisioningSurfacedToOperator(t *testing.T) {
	env := newAPIEnv(t)
	env.down["crm"] = true

	rec := env.do(t, http.MethodPost, "/v1/admin/tenants", map[string]string{
		"name":          "Globex",
		"adminEmail":    "admin@globex.test",
		"adminPassword": "pw",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out struct {
		Provisioning struct {
			OverallSuccess bool `json:"overallSuccess"`
			PerService     map[string]struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			} `json:"perService"`
		} `json:"provisioning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.False(t, out.Provisioning.OverallSuccess)
	require.False(t, out.Provisioning.PerService["crm"].Success)
	require.True(t, out.Provisioning.PerService["billing"].Success)
}

func TestHealthz(t *testing.T) {
	env := newAPIEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
}
