// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/health"
	tenantsctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/tenants"
	mw "github.com/dropDatabas3/tenantplane/internal/http/middlewares"
	"github.com/dropDatabas3/tenantplane/internal/metrics"
	"github.com/dropDatabas3/tenantplane/internal/rate"
)

// Deps contiene todo lo que el router necesita para registrar rutas.
type Deps struct {
	Tenants *tenantsctrl.Controller
	Auth    *authctrl.Controller
	Health  *healthctrl.Controller

	// AdminAPIKeyHash protege /v1/admin (argon2id PHC).
	AdminAPIKeyHash string

	// LoginLimiter limita /v1/auth/login. nil desactiva.
	LoginLimiter rate.Limiter

	// MetricsHandler sirve /metrics. nil desactiva.
	MetricsHandler http.Handler
}

// New construye el router completo.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestContext())
	r.Use(mw.WithRecover())
	r.Use(metrics.WithMetrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireAdminKey(deps.AdminAPIKeyHash))

			r.Route("/tenants", func(r chi.Router) {
				r.Post("/", deps.Tenants.Create)
				r.Get("/", deps.Tenants.List)
				r.Route("/{tenantID}", func(r chi.Router) {
					r.Get("/", deps.Tenants.Get)
					r.Patch("/", deps.Tenants.Update)
					r.Delete("/", deps.Tenants.Delete)
					r.Post("/provision", deps.Tenants.Provision)
				})
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(mw.WithLoginRateLimit(deps.LoginLimiter)).Post("/login", deps.Auth.Login)
		})
	})

	return r
}
