package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/tenantplane/internal/http/errors"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
	"github.com/dropDatabas3/tenantplane/internal/security/password"
)

// AdminKeyHeader es el header con el API key de operador.
const AdminKeyHeader = "X-Admin-API-Key"

// RequireAdminKey exige un X-Admin-API-Key cuyo argon2id matchee el hash
// configurado. Sin hash configurado, el plano admin queda cerrado (fail
// closed): mejor un 401 explícito que un endpoint de provisioning abierto.
func RequireAdminKey(apiKeyHash string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKeyHash == "" {
				logger.From(r.Context()).Warn("admin API key hash not configured; rejecting")
				errors.WriteError(w, r, errors.ErrUnauthorized.WithDetail("admin API key not configured"))
				return
			}

			key := strings.TrimSpace(r.Header.Get(AdminKeyHeader))
			if key == "" || !password.Verify(key, apiKeyHash) {
				errors.WriteError(w, r, errors.ErrUnauthorized.WithDetail("invalid admin API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
