package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/tenantplane/internal/http/errors"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
	"github.com/dropDatabas3/tenantplane/internal/rate"
)

// LoginRateKey arma la key de rate limiting del login: tenantId + IP, así un
// atacante no puede quemar la ventana de un tenant desde muchos tenants ni
// la de toda una IP compartida contra un solo tenant.
func LoginRateKey(r *http.Request) string {
	tenantID := extractJSONField(r, "tenantId", 4096)
	if tenantID == "" {
		tenantID = "-"
	}
	return tenantID + "|" + clientIP(r)
}

// extractJSONField lee hasta max bytes del body JSON para extraer un campo y
// repone el body para el handler.
func extractJSONField(r *http.Request, field string, max int64) string {
	if r.Method != http.MethodPost ||
		!strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r.Body, max)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))

	var tmp map[string]any
	if err := json.Unmarshal(buf.Bytes(), &tmp); err == nil {
		if s, ok := tmp[field].(string); ok {
			return s
		}
	}
	return ""
}

// WithLoginRateLimit limita intentos de login. Limiter nil desactiva.
func WithLoginRateLimit(limiter rate.Limiter) Middleware {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), LoginRateKey(r))
			if err != nil {
				// Limiter caído no bloquea logins.
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				errors.WriteError(w, r, errors.ErrRateLimited)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
