// Package health contiene los endpoints de liveness y readiness.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
)

// Controller expone /healthz y /readyz.
type Controller struct {
	clusters *cluster.Registry
}

// NewController crea el controller.
func NewController(clusters *cluster.Registry) *Controller {
	return &Controller{clusters: clusters}
}

// Healthz responde liveness: el proceso está vivo.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Readyz responde readiness: el cluster de registro contesta. Los clusters de
// servicio NO entran acá a propósito: uno caído degrada el provisioning pero
// el servicio sigue siendo útil (OR federado, CRUD del registro).
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := c.clusters.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "reason": "registry cluster unreachable"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
