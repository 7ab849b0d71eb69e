// Package audit registra eventos de auditoría del ciclo de vida de tenants.
// Hoy el sink es el logger estructurado; a futuro puede colgarse una DB o un
// sink externo sin tocar a los callers.
package audit

import (
	"context"

	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
)

// Event escribe un evento de auditoría estructurado.
func Event(ctx context.Context, event string, fields map[string]any) {
	zf := []logger.Field{logger.Component("audit"), logger.String("event", event)}
	for k, v := range fields {
		zf = append(zf, logger.Any(k, v))
	}
	logger.From(ctx).Info("audit", zf...)
}

// TenantProvisioned audita el resultado de un provisioning.
func TenantProvisioned(ctx context.Context, tenantID string, overallSuccess bool) {
	Event(ctx, "tenant.provisioned", map[string]any{
		"tenantId":       tenantID,
		"overallSuccess": overallSuccess,
	})
}

// TenantDeprovisioned audita un deprovisioning.
func TenantDeprovisioned(ctx context.Context, tenantID string, overallSuccess bool) {
	Event(ctx, "tenant.deprovisioned", map[string]any{
		"tenantId":       tenantID,
		"overallSuccess": overallSuccess,
	})
}

// LoginAttempt audita un intento de login federado (email ya enmascarado por
// el caller).
func LoginAttempt(ctx context.Context, tenantID, maskedEmail string, success bool, services []string) {
	Event(ctx, "auth.login", map[string]any{
		"tenantId": tenantID,
		"email":    maskedEmail,
		"success":  success,
		"services": services,
	})
}
