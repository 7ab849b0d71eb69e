package email

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
	"github.com/dropDatabas3/tenantplane/internal/provision"
)

// AlertMailer avisa al operador cuando un fan-out dejó estado inconsistente.
// Los errores de envío se loguean y se descartan: un SMTP caído no puede
// convertir un partial failure en un failure total del request.
type AlertMailer struct {
	sender Sender
	to     string
}

// NewAlertMailer crea el mailer. to vacío desactiva los envíos.
func NewAlertMailer(sender Sender, to string) *AlertMailer {
	return &AlertMailer{sender: sender, to: to}
}

// Enabled informa si hay destino configurado.
func (m *AlertMailer) Enabled() bool { return m != nil && m.to != "" && m.sender != nil }

// ProvisioningFailure envía el detalle de un provisioning con fallas.
func (m *AlertMailer) ProvisioningFailure(ctx context.Context, tenantID, tenantName string, res *provision.Result) {
	if !m.Enabled() || res.OverallSuccess {
		return
	}
	subject := fmt.Sprintf("[tenantplane] provisioning parcial para %s (%s)", tenantName, tenantID)
	m.send(ctx, subject, tenantID, res.PerService,
		"El tenant quedó activo en el registro con servicios sin provisionar. Reintentar el provisioning cuando el cluster vuelva.")
}

// DeprovisioningFailure envía el detalle de un deprovisioning con fallas.
func (m *AlertMailer) DeprovisioningFailure(ctx context.Context, tenantID, tenantName string, res *provision.DeprovisionResult) {
	if !m.Enabled() || res.OverallSuccess {
		return
	}
	subject := fmt.Sprintf("[tenantplane] deprovisioning parcial para %s (%s)", tenantName, tenantID)
	m.send(ctx, subject, tenantID, res.PerService,
		"El registro ya fue borrado; las bases listadas como failed quedaron huérfanas y hay que droparlas a mano.")
}

func (m *AlertMailer) send(ctx context.Context, subject, tenantID string, perService map[string]provision.ServiceResult, footer string) {
	var b strings.Builder
	b.WriteString("Resultado por servicio:\n\n")

	services := make([]string, 0, len(perService))
	for svc := range perService {
		services = append(services, svc)
	}
	sort.Strings(services)
	for _, svc := range services {
		sr := perService[svc]
		if sr.Success {
			fmt.Fprintf(&b, "  %-8s OK    %s\n", svc, sr.DatabaseName)
		} else {
			fmt.Fprintf(&b, "  %-8s FAIL  %s\n", svc, sr.Error)
		}
	}
	b.WriteString("\n" + footer + "\n")

	if err := m.sender.Send(m.to, subject, "", b.String()); err != nil {
		logger.From(ctx).Warn("operator alert not sent",
			logger.Component("email.alerts"), logger.TenantID(tenantID), logger.Err(err))
	}
}
