package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantplane/internal/provision"
)

type captureSender struct {
	to, subject, text string
	sent              int
}

func (c *captureSender) Send(to, subject, htmlBody, textBody string) error {
	c.to, c.subject, c.text = to, subject, textBody
	c.sent++
	return nil
}

func TestAlertMailer_SendsOnPartialFailure(t *testing.T) {
	cap := &captureSender{}
	m := NewAlertMailer(cap, "ops@example.test")

	m.ProvisioningFailure(context.Background(), "org_x", "Acme Co.", &provision.Result{
		OverallSuccess: false,
		PerService: map[string]provision.ServiceResult{
			"billing": {Success: true, DatabaseName: "billing_org_x_acme_co_"},
			"crm":     {Success: false, Error: "connection refused"},
			"pingora": {Success: true, DatabaseName: "pingora_org_x_acme_co_"},
		},
	})

	require.Equal(t, 1, cap.sent)
	require.Equal(t, "ops@example.test", cap.to)
	require.Contains(t, cap.subject, "org_x")
	require.Contains(t, cap.text, "crm")
	require.Contains(t, cap.text, "connection refused")
	require.Contains(t, cap.text, "billing_org_x_acme_co_")
}

func TestAlertMailer_SilentOnSuccessOrDisabled(t *testing.T) {
	cap := &captureSender{}
	m := NewAlertMailer(cap, "ops@example.test")

	m.ProvisioningFailure(context.Background(), "org_x", "Acme", &provision.Result{OverallSuccess: true})
	require.Zero(t, cap.sent)

	disabled := NewAlertMailer(cap, "")
	disabled.ProvisioningFailure(context.Background(), "org_x", "Acme", &provision.Result{OverallSuccess: false})
	require.Zero(t, cap.sent)
	require.False(t, disabled.Enabled())
}
