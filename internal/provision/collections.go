package provision

import "github.com/dropDatabas3/tenantplane/internal/cluster"

// Sets fijos de colecciones por servicio. Esto es el esquema implícito del
// tenant: cada base nueva nace con exactamente estas colecciones más
// user_<sanitizedName> y <service>_config.

var billingCollections = []string{
	"invoices",
	"payments",
	"subscriptions",
	"plans",
	"transactions",
	"credit_notes",
	"tax_rates",
	"payment_methods",
}

var crmCollections = []string{
	"contacts",
	"leads",
	"deals",
	"accounts",
	"activities",
	"pipelines",
	"notes",
	"tasks",
}

// pingoraCollections es el set de colaboración. Es grande porque pingora
// concentra todo el workspace del tenant.
var pingoraCollections = []string{
	"boards",
	"lists",
	"cards",
	"comments",
	"attachments",
	"channels",
	"messages",
	"threads",
	"reactions",
	"mentions",
	"notifications",
	"calendars",
	"events",
	"reminders",
	"documents",
	"document_versions",
	"folders",
	"wikis",
	"wiki_pages",
	"projects",
	"milestones",
	"sprints",
	"issues",
	"labels",
	"checklists",
	"time_entries",
	"integrations",
	"webhooks",
	"audit_log",
	"presence",
}

// ServiceCollections retorna el set fijo de colecciones de un servicio
// (sin incluir user_<name> ni <service>_config, que se agregan aparte).
func ServiceCollections(svc cluster.Service) []string {
	switch svc {
	case cluster.Billing:
		return billingCollections
	case cluster.CRM:
		return crmCollections
	case cluster.Pingora:
		return pingoraCollections
	}
	return nil
}

// AdminPermissions retorna los permission strings del admin seed de cada
// servicio.
func AdminPermissions(svc cluster.Service) []string {
	switch svc {
	case cluster.Billing:
		return []string{"billing:read", "billing:write", "billing:invoices", "billing:admin"}
	case cluster.CRM:
		return []string{"crm:read", "crm:write", "crm:pipelines", "crm:admin"}
	case cluster.Pingora:
		return []string{"pingora:read", "pingora:write", "pingora:manage_workspace", "pingora:admin"}
	}
	return nil
}
