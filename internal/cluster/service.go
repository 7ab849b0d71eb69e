// Package cluster provee el registry de conexiones a los clusters de datos
// externos: el cluster de registro central más un cluster por servicio.
// Una conexión persistente por cluster, establecida en el primer uso y
// reutilizada durante toda la vida del proceso.
package cluster

// Service identifica uno de los clusters de servicio. Enum cerrado: agregar
// o quitar un servicio es un cambio verificado en compile-time a través de
// provisioning, autenticación y deprovisioning a la vez.
type Service string

const (
	// Billing es el cluster de facturación.
	Billing Service = "billing"

	// CRM es el cluster de CRM.
	CRM Service = "crm"

	// Pingora es el cluster de colaboración.
	Pingora Service = "pingora"
)

// RegistryKey es la key del cluster de registro central dentro del Registry.
// No es un Service: ningún orquestador lo recorre en el fan-out.
const RegistryKey = "registry"

// Services retorna los servicios en orden fijo. El orden no tiene semántica
// pero debe ser determinístico para logs y resultados reproducibles.
func Services() []Service {
	return []Service{Billing, CRM, Pingora}
}

// Valid verifica que el servicio sea uno de los conocidos.
func (s Service) Valid() bool {
	switch s {
	case Billing, CRM, Pingora:
		return true
	}
	return false
}

func (s Service) String() string { return string(s) }
