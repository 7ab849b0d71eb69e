// Package naming computa los identificadores determinísticos de las bases
// por-tenant. Funciones puras y totales: tres clusters autónomos acuerdan
// "de quién es este dato" solo a partir de estos strings, sin esquema
// compartido.
package naming

import "strings"

// Sanitize normaliza un nombre visible a [a-z0-9_]: lowercase y todo
// caracter fuera de [a-z0-9] se reemplaza por '_'. Total: nunca falla,
// acepta cualquier input Unicode imprimible.
func Sanitize(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// TenantDatabase computa el nombre canónico de la base de un tenant en un
// servicio: "{service}_{tenantId}_{sanitize(name)}".
//
// Incluye el tenantId para que dos tenants con el mismo nombre sanitizado
// nunca colisionen. Estable durante toda la vida del tenant.
func TenantDatabase(service, tenantID, name string) string {
	return service + "_" + tenantID + "_" + Sanitize(name)
}

// LegacyTenantDatabase computa la forma legacy (pre-tenantId):
// "{service}_{sanitize(name)}". Solo para resolver bases provisionadas antes
// de que el tenantId entrara al esquema de nombres; los callers prueban
// primero la forma canónica y caen a esta solo si aquella no tiene datos.
func LegacyTenantDatabase(service, name string) string {
	return service + "_" + Sanitize(name)
}

// UserCollection computa el nombre de la colección de credenciales dentro de
// la base por-tenant: "user_{sanitize(name)}".
func UserCollection(name string) string {
	return "user_" + Sanitize(name)
}

// ConfigCollection computa el nombre de la colección de configuración del
// servicio dentro de la base por-tenant: "{service}_config".
func ConfigCollection(service string) string {
	return service + "_config"
}
