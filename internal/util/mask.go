// Package util tiene helpers chicos sin dependencias.
package util

import "strings"

// MaskEmail enmascara un email para logs: conserva los primeros caracteres
// del local part y el dominio completo. "admin@acme.test" → "ad***@acme.test".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	keep := 2
	if len(local) < keep {
		keep = len(local)
	}
	return local[:keep] + "***" + email[at:]
}
