package domain

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: tenantId duplicado).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownTenant indica que el tenantId no existe en el registro.
	// Fatal para un intento de autenticación: corta antes de sondear servicios.
	ErrUnknownTenant = errors.New("unknown tenant")

	// ErrClusterUnreachable indica que no se pudo establecer (o expiró) la
	// conexión con un cluster de servicio. Siempre aislado por servicio.
	ErrClusterUnreachable = errors.New("cluster unreachable")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnknownTenant verifica si el error es ErrUnknownTenant.
func IsUnknownTenant(err error) bool {
	return errors.Is(err, ErrUnknownTenant)
}
