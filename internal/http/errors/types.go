// Package errors define el catálogo de errores HTTP de la API y su mapeo
// desde los errores de dominio.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/tenantplane/internal/domain"
)

// AppError define la estructura estándar de los errores de la API.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail retorna una COPIA con detalle extra (no muta los globales base).
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause retorna una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// FromError normaliza cualquier error a AppError: los de dominio se mapean a
// su status; el resto es un 500 genérico que conserva la causa para el log.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch {
	case stderrors.Is(err, domain.ErrUnknownTenant):
		return ErrUnknownTenant.WithCause(err)
	case stderrors.Is(err, domain.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case stderrors.Is(err, domain.ErrConflict):
		return ErrConflict.WithCause(err)
	case stderrors.Is(err, domain.ErrInvalidInput):
		return ErrBadRequest.WithDetail(err.Error()).WithCause(err)
	case stderrors.Is(err, domain.ErrClusterUnreachable):
		return ErrClusterUnavailable.WithCause(err)
	}
	return ErrInternal.WithCause(err)
}

// ─── Catálogo ───

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Faltan campos requeridos en la solicitud.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Credenciales de autenticación faltantes o inválidas.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Ningún servicio reconoció las credenciales.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrUnknownTenant = &AppError{
		Code:       "UNKNOWN_TENANT",
		Message:    "El tenant no existe en el registro.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "El recurso ya existe.",
		HTTPStatus: http.StatusConflict,
	}

	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Demasiados intentos. Reintente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrClusterUnavailable = &AppError{
		Code:       "CLUSTER_UNAVAILABLE",
		Message:    "Un cluster de datos no está disponible.",
		HTTPStatus: http.StatusServiceUnavailable,
	}

	ErrInternal = &AppError{
		Code:       "INTERNAL",
		Message:    "Error interno del servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
