// Package auth implementa el service de login federado: delega la decisión
// al Authenticator y emite el token de sesión acotado a los servicios que
// reconocieron la credencial.
package auth

import (
	"context"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/tenantplane/internal/audit"
	"github.com/dropDatabas3/tenantplane/internal/federation"
	httperrors "github.com/dropDatabas3/tenantplane/internal/http/errors"
	"github.com/dropDatabas3/tenantplane/internal/http/dto"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
	"github.com/dropDatabas3/tenantplane/internal/util"
)

// Deps contiene las dependencias del service.
type Deps struct {
	Authenticator *federation.Authenticator
	JWTSecret     string
	JWTIssuer     string
	AccessTTL     time.Duration
}

// Service resuelve logins y emite tokens.
type Service struct {
	deps Deps
}

// NewService crea el service.
func NewService(deps Deps) *Service {
	if deps.AccessTTL <= 0 {
		deps.AccessTTL = 12 * time.Hour
	}
	return &Service{deps: deps}
}

// Login ejecuta la autenticación federada y, si algún servicio aceptó, emite
// un JWT HS256 con los servicios autenticados como claim.
func (s *Service) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	// Paso 0: normalización
	in.TenantID = strings.TrimSpace(in.TenantID)
	in.Email = strings.TrimSpace(in.Email)
	if in.TenantID == "" || in.Email == "" || in.Password == "" {
		return nil, httperrors.ErrMissingFields.WithDetail("tenantId, email and password are required")
	}

	// Paso 1: OR federado sobre los tres servicios
	res, err := s.deps.Authenticator.Authenticate(ctx, in.TenantID, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	audit.LoginAttempt(ctx, in.TenantID, util.MaskEmail(in.Email), res.Success, res.AuthenticatedServices)

	if !res.Success {
		return nil, httperrors.ErrInvalidCredentials
	}

	// Paso 2: token acotado a los servicios que confirmaron
	token, err := s.issueToken(in.TenantID, res)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, httperrors.ErrInternal.WithCause(err)
	}

	return &dto.LoginResponse{
		Success:               true,
		Token:                 token,
		TenantName:            res.TenantName,
		AuthenticatedServices: res.AuthenticatedServices,
		User: dto.LoginUser{
			Email:       res.User.Email,
			Role:        res.User.Role,
			Permissions: res.User.Permissions,
			ServiceType: res.User.ServiceType,
		},
	}, nil
}

func (s *Service) issueToken(tenantID string, res *federation.Result) (string, error) {
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"iss":         s.deps.JWTIssuer,
		"sub":         res.User.Email,
		"tid":         tenantID,
		"tenant_name": res.TenantName,
		"services":    res.AuthenticatedServices,
		"role":        res.User.Role,
		"iat":         now.Unix(),
		"exp":         now.Add(s.deps.AccessTTL).Unix(),
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tok.SignedString([]byte(s.deps.JWTSecret))
}
