package dto

// LoginRequest es un intento de login federado.
type LoginRequest struct {
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser es la proyección pública de la credencial representativa.
type LoginUser struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	ServiceType string   `json:"serviceType"`
}

// LoginResponse scope: authenticatedServices lista SOLO los servicios que
// reconocieron la credencial; el caller no debe asumir acceso a los demás.
type LoginResponse struct {
	Success               bool      `json:"success"`
	Token                 string    `json:"token,omitempty"`
	TenantName            string    `json:"tenantName"`
	AuthenticatedServices []string  `json:"authenticatedServices"`
	User                  LoginUser `json:"user"`
}
