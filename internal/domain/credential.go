package domain

import "time"

// ServiceCredential es el documento de credencial que vive DENTRO de la base
// por-tenant de cada servicio. El registro central nunca lo lee ni lo escribe
// salvo durante el provisioning (seed del admin).
//
// El password se compara por igualdad exacta (paridad con el sistema actual).
// Cualquier endurecimiento a hash+salt es un cambio de comportamiento que
// requiere migración coordinada de los tres clusters.
type ServiceCredential struct {
	TenantID    string    `bson:"tenantId" json:"tenantId"`
	TenantName  string    `bson:"tenantName" json:"tenantName"`
	Email       string    `bson:"email" json:"email"`
	Password    string    `bson:"password" json:"-"`
	Role        string    `bson:"role" json:"role"`
	Permissions []string  `bson:"permissions" json:"permissions"`
	IsActive    bool      `bson:"isActive" json:"isActive"`
	ServiceType string    `bson:"serviceType" json:"serviceType"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TenantMetadata es el documento de metadata que espeja la identidad del
// TenantRecord dentro de cada base por-servicio.
type TenantMetadata struct {
	TenantID    string    `bson:"tenantId" json:"tenantId"`
	TenantName  string    `bson:"tenantName" json:"tenantName"`
	ServiceType string    `bson:"serviceType" json:"serviceType"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
