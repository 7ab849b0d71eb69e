// Package federation implementa la autenticación federada: dado
// (tenantId, email, password), resuelve el tenant en el registro central y
// sondea la colección de credenciales de ese tenant en cada cluster de
// servicio. La política es un OR federado: basta con que UN servicio
// reconozca la credencial para que el login sea válido, y la respuesta lista
// exactamente qué servicios la reconocieron para que el caller acote la
// sesión a esos servicios.
package federation

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/metrics"
	"github.com/dropDatabas3/tenantplane/internal/naming"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
	"github.com/dropDatabas3/tenantplane/internal/util"
)

// Result es el resultado de un intento de autenticación federada.
type Result struct {
	Success               bool                      `json:"success"`
	User                  *domain.ServiceCredential `json:"user,omitempty"`
	TenantName            string                    `json:"tenantName,omitempty"`
	AuthenticatedServices []string                  `json:"authenticatedServices"`
}

// Authenticator resuelve logins contra el registro central y los tres
// clusters de servicio.
type Authenticator struct {
	clusters *cluster.Registry
	store    domain.TenantStore

	perServiceTimeout time.Duration
}

// NewAuthenticator crea el autenticador. timeout <= 0 usa el default (10s).
func NewAuthenticator(clusters *cluster.Registry, store domain.TenantStore, timeout time.Duration) *Authenticator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Authenticator{clusters: clusters, store: store, perServiceTimeout: timeout}
}

// Authenticate responde "¿(tenantId, email, password) autentica, y contra qué
// servicios?".
//
// Si el tenantId no existe en el registro, corta acá con ErrUnknownTenant sin
// sondear ningún servicio: cero probes para tenants inexistentes (no filtra
// topología de servicios). Un error sondeando un servicio degrada a "ese
// servicio no autenticó", nunca tumba el intento completo: un cluster caído
// no puede dejar a todos los tenants afuera de los otros dos.
func (a *Authenticator) Authenticate(ctx context.Context, tenantID, email, password string) (*Result, error) {
	log := logger.From(ctx).With(
		logger.Component("federation"),
		logger.TenantID(tenantID),
		logger.Email(util.MaskEmail(email)),
	)

	rec, err := a.store.GetByID(ctx, tenantID)
	if err != nil {
		if domain.IsNotFound(err) {
			metrics.RecordAuthAttempt("unknown_tenant")
			log.Warn("login for unknown tenant")
			return nil, domain.ErrUnknownTenant
		}
		return nil, err
	}

	services := cluster.Services()
	hits := make([]*domain.ServiceCredential, len(services))

	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Add(1)
		go func(i int, svc cluster.Service) {
			defer wg.Done()

			svcCtx, cancel := context.WithTimeout(ctx, a.perServiceTimeout)
			defer cancel()

			cred, err := a.probeService(svcCtx, svc, rec, email, password)
			if err != nil {
				// Degrada: este servicio no autentica, los demás siguen.
				log.Warn("service probe failed", logger.Service(svc.String()), logger.Err(err))
				return
			}
			hits[i] = cred
		}(i, svc)
	}
	wg.Wait()

	res := &Result{TenantName: rec.Name, AuthenticatedServices: []string{}}
	for i, svc := range services {
		if hits[i] == nil {
			continue
		}
		res.AuthenticatedServices = append(res.AuthenticatedServices, svc.String())
		metrics.RecordAuthServiceHit(svc.String())
		// El usuario representativo es el del primer servicio (orden fijo)
		// que reconoció la credencial.
		if res.User == nil {
			res.User = hits[i]
		}
	}
	res.Success = len(res.AuthenticatedServices) > 0

	if res.Success {
		metrics.RecordAuthAttempt("ok")
		log.Info("federated login accepted",
			logger.TenantName(rec.Name),
			logger.Count(len(res.AuthenticatedServices)))
	} else {
		metrics.RecordAuthAttempt("rejected")
		log.Info("federated login rejected by all services")
	}
	return res, nil
}

// probeService busca la credencial en la base por-tenant de un servicio.
// Retorna (nil, nil) si la credencial no matchea o la base no existe.
func (a *Authenticator) probeService(ctx context.Context, svc cluster.Service, rec *domain.TenantRecord, email, password string) (*domain.ServiceCredential, error) {
	conn, err := a.clusters.ServiceConn(ctx, svc)
	if err != nil {
		return nil, err
	}

	db, err := resolveTenantDatabase(ctx, conn, svc, rec)
	if err != nil {
		return nil, err
	}
	if db == nil {
		// El tenant no tiene base en este servicio (provisioning parcial).
		return nil, nil
	}

	filter := map[string]any{
		"tenantId": rec.TenantID,
		"email":    email,
		"password": password,
		"isActive": true,
	}
	var cred domain.ServiceCredential
	if err := db.FindOne(ctx, naming.UserCollection(rec.Name), filter, &cred); err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

// resolveTenantDatabase resuelve la base del tenant: primero la forma
// canónica, y cae a la legacy solo si la canónica no tiene colecciones.
// Retorna nil si ninguna forma existe.
func resolveTenantDatabase(ctx context.Context, conn cluster.Conn, svc cluster.Service, rec *domain.TenantRecord) (cluster.Database, error) {
	canonical := conn.Database(naming.TenantDatabase(svc.String(), rec.TenantID, rec.Name))
	names, err := canonical.ListCollectionNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return canonical, nil
	}

	legacy := conn.Database(naming.LegacyTenantDatabase(svc.String(), rec.Name))
	names, err = legacy.ListCollectionNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return legacy, nil
	}
	return nil, nil
}
