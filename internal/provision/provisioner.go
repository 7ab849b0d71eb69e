// Package provision implementa los orquestadores de provisioning y
// deprovisioning: el fan-out que materializa (o destruye) la presencia de un
// tenant en cada cluster de servicio.
//
// Política central: éxito parcial tolerado. Cada servicio se provisiona en
// forma independiente, los errores quedan aislados en su entrada del
// resultado y NUNCA hay rollback de un servicio que sí terminó bien. El
// registro central sigue siendo la única fuente de verdad; las bases
// por-servicio son estado derivado que el operador puede reconciliar después.
package provision

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/metrics"
	"github.com/dropDatabas3/tenantplane/internal/naming"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
)

// Identity es lo que el orquestador necesita saber de un tenant para
// provisionarlo. La toma el caller del TenantRecord recién creado.
type Identity struct {
	TenantID      string
	Name          string
	AdminEmail    string
	AdminPassword string
}

// Provisioner ejecuta el fan-out de provisioning sobre los tres clusters.
type Provisioner struct {
	clusters *cluster.Registry

	// perServiceTimeout acota cada servicio por separado: un cluster colgado
	// no puede frenar indefinidamente a los otros dos.
	perServiceTimeout time.Duration
}

// NewProvisioner crea el orquestador. timeout <= 0 usa el default (30s).
func NewProvisioner(clusters *cluster.Registry, timeout time.Duration) *Provisioner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provisioner{clusters: clusters, perServiceTimeout: timeout}
}

// Provision crea la base por-tenant, sus colecciones y los documentos seed en
// cada servicio. Concurrente entre servicios, secuencial dentro de cada uno
// (conectar → colecciones → metadata → credencial: cada paso depende del
// anterior). Idempotente: re-ejecutar sobre un tenant ya provisionado no
// falla por colecciones existentes y re-upserta los documentos seed.
func (p *Provisioner) Provision(ctx context.Context, id Identity) *Result {
	log := logger.From(ctx).With(
		logger.Component("provisioner"),
		logger.TenantID(id.TenantID),
		logger.TenantName(id.Name),
	)
	log.Info("provisioning started")

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]ServiceResult, len(cluster.Services()))
	)

	for _, svc := range cluster.Services() {
		wg.Add(1)
		go func(svc cluster.Service) {
			defer wg.Done()
			start := time.Now()

			svcCtx, cancel := context.WithTimeout(ctx, p.perServiceTimeout)
			defer cancel()

			res := p.provisionService(svcCtx, svc, id)
			metrics.RecordProvision(svc.String(), res.Success, time.Since(start))

			if res.Success {
				log.Info("service provisioned",
					logger.Service(svc.String()),
					logger.Database(res.DatabaseName),
					logger.Count(len(res.CollectionsCreated)),
					logger.Duration(time.Since(start)))
			} else {
				log.Error("service provisioning failed",
					logger.Service(svc.String()),
					logger.String("reason", res.Error))
			}

			mu.Lock()
			results[svc.String()] = res
			mu.Unlock()
		}(svc)
	}
	wg.Wait()

	overall := true
	for _, r := range results {
		overall = overall && r.Success
	}
	if !overall {
		log.Warn("provisioning finished with partial failure")
	} else {
		log.Info("provisioning finished")
	}
	return &Result{OverallSuccess: overall, PerService: results}
}

// provisionService hace el trabajo de UN servicio. Todo error se reduce a un
// ServiceResult fallido; nada escapa hacia los servicios hermanos.
func (p *Provisioner) provisionService(ctx context.Context, svc cluster.Service, id Identity) ServiceResult {
	conn, err := p.clusters.ServiceConn(ctx, svc)
	if err != nil {
		return ServiceResult{Success: false, Error: err.Error()}
	}

	dbName := naming.TenantDatabase(svc.String(), id.TenantID, id.Name)
	db := conn.Database(dbName)

	wanted := append([]string{}, ServiceCollections(svc)...)
	wanted = append(wanted, naming.UserCollection(id.Name), naming.ConfigCollection(svc.String()))

	created := make([]string, 0, len(wanted))
	for _, coll := range wanted {
		err := db.CreateCollection(ctx, coll)
		if err != nil && !errors.Is(err, cluster.ErrCollectionExists) {
			return ServiceResult{
				Success:            false,
				Error:              err.Error(),
				DatabaseName:       dbName,
				CollectionsCreated: created,
			}
		}
		// "ya existe" es éxito: la re-ejecución es parte del contrato.
		created = append(created, coll)
	}

	now := time.Now().UTC()

	meta := domain.TenantMetadata{
		TenantID:    id.TenantID,
		TenantName:  id.Name,
		ServiceType: svc.String(),
		Status:      string(domain.StatusActive),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.UpsertOne(ctx, naming.ConfigCollection(svc.String()),
		map[string]any{"tenantId": id.TenantID}, meta); err != nil {
		return ServiceResult{Success: false, Error: err.Error(), DatabaseName: dbName, CollectionsCreated: created}
	}

	cred := domain.ServiceCredential{
		TenantID:    id.TenantID,
		TenantName:  id.Name,
		Email:       id.AdminEmail,
		Password:    id.AdminPassword,
		Role:        "admin",
		Permissions: AdminPermissions(svc),
		IsActive:    true,
		ServiceType: svc.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.UpsertOne(ctx, naming.UserCollection(id.Name),
		map[string]any{"tenantId": id.TenantID, "email": id.AdminEmail}, cred); err != nil {
		return ServiceResult{Success: false, Error: err.Error(), DatabaseName: dbName, CollectionsCreated: created}
	}

	return ServiceResult{Success: true, DatabaseName: dbName, CollectionsCreated: created}
}
