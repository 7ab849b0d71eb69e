package provision

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/metrics"
	"github.com/dropDatabas3/tenantplane/internal/naming"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
)

// Deprovisioner ejecuta el fan-out inverso: dropea la base por-tenant en cada
// servicio y al final borra el TenantRecord del registro central.
type Deprovisioner struct {
	clusters *cluster.Registry
	store    domain.TenantStore

	perServiceTimeout time.Duration
}

// NewDeprovisioner crea el orquestador. timeout <= 0 usa el default (30s).
func NewDeprovisioner(clusters *cluster.Registry, store domain.TenantStore, timeout time.Duration) *Deprovisioner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Deprovisioner{clusters: clusters, store: store, perServiceTimeout: timeout}
}

// Deprovision dropea las bases del tenant en los tres servicios y borra el
// registro central. El delete del registro ocurre SIEMPRE, fallen o no los
// drops: un cluster caído puede dejar una base huérfana (limitación
// documentada, el resultado la expone), pero nunca deja al tenant "vivo" en
// el registro. El tenantId no se reutiliza jamás, así que una base huérfana
// no puede ser adoptada por un tenant futuro.
func (d *Deprovisioner) Deprovision(ctx context.Context, tenantID string) (*DeprovisionResult, error) {
	log := logger.From(ctx).With(
		logger.Component("deprovisioner"),
		logger.TenantID(tenantID),
	)

	rec, err := d.store.GetByID(ctx, tenantID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnknownTenant
		}
		return nil, err
	}
	log.Info("deprovisioning started", logger.TenantName(rec.Name))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]ServiceResult, len(cluster.Services()))
	)

	for _, svc := range cluster.Services() {
		wg.Add(1)
		go func(svc cluster.Service) {
			defer wg.Done()

			svcCtx, cancel := context.WithTimeout(ctx, d.perServiceTimeout)
			defer cancel()

			res := d.dropService(svcCtx, svc, rec)
			metrics.RecordDeprovision(svc.String(), res.Success)

			if res.Success {
				log.Info("service database dropped",
					logger.Service(svc.String()), logger.Database(res.DatabaseName))
			} else {
				log.Error("service drop failed",
					logger.Service(svc.String()), logger.String("reason", res.Error))
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

	// El registro se borra pase lo que pase con los drops.
	registryDeleted := true
	if err := d.store.Delete(ctx, tenantID); err != nil && !domain.IsNotFound(err) {
		registryDeleted = false
		overall = false
		log.Error("registry record delete failed", logger.Err(err))
	}

	return &DeprovisionResult{
		OverallSuccess:  overall,
		RegistryDeleted: registryDeleted,
		PerService:      results,
	}, nil
}

// dropService dropea la base canónica del tenant en un servicio; si además
// existe una base con el nombre legacy (provisionada antes de que el tenantId
// entrara al esquema de nombres), la dropea también.
func (d *Deprovisioner) dropService(ctx context.Context, svc cluster.Service, rec *domain.TenantRecord) ServiceResult {
	conn, err := d.clusters.ServiceConn(ctx, svc)
	if err != nil {
		return ServiceResult{Success: false, Error: err.Error()}
	}

	canonical := naming.TenantDatabase(svc.String(), rec.TenantID, rec.Name)
	if err := conn.Database(canonical).Drop(ctx); err != nil {
		return ServiceResult{Success: false, Error: err.Error(), DatabaseName: canonical}
	}

	legacy := naming.LegacyTenantDatabase(svc.String(), rec.Name)
	legacyDB := conn.Database(legacy)
	if names, err := legacyDB.ListCollectionNames(ctx); err == nil && len(names) > 0 {
		if err := legacyDB.Drop(ctx); err != nil {
			return ServiceResult{Success: false, Error: err.Error(), DatabaseName: legacy}
		}
	}

	return ServiceResult{Success: true, DatabaseName: canonical}
}
