package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/tenantplane/internal/domain"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
)

// DialFunc establece una conexión nueva a un cluster.
type DialFunc func(ctx context.Context, uri string) (Conn, error)

// Registry administra una conexión por cluster, keyed por nombre de servicio
// (más RegistryKey para el cluster central). Thread-safe; usa singleflight
// para que N requests concurrentes en el primer uso establezcan exactamente
// una conexión.
//
// Un intento de conexión fallido NO se cachea: la próxima llamada reintenta
// limpio.
type Registry struct {
	dial    DialFunc
	uris    map[string]string
	timeout time.Duration

	conns sync.Map // map[string]Conn
	sf    singleflight.Group
}

// RegistryConfig configura el Registry.
type RegistryConfig struct {
	// URIs mapea key de cluster → connection string.
	// Keys esperadas: RegistryKey + cada Service.
	URIs map[string]string

	// ConnectTimeout límite para establecer una conexión nueva.
	// Default: 10s.
	ConnectTimeout time.Duration

	// Dial crea conexiones. Default: DialMongo.
	Dial DialFunc
}

// NewRegistry crea un Registry. No conecta nada: las conexiones se
// establecen lazy en el primer Conn().
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.Dial == nil {
		cfg.Dial = DialMongo
	}
	return &Registry{
		dial:    cfg.Dial,
		uris:    cfg.URIs,
		timeout: cfg.ConnectTimeout,
	}
}

// Conn retorna la conexión del cluster, estableciéndola si es la primera vez.
// Idempotente y seguro bajo concurrencia: la creación se memoiza exactamente
// una vez por key.
func (r *Registry) Conn(ctx context.Context, key string) (Conn, error) {
	if val, ok := r.conns.Load(key); ok {
		return val.(Conn), nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Double-check después de ganar el singleflight
		if val, ok := r.conns.Load(key); ok {
			return val.(Conn), nil
		}

		uri, ok := r.uris[key]
		if !ok || uri == "" {
			return nil, fmt.Errorf("cluster %q: no URI configured", key)
		}

		dctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		conn, err := r.dial(dctx, uri)
		if err != nil {
			// No se guarda nada: el próximo Conn() reintenta limpio.
			return nil, fmt.Errorf("cluster %q: %w: %v", key, domain.ErrClusterUnreachable, err)
		}

		r.conns.Store(key, conn)
		logger.L().Info("cluster connected", logger.Component("cluster.registry"), logger.String("cluster", key))
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Conn), nil
}

// ServiceConn retorna la conexión del cluster de un servicio.
func (r *Registry) ServiceConn(ctx context.Context, svc Service) (Conn, error) {
	return r.Conn(ctx, string(svc))
}

// RegistryConn retorna la conexión del cluster de registro central.
func (r *Registry) RegistryConn(ctx context.Context) (Conn, error) {
	return r.Conn(ctx, RegistryKey)
}

// Has verifica si ya hay una conexión establecida para la key.
func (r *Registry) Has(key string) bool {
	_, ok := r.conns.Load(key)
	return ok
}

// Ping verifica la conexión al cluster de registro (readiness).
func (r *Registry) Ping(ctx context.Context) error {
	conn, err := r.RegistryConn(ctx)
	if err != nil {
		return err
	}
	return conn.Ping(ctx)
}

// CloseAll cierra todas las conexiones establecidas.
func (r *Registry) CloseAll(ctx context.Context) error {
	var errs []error

	r.conns.Range(func(key, value interface{}) bool {
		if err := value.(Conn).Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key.(string), err))
		}
		r.conns.Delete(key)
		return true
	})

	if len(errs) > 0 {
		return fmt.Errorf("errors closing clusters: %v", errs)
	}
	return nil
}
