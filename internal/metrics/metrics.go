// Package metrics expone las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Provisioning metrics
	provisionTotal    *prometheus.CounterVec
	provisionDuration *prometheus.HistogramVec
	deprovisionTotal  *prometheus.CounterVec

	// Federation metrics
	authAttemptsTotal *prometheus.CounterVec
	authServiceHits   *prometheus.CounterVec
)

// Register inicializa y registra las métricas. Devuelve el handler para /metrics.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		provisionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenant_provision_total",
			Help: "Provisioning por servicio y resultado",
		}, []string{"service", "result"}) // result: ok|failed

		provisionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tenant_provision_duration_seconds",
			Help:    "Duración del provisioning por servicio",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"service"})

		deprovisionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenant_deprovision_total",
			Help: "Deprovisioning por servicio y resultado",
		}, []string{"service", "result"})

		authAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "federated_auth_attempts_total",
			Help: "Intentos de autenticación federada por resultado",
		}, []string{"result"}) // result: ok|rejected|unknown_tenant

		authServiceHits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "federated_auth_service_hits_total",
			Help: "Servicios que reconocieron una credencial",
		}, []string{"service"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration,
			provisionTotal, provisionDuration, deprovisionTotal,
			authAttemptsTotal, authServiceHits,
		} {
			if err := registerCollector(reg, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	return promhttp.Handler(), nil
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// WithMetrics instrumenta requests HTTP (contadores y latencia).
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpRequestsTotal == nil || httpRequestDuration == nil {
			next.ServeHTTP(w, r)
			return
		}

		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath colapsa IDs de tenant a :param para no explotar cardinalidad.
func normalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "org_") || len(seg) > 32 {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

// RecordProvision registra el resultado del provisioning de un servicio.
func RecordProvision(service string, ok bool, duration time.Duration) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	if provisionTotal != nil {
		provisionTotal.WithLabelValues(service, result).Inc()
	}
	if provisionDuration != nil {
		provisionDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
}

// RecordDeprovision registra el resultado del drop de un servicio.
func RecordDeprovision(service string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	if deprovisionTotal != nil {
		deprovisionTotal.WithLabelValues(service, result).Inc()
	}
}

// RecordAuthAttempt registra un intento de autenticación federada.
func RecordAuthAttempt(result string) {
	if authAttemptsTotal != nil {
		authAttemptsTotal.WithLabelValues(result).Inc()
	}
}

// RecordAuthServiceHit registra que un servicio reconoció la credencial.
func RecordAuthServiceHit(service string) {
	if authServiceHits != nil {
		authServiceHits.WithLabelValues(service).Inc()
	}
}
