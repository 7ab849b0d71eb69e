// tenantplane es el plano de control multi-tenant: registra tenants en el
// cluster central, materializa sus bases en billing/crm/pingora y resuelve
// logins federados contra los tres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/tenantplane/internal/cache"
	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/config"
	"github.com/dropDatabas3/tenantplane/internal/email"
	"github.com/dropDatabas3/tenantplane/internal/federation"
	authctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/health"
	tenantsctrl "github.com/dropDatabas3/tenantplane/internal/http/controllers/tenants"
	authsvc "github.com/dropDatabas3/tenantplane/internal/http/services/auth"
	tenantssvc "github.com/dropDatabas3/tenantplane/internal/http/services/tenants"
	"github.com/dropDatabas3/tenantplane/internal/http/router"
	"github.com/dropDatabas3/tenantplane/internal/http/server"
	"github.com/dropDatabas3/tenantplane/internal/metrics"
	"github.com/dropDatabas3/tenantplane/internal/observability/logger"
	"github.com/dropDatabas3/tenantplane/internal/provision"
	"github.com/dropDatabas3/tenantplane/internal/rate"
	"github.com/dropDatabas3/tenantplane/internal/registry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env primero: ahí viven SECRETBOX_MASTER_KEY y los overrides.
	_ = godotenv.Load()

	cfgPath := flag.String("config", envOr("TENANTPLANE_CONFIG", "config.yaml"), "ruta del config YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "tenantplane"})
	defer func() { _ = logger.Sync() }()
	log := logger.L().With(logger.Component("main"))

	metricsHandler, err := metrics.Register(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// Paso 1: clusters (lazy, nada se conecta hasta el primer uso)
	clusters := cluster.NewRegistry(cluster.RegistryConfig{
		URIs:           cfg.ClusterURIs(),
		ConnectTimeout: cfg.Provision.ConnectTimeout,
	})
	defer func() {
		if err := clusters.CloseAll(context.Background()); err != nil {
			log.Warn("closing clusters", logger.Err(err))
		}
	}()

	// Paso 2: store del registro central, con cache en el hot path de login
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.Cache.Memory.DefaultTTL,
	})
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer cacheClient.Close()

	baseStore := registry.NewStore(clusters, cfg.Registry.Database)
	store := registry.NewCachedStore(baseStore, cacheClient, cfg.Cache.Memory.DefaultTTL)

	// Paso 3: orquestadores
	provisioner := provision.NewProvisioner(clusters, cfg.Provision.PerServiceTimeout)
	deprovisioner := provision.NewDeprovisioner(clusters, store, cfg.Provision.PerServiceTimeout)
	authenticator := federation.NewAuthenticator(clusters, store, cfg.Auth.PerServiceTimeout)

	// Paso 4: alertas al operador (opcional)
	var alerts *email.AlertMailer
	if cfg.Alerts.OperatorEmail != "" && cfg.SMTP.Host != "" {
		sender := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			TLSMode:  cfg.SMTP.TLS,
		})
		alerts = email.NewAlertMailer(sender, cfg.Alerts.OperatorEmail)
	}

	// Paso 5: rate limiting del login
	var loginLimiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Cache.Kind == "redis" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			loginLimiter = rate.NewRedisLimiter(rdb, "rl:login:", cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
		} else {
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
		}
	}

	// Paso 6: HTTP
	handler := router.New(router.Deps{
		Tenants: tenantsctrl.NewController(tenantssvc.NewService(tenantssvc.Deps{
			Store:         store,
			Provisioner:   provisioner,
			Deprovisioner: deprovisioner,
			Alerts:        alerts,
		})),
		Auth: authctrl.NewController(authsvc.NewService(authsvc.Deps{
			Authenticator: authenticator,
			JWTSecret:     cfg.JWT.Secret,
			JWTIssuer:     cfg.JWT.Issuer,
			AccessTTL:     cfg.JWT.AccessTTL,
		})),
		Health:          healthctrl.NewController(clusters),
		AdminAPIKeyHash: cfg.Admin.APIKeyHash,
		LoginLimiter:    loginLimiter,
		MetricsHandler:  metricsHandler,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("tenantplane starting", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
	return server.New(cfg.Server.Addr, handler, cfg.Server.ShutdownTimeout).Run(ctx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
