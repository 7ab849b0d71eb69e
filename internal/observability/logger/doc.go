// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: Una sola instancia global inicializada con Init().
//   - Context Scoping: Cada request/operación puede llevar su propio logger "scoped"
//     con campos adicionales (request_id, tenant_id, service, etc.) sin crear un
//     nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Levels: debug, info, warn, error (configurable via LOG_LEVEL).
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   os.Getenv("APP_ENV"),   // "dev" o "prod"
//	    Level: os.Getenv("LOG_LEVEL"), // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// En services/orquestadores (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("provisioning tenant", logger.TenantID(id), logger.Service("billing"))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("application started")
package logger
