// Package observability provides structured logging, Prometheus metrics,
// health checks, panic recovery, OpenTelemetry wiring, and graceful shutdown
// for the tracker service.
//
// # Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user", email).Info("user registered")
//
// # Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	handler = metrics.Middleware(handler)
//
// # Health
//
// HealthChecker probes PostgreSQL and Redis and serves /health,
// /health/live, and /health/ready on the dedicated health listener.
package observability
