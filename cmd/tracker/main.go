package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/trackforge/tracker/pkg/api"
	"github.com/trackforge/tracker/pkg/audit"
	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/config"
	"github.com/trackforge/tracker/pkg/developers"
	"github.com/trackforge/tracker/pkg/middleware"
	"github.com/trackforge/tracker/pkg/observability"
	"github.com/trackforge/tracker/pkg/projects"
	"github.com/trackforge/tracker/pkg/sso"
	"github.com/trackforge/tracker/pkg/storage"
	"github.com/trackforge/tracker/pkg/tasks"
	"github.com/trackforge/tracker/pkg/users"
)

const serviceVersion = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tracker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.LogLevel), os.Stdout)
	logger.WithField("version", serviceVersion).Info("starting tracker")

	ctx := context.Background()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.OTelEnabled,
		Endpoint:       cfg.OTelEndpoint,
		ServiceName:    "tracker",
		ServiceVersion: serviceVersion,
		Insecure:       true,
	}, logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	db, err := storage.Open(ctx, cfg.DatabaseURL, cfg.DatabaseMaxOpen, cfg.DatabaseMaxIdle)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	dbLogger, err := audit.NewDBLogger(ctx, db)
	if err != nil {
		return err
	}
	var sink audit.Logger = dbLogger
	var fileLogger *audit.FileLogger
	if cfg.AuditFilePath != "" {
		fileLogger, err = audit.NewFileLogger(cfg.AuditFilePath)
		if err != nil {
			return err
		}
		sink = audit.NewMultiLogger(dbLogger, fileLogger)
	}
	recorder := audit.NewRecorder(sink, logger, metrics)

	userStore := users.NewPostgresStore(db)
	codec, err := auth.NewTokenCodec([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	resolver, err := auth.NewResolver(userStore)
	if err != nil {
		return err
	}
	authSvc := auth.NewAuditedService(auth.NewService(userStore, codec, resolver), recorder)
	userSvc := users.NewService(userStore, resolver, recorder)

	developerStore := developers.NewPostgresStore(db)
	developerSvc := developers.NewService(developerStore, recorder)

	projectStore := projects.NewPostgresStore(db)
	projectSvc := projects.NewService(projectStore, recorder)

	taskStore := tasks.NewPostgresStore(db)
	taskSvc := tasks.NewService(taskStore, projectStore, userStore, recorder)

	var (
		oidcProvider *sso.OIDCProvider
		bridge       *sso.Bridge
	)
	if cfg.OIDCEnabled {
		oidcProvider, err = sso.NewOIDCProvider(ctx, sso.OIDCConfig{
			IssuerURL:    cfg.OIDCIssuerURL,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		if err != nil {
			return fmt.Errorf("init OIDC provider: %w", err)
		}
		bridge = sso.NewBridge(userStore, codec)
	}

	var rateLimiter *middleware.LoginRateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewLoginRateLimiter(redisClient, middleware.DefaultLoginRateLimitConfig(), logger)
	}

	server := api.NewServer(api.Deps{
		Log:            logger,
		Metrics:        metrics,
		Auth:           authSvc,
		UserStore:      userStore,
		Users:          userSvc,
		Developers:     developerSvc,
		Projects:       projectSvc,
		Tasks:          taskSvc,
		Audit:          dbLogger,
		Recorder:       recorder,
		OIDC:           oidcProvider,
		Bridge:         bridge,
		RateLimiter:    rateLimiter,
		TokenValidator: codec,
		Resolver:       resolver,
		TracingEnabled: cfg.OTelEnabled,
	})

	retention := audit.NewRetentionPolicy(
		dbLogger,
		time.Duration(cfg.AuditRetentionDays)*24*time.Hour,
		cfg.AuditSweepSchedule,
		logger,
	)
	if err := retention.Start(); err != nil {
		return fmt.Errorf("start audit retention: %w", err)
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	healthMux.Handle("/metrics", metrics.Handler())

	appServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	healthServer := &http.Server{
		Addr:        cfg.HealthAddr,
		Handler:     healthMux,
		ReadTimeout: 5 * time.Second,
	}

	shutdown := observability.NewShutdownManager(logger, 30*time.Second, appServer, healthServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		retention.Stop()
		if fileLogger != nil {
			if err := fileLogger.Close(); err != nil {
				return err
			}
		}
		if otelProviders != nil {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		}
		return nil
	})

	var group errgroup.Group
	group.Go(func() error {
		logger.WithField("addr", cfg.ListenAddr).Info("api listening")
		if err := appServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", cfg.HealthAddr).Info("health listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(shutdown.WaitForShutdown)

	return group.Wait()
}
