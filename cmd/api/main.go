package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/slabworks/slabdesk-backend/api/routes"
	"github.com/slabworks/slabdesk-backend/internal/auth"
	"github.com/slabworks/slabdesk-backend/internal/billing"
	"github.com/slabworks/slabdesk-backend/internal/groups"
	"github.com/slabworks/slabdesk-backend/internal/lifecycle"
	"github.com/slabworks/slabdesk-backend/internal/submissions"
	"github.com/slabworks/slabdesk-backend/pkg/auth/session"
	"github.com/slabworks/slabdesk-backend/pkg/config"
	"github.com/slabworks/slabdesk-backend/pkg/db"
	"github.com/slabworks/slabdesk-backend/pkg/logger"
	"github.com/slabworks/slabdesk-backend/pkg/metrics"
	"github.com/slabworks/slabdesk-backend/pkg/migrate"
	"github.com/slabworks/slabdesk-backend/pkg/redis"
	"github.com/slabworks/slabdesk-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap square client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	gormDB := dbClient.DB()
	lifecycleRepo := lifecycle.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:           auth.NewRepository(gormDB),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	submissionsService, err := submissions.NewService(submissions.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create submissions service", err)
		os.Exit(1)
	}

	lifecycleService, err := lifecycle.NewService(lifecycleRepo, dbClient, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle service", err)
		os.Exit(1)
	}

	groupsService, err := groups.NewService(groups.NewRepository(gormDB), dbClient, lifecycleService, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create groups service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:          billing.NewRepository(gormDB),
		LifecycleRepo: lifecycleRepo,
		Tx:            dbClient,
		Processor:     squareClient,
		Config:        cfg.Billing,
		Metrics:       engineMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, routes.Services{
			Auth:        authService,
			Submissions: submissionsService,
			Lifecycle:   lifecycleService,
			Groups:      groupsService,
			Billing:     billingService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
