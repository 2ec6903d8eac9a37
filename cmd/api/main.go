package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/davidcalleja/garagebook-backend/api/routes"
	"github.com/davidcalleja/garagebook-backend/internal/analytics"
	"github.com/davidcalleja/garagebook-backend/internal/auth"
	"github.com/davidcalleja/garagebook-backend/internal/billing"
	"github.com/davidcalleja/garagebook-backend/internal/cars"
	"github.com/davidcalleja/garagebook-backend/internal/entitlements"
	"github.com/davidcalleja/garagebook-backend/internal/garages"
	"github.com/davidcalleja/garagebook-backend/internal/invitations"
	"github.com/davidcalleja/garagebook-backend/internal/memberships"
	"github.com/davidcalleja/garagebook-backend/internal/users"
	"github.com/davidcalleja/garagebook-backend/pkg/auth/session"
	"github.com/davidcalleja/garagebook-backend/pkg/config"
	"github.com/davidcalleja/garagebook-backend/pkg/db"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
	"github.com/davidcalleja/garagebook-backend/pkg/metrics"
	"github.com/davidcalleja/garagebook-backend/pkg/migrate"
	"github.com/davidcalleja/garagebook-backend/pkg/redis"
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

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	membersRepo := memberships.NewRepository(gormDB)
	garagesRepo := garages.NewRepository(gormDB)
	carsRepo := cars.NewRepository(gormDB)
	invitationsRepo := invitations.NewRepository(gormDB)
	billingRepo := billing.NewRepository(gormDB)
	analyticsRepo := analytics.NewRepository(gormDB)

	entitlementChecker, err := entitlements.NewService(entitlements.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create entitlement checker", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{Repo: billingRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		Billing:        billingService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	garagesService, err := garages.NewService(garages.ServiceParams{
		Repo:         garagesRepo,
		Members:      membersRepo,
		Cars:         carsRepo,
		Entitlements: entitlementChecker,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create garage service", err)
		os.Exit(1)
	}

	carsService, err := cars.NewService(cars.ServiceParams{
		Repo:         carsRepo,
		Garages:      garagesRepo,
		Members:      membersRepo,
		Entitlements: entitlementChecker,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create car service", err)
		os.Exit(1)
	}

	invitationsService, err := invitations.NewService(invitations.ServiceParams{
		Repo:         invitationsRepo,
		Garages:      garagesRepo,
		Members:      membersRepo,
		Entitlements: entitlementChecker,
		TTL:          cfg.Invitations.TTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invitation service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Repo:    analyticsRepo,
		Garages: garagesRepo,
		Members: membersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,
			Registry:       registry,
			HTTPMetrics:    httpMetrics,
			Auth:           authService,
			Garages:        garagesService,
			Cars:           carsService,
			Invitations:    invitationsService,
			Billing:        billingService,
			Analytics:      analyticsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
