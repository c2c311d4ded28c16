package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/milkoapp/milko-backend/api/routes"
	authsvc "github.com/milkoapp/milko-backend/internal/auth"
	"github.com/milkoapp/milko-backend/internal/deliveries"
	"github.com/milkoapp/milko-backend/internal/products"
	"github.com/milkoapp/milko-backend/internal/schedule"
	"github.com/milkoapp/milko-backend/internal/subscriptions"
	"github.com/milkoapp/milko-backend/internal/users"
	razorpaywebhook "github.com/milkoapp/milko-backend/internal/webhooks/razorpay"
	"github.com/milkoapp/milko-backend/pkg/config"
	"github.com/milkoapp/milko-backend/pkg/db"
	"github.com/milkoapp/milko-backend/pkg/env"
	"github.com/milkoapp/milko-backend/pkg/logger"
	"github.com/milkoapp/milko-backend/pkg/metrics"
	"github.com/milkoapp/milko-backend/pkg/migrate"
	"github.com/milkoapp/milko-backend/pkg/razorpay"
	"github.com/milkoapp/milko-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap payment gateway", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:  users.NewRepository(dbClient.DB()),
		Hasher: authsvc.NewArgon2Hasher(cfg.Password),
		JWT:    cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	deliveryRepo := deliveries.NewRepository(dbClient.DB())
	deliveryService, err := deliveries.NewService(deliveryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:              subscriptions.NewRepository(dbClient.DB()),
		Products:          productRepo,
		Gateway:           gateway,
		Generator:         schedule.NewGenerator(),
		Deliveries:        deliveryRepo,
		TransactionRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	webhookService, err := razorpaywebhook.NewService(razorpaywebhook.ServiceParams{
		Subscriptions:  subscriptionService,
		Idempotency:    redisClient,
		IdempotencyTTL: cfg.Webhook.IdempotencyTTL,
		Metrics:        metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := env.Get("PORT", cfg.App.Port)
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Gateway:       gateway,
			Auth:          authService,
			Products:      productService,
			Subscriptions: subscriptionService,
			Deliveries:    deliveryService,
			Webhooks:      webhookService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down")
}
