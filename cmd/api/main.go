package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/feriavirtual/feriavirtual-backend/api/routes"
	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/catalog"
	"github.com/feriavirtual/feriavirtual-backend/internal/coupons"
	"github.com/feriavirtual/feriavirtual-backend/internal/notifications"
	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	"github.com/feriavirtual/feriavirtual-backend/internal/payments"
	"github.com/feriavirtual/feriavirtual-backend/internal/payouts"
	"github.com/feriavirtual/feriavirtual-backend/internal/shipping"
	"github.com/feriavirtual/feriavirtual-backend/internal/totals"
	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	"github.com/feriavirtual/feriavirtual-backend/pkg/mailer"
	"github.com/feriavirtual/feriavirtual-backend/pkg/metrics"
	"github.com/feriavirtual/feriavirtual-backend/pkg/migrate"
	"github.com/feriavirtual/feriavirtual-backend/pkg/outbox"
	"github.com/feriavirtual/feriavirtual-backend/pkg/redis"
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

	cartStore, err := cartsession.NewStore(redisClient, cfg.Session.TTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	shippingResolver, err := shipping.NewResolver(shipping.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping resolver", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	aggregator, err := totals.NewAggregator(catalogRepo, shippingResolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create totals aggregator", err)
		os.Exit(1)
	}

	couponResolver, err := coupons.NewResolver(coupons.NewRepository(dbClient.DB()), time.Now)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon resolver", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		smtpMailer, err := mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			logg.Error(context.Background(), "failed to create smtp mailer", err)
			os.Exit(1)
		}
		mail = smtpMailer
	} else {
		mail = mailer.NewLog(logg)
	}

	notifier, err := notifications.NewService(mail, cfg.Checkout, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	checkoutService, err := orders.NewService(
		dbClient,
		orders.NewRepository(dbClient.DB()),
		catalogRepo,
		payouts.NewRepository(dbClient.DB()),
		aggregator,
		couponResolver,
		cartStore,
		notifier,
		events,
		logg,
		checkoutMetrics,
		cfg.Checkout,
		time.Now,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(dbClient, payments.NewRepository(dbClient.DB()), orders.NewRepository(dbClient.DB()), events, logg, time.Now)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	payoutService, err := payouts.NewService(dbClient, payouts.NewRepository(dbClient.DB()), events, logg, checkoutMetrics, time.Now)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

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
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Registry:       registry,
			CartStore:      cartStore,
			CouponResolver: couponResolver,
			Checkout:       checkoutService,
			Payments:       paymentService,
			Payouts:        payoutService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
