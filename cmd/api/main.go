package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tastyhaat/internal/config"
	"tastyhaat/internal/events"
	"tastyhaat/internal/menu"
	"tastyhaat/internal/order"
	"tastyhaat/internal/payment"
	"tastyhaat/internal/server"
	"tastyhaat/internal/telemetry"
	"tastyhaat/internal/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load reads .env, which may carry the OTEL_* settings Setup needs.
	cfg, err := config.Load()
	if err != nil {
		panic("invalid configuration: " + err.Error())
	}

	log, tracer, meter, shutdown, err := telemetry.Setup(ctx, "tastyhaat-api")
	if err != nil {
		panic("failed to initialize telemetry: " + err.Error())
	}
	defer shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		log.Fatal("failed to create metrics", zap.Error(err))
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := openBackend(connectCtx, cfg.Store)
	connectCancel()
	if err != nil {
		log.Fatal("failed to open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer store.close(context.Background())

	publisher := openPublisher(ctx, cfg.Events, log)
	defer publisher.Close()
	emitter := events.NewEmitter(publisher, metrics, log)

	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, checkout sessions will fail")
	}

	app := server.New(server.Config{ClientURL: cfg.HTTP.ClientURL, Store: store, Log: log},
		user.NewController(user.NewUseCase(store.users, emitter, metrics, log, tracer), log, tracer),
		menu.NewController(menu.NewUseCase(store.menus, emitter, metrics, log, tracer), log, tracer),
		order.NewController(order.NewUseCase(store.orders, emitter, metrics, log, tracer), log, tracer),
		payment.NewController(
			payment.NewUseCase(payment.NewStripeGateway(cfg.Stripe.SecretKey), cfg.HTTP.ClientURL, emitter, metrics, log, tracer),
			log, tracer,
		),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down api...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Warn("graceful shutdown incomplete", zap.Error(err))
		}
		cancel()
	}()

	addr := ":" + cfg.HTTP.Port
	log.Info("api listening",
		zap.String("addr", addr),
		zap.String("store", cfg.Store.Backend),
		zap.String("events", cfg.Events.Backend),
	)
	if err := app.Listen(addr); err != nil {
		log.Error("server error", zap.Error(err))
	}
}
