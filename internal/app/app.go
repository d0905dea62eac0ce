// Package app wires the bakery API together: configuration, storage, domain
// services, the HTTP boundary, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/catalog"
	"github.com/ovenline/bakery-api/internal/domain/fees"
	"github.com/ovenline/bakery-api/internal/domain/order"
	"github.com/ovenline/bakery-api/internal/handler"
	"github.com/ovenline/bakery-api/internal/storage/postgres"
	"github.com/ovenline/bakery-api/pkg/health"
	"github.com/ovenline/bakery-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Calendar rules and store-local time.
	sched, err := cfg.Pickup.Schedule()
	if err != nil {
		return errors.Wrap(err, "build schedule")
	}
	loc, err := cfg.Pickup.Location()
	if err != nil {
		return errors.Wrap(err, "load timezone")
	}
	taxRate, err := cfg.Fees.Rate()
	if err != nil {
		return errors.Wrap(err, "parse tax rate")
	}
	now := func() time.Time { return time.Now().In(loc) }

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	feeRepo := postgres.NewFeeRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	// Domain services.
	feeProvider := fees.NewProvider(feeRepo, fees.Defaults{
		BagFeePence: cfg.Fees.BagFeePence,
		TaxRate:     taxRate,
	})
	verifier, err := catalog.NewVerifier(ctx, productRepo)
	if err != nil {
		return errors.Wrap(err, "create catalog verifier")
	}
	verifier.StartRefresh(ctx, cfg.Pickup.FilterRefresh)

	orderService := order.NewService(verifier, feeProvider, orderRepo, sched, order.ServiceConfig{
		SlotCapacity: cfg.Pickup.SlotCapacity,
		StoreTimeout: cfg.Pickup.StoreTimeout,
	}, now)

	// HTTP handlers.
	h := handler.New(
		handler.Config{SlotCapacity: cfg.Pickup.SlotCapacity},
		productRepo,
		feeRepo,
		orderService,
		orderRepo,
		sched,
		now,
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("bakery-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
