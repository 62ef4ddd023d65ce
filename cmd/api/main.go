package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/spotnere/admin-api/docs"
	"github.com/spotnere/admin-api/internal/config"
	"github.com/spotnere/admin-api/internal/database"
	"github.com/spotnere/admin-api/internal/events"
	"github.com/spotnere/admin-api/internal/metrics"
	"github.com/spotnere/admin-api/internal/notification"
	"github.com/spotnere/admin-api/internal/payout"
	"github.com/spotnere/admin-api/internal/settlement"
	"github.com/spotnere/admin-api/internal/vendors"
	"github.com/spotnere/admin-api/pkg/logging"
	mw "github.com/spotnere/admin-api/pkg/middleware"
)

// @title        Spotnere Admin Payout API
// @version      1.0
// @description  Vendor payout reconciliation for the Spotnere admin panel.
// @BasePath     /api
func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)
	if envErr != nil {
		slog.Info("No .env file found, using environment variables")
	}

	// Money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := database.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open store", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	slog.Info("Connected to database successfully", "driver", cfg.DatabaseDriver)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	payoutMetrics := metrics.New(registry)

	// Settlement events
	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			slog.Warn("Settlement events disabled", "error", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			slog.Info("Publishing settlement events", "exchange", cfg.EventsExchange)
		}
	}

	// Payout feature
	payoutService := payout.NewService(store)
	payoutHandler := payout.NewHandler(payoutService)

	// Settlement feature
	settlementService := settlement.NewService(store, publisher, payoutMetrics, settlement.Options{
		Timeout:  cfg.SettleTimeout,
		MaxBatch: cfg.MaxSettlementBatch,
	})
	settlementHandler := settlement.NewHandler(settlementService)

	// Vendor feature
	vendorHandler := vendors.NewHandler(vendors.NewService(store))

	// Notification feature
	notificationService := notification.NewService(store)
	notificationHandler := notification.NewHandler(notificationService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.OperatorMiddleware)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(mw.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler(registry))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/payouts", func(r chi.Router) {
			payoutHandler.Register(r)
			settlementHandler.RegisterPayoutRoutes(r)
		})
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/bookings", payoutHandler.BookingRoutes())
		r.Route("/places/{placeId}", func(r chi.Router) {
			r.Get("/vendor", vendorHandler.GetByPlace)
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
