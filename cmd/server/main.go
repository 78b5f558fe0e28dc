package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/adapter/ws"
	"github.com/seu-repo/csms/internal/cache"
	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/events"
	"github.com/seu-repo/csms/internal/health"
	"github.com/seu-repo/csms/internal/httpapi"
	"github.com/seu-repo/csms/internal/notify"
	"github.com/seu-repo/csms/internal/ocpp/dispatcher"
	"github.com/seu-repo/csms/internal/ocpp/handlers"
	"github.com/seu-repo/csms/internal/ocpp/registry"
	"github.com/seu-repo/csms/internal/ocpp/transport"
	"github.com/seu-repo/csms/internal/payment"
	"github.com/seu-repo/csms/internal/session"
	"github.com/seu-repo/csms/internal/storage/postgres"
	"github.com/seu-repo/csms/pkg/config"
)

const (
	serviceName    = "csms"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting CSMS",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize Postgres Connection
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to obtain sql.DB handle", zap.Error(err))
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.Station{},
			&domain.Location{},
			&domain.Intent{},
			&domain.Session{},
			&domain.MeterSample{},
			&domain.StopCodeDelivery{},
		); err != nil {
			logger.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
	}

	// 4. Initialize Redis Cache - Optional
	chargePointCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis not available, falling back to in-memory cache", zap.Error(err))
		chargePointCache = cache.NewLocalCache(logger)
	}

	// 5. Initialize Event Bus (NATS) - Optional
	eventBus, err := events.NewNATSBus(cfg.NATS.URL, logger)
	if err != nil {
		logger.Warn("NATS not available, running without an event bus", zap.Error(err))
		eventBus = events.NewNoopBus(logger)
	}

	// 6. Initialize Stop-Code Notifier (SendGrid) - Optional
	var notifier = notify.NewNoopNotifier(logger)
	if cfg.Notify.SendGridAPIKey != "" {
		notifier = notify.NewSendGridNotifier(cfg.Notify.SendGridAPIKey, cfg.Notify.FromEmail, cfg.Notify.FromName, logger)
	}

	// 7. Initialize Repositories (Postgres-backed)
	stationRepo := postgres.NewStationRepository(db)
	intentRepo := postgres.NewIntentRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	meterSampleRepo := postgres.NewMeterSampleRepository(db)
	deliveryRepo := postgres.NewStopCodeDeliveryRepository(db)
	transactor := postgres.NewTransactor(db)

	// 8. Initialize Payment Gateway (Stripe)
	stripeGateway := payment.NewStripeGateway(cfg.Payment.Stripe.SecretKey, logger)

	// 9. Initialize the admin live-feed WebSocket Hub
	liveHub := ws.NewHub()
	go liveHub.Run()

	// 10. Initialize the Connection Registry and Action Dispatcher
	ocppRegistry := registry.New()
	ocppDispatcher := dispatcher.New(logger)

	bootHandler := handlers.NewBoot(stationRepo, logger)
	heartbeatHandler := handlers.NewHeartbeat(stationRepo, logger)
	statusHandler := handlers.NewStatus(stationRepo, sessionRepo, liveHub, logger)
	startTxHandler := handlers.NewStartTransaction(sessionRepo, stationRepo, logger)
	stopTxHandler := handlers.NewStopTransaction(sessionRepo, meterSampleRepo, stationRepo, eventBus, liveHub, cfg.Payment.Pricing.PerKWhHUF, logger)
	meterValuesHandler := handlers.NewMeterValues(sessionRepo, meterSampleRepo, stationRepo, logger)
	firmwareHandler := handlers.NewFirmware(stationRepo, logger)

	ocppDispatcher.Register("BootNotification", bootHandler.Handle)
	ocppDispatcher.Register("Heartbeat", heartbeatHandler.Handle)
	ocppDispatcher.Register("StatusNotification", statusHandler.Handle)
	ocppDispatcher.Register("StartTransaction", startTxHandler.Handle)
	ocppDispatcher.Register("StopTransaction", stopTxHandler.Handle)
	ocppDispatcher.Register("MeterValues", meterValuesHandler.Handle)
	ocppDispatcher.Register("FirmwareStatusNotification", firmwareHandler.Handle)

	// 11. Initialize the Session Lifecycle & Payment Bridge service
	sessionService := session.NewService(
		stationRepo,
		intentRepo,
		sessionRepo,
		deliveryRepo,
		stripeGateway,
		notifier,
		eventBus,
		transactor,
		ocppRegistry,
		session.Config{
			PublicBaseURL: cfg.App.PublicURL,
		},
		logger,
	)

	// 12. Start the OCPP WebSocket Server on its own net/http listener: the
	// station-facing transport needs gorilla/websocket's raw-connection
	// hijack, which the Fiber/fasthttp listener below cannot provide.
	ocppGateway := transport.NewGateway(ocppRegistry, ocppDispatcher, logger)
	ocppMux := http.NewServeMux()
	ocppMux.HandleFunc(cfg.OCPP.IdentifiedPathPrefix, func(w http.ResponseWriter, r *http.Request) {
		identity := strings.TrimPrefix(r.URL.Path, cfg.OCPP.IdentifiedPathPrefix)
		identity = strings.Trim(identity, "/")
		if identity == "" {
			ocppGateway.HandleLegacy(w, r)
			return
		}
		ocppGateway.HandleIdentified(identity)(w, r)
	})
	ocppServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.OCPP.Port),
		Handler: ocppMux,
	}
	go func() {
		logger.Info("Starting OCPP WebSocket Server", zap.Int("port", cfg.OCPP.Port))
		if err := ocppServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("OCPP Server failed", zap.Error(err))
		}
	}()

	// 13. Initialize the health/readiness service
	healthService := health.NewService(sqlDB, logger)

	// 14. Build the Fiber HTTP application (REST, /metrics, /ws/live)
	app := httpapi.New(httpapi.Dependencies{
		Stations:       stationRepo,
		Sessions:       sessionRepo,
		Cache:          chargePointCache,
		SessionService: sessionService,
		Health:         healthService,
		Hub:            liveHub,
		WebhookSecret:  cfg.Payment.Stripe.WebhookSecret,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Log:            logger,
	})

	// 15. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 16. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	if err := ocppServer.Shutdown(ctx); err != nil {
		logger.Error("OCPP server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
