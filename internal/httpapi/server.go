// Package httpapi assembles the Fiber application: REST routes, the admin
// WebSocket feed, health probes, and the Prometheus exposition endpoint.
package httpapi

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/adapter/ws"
	"github.com/seu-repo/csms/internal/health"
	"github.com/seu-repo/csms/internal/httpapi/handlers"
	"github.com/seu-repo/csms/internal/httpapi/middleware"
	"github.com/seu-repo/csms/internal/ports"
	"github.com/seu-repo/csms/internal/session"
)

// Dependencies bundles everything server.go needs to wire routes, kept
// separate from main.go's broader wiring concerns (DB, OCPP gateway, etc).
type Dependencies struct {
	Stations ports.StationRepository
	Sessions ports.SessionRepository
	Cache    ports.Cache

	SessionService *session.Service
	Health         *health.Service
	Hub            *ws.Hub

	WebhookSecret  string
	AllowedOrigins []string
	Log            *zap.Logger
}

// New builds the Fiber app and registers every route named in spec.md §6
// and SPEC_FULL.md §6.
func New(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "csms",
		ServerHeader: "csms",
		ErrorHandler: middleware.ErrorHandler(deps.Log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.CORS(deps.AllowedOrigins))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(deps.Health.Health(c.Context()))
	})
	app.Get("/readyz", func(c *fiber.Ctx) error {
		resp := deps.Health.Ready(c.Context())
		status := fiber.StatusOK
		if !resp.Ready {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(resp)
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())(c.Context())
		return nil
	})

	intentHandler := handlers.NewIntentHandler(deps.SessionService, deps.Log)
	app.Post("/intents", intentHandler.Create)

	webhookHandler := handlers.NewWebhookHandler(deps.SessionService, deps.WebhookSecret, deps.Log)
	app.Post("/payments/stripe/webhook", webhookHandler.Handle)

	sessionHandler := handlers.NewSessionHandler(deps.SessionService, deps.Sessions, deps.Log)
	app.Post("/sessions/start", sessionHandler.Start)
	app.Post("/sessions/stop", sessionHandler.Stop)
	app.Post("/sessions/redeem-stop-code", sessionHandler.RedeemStopCode)
	app.Get("/sessions", sessionHandler.List)
	app.Get("/sessions/active/by-charge-point/:id", sessionHandler.ActiveByChargePoint)
	app.Get("/sessions/:id", sessionHandler.Get)

	chargePointHandler := handlers.NewChargePointHandler(deps.Stations, deps.Cache, deps.Log)
	app.Get("/charge-points", chargePointHandler.List)
	app.Get("/charge-points/:id", chargePointHandler.Get)

	app.Use("/ws/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/live", websocket.New(func(c *websocket.Conn) {
		deps.Hub.Serve(c)
	}))

	return app
}
