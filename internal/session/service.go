// Package session implements the Session Lifecycle & Payment Bridge: intent
// creation against the payment provider, signed webhook processing,
// outbound RemoteStart/RemoteStop correlation through the Connection
// Registry, and stop-code issuance/redemption.
package session

import (
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ocpp/registry"
	"github.com/seu-repo/csms/internal/ports"
)

// Config carries the environment-derived knobs this component needs beyond
// its repository/gateway dependencies. Webhook signature verification is a
// stateless package-level function (VerifyWebhookSignature) called directly
// by the REST handler, so the secret itself lives in handler wiring, not here.
type Config struct {
	PublicBaseURL string
}

// Service is the single entry point the REST layer (internal/httpapi) calls
// into for everything intent/webhook/stop-code shaped.
type Service struct {
	stations   ports.StationRepository
	intents    ports.IntentRepository
	sessions   ports.SessionRepository
	deliveries ports.StopCodeDeliveryRepository

	payments ports.PaymentGateway
	notifier ports.Notifier
	events   ports.EventBus

	tx ports.Transactor

	registry *registry.Registry

	cfg Config
	log *zap.Logger
}

func NewService(
	stations ports.StationRepository,
	intents ports.IntentRepository,
	sessions ports.SessionRepository,
	deliveries ports.StopCodeDeliveryRepository,
	payments ports.PaymentGateway,
	notifier ports.Notifier,
	events ports.EventBus,
	tx ports.Transactor,
	reg *registry.Registry,
	cfg Config,
	log *zap.Logger,
) *Service {
	return &Service{
		stations:   stations,
		intents:    intents,
		sessions:   sessions,
		deliveries: deliveries,
		payments:   payments,
		notifier:   notifier,
		events:     events,
		tx:         tx,
		registry:   reg,
		cfg:        cfg,
		log:        log,
	}
}
