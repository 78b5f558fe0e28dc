package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/session"
)

// WebhookHandler exposes POST /payments/stripe/webhook.
type WebhookHandler struct {
	service       *session.Service
	webhookSecret string
	log           *zap.Logger
}

func NewWebhookHandler(service *session.Service, webhookSecret string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, webhookSecret: webhookSecret, log: log}
}

func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	if h.webhookSecret == "" {
		return fiber.NewError(fiber.StatusServiceUnavailable, "webhook secret not configured")
	}

	body := c.Body()
	header := c.Get("Stripe-Signature")

	if err := session.VerifyWebhookSignature(header, body, h.webhookSecret, time.Now().UTC()); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ProcessWebhook(c.Context(), body)
	if err != nil {
		h.log.Error("failed to process payment webhook", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "webhook processing failed")
	}

	return c.JSON(fiber.Map{"ok": true, "created": result.Created})
}
