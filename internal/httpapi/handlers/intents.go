package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/session"
)

// IntentHandler exposes POST /intents, the pay-first entry point.
type IntentHandler struct {
	service *session.Service
	log     *zap.Logger
}

func NewIntentHandler(service *session.Service, log *zap.Logger) *IntentHandler {
	return &IntentHandler{service: service, log: log}
}

type createIntentRequest struct {
	ChargePointID string `json:"charge_point_id"`
	ConnectorID   int    `json:"connector_id"`
	Email         string `json:"email"`
	HoldAmountHUF int64  `json:"hold_amount_huf"`
}

// minHoldAmountHUF and maxHoldAmountHUF bound the accepted hold amount per
// spec.md §4.E (1,000-25,000 minor units).
const (
	minHoldAmountHUF = 1000
	maxHoldAmountHUF = 25000
)

func (h *IntentHandler) Create(c *fiber.Ctx) error {
	var req createIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.HoldAmountHUF < minHoldAmountHUF || req.HoldAmountHUF > maxHoldAmountHUF {
		return fiber.NewError(fiber.StatusBadRequest, "hold_amount_huf out of range")
	}

	result, err := h.service.CreateIntent(c.Context(), session.CreateIntentParams{
		StationID:     req.ChargePointID,
		ConnectorID:   req.ConnectorID,
		Email:         req.Email,
		HoldAmountHUF: req.HoldAmountHUF,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrStationNotFound):
			return fiber.NewError(fiber.StatusNotFound, "charge_point_not_found")
		case errors.Is(err, session.ErrStationNotAvailable):
			return fiber.NewError(fiber.StatusConflict, "charge_point_not_available")
		default:
			h.log.Error("failed to create intent", zap.Error(err))
			return fiber.NewError(fiber.StatusBadGateway, "stripe_checkout_create_failed")
		}
	}

	return c.JSON(fiber.Map{
		"intent_id":    result.IntentID,
		"checkout_url": result.CheckoutURL,
		"expires_at":   result.ExpiresAt,
	})
}
