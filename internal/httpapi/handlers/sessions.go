package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
	"github.com/seu-repo/csms/internal/session"
)

// SessionHandler exposes the admin remote-start/stop wrappers, stop-code
// redemption, and the read-only session projections.
type SessionHandler struct {
	service  *session.Service
	sessions ports.SessionRepository
	log      *zap.Logger
}

func NewSessionHandler(service *session.Service, sessions ports.SessionRepository, log *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, sessions: sessions, log: log}
}

type remoteStartRequest struct {
	ChargePointID string `json:"charge_point_id"`
	ConnectorID   int    `json:"connector_id"`
	IdTag         string `json:"id_tag"`
}

func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var req remoteStartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	accepted, err := h.service.AdminRemoteStart(c.Context(), session.AdminStartParams{
		StationID:   req.ChargePointID,
		ConnectorID: req.ConnectorID,
		IdTag:       req.IdTag,
	})
	if err != nil {
		return remoteCallError(err)
	}
	return c.JSON(fiber.Map{"status": statusLabel(accepted)})
}

type remoteStopRequest struct {
	ChargePointID string `json:"charge_point_id"`
	TransactionID int64  `json:"transaction_id"`
}

func (h *SessionHandler) Stop(c *fiber.Ctx) error {
	var req remoteStopRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	accepted, err := h.service.AdminRemoteStop(c.Context(), req.ChargePointID, req.TransactionID)
	if err != nil {
		return remoteCallError(err)
	}
	return c.JSON(fiber.Map{"status": statusLabel(accepted)})
}

type redeemStopCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *SessionHandler) RedeemStopCode(c *fiber.Ctx) error {
	var req redeemStopCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	accepted, err := h.service.RedeemStopCode(c.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return remoteCallError(err)
	}
	return c.JSON(fiber.Map{"status": statusLabel(accepted)})
}

func (h *SessionHandler) List(c *fiber.Ctx) error {
	sessions, err := h.sessions.List(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(sessions)
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	sess, err := h.sessions.Get(c.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if sess == nil {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return c.JSON(sess)
}

func (h *SessionHandler) ActiveByChargePoint(c *fiber.Ctx) error {
	sessions, err := h.sessions.ActiveByStation(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(sessions)
}

func statusLabel(accepted bool) string {
	if accepted {
		return "Accepted"
	}
	return "Rejected"
}

func remoteCallError(err error) error {
	if errors.Is(err, session.ErrNoTransport) {
		return fiber.NewError(fiber.StatusBadGateway, "ocpp_remote_call_failed")
	}
	if errors.Is(err, session.ErrRemoteCallTimeout) {
		return fiber.NewError(fiber.StatusBadGateway, "ocpp_remote_start_failed")
	}
	return fiber.NewError(fiber.StatusBadGateway, "ocpp_remote_call_failed")
}
