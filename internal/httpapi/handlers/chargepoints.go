package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

// chargePointCacheTTL bounds how long a derived offline projection is
// served from cache before the next request recomputes it.
const chargePointCacheTTL = 5 * time.Second

// chargePointView is the derived read-model returned to the UI: the raw
// Station plus the computed offline projection spec.md §6 requires.
type chargePointView struct {
	*domain.Station
	Offline bool `json:"offline"`
}

// ChargePointHandler exposes the GET /charge-points read path, cached
// behind ports.Cache when configured.
type ChargePointHandler struct {
	stations ports.StationRepository
	cache    ports.Cache
	log      *zap.Logger
}

func NewChargePointHandler(stations ports.StationRepository, cache ports.Cache, log *zap.Logger) *ChargePointHandler {
	return &ChargePointHandler{stations: stations, cache: cache, log: log}
}

func (h *ChargePointHandler) List(c *fiber.Ctx) error {
	const cacheKey = "charge_points:list"

	if cached, err := h.cache.Get(c.Context(), cacheKey); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	stations, err := h.stations.List(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	views := toViews(stations, time.Now().UTC())
	h.writeThrough(c.Context(), cacheKey, views)
	return c.JSON(views)
}

func (h *ChargePointHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	cacheKey := "charge_points:" + id

	if cached, err := h.cache.Get(c.Context(), cacheKey); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	station, err := h.stations.Get(c.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if station == nil {
		return fiber.NewError(fiber.StatusNotFound, "charge_point_not_found")
	}

	view := chargePointView{Station: station, Offline: station.IsOffline(time.Now().UTC())}
	h.writeThrough(c.Context(), cacheKey, view)
	return c.JSON(view)
}

func toViews(stations []*domain.Station, now time.Time) []chargePointView {
	views := make([]chargePointView, 0, len(stations))
	for _, s := range stations {
		views = append(views, chargePointView{Station: s, Offline: s.IsOffline(now)})
	}
	return views
}

func (h *ChargePointHandler) writeThrough(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, string(data), chargePointCacheTTL); err != nil {
		h.log.Warn("failed to populate charge point cache", zap.String("key", key), zap.Error(err))
	}
}
