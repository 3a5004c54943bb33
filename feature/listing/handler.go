package listing

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"query-sync/core/logger"
)

// Handler handles HTTP requests for listings.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the listing routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/listings")
	group.Get("/", h.HandleQuery)
	group.Post("/refresh", h.HandleRefresh)
	group.Post("/invalidate", h.HandleInvalidate)
	group.Post("/back", h.HandleBack)
	group.Post("/forward", h.HandleForward)
	group.Get("/snapshot", h.HandleSnapshot)
	group.Post("/share", h.HandleShare)
	group.Post("/sync", h.HandleSync)
	group.Get("/mirror", h.HandleMirror)
}

// HandleQuery applies the request's query string as the listing state
// address and returns the settled result page.
func (h *Handler) HandleQuery(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	state, err := h.service.Query(c.Context(), string(c.Request().URI().QueryString()))
	if err != nil {
		l.Error("Listing query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(state)
}

// HandleRefresh re-fetches the current listing state, bypassing the cache.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	state, err := h.service.Refresh(c.Context())
	if err != nil {
		l.Error("Listing refresh failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(state)
}

// HandleInvalidate drops every cached listing response.
func (h *Handler) HandleInvalidate(c *fiber.Ctx) error {
	h.service.Invalidate()
	return c.JSON(fiber.Map{"status": "invalidated"})
}

// HandleBack navigates the address history one entry backwards.
func (h *Handler) HandleBack(c *fiber.Ctx) error {
	if !h.service.Back() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "no earlier history entry",
		})
	}
	return c.JSON(fiber.Map{"address": h.service.Address()})
}

// HandleForward navigates the address history one entry forwards.
func (h *Handler) HandleForward(c *fiber.Ctx) error {
	if !h.service.Forward() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "no later history entry",
		})
	}
	return c.JSON(fiber.Map{"address": h.service.Address()})
}

// HandleSnapshot returns a shared snapshot by object name, or the current
// state when no name is given.
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	state, err := h.service.Snapshot(c.Context(), c.Query("name"))
	if err != nil {
		l.Error("Snapshot load failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(state)
}

// HandleShare publishes the current listing state as a durable snapshot and
// returns the object name.
func (h *Handler) HandleShare(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	name, err := h.service.Share(c.Context())
	if err != nil {
		l.Error("Snapshot share failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"snapshot": name})
}

// HandleSync accepts a state snapshot and applies it to the passive mirror.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	var state State
	if err := c.BodyParser(&state); err != nil {
		l.Warn("Rejected malformed snapshot", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.service.ApplySnapshot(state)
	return c.JSON(fiber.Map{"status": "synced"})
}

// HandleMirror returns the passively synced listing state.
func (h *Handler) HandleMirror(c *fiber.Ctx) error {
	return c.JSON(h.service.Mirror())
}
