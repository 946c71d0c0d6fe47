package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-inventory-cloud/internal/draft"
	"go-inventory-cloud/internal/middleware"
)

// SessionHandler exposes the item edit-session lifecycle.
type SessionHandler struct {
	controller *draft.Controller
}

func NewSessionHandler(controller *draft.Controller) *SessionHandler {
	return &SessionHandler{controller: controller}
}

// OpenSession starts editing an item
// POST /api/v1/items/:id/session
func (h *SessionHandler) OpenSession(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	view, err := h.controller.Open(c.Context(), actor, itemID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(view)
}

// GetSession returns the current draft snapshot, including coordinates a
// debounced geocode may have filled in since the last edit
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	view, err := h.controller.Get(actor, sessionID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// UpdateSession applies an edit event to the draft
// PATCH /api/v1/sessions/:id
func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	var patch draft.Patch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	view, err := h.controller.Update(c.Context(), actor, sessionID, &patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// UseCurrentLocation sets device coordinates and backfills the address
// POST /api/v1/sessions/:id/locate
func (h *SessionHandler) UseCurrentLocation(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	view, err := h.controller.UseCurrentLocation(c.Context(), actor, sessionID, req.Latitude, req.Longitude)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// SaveSession submits the draft; failure keeps the session open for retry
// POST /api/v1/sessions/:id/save
func (h *SessionHandler) SaveSession(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	if err := h.controller.Save(c.Context(), actor, sessionID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item saved"})
}

// CancelSession discards the draft
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	if err := h.controller.Cancel(actor, sessionID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Editing cancelled"})
}
