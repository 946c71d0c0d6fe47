package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-inventory-cloud/internal/middleware"
	"go-inventory-cloud/internal/query"
	"go-inventory-cloud/internal/service"
)

type ItemHandler struct {
	service service.InventoryService
}

func NewItemHandler(s service.InventoryService) *ItemHandler {
	return &ItemHandler{service: s}
}

// GetItems lists the organization inventory, optionally filtered and sorted
// GET /api/v1/items?search=&category=&sort=name|status|quantity&dir=asc|desc
func (h *ItemHandler) GetItems(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	items, err := h.service.List(c.Context(), actor)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	state := query.FilterState{SearchTerm: c.Query("search")}
	if category := c.Query("category"); category != "" {
		state.Category = &category
	}

	var cfg *query.SortConfig
	switch key := query.SortKey(c.Query("sort")); key {
	case query.SortByName, query.SortByStatus, query.SortByQuantity:
		dir := query.Asc
		if c.Query("dir") == string(query.Desc) {
			dir = query.Desc
		}
		cfg = &query.SortConfig{Key: key, Direction: dir}
	}

	return c.JSON(query.Apply(items, state, cfg))
}

// GetItem returns one item
// GET /api/v1/items/:id
func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	item, err := h.service.Get(c.Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(item)
}

// CreateItem adds a new item
// POST /api/v1/items
func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	var req service.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.service.Add(c.Context(), actor, &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Item created", "data": item})
}

// UpdateItem applies a partial update
// PUT /api/v1/items/:id
func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req service.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.Update(c.Context(), actor, id, &req); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Item updated"})
}

// DeleteItem hard-deletes an item; deleting a missing id still succeeds
// DELETE /api/v1/items/:id
func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	if err := h.service.Remove(c.Context(), actor, id); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Item deleted"})
}

// GetStats returns dashboard overview numbers
// GET /api/v1/dashboard/stats
func (h *ItemHandler) GetStats(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	stats, err := h.service.Stats(c.Context(), actor)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}
