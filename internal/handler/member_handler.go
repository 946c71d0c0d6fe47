package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/middleware"
	"go-inventory-cloud/internal/service"
)

type MemberHandler struct {
	membership service.MembershipService
}

func NewMemberHandler(membership service.MembershipService) *MemberHandler {
	return &MemberHandler{membership: membership}
}

// GetMembers lists the organization's members and pending invitations
// GET /api/v1/members
func (h *MemberHandler) GetMembers(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	members, err := h.membership.ListMembers(c.Context(), actor)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch members"})
	}
	return c.JSON(members)
}

// Invite sends an invitation or direct-adds an existing account
// POST /api/v1/members/invite
func (h *MemberHandler) Invite(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	var req service.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.membership.Invite(c.Context(), actor, &req)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if result != nil {
			return c.Status(status).JSON(result)
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.Status(201).JSON(result)
}

// RemoveMember cancels a pending invite or revokes an active membership
// DELETE /api/v1/members/:id
func (h *MemberHandler) RemoveMember(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	if err := h.membership.Remove(c.Context(), actor, memberID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member removed"})
}

// ChangeRole updates a member's role
// PUT /api/v1/members/:id/role
func (h *MemberHandler) ChangeRole(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.membership.ChangeRole(c.Context(), actor, memberID, req.Role); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated"})
}
