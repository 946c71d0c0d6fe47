package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/pkg/jwt"
)

// actorKey is the fiber Locals key the resolved Actor is stored under.
const actorKey = "actor"

// RequireAuth validates the bearer token, confirms the user still exists and
// is active, and stores the resolved Actor for downstream handlers. Services
// receive the Actor explicitly rather than reading ambient request state.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
		}

		c.Locals(actorKey, model.Actor{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
			OrgID:  claims.OrgID,
			Role:   claims.Role,
		})

		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role in their organization.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if !actor.IsAdmin() {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: requires organization admin role"})
		}
		return c.Next()
	}
}

// ActorFrom returns the Actor stored by RequireAuth; zero value when absent.
func ActorFrom(c *fiber.Ctx) model.Actor {
	if actor, ok := c.Locals(actorKey).(model.Actor); ok {
		return actor
	}
	return model.Actor{}
}
