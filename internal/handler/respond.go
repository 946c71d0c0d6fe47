package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-cloud/internal/apperr"
)

// fail maps a service error to its status code and a single user-facing
// error message.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
}
