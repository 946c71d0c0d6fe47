package handler

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-inventory-cloud/internal/billing"
	"go-inventory-cloud/internal/middleware"
)

type BillingHandler struct {
	sessions      *billing.SessionService
	reconciler    *billing.Reconciler
	webhookSecret string
}

func NewBillingHandler(sessions *billing.SessionService, reconciler *billing.Reconciler, webhookSecret string) *BillingHandler {
	return &BillingHandler{
		sessions:      sessions,
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
	}
}

// CreateSession returns a provider redirect URL for portal or checkout
// POST /api/v1/billing/session
func (h *BillingHandler) CreateSession(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)

	var req struct {
		Action    string `json:"action"`
		PriceID   string `json:"priceId"`
		ReturnURL string `json:"returnUrl"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	url, err := h.sessions.CreateSession(c.Context(), actor, req.Action, req.PriceID, req.ReturnURL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// Webhook receives signed provider events. Unknown event types are
// acknowledged with 200 so the provider stops retrying; signature failures
// and processing errors return non-2xx to trigger redelivery.
// POST /webhooks/billing
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	payload := c.Body()

	if err := billing.VerifySignature(payload, c.Get("Webhook-Signature"), h.webhookSecret, time.Now()); err != nil {
		log.Printf("billing webhook: %v", err)
		return c.Status(400).JSON(fiber.Map{"error": "invalid signature"})
	}

	if err := h.reconciler.Apply(payload); err != nil {
		log.Printf("billing webhook: apply failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "event processing failed"})
	}

	return c.JSON(fiber.Map{"received": true})
}
