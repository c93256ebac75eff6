package handlers

import (
	"log/slog"

	"github.com/cassandralabs/membership-backend/internal/dto"
	"github.com/cassandralabs/membership-backend/internal/payments"
	"github.com/cassandralabs/membership-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82"
)

type WebhookHandler struct {
	gateway           payments.Gateway
	activationService *services.ActivationService
}

func NewWebhookHandler(gateway payments.Gateway, activationService *services.ActivationService) *WebhookHandler {
	return &WebhookHandler{gateway: gateway, activationService: activationService}
}

// HandleStripe receives asynchronous gateway events. Signature verification
// is the only authentication boundary of the whole flow and happens before
// any payload inspection. Once an event verifies, the response is always a
// 200 ack: a failed downstream update is logged for operator follow-up
// rather than bounced back, so Stripe never retry-storms a permanently
// failing event.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	event, err := h.gateway.VerifyEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("webhook signature verification failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	// Unknown event types are acknowledged untouched.
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return c.JSON(fiber.Map{"received": true})
	}

	memberID, customer, err := payments.CompletedCheckout(event)
	if err != nil {
		slog.Error("malformed checkout event", "event_type", event.Type, "error", err)
		return c.JSON(fiber.Map{"received": true})
	}

	if err := h.activationService.Activate(memberID, customer); err != nil {
		slog.Error("member activation failed", "member_id", memberID.String(), "event_type", event.Type, "error", err)
		return c.JSON(fiber.Map{"received": true})
	}

	return c.JSON(fiber.Map{"received": true})
}
