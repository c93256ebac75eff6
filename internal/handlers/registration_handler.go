package handlers

import (
	"log/slog"

	"github.com/cassandralabs/membership-backend/internal/dto"
	"github.com/cassandralabs/membership-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// CreateCheckout accepts the full membership form payload, writes a pending
// member and responds with the hosted payment URL to redirect to. The payload
// is an open object; the form's field set changes across revisions and only
// the handful of mapped columns is interpreted here.
func (h *RegistrationHandler) CreateCheckout(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	// Coupon may arrive in the body or as a query parameter, depending on
	// how the form page was reached.
	coupon, _ := payload["coupon"].(string)
	if coupon == "" {
		coupon = c.Query("coupon")
	}

	member, url, err := h.registrationService.Submit(payload, coupon)
	if err != nil {
		slog.Error("registration intake failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	slog.Info("pending member created", "member_id", member.ID, "email", member.Email)
	return c.JSON(dto.CheckoutResponse{URL: url, MemberID: member.ID})
}
