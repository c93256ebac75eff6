package middleware

import (
	"crypto/subtle"

	"github.com/cassandralabs/membership-backend/internal/config"
	"github.com/cassandralabs/membership-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired guards the operator endpoints with a shared token header.
// With no configured token the endpoints are disabled outright rather than
// left open.
func AdminRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken == "" {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin endpoints not configured",
			})
		}

		token := c.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		return c.Next()
	}
}
