package routes

import (
	"time"

	"github.com/cassandralabs/membership-backend/internal/config"
	"github.com/cassandralabs/membership-backend/internal/handlers"
	"github.com/cassandralabs/membership-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	registrationHandler *handlers.RegistrationHandler,
	enrollmentHandler *handlers.EnrollmentHandler,
	webhookHandler *handlers.WebhookHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// Webhooks are wired before the IP rate limiter: Stripe's retry traffic
	// must never be throttled into further retries.
	api.Post("/webhooks/stripe", webhookHandler.HandleStripe)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Intake endpoints write to the store anonymously: 10 req/min per IP
	intakeLimit := func() fiber.Handler {
		return limiter.New(limiter.Config{
			Max:               10,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		})
	}

	membership := api.Group("/membership", intakeLimit())
	membership.Post("/checkout", registrationHandler.CreateCheckout)

	openclaims := api.Group("/openclaims", intakeLimit())
	openclaims.Post("/members", enrollmentHandler.Enroll)

	// Operator reconciliation surface (token required)
	admin := api.Group("/admin", middleware.AdminRequired(cfg))
	admin.Get("/members", adminHandler.ListMembers)
	admin.Get("/members/:id", adminHandler.GetMember)
}
