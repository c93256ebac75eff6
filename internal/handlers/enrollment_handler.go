package handlers

import (
	"errors"
	"log/slog"

	"github.com/cassandralabs/membership-backend/internal/dto"
	"github.com/cassandralabs/membership-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EnrollmentHandler struct {
	enrollmentService *services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// Enroll is the direct channel for pre-vetted cohorts: no payment step, the
// record is written active immediately.
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	var req dto.EnrollMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	member, err := h.enrollmentService.Enroll(&req)
	if err != nil {
		var validationErr *services.ValidationError
		var affirmationErr *services.AffirmationError
		var conflictErr *services.ConflictError
		switch {
		case errors.As(err, &validationErr), errors.As(err, &affirmationErr), errors.Is(err, services.ErrEmailFormat):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.As(err, &conflictErr):
			return c.Status(fiber.StatusConflict).JSON(dto.ConflictResponse{
				Error:            true,
				Message:          conflictErr.Error(),
				ExistingMemberID: conflictErr.ExistingID,
				Status:           conflictErr.Status,
			})
		default:
			slog.Error("enrollment failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}

	slog.Info("member enrolled", "member_id", member.ID, "source", member.Source)
	return c.Status(fiber.StatusCreated).JSON(dto.EnrollMemberResponse{
		OK: true,
		Member: dto.MemberSummary{
			ID:        member.ID,
			Email:     member.Email,
			Name:      member.Name,
			Status:    member.Status,
			Source:    member.Source,
			CreatedAt: member.CreatedAt,
		},
	})
}
