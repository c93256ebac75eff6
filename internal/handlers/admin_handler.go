package handlers

import (
	"errors"
	"strconv"

	"github.com/cassandralabs/membership-backend/internal/dto"
	"github.com/cassandralabs/membership-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminHandler is the operator reconciliation surface. Because webhook
// failures after signature verification are acknowledged rather than
// surfaced, someone has to be able to inspect stuck pending records and the
// error log trail by hand. There is deliberately no delete here; abandoned
// pending records are retained.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) ListMembers(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit > 200 {
		limit = 200
	}

	query := h.db.Model(&models.Member{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch members",
		})
	}

	var members []models.Member
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&members).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch members",
		})
	}

	return c.JSON(fiber.Map{
		"members": members,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *AdminHandler) GetMember(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid member ID",
		})
	}

	var member models.Member
	if err := h.db.First(&member, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Member not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch member",
		})
	}

	return c.JSON(member)
}
