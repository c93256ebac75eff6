package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cassandralabs/membership-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMemberNotFound = errors.New("member not found")

type ActivationService struct {
	db *gorm.DB
}

func NewActivationService(db *gorm.DB) *ActivationService {
	return &ActivationService{db: db}
}

// Activate moves a member record to active and stamps the payment linkage.
// Active is terminal: re-activating an already-active record is a no-op, so
// duplicate webhook deliveries leave the record byte-for-byte unchanged.
func (s *ActivationService) Activate(memberID uuid.UUID, stripeCustomer string) error {
	var member models.Member
	if err := s.db.First(&member, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
		}
		return fmt.Errorf("%w: %v", ErrMemberLookup, err)
	}

	if member.Status == models.StatusActive {
		slog.Info("member already active, skipping", "member_id", memberID)
		return nil
	}

	updates := map[string]interface{}{
		"status":    models.StatusActive,
		"joined_at": time.Now().UTC(),
	}
	if stripeCustomer != "" {
		updates["stripe_customer"] = stripeCustomer
	}

	if err := s.db.Model(&member).Updates(updates).Error; err != nil {
		return fmt.Errorf("member activation update: %w", err)
	}

	slog.Info("member activated", "member_id", memberID)
	return nil
}
