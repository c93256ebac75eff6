package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog stores structured error logs for operator reconciliation. Webhook
// failures after signature verification are acknowledged to Stripe but land
// here, so they can be followed up manually.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Level     string         `gorm:"size:10;not null;index" json:"level"`
	Message   string         `gorm:"type:text" json:"message"`
	MemberID  *string        `gorm:"size:36;index" json:"member_id"`
	EventType string         `gorm:"size:100" json:"event_type"`
	TraceID   string         `gorm:"size:36;index" json:"trace_id"`
	Error     string         `gorm:"type:text" json:"error"`
	Extra     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
}
