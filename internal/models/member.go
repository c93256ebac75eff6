package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"
)

const (
	SourceDirectForm = "direct-form"
	SourceOpenClaims = "openclaims"
)

// Member is the single persistent entity of the sign-up flow. Fixed columns
// cover identity, lifecycle and payment linkage; everything the form collects
// beyond that lives in the Profile JSONB payload so form revisions don't turn
// into migrations.
type Member struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string         `gorm:"not null;size:255;index" json:"email"`
	Name            string         `gorm:"size:255" json:"name"`
	Phone           *string        `gorm:"size:50" json:"phone,omitempty"`
	StreetAddress   string         `gorm:"size:500" json:"street_address"`
	IsAdult         bool           `json:"is_adult"`
	Mission         bool           `json:"mission"`
	ResearchConsent *bool          `json:"research_consent,omitempty"`
	Signature       string         `gorm:"size:255" json:"signature"`
	Status          string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Source          string         `gorm:"size:50;not null" json:"source"`
	SourceDetail    *string        `gorm:"size:255" json:"source_detail,omitempty"`
	Profile         datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"profile"`
	StripeCustomer  *string        `gorm:"size:255" json:"stripe_customer,omitempty"`
	JoinedAt        *time.Time     `json:"joined_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
