package dto

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutResponse is returned by the registration intake: the hosted payment
// page to redirect the browser to, plus the id of the pending member record.
type CheckoutResponse struct {
	URL      string    `json:"url"`
	MemberID uuid.UUID `json:"memberId"`
}

// EnrollMemberRequest is the reduced field set accepted by direct enrollment.
// The booleans are pointers so an absent field is distinguishable from an
// explicit false.
type EnrollMemberRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Address         string  `json:"address"`
	IsAdult         *bool   `json:"is_adult"`
	Mission         *bool   `json:"mission"`
	ResearchConsent *bool   `json:"research_consent"`
	SourceDetail    *string `json:"source_detail"`
}

// MemberSummary is the trimmed member view returned to enrollment callers.
type MemberSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type EnrollMemberResponse struct {
	OK     bool          `json:"ok"`
	Member MemberSummary `json:"member"`
}

// ConflictResponse is the 409 body for a duplicate enrollment; it carries the
// existing record so the caller can treat the conflict as already-done.
type ConflictResponse struct {
	Error            bool      `json:"error"`
	Message          string    `json:"message"`
	ExistingMemberID uuid.UUID `json:"existing_member_id"`
	Status           string    `json:"status"`
}
