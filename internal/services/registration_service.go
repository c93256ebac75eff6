package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cassandralabs/membership-backend/internal/models"
	"github.com/cassandralabs/membership-backend/internal/payments"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMemberInsert    = errors.New("member insert rejected")
	ErrCheckoutSession = errors.New("checkout session creation failed")
)

// fixed form fields that map onto member columns; everything else goes into
// the open profile payload untouched.
var columnFields = map[string]bool{
	"email":         true,
	"name":          true,
	"phone":         true,
	"streetAddress": true,
	"isAdult":       true,
	"mission":       true,
	"signature":     true,
	"coupon":        true,
}

type RegistrationService struct {
	db      *gorm.DB
	gateway payments.Gateway
}

func NewRegistrationService(db *gorm.DB, gateway payments.Gateway) *RegistrationService {
	return &RegistrationService{db: db, gateway: gateway}
}

// Submit writes a pending member record from the raw form payload, then opens
// a checkout session carrying the record's id in its metadata. A failed
// session creation leaves the pending record in place; an abandoned pending
// row is inert and cleaned up out of band, never here.
func (s *RegistrationService) Submit(payload map[string]interface{}, coupon string) (*models.Member, string, error) {
	member := models.Member{
		ID:            uuid.New(),
		Email:         NormalizeEmail(stringField(payload, "email")),
		Name:          strings.TrimSpace(stringField(payload, "name")),
		Phone:         optionalField(payload, "phone"),
		StreetAddress: strings.TrimSpace(stringField(payload, "streetAddress")),
		IsAdult:       boolField(payload, "isAdult"),
		Mission:       boolField(payload, "mission"),
		Signature:     stringField(payload, "signature"),
		Status:        models.StatusPending,
		Source:        models.SourceDirectForm,
		Profile:       profilePayload(payload),
	}

	if err := s.db.Create(&member).Error; err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMemberInsert, err)
	}

	sess, err := s.gateway.CreateCheckoutSession(member.ID, member.Email, coupon)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCheckoutSession, err)
	}

	return &member, sess.URL, nil
}

// NormalizeEmail lower-cases and trims; the result is the natural key used
// for enrollment dedup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func stringField(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}

func optionalField(payload map[string]interface{}, key string) *string {
	s, ok := payload[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func boolField(payload map[string]interface{}, key string) bool {
	b, _ := payload[key].(bool)
	return b
}

// profilePayload keeps the questionnaire fields as submitted, minus the ones
// mapped to columns. Single-value selection fields are collapsed to lists so
// the stored shape doesn't depend on how many boxes were ticked.
func profilePayload(payload map[string]interface{}) datatypes.JSON {
	profile := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if columnFields[k] {
			continue
		}
		profile[k] = v
	}
	profile["participation"] = asList(payload["participation"])

	b, err := json.Marshal(profile)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

func asList(v interface{}) []interface{} {
	switch val := v.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return val
	default:
		return []interface{}{val}
	}
}
