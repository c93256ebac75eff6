package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cassandralabs/membership-backend/internal/dto"
	"github.com/cassandralabs/membership-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailFormat  = errors.New("invalid email format")
	ErrMemberLookup = errors.New("member lookup failed")
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidationError lists every missing required field in one response.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// AffirmationError names the consent/eligibility boolean that was not
// affirmed.
type AffirmationError struct {
	Field  string
	Reason string
}

func (e *AffirmationError) Error() string {
	return e.Field + " must be true: " + e.Reason
}

// ConflictError carries the existing record so the caller can decide whether
// a duplicate is actually already-done.
type ConflictError struct {
	ExistingID uuid.UUID
	Status     string
}

func (e *ConflictError) Error() string {
	return "member with this email already exists"
}

// enrollmentProfile holds the fixed defaults written for members joining
// through the direct channel; they skip the questionnaire entirely.
const enrollmentProfile = `{"participation":["Regular member"],"initiatives":[],"meeting_pref":"Watch recording","voting_duty":true}`

type EnrollmentService struct {
	db *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// Enroll validates the reduced field set, dedups by normalized email and
// writes an already-active member with no payment step. The dedup check and
// the insert are two store calls; a concurrent duplicate can slip between
// them (no uniqueness constraint backs this up).
func (s *EnrollmentService) Enroll(req *dto.EnrollMemberRequest) (*models.Member, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.Address) == "" {
		missing = append(missing, "address")
	}
	if req.IsAdult == nil {
		missing = append(missing, "is_adult")
	}
	if req.Mission == nil {
		missing = append(missing, "mission")
	}
	if req.ResearchConsent == nil {
		missing = append(missing, "research_consent")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	if !*req.IsAdult {
		return nil, &AffirmationError{Field: "is_adult", Reason: "members must be at least 18 years of age"}
	}
	if !*req.Mission {
		return nil, &AffirmationError{Field: "mission", Reason: "members must affirm the Cassandra Labs mission"}
	}
	if !*req.ResearchConsent {
		return nil, &AffirmationError{Field: "research_consent", Reason: "members joining through OpenClaims participate via research"}
	}

	email := NormalizeEmail(req.Email)
	if !emailPattern.MatchString(email) {
		return nil, ErrEmailFormat
	}

	var existing models.Member
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, &ConflictError{ExistingID: existing.ID, Status: existing.Status}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrMemberLookup, err)
	}

	name := strings.TrimSpace(req.Name)
	affirmed := true
	member := models.Member{
		ID:              uuid.New(),
		Email:           email,
		Name:            name,
		Phone:           req.Phone,
		StreetAddress:   strings.TrimSpace(req.Address),
		IsAdult:         true,
		Mission:         true,
		ResearchConsent: &affirmed,
		Signature:       name,
		Status:          models.StatusActive,
		Source:          models.SourceOpenClaims,
		SourceDetail:    req.SourceDetail,
		Profile:         datatypes.JSON([]byte(enrollmentProfile)),
	}

	if err := s.db.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemberInsert, err)
	}

	return &member, nil
}
