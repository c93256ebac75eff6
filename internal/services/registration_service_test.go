package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cassandralabs/membership-backend/internal/models"
	"github.com/cassandralabs/membership-backend/internal/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

// fakeGateway records session-creation calls instead of talking to Stripe.
type fakeGateway struct {
	lastMemberID uuid.UUID
	lastEmail    string
	lastCoupon   string
	calls        int
	err          error
}

func (f *fakeGateway) CreateCheckoutSession(memberID uuid.UUID, email, coupon string) (*payments.CheckoutSession, error) {
	f.calls++
	f.lastMemberID = memberID
	f.lastEmail = email
	f.lastCoupon = coupon
	if f.err != nil {
		return nil, f.err
	}
	return &payments.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.test/pay/cs_test_123"}, nil
}

func (f *fakeGateway) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not implemented")
}

func registrationPayload() map[string]interface{} {
	return map[string]interface{}{
		"email":         " Bob@Example.com ",
		"name":          "Bob",
		"streetAddress": "2 Side St",
		"phone":         "555-0100",
		"isAdult":       true,
		"mission":       true,
		"signature":     "Bob",
		"participation": "Regular member",
		"meetingPref":   "Attend live",
		"board_choice":  "Candidate A",
	}
}

func TestSubmitCreatesPendingMemberAndSession(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewRegistrationService(db, gateway)

	member, url, err := svc.Submit(registrationPayload(), "WELCOME10")
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.test/pay/cs_test_123", url)
	assert.Equal(t, models.StatusPending, member.Status)
	assert.Equal(t, models.SourceDirectForm, member.Source)
	assert.Equal(t, "bob@example.com", member.Email)
	assert.Equal(t, "2 Side St", member.StreetAddress)
	require.NotNil(t, member.Phone)

	// the session must carry this record's id, and the coupon pass through
	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, member.ID, gateway.lastMemberID)
	assert.Equal(t, "bob@example.com", gateway.lastEmail)
	assert.Equal(t, "WELCOME10", gateway.lastCoupon)

	var stored models.Member
	require.NoError(t, db.First(&stored, "id = ?", member.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.JoinedAt)
}

func TestSubmitCollapsesParticipationIntoProfile(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t), &fakeGateway{})

	member, _, err := svc.Submit(registrationPayload(), "")
	require.NoError(t, err)

	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(member.Profile, &profile))

	// single selection collapses to a one-element list
	assert.Equal(t, []interface{}{"Regular member"}, profile["participation"])
	assert.Equal(t, "Attend live", profile["meetingPref"])
	assert.Equal(t, "Candidate A", profile["board_choice"])

	// column-mapped fields stay out of the open payload
	assert.NotContains(t, profile, "email")
	assert.NotContains(t, profile, "name")
	assert.NotContains(t, profile, "signature")
}

func TestSubmitWithoutParticipationStoresEmptyList(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t), &fakeGateway{})

	payload := registrationPayload()
	delete(payload, "participation")

	member, _, err := svc.Submit(payload, "")
	require.NoError(t, err)

	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(member.Profile, &profile))
	assert.Equal(t, []interface{}{}, profile["participation"])
}

func TestSubmitGatewayFailureLeavesPendingRecord(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{err: errors.New("stripe unavailable")}
	svc := NewRegistrationService(db, gateway)

	_, _, err := svc.Submit(registrationPayload(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckoutSession))

	// the provisional record stays; it is inert, not rolled back
	var count int64
	require.NoError(t, db.Model(&models.Member{}).Where("status = ?", models.StatusPending).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
